package service

import (
	"context"
	"errors"
	"testing"

	"warbler/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	models.PasswordCost = bcrypt.MinCost
}

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getProfileFn    func(context.Context, uint) (*models.User, error)
	statsFn         func(context.Context, uint) (*models.UserStats, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	searchFn        func(context.Context, string, int) ([]models.User, error)
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.getProfileFn(ctx, id)
}
func (s *userRepoStub) Stats(ctx context.Context, id uint) (*models.UserStats, error) {
	return s.statsFn(ctx, id)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) Search(ctx context.Context, q string, limit int) ([]models.User, error) {
	return s.searchFn(ctx, q, limit)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getProfileFn:    func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		statsFn:         func(context.Context, uint) (*models.UserStats, error) { return &models.UserStats{}, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
		searchFn:        func(context.Context, string, int) ([]models.User, error) { return nil, nil },
		listFn:          func(context.Context, int, int) ([]models.User, error) { return nil, nil },
	}
}

type followRepoStub struct {
	followFn      func(context.Context, uint, uint) error
	unfollowFn    func(context.Context, uint, uint) error
	isFollowingFn func(context.Context, uint, uint) (bool, error)
	followingFn   func(context.Context, uint) ([]models.User, error)
	followersFn   func(context.Context, uint) ([]models.User, error)
}

func (s *followRepoStub) Follow(ctx context.Context, a, b uint) error   { return s.followFn(ctx, a, b) }
func (s *followRepoStub) Unfollow(ctx context.Context, a, b uint) error { return s.unfollowFn(ctx, a, b) }
func (s *followRepoStub) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.isFollowingFn(ctx, a, b)
}
func (s *followRepoStub) Following(ctx context.Context, id uint) ([]models.User, error) {
	return s.followingFn(ctx, id)
}
func (s *followRepoStub) Followers(ctx context.Context, id uint) ([]models.User, error) {
	return s.followersFn(ctx, id)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:      func(context.Context, uint, uint) error { return nil },
		unfollowFn:    func(context.Context, uint, uint) error { return nil },
		isFollowingFn: func(context.Context, uint, uint) (bool, error) { return false, nil },
		followingFn:   func(context.Context, uint) ([]models.User, error) { return nil, nil },
		followersFn:   func(context.Context, uint) ([]models.User, error) { return nil, nil },
	}
}

type messageRepoStub struct {
	createFn      func(context.Context, *models.Message) error
	getByIDFn     func(context.Context, uint) (*models.Message, error)
	deleteFn      func(context.Context, uint) error
	listByUserFn  func(context.Context, uint, int) ([]models.Message, error)
	timelineFn    func(context.Context, uint, int) ([]models.Message, error)
	recentFn      func(context.Context, int) ([]models.Message, error)
	countByUserFn func(context.Context, uint) (int64, error)
}

func (s *messageRepoStub) Create(ctx context.Context, m *models.Message) error {
	return s.createFn(ctx, m)
}
func (s *messageRepoStub) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	return s.getByIDFn(ctx, id)
}
func (s *messageRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *messageRepoStub) ListByUser(ctx context.Context, id uint, limit int) ([]models.Message, error) {
	return s.listByUserFn(ctx, id, limit)
}
func (s *messageRepoStub) Timeline(ctx context.Context, id uint, limit int) ([]models.Message, error) {
	return s.timelineFn(ctx, id, limit)
}
func (s *messageRepoStub) Recent(ctx context.Context, limit int) ([]models.Message, error) {
	return s.recentFn(ctx, limit)
}
func (s *messageRepoStub) CountByUser(ctx context.Context, id uint) (int64, error) {
	return s.countByUserFn(ctx, id)
}

func noopMessageRepo() *messageRepoStub {
	return &messageRepoStub{
		createFn:      func(context.Context, *models.Message) error { return nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Message, error) { return &models.Message{ID: id}, nil },
		deleteFn:      func(context.Context, uint) error { return nil },
		listByUserFn:  func(context.Context, uint, int) ([]models.Message, error) { return nil, nil },
		timelineFn:    func(context.Context, uint, int) ([]models.Message, error) { return nil, nil },
		recentFn:      func(context.Context, int) ([]models.Message, error) { return nil, nil },
		countByUserFn: func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

type likeRepoStub struct {
	likeFn     func(context.Context, uint, uint) error
	unlikeFn   func(context.Context, uint, uint) error
	isLikedFn  func(context.Context, uint, uint) (bool, error)
	messagesFn func(context.Context, uint) ([]models.Message, error)
	idsFn      func(context.Context, uint) (map[uint]bool, error)
}

func (s *likeRepoStub) Like(ctx context.Context, u, m uint) error   { return s.likeFn(ctx, u, m) }
func (s *likeRepoStub) Unlike(ctx context.Context, u, m uint) error { return s.unlikeFn(ctx, u, m) }
func (s *likeRepoStub) IsLiked(ctx context.Context, u, m uint) (bool, error) {
	return s.isLikedFn(ctx, u, m)
}
func (s *likeRepoStub) LikedMessages(ctx context.Context, u uint) ([]models.Message, error) {
	return s.messagesFn(ctx, u)
}
func (s *likeRepoStub) LikedMessageIDs(ctx context.Context, u uint) (map[uint]bool, error) {
	return s.idsFn(ctx, u)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		likeFn:     func(context.Context, uint, uint) error { return nil },
		unlikeFn:   func(context.Context, uint, uint) error { return nil },
		isLikedFn:  func(context.Context, uint, uint) (bool, error) { return false, nil },
		messagesFn: func(context.Context, uint) ([]models.Message, error) { return nil, nil },
		idsFn:      func(context.Context, uint) (map[uint]bool, error) { return map[uint]bool{}, nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %#v", err)
	require.Equal(t, code, appErr.Code)
}
