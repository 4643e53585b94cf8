// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
)

const (
	maxUsernameLen    = 50
	maxEmailLen       = 120
	maxLocationLen    = 100
	maxBioLen         = 500
	minPasswordLen    = 6
	directoryPageSize = 100
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// SignupInput carries the fields of the signup form.
type SignupInput struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

// UpdateProfileInput carries the fields of the profile form. Password is the
// current password and must verify before anything changes.
type UpdateProfileInput struct {
	UserID         uint
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
	Password       string
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo}
}

// Signup validates the form, creates the user and returns it. Duplicate
// usernames or emails come back as integrity errors from the repository.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	switch {
	case username == "":
		return nil, models.NewValidationError("Username is required")
	case utf8.RuneCountInString(username) > maxUsernameLen:
		return nil, models.NewValidationError("Username too long (max 50 characters)")
	case email == "" || !strings.Contains(email, "@"):
		return nil, models.NewValidationError("A valid email is required")
	case len(email) > maxEmailLen:
		return nil, models.NewValidationError("Email too long (max 120 characters)")
	case len(in.Password) < minPasswordLen:
		return nil, models.NewValidationError("Password must be at least 6 characters")
	}

	user, err := models.Signup(username, email, in.Password, strings.TrimSpace(in.ImageURL), "", "")
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		observability.RecordAuth("signup", "rejected")
		return nil, err
	}
	observability.RecordAuth("signup", "success")
	return user, nil
}

// Authenticate returns the user when password matches, and nil, nil for an
// unknown username or a wrong password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.CheckPassword(password) {
		observability.RecordAuth("login", "failure")
		return nil, nil
	}
	observability.RecordAuth("login", "success")
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns the user with messages, follows and likes loaded.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetProfile(ctx, id)
}

func (s *UserService) Stats(ctx context.Context, id uint) (*models.UserStats, error) {
	return s.userRepo.Stats(ctx, id)
}

// Search lists users whose username contains query.
func (s *UserService) Search(ctx context.Context, query string) ([]models.User, error) {
	return s.userRepo.Search(ctx, query, directoryPageSize)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(in.Password) {
		return nil, models.NewUnauthorizedError("Wrong password, please try again.")
	}

	if username := strings.TrimSpace(in.Username); username != "" {
		if utf8.RuneCountInString(username) > maxUsernameLen {
			return nil, models.NewValidationError("Username too long (max 50 characters)")
		}
		user.Username = username
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		if !strings.Contains(email, "@") || len(email) > maxEmailLen {
			return nil, models.NewValidationError("A valid email is required")
		}
		user.Email = email
	}
	if utf8.RuneCountInString(in.Bio) > maxBioLen {
		return nil, models.NewValidationError("Bio too long (max 500 characters)")
	}
	if utf8.RuneCountInString(in.Location) > maxLocationLen {
		return nil, models.NewValidationError("Location too long (max 100 characters)")
	}

	user.Bio = in.Bio
	user.Location = in.Location
	user.ImageURL = strings.TrimSpace(in.ImageURL)
	if user.ImageURL == "" {
		user.ImageURL = models.DefaultImageURL
	}
	user.HeaderImageURL = strings.TrimSpace(in.HeaderImageURL)
	if user.HeaderImageURL == "" {
		user.HeaderImageURL = models.DefaultHeaderImageURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the account and everything it owns.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.userRepo.Delete(ctx, id)
}

// Follow makes followerID follow followedID. Following yourself is rejected.
func (s *UserService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, followedID); err != nil {
		return err
	}
	if err := s.followRepo.Follow(ctx, followerID, followedID); err != nil {
		return err
	}
	observability.RecordSocial("follow")
	return nil
}

func (s *UserService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if err := s.followRepo.Unfollow(ctx, followerID, followedID); err != nil {
		return err
	}
	observability.RecordSocial("unfollow")
	return nil
}

func (s *UserService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followedID)
}

// Following returns the users userID follows.
func (s *UserService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followRepo.Following(ctx, userID)
}

// Followers returns the users following userID.
func (s *UserService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followRepo.Followers(ctx, userID)
}
