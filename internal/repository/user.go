package repository

import (
	"context"
	"errors"
	"strings"

	"warbler/internal/cache"
	"warbler/internal/models"

	"gorm.io/gorm"
)

// MaxProfileMessages bounds the messages preloaded on a profile.
const MaxProfileMessages = 100

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetProfile(ctx context.Context, id uint) (*models.User, error)
	Stats(ctx context.Context, id uint) (*models.UserStats, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (user *models.User, err error) {
	ctx, finish := observe(ctx, "GetByID", "users")
	defer func() { finish(err) }()

	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &u, nil
}

// GetByUsername returns nil, nil when no user has that username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no user has that email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetProfile loads a user with its newest messages and its follow and like
// associations.
func (r *userRepository) GetProfile(ctx context.Context, id uint) (user *models.User, err error) {
	ctx, finish := observe(ctx, "GetProfile", "users")
	defer func() { finish(err) }()

	var u models.User
	if err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp DESC").Limit(MaxProfileMessages)
		}).
		Preload("Following").
		Preload("Followers").
		Preload("Likes").
		First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &u, nil
}

// Stats returns the profile counters, served from Redis when cached.
func (r *userRepository) Stats(ctx context.Context, id uint) (*models.UserStats, error) {
	var stats models.UserStats
	err := cache.Aside(ctx, cache.UserStatsKey(id), &stats, cache.UserStatsTTL, func() error {
		db := r.db.WithContext(ctx)
		if err := db.Model(&models.Message{}).Where("user_id = ?", id).Count(&stats.Messages).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := db.Model(&models.Follow{}).Where("user_following_id = ?", id).Count(&stats.Following).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := db.Model(&models.Follow{}).Where("user_being_followed_id = ?", id).Count(&stats.Followers).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := db.Model(&models.Like{}).Where("user_id = ?", id).Count(&stats.Likes).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Create inserts user. Constraint violations (duplicate or empty username or
// email) come back as integrity errors.
func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, finish := observe(ctx, "Create", "users")
	defer func() { finish(err) }()

	if err := r.db.WithContext(ctx).Omit("Messages", "Following", "Followers", "Likes").Create(user).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit("Messages", "Following", "Followers", "Likes").Save(user).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// Delete removes the user together with their messages, follows and likes
// in one transaction.
func (r *userRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, finish := observe(ctx, "Delete", "users")
	defer func() { finish(err) }()

	var affected []uint
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownMessages := tx.Model(&models.Message{}).Select("id").Where("user_id = ?", id)

		var related []uint
		if err := tx.Model(&models.Follow{}).
			Where("user_being_followed_id = ?", id).
			Pluck("user_following_id", &related).Error; err != nil {
			return err
		}
		affected = append(affected, related...)
		related = nil
		if err := tx.Model(&models.Follow{}).
			Where("user_following_id = ?", id).
			Pluck("user_being_followed_id", &related).Error; err != nil {
			return err
		}
		affected = append(affected, related...)
		related = nil
		if err := tx.Model(&models.Like{}).
			Where("message_id IN (?)", ownMessages).
			Pluck("user_id", &related).Error; err != nil {
			return err
		}
		affected = append(affected, related...)

		if err := tx.Where("user_id = ? OR message_id IN (?)", id, ownMessages).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_being_followed_id = ? OR user_following_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", id)
		}
		return nil
	})
	if err != nil {
		return translateError(err)
	}

	cache.InvalidateUserStats(ctx, append(affected, id)...)
	return nil
}

// Search returns users whose username contains query. An empty query lists
// everyone.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.List(ctx, limit, 0)
	}

	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("username LIKE ? ESCAPE '!'", "%"+escapeLike(query)+"%").
		Order("username").
		Limit(clampLimit(limit, 50, 200)).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Order("username").
		Limit(clampLimit(limit, 50, 200)).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
