package repository

import (
	"context"
	"errors"

	"warbler/internal/cache"
	"warbler/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	Recent(ctx context.Context, limit int) ([]models.Message, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts message. A missing or unknown owner is an integrity error.
func (r *messageRepository) Create(ctx context.Context, message *models.Message) (err error) {
	ctx, finish := observe(ctx, "Create", "messages")
	defer func() { finish(err) }()

	if err := r.db.WithContext(ctx).Omit("User").Create(message).Error; err != nil {
		return translateError(err)
	}
	cache.InvalidateUserStats(ctx, message.UserID)
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (message *models.Message, err error) {
	ctx, finish := observe(ctx, "GetByID", "messages")
	defer func() { finish(err) }()

	var m models.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &m, nil
}

// Delete removes the message and every like pointing at it.
func (r *messageRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, finish := observe(ctx, "Delete", "messages")
	defer func() { finish(err) }()

	var affected []uint
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Message
		if err := tx.Select("id", "user_id").First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Message", id)
			}
			return err
		}
		affected = append(affected, m.UserID)

		var likers []uint
		if err := tx.Model(&models.Like{}).Where("message_id = ?", id).Pluck("user_id", &likers).Error; err != nil {
			return err
		}
		affected = append(affected, likers...)

		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Message{}, id).Error
	})
	if err != nil {
		return translateError(err)
	}

	cache.InvalidateUserStats(ctx, affected...)
	return nil
}

// ListByUser returns the user's messages, newest first.
func (r *messageRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(clampLimit(limit, 100, 500)).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// Timeline returns messages written by userID or by anyone userID follows,
// newest first.
func (r *messageRepository) Timeline(ctx context.Context, userID uint, limit int) (messages []models.Message, err error) {
	ctx, finish := observe(ctx, "Timeline", "messages")
	defer func() { finish(err) }()

	db := r.db.WithContext(ctx)
	followed := db.Model(&models.Follow{}).
		Select("user_being_followed_id").
		Where("user_following_id = ?", userID)

	if err := db.
		Preload("User").
		Where("user_id = ? OR user_id IN (?)", userID, followed).
		Order("timestamp DESC").
		Limit(clampLimit(limit, 100, 500)).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// Recent returns the newest messages from everyone.
func (r *messageRepository) Recent(ctx context.Context, limit int) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("timestamp DESC").
		Limit(clampLimit(limit, 100, 500)).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *messageRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
