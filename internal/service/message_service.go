package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
)

// TimelineSize is the number of messages on the home timeline.
const TimelineSize = 100

type MessageService struct {
	messageRepo repository.MessageRepository
	likeRepo    repository.LikeRepository
}

func NewMessageService(messageRepo repository.MessageRepository, likeRepo repository.LikeRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, likeRepo: likeRepo}
}

// Create writes a message owned by userID.
func (s *MessageService) Create(ctx context.Context, userID uint, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("Message text is required")
	}
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		return nil, models.NewValidationError("Message too long (max 140 characters)")
	}

	msg := &models.Message{Text: text, UserID: userID}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	observability.MessagesCreated.Inc()
	return msg, nil
}

func (s *MessageService) Get(ctx context.Context, id uint) (*models.Message, error) {
	return s.messageRepo.GetByID(ctx, id)
}

// Delete removes a message. Only its author may delete it.
func (s *MessageService) Delete(ctx context.Context, userID, messageID uint) (*models.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.UserID != userID {
		return nil, models.NewUnauthorizedError("Access unauthorized.")
	}
	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return nil, err
	}
	return msg, nil
}

// ToggleLike likes the message, or removes the like when already present.
// It reports whether the message is liked afterwards. Authors cannot like
// their own messages.
func (s *MessageService) ToggleLike(ctx context.Context, userID, messageID uint) (bool, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return false, err
	}
	if msg.UserID == userID {
		return false, models.NewUnauthorizedError("Access unauthorized.")
	}

	liked, err := s.likeRepo.IsLiked(ctx, userID, messageID)
	if err != nil {
		return false, err
	}
	if liked {
		if err := s.likeRepo.Unlike(ctx, userID, messageID); err != nil {
			return false, err
		}
		observability.RecordSocial("unlike")
		return false, nil
	}
	if err := s.likeRepo.Like(ctx, userID, messageID); err != nil {
		return false, err
	}
	observability.RecordSocial("like")
	return true, nil
}

// Timeline returns the newest messages by userID and the users they follow.
func (s *MessageService) Timeline(ctx context.Context, userID uint) ([]models.Message, error) {
	return s.messageRepo.Timeline(ctx, userID, TimelineSize)
}

func (s *MessageService) ListByUser(ctx context.Context, userID uint) ([]models.Message, error) {
	return s.messageRepo.ListByUser(ctx, userID, TimelineSize)
}

func (s *MessageService) Recent(ctx context.Context) ([]models.Message, error) {
	return s.messageRepo.Recent(ctx, TimelineSize)
}

func (s *MessageService) LikedMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	return s.likeRepo.LikedMessages(ctx, userID)
}

// LikedIDs returns the set of message IDs userID liked.
func (s *MessageService) LikedIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	return s.likeRepo.LikedMessageIDs(ctx, userID)
}
