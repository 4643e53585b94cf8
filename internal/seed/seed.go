// Package seed fills a Warbler database with fake users, messages, follows
// and likes for development and demos.
package seed

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"warbler/internal/middleware"
	"warbler/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password"

// Options controls how much data Run creates.
type Options struct {
	Users           int
	MessagesPerUser int
	FollowsPerUser  int
	LikesPerUser    int
	// MaxDays spreads message timestamps over this many past days.
	MaxDays int
	// Seed makes the generated data reproducible when non-zero.
	Seed int64
}

// DefaultOptions returns the sizes used by cmd/seed.
func DefaultOptions() Options {
	return Options{
		Users:           20,
		MessagesPerUser: 10,
		FollowsPerUser:  5,
		LikesPerUser:    8,
		MaxDays:         60,
	}
}

// Summary reports what Run inserted.
type Summary struct {
	Users    int
	Messages int
	Follows  int
	Likes    int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d users, %d messages, %d follows, %d likes", s.Users, s.Messages, s.Follows, s.Likes)
}

// Seeder generates data through a gofakeit faker.
type Seeder struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 60
	}
	return &Seeder{db: db, opts: opts, faker: gofakeit.New(seed)}
}

// Run inserts users first, then their messages, follows and likes, all in
// one transaction.
func (s *Seeder) Run() (Summary, error) {
	var sum Summary

	// One hash for everyone keeps seeding fast with a real bcrypt cost.
	hashed, err := models.HashPassword(DefaultPassword)
	if err != nil {
		return sum, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		users := make([]*models.User, 0, s.opts.Users)
		for i := 0; i < s.opts.Users; i++ {
			u := s.buildUser(i, hashed)
			if err := tx.Omit("Messages", "Following", "Followers", "Likes").Create(u).Error; err != nil {
				return fmt.Errorf("create user %s: %w", u.Username, err)
			}
			users = append(users, u)
		}
		sum.Users = len(users)

		var messages []*models.Message
		for _, u := range users {
			for j := 0; j < s.opts.MessagesPerUser; j++ {
				messages = append(messages, s.buildMessage(u.ID))
			}
		}
		if len(messages) > 0 {
			if err := tx.Omit("User").CreateInBatches(messages, 100).Error; err != nil {
				return fmt.Errorf("create messages: %w", err)
			}
		}
		sum.Messages = len(messages)

		follows := s.pickFollows(users)
		if len(follows) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&follows).Error; err != nil {
				return fmt.Errorf("create follows: %w", err)
			}
		}
		sum.Follows = len(follows)

		likes := s.pickLikes(users, messages)
		if len(likes) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&likes).Error; err != nil {
				return fmt.Errorf("create likes: %w", err)
			}
		}
		sum.Likes = len(likes)
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	middleware.Logger.Info("database seeded",
		"users", sum.Users, "messages", sum.Messages, "follows", sum.Follows, "likes", sum.Likes)
	return sum, nil
}

func (s *Seeder) buildUser(i int, hashed string) *models.User {
	// The index suffix keeps usernames and emails unique.
	username := fmt.Sprintf("%s%d", strings.ToLower(s.faker.Username()), i)
	if len(username) > 50 {
		username = username[len(username)-50:]
	}
	return &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@%s", username, s.faker.DomainName()),
		Password: hashed,
		ImageURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", s.faker.UUID()),
		Bio:      s.faker.Sentence(10),
		Location: s.faker.City(),
	}
}

func (s *Seeder) buildMessage(userID uint) *models.Message {
	text := s.faker.Sentence(s.faker.Number(4, 18))
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		text = string([]rune(text)[:models.MaxMessageLength])
	}

	age := time.Duration(s.faker.Number(0, s.opts.MaxDays*24*60)) * time.Minute
	return &models.Message{
		Text:      text,
		UserID:    userID,
		Timestamp: time.Now().UTC().Add(-age),
	}
}

// pickFollows gives each user up to FollowsPerUser distinct other users to follow.
func (s *Seeder) pickFollows(users []*models.User) []models.Follow {
	if len(users) < 2 {
		return nil
	}
	var follows []models.Follow
	for _, u := range users {
		seen := map[uint]bool{u.ID: true}
		want := min(s.opts.FollowsPerUser, len(users)-1)
		for len(seen)-1 < want {
			other := users[s.faker.Number(0, len(users)-1)]
			if seen[other.ID] {
				continue
			}
			seen[other.ID] = true
			follows = append(follows, models.Follow{UserFollowingID: u.ID, UserBeingFollowedID: other.ID})
		}
	}
	return follows
}

// pickLikes gives each user up to LikesPerUser distinct likes on messages
// written by someone else.
func (s *Seeder) pickLikes(users []*models.User, messages []*models.Message) []models.Like {
	var likes []models.Like
	for _, u := range users {
		var candidates []*models.Message
		for _, m := range messages {
			if m.UserID != u.ID {
				candidates = append(candidates, m)
			}
		}
		want := min(s.opts.LikesPerUser, len(candidates))
		seen := make(map[uint]bool, want)
		for len(seen) < want {
			m := candidates[s.faker.Number(0, len(candidates)-1)]
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			likes = append(likes, models.Like{UserID: u.ID, MessageID: m.ID})
		}
	}
	return likes
}
