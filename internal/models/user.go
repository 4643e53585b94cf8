// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// DefaultImageURL is used when a user has no profile image.
	DefaultImageURL = "/static/images/default-pic.png"
	// DefaultHeaderImageURL is used when a user has no header image.
	DefaultHeaderImageURL = "/static/images/warbler-hero.png"
)

// PasswordCost is the bcrypt cost used by Signup and password changes.
var PasswordCost = bcrypt.DefaultCost

// User represents a Warbler account.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:50;uniqueIndex;not null;check:username <> ''" json:"username"`
	Email          string    `gorm:"size:120;uniqueIndex;not null;check:email <> ''" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	ImageURL       string    `json:"image_url"`
	HeaderImageURL string    `json:"header_image_url"`
	Bio            string    `gorm:"type:text" json:"bio"`
	Location       string    `gorm:"size:100" json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
	// Following holds the users this user follows.
	Following []User `gorm:"many2many:follows;joinForeignKey:UserFollowingID;joinReferences:UserBeingFollowedID;constraint:OnDelete:CASCADE" json:"-"`
	// Followers holds the users following this user.
	Followers []User    `gorm:"many2many:follows;joinForeignKey:UserBeingFollowedID;joinReferences:UserFollowingID;constraint:OnDelete:CASCADE" json:"-"`
	Likes     []Message `gorm:"many2many:likes;constraint:OnDelete:CASCADE" json:"-"`
}

// Signup hashes the password and returns a new, unsaved User. Nothing is
// validated here: schema violations (such as an empty username) surface when
// the user is inserted.
func Signup(username, email, password, imageURL, bio, location string) (*User, error) {
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username: username,
		Email:    email,
		Password: hashed,
		ImageURL: imageURL,
		Bio:      bio,
		Location: location,
	}
	user.applyDefaults()
	return user, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u == nil || u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// IsFollowing reports whether u follows other. Following must be loaded.
func (u *User) IsFollowing(other *User) bool {
	if u == nil || other == nil {
		return false
	}
	for _, f := range u.Following {
		if f.ID == other.ID {
			return true
		}
	}
	return false
}

// IsFollowedBy reports whether other follows u. Followers must be loaded.
func (u *User) IsFollowedBy(other *User) bool {
	if u == nil || other == nil {
		return false
	}
	for _, f := range u.Followers {
		if f.ID == other.ID {
			return true
		}
	}
	return false
}

// HasLiked reports whether messageID is among the loaded Likes.
func (u *User) HasLiked(messageID uint) bool {
	if u == nil {
		return false
	}
	for _, m := range u.Likes {
		if m.ID == messageID {
			return true
		}
	}
	return false
}

func (u User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}

func (u *User) applyDefaults() {
	if u.ImageURL == "" {
		u.ImageURL = DefaultImageURL
	}
	if u.HeaderImageURL == "" {
		u.HeaderImageURL = DefaultHeaderImageURL
	}
}

// BeforeCreate fills in default image URLs.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	u.applyDefaults()
	return nil
}

// UserStats holds the counters shown on a profile.
type UserStats struct {
	Messages  int64 `json:"messages"`
	Following int64 `json:"following"`
	Followers int64 `json:"followers"`
	Likes     int64 `json:"likes"`
}
