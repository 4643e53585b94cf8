package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MaxMessageLength is the longest text a message may carry.
const MaxMessageLength = 140

// Message is a short post ("warble") written by a user.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:140;not null" json:"text"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate stamps the message with the current UTC time when unset.
func (m *Message) BeforeCreate(_ *gorm.DB) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}

func (m Message) String() string {
	return fmt.Sprintf("<Message #%d by user %d>", m.ID, m.UserID)
}
