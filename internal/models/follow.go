package models

// Follow is a row of the follows join table. Each pair appears at most once.
type Follow struct {
	UserBeingFollowedID uint `gorm:"primaryKey;autoIncrement:false" json:"user_being_followed_id"`
	UserFollowingID     uint `gorm:"primaryKey;autoIncrement:false" json:"user_following_id"`
}

// TableName overrides the default table name.
func (Follow) TableName() string {
	return "follows"
}

// Like records that a user liked a message.
type Like struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	MessageID uint `gorm:"primaryKey;autoIncrement:false" json:"message_id"`
}

// TableName overrides the default table name.
func (Like) TableName() string {
	return "likes"
}
