package seed

import (
	"path/filepath"
	"testing"

	"warbler/internal/database"
	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	models.PasswordCost = bcrypt.MinCost
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite://"+filepath.Join(t.TempDir(), "seed.db"), false)
	require.NoError(t, err)
	require.NoError(t, database.ResetSchema(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestRun(t *testing.T) {
	db := newTestDB(t)

	sum, err := NewSeeder(db, Options{
		Users:           6,
		MessagesPerUser: 3,
		FollowsPerUser:  2,
		LikesPerUser:    4,
		Seed:            42,
	}).Run()
	require.NoError(t, err)

	assert.Equal(t, Summary{Users: 6, Messages: 18, Follows: 12, Likes: 24}, sum)
	assert.Equal(t, int64(6), count(t, db, &models.User{}))
	assert.Equal(t, int64(18), count(t, db, &models.Message{}))
	assert.Equal(t, int64(12), count(t, db, &models.Follow{}))
	assert.Equal(t, int64(24), count(t, db, &models.Like{}))

	var u models.User
	require.NoError(t, db.First(&u).Error)
	assert.True(t, u.CheckPassword(DefaultPassword))
}

func TestRun_NoSelfFollowsOrSelfLikes(t *testing.T) {
	db := newTestDB(t)

	_, err := NewSeeder(db, Options{Users: 4, MessagesPerUser: 2, FollowsPerUser: 10, LikesPerUser: 10, Seed: 7}).Run()
	require.NoError(t, err)

	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("user_following_id = user_being_followed_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	var selfLikes int64
	require.NoError(t, db.Model(&models.Like{}).
		Joins("JOIN messages m ON m.id = likes.message_id").
		Where("m.user_id = likes.user_id").Count(&selfLikes).Error)
	assert.Zero(t, selfLikes)

	// Follows are capped at everyone else.
	assert.Equal(t, int64(4*3), count(t, db, &models.Follow{}))
}

func TestRun_MessagesFitLimit(t *testing.T) {
	db := newTestDB(t)

	_, err := NewSeeder(db, Options{Users: 3, MessagesPerUser: 20, Seed: 1}).Run()
	require.NoError(t, err)

	var msgs []models.Message
	require.NoError(t, db.Find(&msgs).Error)
	for _, m := range msgs {
		assert.LessOrEqual(t, len([]rune(m.Text)), models.MaxMessageLength)
		assert.NotEmpty(t, m.Text)
	}
}
