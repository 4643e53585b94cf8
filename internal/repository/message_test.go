package repository

import (
	"context"
	"testing"
	"time"

	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	messages := NewMessageRepository(db)
	ctx := context.Background()

	u := createUser(t, users, "testuser")
	before := time.Now().UTC().Add(-time.Second)
	m := createMessage(t, messages, u.ID, "Hello")

	got, err := messages.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Text)
	assert.Equal(t, u.ID, got.UserID)
	require.NotNil(t, got.User)
	assert.Equal(t, "testuser", got.User.Username)
	assert.True(t, got.Timestamp.After(before), "timestamp defaults to now")

	profile, err := users.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, profile.Messages, 1)
	assert.Equal(t, "Hello", profile.Messages[0].Text)

	count, err := messages.CountByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestMessageRepository_CreateWithoutValidOwner(t *testing.T) {
	db := newTestDB(t)
	messages := NewMessageRepository(db)

	err := messages.Create(context.Background(), &models.Message{Text: "orphan", UserID: 424242})
	require.Error(t, err)
	assert.True(t, models.IsIntegrityError(err), "got %v", err)
}

func TestMessageRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	messages := NewMessageRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	author := createUser(t, users, "author")
	fan := createUser(t, users, "fan")
	m := createMessage(t, messages, author.ID, "bye")
	require.NoError(t, likes.Like(ctx, fan.ID, m.ID))

	require.NoError(t, messages.Delete(ctx, m.ID))

	_, err := messages.GetByID(ctx, m.ID)
	assert.True(t, models.IsNotFound(err))

	liked, err := likes.IsLiked(ctx, fan.ID, m.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	err = messages.Delete(ctx, m.ID)
	assert.True(t, models.IsNotFound(err))
}

func TestMessageRepository_Timeline(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	messages := NewMessageRepository(db)
	follows := NewFollowRepository(db)
	ctx := context.Background()

	me := createUser(t, users, "me")
	friend := createUser(t, users, "friend")
	stranger := createUser(t, users, "stranger")

	base := time.Now().UTC().Add(-time.Hour)
	for i, row := range []struct {
		user uint
		text string
	}{
		{me.ID, "mine"},
		{friend.ID, "friend's"},
		{stranger.ID, "stranger's"},
	} {
		m := &models.Message{Text: row.text, UserID: row.user, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, messages.Create(ctx, m))
	}
	require.NoError(t, follows.Follow(ctx, me.ID, friend.ID))

	timeline, err := messages.Timeline(ctx, me.ID, 100)
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, "friend's", timeline[0].Text, "newest first")
	assert.Equal(t, "mine", timeline[1].Text)
	assert.Equal(t, "friend", timeline[0].User.Username)

	recent, err := messages.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "stranger's", recent[0].Text)

	mine, err := messages.ListByUser(ctx, stranger.ID, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}
