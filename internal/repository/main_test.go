package repository

import (
	"context"
	"path/filepath"
	"testing"

	"warbler/internal/database"
	"warbler/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	models.PasswordCost = bcrypt.MinCost
}

// newTestDB returns a freshly reset SQLite database backed by a temp file.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite://"+filepath.Join(t.TempDir(), "warbler-test.db"), false)
	require.NoError(t, err)
	require.NoError(t, database.ResetSchema(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, repo UserRepository, username string) *models.User {
	t.Helper()
	u, err := models.Signup(username, username+"@test.com", "password", "", "", "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func createMessage(t *testing.T, repo MessageRepository, userID uint, text string) *models.Message {
	t.Helper()
	m := &models.Message{Text: text, UserID: userID}
	require.NoError(t, repo.Create(context.Background(), m))
	return m
}
