package server

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/models"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	models.PasswordCost = bcrypt.MinCost
}

const testPassword = "password"

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		DatabaseURL:       "sqlite://test.db",
		JWTSecret:         strings.Repeat("s", 40),
		Env:               "test",
		SessionTTLMinutes: 60,
	}
}

// testEnv is a running Warbler app over a fresh SQLite database.
type testEnv struct {
	srv    *Server
	db     *gorm.DB
	ts     *httptest.Server
	client *http.Client // follows redirects
	raw    *http.Client // stops at the first response
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open("sqlite://"+filepath.Join(t.TempDir(), "warbler-test.db"), false)
	require.NoError(t, err)
	require.NoError(t, database.ResetSchema(db))
	t.Cleanup(func() { _ = database.Close(db) })

	srv, err := NewServerWithDeps(testConfig(), db, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(adaptor.FiberApp(srv.App()))
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := ts.Client()
	client.Jar = jar
	raw := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testEnv{srv: srv, db: db, ts: ts, client: client, raw: raw}
}

func (e *testEnv) createUser(t *testing.T, id uint, username string) *models.User {
	t.Helper()
	u, err := models.Signup(username, username+"@test.com", testPassword, "", "", "")
	require.NoError(t, err)
	u.ID = id
	require.NoError(t, e.srv.userRepo.Create(context.Background(), u))
	return u
}

func (e *testEnv) createMessage(t *testing.T, id, userID uint, text string) *models.Message {
	t.Helper()
	m := &models.Message{ID: id, Text: text, UserID: userID}
	require.NoError(t, e.srv.messageRepo.Create(context.Background(), m))
	return m
}

func (e *testEnv) follow(t *testing.T, followerID, followedID uint) {
	t.Helper()
	require.NoError(t, e.srv.followRepo.Follow(context.Background(), followerID, followedID))
}

func (e *testEnv) login(t *testing.T, username string) {
	t.Helper()
	resp := e.postForm(t, e.raw, "/login", url.Values{"username": {username}, "password": {testPassword}})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode, "login should redirect")
}

func (e *testEnv) get(t *testing.T, client *http.Client, path string) *http.Response {
	t.Helper()
	resp, err := client.Get(e.ts.URL + path)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) postForm(t *testing.T, client *http.Client, path string, form url.Values) *http.Response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	resp, err := client.PostForm(e.ts.URL+path, form)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) messageCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Message{}).Count(&n).Error)
	return n
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
