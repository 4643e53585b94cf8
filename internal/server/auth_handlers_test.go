package server

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"warbler/internal/models"
	"warbler/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postForm(t, env.raw, "/signup", url.Values{
		"username": {"newuser"},
		"email":    {"new@test.com"},
		"password": {"password"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	u, err := env.srv.userRepo.GetByUsername(context.Background(), "newuser")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, models.DefaultImageURL, u.ImageURL)

	// The new account is logged in.
	home := readBody(t, env.get(t, env.client, "/"))
	assert.Contains(t, home, "@newuser")
}

func TestSignupDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, 5000, "testuser")

	body := readBody(t, env.postForm(t, env.client, "/signup", url.Values{
		"username": {"testuser"},
		"email":    {"fresh@test.com"},
		"password": {"password"},
	}))
	assert.Contains(t, body, "Username already taken")

	var n int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{
			name: "short password",
			form: url.Values{"username": {"u"}, "email": {"u@test.com"}, "password": {"abc"}},
			want: "Password must be at least 6 characters",
		},
		{
			name: "bad email",
			form: url.Values{"username": {"u"}, "email": {"nope"}, "password": {"password"}},
			want: "A valid email is required",
		},
		{
			name: "missing username",
			form: url.Values{"email": {"u@test.com"}, "password": {"password"}},
			want: "Username is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.postForm(t, env.client, "/signup", tt.form)
			body := readBody(t, resp)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestLoginAndLogout(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, 5000, "testuser")

	body := readBody(t, env.postForm(t, env.client, "/login", url.Values{
		"username": {"testuser"},
		"password": {"wrong"},
	}))
	assert.Contains(t, body, "Invalid credentials.")

	body = readBody(t, env.postForm(t, env.client, "/login", url.Values{
		"username": {"testuser"},
		"password": {testPassword},
	}))
	assert.Contains(t, body, "Hello, testuser!")

	logouts := observability.AuthEvents.WithLabelValues("logout", "success")
	before := testutil.ToFloat64(logouts)

	resp := env.get(t, env.client, "/logout")
	body = readBody(t, resp)
	assert.Equal(t, before+1, testutil.ToFloat64(logouts))
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Contains(t, body, "You have successfully logged out.")

	// Protected pages are closed again.
	body = readBody(t, env.get(t, env.client, "/messages/new"))
	assert.Contains(t, body, "Access unauthorized")
}

func TestEditProfile(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, 5000, "testuser")
	env.login(t, "testuser")

	body := readBody(t, env.postForm(t, env.client, "/users/profile", url.Values{
		"username": {"renamed"},
		"password": {"wrong"},
	}))
	assert.Contains(t, body, "Wrong password, please try again.")

	resp := env.postForm(t, env.raw, "/users/profile", url.Values{
		"username": {"renamed"},
		"bio":      {"hello there"},
		"location": {"Lisbon"},
		"password": {testPassword},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/users/5000", resp.Header.Get("Location"))

	u, err := env.srv.userRepo.GetByID(context.Background(), 5000)
	require.NoError(t, err)
	assert.Equal(t, "renamed", u.Username)
	assert.Equal(t, "hello there", u.Bio)
	assert.Equal(t, "Lisbon", u.Location)
	assert.True(t, u.CheckPassword(testPassword))
}

func TestEditProfileDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, 5000, "testuser")
	env.createUser(t, 5001, "abc")
	env.login(t, "testuser")

	resp := env.postForm(t, env.client, "/users/profile", url.Values{
		"username": {"testuser"},
		"email":    {"abc@test.com"},
		"password": {testPassword},
	})
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Username or email already taken")
	assert.NotContains(t, body, "Username already taken")

	u, err := env.srv.userRepo.GetByID(context.Background(), 5000)
	require.NoError(t, err)
	assert.Equal(t, "testuser@test.com", u.Email)
}

func TestDeleteCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, 5000, "testuser")
	env.createUser(t, 5001, "abc")
	env.createMessage(t, 1, 5000, "bye")
	env.follow(t, 5001, 5000)
	env.login(t, "testuser")

	resp := env.postForm(t, env.raw, "/users/delete", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/signup", resp.Header.Get("Location"))

	_, err := env.srv.userRepo.GetByID(context.Background(), 5000)
	assert.True(t, models.IsNotFound(err))
	assert.Zero(t, env.messageCount(t))

	followers, err := env.srv.followRepo.Following(context.Background(), 5001)
	require.NoError(t, err)
	assert.Empty(t, followers)

	// The stale session no longer counts as logged in.
	body := readBody(t, env.get(t, env.client, "/messages/new"))
	assert.Contains(t, body, "Access unauthorized")
}
