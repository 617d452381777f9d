package rbac_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goerrors "github.com/goliatone/go-errors"

	rbac "github.com/goliatone/go-rbac"
)

func TestRegisterIssuesSession(t *testing.T) {
	env := newTestEnv(t)

	var out rbac.AuthResponse
	res := env.request(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    "New.User@Example.com",
		"password": "password-123",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	decodeJSON(t, res, &out)

	// email is normalized, password never serialized
	assert.Equal(t, "new.user@example.com", out.User.Email)
	assert.True(t, rbac.LooksLikeJWT(out.AccessToken.Token))
	assert.True(t, rbac.LooksLikeJWT(out.RefreshToken.Token))
	assert.Greater(t, out.AccessToken.ExpiresAt, out.AccessToken.IssuedAt)

	// the fresh session works immediately
	me := env.request(t, http.MethodGet, "/auth/me", out.AccessToken.Token, nil)
	assert.Equal(t, http.StatusOK, me.StatusCode)

	// every registered user holds the default role
	user, err := env.repo.Users().GetWithPermissions(context.Background(), out.User.ID)
	require.NoError(t, err)
	assert.True(t, user.HasRole(rbac.RoleAuthenticated))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "taken@example.com", "password-123")

	res := env.request(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    "Taken@Example.com",
		"password": "password-123",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestLoginBadCredentialsAreUniform(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "known@example.com", "password-123")
	ctx := context.Background()

	// unknown account and wrong password produce the identical error
	_, unknownErr := env.svcs.Auth.Login(ctx, "nobody@example.com", "password-123")
	_, wrongPwErr := env.svcs.Auth.Login(ctx, "known@example.com", "wrong-password")

	require.Error(t, unknownErr)
	require.Error(t, wrongPwErr)

	var a, b *goerrors.Error
	require.True(t, goerrors.As(unknownErr, &a))
	require.True(t, goerrors.As(wrongPwErr, &b))
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, "Bad Credentials", a.Message)
	assert.Equal(t, a.Code, b.Code)
}

func TestRefreshEchoesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "refresher@example.com", "password-123")

	session, err := env.svcs.Auth.Login(context.Background(), "refresher@example.com", "password-123")
	require.NoError(t, err)

	var out rbac.AuthResponse
	res := env.request(t, http.MethodGet, "/auth/refresh", session.RefreshToken.Token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	decodeJSON(t, res, &out)

	// new access token, same refresh token with its original lifetime
	assert.True(t, rbac.LooksLikeJWT(out.AccessToken.Token))
	assert.Equal(t, session.RefreshToken.Token, out.RefreshToken.Token)
	assert.Equal(t, session.RefreshToken.IssuedAt, out.RefreshToken.IssuedAt)
	assert.Equal(t, session.RefreshToken.ExpiresAt, out.RefreshToken.ExpiresAt)

	// JWT timestamps have second granularity; crossing a second boundary
	// makes the second access token observably fresher
	time.Sleep(1100 * time.Millisecond)

	var again rbac.AuthResponse
	res = env.request(t, http.MethodGet, "/auth/refresh", session.RefreshToken.Token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	decodeJSON(t, res, &again)

	// each refresh mints a fresh access token with a later expiry
	assert.NotEqual(t, out.AccessToken.Token, again.AccessToken.Token)
	assert.Greater(t, again.AccessToken.ExpiresAt, out.AccessToken.ExpiresAt)

	// while the refresh token and its lifetime never change
	assert.Equal(t, session.RefreshToken.Token, again.RefreshToken.Token)
	assert.Equal(t, session.RefreshToken.IssuedAt, again.RefreshToken.IssuedAt)
	assert.Equal(t, session.RefreshToken.ExpiresAt, again.RefreshToken.ExpiresAt)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "mixed@example.com", "password-123")

	session, err := env.svcs.Auth.Login(context.Background(), "mixed@example.com", "password-123")
	require.NoError(t, err)

	// an access token is signed with the wrong secret for refresh
	res := env.request(t, http.MethodGet, "/auth/refresh", session.AccessToken.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "shortlived@example.com", "password-123")
	ctx := context.Background()

	session, err := env.svcs.Auth.Login(ctx, "shortlived@example.com", "password-123")
	require.NoError(t, err)

	_, err = env.svcs.Users.Delete(ctx, user.ID)
	require.NoError(t, err)

	res := env.request(t, http.MethodGet, "/auth/refresh", session.RefreshToken.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
