package rbac_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rbac "github.com/goliatone/go-rbac"
)

func TestApiTokensRequireSuperAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	regular := env.createUser(t, "plain@example.com", "password-123")

	_, err := env.svcs.ApiTokens.Issue(ctx, regular.ID, rbac.IssueApiTokenInput{Name: "nope"})
	require.Error(t, err)
	assert.True(t, rbac.IsForbidden(err))

	_, err = env.svcs.ApiTokens.ListForUser(ctx, regular.ID)
	require.Error(t, err)
	assert.True(t, rbac.IsForbidden(err))
}

func TestApiTokensRawSecretShownOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin, err := env.repo.Users().GetByEmail(ctx, testAdminEmail)
	require.NoError(t, err)

	issued, err := env.svcs.ApiTokens.Issue(ctx, admin.ID, rbac.IssueApiTokenInput{Name: "deploy"})
	require.NoError(t, err)

	// the issue response carries the raw secret
	assert.Len(t, issued.Token, rbac.ApiTokenByteLength*2)
	assert.False(t, strings.Contains(issued.Token, "*"))

	// every later read is obscured
	listed, err := env.svcs.ApiTokens.ListForUser(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, rbac.ObscureToken(issued.Token), listed[0].Token)

	got, err := env.svcs.ApiTokens.Get(ctx, admin.ID, issued.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.ObscureToken(issued.Token), got.Token)
}

func TestApiTokensOwnershipOnReadAndRevoke(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin, err := env.repo.Users().GetByEmail(ctx, testAdminEmail)
	require.NoError(t, err)

	issued, err := env.svcs.ApiTokens.Issue(ctx, admin.ID, rbac.IssueApiTokenInput{Name: "mine"})
	require.NoError(t, err)

	other := env.createUser(t, "intruder@example.com", "password-123")

	_, err = env.svcs.ApiTokens.Get(ctx, other.ID, issued.ID)
	require.Error(t, err)
	assert.True(t, rbac.IsForbidden(err))

	_, err = env.svcs.ApiTokens.Revoke(ctx, other.ID, issued.ID)
	require.Error(t, err)
	assert.True(t, rbac.IsForbidden(err))

	// the owner can revoke, after which the token stops authenticating
	revoked, err := env.svcs.ApiTokens.Revoke(ctx, admin.ID, issued.ID)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, revoked.ID)

	res := env.request(t, "GET", "/auth/users", issued.Token, nil)
	assert.Equal(t, 401, res.StatusCode)
}
