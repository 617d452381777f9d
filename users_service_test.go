package rbac_test

import (
	"context"
	"testing"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rbac "github.com/goliatone/go-rbac"
)

func TestUsersCreateAttachesDefaultRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	extra, err := env.svcs.Roles.Create(ctx, rbac.CreateRoleInput{Name: "editors"})
	require.NoError(t, err)

	created := env.createUser(t, "editor@example.com", "password-123", extra.ID)

	user, err := env.repo.Users().GetWithPermissions(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, user.HasRole("editors"))
	assert.True(t, user.HasRole(rbac.RoleAuthenticated))
}

func TestUsersCreateIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role, err := env.svcs.Roles.Create(ctx, rbac.CreateRoleInput{Name: "doubled"})
	require.NoError(t, err)

	// a duplicate role id fails the link insert; the user row must roll
	// back with it rather than persist without any roles
	_, err = env.svcs.Users.Create(ctx, rbac.CreateUserInput{
		Email:    "atomic@example.com",
		Password: "password-123",
		Roles:    []uuid.UUID{role.ID, role.ID},
	})
	require.Error(t, err)

	_, err = env.repo.Users().GetByEmail(ctx, "atomic@example.com")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))

	// the email stays free for a clean retry
	created, err := env.svcs.Users.Create(ctx, rbac.CreateUserInput{
		Email:    "atomic@example.com",
		Password: "password-123",
		Roles:    []uuid.UUID{role.ID},
	})
	require.NoError(t, err)

	user, err := env.repo.Users().GetWithPermissions(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, user.HasRole("doubled"))
	assert.True(t, user.HasRole(rbac.RoleAuthenticated))
}

func TestUsersUpdateEmailUniqueness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "first@example.com", "password-123")
	second := env.createUser(t, "second@example.com", "password-123")

	taken := "First@Example.com"
	_, err := env.svcs.Users.Update(ctx, second.ID, rbac.UpdateUserInput{Email: &taken})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email already in use")

	// re-asserting your own email is not a conflict
	same := "Second@Example.com"
	updated, err := env.svcs.Users.Update(ctx, second.ID, rbac.UpdateUserInput{Email: &same})
	require.NoError(t, err)
	assert.Equal(t, "second@example.com", updated.Email)
}

func TestUsersUpdateKeepsDefaultRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.createUser(t, "someone@example.com", "password-123")

	extra, err := env.svcs.Roles.Create(ctx, rbac.CreateRoleInput{Name: "auditors"})
	require.NoError(t, err)

	// a role set without the default role is rejected
	_, err = env.svcs.Users.Update(ctx, created.ID, rbac.UpdateUserInput{
		Roles: []uuid.UUID{extra.ID},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Default role cannot be removed")

	defaultRole, err := env.repo.Roles().GetByName(ctx, rbac.RoleAuthenticated)
	require.NoError(t, err)

	_, err = env.svcs.Users.Update(ctx, created.ID, rbac.UpdateUserInput{
		Roles: []uuid.UUID{extra.ID, defaultRole.ID},
	})
	require.NoError(t, err)

	user, err := env.repo.Users().GetWithPermissions(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, user.HasRole("auditors"))
	assert.True(t, user.HasRole(rbac.RoleAuthenticated))
}

func TestUsersUpdatePartialFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.createUser(t, "partial@example.com", "password-123")

	confirmed := true
	updated, err := env.svcs.Users.Update(ctx, created.ID, rbac.UpdateUserInput{
		Confirmed: &confirmed,
	})
	require.NoError(t, err)
	assert.True(t, updated.Confirmed)
	assert.Equal(t, "partial@example.com", updated.Email)

	// password change keeps the old one from working
	newPassword := "brand-new-password"
	_, err = env.svcs.Users.Update(ctx, created.ID, rbac.UpdateUserInput{
		Password: &newPassword,
	})
	require.NoError(t, err)

	_, err = env.svcs.Auth.Login(ctx, "partial@example.com", "password-123")
	require.Error(t, err)

	_, err = env.svcs.Auth.Login(ctx, "partial@example.com", newPassword)
	require.NoError(t, err)
}

func TestUsersDeleteGuardsSuperAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin, err := env.repo.Users().GetByEmail(ctx, testAdminEmail)
	require.NoError(t, err)

	_, err = env.svcs.Users.Delete(ctx, admin.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot delete")

	// everyone else can be deleted
	other := env.createUser(t, "deletable@example.com", "password-123")
	deleted, err := env.svcs.Users.Delete(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, deleted.ID)

	_, err = env.svcs.Users.Get(ctx, other.ID)
	require.Error(t, err)
}

func TestUsersGetUnknown(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svcs.Users.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User Not Found")
}
