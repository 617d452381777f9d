package rbac_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rbac "github.com/goliatone/go-rbac"
)

func TestRolesCreateWithPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	permission, err := env.repo.Permissions().GetByAction(ctx, "users.getAllUsers")
	require.NoError(t, err)

	role, err := env.svcs.Roles.Create(ctx, rbac.CreateRoleInput{
		Name:        "support",
		Description: "Read-only user access",
		Permissions: []uuid.UUID{permission.ID},
	})
	require.NoError(t, err)
	require.Len(t, role.Permissions, 1)
	assert.True(t, role.HasAction("users.getAllUsers"))
}

func TestRolesUpdateReplacesPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	users, err := env.repo.Permissions().GetByAction(ctx, "users.getAllUsers")
	require.NoError(t, err)
	roles, err := env.repo.Permissions().GetByAction(ctx, "roles.getAllRoles")
	require.NoError(t, err)

	role, err := env.svcs.Roles.Create(ctx, rbac.CreateRoleInput{
		Name:        "rotating",
		Permissions: []uuid.UUID{users.ID},
	})
	require.NoError(t, err)

	// nil keeps, non-nil replaces
	name := "rotated"
	updated, err := env.svcs.Roles.Update(ctx, role.ID, rbac.UpdateRoleInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "rotated", updated.Name)
	assert.True(t, updated.HasAction("users.getAllUsers"))

	updated, err = env.svcs.Roles.Update(ctx, role.ID, rbac.UpdateRoleInput{
		Permissions: []uuid.UUID{roles.ID},
	})
	require.NoError(t, err)
	assert.False(t, updated.HasAction("users.getAllUsers"))
	assert.True(t, updated.HasAction("roles.getAllRoles"))
}

func TestRolesDeleteDetachesHolders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role, err := env.svcs.Roles.Create(ctx, rbac.CreateRoleInput{Name: "ephemeral"})
	require.NoError(t, err)

	user := env.createUser(t, "holder@example.com", "password-123", role.ID)

	_, err = env.svcs.Roles.Delete(ctx, role.ID)
	require.NoError(t, err)

	// the user survives with the role gone
	loaded, err := env.repo.Users().GetWithPermissions(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, loaded.HasRole("ephemeral"))
	assert.True(t, loaded.HasRole(rbac.RoleAuthenticated))
}

func TestRolesGetUnknown(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svcs.Roles.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Role Not Found")
}
