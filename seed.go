package rbac

import (
	"context"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Seed bootstraps the store: the two distinguished roles, the super admin
// account, and the super admin's grant over every registered permission.
// Run after route declaration so the permission rows already exist. Safe
// to run on every boot.
func Seed(ctx context.Context, repo RepositoryManager, cfg *Config, logger Logger) error {
	if logger == nil {
		logger = defLogger{}
	}

	superRole, err := ensureRole(ctx, repo, RoleSuperAdmin, "Unrestricted access to every registered action")
	if err != nil {
		return err
	}

	authRole, err := ensureRole(ctx, repo, RoleAuthenticated, "Held by every registered user")
	if err != nil {
		return err
	}

	admin, err := ensureSuperAdmin(ctx, repo, cfg, logger)
	if err != nil {
		return err
	}

	for _, roleID := range []uuid.UUID{superRole.ID, authRole.ID} {
		if err := repo.Users().ConnectRole(ctx, admin.ID, roleID); err != nil {
			return Internal(err, "failed to attach role to super admin")
		}
	}

	return grantAllPermissions(ctx, repo, superRole.ID, logger)
}

func ensureRole(ctx context.Context, repo RepositoryManager, name, description string) (*Role, error) {
	role, err := repo.Roles().GetByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !repository.IsRecordNotFound(err) {
		return nil, Internal(err, "failed to load role "+name)
	}

	role, err = repo.Roles().Create(ctx, &Role{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
	})
	if err != nil {
		return nil, Internal(err, "failed to create role "+name)
	}
	return role, nil
}

func ensureSuperAdmin(ctx context.Context, repo RepositoryManager, cfg *Config, logger Logger) (*User, error) {
	email := strings.TrimSpace(strings.ToLower(cfg.SuperAdminEmail))

	user, err := repo.Users().GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !repository.IsRecordNotFound(err) {
		return nil, Internal(err, "failed to load super admin")
	}

	hash, err := HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return nil, Internal(err, "failed to hash super admin password")
	}

	user, err = repo.Users().Create(ctx, &User{
		ID:        uuid.New(),
		Email:     email,
		Password:  hash,
		Provider:  ProviderLocal,
		Confirmed: true,
	})
	if err != nil {
		return nil, Internal(err, "failed to create super admin")
	}

	logger.Info("seeded super admin account %s", email)
	return user, nil
}

// grantAllPermissions connects every registered permission to the role,
// adding only the links that are missing.
func grantAllPermissions(ctx context.Context, repo RepositoryManager, roleID uuid.UUID, logger Logger) error {
	permissions, err := repo.Permissions().List(ctx)
	if err != nil {
		return Internal(err, "failed to list permissions")
	}

	role, err := repo.Roles().GetWithPermissions(ctx, roleID)
	if err != nil {
		return Internal(err, "failed to load super admin role")
	}

	held := make(map[uuid.UUID]bool, len(role.Permissions))
	for _, p := range role.Permissions {
		held[p.ID] = true
	}

	granted := 0
	for _, p := range permissions {
		if held[p.ID] {
			continue
		}
		if err := repo.Roles().ConnectPermission(ctx, roleID, p.ID); err != nil {
			return Internal(err, "failed to grant permission "+p.Action)
		}
		granted++
	}

	if granted > 0 {
		logger.Info("granted %d permissions to %s role", granted, RoleSuperAdmin)
	}
	return nil
}
