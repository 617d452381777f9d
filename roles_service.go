package rbac

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

type CreateRoleInput struct {
	Name        string
	Description string
	Permissions []uuid.UUID
}

type UpdateRoleInput struct {
	Name        *string
	Description *string
	// nil keeps the current permission set, non-nil replaces it
	Permissions []uuid.UUID
}

// RolesService implements role CRUD and role<->permission wiring.
type RolesService struct {
	repo   RepositoryManager
	logger Logger
}

func NewRolesService(repo RepositoryManager, logger Logger) *RolesService {
	if logger == nil {
		logger = defLogger{}
	}
	return &RolesService{repo: repo, logger: logger}
}

func (s *RolesService) List(ctx context.Context) ([]*Role, error) {
	records, err := s.repo.Roles().List(ctx)
	if err != nil {
		return nil, Internal(err, "failed to list roles")
	}
	return records, nil
}

func (s *RolesService) Get(ctx context.Context, id uuid.UUID) (*Role, error) {
	role, err := s.repo.Roles().GetWithPermissions(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFound("Role Not Found")
		}
		return nil, Internal(err, "failed to load role")
	}
	return role, nil
}

func (s *RolesService) Create(ctx context.Context, input CreateRoleInput) (*Role, error) {
	role, err := s.repo.Roles().Create(ctx, &Role{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		return nil, Internal(err, "failed to create role")
	}

	if len(input.Permissions) > 0 {
		if err := s.repo.Roles().SetPermissions(ctx, role.ID, input.Permissions); err != nil {
			return nil, Internal(err, "failed to attach permissions")
		}
	}

	return s.Get(ctx, role.ID)
}

func (s *RolesService) Update(ctx context.Context, id uuid.UUID, input UpdateRoleInput) (*Role, error) {
	role, err := s.repo.Roles().GetWithPermissions(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFound("Role Not Found")
		}
		return nil, Internal(err, "failed to load role")
	}

	if input.Name != nil {
		role.Name = *input.Name
	}
	if input.Description != nil {
		role.Description = *input.Description
	}

	if _, err := s.repo.Roles().Update(ctx, role); err != nil {
		return nil, Internal(err, "failed to update role")
	}

	if input.Permissions != nil {
		if err := s.repo.Roles().SetPermissions(ctx, role.ID, input.Permissions); err != nil {
			return nil, Internal(err, "failed to update permissions")
		}
	}

	return s.Get(ctx, role.ID)
}

func (s *RolesService) Delete(ctx context.Context, id uuid.UUID) (*Role, error) {
	role, err := s.repo.Roles().GetWithPermissions(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFound("Role Not Found")
		}
		return nil, Internal(err, "failed to load role")
	}

	if err := s.repo.Roles().DeleteByID(ctx, role.ID); err != nil {
		return nil, Internal(err, "failed to delete role")
	}

	return role, nil
}
