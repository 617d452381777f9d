package rbac

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// PermissionsService is read-only: permission rows are created by the
// registry at route declaration time, never through the API.
type PermissionsService struct {
	repo   RepositoryManager
	logger Logger
}

func NewPermissionsService(repo RepositoryManager, logger Logger) *PermissionsService {
	if logger == nil {
		logger = defLogger{}
	}
	return &PermissionsService{repo: repo, logger: logger}
}

func (s *PermissionsService) List(ctx context.Context) ([]*Permission, error) {
	records, err := s.repo.Permissions().List(ctx)
	if err != nil {
		return nil, Internal(err, "failed to list permissions")
	}
	return records, nil
}

func (s *PermissionsService) Get(ctx context.Context, id uuid.UUID) (*Permission, error) {
	permission, err := s.repo.Permissions().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFound("Permission Not Found")
		}
		return nil, Internal(err, "failed to load permission")
	}
	return permission, nil
}
