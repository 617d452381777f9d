package rbac

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// PermissionRegistry makes sure every protectable action has a
// corresponding permission row before anything can check it. All
// registration happens during single threaded startup, one call per
// protected route declaration, so no locking is needed here.
type PermissionRegistry struct {
	repo   Permissions
	logger Logger
}

func NewPermissionRegistry(repo Permissions, logger Logger) *PermissionRegistry {
	if logger == nil {
		logger = defLogger{}
	}
	return &PermissionRegistry{
		repo:   repo,
		logger: logger,
	}
}

// RegisterAction is an idempotent upsert keyed by the action string. An
// existing row is returned unchanged: the description is never updated on
// repeat calls, so redeclaring a route can't rewrite operator-edited text.
func (r *PermissionRegistry) RegisterAction(ctx context.Context, action, description string) (*Permission, error) {
	existing, err := r.repo.GetByAction(ctx, action)
	if err == nil {
		return existing, nil
	}
	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	created, err := r.repo.Create(ctx, &Permission{
		ID:          uuid.New(),
		Action:      action,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("registered permission action %s", action)
	return created, nil
}
