package rbac

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Permissions is the permission repository. Rows only ever come from the
// registry; the HTTP surface is read-only.
type Permissions interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Permission, error)
	Create(ctx context.Context, record *Permission, criteria ...repository.InsertCriteria) (*Permission, error)

	GetByAction(ctx context.Context, action string) (*Permission, error)
	List(ctx context.Context) ([]*Permission, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type permissions struct {
	repository.Repository[*Permission]
	db *bun.DB
}

var _ Permissions = (*permissions)(nil)

func NewPermissionsRepository(db *bun.DB) Permissions {
	repo := repository.NewRepository[*Permission](db, repository.ModelHandlers[*Permission]{
		NewRecord: func() *Permission { return &Permission{} },
		GetID: func(p *Permission) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Permission, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "action"
		},
	})

	return &permissions{
		Repository: repo,
		db:         db,
	}
}

func (a *permissions) GetByID(ctx context.Context, id uuid.UUID) (*Permission, error) {
	return a.Repository.GetByID(ctx, id.String())
}

func (a *permissions) GetByAction(ctx context.Context, action string) (*Permission, error) {
	record := &Permission{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.action = ?", action).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (a *permissions) List(ctx context.Context) ([]*Permission, error) {
	var records []*Permission
	err := a.db.NewSelect().
		Model(&records).
		Order("perm.action ASC").
		Scan(ctx)
	return records, err
}

// DeleteByID removes the permission and detaches role and token links.
func (a *permissions) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if _, err := a.db.NewDelete().
		Model((*RoleToPermission)(nil)).
		Where("permission_id = ?", id).
		Exec(ctx); err != nil {
		return err
	}

	if _, err := a.db.NewDelete().
		Model((*ApiTokenToPermission)(nil)).
		Where("permission_id = ?", id).
		Exec(ctx); err != nil {
		return err
	}

	_, err := a.db.NewDelete().
		Model((*Permission)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
