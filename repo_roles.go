package rbac

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Roles is the role repository.
type Roles interface {
	Create(ctx context.Context, record *Role, criteria ...repository.InsertCriteria) (*Role, error)
	Update(ctx context.Context, record *Role, criteria ...repository.UpdateCriteria) (*Role, error)

	GetByName(ctx context.Context, name string) (*Role, error)
	GetWithPermissions(ctx context.Context, id uuid.UUID) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
	SetPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error
	ConnectPermission(ctx context.Context, roleID, permissionID uuid.UUID) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type roles struct {
	repository.Repository[*Role]
	db *bun.DB
}

var _ Roles = (*roles)(nil)

func NewRolesRepository(db *bun.DB) Roles {
	repo := repository.NewRepository[*Role](db, repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
		GetID: func(r *Role) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Role, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &roles{
		Repository: repo,
		db:         db,
	}
}

func (a *roles) Update(ctx context.Context, record *Role, criteria ...repository.UpdateCriteria) (*Role, error) {
	criteria = append(criteria, repository.UpdateByID(record.ID.String()))
	return a.Repository.Update(ctx, record, criteria...)
}

func (a *roles) GetByName(ctx context.Context, name string) (*Role, error) {
	record := &Role{}
	err := a.db.NewSelect().
		Model(record).
		Relation("Permissions").
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (a *roles) GetWithPermissions(ctx context.Context, id uuid.UUID) (*Role, error) {
	record := &Role{}
	err := a.db.NewSelect().
		Model(record).
		Relation("Permissions").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (a *roles) List(ctx context.Context) ([]*Role, error) {
	var records []*Role
	err := a.db.NewSelect().
		Model(&records).
		Relation("Permissions").
		Order("rol.created_at ASC").
		Scan(ctx)
	return records, err
}

// SetPermissions replaces the role's permission set.
func (a *roles) SetPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	if _, err := a.db.NewDelete().
		Model((*RoleToPermission)(nil)).
		Where("role_id = ?", roleID).
		Exec(ctx); err != nil {
		return err
	}

	if len(permissionIDs) == 0 {
		return nil
	}

	links := make([]*RoleToPermission, 0, len(permissionIDs))
	for _, permissionID := range permissionIDs {
		links = append(links, &RoleToPermission{RoleID: roleID, PermissionID: permissionID})
	}

	_, err := a.db.NewInsert().Model(&links).Exec(ctx)
	return err
}

func (a *roles) ConnectPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	link := &RoleToPermission{RoleID: roleID, PermissionID: permissionID}
	_, err := a.db.NewInsert().
		Model(link).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return err
}

// DeleteByID removes the role and detaches every association atomically.
// Users that held the role are left in place.
func (a *roles) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*RoleToPermission)(nil)).
			Where("role_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*UserToRole)(nil)).
			Where("role_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewDelete().
			Model((*Role)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}
