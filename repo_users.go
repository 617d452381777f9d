package rbac

import (
	"context"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the user repository. Base CRUD comes from the generic
// repository; everything touching relations or role membership is
// implemented directly against bun.
type Users interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)
	Update(ctx context.Context, record *User, criteria ...repository.UpdateCriteria) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetWithPermissions loads the user with roles and each role's
	// permissions, the shape the authorizer needs for the session path.
	GetWithPermissions(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]*User, error)
	SetRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error
	SetRolesTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, roleIDs []uuid.UUID) error
	ConnectRole(ctx context.Context, userID, roleID uuid.UUID) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.Repository.GetByID(ctx, id.String())
}

func (a *users) Update(ctx context.Context, record *User, criteria ...repository.UpdateCriteria) (*User, error) {
	criteria = append(criteria, repository.UpdateByID(record.ID.String()))
	return a.Repository.Update(ctx, record, criteria...)
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Relation("Roles").
		Where("?TableAlias.email = ?", strings.TrimSpace(strings.ToLower(email))).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (a *users) GetWithPermissions(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Relation("Roles").
		Relation("Roles.Permissions").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (a *users) List(ctx context.Context) ([]*User, error) {
	var records []*User
	err := a.db.NewSelect().
		Model(&records).
		Relation("Roles").
		Order("usr.created_at ASC").
		Scan(ctx)
	return records, err
}

// SetRoles replaces the user's role set. Callers enforce the invariant
// that the authenticated role is part of roleIDs before getting here.
func (a *users) SetRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error {
	return a.SetRolesTx(ctx, a.db, userID, roleIDs)
}

func (a *users) SetRolesTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, roleIDs []uuid.UUID) error {
	if _, err := tx.NewDelete().
		Model((*UserToRole)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx); err != nil {
		return err
	}

	if len(roleIDs) == 0 {
		return nil
	}

	links := make([]*UserToRole, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		links = append(links, &UserToRole{UserID: userID, RoleID: roleID})
	}

	_, err := tx.NewInsert().Model(&links).Exec(ctx)
	return err
}

func (a *users) ConnectRole(ctx context.Context, userID, roleID uuid.UUID) error {
	link := &UserToRole{UserID: userID, RoleID: roleID}
	_, err := a.db.NewInsert().
		Model(link).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return err
}

// DeleteByID removes the user and its role links atomically.
func (a *users) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*UserToRole)(nil)).
			Where("user_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewDelete().
			Model((*User)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}
