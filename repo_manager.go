package rbac

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Users() Users
	Roles() Roles
	Permissions() Permissions
	ApiTokens() ApiTokens
	PasswordResets() PasswordResets
	Products() Products
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
}

type mngr struct {
	db             *bun.DB
	users          Users
	roles          Roles
	permissions    Permissions
	apiTokens      ApiTokens
	passwordResets PasswordResets
	products       Products
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:             db,
		users:          NewUsersRepository(db),
		roles:          NewRolesRepository(db),
		permissions:    NewPermissionsRepository(db),
		apiTokens:      NewApiTokensRepository(db),
		passwordResets: NewPasswordResetsRepository(db),
		products:       NewProductsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}
	if m.roles == nil {
		return errors.New("repository roles should be initialized")
	}
	if m.permissions == nil {
		return errors.New("repository permissions should be initialized")
	}
	if m.apiTokens == nil {
		return errors.New("repository apiTokens should be initialized")
	}
	if m.passwordResets == nil {
		return errors.New("repository passwordResets should be initialized")
	}
	if m.products == nil {
		return errors.New("repository products should be initialized")
	}
	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users                   { return m.users }
func (m mngr) Roles() Roles                   { return m.roles }
func (m mngr) Permissions() Permissions       { return m.permissions }
func (m mngr) ApiTokens() ApiTokens           { return m.apiTokens }
func (m mngr) PasswordResets() PasswordResets { return m.passwordResets }
func (m mngr) Products() Products             { return m.products }
