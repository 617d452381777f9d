package rbac

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ApiTokens is the API token repository.
type ApiTokens interface {
	Create(ctx context.Context, record *ApiToken, criteria ...repository.InsertCriteria) (*ApiToken, error)

	// GetActiveByToken matches the raw secret exactly and requires the
	// expiry condition to hold at lookup time. Tokens without an expiry
	// never expire.
	GetActiveByToken(ctx context.Context, token string, now time.Time) (*ApiToken, error)
	GetWithPermissions(ctx context.Context, id uuid.UUID) (*ApiToken, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*ApiToken, error)
	SetPermissions(ctx context.Context, tokenID uuid.UUID, permissionIDs []uuid.UUID) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type apiTokens struct {
	repository.Repository[*ApiToken]
	db *bun.DB
}

var _ ApiTokens = (*apiTokens)(nil)

func NewApiTokensRepository(db *bun.DB) ApiTokens {
	repo := repository.NewRepository[*ApiToken](db, repository.ModelHandlers[*ApiToken]{
		NewRecord: func() *ApiToken { return &ApiToken{} },
		GetID: func(t *ApiToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *ApiToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &apiTokens{
		Repository: repo,
		db:         db,
	}
}

func (a *apiTokens) GetActiveByToken(ctx context.Context, token string, now time.Time) (*ApiToken, error) {
	record := &ApiToken{}
	err := a.db.NewSelect().
		Model(record).
		Relation("Permissions").
		Where("?TableAlias.token = ?", token).
		Where("(?TableAlias.expires_at IS NULL OR ?TableAlias.expires_at >= ?)", now).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (a *apiTokens) GetWithPermissions(ctx context.Context, id uuid.UUID) (*ApiToken, error) {
	record := &ApiToken{}
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

func (a *apiTokens) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ApiToken, error) {
	var records []*ApiToken
	err := a.db.NewSelect().
		Model(&records).
		Relation("Permissions").
		Where("?TableAlias.user_id = ?", userID).
		Order("apitok.created_at ASC").
		Scan(ctx)
	return records, err
}

func (a *apiTokens) SetPermissions(ctx context.Context, tokenID uuid.UUID, permissionIDs []uuid.UUID) error {
	if _, err := a.db.NewDelete().
		Model((*ApiTokenToPermission)(nil)).
		Where("api_token_id = ?", tokenID).
		Exec(ctx); err != nil {
		return err
	}

	if len(permissionIDs) == 0 {
		return nil
	}

	links := make([]*ApiTokenToPermission, 0, len(permissionIDs))
	for _, permissionID := range permissionIDs {
		links = append(links, &ApiTokenToPermission{ApiTokenID: tokenID, PermissionID: permissionID})
	}

	_, err := a.db.NewInsert().Model(&links).Exec(ctx)
	return err
}

func (a *apiTokens) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if _, err := a.db.NewDelete().
		Model((*ApiTokenToPermission)(nil)).
		Where("api_token_id = ?", id).
		Exec(ctx); err != nil {
		return err
	}

	_, err := a.db.NewDelete().
		Model((*ApiToken)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
