package rbac

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PasswordResets is the password reset token repository.
type PasswordResets interface {
	Create(ctx context.Context, record *PasswordResetToken, criteria ...repository.InsertCriteria) (*PasswordResetToken, error)

	GetByToken(ctx context.Context, token string) (*PasswordResetToken, error)
	// DeleteAllForUser clears every reset token the user holds. Used both
	// when minting a replacement and when a reset completes.
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type passwordResets struct {
	repository.Repository[*PasswordResetToken]
	db *bun.DB
}

var _ PasswordResets = (*passwordResets)(nil)

func NewPasswordResetsRepository(db *bun.DB) PasswordResets {
	repo := repository.NewRepository[*PasswordResetToken](db, repository.ModelHandlers[*PasswordResetToken]{
		NewRecord: func() *PasswordResetToken { return &PasswordResetToken{} },
		GetID: func(t *PasswordResetToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *PasswordResetToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &passwordResets{
		Repository: repo,
		db:         db,
	}
}

func (a *passwordResets) GetByToken(ctx context.Context, token string) (*PasswordResetToken, error) {
	record := &PasswordResetToken{}
	err := a.db.NewSelect().
		Model(record).
		Relation("User").
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (a *passwordResets) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*PasswordResetToken)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func (a *passwordResets) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*PasswordResetToken)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
