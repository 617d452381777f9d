package rbac

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Products is the product repository.
type Products interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, record *Product, criteria ...repository.InsertCriteria) (*Product, error)
	Update(ctx context.Context, record *Product, criteria ...repository.UpdateCriteria) (*Product, error)

	List(ctx context.Context) ([]*Product, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type products struct {
	repository.Repository[*Product]
	db *bun.DB
}

var _ Products = (*products)(nil)

func NewProductsRepository(db *bun.DB) Products {
	repo := repository.NewRepository[*Product](db, repository.ModelHandlers[*Product]{
		NewRecord: func() *Product { return &Product{} },
		GetID: func(p *Product) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Product, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &products{
		Repository: repo,
		db:         db,
	}
}

func (a *products) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	return a.Repository.GetByID(ctx, id.String())
}

func (a *products) Update(ctx context.Context, record *Product, criteria ...repository.UpdateCriteria) (*Product, error) {
	criteria = append(criteria, repository.UpdateByID(record.ID.String()))
	return a.Repository.Update(ctx, record, criteria...)
}

func (a *products) List(ctx context.Context) ([]*Product, error) {
	var records []*Product
	err := a.db.NewSelect().
		Model(&records).
		Order("prd.created_at ASC").
		Scan(ctx)
	return records, err
}

func (a *products) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*Product)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
