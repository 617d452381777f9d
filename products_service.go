package rbac

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
}

// ProductsService is the sample owned resource: anyone with the right
// action may list and read, but updates and deletes are limited to the
// record's owner.
type ProductsService struct {
	repo   RepositoryManager
	logger Logger
}

func NewProductsService(repo RepositoryManager, logger Logger) *ProductsService {
	if logger == nil {
		logger = defLogger{}
	}
	return &ProductsService{repo: repo, logger: logger}
}

func (s *ProductsService) List(ctx context.Context) ([]*Product, error) {
	records, err := s.repo.Products().List(ctx)
	if err != nil {
		return nil, Internal(err, "failed to list products")
	}
	return records, nil
}

func (s *ProductsService) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := s.repo.Products().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFound("Product Not Found")
		}
		return nil, Internal(err, "failed to load product")
	}
	return product, nil
}

func (s *ProductsService) Create(ctx context.Context, ownerID uuid.UUID, input CreateProductInput) (*Product, error) {
	product, err := s.repo.Products().Create(ctx, &Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		UserID:      ownerID,
	})
	if err != nil {
		return nil, Internal(err, "failed to create product")
	}
	return product, nil
}

func (s *ProductsService) Update(ctx context.Context, callerID, id uuid.UUID, input UpdateProductInput) (*Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.UserID != callerID {
		return nil, ErrForbidden
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}

	updated, err := s.repo.Products().Update(ctx, product)
	if err != nil {
		return nil, Internal(err, "failed to update product")
	}
	return updated, nil
}

func (s *ProductsService) Delete(ctx context.Context, callerID, id uuid.UUID) (*Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.UserID != callerID {
		return nil, ErrForbidden
	}

	if err := s.repo.Products().DeleteByID(ctx, product.ID); err != nil {
		return nil, Internal(err, "failed to delete product")
	}
	return product, nil
}
