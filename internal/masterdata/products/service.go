package products

import (
	"context"

	"github.com/google/uuid"

	"github.com/bousala/bousala/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, ownerID, filters)
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (Product, error) {
	if id == uuid.Nil {
		return Product{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, ownerID, id)
}

func (s *Service) GetByBarcode(ctx context.Context, ownerID uuid.UUID, barcode string) (Product, error) {
	if barcode == "" {
		return Product{}, shared.ErrRequiredField
	}
	return s.repo.GetByBarcode(ctx, ownerID, barcode)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, product Product) error {
	if product.ID == uuid.Nil {
		return shared.ErrInvalidID
	}
	if err := s.validate(product); err != nil {
		return err
	}
	return s.repo.Update(ctx, product)
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if id == uuid.Nil {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, ownerID, id)
}
