package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bousala/bousala/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, filters shared.ListFilters) ([]Client, int, error) {
	return s.repo.List(ctx, ownerID, filters)
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (Client, error) {
	if id == uuid.Nil {
		return Client{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, ownerID, id)
}

func (s *Service) Create(ctx context.Context, client Client) (Client, error) {
	if strings.TrimSpace(client.Name) == "" {
		return Client{}, fmt.Errorf("%w: client name is required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, client)
}

func (s *Service) Update(ctx context.Context, client Client) error {
	if client.ID == uuid.Nil {
		return shared.ErrInvalidID
	}
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("%w: client name is required", shared.ErrValidation)
	}
	return s.repo.Update(ctx, client)
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if id == uuid.Nil {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, ownerID, id)
}
