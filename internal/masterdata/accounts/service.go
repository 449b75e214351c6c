package accounts

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

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]Account, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (Account, error) {
	if id == uuid.Nil {
		return Account{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, ownerID, id)
}

func (s *Service) Create(ctx context.Context, account Account) (Account, error) {
	if strings.TrimSpace(account.Name) == "" {
		return Account{}, fmt.Errorf("%w: account name is required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, account)
}

func (s *Service) Update(ctx context.Context, account Account) error {
	if account.ID == uuid.Nil {
		return shared.ErrInvalidID
	}
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("%w: account name is required", shared.ErrValidation)
	}
	return s.repo.Update(ctx, account)
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if id == uuid.Nil {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, ownerID, id)
}
