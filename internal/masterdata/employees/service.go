package employees

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

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, filters shared.ListFilters) ([]Employee, int, error) {
	return s.repo.List(ctx, ownerID, filters)
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (Employee, error) {
	if id == uuid.Nil {
		return Employee{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, ownerID, id)
}

func (s *Service) Create(ctx context.Context, employee Employee) (Employee, error) {
	if err := validate(employee); err != nil {
		return Employee{}, err
	}
	return s.repo.Create(ctx, employee)
}

func (s *Service) Update(ctx context.Context, employee Employee) error {
	if employee.ID == uuid.Nil {
		return shared.ErrInvalidID
	}
	if err := validate(employee); err != nil {
		return err
	}
	return s.repo.Update(ctx, employee)
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if id == uuid.Nil {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, ownerID, id)
}

func validate(e Employee) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: employee name is required", shared.ErrValidation)
	}
	if e.Salary < 0 {
		return fmt.Errorf("%w: salary must not be negative", shared.ErrValidation)
	}
	return nil
}
