package cashflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bousala/bousala/internal/ledger"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, ownerID uuid.UUID, fn func(context.Context, TxRepository) error) error
	GetMovement(ctx context.Context, ownerID, id uuid.UUID) (Movement, error)
	ListMovements(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Movement, error)
	ListExpenses(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]Expense, error)
	ListCategories(ctx context.Context, ownerID uuid.UUID) ([]ExpenseCategory, error)
	CreateCategory(ctx context.Context, c ExpenseCategory) error
	DeleteCategory(ctx context.Context, ownerID, id uuid.UUID) error
}

// TxRepository exposes the writes a movement performs inside one transaction.
type TxRepository interface {
	ApplyDeltas(ctx context.Context, deltas []ledger.Delta) error
	InsertMovement(ctx context.Context, m Movement) error
	UpdateMovement(ctx context.Context, m Movement) error
	GetMovementForUpdate(ctx context.Context, id uuid.UUID) (Movement, error)
	DeleteMovement(ctx context.Context, id uuid.UUID) error
	InsertExpense(ctx context.Context, e Expense) error
	GetExpenseForUpdate(ctx context.Context, id uuid.UUID) (Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
}

// Invalidator lets mutations drop stale report caches.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// ListFilter narrows movement listings.
type ListFilter struct {
	From     time.Time
	To       time.Time
	Entity   ledger.EntityKind
	EntityID *uuid.UUID
	Limit    int
}

// CreateMovementRequest describes a receipt or disbursement.
type CreateMovementRequest struct {
	Type        ledger.Direction  `json:"type" validate:"required,oneof=in out"`
	Amount      int64             `json:"amount" validate:"required,gt=0"`
	Entity      ledger.EntityKind `json:"entity_type" validate:"required,oneof=client supplier employee other"`
	EntityID    *uuid.UUID        `json:"entity_id,omitempty"`
	AccountID   uuid.UUID         `json:"account_id" validate:"required"`
	Description string            `json:"description" validate:"max=500"`
	Date        time.Time         `json:"date"`
}

// CreateExpenseRequest describes a categorized outgoing payment.
type CreateExpenseRequest struct {
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	AccountID   uuid.UUID `json:"account_id" validate:"required"`
	Amount      int64     `json:"amount" validate:"required,gt=0"`
	Description string    `json:"description" validate:"max=500"`
	Date        time.Time `json:"date"`
}

// Service orchestrates cash movements and expenses.
type Service struct {
	repo  RepositoryPort
	cache Invalidator
	clock func() time.Time
}

// NewService constructs cashflow service. cache may be nil.
func NewService(repo RepositoryPort, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache, clock: time.Now}
}

// CreateMovement records a movement and applies its balance effects. A
// movement naming a client, supplier, or employee kind must carry the
// entity id; the check happens before any write.
func (s *Service) CreateMovement(ctx context.Context, ownerID uuid.UUID, req CreateMovementRequest) (Movement, error) {
	if req.Amount <= 0 {
		return Movement{}, ErrInvalidAmount
	}
	deltas, err := ledger.MovementEffects(req.Type, req.Entity, req.EntityID, req.AccountID, req.Amount)
	if err != nil {
		return Movement{}, err
	}
	now := s.clock().UTC()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	m := Movement{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Type:        req.Type,
		Amount:      req.Amount,
		Entity:      req.Entity,
		EntityID:    req.EntityID,
		AccountID:   req.AccountID,
		Description: req.Description,
		Date:        date,
		CreatedAt:   now,
	}
	err = s.repo.WithTx(ctx, ownerID, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertMovement(ctx, m); err != nil {
			return err
		}
		return tx.ApplyDeltas(ctx, deltas)
	})
	if err != nil {
		return Movement{}, err
	}
	s.bump(ctx)
	return m, nil
}

// EditMovement replaces a movement. The old effect is reverted in full and
// the new effect applied forward, never a net diff between the two.
func (s *Service) EditMovement(ctx context.Context, ownerID, movementID uuid.UUID, req CreateMovementRequest) (Movement, error) {
	if req.Amount <= 0 {
		return Movement{}, ErrInvalidAmount
	}
	newDeltas, err := ledger.MovementEffects(req.Type, req.Entity, req.EntityID, req.AccountID, req.Amount)
	if err != nil {
		return Movement{}, err
	}
	var updated Movement
	err = s.repo.WithTx(ctx, ownerID, func(ctx context.Context, tx TxRepository) error {
		old, err := tx.GetMovementForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if old.OwnerID != ownerID {
			return ErrMovementNotFound
		}
		oldDeltas, err := ledger.MovementEffects(old.Type, old.Entity, old.EntityID, old.AccountID, old.Amount)
		if err != nil {
			return err
		}
		if err := tx.ApplyDeltas(ctx, ledger.Invert(oldDeltas)); err != nil {
			return err
		}
		updated = old
		updated.Type = req.Type
		updated.Amount = req.Amount
		updated.Entity = req.Entity
		updated.EntityID = req.EntityID
		updated.AccountID = req.AccountID
		updated.Description = req.Description
		if !req.Date.IsZero() {
			updated.Date = req.Date
		}
		if err := tx.UpdateMovement(ctx, updated); err != nil {
			return err
		}
		return tx.ApplyDeltas(ctx, newDeltas)
	})
	if err != nil {
		return Movement{}, err
	}
	s.bump(ctx)
	return updated, nil
}

// DeleteMovement reverses a movement's effects and removes it.
func (s *Service) DeleteMovement(ctx context.Context, ownerID, movementID uuid.UUID) error {
	err := s.repo.WithTx(ctx, ownerID, func(ctx context.Context, tx TxRepository) error {
		old, err := tx.GetMovementForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if old.OwnerID != ownerID {
			return ErrMovementNotFound
		}
		deltas, err := ledger.MovementEffects(old.Type, old.Entity, old.EntityID, old.AccountID, old.Amount)
		if err != nil {
			return err
		}
		if err := tx.ApplyDeltas(ctx, ledger.Invert(deltas)); err != nil {
			return err
		}
		return tx.DeleteMovement(ctx, movementID)
	})
	if err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// GetMovement loads one movement.
func (s *Service) GetMovement(ctx context.Context, ownerID, id uuid.UUID) (Movement, error) {
	return s.repo.GetMovement(ctx, ownerID, id)
}

// ListMovements returns movements matching the filter, newest first.
func (s *Service) ListMovements(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Movement, error) {
	return s.repo.ListMovements(ctx, ownerID, filter)
}

// CreateExpense records a categorized payment and decrements the account.
func (s *Service) CreateExpense(ctx context.Context, ownerID uuid.UUID, req CreateExpenseRequest) (Expense, error) {
	if req.Amount <= 0 {
		return Expense{}, ErrInvalidAmount
	}
	now := s.clock().UTC()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	e := Expense{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		CreatedAt:   now,
	}
	err := s.repo.WithTx(ctx, ownerID, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertExpense(ctx, e); err != nil {
			return err
		}
		deltas, err := ledger.MovementEffects(ledger.DirectionOut, ledger.EntityOther, nil, e.AccountID, e.Amount)
		if err != nil {
			return err
		}
		return tx.ApplyDeltas(ctx, deltas)
	})
	if err != nil {
		return Expense{}, err
	}
	s.bump(ctx)
	return e, nil
}

// DeleteExpense refunds the account and removes the expense row.
func (s *Service) DeleteExpense(ctx context.Context, ownerID, expenseID uuid.UUID) error {
	err := s.repo.WithTx(ctx, ownerID, func(ctx context.Context, tx TxRepository) error {
		old, err := tx.GetExpenseForUpdate(ctx, expenseID)
		if err != nil {
			return err
		}
		if old.OwnerID != ownerID {
			return ErrExpenseNotFound
		}
		deltas, err := ledger.MovementEffects(ledger.DirectionOut, ledger.EntityOther, nil, old.AccountID, old.Amount)
		if err != nil {
			return err
		}
		if err := tx.ApplyDeltas(ctx, ledger.Invert(deltas)); err != nil {
			return err
		}
		return tx.DeleteExpense(ctx, expenseID)
	})
	if err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// ListExpenses returns expenses inside the date window.
func (s *Service) ListExpenses(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]Expense, error) {
	return s.repo.ListExpenses(ctx, ownerID, from, to)
}

// ListCategories returns the owner's expense categories.
func (s *Service) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]ExpenseCategory, error) {
	return s.repo.ListCategories(ctx, ownerID)
}

// CreateCategory adds an expense category.
func (s *Service) CreateCategory(ctx context.Context, ownerID uuid.UUID, name string) (ExpenseCategory, error) {
	c := ExpenseCategory{ID: uuid.New(), OwnerID: ownerID, Name: name}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return ExpenseCategory{}, err
	}
	return c, nil
}

// DeleteCategory removes an expense category.
func (s *Service) DeleteCategory(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteCategory(ctx, ownerID, id)
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}
