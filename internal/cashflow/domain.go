// Package cashflow records money entering and leaving cash accounts:
// receipts, disbursements, and categorized expenses. A movement linked to a
// client, supplier, or employee also shifts that counterparty's balance by
// the ledger sign rules; edits revert the old effect in full before
// applying the new one.
package cashflow

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bousala/bousala/internal/ledger"
)

// Movement is one cash receipt or disbursement.
type Movement struct {
	ID          uuid.UUID         `json:"id"`
	OwnerID     uuid.UUID         `json:"-"`
	Type        ledger.Direction  `json:"type"`
	Amount      int64             `json:"amount"`
	Entity      ledger.EntityKind `json:"entity_type"`
	EntityID    *uuid.UUID        `json:"entity_id,omitempty"`
	AccountID   uuid.UUID         `json:"account_id"`
	Description string            `json:"description"`
	Date        time.Time         `json:"date"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ExpenseCategory groups expenses for reporting.
type ExpenseCategory struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"-"`
	Name    string    `json:"name"`
}

// Expense is an outgoing payment carrying a reporting category.
type Expense struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"-"`
	CategoryID  uuid.UUID `json:"category_id"`
	AccountID   uuid.UUID `json:"account_id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	// ErrMovementNotFound is returned for a missing or foreign movement.
	ErrMovementNotFound = errors.New("cashflow: movement not found")

	// ErrExpenseNotFound is returned for a missing or foreign expense.
	ErrExpenseNotFound = errors.New("cashflow: expense not found")

	// ErrCategoryNotFound is returned for a missing expense category.
	ErrCategoryNotFound = errors.New("cashflow: expense category not found")

	// ErrInvalidAmount rejects zero or negative amounts before any write.
	ErrInvalidAmount = errors.New("cashflow: amount must be positive")
)
