// Package ledger defines the balance effects every money or inventory event
// has on the denormalized entity balances, and applies them atomically.
//
// The sign conventions live here and only here. A new business operation is
// defined by adding a builder in effects.go, never by inline sign arithmetic
// inside a service.
package ledger

import (
	"errors"

	"github.com/google/uuid"
)

// Kind identifies which balance field a delta targets.
type Kind string

const (
	// KindCashAccount targets payment_methods.balance.
	KindCashAccount Kind = "cash_account"
	// KindClientDebt targets clients.debt (amount the client owes the store).
	KindClientDebt Kind = "client_debt"
	// KindSupplierDebt targets suppliers.debt (amount the store owes the supplier).
	KindSupplierDebt Kind = "supplier_debt"
	// KindEmployeeLoan targets employees.loan_balance.
	KindEmployeeLoan Kind = "employee_loan"
)

// EntityKind names the counterparty of a cash movement.
type EntityKind string

const (
	EntityClient   EntityKind = "client"
	EntitySupplier EntityKind = "supplier"
	EntityEmployee EntityKind = "employee"
	EntityOther    EntityKind = "other"
)

// Direction of a cash movement.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Delta is one signed adjustment to one balance field. Amounts are whole
// currency units; negative results are allowed on every kind. FloorZero is
// the single source-faithful exception: the client-debt reversal on invoice
// deletion never takes the stored debt below zero.
type Delta struct {
	Kind      Kind
	EntityID  uuid.UUID
	Amount    int64
	FloorZero bool
}

// Invert negates every delta. Used by delete and by the revert half of
// edit operations; floors do not survive inversion.
func Invert(deltas []Delta) []Delta {
	out := make([]Delta, len(deltas))
	for i, d := range deltas {
		out[i] = Delta{Kind: d.Kind, EntityID: d.EntityID, Amount: -d.Amount}
	}
	return out
}

var (
	// ErrUnknownEntity indicates a delta referenced a row that does not exist.
	ErrUnknownEntity = errors.New("ledger: balance row not found")
	// ErrEntityRequired indicates a movement against client/supplier/employee
	// was built without an entity id.
	ErrEntityRequired = errors.New("ledger: entity selection required")
)
