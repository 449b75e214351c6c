// Package statements rebuilds a counterparty's ledger view from raw
// history. Invoices, purchases, and cash movements are folded
// chronologically into a running balance; because stored history may not
// reach back to the first transaction, an opening balance row is
// synthesized so the fold always lands exactly on the entity's stored
// balance.
package statements

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Row is one line of a statement.
type Row struct {
	Date        time.Time `json:"date"`
	Reference   string    `json:"reference"`
	Description string    `json:"description"`
	Debit       int64     `json:"debit"`
	Credit      int64     `json:"credit"`
	Balance     int64     `json:"balance"`
}

// Statement is a counterparty ledger view.
type Statement struct {
	EntityID       uuid.UUID `json:"entity_id"`
	EntityName     string    `json:"entity_name"`
	OpeningBalance int64     `json:"opening_balance"`
	Rows           []Row     `json:"rows"`
	ClosingBalance int64     `json:"closing_balance"`
}

// Event is a raw history record before folding. Debit raises the entity's
// balance, credit lowers it.
type Event struct {
	Date        time.Time
	Reference   string
	Description string
	Debit       int64
	Credit      int64
}

// ErrEntityNotFound is returned when the client or supplier is missing.
var ErrEntityNotFound = errors.New("statements: entity not found")
