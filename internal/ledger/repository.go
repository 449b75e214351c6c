package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var balanceColumns = map[Kind]struct {
	table  string
	column string
}{
	KindCashAccount:  {table: "payment_methods", column: "balance"},
	KindClientDebt:   {table: "clients", column: "debt"},
	KindSupplierDebt: {table: "suppliers", column: "debt"},
	KindEmployeeLoan: {table: "employees", column: "loan_balance"},
}

// Apply executes every delta as one read-modify-write on its balance row,
// inside the caller's transaction. Callers compose Apply with their own row
// writes so an operation commits entirely or not at all.
func Apply(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, deltas []Delta) error {
	for _, d := range deltas {
		if d.Amount == 0 {
			continue
		}
		target, ok := balanceColumns[d.Kind]
		if !ok {
			return fmt.Errorf("ledger: unknown balance kind %q", d.Kind)
		}
		expr := fmt.Sprintf(`%s + $1`, target.column)
		if d.FloorZero {
			expr = fmt.Sprintf(`GREATEST(%s + $1, 0)`, target.column)
		}
		query := fmt.Sprintf(`UPDATE %s SET %s = %s, updated_at = now() WHERE id = $2 AND owner_id = $3`,
			target.table, target.column, expr)
		tag, err := tx.Exec(ctx, query, d.Amount, d.EntityID, ownerID)
		if err != nil {
			return fmt.Errorf("ledger: adjust %s: %w", d.Kind, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrUnknownEntity
		}
	}
	return nil
}
