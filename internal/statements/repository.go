package statements

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads statement history from Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs statements repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetClient loads the client's stored balance.
func (r *Repository) GetClient(ctx context.Context, ownerID, clientID uuid.UUID) (EntityBalance, error) {
	var e EntityBalance
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, debt FROM clients
		WHERE id = $1 AND owner_id = $2`, clientID, ownerID).Scan(&e.ID, &e.Name, &e.Debt)
	if errors.Is(err, pgx.ErrNoRows) {
		return EntityBalance{}, ErrEntityNotFound
	}
	if err != nil {
		return EntityBalance{}, fmt.Errorf("get client: %w", err)
	}
	return e, nil
}

// ClientEvents gathers the client's invoices and cash movements as
// debit/credit rows. An invoice debits its total and credits the amount
// paid at creation; a later receipt credits, a disbursement debits.
func (r *Repository) ClientEvents(ctx context.Context, ownerID, clientID uuid.UUID) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT invoice_date, id::text, 'invoice', total, paid_amount
		FROM invoices
		WHERE owner_id = $1 AND client_id = $2
		UNION ALL
		SELECT movement_date, id::text,
		       CASE type WHEN 'in' THEN 'receipt' ELSE 'disbursement' END,
		       CASE type WHEN 'out' THEN amount ELSE 0 END,
		       CASE type WHEN 'in' THEN amount ELSE 0 END
		FROM transactions
		WHERE owner_id = $1 AND entity_type = 'client' AND entity_id = $2
		ORDER BY 1`, ownerID, clientID)
	if err != nil {
		return nil, fmt.Errorf("client events: %w", err)
	}
	return scanEvents(rows)
}

// GetSupplier loads the supplier's stored balance.
func (r *Repository) GetSupplier(ctx context.Context, ownerID, supplierID uuid.UUID) (EntityBalance, error) {
	var e EntityBalance
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, debt FROM suppliers
		WHERE id = $1 AND owner_id = $2`, supplierID, ownerID).Scan(&e.ID, &e.Name, &e.Debt)
	if errors.Is(err, pgx.ErrNoRows) {
		return EntityBalance{}, ErrEntityNotFound
	}
	if err != nil {
		return EntityBalance{}, fmt.Errorf("get supplier: %w", err)
	}
	return e, nil
}

// SupplierEvents gathers purchases and cash movements. A purchase debits
// its total cost and credits the amount paid; a payment to the supplier
// credits, money received from them debits.
func (r *Repository) SupplierEvents(ctx context.Context, ownerID, supplierID uuid.UUID) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT purchase_date, id::text, 'purchase', total_cost, paid_amount
		FROM purchases
		WHERE owner_id = $1 AND supplier_id = $2
		UNION ALL
		SELECT movement_date, id::text,
		       CASE type WHEN 'in' THEN 'received' ELSE 'payment' END,
		       CASE type WHEN 'in' THEN amount ELSE 0 END,
		       CASE type WHEN 'out' THEN amount ELSE 0 END
		FROM transactions
		WHERE owner_id = $1 AND entity_type = 'supplier' AND entity_id = $2
		ORDER BY 1`, ownerID, supplierID)
	if err != nil {
		return nil, fmt.Errorf("supplier events: %w", err)
	}
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.Date, &ev.Reference, &ev.Description, &ev.Debit, &ev.Credit); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
