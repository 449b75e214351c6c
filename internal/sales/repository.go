package sales

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bousala/bousala/internal/ledger"
	"github.com/bousala/bousala/internal/masterdata/clients"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx      pgx.Tx
	ownerID uuid.UUID
}

// WithTx wraps fn in a RepeatableRead transaction scoped to one owner.
func (r *Repository) WithTx(ctx context.Context, ownerID uuid.UUID, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepo{tx: tx, ownerID: ownerID}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *txRepo) GetProduct(ctx context.Context, id uuid.UUID) (ProductInfo, error) {
	var p ProductInfo
	err := r.tx.QueryRow(ctx, `SELECT id, name, stock FROM products WHERE id = $1 AND owner_id = $2`, id, r.ownerID).
		Scan(&p.ID, &p.Name, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProductInfo{}, errors.New("sales: product not found")
	}
	return p, err
}

// AdjustStock moves product stock by delta. The WHERE guard keeps stock
// non-negative; a sale exceeding the shelf count aborts the transaction.
func (r *txRepo) AdjustStock(ctx context.Context, productID uuid.UUID, delta int64) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE products SET stock = stock + $1, updated_at = now() WHERE id = $2 AND owner_id = $3 AND stock + $1 >= 0`,
		delta, productID, r.ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *txRepo) UpsertClientByName(ctx context.Context, name string, at time.Time) (uuid.UUID, error) {
	return clients.UpsertByNameTx(ctx, r.tx, r.ownerID, name, at)
}

func (r *txRepo) ApplyDeltas(ctx context.Context, deltas []ledger.Delta) error {
	return ledger.Apply(ctx, r.tx, r.ownerID, deltas)
}

func (r *txRepo) InsertInvoice(ctx context.Context, inv Invoice) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO invoices (id, owner_id, customer_name, client_id, invoice_date, total, paid_amount, remaining_amount, status, account_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		inv.ID, inv.OwnerID, inv.CustomerName, inv.ClientID, inv.Date, inv.Total, inv.PaidAmount, inv.RemainingAmount, inv.Status, inv.AccountID, inv.CreatedAt)
	if err != nil {
		return err
	}
	for _, item := range inv.Items {
		_, err := r.tx.Exec(ctx, `INSERT INTO invoice_items (invoice_id, product_id, product_name, quantity, price_at_sale)
VALUES ($1, $2, $3, $4, $5)`,
			inv.ID, item.ProductID, item.ProductName, item.Quantity, item.PriceAtSale)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepo) GetInvoiceForUpdate(ctx context.Context, id uuid.UUID) (Invoice, error) {
	row := r.tx.QueryRow(ctx, `SELECT id, owner_id, customer_name, client_id, invoice_date, total, paid_amount, remaining_amount, status, account_id, created_at
FROM invoices WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, r.ownerID)
	inv, err := scanInvoice(row)
	if err != nil {
		return Invoice{}, err
	}
	inv.Items, err = loadItems(ctx, r.tx, id)
	return inv, err
}

func (r *txRepo) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
		return err
	}
	tag, err := r.tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1 AND owner_id = $2`, id, r.ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.OwnerID, &inv.CustomerName, &inv.ClientID, &inv.Date, &inv.Total, &inv.PaidAmount, &inv.RemainingAmount, &inv.Status, &inv.AccountID, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, err
}

func loadItems(ctx context.Context, q queryer, invoiceID uuid.UUID) ([]InvoiceItem, error) {
	rows, err := q.Query(ctx, `SELECT product_id, product_name, quantity, price_at_sale FROM invoice_items WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InvoiceItem
	for rows.Next() {
		var item InvoiceItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.PriceAtSale); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetInvoice loads one invoice with items.
func (r *Repository) GetInvoice(ctx context.Context, ownerID, id uuid.UUID) (Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, owner_id, customer_name, client_id, invoice_date, total, paid_amount, remaining_amount, status, account_id, created_at
FROM invoices WHERE id = $1 AND owner_id = $2`, id, ownerID)
	inv, err := scanInvoice(row)
	if err != nil {
		return Invoice{}, err
	}
	inv.Items, err = loadItems(ctx, r.pool, id)
	return inv, err
}

// ListInvoices returns invoices newest first, optionally bounded by date or
// client.
func (r *Repository) ListInvoices(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Invoice, error) {
	query := `SELECT id, owner_id, customer_name, client_id, invoice_date, total, paid_amount, remaining_amount, status, account_id, created_at
FROM invoices WHERE owner_id = $1`
	args := []any{ownerID}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += ` AND invoice_date >= $2`
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += ` AND invoice_date <= $` + strconv.Itoa(len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += ` AND client_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY invoice_date DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items, err = loadItems(ctx, r.pool, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

