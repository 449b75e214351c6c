package purchasing

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bousala/bousala/internal/ledger"
)

// Repository persists purchases in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs purchasing repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx runs fn inside a repeatable-read transaction scoped to one owner.
func (r *Repository) WithTx(ctx context.Context, ownerID uuid.UUID, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &txRepo{tx: tx, ownerID: ownerID}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetPurchase loads a purchase and its items.
func (r *Repository) GetPurchase(ctx context.Context, ownerID, id uuid.UUID) (Purchase, error) {
	return fetchPurchase(ctx, r.pool, ownerID, id)
}

// ListPurchases returns purchases for the owner, newest first.
func (r *Repository) ListPurchases(ctx context.Context, ownerID uuid.UUID, limit int) ([]Purchase, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, supplier_id, purchase_date, total_cost, paid_amount, account_id, created_at
		FROM purchases
		WHERE owner_id = $1
		ORDER BY purchase_date DESC, created_at DESC
		LIMIT `+strconv.Itoa(limit), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.SupplierID, &p.Date, &p.TotalCost, &p.PaidAmount, &p.AccountID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := loadItems(ctx, r.pool, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func fetchPurchase(ctx context.Context, q querier, ownerID, id uuid.UUID) (Purchase, error) {
	var p Purchase
	err := q.QueryRow(ctx, `
		SELECT id, owner_id, supplier_id, purchase_date, total_cost, paid_amount, account_id, created_at
		FROM purchases
		WHERE id = $1 AND owner_id = $2`, id, ownerID).
		Scan(&p.ID, &p.OwnerID, &p.SupplierID, &p.Date, &p.TotalCost, &p.PaidAmount, &p.AccountID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, ErrPurchaseNotFound
	}
	if err != nil {
		return Purchase{}, fmt.Errorf("get purchase: %w", err)
	}
	items, err := loadItems(ctx, q, id)
	if err != nil {
		return Purchase{}, err
	}
	p.Items = items
	return p, nil
}

func loadItems(ctx context.Context, q querier, purchaseID uuid.UUID) ([]PurchaseItem, error) {
	rows, err := q.Query(ctx, `
		SELECT product_id, quantity, cost_price
		FROM purchase_items
		WHERE purchase_id = $1
		ORDER BY position`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("load purchase items: %w", err)
	}
	defer rows.Close()

	var items []PurchaseItem
	for rows.Next() {
		var it PurchaseItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.CostPrice); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type txRepo struct {
	tx      pgx.Tx
	ownerID uuid.UUID
}

func (t *txRepo) GetProduct(ctx context.Context, id uuid.UUID) (ProductState, error) {
	var st ProductState
	err := t.tx.QueryRow(ctx, `
		SELECT stock, cost FROM products
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE`, id, t.ownerID).Scan(&st.Stock, &st.Cost)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProductState{}, ledger.ErrUnknownEntity
	}
	if err != nil {
		return ProductState{}, fmt.Errorf("get product: %w", err)
	}
	return st, nil
}

func (t *txRepo) AdjustStock(ctx context.Context, productID uuid.UUID, delta int64) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE products SET stock = stock + $1, updated_at = now()
		WHERE id = $2 AND owner_id = $3 AND stock + $1 >= 0`, delta, productID, t.ownerID)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadySold
	}
	return nil
}

func (t *txRepo) SetProductCost(ctx context.Context, productID uuid.UUID, cost int64) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE products SET cost = $1, updated_at = now()
		WHERE id = $2 AND owner_id = $3`, cost, productID, t.ownerID)
	if err != nil {
		return fmt.Errorf("set product cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrUnknownEntity
	}
	return nil
}

func (t *txRepo) ApplyDeltas(ctx context.Context, deltas []ledger.Delta) error {
	return ledger.Apply(ctx, t.tx, t.ownerID, deltas)
}

func (t *txRepo) InsertPurchase(ctx context.Context, p Purchase) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO purchases (id, owner_id, supplier_id, purchase_date, total_cost, paid_amount, account_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.OwnerID, p.SupplierID, p.Date, p.TotalCost, p.PaidAmount, p.AccountID, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return insertItems(ctx, t.tx, p)
}

func (t *txRepo) UpdatePurchase(ctx context.Context, p Purchase) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE purchases
		SET supplier_id = $1, total_cost = $2, paid_amount = $3, account_id = $4
		WHERE id = $5 AND owner_id = $6`,
		p.SupplierID, p.TotalCost, p.PaidAmount, p.AccountID, p.ID, t.ownerID)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear purchase items: %w", err)
	}
	return insertItems(ctx, t.tx, p)
}

func insertItems(ctx context.Context, tx pgx.Tx, p Purchase) error {
	for i, it := range p.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO purchase_items (purchase_id, position, product_id, quantity, cost_price)
			VALUES ($1, $2, $3, $4, $5)`,
			p.ID, i, it.ProductID, it.Quantity, it.CostPrice)
		if err != nil {
			return fmt.Errorf("insert purchase item: %w", err)
		}
	}
	return nil
}

func (t *txRepo) GetPurchaseForUpdate(ctx context.Context, id uuid.UUID) (Purchase, error) {
	var p Purchase
	err := t.tx.QueryRow(ctx, `
		SELECT id, owner_id, supplier_id, purchase_date, total_cost, paid_amount, account_id, created_at
		FROM purchases
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE`, id, t.ownerID).
		Scan(&p.ID, &p.OwnerID, &p.SupplierID, &p.Date, &p.TotalCost, &p.PaidAmount, &p.AccountID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, ErrPurchaseNotFound
	}
	if err != nil {
		return Purchase{}, fmt.Errorf("lock purchase: %w", err)
	}
	items, err := loadItems(ctx, t.tx, id)
	if err != nil {
		return Purchase{}, err
	}
	p.Items = items
	return p, nil
}

func (t *txRepo) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id = $1`, id); err != nil {
		return fmt.Errorf("delete purchase items: %w", err)
	}
	tag, err := t.tx.Exec(ctx, `DELETE FROM purchases WHERE id = $1 AND owner_id = $2`, id, t.ownerID)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPurchaseNotFound
	}
	return nil
}
