package manufacturing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bousala/bousala/internal/ledger"
)

// Repository runs production transactions against Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs manufacturing repository.
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
		return ProductState{}, ErrProductNotFound
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
		return ErrInsufficientRaw
	}
	return nil
}

func (t *txRepo) SetStockAndCost(ctx context.Context, productID uuid.UUID, stock, cost int64) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE products SET stock = $1, cost = $2, updated_at = now()
		WHERE id = $3 AND owner_id = $4`, stock, cost, productID, t.ownerID)
	if err != nil {
		return fmt.Errorf("set stock and cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (t *txRepo) ApplyDeltas(ctx context.Context, deltas []ledger.Delta) error {
	return ledger.Apply(ctx, t.tx, t.ownerID, deltas)
}
