package cashflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bousala/bousala/internal/ledger"
)

// Repository persists movements and expenses in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs cashflow repository.
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

const movementColumns = `id, owner_id, type, amount, entity_type, entity_id, account_id, description, movement_date, created_at`

// GetMovement loads one movement.
func (r *Repository) GetMovement(ctx context.Context, ownerID, id uuid.UUID) (Movement, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+movementColumns+` FROM transactions
		WHERE id = $1 AND owner_id = $2`, id, ownerID)
	m, err := scanMovement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Movement{}, ErrMovementNotFound
	}
	return m, err
}

// ListMovements returns movements matching the filter, newest first.
func (r *Repository) ListMovements(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM transactions WHERE owner_id = $1`
	args := []any{ownerID}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += ` AND movement_date >= $` + strconv.Itoa(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += ` AND movement_date < $` + strconv.Itoa(len(args))
	}
	if filter.Entity != "" {
		args = append(args, string(filter.Entity))
		query += ` AND entity_type = $` + strconv.Itoa(len(args))
	}
	if filter.EntityID != nil {
		args = append(args, *filter.EntityID)
		query += ` AND entity_id = $` + strconv.Itoa(len(args))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += ` ORDER BY movement_date DESC, created_at DESC LIMIT ` + strconv.Itoa(limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListExpenses returns expenses inside [from, to).
func (r *Repository) ListExpenses(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]Expense, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, category_id, account_id, amount, description, expense_date, created_at
		FROM expenses
		WHERE owner_id = $1 AND expense_date >= $2 AND expense_date < $3
		ORDER BY expense_date DESC`, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.CategoryID, &e.AccountID, &e.Amount, &e.Description, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListCategories returns the owner's expense categories by name.
func (r *Repository) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]ExpenseCategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, name FROM expense_categories
		WHERE owner_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []ExpenseCategory
	for rows.Next() {
		var c ExpenseCategory
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory inserts an expense category.
func (r *Repository) CreateCategory(ctx context.Context, c ExpenseCategory) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO expense_categories (id, owner_id, name)
		VALUES ($1, $2, $3)`, c.ID, c.OwnerID, c.Name)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// DeleteCategory removes an expense category.
func (r *Repository) DeleteCategory(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM expense_categories WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func scanMovement(row pgx.Row) (Movement, error) {
	var m Movement
	var typ, entity string
	err := row.Scan(&m.ID, &m.OwnerID, &typ, &m.Amount, &entity, &m.EntityID, &m.AccountID, &m.Description, &m.Date, &m.CreatedAt)
	if err != nil {
		return Movement{}, err
	}
	m.Type = ledger.Direction(typ)
	m.Entity = ledger.EntityKind(entity)
	return m, nil
}

type txRepo struct {
	tx      pgx.Tx
	ownerID uuid.UUID
}

func (t *txRepo) ApplyDeltas(ctx context.Context, deltas []ledger.Delta) error {
	return ledger.Apply(ctx, t.tx, t.ownerID, deltas)
}

func (t *txRepo) InsertMovement(ctx context.Context, m Movement) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO transactions (id, owner_id, type, amount, entity_type, entity_id, account_id, description, movement_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.OwnerID, string(m.Type), m.Amount, string(m.Entity), m.EntityID, m.AccountID, m.Description, m.Date, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (t *txRepo) UpdateMovement(ctx context.Context, m Movement) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE transactions
		SET type = $1, amount = $2, entity_type = $3, entity_id = $4, account_id = $5, description = $6, movement_date = $7
		WHERE id = $8 AND owner_id = $9`,
		string(m.Type), m.Amount, string(m.Entity), m.EntityID, m.AccountID, m.Description, m.Date, m.ID, t.ownerID)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMovementNotFound
	}
	return nil
}

func (t *txRepo) GetMovementForUpdate(ctx context.Context, id uuid.UUID) (Movement, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+movementColumns+` FROM transactions
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE`, id, t.ownerID)
	m, err := scanMovement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Movement{}, ErrMovementNotFound
	}
	return m, err
}

func (t *txRepo) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `
		DELETE FROM transactions WHERE id = $1 AND owner_id = $2`, id, t.ownerID)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMovementNotFound
	}
	return nil
}

func (t *txRepo) InsertExpense(ctx context.Context, e Expense) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO expenses (id, owner_id, category_id, account_id, amount, description, expense_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.OwnerID, e.CategoryID, e.AccountID, e.Amount, e.Description, e.Date, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (t *txRepo) GetExpenseForUpdate(ctx context.Context, id uuid.UUID) (Expense, error) {
	var e Expense
	err := t.tx.QueryRow(ctx, `
		SELECT id, owner_id, category_id, account_id, amount, description, expense_date, created_at
		FROM expenses
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE`, id, t.ownerID).
		Scan(&e.ID, &e.OwnerID, &e.CategoryID, &e.AccountID, &e.Amount, &e.Description, &e.Date, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Expense{}, ErrExpenseNotFound
	}
	if err != nil {
		return Expense{}, fmt.Errorf("lock expense: %w", err)
	}
	return e, nil
}

func (t *txRepo) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `
		DELETE FROM expenses WHERE id = $1 AND owner_id = $2`, id, t.ownerID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
