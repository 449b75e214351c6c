package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bousala/bousala/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]Account, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (Account, error)
	Create(ctx context.Context, account Account) (Account, error)
	Update(ctx context.Context, account Account) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, owner_id, name, balance, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, shared.ErrNotFound
	}
	return a, err
}

func (r *repository) List(ctx context.Context, ownerID uuid.UUID) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM payment_methods WHERE owner_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, ownerID, id uuid.UUID) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM payment_methods WHERE id = $1 AND owner_id = $2`, id, ownerID)
	return scanAccount(row)
}

func (r *repository) Create(ctx context.Context, account Account) (Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `INSERT INTO payment_methods (id, owner_id, name, balance, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())`,
		account.ID, account.OwnerID, account.Name, account.Balance)
	if err != nil {
		return Account{}, err
	}
	return r.Get(ctx, account.OwnerID, account.ID)
}

func (r *repository) Update(ctx context.Context, account Account) error {
	tag, err := r.db.Exec(ctx, `UPDATE payment_methods SET name = $1, updated_at = now() WHERE id = $2 AND owner_id = $3`,
		account.Name, account.ID, account.OwnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payment_methods WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
