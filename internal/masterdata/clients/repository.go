package clients

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bousala/bousala/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, ownerID uuid.UUID, filters shared.ListFilters) ([]Client, int, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (Client, error)
	Create(ctx context.Context, client Client) (Client, error)
	Update(ctx context.Context, client Client) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const clientColumns = `id, owner_id, name, phone, debt, last_purchase_date, created_at, updated_at`

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.Debt, &c.LastPurchaseDate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) List(ctx context.Context, ownerID uuid.UUID, filters shared.ListFilters) ([]Client, int, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE owner_id = $1`
	countQuery := `SELECT COUNT(*) FROM clients WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		clause := ` AND (name ILIKE $` + strconv.Itoa(len(args)) + ` OR phone ILIKE $` + strconv.Itoa(len(args)) + `)`
		query += clause
		countQuery += clause
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, ownerID, id uuid.UUID) (Client, error) {
	row := r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1 AND owner_id = $2`, id, ownerID)
	return scanClient(row)
}

func (r *repository) Create(ctx context.Context, client Client) (Client, error) {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `INSERT INTO clients (id, owner_id, name, normalized_name, phone, debt, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())`,
		client.ID, client.OwnerID, client.Name, Normalize(client.Name), client.Phone, client.Debt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Client{}, shared.ErrDuplicate
		}
		return Client{}, err
	}
	return r.Get(ctx, client.OwnerID, client.ID)
}

func (r *repository) Update(ctx context.Context, client Client) error {
	tag, err := r.db.Exec(ctx, `UPDATE clients SET name = $1, normalized_name = $2, phone = $3, updated_at = now()
WHERE id = $4 AND owner_id = $5`,
		client.Name, Normalize(client.Name), client.Phone, client.ID, client.OwnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpsertByNameTx resolves a free-text customer name to a client id inside
// the caller's transaction, creating the client when no fold-equal name
// exists. The sale operation uses this so the invoice carries an explicit
// client id instead of a loose name join.
func UpsertByNameTx(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, name string, at time.Time) (uuid.UUID, error) {
	normalized := Normalize(name)
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM clients WHERE owner_id = $1 AND normalized_name = $2`, ownerID, normalized).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		id = uuid.New()
		_, err = tx.Exec(ctx, `INSERT INTO clients (id, owner_id, name, normalized_name, phone, debt, last_purchase_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, '', 0, $5, now(), now())`, id, ownerID, name, normalized, at)
		return id, err
	}
	if err != nil {
		return uuid.Nil, err
	}
	_, err = tx.Exec(ctx, `UPDATE clients SET last_purchase_date = $1, updated_at = now() WHERE id = $2 AND owner_id = $3`, at, id, ownerID)
	return id, err
}
