package products

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bousala/bousala/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, ownerID uuid.UUID, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (Product, error)
	GetByBarcode(ctx context.Context, ownerID uuid.UUID, barcode string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, owner_id, name, category, price, cost, stock, barcode, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Category, &p.Price, &p.Cost, &p.Stock, &p.Barcode, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) List(ctx context.Context, ownerID uuid.UUID, filters shared.ListFilters) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE owner_id = $1`
	countQuery := `SELECT COUNT(*) FROM products WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		clause := ` AND (name ILIKE $` + strconv.Itoa(len(args)) + ` OR barcode ILIKE $` + strconv.Itoa(len(args)) + `)`
		query += clause
		countQuery += clause
	}
	if filters.Category != nil {
		args = append(args, *filters.Category)
		clause := ` AND category = $` + strconv.Itoa(len(args))
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

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, ownerID, id uuid.UUID) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND owner_id = $2`, id, ownerID)
	return scanProduct(row)
}

func (r *repository) GetByBarcode(ctx context.Context, ownerID uuid.UUID, barcode string) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1 AND owner_id = $2`, barcode, ownerID)
	return scanProduct(row)
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `INSERT INTO products (id, owner_id, name, category, price, cost, stock, barcode, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`,
		product.ID, product.OwnerID, product.Name, product.Category, product.Price, product.Cost, product.Stock, product.Barcode)
	if err != nil {
		return Product{}, mapDuplicate(err)
	}
	return r.Get(ctx, product.OwnerID, product.ID)
}

func (r *repository) Update(ctx context.Context, product Product) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET name = $1, category = $2, price = $3, barcode = $4, updated_at = now()
WHERE id = $5 AND owner_id = $6`,
		product.Name, product.Category, product.Price, product.Barcode, product.ID, product.OwnerID)
	if err != nil {
		return mapDuplicate(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}
