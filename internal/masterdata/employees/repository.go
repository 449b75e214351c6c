package employees

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bousala/bousala/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, ownerID uuid.UUID, filters shared.ListFilters) ([]Employee, int, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (Employee, error)
	Create(ctx context.Context, employee Employee) (Employee, error)
	Update(ctx context.Context, employee Employee) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const employeeColumns = `id, owner_id, name, role, salary, loan_balance, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Role, &e.Salary, &e.LoanBalance, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, shared.ErrNotFound
	}
	return e, err
}

func (r *repository) List(ctx context.Context, ownerID uuid.UUID, filters shared.ListFilters) ([]Employee, int, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE owner_id = $1`
	countQuery := `SELECT COUNT(*) FROM employees WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		clause := ` AND (name ILIKE $` + strconv.Itoa(len(args)) + ` OR role ILIKE $` + strconv.Itoa(len(args)) + `)`
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

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, ownerID, id uuid.UUID) (Employee, error) {
	row := r.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1 AND owner_id = $2`, id, ownerID)
	return scanEmployee(row)
}

func (r *repository) Create(ctx context.Context, employee Employee) (Employee, error) {
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `INSERT INTO employees (id, owner_id, name, role, salary, loan_balance, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())`,
		employee.ID, employee.OwnerID, employee.Name, employee.Role, employee.Salary, employee.LoanBalance)
	if err != nil {
		return Employee{}, err
	}
	return r.Get(ctx, employee.OwnerID, employee.ID)
}

func (r *repository) Update(ctx context.Context, employee Employee) error {
	tag, err := r.db.Exec(ctx, `UPDATE employees SET name = $1, role = $2, salary = $3, updated_at = now()
WHERE id = $4 AND owner_id = $5`,
		employee.Name, employee.Role, employee.Salary, employee.ID, employee.OwnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM employees WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
