package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository runs report aggregations against Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs analytics repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// KPISummary folds the raw rows in the window into the dashboard card.
// Revenue and COGS come from invoices and their point-of-sale item
// snapshots; cash, receivables, payables, and stock value are current
// balances regardless of the window.
func (r *PGRepository) KPISummary(ctx context.Context, filter Filter, lowStockThreshold int64) (KPISummary, error) {
	var out KPISummary
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE((SELECT SUM(total) FROM invoices
				WHERE owner_id = $1 AND invoice_date >= $2 AND invoice_date < $3), 0),
			COALESCE((SELECT SUM(ii.quantity * p.cost) FROM invoice_items ii
				JOIN invoices i ON i.id = ii.invoice_id
				JOIN products p ON p.id = ii.product_id
				WHERE i.owner_id = $1 AND i.invoice_date >= $2 AND i.invoice_date < $3), 0),
			COALESCE((SELECT SUM(amount) FROM expenses
				WHERE owner_id = $1 AND expense_date >= $2 AND expense_date < $3), 0),
			COALESCE((SELECT SUM(balance) FROM payment_methods WHERE owner_id = $1), 0),
			COALESCE((SELECT SUM(debt) FROM clients WHERE owner_id = $1), 0),
			COALESCE((SELECT SUM(debt) FROM suppliers WHERE owner_id = $1), 0),
			COALESCE((SELECT SUM(stock * cost) FROM products WHERE owner_id = $1), 0),
			COALESCE((SELECT COUNT(*) FROM products WHERE owner_id = $1 AND stock <= $4), 0)`,
		filter.OwnerID, filter.From, filter.To, lowStockThreshold).
		Scan(&out.Revenue, &out.COGS, &out.Expenses, &out.CashOnHand,
			&out.Receivables, &out.Payables, &out.StockValue, &out.LowStockCount)
	if err != nil {
		return KPISummary{}, fmt.Errorf("kpi summary: %w", err)
	}
	out.Profit = out.Revenue - out.COGS - out.Expenses
	return out, nil
}

// MonthlyTrend returns per-month sales and expense totals, oldest first.
func (r *PGRepository) MonthlyTrend(ctx context.Context, ownerID uuid.UUID, months int) ([]TrendPoint, error) {
	since := time.Now().UTC().AddDate(0, -months, 0)
	rows, err := r.pool.Query(ctx, `
		SELECT month, SUM(sales), SUM(expenses) FROM (
			SELECT to_char(invoice_date, 'YYYY-MM') AS month, total AS sales, 0 AS expenses
			FROM invoices WHERE owner_id = $1 AND invoice_date >= $2
			UNION ALL
			SELECT to_char(expense_date, 'YYYY-MM'), 0, amount
			FROM expenses WHERE owner_id = $1 AND expense_date >= $2
		) events
		GROUP BY month
		ORDER BY month`, ownerID, since)
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	defer rows.Close()

	var out []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Month, &p.Sales, &p.Expenses); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ExpenseBreakdown groups expense totals by category, largest first.
func (r *PGRepository) ExpenseBreakdown(ctx context.Context, filter Filter) ([]CategoryTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, COALESCE(SUM(e.amount), 0)
		FROM expense_categories c
		LEFT JOIN expenses e ON e.category_id = c.id
			AND e.expense_date >= $2 AND e.expense_date < $3
		WHERE c.owner_id = $1
		GROUP BY c.id, c.name
		ORDER BY 3 DESC`, filter.OwnerID, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("expense breakdown: %w", err)
	}
	defer rows.Close()

	var out []CategoryTotal
	for rows.Next() {
		var c CategoryTotal
		if err := rows.Scan(&c.CategoryID, &c.CategoryName, &c.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
