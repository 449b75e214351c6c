package analytics

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// KPISummary contains the indicators surfaced on the dashboard.
type KPISummary struct {
	Revenue       int64 `json:"revenue"`
	COGS          int64 `json:"cogs"`
	Profit        int64 `json:"profit"`
	Expenses      int64 `json:"expenses"`
	CashOnHand    int64 `json:"cash_on_hand"`
	Receivables   int64 `json:"receivables"`
	Payables      int64 `json:"payables"`
	StockValue    int64 `json:"stock_value"`
	LowStockCount int64 `json:"low_stock_count"`
}

// TrendPoint is one month of sales and expense totals.
type TrendPoint struct {
	Month    string `json:"month"`
	Sales    int64  `json:"sales"`
	Expenses int64  `json:"expenses"`
}

// CategoryTotal is one slice of the expense breakdown.
type CategoryTotal struct {
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Total        int64     `json:"total"`
}

// Filter scopes a report to an owner and date window.
type Filter struct {
	OwnerID uuid.UUID
	From    time.Time
	To      time.Time
}

// Repository exposes the read-side aggregation queries.
type Repository interface {
	KPISummary(ctx context.Context, filter Filter, lowStockThreshold int64) (KPISummary, error)
	MonthlyTrend(ctx context.Context, ownerID uuid.UUID, months int) ([]TrendPoint, error)
	ExpenseBreakdown(ctx context.Context, filter Filter) ([]CategoryTotal, error)
}

// Service coordinates report queries with the cache layer. Concurrent
// requests for the same cold key share one loader run.
type Service struct {
	repo              Repository
	cache             *Cache
	group             singleflight.Group
	lowStockThreshold int64
}

// NewService wires a Repository with a Cache helper. cache may be nil.
func NewService(repo Repository, cache *Cache, lowStockThreshold int64) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 5
	}
	return &Service{repo: repo, cache: cache, lowStockThreshold: lowStockThreshold}
}

// GetKPISummary resolves the dashboard KPI card.
func (s *Service) GetKPISummary(ctx context.Context, filter Filter) (KPISummary, error) {
	key, err := s.cache.BuildKey(ctx, "kpi", filter.OwnerID.String(), window(filter))
	if err != nil {
		return KPISummary{}, err
	}
	var out KPISummary
	err = s.fetch(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.KPISummary(ctx, filter, s.lowStockThreshold)
	})
	return out, err
}

// GetMonthlyTrend returns the last months of sales and expense totals.
func (s *Service) GetMonthlyTrend(ctx context.Context, ownerID uuid.UUID, months int) ([]TrendPoint, error) {
	if months <= 0 || months > 36 {
		months = 12
	}
	key, err := s.cache.BuildKey(ctx, "trend", ownerID.String(), strconv.Itoa(months))
	if err != nil {
		return nil, err
	}
	var out []TrendPoint
	err = s.fetch(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.MonthlyTrend(ctx, ownerID, months)
	})
	return out, err
}

// GetExpenseBreakdown returns expense totals grouped by category.
func (s *Service) GetExpenseBreakdown(ctx context.Context, filter Filter) ([]CategoryTotal, error) {
	key, err := s.cache.BuildKey(ctx, "expenses", filter.OwnerID.String(), window(filter))
	if err != nil {
		return nil, err
	}
	var out []CategoryTotal
	err = s.fetch(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.ExpenseBreakdown(ctx, filter)
	})
	return out, err
}

// Bump invalidates cached reports. Exposed so mutating services can depend
// on the narrow Invalidator port instead of the whole service.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) fetch(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	_, err, _ := s.group.Do(key, func() (interface{}, error) {
		return nil, s.cache.FetchJSON(ctx, key, dest, loader)
	})
	return err
}

func window(f Filter) string {
	const layout = "2006-01-02"
	from, to := "-", "-"
	if !f.From.IsZero() {
		from = f.From.Format(layout)
	}
	if !f.To.IsZero() {
		to = f.To.Format(layout)
	}
	return from + ".." + to
}
