package analytics

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	kpiCalls   atomic.Int64
	trendCalls atomic.Int64
	kpi        KPISummary
	trend      []TrendPoint
}

func (s *stubRepo) KPISummary(ctx context.Context, filter Filter, lowStock int64) (KPISummary, error) {
	s.kpiCalls.Add(1)
	return s.kpi, nil
}

func (s *stubRepo) MonthlyTrend(ctx context.Context, ownerID uuid.UUID, months int) ([]TrendPoint, error) {
	s.trendCalls.Add(1)
	return s.trend, nil
}

func (s *stubRepo) ExpenseBreakdown(ctx context.Context, filter Filter) ([]CategoryTotal, error) {
	return nil, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestKPISummaryServedFromCacheUntilBump(t *testing.T) {
	repo := &stubRepo{kpi: KPISummary{Revenue: 1000, COGS: 400, Profit: 600}}
	svc := NewService(repo, newTestCache(t), 5)
	filter := Filter{OwnerID: uuid.New()}

	first, err := svc.GetKPISummary(context.Background(), filter)
	require.NoError(t, err)
	require.EqualValues(t, 1000, first.Revenue)
	require.EqualValues(t, 1, repo.kpiCalls.Load())

	// warm key, repository untouched
	_, err = svc.GetKPISummary(context.Background(), filter)
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.kpiCalls.Load())

	// a mutation bumps the version, the next read reloads
	require.NoError(t, svc.Bump(context.Background()))
	repo.kpi.Revenue = 1500
	second, err := svc.GetKPISummary(context.Background(), filter)
	require.NoError(t, err)
	require.EqualValues(t, 1500, second.Revenue)
	require.EqualValues(t, 2, repo.kpiCalls.Load())
}

func TestMonthlyTrendCachesPerWindow(t *testing.T) {
	repo := &stubRepo{trend: []TrendPoint{{Month: "2026-08", Sales: 900, Expenses: 300}}}
	svc := NewService(repo, newTestCache(t), 5)
	ownerID := uuid.New()

	trend, err := svc.GetMonthlyTrend(context.Background(), ownerID, 6)
	require.NoError(t, err)
	require.Len(t, trend, 1)
	require.EqualValues(t, 1, repo.trendCalls.Load())

	_, err = svc.GetMonthlyTrend(context.Background(), ownerID, 6)
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.trendCalls.Load())

	// a different window is a different key
	_, err = svc.GetMonthlyTrend(context.Background(), ownerID, 3)
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.trendCalls.Load())
}

func TestServiceWorksWithoutCache(t *testing.T) {
	repo := &stubRepo{kpi: KPISummary{Revenue: 42}}
	svc := NewService(repo, nil, 5)

	out, err := svc.GetKPISummary(context.Background(), Filter{OwnerID: uuid.New()})
	require.NoError(t, err)
	require.EqualValues(t, 42, out.Revenue)
	require.NoError(t, svc.Bump(context.Background()))
}

func TestCacheVersionInitialises(t *testing.T) {
	cache := newTestCache(t)
	ver, err := cache.Version(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, ver)

	require.NoError(t, cache.Bump(context.Background()))
	ver, err = cache.Version(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, ver)
}
