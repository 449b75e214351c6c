package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bousala/bousala/internal/analytics"
)

// ReportsWarmupJob fills the report cache ahead of dashboard traffic.
type ReportsWarmupJob struct {
	service *analytics.Service
	pool    *pgxpool.Pool
	logger  *slog.Logger
}

// NewReportsWarmupJob constructs the warmup job.
func NewReportsWarmupJob(service *analytics.Service, pool *pgxpool.Pool, logger *slog.Logger) *ReportsWarmupJob {
	return &ReportsWarmupJob{service: service, pool: pool, logger: logger}
}

// Handle processes TaskReportsWarmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	owners, err := j.owners(ctx, payload.OwnerID)
	if err != nil {
		return fmt.Errorf("list owners: %w", err)
	}

	now := time.Now().UTC()
	filter := analytics.Filter{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:   now.Add(24 * time.Hour),
	}
	for _, ownerID := range owners {
		filter.OwnerID = ownerID
		if _, err := j.service.GetKPISummary(ctx, filter); err != nil {
			j.logger.Warn("kpi warmup failed", slog.String("owner", ownerID.String()), slog.Any("error", err))
			continue
		}
		if _, err := j.service.GetMonthlyTrend(ctx, ownerID, 12); err != nil {
			j.logger.Warn("trend warmup failed", slog.String("owner", ownerID.String()), slog.Any("error", err))
		}
		if _, err := j.service.GetExpenseBreakdown(ctx, filter); err != nil {
			j.logger.Warn("expense warmup failed", slog.String("owner", ownerID.String()), slog.Any("error", err))
		}
	}
	j.logger.Info("reports warmup finished", slog.Int("owners", len(owners)))
	return nil
}

func (j *ReportsWarmupJob) owners(ctx context.Context, only uuid.UUID) ([]uuid.UUID, error) {
	if only != uuid.Nil {
		return []uuid.UUID{only}, nil
	}
	rows, err := j.pool.Query(ctx, `SELECT id FROM users WHERE is_active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
