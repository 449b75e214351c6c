package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LowStockScanJob walks every owner's products and logs the ones at or
// below the threshold. The scan feeds the dashboard's low-stock count and
// gives operators a nightly record in the logs.
type LowStockScanJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewLowStockScanJob constructs the scan job.
func NewLowStockScanJob(pool *pgxpool.Pool, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{pool: pool, logger: logger}
}

// Handle processes TaskLowStockScan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	threshold := payload.Threshold
	if threshold <= 0 {
		threshold = 5
	}

	rows, err := j.pool.Query(ctx, `
		SELECT owner_id, id, name, stock FROM products
		WHERE stock <= $1
		ORDER BY owner_id, stock`, threshold)
	if err != nil {
		return fmt.Errorf("scan products: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var ownerID, productID, name string
		var stock int64
		if err := rows.Scan(&ownerID, &productID, &name, &stock); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		count++
		j.logger.Warn("low stock",
			slog.String("owner", ownerID),
			slog.String("product", productID),
			slog.String("name", name),
			slog.Int64("stock", stock))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	j.logger.Info("low stock scan finished", slog.Int("flagged", count), slog.Int64("threshold", threshold))
	return nil
}
