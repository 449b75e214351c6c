package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup pre-computes dashboard reports for every owner.
	TaskReportsWarmup = "reports:warmup"
	// TaskLowStockScan flags products at or below the low-stock threshold.
	TaskLowStockScan = "stock:low_scan"
)

// ReportsWarmupPayload scopes a warmup run. An empty OwnerID warms every
// owner.
type ReportsWarmupPayload struct {
	OwnerID uuid.UUID `json:"owner_id"`
}

// NewReportsWarmupTask constructs the warmup task.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}

// LowStockScanPayload configures a scan run.
type LowStockScanPayload struct {
	Threshold int64 `json:"threshold"`
}

// NewLowStockScanTask constructs the scan task.
func NewLowStockScanTask(threshold int64) (*asynq.Task, error) {
	data, err := json.Marshal(LowStockScanPayload{Threshold: threshold})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}
