// Package manufacturing turns raw-material stock into finished goods. A run
// is an atomic composite, not a stored entity: it consumes raw stock, folds
// the batch cost into the target product by weighted average, and books an
// optional labor fee as supplier debt. The balances it leaves behind are the
// only record of the run.
package manufacturing

import (
	"errors"

	"github.com/google/uuid"
)

// ProductState is the slice of a product a run reads and writes.
type ProductState struct {
	Stock int64
	Cost  int64
}

// Result summarizes what a completed run did.
type Result struct {
	RawProductID    uuid.UUID `json:"raw_product_id"`
	TargetProductID uuid.UUID `json:"target_product_id"`
	Quantity        int64     `json:"quantity"`
	RawConsumed     int64     `json:"raw_consumed"`
	BatchUnitCost   int64     `json:"batch_unit_cost"`
	NewTargetCost   int64     `json:"new_target_cost"`
	NewTargetStock  int64     `json:"new_target_stock"`
	LaborTotal      int64     `json:"labor_total"`
}

var (
	// ErrInsufficientRaw rejects a run whose raw consumption exceeds the
	// source product's stock. Nothing is written.
	ErrInsufficientRaw = errors.New("manufacturing: insufficient raw material stock")

	// ErrProductNotFound is returned when either product is missing.
	ErrProductNotFound = errors.New("manufacturing: product not found")

	// ErrSameProduct rejects a run whose source and target are one product.
	ErrSameProduct = errors.New("manufacturing: raw and target product must differ")
)
