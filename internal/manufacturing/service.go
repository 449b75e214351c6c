package manufacturing

import (
	"context"

	"github.com/google/uuid"

	"github.com/bousala/bousala/internal/ledger"
	"github.com/bousala/bousala/internal/valuation"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, ownerID uuid.UUID, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the writes a run performs inside one transaction.
type TxRepository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (ProductState, error)
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int64) error
	SetStockAndCost(ctx context.Context, productID uuid.UUID, stock, cost int64) error
	ApplyDeltas(ctx context.Context, deltas []ledger.Delta) error
}

// Invalidator lets mutations drop stale report caches.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// ManufactureRequest describes one production run.
type ManufactureRequest struct {
	RawProductID    uuid.UUID  `json:"raw_product_id" validate:"required"`
	TargetProductID uuid.UUID  `json:"target_product_id" validate:"required"`
	Quantity        int64      `json:"quantity" validate:"required,gt=0"`
	RawPerUnit      int64      `json:"raw_per_unit" validate:"required,gt=0"`
	LaborTotal      int64      `json:"labor_total" validate:"gte=0"`
	SupplierID      *uuid.UUID `json:"supplier_id,omitempty"`
}

// Service orchestrates production runs.
type Service struct {
	repo  RepositoryPort
	cache Invalidator
}

// NewService constructs manufacturing service. cache may be nil.
func NewService(repo RepositoryPort, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

// Manufacture consumes quantity·rawPerUnit units of the raw product,
// produces quantity units of the target at a weighted-average cost, and
// books the labor fee as supplier debt when a supplier is chosen. The run
// is refused before any write when raw stock cannot cover the consumption.
func (s *Service) Manufacture(ctx context.Context, ownerID uuid.UUID, req ManufactureRequest) (Result, error) {
	if req.RawProductID == req.TargetProductID {
		return Result{}, ErrSameProduct
	}
	rawConsumed := req.Quantity * req.RawPerUnit

	var res Result
	err := s.repo.WithTx(ctx, ownerID, func(ctx context.Context, tx TxRepository) error {
		raw, err := tx.GetProduct(ctx, req.RawProductID)
		if err != nil {
			return err
		}
		if raw.Stock < rawConsumed {
			return ErrInsufficientRaw
		}
		target, err := tx.GetProduct(ctx, req.TargetProductID)
		if err != nil {
			return err
		}

		batchCost, err := valuation.ManufactureUnitCost(rawConsumed, raw.Cost, req.LaborTotal, req.Quantity)
		if err != nil {
			return err
		}
		newCost, err := valuation.WeightedAverage(target.Stock, target.Cost, req.Quantity, batchCost)
		if err != nil {
			return err
		}

		if err := tx.AdjustStock(ctx, req.RawProductID, -rawConsumed); err != nil {
			return err
		}
		newStock := target.Stock + req.Quantity
		if err := tx.SetStockAndCost(ctx, req.TargetProductID, newStock, newCost); err != nil {
			return err
		}
		if err := tx.ApplyDeltas(ctx, ledger.ManufactureEffects(req.SupplierID, req.LaborTotal)); err != nil {
			return err
		}

		res = Result{
			RawProductID:    req.RawProductID,
			TargetProductID: req.TargetProductID,
			Quantity:        req.Quantity,
			RawConsumed:     rawConsumed,
			BatchUnitCost:   batchCost,
			NewTargetCost:   newCost,
			NewTargetStock:  newStock,
			LaborTotal:      req.LaborTotal,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	return res, nil
}
