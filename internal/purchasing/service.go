package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bousala/bousala/internal/ledger"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, ownerID uuid.UUID, fn func(context.Context, TxRepository) error) error
	GetPurchase(ctx context.Context, ownerID, id uuid.UUID) (Purchase, error)
	ListPurchases(ctx context.Context, ownerID uuid.UUID, limit int) ([]Purchase, error)
}

// TxRepository exposes the writes a purchase performs inside one transaction.
type TxRepository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (ProductState, error)
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int64) error
	SetProductCost(ctx context.Context, productID uuid.UUID, cost int64) error
	ApplyDeltas(ctx context.Context, deltas []ledger.Delta) error
	InsertPurchase(ctx context.Context, p Purchase) error
	UpdatePurchase(ctx context.Context, p Purchase) error
	GetPurchaseForUpdate(ctx context.Context, id uuid.UUID) (Purchase, error)
	DeletePurchase(ctx context.Context, id uuid.UUID) error
}

// Invalidator lets mutations drop stale report caches.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// CreatePurchaseRequest describes a goods receipt.
type CreatePurchaseRequest struct {
	SupplierID uuid.UUID             `json:"supplier_id" validate:"required"`
	AccountID  uuid.UUID             `json:"account_id" validate:"required"`
	PaidAmount int64                 `json:"paid_amount" validate:"gte=0"`
	Items      []PurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PurchaseItemRequest is one received line.
type PurchaseItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int64     `json:"quantity" validate:"required,gt=0"`
	CostPrice int64     `json:"cost_price" validate:"gte=0"`
}

// Service orchestrates purchase flows.
type Service struct {
	repo  RepositoryPort
	cache Invalidator
	clock func() time.Time
}

// NewService constructs purchasing service. cache may be nil.
func NewService(repo RepositoryPort, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache, clock: time.Now}
}

// CreatePurchase receives goods: stock rises per line, each product's unit
// cost is overwritten with the line cost, the unpaid remainder becomes
// supplier debt, and the paid amount leaves the cash account.
func (s *Service) CreatePurchase(ctx context.Context, ownerID uuid.UUID, req CreatePurchaseRequest) (Purchase, error) {
	if len(req.Items) == 0 {
		return Purchase{}, ErrNoItems
	}
	now := s.clock().UTC()
	p := Purchase{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		SupplierID: req.SupplierID,
		Date:       now,
		PaidAmount: req.PaidAmount,
		AccountID:  req.AccountID,
		CreatedAt:  now,
	}
	for _, line := range req.Items {
		p.Items = append(p.Items, PurchaseItem{ProductID: line.ProductID, Quantity: line.Quantity, CostPrice: line.CostPrice})
		p.TotalCost += line.Quantity * line.CostPrice
	}

	err := s.repo.WithTx(ctx, ownerID, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertPurchase(ctx, p); err != nil {
			return err
		}
		if err := applyReceipt(ctx, tx, p); err != nil {
			return err
		}
		return tx.ApplyDeltas(ctx, ledger.PurchaseEffects(p.SupplierID, p.AccountID, p.TotalCost, p.PaidAmount))
	})
	if err != nil {
		return Purchase{}, err
	}
	s.bump(ctx)
	return p, nil
}

// DeletePurchase reverses a receipt. It is refused outright when any line's
// current stock is below the purchased quantity: those units were already
// sold and the receipt can no longer be unwound. On success stock, supplier
// debt, and the cash balance return to their prior values; the product cost
// keeps its overwritten value.
func (s *Service) DeletePurchase(ctx context.Context, ownerID, purchaseID uuid.UUID) error {
	err := s.repo.WithTx(ctx, ownerID, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetPurchaseForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if p.OwnerID != ownerID {
			return ErrPurchaseNotFound
		}
		if err := reverseReceipt(ctx, tx, p); err != nil {
			return err
		}
		if err := tx.ApplyDeltas(ctx, ledger.Invert(ledger.PurchaseEffects(p.SupplierID, p.AccountID, p.TotalCost, p.PaidAmount))); err != nil {
			return err
		}
		return tx.DeletePurchase(ctx, purchaseID)
	})
	if err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// EditPurchase replaces a receipt with new values by fully reverting the
// old effects and applying the new ones, never by computing a net diff.
// The same already-sold precondition as deletion applies to the revert.
func (s *Service) EditPurchase(ctx context.Context, ownerID, purchaseID uuid.UUID, req CreatePurchaseRequest) (Purchase, error) {
	if len(req.Items) == 0 {
		return Purchase{}, ErrNoItems
	}
	var updated Purchase
	err := s.repo.WithTx(ctx, ownerID, func(ctx context.Context, tx TxRepository) error {
		old, err := tx.GetPurchaseForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if old.OwnerID != ownerID {
			return ErrPurchaseNotFound
		}
		if err := reverseReceipt(ctx, tx, old); err != nil {
			return err
		}
		if err := tx.ApplyDeltas(ctx, ledger.Invert(ledger.PurchaseEffects(old.SupplierID, old.AccountID, old.TotalCost, old.PaidAmount))); err != nil {
			return err
		}

		updated = Purchase{
			ID:         old.ID,
			OwnerID:    old.OwnerID,
			SupplierID: req.SupplierID,
			Date:       old.Date,
			PaidAmount: req.PaidAmount,
			AccountID:  req.AccountID,
			CreatedAt:  old.CreatedAt,
		}
		for _, line := range req.Items {
			updated.Items = append(updated.Items, PurchaseItem{ProductID: line.ProductID, Quantity: line.Quantity, CostPrice: line.CostPrice})
			updated.TotalCost += line.Quantity * line.CostPrice
		}
		if err := tx.UpdatePurchase(ctx, updated); err != nil {
			return err
		}
		if err := applyReceipt(ctx, tx, updated); err != nil {
			return err
		}
		return tx.ApplyDeltas(ctx, ledger.PurchaseEffects(updated.SupplierID, updated.AccountID, updated.TotalCost, updated.PaidAmount))
	})
	if err != nil {
		return Purchase{}, err
	}
	s.bump(ctx)
	return updated, nil
}

// GetPurchase loads one purchase with items.
func (s *Service) GetPurchase(ctx context.Context, ownerID, id uuid.UUID) (Purchase, error) {
	return s.repo.GetPurchase(ctx, ownerID, id)
}

// ListPurchases returns purchases newest first.
func (s *Service) ListPurchases(ctx context.Context, ownerID uuid.UUID, limit int) ([]Purchase, error) {
	return s.repo.ListPurchases(ctx, ownerID, limit)
}

func applyReceipt(ctx context.Context, tx TxRepository, p Purchase) error {
	for _, line := range p.Items {
		if err := tx.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
			return err
		}
		if err := tx.SetProductCost(ctx, line.ProductID, line.CostPrice); err != nil {
			return err
		}
	}
	return nil
}

func reverseReceipt(ctx context.Context, tx TxRepository, p Purchase) error {
	// check every line before touching anything so the error carries a
	// precise cause and the refusal leaves no mutation
	for _, line := range p.Items {
		product, err := tx.GetProduct(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if product.Stock < line.Quantity {
			return ErrAlreadySold
		}
	}
	for _, line := range p.Items {
		if err := tx.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}
