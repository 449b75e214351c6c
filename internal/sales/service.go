package sales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bousala/bousala/internal/ledger"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, ownerID uuid.UUID, fn func(context.Context, TxRepository) error) error
	GetInvoice(ctx context.Context, ownerID, id uuid.UUID) (Invoice, error)
	ListInvoices(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Invoice, error)
}

// TxRepository exposes the writes a sale performs inside one transaction.
type TxRepository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (ProductInfo, error)
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int64) error
	UpsertClientByName(ctx context.Context, name string, at time.Time) (uuid.UUID, error)
	ApplyDeltas(ctx context.Context, deltas []ledger.Delta) error
	InsertInvoice(ctx context.Context, inv Invoice) error
	GetInvoiceForUpdate(ctx context.Context, id uuid.UUID) (Invoice, error)
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
}

// Invalidator lets mutations drop stale report caches.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	From     time.Time
	To       time.Time
	ClientID *uuid.UUID
	Limit    int
}

// Service coordinates the sale operations.
type Service struct {
	repo  RepositoryPort
	cache Invalidator
	clock func() time.Time
}

// NewService builds Service. cache may be nil.
func NewService(repo RepositoryPort, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache, clock: time.Now}
}

// CreateSale completes a checkout: it inserts the invoice, decrements every
// line's stock under the non-negative guard, resolves the customer name to a
// client (creating one if needed) and books the unpaid remainder as debt,
// and credits the cash account with the paid amount. Any failure aborts the
// whole transaction with nothing applied.
func (s *Service) CreateSale(ctx context.Context, ownerID uuid.UUID, req CreateSaleRequest) (Invoice, error) {
	if len(req.Items) == 0 {
		return Invoice{}, ErrEmptyCart
	}
	now := s.clock().UTC()

	inv := Invoice{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		CustomerName: req.CustomerName,
		Date:         now,
		PaidAmount:   req.PaidAmount,
		AccountID:    req.AccountID,
		CreatedAt:    now,
	}
	err := s.repo.WithTx(ctx, ownerID, func(ctx context.Context, tx TxRepository) error {
		var total int64
		for _, line := range req.Items {
			product, err := tx.GetProduct(ctx, line.ProductID)
			if err != nil {
				return err
			}
			inv.Items = append(inv.Items, InvoiceItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				PriceAtSale: line.PriceAtSale,
			})
			total += line.Quantity * line.PriceAtSale
		}
		inv.Total = total
		inv.RemainingAmount = Remaining(total, req.PaidAmount)
		inv.Status = StatusFor(total, req.PaidAmount)

		if req.CustomerName != "" {
			clientID, err := tx.UpsertClientByName(ctx, req.CustomerName, now)
			if err != nil {
				return err
			}
			inv.ClientID = &clientID
		}

		if err := tx.InsertInvoice(ctx, inv); err != nil {
			return err
		}
		for _, line := range inv.Items {
			if err := tx.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				return err
			}
		}
		return tx.ApplyDeltas(ctx, ledger.SaleEffects(inv.ClientID, inv.AccountID, inv.Total, inv.PaidAmount))
	})
	if err != nil {
		return Invoice{}, err
	}
	s.bump(ctx)
	return inv, nil
}

// DeleteSale reverses a sale completely: every item is restocked, the
// client's debt drops by the invoice remainder (floored at zero), the cash
// account gives back the paid amount, and the invoice row is removed.
func (s *Service) DeleteSale(ctx context.Context, ownerID, invoiceID uuid.UUID) error {
	err := s.repo.WithTx(ctx, ownerID, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.OwnerID != ownerID {
			return ErrInvoiceNotFound
		}
		for _, line := range inv.Items {
			if err := tx.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		if err := tx.ApplyDeltas(ctx, ledger.SaleReversal(inv.ClientID, inv.AccountID, inv.Total, inv.PaidAmount)); err != nil {
			return err
		}
		return tx.DeleteInvoice(ctx, invoiceID)
	})
	if err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// GetInvoice loads one invoice with its items.
func (s *Service) GetInvoice(ctx context.Context, ownerID, id uuid.UUID) (Invoice, error) {
	return s.repo.GetInvoice(ctx, ownerID, id)
}

// ListInvoices returns invoices newest first.
func (s *Service) ListInvoices(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx, ownerID, filter)
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}
