// Package purchasing implements supplier purchase operations. A purchase
// raises stock, overwrites each product's unit cost with the purchase line
// cost, books the unpaid remainder as supplier debt, and pays from a cash
// account, all in one transaction.
//
// The cost overwrite is deliberate and differs from manufacturing, which
// blends by weighted average. Deleting a purchase therefore restores stock,
// supplier debt, and the cash balance but NOT the previous cost.
package purchasing

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Purchase is a goods receipt from a supplier.
type Purchase struct {
	ID         uuid.UUID      `json:"id"`
	OwnerID    uuid.UUID      `json:"-"`
	SupplierID uuid.UUID      `json:"supplier_id"`
	Date       time.Time      `json:"date"`
	Items      []PurchaseItem `json:"items"`
	TotalCost  int64          `json:"total_cost"`
	PaidAmount int64          `json:"paid_amount"`
	AccountID  uuid.UUID      `json:"account_id"`
	CreatedAt  time.Time      `json:"created_at"`
}

// PurchaseItem is one received line. CostPrice becomes the product's new
// unit cost.
type PurchaseItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	CostPrice int64     `json:"cost_price"`
}

// ProductState is the slice of a product the purchase path reads.
type ProductState struct {
	Stock int64
	Cost  int64
}

var (
	// ErrPurchaseNotFound indicates a missing purchase row.
	ErrPurchaseNotFound = errors.New("purchasing: purchase not found")
	// ErrAlreadySold rejects deleting a purchase whose units have since been
	// sold; there is not enough stock left to reverse the receipt.
	ErrAlreadySold = errors.New("purchasing: cannot delete, purchased units already sold")
	// ErrNoItems rejects a purchase without lines.
	ErrNoItems = errors.New("purchasing: at least one item required")
)
