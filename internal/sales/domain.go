// Package sales implements the point-of-sale invoice operations. CreateSale
// and DeleteSale are single transactions that keep the invoice rows, product
// stock, client debt, and the cash account consistent with each other.
package sales

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus summarises how much of an invoice has been settled.
type InvoiceStatus string

const (
	StatusPaid    InvoiceStatus = "paid"
	StatusPartial InvoiceStatus = "partial"
	StatusUnpaid  InvoiceStatus = "unpaid"
)

// Invoice is a completed sale. Item prices are point-in-time snapshots and
// never change after creation. ClientID is resolved from the free-text
// customer name when the sale is created; it stays null for walk-ins.
type Invoice struct {
	ID              uuid.UUID     `json:"id"`
	OwnerID         uuid.UUID     `json:"-"`
	CustomerName    string        `json:"customer_name"`
	ClientID        *uuid.UUID    `json:"client_id,omitempty"`
	Date            time.Time     `json:"date"`
	Items           []InvoiceItem `json:"items"`
	Total           int64         `json:"total"`
	PaidAmount      int64         `json:"paid_amount"`
	RemainingAmount int64         `json:"remaining_amount"`
	Status          InvoiceStatus `json:"status"`
	AccountID       uuid.UUID     `json:"account_id"`
	CreatedAt       time.Time     `json:"created_at"`
}

// InvoiceItem is one sold line. ProductName and PriceAtSale are snapshots.
type InvoiceItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	PriceAtSale int64     `json:"price_at_sale"`
}

// ProductInfo is the slice of a product the sale path needs.
type ProductInfo struct {
	ID    uuid.UUID
	Name  string
	Stock int64
}

var (
	// ErrInsufficientStock rejects a sale that would take any product below zero.
	ErrInsufficientStock = errors.New("sales: insufficient stock")
	// ErrInvoiceNotFound indicates a missing invoice row.
	ErrInvoiceNotFound = errors.New("sales: invoice not found")
	// ErrEmptyCart rejects a sale without items.
	ErrEmptyCart = errors.New("sales: at least one item required")
)

// StatusFor derives the invoice status from its amounts.
func StatusFor(total, paid int64) InvoiceStatus {
	switch {
	case paid >= total:
		return StatusPaid
	case paid > 0:
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// Remaining floors the unpaid remainder at zero; overpayment never produces
// negative debt.
func Remaining(total, paid int64) int64 {
	if r := total - paid; r > 0 {
		return r
	}
	return 0
}
