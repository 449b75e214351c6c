package sales

import "github.com/google/uuid"

// CreateSaleRequest is the POS checkout payload.
type CreateSaleRequest struct {
	CustomerName string            `json:"customer_name"`
	AccountID    uuid.UUID         `json:"account_id" validate:"required"`
	PaidAmount   int64             `json:"paid_amount" validate:"gte=0"`
	Items        []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleItemRequest is one cart line.
type SaleItemRequest struct {
	ProductID   uuid.UUID `json:"product_id" validate:"required"`
	Quantity    int64     `json:"quantity" validate:"required,gt=0"`
	PriceAtSale int64     `json:"price_at_sale" validate:"gte=0"`
}
