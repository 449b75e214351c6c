package clients

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer with a running debt balance (what they owe the
// store). Debt is maintained by the sale and cash-movement operations.
type Client struct {
	ID               uuid.UUID  `json:"id"`
	OwnerID          uuid.UUID  `json:"-"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	Debt             int64      `json:"debt"`
	LastPurchaseDate *time.Time `json:"last_purchase_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
