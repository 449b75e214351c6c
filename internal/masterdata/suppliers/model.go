package suppliers

import (
	"time"

	"github.com/google/uuid"
)

// Supplier carries a running debt balance: what the store owes them.
// Purchases, manufacturing labor fees, and cash movements maintain it.
type Supplier struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Debt      int64     `json:"debt"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
