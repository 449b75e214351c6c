package products

import (
	"time"

	"github.com/google/uuid"
)

// Product is a sellable item. Stock and cost are denormalized balances
// maintained by the sale, purchase, and manufacturing operations; masterdata
// only edits the descriptive fields.
type Product struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     int64     `json:"price"`
	Cost      int64     `json:"cost"`
	Stock     int64     `json:"stock"`
	Barcode   string    `json:"barcode"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
