package accounts

import (
	"time"

	"github.com/google/uuid"
)

// Account is a named money pool (cash drawer, mobile wallet) with a signed
// running balance. The balance may go negative; operations never clamp it.
type Account struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
