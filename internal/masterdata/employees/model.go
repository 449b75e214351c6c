package employees

import (
	"time"

	"github.com/google/uuid"
)

// Employee tracks payroll metadata and a loan balance: the amount advanced
// to them and not yet repaid. Cash movements maintain the balance.
type Employee struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"-"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Salary      int64     `json:"salary"`
	LoanBalance int64     `json:"loan_balance"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
