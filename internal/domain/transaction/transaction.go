package transaction

import (
	"errors"
	"time"
)

// Transaction types form a closed set, enforced both at binding time
// (oneof) and by a CHECK constraint in the schema.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

var ErrNotFound = errors.New("transaction not found")

type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summary is the dashboard aggregate over a user's transactions.
type Summary struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	Balance      float64 `json:"balance"`
}

// Amount is a pointer in the create request so that a legitimate zero
// amount still satisfies the required rule.
type CreateTransactionRequest struct {
	Amount      *Amount   `json:"amount" binding:"required"`
	Type        string    `json:"type" binding:"required,oneof=income expense"`
	Category    string    `json:"category" binding:"required,min=1,max=80"`
	Date        *DateTime `json:"date"`
	Description string    `json:"description" binding:"omitempty,max=500"`
}

// UpdateTransactionRequest is a partial update over the mutable field
// whitelist. Ownership and id are not part of this payload; unknown
// JSON keys are dropped by the decoder.
type UpdateTransactionRequest struct {
	Amount      *Amount   `json:"amount"`
	Type        *string   `json:"type" binding:"omitempty,oneof=income expense"`
	Category    *string   `json:"category" binding:"omitempty,min=1,max=80"`
	Date        *DateTime `json:"date"`
	Description *string   `json:"description" binding:"omitempty,max=500"`
}

// Empty reports whether the update carries no recognized field at all.
func (r UpdateTransactionRequest) Empty() bool {
	return r.Amount == nil && r.Type == nil && r.Category == nil && r.Date == nil && r.Description == nil
}
