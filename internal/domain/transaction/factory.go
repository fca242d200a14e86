package transaction

import (
	"time"

	"github.com/google/uuid"
)

// NewFromCreateRequest builds a transaction owned by the given user.
// Ownership always comes from the verified caller, never the payload.
func NewFromCreateRequest(userID string, req CreateTransactionRequest) Transaction {
	now := time.Now()

	date := now
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.Time
	}

	return Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      req.Amount.Float64(),
		Type:        req.Type,
		Category:    req.Category,
		Date:        date,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
