package settlement

import (
	"time"

	"github.com/google/uuid"
)

// Settlement represents a recorded repayment between two group members.
// Amount is in the currency's minor units.
type Settlement struct {
	ID            uuid.UUID `json:"id"`
	GroupID       uuid.UUID `json:"group_id"`
	PayerID       uuid.UUID `json:"payer_id"`
	PayeeID       uuid.UUID `json:"payee_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Note          *string   `json:"note,omitempty"`
	CreatedBy     uuid.UUID `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	PayerUsername string    `json:"payer_username,omitempty"` // Joined from users table
	PayeeUsername string    `json:"payee_username,omitempty"` // Joined from users table
}
