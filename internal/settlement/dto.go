package settlement

import (
	"github.com/google/uuid"

	"github.com/divvyapp/divvy/internal/money"
)

// CreateSettlementRequest represents the request to record a settlement.
// Amount is in major units and converted at the currency's precision.
type CreateSettlementRequest struct {
	GroupID  uuid.UUID `json:"group_id" validate:"required"`
	PayerID  uuid.UUID `json:"payer_id" validate:"required"`
	PayeeID  uuid.UUID `json:"payee_id" validate:"required"`
	Amount   float64   `json:"amount" validate:"required,gt=0"`
	Currency string    `json:"currency" validate:"required,len=3"`
	Note     *string   `json:"note,omitempty" validate:"omitempty,max=255"`
}

// UpdateSettlementRequest represents the request to correct a settlement.
// Parties are fixed; only amount, currency and note can change.
type UpdateSettlementRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"required,len=3"`
	Note     *string `json:"note,omitempty" validate:"omitempty,max=255"`
}

// SettlementResponse represents the response for a settlement
type SettlementResponse struct {
	ID            uuid.UUID `json:"id"`
	GroupID       uuid.UUID `json:"group_id"`
	PayerID       uuid.UUID `json:"payer_id"`
	PayerUsername string    `json:"payer_username,omitempty"`
	PayeeID       uuid.UUID `json:"payee_id"`
	PayeeUsername string    `json:"payee_username,omitempty"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Note          *string   `json:"note,omitempty"`
	CreatedBy     uuid.UUID `json:"created_by"`
	CreatedAt     string    `json:"created_at"`
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:            s.ID,
		GroupID:       s.GroupID,
		PayerID:       s.PayerID,
		PayerUsername: s.PayerUsername,
		PayeeID:       s.PayeeID,
		PayeeUsername: s.PayeeUsername,
		Amount:        money.FromMinorUnits(s.Amount, s.Currency),
		Currency:      s.Currency,
		Note:          s.Note,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
