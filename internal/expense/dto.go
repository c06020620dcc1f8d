package expense

import (
	"github.com/google/uuid"

	"github.com/divvyapp/divvy/internal/expense/split"
	"github.com/divvyapp/divvy/internal/money"
)

// SplitParticipant is one participant entry in a create/update request.
// Amounts come in as major units and are converted at the currency's
// precision.
type SplitParticipant struct {
	MemberID   uuid.UUID `json:"member_id" validate:"required"`
	Percentage *float64  `json:"percentage,omitempty"` // For PERCENTAGE split
	Amount     *float64  `json:"amount,omitempty"`     // For EXACT split
}

// toSplitInput converts to the split package's minor-unit input type.
func (p *SplitParticipant) toSplitInput(currency string) (split.Input, error) {
	in := split.Input{
		MemberID:   p.MemberID,
		Percentage: p.Percentage,
	}
	if p.Amount != nil {
		minor, err := money.ToMinorUnits(*p.Amount, currency)
		if err != nil {
			return split.Input{}, err
		}
		in.Amount = &minor
	}
	return in, nil
}

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	GroupID      uuid.UUID           `json:"group_id" validate:"required"`
	Description  string              `json:"description" validate:"required,min=1,max=255"`
	Amount       float64             `json:"amount" validate:"required,gt=0"`
	Currency     string              `json:"currency" validate:"required,len=3"`
	SplitType    string              `json:"split_type" validate:"required,oneof=EQUAL PERCENTAGE EXACT"`
	Participants []*SplitParticipant `json:"participants" validate:"required,min=1"`
}

// UpdateExpenseRequest is a full update: history is not edited in place, the
// expense is replaced wholesale and its splits recomputed.
type UpdateExpenseRequest struct {
	Description  string              `json:"description" validate:"required,min=1,max=255"`
	Amount       float64             `json:"amount" validate:"required,gt=0"`
	Currency     string              `json:"currency" validate:"required,len=3"`
	SplitType    string              `json:"split_type" validate:"required,oneof=EQUAL PERCENTAGE EXACT"`
	Participants []*SplitParticipant `json:"participants" validate:"required,min=1"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID            uuid.UUID        `json:"id"`
	GroupID       uuid.UUID        `json:"group_id"`
	PayerID       uuid.UUID        `json:"payer_id"`
	PayerUsername string           `json:"payer_username,omitempty"`
	Description   string           `json:"description"`
	Amount        float64          `json:"amount"`
	Currency      string           `json:"currency"`
	SplitType     string           `json:"split_type"`
	CreatedAt     string           `json:"created_at"`
	DeletedAt     *string          `json:"deleted_at,omitempty"`
	Splits        []*SplitResponse `json:"splits,omitempty"`
}

// SplitResponse represents the response for a split
type SplitResponse struct {
	ID             uuid.UUID `json:"id"`
	ExpenseID      uuid.UUID `json:"expense_id"`
	MemberID       uuid.UUID `json:"member_id"`
	MemberUsername string    `json:"member_username,omitempty"`
	Amount         float64   `json:"amount"`
	Percentage     *float64  `json:"percentage,omitempty"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:            e.ID,
		GroupID:       e.GroupID,
		PayerID:       e.PayerID,
		PayerUsername: e.PayerUsername,
		Description:   e.Description,
		Amount:        money.FromMinorUnits(e.Amount, e.Currency),
		Currency:      e.Currency,
		SplitType:     e.SplitType,
		CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if e.DeletedAt != nil {
		deleted := e.DeletedAt.Format("2006-01-02T15:04:05Z")
		resp.DeletedAt = &deleted
	}
	return resp
}

// ToResponse converts a Split model to a SplitResponse DTO
func (s *Split) ToResponse(currency string) *SplitResponse {
	return &SplitResponse{
		ID:             s.ID,
		ExpenseID:      s.ExpenseID,
		MemberID:       s.MemberID,
		MemberUsername: s.MemberUsername,
		Amount:         money.FromMinorUnits(s.Amount, currency),
		Percentage:     s.Percentage,
	}
}
