package group

import (
	"sort"

	"github.com/google/uuid"

	"github.com/divvyapp/divvy/internal/balance"
	"github.com/divvyapp/divvy/internal/money"
)

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// AddMemberRequest represents the request to invite a user to a group
type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role,omitempty" validate:"omitempty,oneof=ADMIN MEMBER"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   string    `json:"created_at"`
}

// MemberResponse represents the response for a group member
type MemberResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	Status   string    `json:"status"`
	Role     string    `json:"role"`
	JoinedAt string    `json:"joined_at"`
}

// MemberBalance is one member's net position in a single currency.
// Positive means the group owes them; negative means they owe the group.
type MemberBalance struct {
	UserID uuid.UUID `json:"user_id"`
	Amount float64   `json:"amount"`
}

// TransferResponse is one suggested repayment
type TransferResponse struct {
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	Amount     float64   `json:"amount"`
}

// CurrencyBalances holds a group's balances for one currency
type CurrencyBalances struct {
	Currency        string             `json:"currency"`
	NetBalances     []MemberBalance    `json:"net_balances"`
	SimplifiedDebts []TransferResponse `json:"simplified_debts"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a GroupMember model to a MemberResponse DTO
func (m *GroupMember) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:   m.UserID,
		Username: m.Username,
		Email:    m.Email,
		Status:   m.Status,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// toCurrencyBalances converts a computed balance sheet to its API shape,
// amounts back in major units. Net balances are sorted by user ID so repeated
// reads of an unchanged group return identical output.
func toCurrencyBalances(currency string, sheet *balance.Sheet) *CurrencyBalances {
	out := &CurrencyBalances{
		Currency:        currency,
		NetBalances:     make([]MemberBalance, 0, len(sheet.NetBalances)),
		SimplifiedDebts: make([]TransferResponse, 0, len(sheet.SimplifiedDebts)),
	}
	for userID, amount := range sheet.NetBalances {
		out.NetBalances = append(out.NetBalances, MemberBalance{
			UserID: userID,
			Amount: money.FromMinorUnits(amount, currency),
		})
	}
	sort.Slice(out.NetBalances, func(i, j int) bool {
		return out.NetBalances[i].UserID.String() < out.NetBalances[j].UserID.String()
	})
	for _, t := range sheet.SimplifiedDebts {
		out.SimplifiedDebts = append(out.SimplifiedDebts, TransferResponse{
			FromUserID: t.From,
			ToUserID:   t.To,
			Amount:     money.FromMinorUnits(t.Amount, currency),
		})
	}
	return out
}
