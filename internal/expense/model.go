package expense

import (
	"time"

	"github.com/google/uuid"
)

// Expense represents a shared expense in a group. Amount is in the currency's
// minor units. Once soft-deleted (DeletedAt set) an expense stays in history
// but is excluded from balance computation.
type Expense struct {
	ID          uuid.UUID  `json:"id"`
	GroupID     uuid.UUID  `json:"group_id"`
	PayerID     uuid.UUID  `json:"payer_id"`
	Description string     `json:"description"`
	Amount      int64      `json:"amount"`
	Currency    string     `json:"currency"`
	SplitType   string     `json:"split_type"` // EQUAL, PERCENTAGE, EXACT
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	// Populated via JOIN
	PayerUsername string `json:"payer_username,omitempty"`
}

// Split represents one participant's stored share of an expense, computed at
// write time. The payer's own share is stored too; splits always sum to the
// expense amount.
type Split struct {
	ID         uuid.UUID `json:"id"`
	ExpenseID  uuid.UUID `json:"expense_id"`
	MemberID   uuid.UUID `json:"member_id"`
	Amount     int64     `json:"amount"`
	Percentage *float64  `json:"percentage,omitempty"`

	// Populated via JOIN
	MemberUsername string `json:"member_username,omitempty"`
}

// ExpenseWithSplits combines an expense with its stored splits
type ExpenseWithSplits struct {
	Expense *Expense
	Splits  []*Split
}
