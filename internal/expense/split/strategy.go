package split

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypePercentage SplitType = "PERCENTAGE"
	SplitTypeExact      SplitType = "EXACT"
)

// Input represents a participant in a split with optional values.
// Amounts are in the currency's minor units.
type Input struct {
	MemberID   uuid.UUID `json:"member_id"`
	Percentage *float64  `json:"percentage,omitempty"` // For PERCENTAGE split
	Amount     *int64    `json:"amount,omitempty"`     // For EXACT split, minor units
}

// Output represents the calculated split for a single participant. Every
// participant appears exactly once, the payer included: outputs always sum to
// the full expense amount and the payer's net position is derived downstream.
type Output struct {
	MemberID   uuid.UUID `json:"member_id"`
	Amount     int64     `json:"amount"`
	Percentage *float64  `json:"percentage,omitempty"`
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes the minor-unit split amounts for all participants.
	// The outputs are guaranteed to sum to amount exactly.
	Calculate(amount int64, participants []Input) ([]Output, error)

	// Type returns the type identifier for this strategy
	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(amount int64, participants []Input) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEqual:
		return &EqualStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	case SplitTypeExact:
		return &ExactStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSplitType, splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(SplitType(splitType))
}

// IsValidType reports whether s names a known split type.
func IsValidType(s string) bool {
	switch SplitType(s) {
	case SplitTypeEqual, SplitTypePercentage, SplitTypeExact:
		return true
	}
	return false
}

var (
	ErrUnknownSplitType     = errors.New("unknown split type")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrDuplicateParticipant = errors.New("participant appears more than once")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrInvalidExactAmounts  = errors.New("exact amounts must sum to total amount")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingExactAmount   = errors.New("exact amount required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
)

// validateParticipants checks the shared preconditions for every strategy.
func validateParticipants(amount int64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	seen := make(map[uuid.UUID]bool, len(participants))
	for _, p := range participants {
		if seen[p.MemberID] {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.MemberID)
		}
		seen[p.MemberID] = true
	}
	return nil
}

// distributeRemainder hands out leftover minor units one-by-one to
// participants in input order, so repeated calls with the same input always
// land the remainder on the same members. Participants with a zero percentage
// share owe nothing and never receive a leftover unit.
func distributeRemainder(outputs []Output, remainder int64) {
	if remainder == 0 || len(outputs) == 0 {
		return
	}
	step := int64(1)
	if remainder < 0 {
		step = -1
		remainder = -remainder
	}
	eligible := make([]int, 0, len(outputs))
	for i, o := range outputs {
		if o.Percentage != nil && *o.Percentage == 0 {
			continue
		}
		eligible = append(eligible, i)
	}
	if len(eligible) == 0 {
		return
	}
	n := int64(len(eligible))
	for i := int64(0); i < remainder; i++ {
		outputs[eligible[i%n]].Amount += step
	}
}
