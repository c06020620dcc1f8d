package split

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

// percentageTolerance is how far the percentage total may drift from 100.
var percentageTolerance = decimal.NewFromFloat(0.01)

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(amount int64, participants []Input) error {
	if err := validateParticipants(amount, participants); err != nil {
		return err
	}

	total := decimal.Zero
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if *p.Percentage < 0 || *p.Percentage > 100 {
			return ErrPercentageOutOfRange
		}
		total = total.Add(decimal.NewFromFloat(*p.Percentage))
	}

	if total.Sub(decimal.NewFromInt(100)).Abs().GreaterThan(percentageTolerance) {
		return ErrInvalidPercentages
	}

	return nil
}

// Calculate converts each percentage to minor units, flooring each share and
// then handing leftover units to the first participants in input order, the
// same rule as the equal split. The outputs always sum to amount exactly.
func (s *PercentageStrategy) Calculate(amount int64, participants []Input) ([]Output, error) {
	if err := s.Validate(amount, participants); err != nil {
		return nil, err
	}

	total := decimal.NewFromInt(amount)
	hundred := decimal.NewFromInt(100)

	outputs := make([]Output, len(participants))
	var distributed int64
	for i, p := range participants {
		share := total.Mul(decimal.NewFromFloat(*p.Percentage)).Div(hundred).Floor().IntPart()
		distributed += share
		outputs[i] = Output{
			MemberID:   p.MemberID,
			Amount:     share,
			Percentage: p.Percentage,
		}
	}
	distributeRemainder(outputs, amount-distributed)

	return outputs, nil
}
