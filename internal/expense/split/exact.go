package split

// =============================================================================
// EXACT SPLIT STRATEGY
// Each participant owes a specific exact amount (must sum to total)
// =============================================================================

// ExactStrategy implements the Strategy interface for exact amount splits
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() SplitType {
	return SplitTypeExact
}

// Validate checks if the inputs are valid for an exact split. A total off by
// a single minor unit is accepted as caller-side rounding and repaired in
// Calculate; anything further is an error.
func (s *ExactStrategy) Validate(amount int64, participants []Input) error {
	if err := validateParticipants(amount, participants); err != nil {
		return err
	}

	var total int64
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingExactAmount
		}
		if *p.Amount < 0 {
			return ErrNegativeAmount
		}
		total += *p.Amount
	}

	diff := total - amount
	if diff < -1 || diff > 1 {
		return ErrInvalidExactAmounts
	}

	return nil
}

// Calculate returns the specified amounts, folding any one-unit rounding
// difference into the last participant so the total matches exactly.
func (s *ExactStrategy) Calculate(amount int64, participants []Input) ([]Output, error) {
	if err := s.Validate(amount, participants); err != nil {
		return nil, err
	}

	outputs := make([]Output, len(participants))
	var total int64
	for i, p := range participants {
		outputs[i] = Output{
			MemberID: p.MemberID,
			Amount:   *p.Amount,
		}
		total += *p.Amount
	}
	if diff := amount - total; diff != 0 {
		outputs[len(outputs)-1].Amount += diff
	}

	return outputs, nil
}
