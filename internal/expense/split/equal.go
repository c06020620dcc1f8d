package split

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense evenly among all participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() SplitType {
	return SplitTypeEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(amount int64, participants []Input) error {
	return validateParticipants(amount, participants)
}

// Calculate divides the amount evenly among all participants in minor units.
// When the division is inexact, the leftover units go one-by-one to the first
// participants in input order: 10000 three ways is 3334, 3333, 3333.
func (s *EqualStrategy) Calculate(amount int64, participants []Input) ([]Output, error) {
	if err := s.Validate(amount, participants); err != nil {
		return nil, err
	}

	n := int64(len(participants))
	share := amount / n
	remainder := amount % n

	outputs := make([]Output, len(participants))
	for i, p := range participants {
		outputs[i] = Output{
			MemberID: p.MemberID,
			Amount:   share,
		}
	}
	distributeRemainder(outputs, remainder)

	return outputs, nil
}
