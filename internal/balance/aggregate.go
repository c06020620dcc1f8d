package balance

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNoParticipants  = errors.New("expense has no participants")
	ErrUnknownMember   = errors.New("member not in group roster")
	ErrSplitMismatch   = errors.New("splits do not match participant list")
	ErrSplitSum        = errors.New("splits do not sum to expense amount")
	ErrSelfSettlement  = errors.New("settlement payer and payee are the same member")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrUnbalancedTotal = errors.New("net balances do not sum to zero")
)

// ComputeBalances folds expenses and settlements into one ledger per currency
// mapping member id to net balance in minor units. Soft-deleted expenses are
// skipped. Any record referencing a member outside the roster fails the whole
// computation: a partial result here would be indistinguishable from "all
// settled" and the leave-group guard depends on the difference.
func ComputeBalances(roster []uuid.UUID, expenses []Expense, settlements []Settlement) (map[string]map[uuid.UUID]int64, error) {
	members := make(map[uuid.UUID]bool, len(roster))
	for _, id := range roster {
		members[id] = true
	}

	ledgers := make(map[string]map[uuid.UUID]int64)
	ledger := func(currency string) map[uuid.UUID]int64 {
		l, ok := ledgers[currency]
		if !ok {
			l = make(map[uuid.UUID]int64)
			ledgers[currency] = l
		}
		return l
	}

	for _, e := range expenses {
		if e.Deleted {
			continue
		}
		if err := validateExpense(members, e); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}

		// Every participant's balance drops by their split; the payer's rises
		// by the full amount. Net effect: payer is owed amount minus their own
		// share, each other participant owes their share.
		l := ledger(e.Currency)
		for _, s := range e.Splits {
			l[s.MemberID] -= s.Amount
		}
		l[e.PayerID] += e.Amount
	}

	for _, s := range settlements {
		if err := validateSettlement(members, s); err != nil {
			return nil, fmt.Errorf("settlement %s: %w", s.ID, err)
		}

		// The payer paid down a debt, improving their position; the payee was
		// owed that much less.
		l := ledger(s.Currency)
		l[s.PayerID] += s.Amount
		l[s.PayeeID] -= s.Amount
	}

	// The aggregator redistributes money, it never creates or destroys it.
	// A nonzero sum is a bug in this package, not bad input.
	for currency, l := range ledgers {
		var sum int64
		for _, v := range l {
			sum += v
		}
		if sum != 0 {
			return nil, fmt.Errorf("%w: currency %s off by %d minor units", ErrUnbalancedTotal, currency, sum)
		}
	}

	return ledgers, nil
}

func validateExpense(members map[uuid.UUID]bool, e Expense) error {
	if len(e.ParticipantIDs) == 0 {
		return ErrNoParticipants
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !members[e.PayerID] {
		return fmt.Errorf("%w: payer %s", ErrUnknownMember, e.PayerID)
	}

	participants := make(map[uuid.UUID]bool, len(e.ParticipantIDs))
	for _, id := range e.ParticipantIDs {
		if !members[id] {
			return fmt.Errorf("%w: participant %s", ErrUnknownMember, id)
		}
		if participants[id] {
			return fmt.Errorf("%w: duplicate participant %s", ErrSplitMismatch, id)
		}
		participants[id] = true
	}

	if len(e.Splits) != len(e.ParticipantIDs) {
		return fmt.Errorf("%w: %d splits for %d participants", ErrSplitMismatch, len(e.Splits), len(e.ParticipantIDs))
	}
	var sum int64
	seen := make(map[uuid.UUID]bool, len(e.Splits))
	for _, s := range e.Splits {
		if !participants[s.MemberID] {
			return fmt.Errorf("%w: split for non-participant %s", ErrSplitMismatch, s.MemberID)
		}
		if seen[s.MemberID] {
			return fmt.Errorf("%w: duplicate split for %s", ErrSplitMismatch, s.MemberID)
		}
		seen[s.MemberID] = true
		sum += s.Amount
	}
	if sum != e.Amount {
		return fmt.Errorf("%w: splits total %d, expense amount %d", ErrSplitSum, sum, e.Amount)
	}

	return nil
}

func validateSettlement(members map[uuid.UUID]bool, s Settlement) error {
	if s.Amount <= 0 {
		return ErrInvalidAmount
	}
	if s.PayerID == s.PayeeID {
		return ErrSelfSettlement
	}
	if !members[s.PayerID] {
		return fmt.Errorf("%w: payer %s", ErrUnknownMember, s.PayerID)
	}
	if !members[s.PayeeID] {
		return fmt.Errorf("%w: payee %s", ErrUnknownMember, s.PayeeID)
	}
	return nil
}
