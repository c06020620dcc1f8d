package balance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// ExpenseSource supplies a group's expenses in balance form. Implementations
// must include soft-deleted expenses' Deleted flag or exclude them entirely.
type ExpenseSource interface {
	ExpensesForBalances(ctx context.Context, groupID uuid.UUID) ([]Expense, error)
}

// SettlementSource supplies a group's settlements in balance form.
type SettlementSource interface {
	SettlementsForBalances(ctx context.Context, groupID uuid.UUID) ([]Settlement, error)
}

// RosterSource supplies a group's current member ids.
type RosterSource interface {
	RosterMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}

// Service is the single entry point for group balance computation. Both the
// balances view and the leave/remove-member guard go through the same
// aggregation, so the guard can never disagree with what the UI shows.
type Service struct {
	expenses    ExpenseSource
	settlements SettlementSource
	roster      RosterSource
}

// NewService creates a balance service over the given data sources.
func NewService(expenses ExpenseSource, settlements SettlementSource, roster RosterSource) *Service {
	return &Service{
		expenses:    expenses,
		settlements: settlements,
		roster:      roster,
	}
}

// GroupBalances computes per-currency net balances and simplified debts for a
// group. A structurally invalid record fails the whole computation; callers
// must treat an error as "balances unknown", never as "balances are zero".
func (s *Service) GroupBalances(ctx context.Context, groupID uuid.UUID) (map[string]*Sheet, error) {
	ledgers, err := s.computeNet(ctx, groupID)
	if err != nil {
		return nil, err
	}

	sheets := make(map[string]*Sheet, len(ledgers))
	for currency, net := range ledgers {
		sheets[currency] = &Sheet{
			NetBalances:     net,
			SimplifiedDebts: Simplify(net),
		}
	}
	return sheets, nil
}

// HasOutstandingBalance reports whether the member has a nonzero balance in
// any currency of the group. Used to block leaving or removal while money is
// still owed in either direction.
func (s *Service) HasOutstandingBalance(ctx context.Context, groupID, memberID uuid.UUID) (bool, error) {
	ledgers, err := s.computeNet(ctx, groupID)
	if err != nil {
		return false, err
	}

	for _, net := range ledgers {
		if net[memberID] != 0 {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) computeNet(ctx context.Context, groupID uuid.UUID) (map[string]map[uuid.UUID]int64, error) {
	roster, err := s.roster.RosterMemberIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ExpensesForBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.settlements.SettlementsForBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	ledgers, err := ComputeBalances(roster, expenses, settlements)
	if err != nil {
		if errors.Is(err, ErrUnbalancedTotal) {
			// Zero-sum violation means the aggregator itself is broken,
			// not that the group's data is bad.
			slog.Error("balance invariant violation", "group_id", groupID, "error", err)
		}
		return nil, err
	}
	return ledgers, nil
}
