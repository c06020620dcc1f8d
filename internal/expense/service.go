package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/divvyapp/divvy/internal/expense/split"
	"github.com/divvyapp/divvy/internal/money"
	"github.com/divvyapp/divvy/internal/notification"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrExpenseDeleted  = errors.New("expense has been deleted")
	ErrNotPayer        = errors.New("only the payer can modify this expense")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter uppercase ISO 4217 code")
	ErrNotGroupMember  = errors.New("not a member of this group")
)

// Roster supplies a group's current member ids, used to reject expenses that
// name non-members before anything is persisted.
type Roster interface {
	RosterMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}

// Service handles expense business logic
type Service struct {
	repo          *Repository
	splitFactory  *split.Factory
	roster        Roster
	notifications *notification.Service
}

// NewService creates a new expense service with dependencies injected
func NewService(repo *Repository, splitFactory *split.Factory, roster Roster, notifications *notification.Service) *Service {
	return &Service{
		repo:          repo,
		splitFactory:  splitFactory,
		roster:        roster,
		notifications: notifications,
	}
}

// CreateExpense creates a new expense, computing and storing its splits at
// write time so the balance read path never re-derives them.
func (s *Service) CreateExpense(ctx context.Context, payerID uuid.UUID, req *CreateExpenseRequest) (*ExpenseWithSplits, error) {
	amount, outputs, err := s.computeSplits(ctx, req.GroupID, payerID, req.Amount, req.Currency, req.SplitType, req.Participants)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.CreateExpense(ctx, &Expense{
		GroupID:     req.GroupID,
		PayerID:     payerID,
		Description: req.Description,
		Amount:      amount,
		Currency:    req.Currency,
		SplitType:   req.SplitType,
	}, outputs)
	if err != nil {
		return nil, err
	}

	s.notifyParticipants(ctx, result)

	return result, nil
}

// GetExpenseByID retrieves an expense with its splits
func (s *Service) GetExpenseByID(ctx context.Context, id uuid.UUID) (*ExpenseWithSplits, error) {
	expense, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}

	splits, err := s.repo.GetSplitsByExpenseID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ExpenseWithSplits{
		Expense: expense,
		Splits:  splits,
	}, nil
}

// ListByGroupID retrieves the non-deleted expenses for a group
func (s *Service) ListByGroupID(ctx context.Context, groupID uuid.UUID, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroupID(ctx, groupID, perPage, offset)
}

// UpdateExpense is a full update: every field is replaced and the splits are
// recomputed, leaving no stale shares behind.
func (s *Service) UpdateExpense(ctx context.Context, id, userID uuid.UUID, req *UpdateExpenseRequest) (*ExpenseWithSplits, error) {
	existing, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrExpenseNotFound
	}
	if existing.DeletedAt != nil {
		return nil, ErrExpenseDeleted
	}
	if existing.PayerID != userID {
		return nil, ErrNotPayer
	}

	amount, outputs, err := s.computeSplits(ctx, existing.GroupID, existing.PayerID, req.Amount, req.Currency, req.SplitType, req.Participants)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.UpdateExpense(ctx, &Expense{
		ID:          id,
		GroupID:     existing.GroupID,
		PayerID:     existing.PayerID,
		Description: req.Description,
		Amount:      amount,
		Currency:    req.Currency,
		SplitType:   req.SplitType,
	}, outputs)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrExpenseNotFound
	}

	return result, nil
}

// DeleteExpense soft-deletes an expense. History keeps the record; balances
// stop counting it.
func (s *Service) DeleteExpense(ctx context.Context, id, userID uuid.UUID) error {
	expense, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return err
	}
	if expense == nil {
		return ErrExpenseNotFound
	}
	if expense.PayerID != userID {
		return ErrNotPayer
	}

	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrExpenseDeleted
	}
	return nil
}

// computeSplits validates the request against the group roster and runs the
// appropriate split strategy, returning the minor-unit total and splits.
func (s *Service) computeSplits(ctx context.Context, groupID, payerID uuid.UUID, amount float64, currency, splitType string, participants []*SplitParticipant) (int64, []split.Output, error) {
	if !money.IsValid(currency) {
		return 0, nil, ErrInvalidCurrency
	}

	minorAmount, err := money.ToMinorUnits(amount, currency)
	if err != nil {
		return 0, nil, ErrInvalidCurrency
	}

	memberIDs, err := s.roster.RosterMemberIDs(ctx, groupID)
	if err != nil {
		return 0, nil, err
	}
	members := make(map[uuid.UUID]bool, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = true
	}
	if !members[payerID] {
		return 0, nil, fmt.Errorf("%w: payer %s", ErrNotGroupMember, payerID)
	}

	inputs := make([]split.Input, len(participants))
	for i, p := range participants {
		if !members[p.MemberID] {
			return 0, nil, fmt.Errorf("%w: participant %s", ErrNotGroupMember, p.MemberID)
		}
		in, err := p.toSplitInput(currency)
		if err != nil {
			return 0, nil, ErrInvalidCurrency
		}
		inputs[i] = in
	}

	strategy, err := s.splitFactory.CreateFromString(splitType)
	if err != nil {
		return 0, nil, err
	}
	outputs, err := strategy.Calculate(minorAmount, inputs)
	if err != nil {
		return 0, nil, err
	}

	return minorAmount, outputs, nil
}

// notifyParticipants tells everyone but the payer about their share.
// Notification failures don't fail the expense.
func (s *Service) notifyParticipants(ctx context.Context, result *ExpenseWithSplits) {
	if s.notifications == nil {
		return
	}

	e := result.Expense
	entityType := string(notification.EntityTypeExpense)
	for _, sp := range result.Splits {
		if sp.MemberID == e.PayerID {
			continue
		}
		message := fmt.Sprintf("New expense %q: your share is %s", e.Description, money.Format(sp.Amount, e.Currency))
		if _, err := s.notifications.Create(ctx, sp.MemberID, message, &entityType, &e.ID); err != nil {
			slog.Warn("failed to create expense notification",
				"expense_id", e.ID, "recipient_id", sp.MemberID, "error", err)
		}
	}
}
