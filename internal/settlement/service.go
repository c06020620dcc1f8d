package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/divvyapp/divvy/internal/money"
	"github.com/divvyapp/divvy/internal/notification"
)

// Common errors
var (
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrSelfSettlement     = errors.New("payer and payee must differ")
	ErrNotGroupMember     = errors.New("not a member of this group")
	ErrNotCreator         = errors.New("only the creator can update this settlement")
	ErrNotCreatorOrAdmin  = errors.New("only the creator or a group admin can delete this settlement")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidCurrency    = errors.New("currency must be a 3-letter uppercase ISO 4217 code")
)

// Members answers group membership questions for settlement authorization.
// Implemented by the group repository.
type Members interface {
	RosterMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

// Service handles settlement business logic
type Service struct {
	repo          *Repository
	members       Members
	notifications *notification.Service
}

// NewService creates a new settlement service
func NewService(repo *Repository, members Members, notifications *notification.Service) *Service {
	return &Service{
		repo:          repo,
		members:       members,
		notifications: notifications,
	}
}

// Create records a settlement between two group members
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req *CreateSettlementRequest) (*Settlement, error) {
	if req.PayerID == req.PayeeID {
		return nil, ErrSelfSettlement
	}

	amount, err := s.validateAmount(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	if err := s.requireMembers(ctx, req.GroupID, req.PayerID, req.PayeeID, creatorID); err != nil {
		return nil, err
	}

	settlement, err := s.repo.Create(ctx, &Settlement{
		GroupID:   req.GroupID,
		PayerID:   req.PayerID,
		PayeeID:   req.PayeeID,
		Amount:    amount,
		Currency:  req.Currency,
		Note:      req.Note,
		CreatedBy: creatorID,
	})
	if err != nil {
		return nil, err
	}

	s.notifyPayee(ctx, settlement)

	return settlement, nil
}

// GetByID retrieves a settlement
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Settlement, error) {
	settlement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}
	return settlement, nil
}

// ListByGroupID retrieves the settlements for a group
func (s *Service) ListByGroupID(ctx context.Context, groupID uuid.UUID, page, perPage int) ([]*Settlement, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroupID(ctx, groupID, perPage, offset)
}

// Update corrects a settlement's amount, currency or note. Only its creator
// may do this; the parties are fixed at creation.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, req *UpdateSettlementRequest) (*Settlement, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrSettlementNotFound
	}
	if existing.CreatedBy != userID {
		return nil, ErrNotCreator
	}

	amount, err := s.validateAmount(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	existing.Amount = amount
	existing.Currency = req.Currency
	existing.Note = req.Note

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrSettlementNotFound
	}
	return updated, nil
}

// Delete removes a settlement. The creator can always delete their own
// record; a group admin can delete anyone's.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSettlementNotFound
	}

	if existing.CreatedBy != userID {
		isAdmin, err := s.members.IsAdmin(ctx, existing.GroupID, userID)
		if err != nil {
			return err
		}
		if !isAdmin {
			return ErrNotCreatorOrAdmin
		}
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSettlementNotFound
	}
	return nil
}

func (s *Service) validateAmount(amount float64, currency string) (int64, error) {
	if !money.IsValid(currency) {
		return 0, ErrInvalidCurrency
	}
	minor, err := money.ToMinorUnits(amount, currency)
	if err != nil {
		return 0, ErrInvalidCurrency
	}
	if minor <= 0 {
		return 0, ErrInvalidAmount
	}
	return minor, nil
}

func (s *Service) requireMembers(ctx context.Context, groupID uuid.UUID, userIDs ...uuid.UUID) error {
	memberIDs, err := s.members.RosterMemberIDs(ctx, groupID)
	if err != nil {
		return err
	}
	members := make(map[uuid.UUID]bool, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = true
	}
	for _, id := range userIDs {
		if !members[id] {
			return fmt.Errorf("%w: %s", ErrNotGroupMember, id)
		}
	}
	return nil
}

// notifyPayee tells the payee a repayment was recorded against them.
// Notification failures don't fail the settlement.
func (s *Service) notifyPayee(ctx context.Context, settlement *Settlement) {
	if s.notifications == nil {
		return
	}

	entityType := string(notification.EntityTypeSettlement)
	message := fmt.Sprintf("Settlement recorded: you received %s", money.Format(settlement.Amount, settlement.Currency))
	if _, err := s.notifications.Create(ctx, settlement.PayeeID, message, &entityType, &settlement.ID); err != nil {
		slog.Warn("failed to create settlement notification",
			"settlement_id", settlement.ID, "recipient_id", settlement.PayeeID, "error", err)
	}
}
