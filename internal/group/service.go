package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/divvyapp/divvy/internal/balance"
	"github.com/divvyapp/divvy/internal/notification"
)

// Common errors
var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrAlreadyMember      = errors.New("user is already a member of this group")
	ErrNotMember          = errors.New("not a member of this group")
	ErrNotAdmin           = errors.New("only a group admin can do this")
	ErrNotInvited         = errors.New("no pending invitation for this group")
	ErrOutstandingBalance = errors.New("member has an outstanding balance in this group")
	ErrMemberHasHistory   = errors.New("member is still referenced by the group's expense or settlement history")
)

// Store defines the persistence operations the group service needs.
// Implemented by Repository.
type Store interface {
	Create(ctx context.Context, creatorID uuid.UUID, req *CreateGroupRequest) (*Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Group, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Group, int, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateGroupRequest) (*Group, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID, role string) (*GroupMember, error)
	GetMembers(ctx context.Context, groupID uuid.UUID) ([]*GroupMember, error)
	GetMember(ctx context.Context, groupID, userID uuid.UUID) (*GroupMember, error)
	SetMemberStatus(ctx context.Context, groupID, userID uuid.UUID, status string) (*GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	MemberHasHistory(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

// Balances computes group balance sheets and answers whether a member is
// settled up. Implemented by balance.Service.
type Balances interface {
	GroupBalances(ctx context.Context, groupID uuid.UUID) (map[string]*balance.Sheet, error)
	HasOutstandingBalance(ctx context.Context, groupID, memberID uuid.UUID) (bool, error)
}

// Service handles group business logic
type Service struct {
	repo          Store
	balances      Balances
	notifications *notification.Service
}

// NewService creates a new group service
func NewService(repo Store, balances Balances, notifications *notification.Service) *Service {
	return &Service{
		repo:          repo,
		balances:      balances,
		notifications: notifications,
	}
}

// Create creates a new group with the creator as a joined admin
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req *CreateGroupRequest) (*Group, error) {
	return s.repo.Create(ctx, creatorID, req)
}

// GetByID retrieves a group
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// ListByUserID retrieves the groups a user belongs to
func (s *Service) ListByUserID(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}

// Update modifies a group's name or description (admin only)
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, req *UpdateGroupRequest) (*Group, error) {
	if err := s.requireAdmin(ctx, id, userID); err != nil {
		return nil, err
	}

	group, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// Delete removes a group and everything in it (admin only)
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.requireAdmin(ctx, id, userID); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrGroupNotFound
	}
	return nil
}

// AddMember invites a user to a group. Any joined member can invite.
func (s *Service) AddMember(ctx context.Context, groupID, inviterID uuid.UUID, req *AddMemberRequest) (*GroupMember, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	inviter, err := s.repo.GetMember(ctx, groupID, inviterID)
	if err != nil {
		return nil, err
	}
	if inviter == nil || inviter.Status != MemberStatusJoined {
		return nil, ErrNotMember
	}

	existing, err := s.repo.GetMember(ctx, groupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	role := req.Role
	if role == "" {
		role = MemberRoleMember
	}

	member, err := s.repo.AddMember(ctx, groupID, req.UserID, role)
	if err != nil {
		return nil, err
	}

	s.notifyInvite(ctx, group, req.UserID)

	return member, nil
}

// GetMembers retrieves all members of a group
func (s *Service) GetMembers(ctx context.Context, groupID uuid.UUID) ([]*GroupMember, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return s.repo.GetMembers(ctx, groupID)
}

// AcceptInvitation moves the caller from INVITED to JOINED
func (s *Service) AcceptInvitation(ctx context.Context, groupID, userID uuid.UUID) (*GroupMember, error) {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.Status != MemberStatusInvited {
		return nil, ErrNotInvited
	}

	updated, err := s.repo.SetMemberStatus(ctx, groupID, userID, MemberStatusJoined)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrMemberNotFound
	}
	return updated, nil
}

// RemoveMember removes a member from a group (admin only). A member cannot be
// removed while they owe or are owed money, or while any non-deleted expense
// or settlement still references them.
func (s *Service) RemoveMember(ctx context.Context, groupID, adminID, userID uuid.UUID) error {
	if err := s.requireAdmin(ctx, groupID, adminID); err != nil {
		return err
	}

	return s.removeSettledMember(ctx, groupID, userID)
}

// Leave removes the caller from a group, subject to the same settled-up and
// no-remaining-history rules as RemoveMember.
func (s *Service) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotMember
	}

	return s.removeSettledMember(ctx, groupID, userID)
}

func (s *Service) removeSettledMember(ctx context.Context, groupID, userID uuid.UUID) error {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}

	// Invited members have no history yet; only joined members are checked.
	if member.Status == MemberStatusJoined {
		outstanding, err := s.balances.HasOutstandingBalance(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if outstanding {
			return ErrOutstandingBalance
		}

		// A settled member can still be referenced by live expenses and
		// settlements. Aggregation validates those references against the
		// roster, so dropping the member would leave the group's balances
		// permanently uncomputable.
		hasHistory, err := s.repo.MemberHasHistory(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if hasHistory {
			return ErrMemberHasHistory
		}
	}

	removed, err := s.repo.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrMemberNotFound
	}
	return nil
}

// GroupBalances computes the group's per-currency balance sheets (members only)
func (s *Service) GroupBalances(ctx context.Context, groupID, userID uuid.UUID) (map[string]*balance.Sheet, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.Status != MemberStatusJoined {
		return nil, ErrNotMember
	}

	return s.balances.GroupBalances(ctx, groupID)
}

func (s *Service) requireAdmin(ctx context.Context, groupID, userID uuid.UUID) error {
	isAdmin, err := s.repo.IsAdmin(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrNotAdmin
	}
	return nil
}

// notifyInvite tells a user they were invited to a group.
// Notification failures don't fail the invite.
func (s *Service) notifyInvite(ctx context.Context, group *Group, userID uuid.UUID) {
	if s.notifications == nil {
		return
	}

	entityType := string(notification.EntityTypeGroup)
	message := fmt.Sprintf("You have been invited to join %q", group.Name)
	if _, err := s.notifications.Create(ctx, userID, message, &entityType, &group.ID); err != nil {
		slog.Warn("failed to create invite notification",
			"group_id", group.ID, "recipient_id", userID, "error", err)
	}
}
