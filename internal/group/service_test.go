package group

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/divvyapp/divvy/internal/balance"
)

// fakeStore implements Store in memory for service tests.
type fakeStore struct {
	members    map[uuid.UUID]*GroupMember
	hasHistory map[uuid.UUID]bool
	admins     map[uuid.UUID]bool
	removed    []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members:    make(map[uuid.UUID]*GroupMember),
		hasHistory: make(map[uuid.UUID]bool),
		admins:     make(map[uuid.UUID]bool),
	}
}

func (f *fakeStore) addJoined(userID uuid.UUID) {
	f.members[userID] = &GroupMember{UserID: userID, Status: MemberStatusJoined, Role: MemberRoleMember}
}

func (f *fakeStore) Create(ctx context.Context, creatorID uuid.UUID, req *CreateGroupRequest) (*Group, error) {
	return nil, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	return &Group{ID: id}, nil
}

func (f *fakeStore) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Group, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) Update(ctx context.Context, id uuid.UUID, req *UpdateGroupRequest) (*Group, error) {
	return nil, nil
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeStore) AddMember(ctx context.Context, groupID, userID uuid.UUID, role string) (*GroupMember, error) {
	return nil, nil
}

func (f *fakeStore) GetMembers(ctx context.Context, groupID uuid.UUID) ([]*GroupMember, error) {
	return nil, nil
}

func (f *fakeStore) GetMember(ctx context.Context, groupID, userID uuid.UUID) (*GroupMember, error) {
	return f.members[userID], nil
}

func (f *fakeStore) SetMemberStatus(ctx context.Context, groupID, userID uuid.UUID, status string) (*GroupMember, error) {
	return nil, nil
}

func (f *fakeStore) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	if f.members[userID] == nil {
		return false, nil
	}
	delete(f.members, userID)
	f.removed = append(f.removed, userID)
	return true, nil
}

func (f *fakeStore) IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	return f.admins[userID], nil
}

func (f *fakeStore) MemberHasHistory(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	return f.hasHistory[userID], nil
}

// fakeBalances implements Balances with canned per-member answers.
type fakeBalances struct {
	outstanding map[uuid.UUID]bool
}

func (f *fakeBalances) GroupBalances(ctx context.Context, groupID uuid.UUID) (map[string]*balance.Sheet, error) {
	return map[string]*balance.Sheet{}, nil
}

func (f *fakeBalances) HasOutstandingBalance(ctx context.Context, groupID, memberID uuid.UUID) (bool, error) {
	return f.outstanding[memberID], nil
}

func TestLeaveBlockedWhileReferencedByHistory(t *testing.T) {
	// A member can be settled up (zero balance after a settlement) while
	// non-deleted expenses and settlements still reference them. Removing
	// them would make every later balance read fail roster validation, so
	// the leave must be refused.
	groupID := uuid.New()
	store := newFakeStore()
	store.addJoined(bob)
	store.hasHistory[bob] = true

	svc := NewService(store, &fakeBalances{outstanding: map[uuid.UUID]bool{}}, nil)

	err := svc.Leave(context.Background(), groupID, bob)
	if !errors.Is(err, ErrMemberHasHistory) {
		t.Fatalf("Leave() error = %v, want ErrMemberHasHistory", err)
	}
	if len(store.removed) != 0 {
		t.Errorf("member was removed despite remaining history: %v", store.removed)
	}
}

func TestLeaveBlockedWithOutstandingBalance(t *testing.T) {
	groupID := uuid.New()
	store := newFakeStore()
	store.addJoined(bob)
	store.hasHistory[bob] = true

	svc := NewService(store, &fakeBalances{outstanding: map[uuid.UUID]bool{bob: true}}, nil)

	err := svc.Leave(context.Background(), groupID, bob)
	if !errors.Is(err, ErrOutstandingBalance) {
		t.Fatalf("Leave() error = %v, want ErrOutstandingBalance", err)
	}
}

func TestLeaveSettledWithoutHistory(t *testing.T) {
	groupID := uuid.New()
	store := newFakeStore()
	store.addJoined(bob)

	svc := NewService(store, &fakeBalances{outstanding: map[uuid.UUID]bool{}}, nil)

	if err := svc.Leave(context.Background(), groupID, bob); err != nil {
		t.Fatalf("Leave() error = %v", err)
	}
	if len(store.removed) != 1 || store.removed[0] != bob {
		t.Errorf("removed = %v, want [%s]", store.removed, bob)
	}
}

func TestLeaveNotMember(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeBalances{outstanding: map[uuid.UUID]bool{}}, nil)

	err := svc.Leave(context.Background(), uuid.New(), bob)
	if !errors.Is(err, ErrNotMember) {
		t.Fatalf("Leave() error = %v, want ErrNotMember", err)
	}
}

func TestRemoveMemberAppliesSameGuards(t *testing.T) {
	groupID := uuid.New()
	store := newFakeStore()
	store.addJoined(bob)
	store.admins[alice] = true
	store.hasHistory[bob] = true

	svc := NewService(store, &fakeBalances{outstanding: map[uuid.UUID]bool{}}, nil)

	if err := svc.RemoveMember(context.Background(), groupID, carol, bob); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("RemoveMember() by non-admin error = %v, want ErrNotAdmin", err)
	}

	if err := svc.RemoveMember(context.Background(), groupID, alice, bob); !errors.Is(err, ErrMemberHasHistory) {
		t.Fatalf("RemoveMember() error = %v, want ErrMemberHasHistory", err)
	}

	store.hasHistory[bob] = false
	if err := svc.RemoveMember(context.Background(), groupID, alice, bob); err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
}
