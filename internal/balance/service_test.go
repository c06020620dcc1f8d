package balance

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

// fakeSource backs the service with in-memory data for one group.
type fakeSource struct {
	roster      []uuid.UUID
	expenses    []Expense
	settlements []Settlement
	err         error
}

func (f *fakeSource) ExpensesForBalances(_ context.Context, _ uuid.UUID) ([]Expense, error) {
	return f.expenses, f.err
}

func (f *fakeSource) SettlementsForBalances(_ context.Context, _ uuid.UUID) ([]Settlement, error) {
	return f.settlements, f.err
}

func (f *fakeSource) RosterMemberIDs(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
	return f.roster, f.err
}

func newTestService(src *fakeSource) *Service {
	return NewService(src, src, src)
}

func TestGroupBalances(t *testing.T) {
	groupID := uuid.New()
	src := &fakeSource{
		roster: []uuid.UUID{alice, bob, carol},
		expenses: []Expense{
			// $100 by Alice split three ways with remainder on Alice.
			expense(alice, 10000, "USD", Split{alice, 3334}, Split{bob, 3333}, Split{carol, 3333}),
			// ¥3000 by Bob for everyone.
			expense(bob, 3000, "JPY", Split{alice, 1000}, Split{bob, 1000}, Split{carol, 1000}),
		},
		settlements: []Settlement{
			{ID: uuid.New(), PayerID: carol, PayeeID: alice, Amount: 3333, Currency: "USD"},
		},
	}

	sheets, err := newTestService(src).GroupBalances(context.Background(), groupID)
	if err != nil {
		t.Fatalf("GroupBalances() error = %v", err)
	}

	usd, ok := sheets["USD"]
	if !ok {
		t.Fatal("missing USD sheet")
	}
	if usd.NetBalances[alice] != 3333 || usd.NetBalances[bob] != -3333 || usd.NetBalances[carol] != 0 {
		t.Errorf("USD net balances = %v", usd.NetBalances)
	}
	if len(usd.SimplifiedDebts) != 1 {
		t.Fatalf("USD simplified debts = %v, want single transfer", usd.SimplifiedDebts)
	}
	if d := usd.SimplifiedDebts[0]; d.From != bob || d.To != alice || d.Amount != 3333 {
		t.Errorf("USD debt = %+v, want bob -> alice 3333", d)
	}

	jpy, ok := sheets["JPY"]
	if !ok {
		t.Fatal("missing JPY sheet")
	}
	if jpy.NetBalances[bob] != 2000 || jpy.NetBalances[alice] != -1000 || jpy.NetBalances[carol] != -1000 {
		t.Errorf("JPY net balances = %v", jpy.NetBalances)
	}
}

func TestGroupBalancesFailsOnBadData(t *testing.T) {
	src := &fakeSource{
		roster: []uuid.UUID{alice, bob},
		expenses: []Expense{
			expense(alice, 3000, "USD", Split{alice, 1500}, Split{carol, 1500}),
		},
	}

	if _, err := newTestService(src).GroupBalances(context.Background(), uuid.New()); !errors.Is(err, ErrUnknownMember) {
		t.Fatalf("GroupBalances() error = %v, want ErrUnknownMember", err)
	}
}

func TestGroupBalancesPropagatesSourceError(t *testing.T) {
	wantErr := errors.New("store unavailable")
	src := &fakeSource{err: wantErr}

	if _, err := newTestService(src).GroupBalances(context.Background(), uuid.New()); !errors.Is(err, wantErr) {
		t.Fatalf("GroupBalances() error = %v, want %v", err, wantErr)
	}
}

func TestHasOutstandingBalance(t *testing.T) {
	src := &fakeSource{
		roster: []uuid.UUID{alice, bob, carol},
		expenses: []Expense{
			expense(alice, 4000, "USD", Split{alice, 2000}, Split{bob, 2000}),
			// Bob's EUR position offsets nothing in USD.
			expense(bob, 3000, "EUR", Split{alice, 1500}, Split{bob, 1500}),
		},
	}
	svc := newTestService(src)

	tests := []struct {
		name   string
		member uuid.UUID
		want   bool
	}{
		{"debtor in one currency", bob, true},
		{"creditor counts too", alice, true},
		{"uninvolved member is settled", carol, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.HasOutstandingBalance(context.Background(), uuid.New(), tt.member)
			if err != nil {
				t.Fatalf("HasOutstandingBalance() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HasOutstandingBalance(%s) = %v, want %v", tt.member, got, tt.want)
			}
		})
	}
}

func TestHasOutstandingBalanceAfterSettlement(t *testing.T) {
	src := &fakeSource{
		roster: []uuid.UUID{alice, bob},
		expenses: []Expense{
			expense(alice, 10000, "USD", Split{alice, 5000}, Split{bob, 5000}),
		},
		settlements: []Settlement{
			{ID: uuid.New(), PayerID: bob, PayeeID: alice, Amount: 5000, Currency: "USD"},
		},
	}
	svc := newTestService(src)

	for _, member := range []uuid.UUID{alice, bob} {
		got, err := svc.HasOutstandingBalance(context.Background(), uuid.New(), member)
		if err != nil {
			t.Fatalf("HasOutstandingBalance() error = %v", err)
		}
		if got {
			t.Errorf("member %s should be settled after full settlement", member)
		}
	}
}
