package balance

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

var (
	alice = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	bob   = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	carol = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	dave  = uuid.MustParse("00000000-0000-0000-0000-00000000000d")
)

func expense(payer uuid.UUID, amount int64, currency string, splits ...Split) Expense {
	participants := make([]uuid.UUID, len(splits))
	for i, s := range splits {
		participants[i] = s.MemberID
	}
	return Expense{
		ID:             uuid.New(),
		PayerID:        payer,
		ParticipantIDs: participants,
		Splits:         splits,
		Amount:         amount,
		Currency:       currency,
	}
}

func TestComputeBalances(t *testing.T) {
	roster := []uuid.UUID{alice, bob, carol}

	tests := []struct {
		name        string
		expenses    []Expense
		settlements []Settlement
		want        map[string]map[uuid.UUID]int64
		wantErr     error
	}{
		{
			name: "single payer two participants",
			expenses: []Expense{
				// $100 paid by Alice, split equally with Bob.
				expense(alice, 10000, "USD", Split{alice, 5000}, Split{bob, 5000}),
			},
			want: map[string]map[uuid.UUID]int64{
				"USD": {alice: 5000, bob: -5000},
			},
		},
		{
			name: "settlement clears the debt",
			expenses: []Expense{
				expense(alice, 10000, "USD", Split{alice, 5000}, Split{bob, 5000}),
			},
			settlements: []Settlement{
				{ID: uuid.New(), PayerID: bob, PayeeID: alice, Amount: 5000, Currency: "USD"},
			},
			want: map[string]map[uuid.UUID]int64{
				"USD": {alice: 0, bob: 0},
			},
		},
		{
			name: "payer not a participant",
			expenses: []Expense{
				// Alice pays $30 for Bob and Carol only.
				expense(alice, 3000, "USD", Split{bob, 1500}, Split{carol, 1500}),
			},
			want: map[string]map[uuid.UUID]int64{
				"USD": {alice: 3000, bob: -1500, carol: -1500},
			},
		},
		{
			name: "currencies stay isolated",
			expenses: []Expense{
				expense(alice, 4000, "USD", Split{alice, 2000}, Split{bob, 2000}),
				expense(bob, 3000, "EUR", Split{alice, 1500}, Split{bob, 1500}),
			},
			want: map[string]map[uuid.UUID]int64{
				"USD": {alice: 2000, bob: -2000},
				"EUR": {alice: -1500, bob: 1500},
			},
		},
		{
			name: "soft-deleted expense is excluded",
			expenses: []Expense{
				func() Expense {
					e := expense(alice, 10000, "USD", Split{alice, 5000}, Split{bob, 5000})
					e.Deleted = true
					return e
				}(),
			},
			want: map[string]map[uuid.UUID]int64{},
		},
		{
			name: "participant outside roster fails whole computation",
			expenses: []Expense{
				expense(alice, 3000, "USD", Split{alice, 1500}, Split{dave, 1500}),
			},
			wantErr: ErrUnknownMember,
		},
		{
			name: "split for non-participant fails",
			expenses: []Expense{
				{
					ID:             uuid.New(),
					PayerID:        alice,
					ParticipantIDs: []uuid.UUID{alice, bob},
					Splits:         []Split{{alice, 1500}, {carol, 1500}},
					Amount:         3000,
					Currency:       "USD",
				},
			},
			wantErr: ErrSplitMismatch,
		},
		{
			name: "splits not summing to amount fail",
			expenses: []Expense{
				expense(alice, 3000, "USD", Split{alice, 1500}, Split{bob, 1400}),
			},
			wantErr: ErrSplitSum,
		},
		{
			name: "self settlement fails",
			settlements: []Settlement{
				{ID: uuid.New(), PayerID: alice, PayeeID: alice, Amount: 100, Currency: "USD"},
			},
			wantErr: ErrSelfSettlement,
		},
		{
			name: "non-positive settlement fails",
			settlements: []Settlement{
				{ID: uuid.New(), PayerID: alice, PayeeID: bob, Amount: 0, Currency: "USD"},
			},
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeBalances(roster, tt.expenses, tt.settlements)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ComputeBalances() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeBalances() error = %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d currencies, want %d", len(got), len(tt.want))
			}
			for currency, wantLedger := range tt.want {
				gotLedger := got[currency]
				for member, want := range wantLedger {
					if gotLedger[member] != want {
						t.Errorf("%s balance for %s = %d, want %d", currency, member, gotLedger[member], want)
					}
				}
			}
		})
	}
}

func TestComputeBalancesZeroSum(t *testing.T) {
	roster := []uuid.UUID{alice, bob, carol}
	expenses := []Expense{
		expense(alice, 10001, "USD", Split{alice, 3335}, Split{bob, 3333}, Split{carol, 3333}),
		expense(bob, 777, "USD", Split{bob, 259}, Split{carol, 259}, Split{alice, 259}),
		expense(carol, 9999, "JPY", Split{alice, 3333}, Split{bob, 3333}, Split{carol, 3333}),
	}
	settlements := []Settlement{
		{ID: uuid.New(), PayerID: bob, PayeeID: alice, Amount: 1200, Currency: "USD"},
		{ID: uuid.New(), PayerID: alice, PayeeID: carol, Amount: 3000, Currency: "JPY"},
	}

	ledgers, err := ComputeBalances(roster, expenses, settlements)
	if err != nil {
		t.Fatalf("ComputeBalances() error = %v", err)
	}

	for currency, ledger := range ledgers {
		var sum int64
		for _, v := range ledger {
			sum += v
		}
		if sum != 0 {
			t.Errorf("%s balances sum to %d, want 0", currency, sum)
		}
	}
}
