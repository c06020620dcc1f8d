package balance

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestSimplify(t *testing.T) {
	tests := []struct {
		name         string
		net          map[uuid.UUID]int64
		validateFunc func(t *testing.T, transfers []Transfer)
	}{
		{
			name: "empty input produces no transfers",
			net:  map[uuid.UUID]int64{},
			validateFunc: func(t *testing.T, transfers []Transfer) {
				if len(transfers) != 0 {
					t.Errorf("got %d transfers, want 0", len(transfers))
				}
			},
		},
		{
			name: "all-zero balances produce no transfers",
			net:  map[uuid.UUID]int64{alice: 0, bob: 0, carol: 0},
			validateFunc: func(t *testing.T, transfers []Transfer) {
				if len(transfers) != 0 {
					t.Errorf("cycle that nets to zero should simplify to nothing, got %d transfers", len(transfers))
				}
			},
		},
		{
			name: "single debtor single creditor",
			net:  map[uuid.UUID]int64{alice: 5000, bob: -5000},
			validateFunc: func(t *testing.T, transfers []Transfer) {
				want := []Transfer{{From: bob, To: alice, Amount: 5000}}
				if !reflect.DeepEqual(transfers, want) {
					t.Errorf("transfers = %v, want %v", transfers, want)
				}
			},
		},
		{
			name: "one debtor pays two creditors",
			net:  map[uuid.UUID]int64{alice: 3000, bob: 2000, carol: -5000},
			validateFunc: func(t *testing.T, transfers []Transfer) {
				want := []Transfer{
					{From: carol, To: alice, Amount: 3000},
					{From: carol, To: bob, Amount: 2000},
				}
				if !reflect.DeepEqual(transfers, want) {
					t.Errorf("transfers = %v, want %v", transfers, want)
				}
			},
		},
		{
			name: "amount tie broken by member id",
			net:  map[uuid.UUID]int64{alice: 1000, bob: 1000, carol: -2000},
			validateFunc: func(t *testing.T, transfers []Transfer) {
				// alice sorts before bob at equal amounts.
				want := []Transfer{
					{From: carol, To: alice, Amount: 1000},
					{From: carol, To: bob, Amount: 1000},
				}
				if !reflect.DeepEqual(transfers, want) {
					t.Errorf("transfers = %v, want %v", transfers, want)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, Simplify(tt.net))
		})
	}
}

// Replaying the suggested payments must reproduce the original net positions
// exactly: every creditor collects their full balance, every debtor pays out
// theirs.
func TestSimplifyEquivalence(t *testing.T) {
	nets := []map[uuid.UUID]int64{
		{alice: 5000, bob: -5000},
		{alice: 3334, bob: -3333, carol: -1, dave: 0},
		{alice: 10000, bob: 2500, carol: -7500, dave: -5000},
		{alice: -1, bob: -1, carol: 2},
	}

	for _, net := range nets {
		transfers := Simplify(net)

		remaining := make(map[uuid.UUID]int64, len(net))
		for id, v := range net {
			remaining[id] = v
		}
		for _, tr := range transfers {
			if tr.Amount <= 0 {
				t.Errorf("transfer amount %d not strictly positive", tr.Amount)
			}
			if tr.From == tr.To {
				t.Errorf("self transfer for %s", tr.From)
			}
			remaining[tr.From] += tr.Amount
			remaining[tr.To] -= tr.Amount
		}
		for id, v := range remaining {
			if v != 0 {
				t.Errorf("member %s left with %d after replaying transfers (input %v)", id, v, net)
			}
		}
	}
}

func TestSimplifyTerminationBound(t *testing.T) {
	net := map[uuid.UUID]int64{
		alice: 700,
		bob:   300,
		carol: -600,
		dave:  -400,
	}

	transfers := Simplify(net)
	if len(transfers) > len(net)-1 {
		t.Errorf("got %d transfers for %d members, want at most %d", len(transfers), len(net), len(net)-1)
	}
}

func TestSimplifyDeterministic(t *testing.T) {
	net := map[uuid.UUID]int64{
		alice: 1234,
		bob:   1234,
		carol: -1000,
		dave:  -1468,
	}

	first := Simplify(net)
	for i := 0; i < 10; i++ {
		if got := Simplify(net); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %v, first run produced %v", i, got, first)
		}
	}
}
