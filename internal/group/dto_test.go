package group

import (
	"testing"

	"github.com/google/uuid"

	"github.com/divvyapp/divvy/internal/balance"
)

var (
	alice = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	bob   = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	carol = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
)

func TestToCurrencyBalances(t *testing.T) {
	sheet := &balance.Sheet{
		NetBalances: map[uuid.UUID]int64{
			carol: -1000,
			alice: 2500,
			bob:   -1500,
		},
		SimplifiedDebts: []balance.Transfer{
			{From: bob, To: alice, Amount: 1500},
			{From: carol, To: alice, Amount: 1000},
		},
	}

	got := toCurrencyBalances("USD", sheet)

	if got.Currency != "USD" {
		t.Errorf("currency = %s, want USD", got.Currency)
	}

	// Net balances come out sorted by user ID with amounts in major units.
	wantOrder := []uuid.UUID{alice, bob, carol}
	wantAmounts := []float64{25.00, -15.00, -10.00}
	if len(got.NetBalances) != len(wantOrder) {
		t.Fatalf("net balances len = %d, want %d", len(got.NetBalances), len(wantOrder))
	}
	for i, nb := range got.NetBalances {
		if nb.UserID != wantOrder[i] {
			t.Errorf("net balance %d user = %s, want %s", i, nb.UserID, wantOrder[i])
		}
		if nb.Amount != wantAmounts[i] {
			t.Errorf("net balance %d amount = %v, want %v", i, nb.Amount, wantAmounts[i])
		}
	}

	if len(got.SimplifiedDebts) != 2 {
		t.Fatalf("simplified debts len = %d, want 2", len(got.SimplifiedDebts))
	}
	if got.SimplifiedDebts[0].FromUserID != bob || got.SimplifiedDebts[0].Amount != 15.00 {
		t.Errorf("first transfer = %+v, want bob paying 15.00", got.SimplifiedDebts[0])
	}
}

func TestToCurrencyBalancesZeroDecimalCurrency(t *testing.T) {
	sheet := &balance.Sheet{
		NetBalances: map[uuid.UUID]int64{
			alice: 500,
			bob:   -500,
		},
		SimplifiedDebts: []balance.Transfer{
			{From: bob, To: alice, Amount: 500},
		},
	}

	got := toCurrencyBalances("JPY", sheet)

	// JPY has no minor unit: 500 stays 500.
	if got.SimplifiedDebts[0].Amount != 500 {
		t.Errorf("JPY transfer amount = %v, want 500", got.SimplifiedDebts[0].Amount)
	}
}
