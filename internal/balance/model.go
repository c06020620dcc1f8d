// Package balance computes per-currency net balances and simplified debts for
// a group from its expenses and settlements. The computation is a pure
// function of its inputs: no I/O, no shared state, safe to run concurrently
// for different groups. Correctness depends on the caller handing it a
// consistent snapshot of a group's records taken at a single point in time;
// the write path keeps that true by creating and updating records inside SQL
// transactions.
//
// All amounts are integer minor units of their currency. Currencies are never
// mixed: each currency code gets its own independent ledger.
package balance

import "github.com/google/uuid"

// Split is one participant's share of an expense.
type Split struct {
	MemberID uuid.UUID
	Amount   int64
}

// Expense carries the minimal expense data needed for balance computation.
// Splits were computed at write time and must cover ParticipantIDs exactly.
type Expense struct {
	ID             uuid.UUID
	PayerID        uuid.UUID
	ParticipantIDs []uuid.UUID
	Splits         []Split
	Amount         int64
	Currency       string
	Deleted        bool
}

// Settlement is a direct payment from PayerID to PayeeID.
type Settlement struct {
	ID       uuid.UUID
	PayerID  uuid.UUID
	PayeeID  uuid.UUID
	Amount   int64
	Currency string
}

// Transfer is one suggested payment in a simplified debt list.
type Transfer struct {
	From   uuid.UUID
	To     uuid.UUID
	Amount int64
}

// Sheet is the balance result for one currency: raw net balances per member
// (positive = owed money, negative = owes money) and the simplified debts
// that settle them.
type Sheet struct {
	NetBalances     map[uuid.UUID]int64
	SimplifiedDebts []Transfer
}
