package balance

import (
	"sort"

	"github.com/google/uuid"
)

// party is one side of the matching: a member and their remaining amount,
// always held positive.
type party struct {
	id     uuid.UUID
	amount int64
}

// Simplify reduces one currency's net balances to a list of suggested
// payments that settles every member. Greedy matching: repeatedly pay the
// largest remaining creditor from the largest remaining debtor. The result is
// balance-equivalent to the input and has at most n-1 transfers for n members
// with nonzero balances, though it is not guaranteed to be the theoretical
// minimum transaction count.
//
// Both sides are sorted descending by amount with member id as tie-break, so
// identical input always produces identical output.
func Simplify(net map[uuid.UUID]int64) []Transfer {
	var creditors, debtors []party
	for id, v := range net {
		switch {
		case v > 0:
			creditors = append(creditors, party{id: id, amount: v})
		case v < 0:
			debtors = append(debtors, party{id: id, amount: -v})
		}
	}

	byAmountDesc := func(parties []party) func(i, j int) bool {
		return func(i, j int) bool {
			if parties[i].amount != parties[j].amount {
				return parties[i].amount > parties[j].amount
			}
			return parties[i].id.String() < parties[j].id.String()
		}
	}
	sort.Slice(creditors, byAmountDesc(creditors))
	sort.Slice(debtors, byAmountDesc(debtors))

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		pay := debtors[i].amount
		if creditors[j].amount < pay {
			pay = creditors[j].amount
		}

		transfers = append(transfers, Transfer{
			From:   debtors[i].id,
			To:     creditors[j].id,
			Amount: pay,
		})

		debtors[i].amount -= pay
		creditors[j].amount -= pay
		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}

	return transfers
}
