package taxlots

import (
	"cmp"
	"time"
)

// Sale is the context a lot ordering is computed for: the pending sale's unit
// price and timestamp.
type Sale struct {
	Price Money
	On    time.Time
}

// Compare returns a negative number when lot a must be sold before lot b, a
// positive number when b must be sold first, and zero when the method does not
// distinguish them. Ties are resolved by the caller's stable sort, that is by
// pool order.
func (m TaxMethod) Compare(a, b Lot, sale Sale) int {
	switch m {
	case FIFO:
		return a.Acquired.Compare(b.Acquired)
	case LIFO:
		return b.Acquired.Compare(a.Acquired)
	case HighCost:
		return b.Cost.Cmp(a.Cost)
	case LowCost:
		return a.Cost.Cmp(b.Cost)
	case TaxOptimizer:
		return compareTaxOptimizer(a, b, sale)
	default:
		return 0
	}
}

// compareTaxOptimizer orders lots as:
//
//  1. losses, short-term first, largest loss first;
//  2. break-even lots, short-term first;
//  3. gains, long-term first, smallest gain first.
//
// Gains are exact decimals, so equal inputs always compare equal.
func compareTaxOptimizer(a, b Lot, sale Sale) int {
	ga, gb := sale.Price.Sub(a.Cost), sale.Price.Sub(b.Cost)
	return cmp.Or(
		cmp.Compare(gainClass(ga), gainClass(gb)),
		cmp.Compare(termRank(a, ga, sale.On), termRank(b, gb, sale.On)),
		ga.Cmp(gb),
	)
}

// gainClass ranks losses, then break-even, then gains.
func gainClass(gain Money) int { return gain.Sign() + 1 }

// termRank prefers short-term lots for losses and break-even, and long-term
// lots for gains.
func termRank(l Lot, gain Money, on time.Time) int {
	long := IsLongTerm(l.Acquired, on)
	if gain.IsPositive() {
		long = !long
	}
	if long {
		return 1
	}
	return 0
}
