package taxlots

import (
	"fmt"
	"iter"
	"time"

	"github.com/shopspring/decimal"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// day returns midnight UTC of the given date.
func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// lot is a helper to create an open lot of size units at cost.
func lot(size int, cost float64, acquired time.Time) Lot {
	return Lot{Size: Q(size), Cost: USD(cost), Acquired: acquired}
}

// describe renders lots as "size@cost date" for readable diffs.
func describe(lots []Lot) []string {
	var res []string
	for _, l := range lots {
		res = append(res, fmt.Sprintf("%s@%s %s", l.Size, l.Cost.Decimal(), l.Acquired.Format(DateFormat)))
	}
	return res
}

// describeDisposals renders disposals as "size@cost date".
func describeDisposals(ds []Disposal) []string {
	var res []string
	for _, d := range ds {
		res = append(res, fmt.Sprintf("%s@%s %s", d.Size, d.Cost.Decimal(), d.Acquired.Format(DateFormat)))
	}
	return res
}

// amountIs reports whether m has the value want, whatever its currency.
func amountIs(m Money, want float64) bool {
	return m.Decimal().Equal(decimal.NewFromFloat(want))
}

// seq turns a slice of transactions into a feed.
func seq(txs ...Transaction) iter.Seq2[Transaction, error] {
	return func(yield func(Transaction, error) bool) {
		for _, tx := range txs {
			if !yield(tx, nil) {
				return
			}
		}
	}
}

// scenarioLots are the three purchases used across the tests:
// 10@5 on 2024-01-01, 20@2 on 2024-03-01 and 30@10 on 2024-04-01.
func scenarioLots() []Lot {
	return []Lot{
		lot(10, 5, day(2024, time.January, 1)),
		lot(20, 2, day(2024, time.March, 1)),
		lot(30, 10, day(2024, time.April, 1)),
	}
}

// scenarioBuys are scenarioLots as transactions.
func scenarioBuys() []Transaction {
	var txs []Transaction
	for _, l := range scenarioLots() {
		txs = append(txs, NewBuy(l.Acquired, l.Size, l.Cost))
	}
	return txs
}
