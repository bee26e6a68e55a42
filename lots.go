package taxlots

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrOversell is returned when a sale is larger than the open position.
var ErrOversell = errors.New("oversell")

// Lot is the open remainder of a prior purchase.
type Lot struct {
	Size     Quantity  // Size is the number of units still open.
	Cost     Money     // Cost is the unit cost basis.
	Acquired time.Time // Acquired is the purchase timestamp.
}

// Disposal is the part of a single lot consumed by a sale.
type Disposal struct {
	Acquired time.Time
	Sold     time.Time
	Size     Quantity
	Cost     Money // unit cost basis
	Price    Money // unit sale price
	Gain     Money // (Price - Cost) * Size
	LongTerm bool
}

func dispose(l Lot, size Quantity, sale Sale) Disposal {
	return Disposal{
		Acquired: l.Acquired,
		Sold:     sale.On,
		Size:     size,
		Cost:     l.Cost,
		Price:    sale.Price,
		Gain:     sale.Price.Sub(l.Cost).Mul(size),
		LongTerm: IsLongTerm(l.Acquired, sale.On),
	}
}

func (d Disposal) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("acquired", d.Acquired.Format(DateFormat))
	w.Append("sold", d.Sold.Format(DateFormat))
	w.Append("size", d.Size)
	w.Append("cost", d.Cost)
	w.Append("price", d.Price)
	w.Append("gain", d.Gain)
	w.Append("longTerm", d.LongTerm)
	return w.MarshalJSON()
}

// Pool is the bag of open lots owned by one Accountant.
//
// The sum of the lot sizes is always the total bought minus the total sold,
// and every lot size is strictly positive.
type Pool struct {
	lots []Lot
}

// Add opens a new lot.
func (p *Pool) Add(l Lot) error {
	if !l.Size.IsPositive() {
		return fmt.Errorf("%w: lot size %s must be positive", ErrInvalidTransaction, l.Size)
	}
	if err := p.checkCurrency(l.Cost); err != nil {
		return err
	}
	p.lots = append(p.lots, l)
	return nil
}

// Len returns the number of open lots.
func (p *Pool) Len() int { return len(p.lots) }

// Size returns the total open size.
func (p *Pool) Size() Quantity {
	var total Quantity
	for _, l := range p.lots {
		total = total.Add(l.Size)
	}
	return total
}

// checkCurrency fails when price cannot be combined with the cost of every
// open lot.
func (p *Pool) checkCurrency(price Money) error {
	for _, l := range p.lots {
		if !sameCurrency(l.Cost, price) {
			return fmt.Errorf("%w: price in %s, open lots in %s", ErrInvalidTransaction, price.Currency(), l.Cost.Currency())
		}
	}
	return nil
}

// Lots returns a copy of the open lots in pool order.
func (p *Pool) Lots() []Lot { return slices.Clone(p.lots) }

// Sell consumes size units from the pool, in the order defined by method for
// this sale, and returns one Disposal per lot touched.
//
// The last lot touched is split when it is only partially consumed; its
// remainder goes to the back of the pool. A sale larger than the pool fails
// with ErrOversell, and a sale in another currency than the open lots with
// ErrInvalidTransaction; both leave the pool untouched.
func (p *Pool) Sell(method TaxMethod, size Quantity, sale Sale) ([]Disposal, error) {
	if !size.IsPositive() {
		return nil, fmt.Errorf("%w: sale size %s must be positive", ErrInvalidTransaction, size)
	}
	if err := p.checkCurrency(sale.Price); err != nil {
		return nil, err
	}
	if held := p.Size(); size.GreaterThan(held) {
		return nil, fmt.Errorf("%w: selling %s units on %s while holding %s", ErrOversell, size, sale.On.Format(DateFormat), held)
	}

	slices.SortStableFunc(p.lots, func(a, b Lot) int { return method.Compare(a, b, sale) })

	var disposals []Disposal
	var rest []Lot
	remaining := size
	consumed := 0
	for _, l := range p.lots {
		if !remaining.IsPositive() {
			break
		}
		u := l.Size.Min(remaining)
		disposals = append(disposals, dispose(l, u, sale))
		remaining = remaining.Sub(u)
		consumed++
		if u.LessThan(l.Size) {
			l.Size = l.Size.Sub(u)
			rest = append(rest, l)
		}
	}
	p.lots = append(slices.Delete(p.lots, 0, consumed), rest...)
	return disposals, nil
}
