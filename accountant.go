package taxlots

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ErrNoValuation is returned by Liquidate when the mark is incomplete.
var ErrNoValuation = errors.New("no valuation price and date")

// Accountant replays a stream of transactions under a single tax method.
//
// It owns its pool of open lots and two ledgers: realized gains, booked by
// sales, and unrealized gains, booked by Liquidate. Accountants share nothing,
// so several of them can be fed the same transactions independently.
type Accountant struct {
	method     TaxMethod
	pool       Pool
	realized   Gains
	unrealized Gains
	disposals  []Disposal
	logger     *slog.Logger
}

// Option configures an Accountant.
type Option func(*Accountant)

// WithLogger sets the logger used to report dropped transactions.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Accountant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAccountant creates an Accountant for method with an empty pool.
func NewAccountant(method TaxMethod, opts ...Option) *Accountant {
	a := &Accountant{
		method: method,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Method returns the accountant's tax method.
func (a *Accountant) Method() TaxMethod { return a.method }

// Pool returns the accountant's open lots.
func (a *Accountant) Pool() *Pool { return &a.pool }

// Process applies a transaction: a Buy opens a lot, a Sell consumes lots and
// books the realized gain. Unknown transaction types are logged and dropped.
//
// A sale larger than the open position returns an error wrapping ErrOversell;
// in that case neither the pool nor the ledgers are modified.
func (a *Accountant) Process(tx Transaction) error {
	switch tx.Type {
	case Buy:
		if err := tx.Validate(); err != nil {
			return err
		}
		return a.pool.Add(Lot{Size: tx.Size, Cost: tx.Price, Acquired: tx.On})
	case Sell:
		if err := tx.Validate(); err != nil {
			return err
		}
		disposals, err := a.pool.Sell(a.method, tx.Size, Sale{Price: tx.Price, On: tx.On})
		if err != nil {
			return fmt.Errorf("%s: %w", a.method, err)
		}
		for _, d := range disposals {
			a.realized.record(d)
		}
		a.disposals = append(a.disposals, disposals...)
		return nil
	default:
		a.logger.Warn("unknown transaction type, transaction dropped",
			slog.String("method", a.method.String()),
			slog.String("type", string(tx.Type)),
			slog.String("date", tx.On.Format(DateFormat)))
		return nil
	}
}

// Liquidate values every open lot as if it were sold at mark, books the result
// in the unrealized ledger and empties the pool. It returns the gains of this
// liquidation only. Realized totals are never modified.
//
// Liquidating an empty pool is a no-op.
func (a *Accountant) Liquidate(mark Sale) (Gains, error) {
	if mark.On.IsZero() {
		return Gains{}, ErrNoValuation
	}
	var g Gains
	if a.pool.Len() == 0 {
		return g, nil
	}
	disposals, err := a.pool.Sell(a.method, a.pool.Size(), mark)
	if err != nil {
		return Gains{}, fmt.Errorf("%s: liquidation: %w", a.method, err)
	}
	for _, d := range disposals {
		g.record(d)
	}
	a.unrealized = a.unrealized.Add(g)
	return g, nil
}

// Totals returns the realized gains.
func (a *Accountant) Totals() Gains { return a.realized }

// Unrealized returns the gains booked by Liquidate.
func (a *Accountant) Unrealized() Gains { return a.unrealized }

// Disposals returns every lot consumption booked by sales, in order.
func (a *Accountant) Disposals() []Disposal { return slices.Clone(a.disposals) }
