package taxlots

import (
	"fmt"
	"iter"
	"log/slog"
)

// ReportOptions configures a GainsReport.
type ReportOptions struct {
	Methods []TaxMethod  // Methods to compare, all of them when empty.
	Mark    *Sale        // Mark values the open lots; no unrealized gains when nil.
	Rates   *TaxRates    // Rates to estimate the tax burden; no estimate when nil.
	Logger  *slog.Logger // Logger for dropped transactions.
}

// MethodGains holds the results of a single tax method.
type MethodGains struct {
	Method     TaxMethod
	Realized   Gains
	Unrealized Gains
	Open       Quantity // Open is the position valued by the mark.
	Burden     Money
	HasBurden  bool // HasBurden is false when no tax rates were given.
	Disposals  []Disposal
}

// Total returns realized plus unrealized gains.
func (m MethodGains) Total() Gains { return m.Realized.Add(m.Unrealized) }

func (m MethodGains) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("method", m.Method)
	w.Append("realized", m.Realized)
	w.Append("unrealized", m.Unrealized)
	w.Append("open", m.Open)
	if m.HasBurden {
		w.Append("burden", m.Burden)
	}
	w.Optional("disposals", m.Disposals)
	return w.MarshalJSON()
}

// GainsReport compares the gains of several tax methods over the same
// transactions.
type GainsReport struct {
	Mark         *Sale
	Transactions int
	Methods      []MethodGains
}

func (r *GainsReport) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	if r.Mark != nil {
		w.Append("markPrice", r.Mark.Price)
		w.Append("markDate", r.Mark.On.Format(DateFormat))
	}
	w.Append("transactions", r.Transactions)
	w.Append("methods", r.Methods)
	return w.MarshalJSON()
}

// NewGainsReport replays txs once, feeding a copy of every transaction to one
// Accountant per method. Reading stops at the first error from txs or at the
// first oversell.
func NewGainsReport(txs iter.Seq2[Transaction, error], opts ReportOptions) (*GainsReport, error) {
	methods := opts.Methods
	if len(methods) == 0 {
		methods = Methods()
	}
	accountants := make([]*Accountant, 0, len(methods))
	for _, m := range methods {
		accountants = append(accountants, NewAccountant(m, WithLogger(opts.Logger)))
	}

	report := &GainsReport{Mark: opts.Mark}
	for tx, err := range txs {
		if err != nil {
			return nil, fmt.Errorf("could not read transactions: %w", err)
		}
		report.Transactions++
		for _, a := range accountants {
			if err := a.Process(tx); err != nil {
				return nil, fmt.Errorf("transaction #%d (%s): %w", report.Transactions, tx, err)
			}
		}
	}

	for _, a := range accountants {
		row := MethodGains{
			Method:    a.Method(),
			Realized:  a.Totals(),
			Open:      a.Pool().Size(),
			Disposals: a.Disposals(),
		}
		if opts.Mark != nil {
			if _, err := a.Liquidate(*opts.Mark); err != nil {
				return nil, fmt.Errorf("could not value open lots: %w", err)
			}
			row.Unrealized = a.Unrealized()
		}
		row.Burden, row.HasBurden = EstimateTaxBurden(row.Total(), opts.Rates)
		report.Methods = append(report.Methods, row)
	}
	return report, nil
}
