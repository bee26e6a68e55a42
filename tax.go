package taxlots

import "github.com/shopspring/decimal"

// TaxRates holds the two rates used to estimate a tax burden, as ratios
// (0.15 for 15%).
type TaxRates struct {
	CapitalGains decimal.Decimal // applies to long-term gains
	Income       decimal.Decimal // applies to short-term gains
}

// RatesFromPercent builds TaxRates from integer percentages.
func RatesFromPercent(capitalGains, income int) TaxRates {
	return TaxRates{
		CapitalGains: decimal.New(int64(capitalGains), -2),
		Income:       decimal.New(int64(income), -2),
	}
}

// EstimateTaxBurden estimates the tax due on g. It returns false when rates
// are unavailable.
//
//   - no net profit: nothing is due;
//   - both buckets positive: each is taxed at its own rate;
//   - only long-term positive: (L - S) at the capital gains rate;
//   - only short-term positive: (S - L) at the income rate.
func EstimateTaxBurden(g Gains, rates *TaxRates) (Money, bool) {
	if rates == nil {
		return Money{}, false
	}
	s, l := g.ShortTerm, g.LongTerm
	zero := M(0, cur(s, l))
	switch {
	case !s.Add(l).IsPositive():
		return zero, true
	case s.IsPositive() && l.IsPositive():
		return l.MulRate(rates.CapitalGains).Add(s.MulRate(rates.Income)), true
	case l.IsPositive():
		return l.Sub(s).MulRate(rates.CapitalGains), true
	default:
		return s.Sub(l).MulRate(rates.Income), true
	}
}
