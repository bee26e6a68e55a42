// Package schwab reconciles a Schwab brokerage transactions export with the
// equity awards export, so that the result can be read as a regular feed.
//
// Schwab reports vested shares ("Stock Plan Activity") without a price, and
// the shares withheld for taxes both as a vest and as a sale. The equity
// awards export provides the fair market value of each vest and the number
// of shares withheld, which is enough to fix both.
package schwab

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/etnz/taxlots/date"
	"github.com/shopspring/decimal"
)

// Column names and action values used by the exports.
const (
	ColumnDate     = "Date"
	ColumnAction   = "Action"
	ColumnQuantity = "Quantity"
	ColumnPrice    = "Price"
	ColumnAmount   = "Amount"

	ColumnFairMarketValue = "FairMarketValuePrice"
	ColumnWithheld        = "SharesSoldWithheldForTaxes"

	ActionSell       = "Sell"
	ActionCancelSell = "Cancel Sell"
	ActionStockPlan  = "Stock Plan Activity"
)

const (
	dateLayout  = "01/02/2006"
	monthLayout = "01/2006"
)

var datePattern = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

// parseDate returns the first MM/DD/YYYY date found in s, like in
// "03/15/2024 as of 03/14/2024".
func parseDate(s string) (date.Date, string, error) {
	raw := datePattern.FindString(s)
	if raw == "" {
		return date.Date{}, "", fmt.Errorf("no MM/DD/YYYY date in %q", s)
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return date.Date{}, "", err
	}
	return date.Of(t), raw, nil
}

func monthOf(d date.Date) string { return d.Format(monthLayout) }

// Row is a CSV record keyed by column name.
type Row map[string]string

// Transactions is a brokerage transactions export, oldest first.
type Transactions struct {
	Header []string
	Rows   []Row
}

// ReadTransactions reads a brokerage transactions CSV export. Schwab lists
// the most recent transaction first: rows are reversed.
func ReadTransactions(r io.Reader) (*Transactions, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	slices.Reverse(rows)
	return &Transactions{Header: header, Rows: rows}, nil
}

// Write writes the export back as CSV, with its original header.
func (t *Transactions) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i, name := range t.Header {
			record[i] = row[name]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Award is a vest event from the equity awards export.
type Award struct {
	Date            date.Date
	FairMarketValue decimal.Decimal
	Withheld        string // number of shares sold to cover taxes, as exported
}

// ReadAwards reads an equity awards CSV export. Each award spans two rows:
// the vest row holding the date, followed by a details row holding the fair
// market value and the withheld shares. A trailing incomplete pair is ignored.
func ReadAwards(r io.Reader) ([]Award, error) {
	_, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	var awards []Award
	for i := 0; i+1 < len(rows); i += 2 {
		vest, details := rows[i], rows[i+1]
		on, _, err := parseDate(vest[ColumnDate])
		if err != nil {
			return nil, fmt.Errorf("award #%d: %w", i/2+1, err)
		}
		fmv, err := decimal.NewFromString(strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(details[ColumnFairMarketValue])))
		if err != nil {
			return nil, fmt.Errorf("award #%d: invalid %s %q: %w", i/2+1, ColumnFairMarketValue, details[ColumnFairMarketValue], err)
		}
		awards = append(awards, Award{
			Date:            on,
			FairMarketValue: fmv,
			Withheld:        strings.TrimSpace(details[ColumnWithheld]),
		})
	}
	return awards, nil
}

func readCSV(r io.Reader) ([]string, []Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return header, rows, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("could not read csv: %w", err)
		}
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
}

// Summary counts the changes made by Reconcile.
type Summary struct {
	CancelledSells int // Cancel Sell rows removed with the sale they cancel
	WithheldVests  int // Stock Plan Activity rows removed as withheld shares
	WithheldSales  int // Sell rows removed as sales to cover taxes
	PricedVests    int // Stock Plan Activity rows priced at fair market value
}

// Reconcile fixes the transactions using the awards:
//
//   - a Cancel Sell is removed together with the closest preceding Sell of
//     the same quantity and amount;
//   - dates are reduced to their first MM/DD/YYYY;
//   - vests and sales matching the withheld shares of an award of the same
//     month are removed;
//   - remaining vests are priced at the month's fair market value.
func (t *Transactions) Reconcile(awards []Award, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var sum Summary
	sum.CancelledSells = t.removeCancelledSells(logger)

	prices := vestingPrices(awards, logger)
	withheld := withheldShares(awards)
	vestsLeft, salesLeft := cloneWithheld(withheld), cloneWithheld(withheld)

	months := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		on, raw, err := parseDate(row[ColumnDate])
		if err != nil {
			return sum, fmt.Errorf("transaction #%d: %w", i+1, err)
		}
		row[ColumnDate] = raw
		months[i] = monthOf(on)
	}

	kept := t.Rows[:0]
	for i, row := range t.Rows {
		month := months[i]
		qty := strings.TrimSpace(row[ColumnQuantity])

		switch row[ColumnAction] {
		case ActionStockPlan:
			if take(vestsLeft, month, qty) {
				sum.WithheldVests++
				continue
			}
			price, ok := prices[month]
			if !ok {
				logger.Warn("missing vesting price", "month", month, "date", row[ColumnDate])
				break
			}
			row[ColumnPrice] = "$" + price.String()
			sum.PricedVests++
		case ActionSell:
			if take(salesLeft, month, qty) {
				sum.WithheldSales++
				continue
			}
		}
		kept = append(kept, row)
	}
	clear(t.Rows[len(kept):])
	t.Rows = kept

	logger.Debug("unmatched withheld shares", "vests", vestsLeft, "sales", salesLeft)
	return sum, nil
}

func (t *Transactions) removeCancelledSells(logger *slog.Logger) int {
	removed := make([]bool, len(t.Rows))
	n := 0
	for i, row := range t.Rows {
		if row[ColumnAction] != ActionCancelSell {
			continue
		}
		amount := strings.TrimPrefix(row[ColumnAmount], "-")
		match := -1
		for j := i - 1; j >= 0; j-- {
			prev := t.Rows[j]
			if !removed[j] && prev[ColumnAction] == ActionSell && prev[ColumnAmount] == amount && prev[ColumnQuantity] == row[ColumnQuantity] {
				match = j
				break
			}
		}
		if match < 0 {
			logger.Warn("no sell found for cancel sell", "date", row[ColumnDate], "quantity", row[ColumnQuantity], "amount", row[ColumnAmount])
			continue
		}
		removed[match], removed[i] = true, true
		n++
	}
	kept := t.Rows[:0]
	for i, row := range t.Rows {
		if !removed[i] {
			kept = append(kept, row)
		}
	}
	clear(t.Rows[len(kept):])
	t.Rows = kept
	return n
}

// vestingPrices returns the fair market value per month.
func vestingPrices(awards []Award, logger *slog.Logger) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal)
	for _, a := range awards {
		month := monthOf(a.Date)
		if prev, ok := prices[month]; ok && !prev.Equal(a.FairMarketValue) {
			logger.Warn("vesting price mismatch within a month", "month", month, "previous", prev.String(), "price", a.FairMarketValue.String())
		}
		prices[month] = a.FairMarketValue
	}
	return prices
}

// withheldShares returns the withheld share counts per month.
func withheldShares(awards []Award) map[string][]string {
	withheld := make(map[string][]string)
	for _, a := range awards {
		month := monthOf(a.Date)
		withheld[month] = append(withheld[month], a.Withheld)
	}
	return withheld
}

func cloneWithheld(m map[string][]string) map[string][]string {
	c := maps.Clone(m)
	for k, v := range c {
		c[k] = slices.Clone(v)
	}
	return c
}

// take removes one qty from the month's withheld counts, and reports whether
// it was there.
func take(withheld map[string][]string, month, qty string) bool {
	list := withheld[month]
	i := slices.Index(list, qty)
	if i < 0 {
		return false
	}
	withheld[month] = slices.Delete(list, i, i+1)
	return true
}
