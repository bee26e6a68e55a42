package feed

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/date"
)

// DefaultRecordsPath selects the records of a JSON export made of a top level array.
const DefaultRecordsPath = "$[*]"

// Reader turns export records into transactions of the tracked ticker.
//
// Records for other tickers or with an unknown transaction type are skipped
// silently (at debug level). Malformed records are skipped with a warning.
type Reader struct {
	cfg    *Config
	layout string
	logger *slog.Logger
}

// NewReader returns a Reader for a validated configuration.
func NewReader(cfg *Config, logger *slog.Logger) (*Reader, error) {
	layout, err := date.Layout(cfg.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{cfg: cfg, layout: layout, logger: logger}, nil
}

// ReadFile reads the export at path, as JSON when its extension is .json
// and as CSV otherwise. The file is opened when the sequence is iterated.
func (r *Reader) ReadFile(path string) iter.Seq2[taxlots.Transaction, error] {
	return func(yield func(taxlots.Transaction, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(taxlots.Transaction{}, err)
			return
		}
		defer f.Close()

		read := r.CSV
		if strings.EqualFold(filepath.Ext(path), ".json") {
			read = r.JSON
		}
		for tx, err := range read(f) {
			if !yield(tx, err) || err != nil {
				return
			}
		}
	}
}

// CSV reads a CSV export whose first row is the header.
func (r *Reader) CSV(in io.Reader) iter.Seq2[taxlots.Transaction, error] {
	return func(yield func(taxlots.Transaction, error) bool) {
		cr := csv.NewReader(in)
		cr.FieldsPerRecord = -1 // exports often end with a shorter summary row
		header, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			yield(taxlots.Transaction{}, fmt.Errorf("could not read csv header: %w", err))
			return
		}
		if len(header) > 0 {
			header[0] = strings.TrimPrefix(header[0], "\ufeff")
		}
		for {
			row, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(taxlots.Transaction{}, fmt.Errorf("could not read csv: %w", err))
				return
			}
			line, _ := cr.FieldPos(0)
			record := make(map[string]string, len(header))
			for i, name := range header {
				if i < len(row) {
					record[name] = row[i]
				}
			}
			tx, ok := r.transaction(record, line)
			if ok && !yield(tx, nil) {
				return
			}
		}
	}
}

// JSON reads a JSON export. The configured records_path selects the list of
// records, each one an object keyed by column name.
func (r *Reader) JSON(in io.Reader) iter.Seq2[taxlots.Transaction, error] {
	return func(yield func(taxlots.Transaction, error) bool) {
		dec := json.NewDecoder(in)
		dec.UseNumber()
		var doc any
		if err := dec.Decode(&doc); err != nil {
			yield(taxlots.Transaction{}, fmt.Errorf("could not decode json: %w", err))
			return
		}
		path := r.cfg.RecordsPath
		if path == "" {
			path = DefaultRecordsPath
		}
		jval, err := jsonpath.Get(path, doc)
		if err != nil {
			yield(taxlots.Transaction{}, fmt.Errorf("could not select records %q: %w", path, err))
			return
		}
		records, ok := jval.([]any)
		if !ok {
			yield(taxlots.Transaction{}, fmt.Errorf("records %q: got %T, want a list", path, jval))
			return
		}
		// a path selecting the array itself returns it wrapped in a 1-element list
		if len(records) == 1 {
			if inner, ok := records[0].([]any); ok {
				records = inner
			}
		}
		for i, item := range records {
			obj, ok := item.(map[string]any)
			if !ok {
				r.logger.Warn("skipping record: not an object", "record", i+1)
				continue
			}
			record := make(map[string]string, len(obj))
			for k, v := range obj {
				record[k] = stringify(v)
			}
			tx, ok := r.transaction(record, i+1)
			if ok && !yield(tx, nil) {
				return
			}
		}
	}
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// transaction converts a record, and reports whether it is kept.
func (r *Reader) transaction(record map[string]string, line int) (taxlots.Transaction, bool) {
	cfg := r.cfg
	if ticker := strings.TrimSpace(record[cfg.TickerColumn]); ticker != cfg.Ticker {
		r.logger.Debug("skipping record: other ticker", "line", line, "ticker", ticker)
		return taxlots.Transaction{}, false
	}
	kind := strings.TrimSpace(record[cfg.TypeColumn])
	var typ taxlots.TransactionType
	switch {
	case slices.Contains(cfg.BuyValues, kind):
		typ = taxlots.Buy
	case slices.Contains(cfg.SellValues, kind):
		typ = taxlots.Sell
	default:
		r.logger.Debug("skipping record: other type", "line", line, "type", kind)
		return taxlots.Transaction{}, false
	}

	on, err := time.Parse(r.layout, strings.TrimSpace(record[cfg.DateColumn]))
	if err != nil {
		r.logger.Warn("skipping record: invalid date", "line", line, "error", err)
		return taxlots.Transaction{}, false
	}
	size, err := taxlots.ParseQuantity(cleanNumber(record[cfg.quantityColumn()]))
	if err != nil || !size.IsInteger() || !size.IsPositive() {
		r.logger.Warn("skipping record: invalid quantity", "line", line, "quantity", record[cfg.quantityColumn()])
		return taxlots.Transaction{}, false
	}
	price, err := taxlots.ParseMoney(cleanNumber(record[cfg.PriceColumn]), cfg.currency())
	if err != nil || price.IsNegative() {
		r.logger.Warn("skipping record: invalid price", "line", line, "price", record[cfg.PriceColumn])
		return taxlots.Transaction{}, false
	}
	return taxlots.Transaction{Type: typ, Size: size, Price: price, On: on}, true
}

// cleanNumber removes currency symbols and thousands separators.
func cleanNumber(s string) string {
	return strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
}
