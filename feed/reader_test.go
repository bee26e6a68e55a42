package feed

import (
	"bytes"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/taxlots"
	"github.com/google/go-cmp/cmp"
)

func testConfig() *Config {
	return &Config{
		DateColumn:     "Date",
		DateFormat:     "%m/%d/%Y",
		TickerColumn:   "Symbol",
		Ticker:         "ACME",
		QuantityColumn: "Quantity",
		PriceColumn:    "Price",
		TypeColumn:     "Action",
		BuyValues:      []string{"Buy", "Stock Plan Activity"},
		SellValues:     []string{"Sell"},
	}
}

// describe renders transactions in a compact form for comparisons.
func describe(t *testing.T, cfg *Config, read func(*Reader) iter.Seq2[taxlots.Transaction, error]) []string {
	t.Helper()
	r, err := NewReader(cfg, nil)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	var got []string
	for tx, err := range read(r) {
		if err != nil {
			t.Fatalf("read error = %v", err)
		}
		got = append(got, tx.String())
	}
	return got
}

const exportCSV = `Date,Action,Symbol,Description,Quantity,Price,Fees & Comm,Amount
12/31/2023,Buy,ACME,ACME CORP,10,not a price,,
01/01/2024,Buy,ACME,ACME CORP,2.5,$3.00,,-$7.50
01/01/2024,Journal,ACME,ACME CORP,10,$3.00,,
01/01/2024,Buy,OTHER,OTHER CORP,10,$3.00,,-$30.00
03/02/2024,Buy,ACME,ACME CORP,"1,000",$1.50,,"-$1,500.00"
03/10/2025,Sell,ACME,ACME CORP,15,$5.00,,$75.00
Transactions Total,,,,,,,"-$1,462.50"
`

func TestReader_CSV(t *testing.T) {
	got := describe(t, testConfig(), func(r *Reader) iter.Seq2[taxlots.Transaction, error] {
		return r.CSV(strings.NewReader(exportCSV))
	})
	want := []string{
		"BUY 1000 @ 1.50 on 2024-03-02",
		"SELL 15 @ 5.00 on 2025-03-10",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CSV() mismatch (-want +got):\n%s", diff)
	}
}

func TestReader_CSV_LogsSkippedRows(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r, err := NewReader(testConfig(), logger)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	for _, err := range r.CSV(strings.NewReader(exportCSV)) {
		if err != nil {
			t.Fatalf("CSV() error = %v", err)
		}
	}
	logs := buf.String()
	for _, want := range []string{
		"level=WARN msg=\"skipping record: invalid price\" line=2",
		"level=WARN msg=\"skipping record: invalid quantity\" line=3",
		"level=DEBUG msg=\"skipping record: other type\" line=4",
		"level=DEBUG msg=\"skipping record: other ticker\" line=5",
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs do not contain %q:\n%s", want, logs)
		}
	}
}

func TestReader_CSV_StopsEarly(t *testing.T) {
	r, err := NewReader(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	n := 0
	for range r.CSV(strings.NewReader(exportCSV)) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterated %d times, want 1", n)
	}
}

func TestReader_JSON(t *testing.T) {
	const export = `{
  "FromDate": "01/01/2024",
  "BrokerageTransactions": [
    {"Date": "03/10/2025", "Action": "Sell", "Symbol": "ACME", "Quantity": "15", "Price": "$5.00"},
    {"Date": "03/02/2024 as of 03/01/2024", "Action": "Buy", "Symbol": "ACME", "Quantity": "5", "Price": "$1.50"},
    {"Date": "01/01/2024", "Action": "Buy", "Symbol": "ACME", "Quantity": 10, "Price": 3.25}
  ]
}`
	cfg := testConfig()
	cfg.RecordsPath = "$.BrokerageTransactions[*]"
	got := describe(t, cfg, func(r *Reader) iter.Seq2[taxlots.Transaction, error] {
		return r.JSON(strings.NewReader(export))
	})
	want := []string{
		"SELL 15 @ 5.00 on 2025-03-10",
		"BUY 10 @ 3.25 on 2024-01-01",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestReader_JSON_DefaultPath(t *testing.T) {
	const export = `[{"Date": "01/01/2024", "Action": "Buy", "Symbol": "ACME", "Quantity": 10, "Price": "3"}]`
	got := describe(t, testConfig(), func(r *Reader) iter.Seq2[taxlots.Transaction, error] {
		return r.JSON(strings.NewReader(export))
	})
	if diff := cmp.Diff([]string{"BUY 10 @ 3.00 on 2024-01-01"}, got); diff != "" {
		t.Errorf("JSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestReader_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")
	if err := os.WriteFile(path, []byte(exportCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := NewReader(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	report, err := taxlots.NewGainsReport(r.ReadFile(path), taxlots.ReportOptions{Methods: []taxlots.TaxMethod{taxlots.FIFO}})
	if err != nil {
		t.Fatalf("NewGainsReport() error = %v", err)
	}
	// 1000 bought @1.50, 15 sold @5.00.
	if got := report.Methods[0].Realized.Total(); got.Fixed(2) != "52.50" {
		t.Errorf("realized = %s, want 52.50", got.Fixed(2))
	}
	if got := report.Methods[0].Open; !got.Equal(taxlots.Q(985)) {
		t.Errorf("open = %s, want 985", got)
	}

	if _, err := taxlots.NewGainsReport(r.ReadFile(filepath.Join(t.TempDir(), "missing.csv")), taxlots.ReportOptions{}); err == nil {
		t.Error("NewGainsReport(missing file) returned no error")
	}
}

func TestReader_DateFormatGoLayout(t *testing.T) {
	cfg := testConfig()
	cfg.DateFormat = "2006-01-02"
	const export = "Date,Action,Symbol,Quantity,Price\n2024-01-01,Buy,ACME,1,2\n"
	got := describe(t, cfg, func(r *Reader) iter.Seq2[taxlots.Transaction, error] {
		return r.CSV(strings.NewReader(export))
	})
	if len(got) != 1 || got[0] != "BUY 1 @ 2.00 on 2024-01-01" {
		t.Errorf("CSV() = %v", got)
	}
}
