package taxlots

import (
	"encoding/json"
	"errors"
	"iter"
	"strings"
	"testing"
	"time"
)

func TestNewGainsReport(t *testing.T) {
	txs := append(scenarioBuys(), NewSell(day(2025, time.March, 10), Q(15), USD(5)))
	rates := RatesFromPercent(15, 30)
	mark := Sale{Price: USD(12), On: day(2025, time.March, 31)}

	report, err := NewGainsReport(seq(txs...), ReportOptions{Mark: &mark, Rates: &rates})
	if err != nil {
		t.Fatalf("NewGainsReport() error = %v", err)
	}
	if report.Transactions != 4 {
		t.Errorf("Transactions = %d, want 4", report.Transactions)
	}
	if len(report.Methods) != len(Methods()) {
		t.Fatalf("got %d methods, want %d", len(report.Methods), len(Methods()))
	}

	// Total value (realized + unrealized) does not depend on the method.
	// bought 390, sold 15*5 = 75, valued 45*12 = 540.
	for _, row := range report.Methods {
		if got := row.Total().Total(); !amountIs(got, 225) {
			t.Errorf("%s: total = %s, want 225", row.Method, got.Decimal())
		}
		if !row.Open.Equal(Q(45)) {
			t.Errorf("%s: open = %s, want 45", row.Method, row.Open)
		}
		if !row.HasBurden {
			t.Errorf("%s: no burden estimate", row.Method)
		}
	}

	fifo := report.Methods[0]
	if fifo.Method != FIFO {
		t.Fatalf("first method = %s, want fifo", fifo.Method)
	}
	if !amountIs(fifo.Realized.Total(), 15) {
		t.Errorf("fifo realized = %s, want 15", fifo.Realized.Total().Decimal())
	}
	if !amountIs(fifo.Unrealized.ShortTerm, 60) || !amountIs(fifo.Unrealized.LongTerm, 150) {
		t.Errorf("fifo unrealized = %v, want short 60 long 150", fifo.Unrealized)
	}
	// short 60, long 15+150: both positive.
	if !amountIs(fifo.Burden, 42.75) {
		t.Errorf("fifo burden = %s, want 42.75", fifo.Burden.Decimal())
	}
	if len(fifo.Disposals) != 2 {
		t.Errorf("fifo disposals = %d, want 2", len(fifo.Disposals))
	}
}

func TestNewGainsReport_SelectedMethodsNoMark(t *testing.T) {
	report, err := NewGainsReport(seq(scenarioBuys()...), ReportOptions{Methods: []TaxMethod{LowCost}})
	if err != nil {
		t.Fatalf("NewGainsReport() error = %v", err)
	}
	if len(report.Methods) != 1 || report.Methods[0].Method != LowCost {
		t.Fatalf("methods = %v, want [low-cost]", report.Methods)
	}
	row := report.Methods[0]
	if !row.Unrealized.Total().IsZero() || row.HasBurden {
		t.Errorf("row = %+v, want no unrealized gains and no burden", row)
	}
}

func TestNewGainsReport_Oversell(t *testing.T) {
	txs := append(scenarioBuys(), NewSell(day(2025, time.March, 10), Q(61), USD(5)))
	_, err := NewGainsReport(seq(txs...), ReportOptions{})
	if !errors.Is(err, ErrOversell) {
		t.Errorf("NewGainsReport() error = %v, want %v", err, ErrOversell)
	}
}

func TestNewGainsReport_FeedError(t *testing.T) {
	broken := errors.New("broken feed")
	var feed iter.Seq2[Transaction, error] = func(yield func(Transaction, error) bool) {
		if !yield(scenarioBuys()[0], nil) {
			return
		}
		yield(Transaction{}, broken)
	}
	if _, err := NewGainsReport(feed, ReportOptions{}); !errors.Is(err, broken) {
		t.Errorf("NewGainsReport() error = %v, want %v", err, broken)
	}
}

func TestGainsReport_MarshalJSON(t *testing.T) {
	mark := Sale{Price: USD(12), On: day(2025, time.March, 31)}
	report, err := NewGainsReport(seq(scenarioBuys()...), ReportOptions{Methods: []TaxMethod{FIFO}, Mark: &mark})
	if err != nil {
		t.Fatalf("NewGainsReport() error = %v", err)
	}
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	for _, want := range []string{`"markDate":"2025-03-31"`, `"method":"fifo"`, `"transactions":3`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("json %s does not contain %s", data, want)
		}
	}
	if strings.Contains(string(data), `"burden"`) {
		t.Errorf("json %s contains a burden without rates", data)
	}
}
