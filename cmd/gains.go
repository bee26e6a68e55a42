package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/date"
	"github.com/etnz/taxlots/feed"
	"github.com/etnz/taxlots/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	method  string
	format  string
	details bool
	price   string
	date    string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized and unrealized gains under every tax method" }
func (*gainsCmd) Usage() string {
	return `taxer [-config <file>] gains [-method <method>] [-format text|markdown|json] [-details] [-price <price> -date <date>] <transactions>

  Replays the transactions of the tracked ticker under each tax method and
  displays realized gains, unrealized gains of the open lots valued at the
  last known price, and the estimated tax burden.

  <transactions> is a CSV export, or a JSON export when its extension is .json.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "method", "", "Tax method to report on (fifo, lifo, tax-optimizer, high-cost, low-cost). Defaults to the configured ones, or all.")
	f.StringVar(&c.format, "format", "text", "Output format (text, markdown, json)")
	f.BoolVar(&c.details, "details", false, "Also display the lots consumed by every sale")
	f.StringVar(&c.price, "price", "", "Last known price, overrides last_known_price")
	f.StringVar(&c.date, "date", "", "Last known price date (YYYY-MM-DD), overrides last_known_date")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "gains requires exactly one transactions file")
		return subcommands.ExitUsageError
	}
	switch c.format {
	case "text", "markdown", "json":
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	logger := newLogger(os.Stderr)

	opts := taxlots.ReportOptions{
		Methods: cfg.Methods,
		Mark:    cfg.Mark(),
		Rates:   cfg.Rates(),
		Logger:  logger,
	}
	if c.method != "" {
		m, err := taxlots.ParseTaxMethod(c.method)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing tax method: %v\n", err)
			return subcommands.ExitUsageError
		}
		opts.Methods = []taxlots.TaxMethod{m}
	}
	mark, err := c.mark(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing last known price: %v\n", err)
		return subcommands.ExitUsageError
	}
	if mark != nil {
		opts.Mark = mark
	}

	reader, err := feed.NewReader(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := taxlots.NewGainsReport(reader.ReadFile(f.Arg(0)), opts)
	if errors.Is(err, taxlots.ErrOversell) {
		fmt.Fprintf(os.Stderr, "Error: more units sold than held: %v\n", err)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating gains: %v\n", err)
		return subcommands.ExitFailure
	}

	switch c.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if !c.details {
			for i := range report.Methods {
				report.Methods[i].Disposals = nil
			}
		}
		err = enc.Encode(report)
	case "markdown":
		printMarkdown(renderer.RenderGains(report, renderer.Options{Details: c.details}))
	default:
		err = renderer.GainsText(os.Stdout, report, renderer.Options{Details: c.details})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error printing report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// mark returns the mark given by the -price and -date flags, nil when both
// are missing.
func (c *gainsCmd) mark(cfg *feed.Config) (*taxlots.Sale, error) {
	if c.price == "" && c.date == "" {
		return nil, nil
	}
	if c.price == "" || c.date == "" {
		return nil, errors.New("-price and -date must be used together")
	}
	price, err := decimal.NewFromString(c.price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", c.price, err)
	}
	on, err := date.Parse(c.date)
	if err != nil {
		return nil, err
	}
	mark := cfg.MarkAt(price, on)
	return &mark, nil
}
