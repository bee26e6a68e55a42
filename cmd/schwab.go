package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/taxlots/schwab"
	"github.com/google/subcommands"
)

// schwabCmd holds the flags for the 'schwab' subcommand.
type schwabCmd struct {
	transactions string
	awards       string
	output       string
}

func (*schwabCmd) Name() string     { return "schwab" }
func (*schwabCmd) Synopsis() string { return "reconcile Schwab transactions with equity awards" }
func (*schwabCmd) Usage() string {
	return `taxer schwab -t <transactions.csv> -e <equity_awards.csv> [-o <output.csv>]

  Prices the vested shares at their fair market value, removes the shares
  withheld for taxes and the cancelled sales, and writes the transactions
  oldest first, ready for 'taxer gains'.
`
}

func (c *schwabCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.transactions, "t", "", "Schwab brokerage transactions CSV export")
	f.StringVar(&c.awards, "e", "", "Schwab equity awards CSV export")
	f.StringVar(&c.output, "o", "-", "Output file, '-' for stdout")
}

func (c *schwabCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.transactions == "" || c.awards == "" || f.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "-t and -e are required, no arguments expected")
		return subcommands.ExitUsageError
	}
	logger := newLogger(os.Stderr)

	txs, err := readFile(c.transactions, schwab.ReadTransactions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading transactions %q: %v\n", c.transactions, err)
		return subcommands.ExitFailure
	}
	awards, err := readFile(c.awards, schwab.ReadAwards)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading equity awards %q: %v\n", c.awards, err)
		return subcommands.ExitFailure
	}

	sum, err := txs.Reconcile(awards, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reconciling transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	logger.Info("reconciled",
		"cancelled_sells", sum.CancelledSells,
		"withheld_vests", sum.WithheldVests,
		"withheld_sales", sum.WithheldSales,
		"priced_vests", sum.PricedVests)

	out := io.Writer(os.Stdout)
	if c.output != "-" {
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		out = file
	}
	if err := txs.Write(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// readFile opens path and decodes it with read.
func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return read(f)
}
