package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/etnz/taxlots"
	"github.com/google/subcommands"
)

type methodsCmd struct{}

func (*methodsCmd) Name() string     { return "methods" }
func (*methodsCmd) Synopsis() string { return "list the tax methods" }
func (*methodsCmd) Usage() string {
	return `taxer methods

  Lists the tax methods, in the order used by reports.
`
}
func (*methodsCmd) SetFlags(f *flag.FlagSet) {}

func (*methodsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "no arguments expected")
		return subcommands.ExitUsageError
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, m := range taxlots.Methods() {
		fmt.Fprintf(tw, "%s\t%s\n", m, m.Description())
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
