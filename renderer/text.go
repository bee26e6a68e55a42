package renderer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/etnz/taxlots"
)

const notAvailable = "n/a"

// GainsText writes the report as plain text: one row per method, numbers
// with two decimals in fixed-width right-aligned columns.
func GainsText(w io.Writer, r *taxlots.GainsReport, opts Options) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Method\tRealized\tUnrealized ST\tUnrealized LT\tTax Burden\t\n")
	for _, m := range r.Methods {
		short, long := notAvailable, notAvailable
		if r.Mark != nil {
			short, long = m.Unrealized.ShortTerm.Fixed(2), m.Unrealized.LongTerm.Fixed(2)
		}
		burden := notAvailable
		if m.HasBurden {
			burden = m.Burden.Fixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", m.Method, m.Realized.Total().Fixed(2), short, long, burden)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !opts.Details {
		return nil
	}

	for _, m := range r.Methods {
		if _, err := fmt.Fprintf(w, "\n%s\n", m.Method); err != nil {
			return err
		}
		if len(m.Disposals) == 0 {
			fmt.Fprintln(w, "no sales")
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprint(tw, "Acquired\tSold\tSize\tCost\tPrice\tGain\tTerm\t\n")
		for _, d := range m.Disposals {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				d.Acquired.Format(taxlots.DateFormat),
				d.Sold.Format(taxlots.DateFormat),
				d.Size,
				d.Cost.Fixed(2),
				d.Price.Fixed(2),
				d.Gain.Fixed(2),
				term(d.LongTerm))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
