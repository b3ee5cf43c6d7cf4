package diagram

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
)

// WriteTable prints one row per generation of a series.
func WriteTable(w io.Writer, s *SummarySeries) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "generation\tcount\tmax\tmin\tmean\tstd\t\n")
	for _, p := range s.Points() {
		std := "NaN"
		if !math.IsNaN(p.Std) {
			std = fmt.Sprintf("%.4f", p.Std)
		}
		fmt.Fprintf(tw, "%d\t%d\t%.4f\t%.4f\t%.4f\t%s\t\n",
			p.Generation, p.Count, p.Max, p.Min, p.Mean, std)
	}
	return tw.Flush()
}
