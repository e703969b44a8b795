package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/a3tai/contract-diff/internal/diff"
)

// Text writes the result as aligned plain-text tables.
func Text(w io.Writer, res *diff.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := func(format string, args ...any) {
		fmt.Fprintf(tw, format, args...)
	}

	if res.Strategy == diff.StrategyLines {
		if len(res.LineChanges) == 0 {
			p("No differences found!\n")
			return tw.Flush()
		}
		p("Line-by-Line Changes\n\n")
		p("Line\tOld Contract\tNew Contract\tChange\n")
		for _, c := range res.LineChanges {
			p("%s\t%s\t%s\t%s\n", c.Label, c.OldValue, c.NewValue, c.Change)
		}
		return tw.Flush()
	}

	p("Summary of Changes\n%s\n\n", res.Summary)

	p("Significant Changes:\n")
	if len(res.SignificantChanges) == 0 {
		p("No significant changes.\n")
	} else {
		p("Section\tCondition\tOld Payout\tNew Payout\tChange\n")
		for _, c := range res.SignificantChanges {
			p("%s\t%s\t%s\t%s\t%s\n", c.Section, c.Condition, orDash(c.OldValue), orDash(c.NewValue), c.Change)
		}
	}

	p("\nMinor Changes:\n")
	for _, m := range res.MinorChanges {
		p("  - %s\n", m)
	}

	p("\nBasic Information Changes\n")
	changed := res.ChangedAspects()
	if len(changed) == 0 {
		p("No changes detected in basic information.\n")
		return tw.Flush()
	}
	p("Aspect\tOld Contract\tNew Contract\n")
	for _, a := range changed {
		p("%s\t%s\t%s\n", a.Aspect, orDash(a.OldValue), orDash(a.NewValue))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
