package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/a3tai/contract-diff/internal/diff"
)

// PDF writes the result as a simple printable report.
func PDF(w io.Writer, res *diff.Result) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; the arrow in minor changes is not.
	tr := doc.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string {
		return tr(strings.ReplaceAll(s, "→", "->"))
	}

	doc.SetFont("Helvetica", "", 11)
	doc.AddPage()

	heading := func(s string) {
		doc.Ln(3)
		doc.SetFont("Helvetica", "B", 13)
		doc.CellFormat(0, 8, text(s), "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
	}
	para := func(s string) {
		doc.MultiCell(0, 5, text(s), "", "L", false)
	}

	if res.Strategy == diff.StrategyLines {
		heading("Line-by-Line Changes")
		if len(res.LineChanges) == 0 {
			para("No differences found!")
		}
		for _, c := range res.LineChanges {
			para(fmt.Sprintf("%s: %s", c.Label, c.Change))
			para("  old: " + orDash(c.OldValue))
			para("  new: " + orDash(c.NewValue))
		}
		return output(doc, w)
	}

	heading("Summary of Changes")
	para(res.Summary)

	heading("Significant Changes")
	if len(res.SignificantChanges) == 0 {
		para("No significant changes.")
	}
	for _, c := range res.SignificantChanges {
		para(fmt.Sprintf("%s / %s: %s", c.Section, c.Condition, c.Change))
	}

	heading("Minor Changes")
	for _, m := range res.MinorChanges {
		para("- " + m)
	}

	heading("Basic Information Changes")
	changed := res.ChangedAspects()
	if len(changed) == 0 {
		para("No changes detected in basic information.")
	}
	for _, a := range changed {
		para(fmt.Sprintf("%s: %s -> %s", a.Aspect, orDash(a.OldValue), orDash(a.NewValue)))
	}

	return output(doc, w)
}

func output(doc *gofpdf.Fpdf, w io.Writer) error {
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("pdf write: %w", err)
	}
	return nil
}
