// Package pdftest renders small text-only PDFs for tests.
package pdftest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// Pages renders each slice of lines on its own page, one text line per cell.
func Pages(t testing.TB, pages ...[]string) []byte {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 11)
	for _, lines := range pages {
		doc.AddPage()
		for _, line := range lines {
			doc.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	return buf.Bytes()
}

// Document renders lines on a single page.
func Document(t testing.TB, lines ...string) []byte {
	t.Helper()
	return Pages(t, lines)
}

// WriteFile renders lines into dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Document(t, lines...), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
