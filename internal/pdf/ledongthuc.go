package pdf

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

type ledongthucExtractor struct{}

func (ledongthucExtractor) Backend() Backend { return BackendLedongthuc }

// Pages reads rows top-down on each page. Fragments of one row are joined
// with a space; rows are joined with a newline.
func (ledongthucExtractor) Pages(ctx context.Context, r io.ReaderAt, size int64, fn PageFunc) (n int, err error) {
	defer func() {
		// The library panics on some malformed content streams.
		if p := recover(); p != nil {
			err = &ExtractError{Backend: BackendLedongthuc, Op: "read", Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return 0, &ExtractError{Backend: BackendLedongthuc, Op: "open", Err: err}
	}

	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		var text string
		page := reader.Page(i)
		if !page.V.IsNull() {
			text, err = rowText(page)
			if err != nil {
				return n, &ExtractError{Backend: BackendLedongthuc, Op: fmt.Sprintf("page %d", i), Err: err}
			}
		}

		n = i
		if err := fn(i, text); err != nil {
			return n, err
		}
	}
	return n, nil
}

// rowText joins rows from GetTextByRow. Content without positions comes back
// as a single row, so in that case the plain text, which breaks at every
// text object, is used instead.
func rowText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil || len(rows) < 2 {
		return page.GetPlainText(nil)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, 0, len(row.Content))
		for _, t := range row.Content {
			parts = append(parts, t.S)
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n"), nil
}
