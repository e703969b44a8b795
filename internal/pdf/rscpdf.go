package pdf

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	rscpdf "rsc.io/pdf"
)

type rscExtractor struct{}

func (rscExtractor) Backend() Backend { return BackendRSC }

// Pages rebuilds lines from the text operators of each page.
func (rscExtractor) Pages(ctx context.Context, r io.ReaderAt, size int64, fn PageFunc) (n int, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &ExtractError{Backend: BackendRSC, Op: "read", Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	reader, err := rscpdf.NewReader(r, size)
	if err != nil {
		return 0, &ExtractError{Backend: BackendRSC, Op: "open", Err: err}
	}

	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		var text string
		page := reader.Page(i)
		if !page.V.IsNull() {
			text = pageText(page)
		}

		n = i
		if err := fn(i, text); err != nil {
			return n, err
		}
	}
	return n, nil
}

// textWriter rebuilds lines from the text operators of a content stream.
// Only the baseline is tracked: a string shown on another baseline starts a
// new line. Strings keep their own spaces, and a horizontal move or wide TJ
// adjustment on the same baseline becomes a single space.
type textWriter struct {
	page    rscpdf.Page
	enc     rscpdf.TextEncoding
	b       strings.Builder
	y       float64
	lastY   float64
	leading float64
	shown   bool
	space   bool
}

// wordGap is the TJ adjustment, in thousandths of an em, read as a space.
const wordGap = 200

func pageText(page rscpdf.Page) string {
	w := &textWriter{page: page}

	contents := page.V.Key("Contents")
	switch contents.Kind() {
	case rscpdf.Stream:
		rscpdf.Interpret(contents, w.do)
	case rscpdf.Array:
		for i := 0; i < contents.Len(); i++ {
			rscpdf.Interpret(contents.Index(i), w.do)
		}
	}
	return w.b.String()
}

func (w *textWriter) do(stk *rscpdf.Stack, op string) {
	args := make([]rscpdf.Value, stk.Len())
	for i := len(args) - 1; i >= 0; i-- {
		args[i] = stk.Pop()
	}

	switch op {
	case "BT":
		w.y = 0
		w.space = true
	case "Tf":
		if len(args) == 2 {
			w.enc = w.page.Font(args[0].Name()).Encoder()
		}
	case "TL":
		if len(args) == 1 {
			w.leading = args[0].Float64()
		}
	case "TD", "Td":
		if len(args) != 2 {
			return
		}
		ty := args[1].Float64()
		if op == "TD" {
			w.leading = -ty
		}
		w.y += ty
		if ty == 0 && args[0].Float64() > 0 {
			w.space = true
		}
	case "Tm":
		if len(args) == 6 {
			w.y = args[5].Float64()
			w.space = true
		}
	case "T*":
		w.y -= w.leading
	case "'", "\"":
		if len(args) == 0 {
			return
		}
		w.y -= w.leading
		w.show(args[len(args)-1].RawString())
	case "Tj":
		if len(args) == 1 {
			w.show(args[0].RawString())
		}
	case "TJ":
		if len(args) != 1 {
			return
		}
		arr := args[0]
		for i := 0; i < arr.Len(); i++ {
			v := arr.Index(i)
			if v.Kind() == rscpdf.String {
				w.show(v.RawString())
			} else if -v.Float64() > wordGap {
				w.space = true
			}
		}
	}
}

func (w *textWriter) show(raw string) {
	s := raw
	if w.enc != nil {
		s = w.enc.Decode(raw)
	}
	if s == "" {
		return
	}

	if w.shown {
		switch {
		case math.Abs(w.y-w.lastY) > 0.01:
			w.b.WriteByte('\n')
		case w.space && !strings.HasSuffix(w.b.String(), " ") && !strings.HasPrefix(s, " "):
			w.b.WriteByte(' ')
		}
	}
	w.b.WriteString(s)
	w.shown = true
	w.space = false
	w.lastY = w.y
}
