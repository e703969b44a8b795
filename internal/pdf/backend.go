package pdf

import (
	"context"
	"fmt"
	"io"
)

// Backend names a text extraction implementation.
type Backend string

const (
	BackendLedongthuc Backend = "ledongthuc"
	BackendRSC        Backend = "rscpdf"
	BackendPDFCPU     Backend = "pdfcpu"
	BackendText       Backend = "text"
)

// PageFunc receives the text of each page in page order.
type PageFunc func(page int, text string) error

// Extractor reads the pages of a PDF one after another. Implementations
// check ctx between pages and stop at the first error returned by fn.
type Extractor interface {
	Backend() Backend
	Pages(ctx context.Context, r io.ReaderAt, size int64, fn PageFunc) (int, error)
}

// ParseBackend validates a backend name. An empty name selects the default.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendLedongthuc:
		return BackendLedongthuc, nil
	case BackendRSC:
		return BackendRSC, nil
	default:
		return "", fmt.Errorf("unknown backend %q (must be one of: ledongthuc, rscpdf)", s)
	}
}

// NewExtractor returns the extractor for b.
func NewExtractor(b Backend) (Extractor, error) {
	switch b {
	case "", BackendLedongthuc:
		return ledongthucExtractor{}, nil
	case BackendRSC:
		return rscExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", b)
	}
}
