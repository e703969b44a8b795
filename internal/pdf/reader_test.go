package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/contract-diff/internal/pdf/pdftest"
)

var contractLines = []string{
	"Registration: Required",
	"Free Trial: $0.00 - $10.00 USD",
	"Payout Groups",
	"1",
	"Item SKU is TRIAL-01",
	"US$10.00 per order",
	"Schedule",
}

func TestNewReader(t *testing.T) {
	tests := []struct {
		name    string
		backend Backend
		want    Backend
		wantErr bool
	}{
		{name: "default backend", backend: "", want: BackendLedongthuc},
		{name: "ledongthuc", backend: BackendLedongthuc, want: BackendLedongthuc},
		{name: "rscpdf", backend: BackendRSC, want: BackendRSC},
		{name: "unknown", backend: "poppler", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(1024, tt.backend)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Backend())
			assert.Equal(t, DefaultMaxTextSize, r.maxTextSize)
		})
	}
}

func TestReader_ReadFile_PDF(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.WriteFile(t, dir, "contract.pdf", contractLines...)

	for _, backend := range []Backend{BackendLedongthuc, BackendRSC} {
		t.Run(string(backend), func(t *testing.T) {
			r, err := NewReader(10*1024*1024, backend)
			require.NoError(t, err)

			doc, err := r.ReadFile(context.Background(), path)
			require.NoError(t, err)

			assert.Equal(t, FormatPDF, doc.Format)
			assert.Equal(t, backend, doc.Backend)
			assert.Equal(t, 1, doc.Pages)
			assert.NotEmpty(t, doc.Version)
			assert.True(t, strings.HasSuffix(doc.Content, "\n"))
			var lines []string
			for _, line := range strings.Split(doc.Content, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					lines = append(lines, line)
				}
			}
			assert.Equal(t, contractLines, lines, "each cell must come out as its own line")
		})
	}
}

func TestReader_Read_MultiplePages(t *testing.T) {
	r, err := NewReader(0, BackendLedongthuc)
	require.NoError(t, err)

	data := pdftest.Pages(t, []string{"First page text"}, []string{"Second page text"})
	doc, err := r.Read(context.Background(), "upload", data)
	require.NoError(t, err)

	assert.Equal(t, 2, doc.Pages)
	first := strings.Index(doc.Content, "First page text")
	second := strings.Index(doc.Content, "Second page text")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
	assert.Contains(t, doc.Content[first:second], "\n")
}

func TestReader_ReadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	emptyPath := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0o600))

	largePath := filepath.Join(dir, "large.txt")
	require.NoError(t, os.WriteFile(largePath, make([]byte, 2048), 0o600))

	fakePath := filepath.Join(dir, "fake.pdf")
	require.NoError(t, os.WriteFile(fakePath, []byte("This is not a PDF"), 0o600))

	subDir := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(subDir, 0o755))

	r, err := NewReader(1024, BackendLedongthuc)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		wantIs  error
		wantMsg string
	}{
		{name: "empty path", path: "", wantIs: ErrEmptyPath},
		{name: "missing file", path: filepath.Join(dir, "missing.pdf"), wantMsg: "does not exist"},
		{name: "directory", path: subDir, wantMsg: "directory"},
		{name: "empty file", path: emptyPath, wantIs: ErrEmptyFile},
		{name: "too large", path: largePath, wantIs: ErrFileTooLarge},
		{name: "not a pdf", path: fakePath, wantMsg: "invalid PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ReadFile(context.Background(), tt.path)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestReader_Read_InvalidPDFIsExtractError(t *testing.T) {
	r, err := NewReader(0, BackendLedongthuc)
	require.NoError(t, err)

	_, err = r.Read(context.Background(), "broken.pdf", []byte("%PDF-1.4\ngarbage"))
	var extractErr *ExtractError
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, BackendPDFCPU, extractErr.Backend)
}

func TestReader_Read_Text(t *testing.T) {
	r, err := NewReader(0, BackendLedongthuc)
	require.NoError(t, err)

	doc, err := r.Read(context.Background(), "contract.txt", []byte("Registration: Required\r\nInvoicing: Monthly\n"))
	require.NoError(t, err)
	assert.Equal(t, FormatText, doc.Format)
	assert.Equal(t, BackendText, doc.Backend)
	assert.Equal(t, "Registration: Required\r\nInvoicing: Monthly\n", doc.Content)

	_, err = r.Read(context.Background(), "binary.bin", []byte{0xff, 0xfe, 0x00})
	assert.ErrorIs(t, err, ErrNotDocument)
}

func TestReader_Read_NormalizesText(t *testing.T) {
	r, err := NewReader(0, BackendLedongthuc)
	require.NoError(t, err)

	doc, err := r.Read(context.Background(), "a.txt", []byte("Cafe\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", doc.Content)
}

func TestReader_Read_TruncatesAtLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		input string
		want  string
	}{
		{name: "ascii", limit: 10, input: "0123456789abc", want: "0123456789"},
		{name: "rune boundary", limit: 3, input: "\u00e9\u00e9\u00e9", want: "\u00e9"},
		{name: "under limit", limit: 100, input: "short", want: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(0, BackendLedongthuc, WithMaxTextSize(tt.limit))
			require.NoError(t, err)

			doc, err := r.Read(context.Background(), "a.txt", []byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Content)
			assert.Equal(t, tt.want != tt.input, doc.Truncated)
		})
	}
}

func TestReader_Read_CanceledContext(t *testing.T) {
	r, err := NewReader(0, BackendLedongthuc)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Read(ctx, "a.pdf", pdftest.Document(t, "text"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReader_ReadStream(t *testing.T) {
	r, err := NewReader(8, BackendLedongthuc)
	require.NoError(t, err)

	doc, err := r.ReadStream(context.Background(), "small.txt", strings.NewReader("12345678"))
	require.NoError(t, err)
	assert.Equal(t, "12345678", doc.Content)

	_, err = r.ReadStream(context.Background(), "big.txt", strings.NewReader("123456789"))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want Format
	}{
		{name: "pdf header", file: "upload", data: "%PDF-1.7\n", want: FormatPDF},
		{name: "pdf extension", file: "Contract.PDF", data: "x", want: FormatPDF},
		{name: "text file", file: "contract.txt", data: "Registration: Required", want: FormatText},
		{name: "no extension", file: "inline", data: "hello", want: FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.file, []byte(tt.data)))
		})
	}
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, BackendLedongthuc, b)

	b, err = ParseBackend("rscpdf")
	require.NoError(t, err)
	assert.Equal(t, BackendRSC, b)

	_, err = ParseBackend("pdfcpu")
	assert.Error(t, err)
}
