package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxTextSize caps the extracted text of one document.
const DefaultMaxTextSize = 10 * 1024 * 1024

// Format is the detected kind of an input document.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "text"
)

// Document is the flat text of one input plus what was learned reading it.
type Document struct {
	Name      string  `json:"name"`
	Format    Format  `json:"format"`
	Backend   Backend `json:"backend"`
	Pages     int     `json:"pages"`
	Size      int64   `json:"size"`
	Version   string  `json:"version,omitempty"`
	Truncated bool    `json:"truncated,omitempty"`
	Content   string  `json:"content"`
}

// Reader turns documents into text. PDFs go through the configured
// extraction backend; everything else is read as UTF-8 text.
type Reader struct {
	maxFileSize int64
	maxTextSize int
	extractor   Extractor
	validator   *Validator
	log         zerolog.Logger
}

// ReaderOption customizes a Reader.
type ReaderOption func(*Reader)

// WithLogger sets the logger used for per-document diagnostics.
func WithLogger(l zerolog.Logger) ReaderOption {
	return func(r *Reader) { r.log = l }
}

// WithMaxTextSize overrides DefaultMaxTextSize.
func WithMaxTextSize(n int) ReaderOption {
	return func(r *Reader) { r.maxTextSize = n }
}

// NewReader creates a reader with the given file size limit and backend.
func NewReader(maxFileSize int64, backend Backend, opts ...ReaderOption) (*Reader, error) {
	ex, err := NewExtractor(backend)
	if err != nil {
		return nil, err
	}
	r := &Reader{
		maxFileSize: maxFileSize,
		maxTextSize: DefaultMaxTextSize,
		extractor:   ex,
		validator:   NewValidator(maxFileSize),
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Backend reports the PDF backend in use.
func (r *Reader) Backend() Backend {
	return r.extractor.Backend()
}

// ReadFile extracts the text of the document at path.
func (r *Reader) ReadFile(ctx context.Context, path string) (*Document, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if err := r.validator.ValidateFileInfo(path, fileInfo); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return r.Read(ctx, path, data)
}

// Read extracts the text of an in-memory document. name is used for format
// detection and messages only.
func (r *Reader) Read(ctx context.Context, name string, data []byte) (*Document, error) {
	if err := r.validator.ValidateSize(name, int64(len(data))); err != nil {
		return nil, err
	}

	doc := &Document{Name: name, Size: int64(len(data))}
	var err error
	switch DetectFormat(name, data) {
	case FormatPDF:
		err = r.readPDF(ctx, doc, data)
	default:
		err = r.readText(doc, data)
	}
	if err != nil {
		return nil, err
	}

	r.log.Debug().
		Str("name", name).
		Str("format", string(doc.Format)).
		Int("pages", doc.Pages).
		Int("chars", len(doc.Content)).
		Bool("truncated", doc.Truncated).
		Msg("document extracted")
	return doc, nil
}

// DetectFormat treats input as PDF when it carries the PDF header or a .pdf
// extension, and as plain text otherwise.
func DetectFormat(name string, data []byte) Format {
	if bytes.HasPrefix(data, []byte("%PDF-")) || strings.EqualFold(filepath.Ext(name), ".pdf") {
		return FormatPDF
	}
	return FormatText
}

func (r *Reader) readPDF(ctx context.Context, doc *Document, data []byte) error {
	doc.Format = FormatPDF
	doc.Backend = r.extractor.Backend()

	rs := bytes.NewReader(data)
	info, err := r.validator.Inspect(rs)
	if err != nil {
		return err
	}
	doc.Version = info.Version

	buf := newTextBuffer(r.maxTextSize)
	pages, err := r.extractor.Pages(ctx, rs, rs.Size(), func(_ int, text string) error {
		return buf.writePage(text)
	})
	if err != nil && !errors.Is(err, errTextLimit) {
		return err
	}
	doc.Pages = pages
	doc.Truncated = buf.truncated

	doc.Content = buf.String()
	if strings.TrimSpace(doc.Content) == "" {
		return &ExtractError{Backend: doc.Backend, Op: "extract", Err: ErrNoText}
	}
	return nil
}

func (r *Reader) readText(doc *Document, data []byte) error {
	doc.Format = FormatText
	doc.Backend = BackendText
	doc.Pages = 1

	if !utf8.Valid(data) {
		return &ExtractError{Backend: BackendText, Op: "decode", Err: ErrNotDocument}
	}

	buf := newTextBuffer(r.maxTextSize)
	_ = buf.write(string(data))
	doc.Truncated = buf.truncated
	doc.Content = buf.String()
	return nil
}

var errTextLimit = errors.New("text limit reached")

// textBuffer accumulates NFC-normalized page text up to a byte limit.
type textBuffer struct {
	b         strings.Builder
	limit     int
	truncated bool
}

func newTextBuffer(limit int) *textBuffer {
	return &textBuffer{limit: limit}
}

// writePage appends one page terminated by a newline.
func (t *textBuffer) writePage(text string) error {
	text = strings.TrimRight(text, "\n")
	return t.write(text + "\n")
}

func (t *textBuffer) write(s string) error {
	if t.truncated {
		return errTextLimit
	}
	s = norm.NFC.String(s)
	if t.limit > 0 && t.b.Len()+len(s) > t.limit {
		remaining := t.limit - t.b.Len()
		for remaining > 0 && !utf8.RuneStart(s[remaining]) {
			remaining--
		}
		t.b.WriteString(s[:remaining])
		t.truncated = true
		return errTextLimit
	}
	t.b.WriteString(s)
	return nil
}

func (t *textBuffer) String() string {
	return t.b.String()
}

// ReadStream reads an upload or other stream, refusing more than the file size
// limit before any extraction starts.
func (r *Reader) ReadStream(ctx context.Context, name string, src io.Reader) (*Document, error) {
	if r.maxFileSize <= 0 {
		data, err := io.ReadAll(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return r.Read(ctx, name, data)
	}

	data, err := io.ReadAll(io.LimitReader(src, r.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if int64(len(data)) > r.maxFileSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, r.maxFileSize)
	}
	return r.Read(ctx, name, data)
}
