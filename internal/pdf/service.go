package pdf

import (
	"context"
	"fmt"
	"io"

	"github.com/a3tai/contract-diff/internal/pdf/security"
)

// Service reads documents on behalf of remote callers. Every path is
// confined to the configured directory before it reaches the Reader.
type Service struct {
	reader        *Reader
	pathValidator *security.PathValidator
}

// NewService wraps reader with path confinement to configuredDirectory.
func NewService(reader *Reader, configuredDirectory string) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	return &Service{
		reader:        reader,
		pathValidator: pathValidator,
	}, nil
}

// ReadFile extracts a document inside the configured directory.
func (s *Service) ReadFile(ctx context.Context, path string) (*Document, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.reader.ReadFile(ctx, resolved)
}

// Read extracts an in-memory document.
func (s *Service) Read(ctx context.Context, name string, data []byte) (*Document, error) {
	return s.reader.Read(ctx, name, data)
}

// ReadStream extracts an uploaded document.
func (s *Service) ReadStream(ctx context.Context, name string, src io.Reader) (*Document, error) {
	return s.reader.ReadStream(ctx, name, src)
}

// PDFReadFile serves the pdf_read_file tool.
func (s *Service) PDFReadFile(ctx context.Context, req PDFReadFileRequest) (*PDFReadFileResult, error) {
	doc, err := s.ReadFile(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	return &PDFReadFileResult{
		Path:      doc.Name,
		Format:    doc.Format,
		Backend:   doc.Backend,
		Pages:     doc.Pages,
		Size:      doc.Size,
		Version:   doc.Version,
		Truncated: doc.Truncated,
		Content:   doc.Content,
	}, nil
}

// Directory returns the configured document directory.
func (s *Service) Directory() string {
	return s.pathValidator.Root()
}

// MaxFileSize returns the file size limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.reader.maxFileSize
}
