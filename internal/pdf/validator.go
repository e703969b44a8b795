package pdf

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Info is what structural validation learns about a PDF.
type Info struct {
	Pages   int    `json:"pages"`
	Version string `json:"version,omitempty"`
}

// Validator handles document validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new validator with the specified size limit
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFileInfo performs basic validation on file info without opening the file
func (v *Validator) ValidateFileInfo(path string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	return v.ValidateSize(path, fileInfo.Size())
}

// ValidateSize rejects empty and oversized input
func (v *Validator) ValidateSize(name string, size int64) error {
	if size == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}
	if v.maxFileSize > 0 && size > v.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, size, v.maxFileSize)
	}
	return nil
}

// Inspect parses the PDF structure in relaxed mode and returns its page count
// and header version.
func (v *Validator) Inspect(rs io.ReadSeeker) (*Info, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, &ExtractError{Backend: BackendPDFCPU, Op: "validate", Err: fmt.Errorf("invalid PDF file: %w", err)}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &ExtractError{Backend: BackendPDFCPU, Op: "validate", Err: fmt.Errorf("failed to ensure page count: %w", err)}
	}

	info := &Info{Pages: ctx.PageCount}
	if ctx.HeaderVersion != nil {
		info.Version = ctx.HeaderVersion.String()
	}
	return info, nil
}
