package pdf

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPath    = errors.New("path cannot be empty")
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file too large")
	ErrNotDocument  = errors.New("not a PDF or text document")
	ErrNoText       = errors.New("no text content could be extracted")
)

// ExtractError reports a failure inside one extraction backend.
type ExtractError struct {
	Backend Backend `json:"backend"`
	Op      string  `json:"operation"`
	Err     error   `json:"error"`
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s backend error in %s: %v", e.Backend, e.Op, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}
