// Package compare runs a full comparison: both documents are extracted in
// parallel, parsed into contract records and diffed.
package compare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/a3tai/contract-diff/internal/contract"
	"github.com/a3tai/contract-diff/internal/diff"
	"github.com/a3tai/contract-diff/internal/pdf"
)

// ErrInputMissing is returned when either document was not supplied.
var ErrInputMissing = errors.New("please select both contracts to compare")

// Side names which document of a comparison an error belongs to.
type Side string

const (
	SideOld Side = "old"
	SideNew Side = "new"
)

// ExtractionError reports that one document could not be turned into text.
// No partial result accompanies it.
type ExtractionError struct {
	Side Side
	Name string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Side == "" {
		return fmt.Sprintf("failed to extract %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("failed to extract %s contract %s: %v", e.Side, e.Name, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// DocumentReader turns a path or in-memory document into text.
type DocumentReader interface {
	ReadFile(ctx context.Context, path string) (*pdf.Document, error)
	Read(ctx context.Context, name string, data []byte) (*pdf.Document, error)
	ReadStream(ctx context.Context, name string, src io.Reader) (*pdf.Document, error)
}

// Document is one comparison input, given as a path, as bytes or as a
// stream such as an upload.
type Document struct {
	Name   string
	Path   string
	Data   []byte
	Stream io.Reader
}

// FromPath references a document on disk.
func FromPath(path string) Document {
	return Document{Name: path, Path: path}
}

// FromBytes wraps an upload or other in-memory document.
func FromBytes(name string, data []byte) Document {
	return Document{Name: name, Data: data}
}

// FromStream wraps an upload that is read during extraction.
func FromStream(name string, src io.Reader) Document {
	return Document{Name: name, Stream: src}
}

// FromText wraps inline contract text.
func FromText(name, text string) Document {
	return Document{Name: name, Data: []byte(text)}
}

// IsEmpty reports whether the document was not supplied.
func (d Document) IsEmpty() bool {
	return d.Path == "" && len(d.Data) == 0 && d.Stream == nil
}

// Request describes one comparison.
type Request struct {
	Old      Document
	New      Document
	Strategy diff.Strategy
}

// Service runs comparisons.
type Service struct {
	reader DocumentReader
	parser *contract.Parser
	engine *diff.Engine
	log    zerolog.Logger
}

// NewService builds a service. A nil parser selects the default rules.
func NewService(reader DocumentReader, parser *contract.Parser, log zerolog.Logger) *Service {
	if parser == nil {
		parser = contract.DefaultParser()
	}
	return &Service{
		reader: reader,
		parser: parser,
		engine: diff.NewEngine(parser.Rules().Aspects),
		log:    log,
	}
}

// Compare extracts both documents concurrently and diffs them with the
// requested strategy. The first extraction failure cancels the other one.
func (s *Service) Compare(ctx context.Context, req Request) (*diff.Result, error) {
	if req.Old.IsEmpty() || req.New.IsEmpty() {
		return nil, ErrInputMissing
	}

	strategy, err := diff.ParseStrategy(string(req.Strategy))
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := s.log.With().Str("run_id", id).Logger()
	start := time.Now()

	var oldDoc, newDoc *pdf.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		oldDoc, err = s.extract(gctx, SideOld, req.Old)
		return err
	})
	g.Go(func() error {
		var err error
		newDoc, err = s.extract(gctx, SideNew, req.New)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("extraction failed")
		return nil, err
	}

	var res *diff.Result
	switch strategy {
	case diff.StrategyLines:
		res = diff.CompareLines(oldDoc.Content, newDoc.Content)
	default:
		res = s.engine.Compare(s.parser.Parse(oldDoc.Content), s.parser.Parse(newDoc.Content))
	}
	res.ID = id

	log.Info().
		Str("strategy", string(strategy)).
		Int("old_chars", len(oldDoc.Content)).
		Int("new_chars", len(newDoc.Content)).
		Int("payout_changes", len(res.SignificantChanges)).
		Int("aspect_changes", len(res.MinorChanges)).
		Int("line_changes", len(res.LineChanges)).
		Dur("elapsed", time.Since(start)).
		Msg("comparison complete")
	return res, nil
}

// Parse extracts and parses a single document.
func (s *Service) Parse(ctx context.Context, doc Document) (*contract.Record, *pdf.Document, error) {
	if doc.IsEmpty() {
		return nil, nil, ErrInputMissing
	}
	text, err := s.extract(ctx, "", doc)
	if err != nil {
		return nil, nil, err
	}
	return s.parser.Parse(text.Content), text, nil
}

func (s *Service) extract(ctx context.Context, side Side, doc Document) (*pdf.Document, error) {
	var (
		text *pdf.Document
		err  error
	)
	switch {
	case doc.Path != "":
		text, err = s.reader.ReadFile(ctx, doc.Path)
	case doc.Stream != nil:
		text, err = s.reader.ReadStream(ctx, doc.Name, doc.Stream)
	default:
		text, err = s.reader.Read(ctx, doc.Name, doc.Data)
	}
	if err != nil {
		return nil, &ExtractionError{Side: side, Name: doc.Name, Err: err}
	}
	return text, nil
}
