// Package web serves the upload form and HTML reports in server mode.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/a3tai/contract-diff/internal/compare"
	"github.com/a3tai/contract-diff/internal/config"
	"github.com/a3tai/contract-diff/internal/diff"
	"github.com/a3tai/contract-diff/internal/mcp"
	"github.com/a3tai/contract-diff/internal/pdf"
	"github.com/a3tai/contract-diff/internal/report"
)

// Upload form field names.
const (
	FieldOld      = "oldContract"
	FieldNew      = "newContract"
	FieldStrategy = "strategy"
	FieldFormat   = "format"
)

const shutdownTimeout = 10 * time.Second

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

type pageView struct {
	Strategy string
	Formats  []report.Format
	Results  template.HTML
}

// Server is the HTTP front door: upload form, comparison endpoint, health
// check and, when configured, the MCP SSE transport.
type Server struct {
	cfg     *config.Config
	compare *compare.Service
	sse     mcp.SSEHandler
	router  chi.Router
	log     zerolog.Logger
}

// NewServer builds the router. sse may be nil.
func NewServer(cfg *config.Config, compareService *compare.Service, sse mcp.SSEHandler, log zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		compare: compareService,
		sse:     sse,
		log:     log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Post("/compare", s.handleCompare)
	r.Get("/health", s.handleHealth)
	if sse != nil {
		r.Mount(mcp.BasePath, sse)
	}

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is canceled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if s.sse != nil {
		if err := s.sse.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("mcp sse shutdown")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, string(diff.StrategyStructured), "")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"name":    s.cfg.ServerName,
		"version": s.cfg.Version,
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	// Two files plus form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: upload exceeds %d bytes", pdf.ErrFileTooLarge, tooLarge.Limit)
			s.renderPage(w, http.StatusRequestEntityTooLarge, "", report.ErrorFragment(err, s.cfg.IsDebug()))
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			s.renderPage(w, http.StatusBadRequest, "", report.ErrorFragment(err, s.cfg.IsDebug()))
			return
		}
	}
	strategy := r.FormValue(FieldStrategy)

	format, err := report.ParseFormat(r.FormValue(FieldFormat))
	if err != nil {
		s.renderPage(w, http.StatusBadRequest, strategy, report.ErrorFragment(err, s.cfg.IsDebug()))
		return
	}

	oldDoc, closeOld := upload(r, FieldOld)
	defer closeOld()
	newDoc, closeNew := upload(r, FieldNew)
	defer closeNew()

	res, err := s.compare.Compare(r.Context(), compare.Request{
		Old:      oldDoc,
		New:      newDoc,
		Strategy: diff.Strategy(strategy),
	})
	switch {
	case errors.Is(err, compare.ErrInputMissing):
		s.renderPage(w, http.StatusBadRequest, strategy, report.NoticeFragment("Please select both contracts to compare."))
		return
	case err != nil:
		s.log.Warn().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("comparison failed")
		s.renderPage(w, http.StatusUnprocessableEntity, strategy, report.ErrorFragment(err, s.cfg.IsDebug()))
		return
	}

	if format != report.FormatHTML {
		s.writeDownload(w, format, res)
		return
	}

	fragment, err := report.Fragment(res)
	if err != nil {
		s.renderPage(w, http.StatusInternalServerError, strategy, report.ErrorFragment(err, s.cfg.IsDebug()))
		return
	}
	s.renderPage(w, http.StatusOK, strategy, fragment)
}

// upload returns the named multipart file as a stream document, or an empty
// document when no file was selected.
func upload(r *http.Request, field string) (compare.Document, func()) {
	if r.MultipartForm == nil {
		return compare.Document{}, func() {}
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return compare.Document{}, func() {}
	}
	return compare.FromStream(header.Filename, file), func() { _ = file.Close() }
}

func (s *Server) writeDownload(w http.ResponseWriter, format report.Format, res *diff.Result) {
	var buf bytes.Buffer
	if err := report.Render(&buf, format, res); err != nil {
		s.renderPage(w, http.StatusInternalServerError, "", report.ErrorFragment(err, s.cfg.IsDebug()))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="contract-diff-%s%s"`, res.ID, format.Extension()))
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, strategy string, results template.HTML) {
	if strategy == "" {
		strategy = string(diff.StrategyStructured)
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageView{
		Strategy: strategy,
		Formats:  report.Formats,
		Results:  results,
	}); err != nil {
		s.log.Error().Err(err).Msg("render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
