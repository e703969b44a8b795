package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/a3tai/contract-diff/internal/compare"
	"github.com/a3tai/contract-diff/internal/config"
	"github.com/a3tai/contract-diff/internal/contract"
	"github.com/a3tai/contract-diff/internal/diff"
	"github.com/a3tai/contract-diff/internal/mcp"
	"github.com/a3tai/contract-diff/internal/pdf"
	"github.com/a3tai/contract-diff/internal/report"
	"github.com/a3tai/contract-diff/internal/web"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// Exit codes
const (
	exitOK           = 0
	exitConfig       = 1
	exitInputMissing = 2
	exitFailed       = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return exitConfig
	}

	if version != "dev" {
		cfg.Version = version
	}

	log := cfg.NewLogger(os.Stderr)
	log.Debug().Str("config", cfg.String()).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parser, err := loadParser(cfg.RulesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load rules: %v\n", err)
		return exitConfig
	}

	reader, err := pdf.NewReader(cfg.MaxFileSize, pdf.Backend(cfg.Backend), pdf.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create reader: %v\n", err)
		return exitConfig
	}

	if cfg.IsCLIMode() {
		return runCLI(ctx, cfg, compare.NewService(reader, parser, log), os.Stdout, os.Stderr)
	}

	if err := serve(ctx, cfg, reader, parser, log); err != nil {
		log.Error().Err(err).Msg("server stopped")
		if cfg.IsStdioMode() && !cfg.IsDebug() {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		}
		return exitFailed
	}
	return exitOK
}

// loadParser returns the parser for a rules file, or the default parser.
func loadParser(path string) (*contract.Parser, error) {
	if path == "" {
		return contract.DefaultParser(), nil
	}
	rules, err := contract.LoadRules(path)
	if err != nil {
		return nil, err
	}
	return contract.NewParser(rules)
}

// runCLI compares --old with --new and writes the report to --output or
// stdout.
func runCLI(ctx context.Context, cfg *config.Config, svc *compare.Service, stdout, stderr io.Writer) int {
	var oldDoc, newDoc compare.Document
	if cfg.Old != "" {
		oldDoc = compare.FromPath(cfg.Old)
	}
	if cfg.New != "" {
		newDoc = compare.FromPath(cfg.New)
	}

	res, err := svc.Compare(ctx, compare.Request{
		Old:      oldDoc,
		New:      newDoc,
		Strategy: diff.Strategy(cfg.Strategy),
	})
	if errors.Is(err, compare.ErrInputMissing) {
		fmt.Fprintln(stderr, "Please select both contracts to compare (--old and --new).")
		return exitInputMissing
	}
	if err != nil {
		fmt.Fprintf(stderr, "An error occurred: %v\n", err)
		if cfg.IsDebug() {
			for _, line := range report.ErrorChain(err) {
				fmt.Fprintf(stderr, "  %s\n", line)
			}
		}
		return exitFailed
	}

	if err := writeReport(cfg, res, stdout); err != nil {
		fmt.Fprintf(stderr, "Failed to write report: %v\n", err)
		return exitFailed
	}
	return exitOK
}

func writeReport(cfg *config.Config, res *diff.Result, stdout io.Writer) error {
	format := report.Format(cfg.Format)
	if cfg.Output == "" {
		return report.Render(stdout, format, res)
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	if err := report.Render(f, format, res); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// serve runs the MCP server on stdio, or the web UI with the MCP SSE
// transport in server mode.
func serve(ctx context.Context, cfg *config.Config, reader *pdf.Reader, parser *contract.Parser, log zerolog.Logger) error {
	pdfService, err := pdf.NewService(reader, cfg.Directory)
	if err != nil {
		return err
	}
	compareService := compare.NewService(pdfService, parser, log)

	mcpServer, err := mcp.NewServer(cfg, pdfService, compareService, log)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if cfg.IsStdioMode() {
		return mcpServer.Run(ctx)
	}

	sse := mcpServer.NewSSEHandler("http://" + cfg.Address())
	return web.NewServer(cfg, compareService, sse, log).Run(ctx)
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "contract-diff\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
