package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/a3tai/contract-diff/internal/compare"
	"github.com/a3tai/contract-diff/internal/config"
	"github.com/a3tai/contract-diff/internal/descriptions"
	"github.com/a3tai/contract-diff/internal/diff"
	"github.com/a3tai/contract-diff/internal/pdf"
	"github.com/a3tai/contract-diff/internal/report"
)

// BasePath is where the SSE transport is mounted in server mode.
const BasePath = "/mcp"

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	compare    *compare.Service
	mcpServer  *server.MCPServer
	log        zerolog.Logger
}

// NewServer creates a new MCP server instance. compareService should read
// through pdfService so tool paths stay inside the document directory.
func NewServer(cfg *config.Config, pdfService *pdf.Service, compareService *compare.Service, log zerolog.Logger) (*Server, error) {
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if compareService == nil {
		return nil, fmt.Errorf("compareService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		compare:    compareService,
		mcpServer:  mcpServer,
		log:        log,
	}

	s.registerTools()

	return s, nil
}

func (s *Server) registerTools() {
	compareTool := mcp.NewTool(
		descriptions.ToolContractCompare,
		mcp.WithDescription(descriptions.ContractCompareDescription),
		mcp.WithString("old",
			mcp.Description("Path of the old contract, relative to the document directory"),
		),
		mcp.WithString("new",
			mcp.Description("Path of the new contract, relative to the document directory"),
		),
		mcp.WithString("old_text",
			mcp.Description("Inline text of the old contract, used when 'old' is empty"),
		),
		mcp.WithString("new_text",
			mcp.Description("Inline text of the new contract, used when 'new' is empty"),
		),
		mcp.WithString("format",
			mcp.Description("Report format: html, text, json, yaml, xlsx or pdf"),
			mcp.Enum(formatNames()...),
		),
		mcp.WithString("strategy",
			mcp.Description("Comparison strategy: structured (default) or lines"),
			mcp.Enum(string(diff.StrategyStructured), string(diff.StrategyLines)),
		),
	)
	s.mcpServer.AddTool(compareTool, s.handleContractCompare)

	parseTool := mcp.NewTool(
		descriptions.ToolContractParse,
		mcp.WithDescription(descriptions.ContractParseDescription),
		mcp.WithString("path",
			mcp.Description("Path of the contract, relative to the document directory"),
		),
		mcp.WithString("text",
			mcp.Description("Inline contract text, used when 'path' is empty"),
		),
	)
	s.mcpServer.AddTool(parseTool, s.handleContractParse)

	readTool := mcp.NewTool(
		descriptions.ToolPDFReadFile,
		mcp.WithDescription(descriptions.PDFReadFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the PDF or text file"),
		),
	)
	s.mcpServer.AddTool(readTool, s.handlePDFReadFile)

	listTool := mcp.NewTool(
		descriptions.ToolContractList,
		mcp.WithDescription(descriptions.ContractListDescription),
		mcp.WithString("query",
			mcp.Description("Optional file name filter"),
		),
	)
	s.mcpServer.AddTool(listTool, s.handleContractList)
}

func formatNames() []string {
	names := make([]string, 0, len(report.Formats))
	for _, f := range report.Formats {
		names = append(names, string(f))
	}
	return names
}

// document picks the path argument, falling back to inline text.
func document(request mcp.CallToolRequest, pathKey, textKey, name string) compare.Document {
	if path := request.GetString(pathKey, ""); path != "" {
		return compare.FromPath(path)
	}
	if text := request.GetString(textKey, ""); text != "" {
		return compare.FromText(name, text)
	}
	return compare.Document{}
}

func (s *Server) handleContractCompare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := report.ParseFormat(request.GetString("format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.compare.Compare(ctx, compare.Request{
		Old:      document(request, "old", "old_text", "old.txt"),
		New:      document(request, "new", "new_text", "new.txt"),
		Strategy: diff.Strategy(request.GetString("strategy", "")),
	})
	if err != nil {
		if errors.Is(err, compare.ErrInputMissing) {
			return mcp.NewToolResultError("Please select both contracts to compare: give 'old' and 'new' paths or 'old_text' and 'new_text'"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("An error occurred: %v", err)), nil
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, format, res); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render report: %v", err)), nil
	}

	if format.Binary() {
		name := "contract-diff-" + res.ID + format.Extension()
		return mcp.NewToolResultResource(
			fmt.Sprintf("%s\nReport attached as %s (%d bytes)", res.Summary, name, buf.Len()),
			mcp.BlobResourceContents{
				URI:      "report://" + name,
				MIMEType: format.ContentType(),
				Blob:     base64.StdEncoding.EncodeToString(buf.Bytes()),
			},
		), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handleContractParse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc := document(request, "path", "text", "contract.txt")
	record, text, err := s.compare.Parse(ctx, doc)
	if err != nil {
		if errors.Is(err, compare.ErrInputMissing) {
			return mcp.NewToolResultError("either 'path' or 'text' is required"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode record: %v", err)), nil
	}

	responseText := fmt.Sprintf("Parsed contract: %s\n", text.Name)
	responseText += fmt.Sprintf("Sections: %d\n", len(record.Sections))
	responseText += fmt.Sprintf("Aspects: %d\n", len(record.Aspects))
	if record.IsEmpty() {
		responseText += "\nWARNING: no contract structure was recognized in this document.\n"
	}
	responseText += "\n" + string(out)

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFReadFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFReadFile(ctx, pdf.PDFReadFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Successfully read %s: %s\n", result.Format, result.Path)
	responseText += fmt.Sprintf("Pages: %d\n", result.Pages)
	responseText += fmt.Sprintf("Size: %d bytes\n", result.Size)
	if result.Version != "" {
		responseText += fmt.Sprintf("PDF Version: %s\n", result.Version)
	}
	if result.Backend != "" {
		responseText += fmt.Sprintf("Backend: %s\n", result.Backend)
	}
	if result.Truncated {
		responseText += "\nWARNING: text was truncated at the extraction limit.\n"
	}

	responseText += "\nContent:\n"
	responseText += result.Content

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleContractList(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ListContracts(request.GetString("query", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Found %d contract(s) in %s", result.TotalCount, result.Directory)
	if result.Query != "" {
		responseText += fmt.Sprintf(" matching '%s'", result.Query)
	}
	responseText += ":\n\n"
	for _, file := range result.Files {
		responseText += fmt.Sprintf("• %s (%d bytes, modified %s)\n", file.Path, file.Size, file.ModifiedTime)
	}

	return mcp.NewToolResultText(responseText), nil
}

// Run serves MCP over standard I/O until ctx is canceled or stdin closes.
// In server mode the transport is the SSE handler mounted by the web router.
func (s *Server) Run(ctx context.Context) error {
	if !s.config.IsStdioMode() {
		return fmt.Errorf("mode %q does not serve MCP over stdio", s.config.Mode)
	}
	s.log.Debug().Str("dir", s.pdfService.Directory()).Msg("starting MCP server on stdio")

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(stdlog.New(s.log, "", 0))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// SSEHandler is the MCP SSE transport rooted at BasePath.
type SSEHandler interface {
	http.Handler
	Shutdown(ctx context.Context) error
}

// NewSSEHandler returns the SSE transport for mounting under BasePath.
// baseURL is the externally visible origin, e.g. "http://127.0.0.1:8080".
func (s *Server) NewSSEHandler(baseURL string) SSEHandler {
	return server.NewSSEServer(s.mcpServer,
		server.WithBaseURL(baseURL),
		server.WithStaticBasePath(BasePath),
		server.WithKeepAlive(true),
	)
}
