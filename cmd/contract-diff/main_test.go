package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/a3tai/contract-diff/internal/compare"
	"github.com/a3tai/contract-diff/internal/config"
	"github.com/a3tai/contract-diff/internal/pdf"
)

const testVersion = "1.2.3"

func fixturePath(name string) string {
	return filepath.Join("..", "..", "internal", "contract", "testdata", name)
}

func testService(t *testing.T) *compare.Service {
	t.Helper()
	reader, err := pdf.NewReader(config.DefaultMaxFileSize, pdf.BackendLedongthuc)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	return compare.NewService(reader, nil, zerolog.Nop())
}

func cliConfig(oldPath, newPath, format string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Old = oldPath
	cfg.New = newPath
	cfg.Format = format
	return cfg
}

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()
	version = testVersion
	buildTime = "2023-12-01_10:30:00"
	gitCommit = "abc123"

	var buf bytes.Buffer
	printVersion(&buf)
	output := buf.String()

	for _, expected := range []string{
		"contract-diff",
		"Version: " + testVersion,
		"Build Time: 2023-12-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
		}
	}
}

func TestRunCLI_TextReport(t *testing.T) {
	cfg := cliConfig(fixturePath("contract_v1.txt"), fixturePath("contract_v2.txt"), "text")

	var stdout, stderr bytes.Buffer
	if code := runCLI(context.Background(), cfg, testService(t), &stdout, &stderr); code != exitOK {
		t.Fatalf("runCLI() = %d, want %d (stderr: %s)", code, exitOK, stderr.String())
	}

	output := stdout.String()
	for _, expected := range []string{
		"Found 5 payout changes (matched by key conditions).",
		"(+$8.00 change)",
		"Registration: Required → Not required",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("report missing %q:\n%s", expected, output)
		}
	}
}

func TestRunCLI_OutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "diff.html")
	cfg := cliConfig(fixturePath("contract_v1.txt"), fixturePath("contract_v2.txt"), "html")
	cfg.Output = out

	var stdout, stderr bytes.Buffer
	if code := runCLI(context.Background(), cfg, testService(t), &stdout, &stderr); code != exitOK {
		t.Fatalf("runCLI() = %d, want %d (stderr: %s)", code, exitOK, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty when --output is set, got %q", stdout.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if !strings.Contains(string(data), `<table class="comparison-table significant-changes">`) {
		t.Errorf("unexpected report content:\n%s", data)
	}
}

func TestRunCLI_Errors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(broken, []byte("%PDF-1.4 garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		cfg        *config.Config
		debug      bool
		wantCode   int
		wantStderr []string
	}{
		{
			name:       "missing new contract",
			cfg:        cliConfig(fixturePath("contract_v1.txt"), "", "html"),
			wantCode:   exitInputMissing,
			wantStderr: []string{"Please select both contracts to compare"},
		},
		{
			name:       "missing file",
			cfg:        cliConfig(filepath.Join(dir, "nope.pdf"), fixturePath("contract_v2.txt"), "html"),
			wantCode:   exitFailed,
			wantStderr: []string{"An error occurred: failed to extract old contract", "file does not exist"},
		},
		{
			name:       "broken pdf with trace",
			cfg:        cliConfig(fixturePath("contract_v1.txt"), broken, "html"),
			debug:      true,
			wantCode:   exitFailed,
			wantStderr: []string{"failed to extract new contract", "  *compare.ExtractionError: ", "*pdf.ExtractError"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.debug {
				tt.cfg.LogLevel = "debug"
			}
			var stdout, stderr bytes.Buffer
			if code := runCLI(context.Background(), tt.cfg, testService(t), &stdout, &stderr); code != tt.wantCode {
				t.Errorf("runCLI() = %d, want %d", code, tt.wantCode)
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr missing %q:\n%s", want, stderr.String())
				}
			}
			if stdout.Len() != 0 {
				t.Errorf("no report should be written on error, got %q", stdout.String())
			}
		})
	}
}

func TestLoadParser(t *testing.T) {
	parser, err := loadParser("")
	if err != nil || parser == nil {
		t.Fatalf("loadParser(\"\") = %v, %v", parser, err)
	}

	if _, err := loadParser(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("loadParser() should fail for a missing rules file")
	}
}
