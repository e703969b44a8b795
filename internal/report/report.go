// Package report renders comparison results.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/a3tai/contract-diff/internal/diff"
)

// Format selects a renderer.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{FormatHTML, FormatText, FormatJSON, FormatYAML, FormatXLSX, FormatPDF}

// ParseFormat validates a format name, case-insensitively. An empty name
// selects FormatHTML; "txt" and "yml" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatHTML, nil
	case "txt":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	case FormatHTML, FormatText, FormatJSON, FormatYAML, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (must be one of: html, text, json, yaml, xlsx, pdf)", s)
	}
}

// Binary reports whether the format produces non-text output.
func (f Format) Binary() bool {
	return f == FormatXLSX || f == FormatPDF
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the usual file extension, with the dot.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatYAML:
		return ".yaml"
	default:
		return "." + string(f)
	}
}

// Render writes res to w in format f.
func Render(w io.Writer, f Format, res *diff.Result) error {
	switch f {
	case FormatHTML:
		return HTML(w, res)
	case FormatText:
		return Text(w, res)
	case FormatJSON:
		return JSON(w, res)
	case FormatYAML:
		return YAML(w, res)
	case FormatXLSX:
		return XLSX(w, res)
	case FormatPDF:
		return PDF(w, res)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// JSON writes the result as indented JSON.
func JSON(w io.Writer, res *diff.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// YAML writes the result as a YAML document.
func YAML(w io.Writer, res *diff.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
