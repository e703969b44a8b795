package report

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/a3tai/contract-diff/internal/diff"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))

// HTML writes the result as an HTML fragment.
func HTML(w io.Writer, res *diff.Result) error {
	name := "structured"
	if res.Strategy == diff.StrategyLines {
		name = "lines"
	}
	return templates.ExecuteTemplate(w, name, res)
}

// Fragment renders the HTML fragment of res for embedding in a page.
func Fragment(res *diff.Result) (template.HTML, error) {
	var b strings.Builder
	if err := HTML(&b, res); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil //nolint:gosec // output of html/template
}

type errorView struct {
	Message string
	Trace   []string
}

// RenderError writes err as the inline error message of the HTML report.
// With trace set, every wrapped cause is listed below the message.
func RenderError(w io.Writer, err error, trace bool) error {
	view := errorView{Message: err.Error()}
	if trace {
		view.Trace = ErrorChain(err)
	}
	return templates.ExecuteTemplate(w, "error", view)
}

// ErrorFragment is RenderError for embedding in a page.
func ErrorFragment(err error, trace bool) template.HTML {
	var b strings.Builder
	if rerr := RenderError(&b, err, trace); rerr != nil {
		return template.HTML(template.HTMLEscapeString(err.Error())) //nolint:gosec // escaped above
	}
	return template.HTML(b.String()) //nolint:gosec // output of html/template
}

// NoticeFragment renders a one-line message in place of a report.
func NoticeFragment(msg string) template.HTML {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, "notice", msg); err != nil {
		return template.HTML(template.HTMLEscapeString(msg)) //nolint:gosec // escaped above
	}
	return template.HTML(b.String()) //nolint:gosec // output of html/template
}

// ErrorChain lists err and every error it wraps, one "%T: %v" entry each.
func ErrorChain(err error) []string {
	var chain []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, fmt.Sprintf("%T: %v", e, e))
	}
	return chain
}
