package diff

import (
	"fmt"
	"regexp"
	"strings"
)

var lineAmount = regexp.MustCompile(`US\$[0-9.,]+`)

// CompareLines compares two texts by position after trimming lines and
// dropping blank ones. Shifted content reports every following line.
func CompareLines(oldText, newText string) *Result {
	oldLines := trimmedLines(oldText)
	newLines := trimmedLines(newText)

	changes := []LineChange{}
	for i := 0; i < max(len(oldLines), len(newLines)); i++ {
		oldLine := at(oldLines, i)
		newLine := at(newLines, i)
		if oldLine == newLine {
			continue
		}

		change := "Line changed"
		oldAmt := lineAmount.FindString(oldLine)
		newAmt := lineAmount.FindString(newLine)
		if oldAmt != "" && newAmt != "" && oldAmt != newAmt {
			change = fmt.Sprintf("Amount changed from %s to %s", oldAmt, newAmt)
		}

		changes = append(changes, LineChange{
			Line:     i + 1,
			Label:    fmt.Sprintf("Line %d", i+1),
			OldValue: oldLine,
			NewValue: newLine,
			Change:   change,
		})
	}

	return &Result{
		Strategy:           StrategyLines,
		Summary:            fmt.Sprintf("Found %d changed lines.", len(changes)),
		SignificantChanges: []ChangeRecord{},
		MinorChanges:       []string{},
		BasicInformation:   []AspectComparison{},
		LineChanges:        changes,
	}
}

func trimmedLines(text string) []string {
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func at(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
