package diff

import (
	"fmt"

	"github.com/a3tai/contract-diff/internal/contract"
)

// Strategy selects how two documents are compared.
type Strategy string

const (
	// StrategyStructured parses both documents and matches payout groups.
	StrategyStructured Strategy = "structured"
	// StrategyLines compares trimmed lines by position.
	StrategyLines Strategy = "lines"
)

// ParseStrategy validates a strategy name. An empty name selects
// StrategyStructured.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyStructured:
		return StrategyStructured, nil
	case StrategyLines:
		return StrategyLines, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (must be one of: structured, lines)", s)
	}
}

// Status of a scalar aspect between versions.
type Status string

const (
	StatusChanged   Status = "Changed"
	StatusUnchanged Status = "No change"
)

// Delta is the signed difference between two USD payouts, in cents.
type Delta struct {
	Cents int64 `json:"cents" yaml:"cents"`
}

// String renders the delta as "+$8.00 change" or "-$8.00 change".
func (d Delta) String() string {
	sign := "+"
	c := d.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%d.%02d change", sign, c/100, c%100)
}

// ChangeRecord is one payout difference for a matched condition.
type ChangeRecord struct {
	Section   string            `json:"section" yaml:"section"`
	Key       contract.GroupKey `json:"key" yaml:"key"`
	Condition string            `json:"condition" yaml:"condition"`
	OldValue  string            `json:"old_value" yaml:"old_value"`
	NewValue  string            `json:"new_value" yaml:"new_value"`
	Change    string            `json:"change" yaml:"change"`
	Delta     *Delta            `json:"delta,omitempty" yaml:"delta,omitempty"`
}

// AspectComparison is the before/after of one scalar aspect.
type AspectComparison struct {
	Aspect   contract.Aspect `json:"aspect" yaml:"aspect"`
	OldValue string          `json:"old_value" yaml:"old_value"`
	NewValue string          `json:"new_value" yaml:"new_value"`
	Status   Status          `json:"status" yaml:"status"`
}

// Changed reports whether the aspect differs between versions.
func (a AspectComparison) Changed() bool {
	return a.Status == StatusChanged
}

// LineChange is one differing line of the line-by-line strategy.
type LineChange struct {
	Line     int    `json:"line" yaml:"line"`
	Label    string `json:"label" yaml:"label"`
	OldValue string `json:"old_value" yaml:"old_value"`
	NewValue string `json:"new_value" yaml:"new_value"`
	Change   string `json:"change" yaml:"change"`
}

// Result is the outcome of one comparison.
type Result struct {
	ID                 string             `json:"id,omitempty" yaml:"id,omitempty"`
	Strategy           Strategy           `json:"strategy" yaml:"strategy"`
	Summary            string             `json:"summary" yaml:"summary"`
	SignificantChanges []ChangeRecord     `json:"significant_changes" yaml:"significant_changes"`
	MinorChanges       []string           `json:"minor_changes" yaml:"minor_changes"`
	BasicInformation   []AspectComparison `json:"basic_information" yaml:"basic_information"`
	LineChanges        []LineChange       `json:"line_changes,omitempty" yaml:"line_changes,omitempty"`
}

// ChangedAspects returns the basic-information rows marked Changed.
func (r *Result) ChangedAspects() []AspectComparison {
	var out []AspectComparison
	for _, a := range r.BasicInformation {
		if a.Changed() {
			out = append(out, a)
		}
	}
	return out
}
