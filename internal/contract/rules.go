package contract

import (
	"fmt"
	"regexp"
	"strings"
)

// Rules is the line-recognition policy of the parser. Every heuristic the
// scanner applies is listed here so it can be inspected, tested and replaced
// from a rules file.
type Rules struct {
	// SectionLabels are section names recognized by prefix, e.g. "Free Trial"
	// matches "Free Trial: $0.00 USD".
	SectionLabels []string `yaml:"sectionLabels" json:"sectionLabels"`
	// SectionPattern is the structural fallback for section headers. The
	// section is named by the text before the first colon.
	SectionPattern string `yaml:"sectionPattern" json:"sectionPattern"`
	// RegionStart and RegionEnd are whole-line headers (case-insensitive)
	// bounding a payout groups region.
	RegionStart []string `yaml:"regionStart" json:"regionStart"`
	RegionEnd   []string `yaml:"regionEnd" json:"regionEnd"`
	// GroupStart lines open a new payout group inside a region.
	GroupStart []GroupStartRule `yaml:"groupStart" json:"groupStart"`
	// Attributes are condition labels recognized inside a region.
	Attributes []AttributeRule `yaml:"attributes" json:"attributes"`
	// Separators join an attribute label to its value ("Currency is USD").
	// A colon is always accepted.
	Separators []string `yaml:"separators" json:"separators"`
	// PayoutPatterns recognize the payout line that closes a group.
	PayoutPatterns []string `yaml:"payoutPatterns" json:"payoutPatterns"`
	// Aspects are scalar terms recognized by prefix, in comparison order.
	Aspects []Aspect `yaml:"aspects" json:"aspects"`
}

// GroupStartRule opens a group on lines matching Pattern. A non-empty
// Condition is stored as the group's Condition attribute.
type GroupStartRule struct {
	Pattern   string `yaml:"pattern" json:"pattern"`
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`
}

// AttributeRule maps a line label to a condition attribute.
type AttributeRule struct {
	Label     string    `yaml:"label" json:"label"`
	Attribute Attribute `yaml:"attribute" json:"attribute"`
}

// DefaultAspects is the comparison set for scalar aspects.
var DefaultAspects = []Aspect{
	AspectRegistration,
	AspectActionLocking,
	AspectInvoicing,
	AspectPayoutScheduling,
	AspectCreditPolicy,
	AspectReferralWindow,
}

// DefaultRules returns the canonical recognition policy.
func DefaultRules() Rules {
	return Rules{
		SectionLabels:  []string{"Free Trial", "Online Sale"},
		SectionPattern: `^[\w+\s.\-]+:.*\$[\d.]+`,
		RegionStart:    []string{"Payout Groups", "Default Payout"},
		RegionEnd:      []string{"Schedule", "Payout Restrictions"},
		GroupStart: []GroupStartRule{
			{Pattern: `^\d+$`},
			{Pattern: `^All Other$`, Condition: AllOther},
		},
		Attributes: []AttributeRule{
			{Label: "Customer Status", Attribute: AttrCustomerStatus},
			{Label: "Referral SharedId", Attribute: AttrReferralShared},
			{Label: "Item Category", Attribute: AttrItemCategory},
			{Label: "Currency", Attribute: AttrCurrency},
			{Label: "Item SKU", Attribute: AttrItemSKU},
			{Label: "Item Subtotal", Attribute: AttrItemSubtotal},
			{Label: "Customer Country/Region", Attribute: AttrCustomerCountry},
		},
		Separators: []string{"is", "are", "in", "equals"},
		PayoutPatterns: []string{
			`^US\$[\d,.]+`,
			`^\d+(\.\d+)?%`,
			`per order`,
			`sale amount`,
			`^none$`,
		},
		Aspects: append([]Aspect(nil), DefaultAspects...),
	}
}

type groupStartMatcher struct {
	re        *regexp.Regexp
	condition string
}

type attributeMatcher struct {
	re        *regexp.Regexp
	attribute Attribute
}

// matcher is the compiled form of Rules.
type matcher struct {
	rules          Rules
	sectionPattern *regexp.Regexp
	groupStarts    []groupStartMatcher
	attributes     []attributeMatcher
	payouts        []*regexp.Regexp
}

func compileRules(rules Rules) (*matcher, error) {
	m := &matcher{rules: rules}

	if rules.SectionPattern != "" {
		re, err := regexp.Compile(rules.SectionPattern)
		if err != nil {
			return nil, fmt.Errorf("section pattern: %w", err)
		}
		m.sectionPattern = re
	}

	for i, g := range rules.GroupStart {
		re, err := regexp.Compile(g.Pattern)
		if err != nil {
			return nil, fmt.Errorf("group start %d: %w", i, err)
		}
		m.groupStarts = append(m.groupStarts, groupStartMatcher{re: re, condition: g.Condition})
	}

	seps := make([]string, 0, len(rules.Separators))
	for _, s := range rules.Separators {
		if s = strings.TrimSpace(s); s != "" {
			seps = append(seps, regexp.QuoteMeta(s))
		}
	}
	sepExpr := `\s*:\s*`
	if len(seps) > 0 {
		sepExpr = `(?:\s+(?:` + strings.Join(seps, "|") + `)\s+|\s*:\s*)`
	}
	for _, a := range rules.Attributes {
		if a.Label == "" {
			return nil, fmt.Errorf("attribute rule with empty label")
		}
		attr := a.Attribute
		if attr == "" {
			attr = Attribute(a.Label)
		}
		re, err := regexp.Compile(`^` + regexp.QuoteMeta(a.Label) + sepExpr + `(.+)$`)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Label, err)
		}
		m.attributes = append(m.attributes, attributeMatcher{re: re, attribute: attr})
	}

	for i, p := range rules.PayoutPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("payout pattern %d: %w", i, err)
		}
		m.payouts = append(m.payouts, re)
	}

	return m, nil
}

func (m *matcher) isRegionStart(line string) bool {
	return equalFoldAny(line, m.rules.RegionStart)
}

func (m *matcher) isRegionEnd(line string) bool {
	return equalFoldAny(line, m.rules.RegionEnd)
}

// groupStart reports whether line opens a group and the condition it implies.
func (m *matcher) groupStart(line string) (string, bool) {
	for _, g := range m.groupStarts {
		if g.re.MatchString(line) {
			return g.condition, true
		}
	}
	return "", false
}

func (m *matcher) attribute(line string) (Attribute, string, bool) {
	for _, a := range m.attributes {
		if sub := a.re.FindStringSubmatch(line); sub != nil {
			return a.attribute, strings.TrimSpace(sub[1]), true
		}
	}
	return "", "", false
}

func (m *matcher) isPayout(line string) bool {
	for _, re := range m.payouts {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// knownSection matches a configured section label followed by a colon.
func (m *matcher) knownSection(line string) (string, bool) {
	for _, label := range m.rules.SectionLabels {
		if strings.HasPrefix(line, label+":") {
			return label, true
		}
	}
	return "", false
}

// structuralSection matches a "<name>: ... $<amount>" header.
func (m *matcher) structuralSection(line string) (string, bool) {
	if m.sectionPattern == nil || !m.sectionPattern.MatchString(line) {
		return "", false
	}
	name, _, _ := strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	return name, name != ""
}

// aspect matches an aspect label prefix and returns the rest of the line.
func (m *matcher) aspect(line string) (Aspect, string, bool) {
	for _, a := range m.rules.Aspects {
		if strings.HasPrefix(line, string(a)) {
			return a, line[len(a):], true
		}
	}
	return "", "", false
}

// isStructural reports whether line is a header the scanner acts on in any
// state. Such lines are never consumed as an aspect value.
func (m *matcher) isStructural(line string) bool {
	if m.isRegionStart(line) || m.isRegionEnd(line) {
		return true
	}
	if _, ok := m.knownSection(line); ok {
		return true
	}
	if _, _, ok := m.aspect(line); ok {
		return true
	}
	_, ok := m.structuralSection(line)
	return ok
}

func equalFoldAny(line string, candidates []string) bool {
	for _, c := range candidates {
		if strings.EqualFold(line, c) {
			return true
		}
	}
	return false
}
