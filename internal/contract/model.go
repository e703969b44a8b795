package contract

import (
	"slices"
	"sort"
	"strings"
)

// Aspect names a scalar contract term that carries one value per document.
type Aspect string

// Aspects compared between document versions, in report order.
const (
	AspectRegistration      Aspect = "Registration"
	AspectActionLocking     Aspect = "Action Locking"
	AspectInvoicing         Aspect = "Invoicing"
	AspectPayoutScheduling  Aspect = "Payout Scheduling"
	AspectCreditPolicy      Aspect = "Credit Policy"
	AspectReferralWindow    Aspect = "Referral Window"
	AspectQualifiedReferral Aspect = "Qualified Referrals"
)

// Attribute names a payout group condition.
type Attribute string

// Condition attributes in GroupKey order.
const (
	AttrItemSKU         Attribute = "Item SKU"
	AttrItemSubtotal    Attribute = "Item Subtotal"
	AttrReferralShared  Attribute = "Referral SharedId"
	AttrCustomerCountry Attribute = "Customer Country/Region"
	AttrCustomerStatus  Attribute = "Customer Status"
	AttrItemCategory    Attribute = "Item Category"
	AttrCurrency        Attribute = "Currency"
	AttrCondition       Attribute = "Condition"
)

// KeyAttributes is the fixed order in which attribute values form a GroupKey.
var KeyAttributes = []Attribute{
	AttrItemSKU,
	AttrItemSubtotal,
	AttrReferralShared,
	AttrCustomerCountry,
	AttrCustomerStatus,
	AttrItemCategory,
	AttrCurrency,
	AttrCondition,
}

// AllOther is the literal condition value of a catch-all payout group.
const AllOther = "All Other"

// DefaultSection holds payout groups seen before any section header.
const DefaultSection = "General"

// GroupKey identifies a payout condition across document versions.
type GroupKey string

// Label renders the key for display.
func (k GroupKey) Label() string {
	if k == "" {
		return "Default"
	}
	return strings.ReplaceAll(string(k), "|", ", ")
}

// PayoutGroup pairs a set of eligibility conditions with one payout expression.
type PayoutGroup struct {
	Conditions map[Attribute]string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Payout     string               `json:"payout" yaml:"payout"`
}

// Condition returns the value of attr and whether it is set.
func (g PayoutGroup) Condition(attr Attribute) (string, bool) {
	v, ok := g.Conditions[attr]
	return v, ok && v != ""
}

// Key derives the GroupKey from the condition attributes. Payout does not
// participate, so two versions of the same condition share a key. Attributes
// outside KeyAttributes (from a rules file) follow in name order.
func (g PayoutGroup) Key() GroupKey {
	parts := make([]string, 0, len(g.Conditions))
	for _, attr := range KeyAttributes {
		if v, ok := g.Condition(attr); ok {
			parts = append(parts, v)
		}
	}
	var extra []string
	for attr, v := range g.Conditions {
		if v != "" && !slices.Contains(KeyAttributes, attr) {
			extra = append(extra, string(attr))
		}
	}
	sort.Strings(extra)
	for _, attr := range extra {
		parts = append(parts, g.Conditions[Attribute(attr)])
	}
	return GroupKey(strings.Join(parts, "|"))
}

// IsEmpty reports whether the group carries no data at all.
func (g PayoutGroup) IsEmpty() bool {
	return len(g.Conditions) == 0 && g.Payout == ""
}

func (g *PayoutGroup) set(attr Attribute, value string) {
	if g.Conditions == nil {
		g.Conditions = make(map[Attribute]string)
	}
	g.Conditions[attr] = value
}

// Section is a named block of payout groups, e.g. "Free Trial".
type Section struct {
	Name   string        `json:"name" yaml:"name"`
	Groups []PayoutGroup `json:"groups" yaml:"groups"`
}

// Record is the structured form of one contract document.
type Record struct {
	Aspects  map[Aspect]string `json:"aspects" yaml:"aspects"`
	Sections []*Section        `json:"sections" yaml:"sections"`
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{Aspects: make(map[Aspect]string)}
}

// Aspect returns the value of a and whether the document stated it.
func (r *Record) Aspect(a Aspect) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.Aspects[a]
	return v, ok
}

// Section looks up a section by name.
func (r *Record) Section(name string) (*Section, bool) {
	if r == nil {
		return nil, false
	}
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// SectionNames lists sections in document order.
func (r *Record) SectionNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.Sections))
	for _, s := range r.Sections {
		names = append(names, s.Name)
	}
	return names
}

// Groups returns the payout groups of the named section, or nil.
func (r *Record) Groups(section string) []PayoutGroup {
	if s, ok := r.Section(section); ok {
		return s.Groups
	}
	return nil
}

// IsEmpty reports whether nothing was recognized in the document.
func (r *Record) IsEmpty() bool {
	if r == nil {
		return true
	}
	if len(r.Aspects) > 0 {
		return false
	}
	for _, s := range r.Sections {
		if len(s.Groups) > 0 {
			return false
		}
	}
	return true
}

// section returns the named section, creating it at the end if needed.
func (r *Record) section(name string) *Section {
	if s, ok := r.Section(name); ok {
		return s
	}
	s := &Section{Name: name}
	r.Sections = append(r.Sections, s)
	return s
}
