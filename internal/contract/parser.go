package contract

import (
	"strings"
)

// Parser converts linearized contract text into a Record. The zero value is
// not usable; build one with NewParser.
type Parser struct {
	m *matcher
}

// NewParser compiles rules into a parser.
func NewParser(rules Rules) (*Parser, error) {
	m, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Parser{m: m}, nil
}

var defaultParser = mustParser(DefaultRules())

func mustParser(rules Rules) *Parser {
	p, err := NewParser(rules)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultParser returns the parser for DefaultRules.
func DefaultParser() *Parser {
	return defaultParser
}

// Parse parses text with the default rules.
func Parse(text string) *Record {
	return defaultParser.Parse(text)
}

// Rules returns the policy the parser was built from.
func (p *Parser) Rules() Rules {
	return p.m.rules
}

// Parse scans text line by line. Lines that match no rule are ignored, so
// Parse never fails; unrecognized input yields an empty record.
func (p *Parser) Parse(text string) *Record {
	s := &scanner{
		m:      p.m,
		lines:  splitLines(text),
		record: NewRecord(),
	}
	for s.pos < len(s.lines) {
		line := s.lines[s.pos]
		s.pos++
		s.step(line)
	}
	s.flushGroup()
	return s.record
}

type scanState int

const (
	stateOutside scanState = iota
	stateInSection
	stateInPayoutGroups
)

// scanner holds everything a single Parse call mutates.
type scanner struct {
	m      *matcher
	lines  []string
	pos    int
	state  scanState
	record *Record
	// section is the section groups are appended to; nil until a header is seen.
	section *Section
	// group is the in-progress payout group.
	group PayoutGroup
}

func (s *scanner) step(line string) {
	switch {
	case s.m.isRegionStart(line):
		s.flushGroup()
		s.state = stateInPayoutGroups
		return
	case s.m.isRegionEnd(line):
		s.closeRegion()
		return
	}

	if name, ok := s.m.knownSection(line); ok {
		s.openSection(name)
		return
	}

	if s.state == stateInPayoutGroups && s.stepRegion(line) {
		return
	}

	if a, rest, ok := s.m.aspect(line); ok {
		s.setAspect(a, rest)
		return
	}
	if name, ok := s.m.structuralSection(line); ok {
		s.openSection(name)
	}
}

// stepRegion handles a line inside a payout groups region and reports
// whether it was consumed.
func (s *scanner) stepRegion(line string) bool {
	if cond, ok := s.m.groupStart(line); ok {
		s.flushGroup()
		if cond != "" {
			s.group.set(AttrCondition, cond)
		}
		return true
	}
	if attr, value, ok := s.m.attribute(line); ok {
		s.group.set(attr, value)
		return true
	}
	if _, ok := s.m.structuralSection(line); ok {
		return false
	}
	if s.m.isPayout(line) {
		s.group.Payout = line
		s.flushGroup()
		return true
	}
	return false
}

func (s *scanner) openSection(name string) {
	s.flushGroup()
	s.section = s.record.section(name)
	s.state = stateInSection
}

func (s *scanner) closeRegion() {
	s.flushGroup()
	if s.section != nil {
		s.state = stateInSection
	} else {
		s.state = stateOutside
	}
}

// setAspect stores an aspect value. The value follows a colon on the same
// line, or the trailing text when there is no colon, or else the next line
// unless that line is itself a header.
func (s *scanner) setAspect(a Aspect, rest string) {
	var value string
	if _, after, found := strings.Cut(rest, ":"); found {
		value = strings.TrimSpace(after)
	} else {
		value = strings.TrimSpace(rest)
	}
	if value == "" && s.pos < len(s.lines) && !s.isStructural(s.lines[s.pos]) {
		value = s.lines[s.pos]
		s.pos++
	}
	if value != "" {
		s.record.Aspects[a] = value
	}
}

// isStructural extends matcher.isStructural with the group lines of an open
// payout region.
func (s *scanner) isStructural(line string) bool {
	if s.m.isStructural(line) {
		return true
	}
	if s.state != stateInPayoutGroups {
		return false
	}
	if _, ok := s.m.groupStart(line); ok {
		return true
	}
	if _, _, ok := s.m.attribute(line); ok {
		return true
	}
	return s.m.isPayout(line)
}

// flushGroup appends the in-progress group, if any, to the current section.
func (s *scanner) flushGroup() {
	if s.group.IsEmpty() {
		s.group = PayoutGroup{}
		return
	}
	if s.section == nil {
		s.section = s.record.section(DefaultSection)
	}
	s.section.Groups = append(s.section.Groups, s.group)
	s.group = PayoutGroup{}
}

// splitLines returns trimmed, non-empty lines with inner whitespace runs
// collapsed to one space.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
