package diff

import (
	"fmt"

	"github.com/a3tai/contract-diff/internal/contract"
)

// Engine compares two parsed contract records.
type Engine struct {
	aspects []contract.Aspect
}

// NewEngine returns an engine comparing the given aspects in order. A nil or
// empty list selects contract.DefaultAspects.
func NewEngine(aspects []contract.Aspect) *Engine {
	if len(aspects) == 0 {
		aspects = contract.DefaultAspects
	}
	return &Engine{aspects: append([]contract.Aspect(nil), aspects...)}
}

// Compare diffs two records with the default aspect set.
func Compare(oldRec, newRec *contract.Record) *Result {
	return NewEngine(nil).Compare(oldRec, newRec)
}

// Compare pairs payout groups by GroupKey within each section and compares
// scalar aspects. A nil record is treated as empty. Compare never fails:
// data present on one side only always yields a visible change.
func (e *Engine) Compare(oldRec, newRec *contract.Record) *Result {
	res := &Result{
		Strategy:           StrategyStructured,
		SignificantChanges: []ChangeRecord{},
		MinorChanges:       []string{},
		BasicInformation:   make([]AspectComparison, 0, len(e.aspects)),
	}

	for _, section := range union(oldRec.SectionNames(), newRec.SectionNames()) {
		res.SignificantChanges = append(res.SignificantChanges,
			compareSection(section, oldRec.Groups(section), newRec.Groups(section))...)
	}

	for _, a := range e.aspects {
		oldVal, _ := oldRec.Aspect(a)
		newVal, _ := newRec.Aspect(a)
		cmp := AspectComparison{Aspect: a, OldValue: oldVal, NewValue: newVal, Status: StatusUnchanged}
		if oldVal != newVal {
			cmp.Status = StatusChanged
			res.MinorChanges = append(res.MinorChanges, fmt.Sprintf("%s: %s → %s", a, oldVal, newVal))
		}
		res.BasicInformation = append(res.BasicInformation, cmp)
	}

	res.Summary = fmt.Sprintf("Found %d payout changes (matched by key conditions).", len(res.SignificantChanges))
	return res
}

func compareSection(section string, oldGroups, newGroups []contract.PayoutGroup) []ChangeRecord {
	oldByKey, oldKeys := indexGroups(oldGroups)
	newByKey, newKeys := indexGroups(newGroups)

	var changes []ChangeRecord
	for _, key := range union(oldKeys, newKeys) {
		oldPayout := oldByKey[key].Payout
		newPayout := newByKey[key].Payout
		if oldPayout == newPayout {
			continue
		}

		change := fmt.Sprintf("Changed from %s to %s", orNone(oldPayout), orNone(newPayout))
		delta := usdDelta(oldPayout, newPayout)
		if delta != nil {
			change += " (" + delta.String() + ")"
		}

		changes = append(changes, ChangeRecord{
			Section:   section,
			Key:       key,
			Condition: key.Label(),
			OldValue:  oldPayout,
			NewValue:  newPayout,
			Change:    change,
			Delta:     delta,
		})
	}
	return changes
}

// indexGroups maps each GroupKey to its group. A later group with the same
// key replaces an earlier one; key order is first appearance.
func indexGroups(groups []contract.PayoutGroup) (map[contract.GroupKey]contract.PayoutGroup, []contract.GroupKey) {
	byKey := make(map[contract.GroupKey]contract.PayoutGroup, len(groups))
	keys := make([]contract.GroupKey, 0, len(groups))
	for _, g := range groups {
		k := g.Key()
		if _, seen := byKey[k]; !seen {
			keys = append(keys, k)
		}
		byKey[k] = g
	}
	return byKey, keys
}

// union returns a's elements followed by those of b not in a.
func union[T comparable](a, b []T) []T {
	seen := make(map[T]struct{}, len(a)+len(b))
	out := make([]T, 0, len(a)+len(b))
	for _, list := range [][]T{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
