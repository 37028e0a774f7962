// Package pricing maps metered API paths to their per-call cost in cents.
package pricing

import "strings"

// DefaultCostCents is charged for any path without an explicit entry so that
// an unlisted endpoint is never free.
const DefaultCostCents int64 = 50

type Entry struct {
	Pattern   string
	CostCents int64
}

var DefaultEntries = []Entry{
	{Pattern: "/api/v1/niches", CostCents: 20},
	{Pattern: "/api/v1/niches/:code", CostCents: 50},
	{Pattern: "/api/v1/opportunities", CostCents: 30},
	{Pattern: "/api/v1/rankings", CostCents: 30},
	{Pattern: "/api/v1/categories", CostCents: 10},
}

type Table struct {
	entries     []compiledEntry
	defaultCost int64
}

type compiledEntry struct {
	pattern   string
	segments  []string
	literals  int
	costCents int64
}

func NewTable(entries []Entry, defaultCost int64) *Table {
	t := &Table{defaultCost: defaultCost}
	for _, e := range entries {
		segs := splitPath(e.Pattern)
		literals := 0
		for _, s := range segs {
			if !strings.HasPrefix(s, ":") {
				literals++
			}
		}
		t.entries = append(t.entries, compiledEntry{pattern: e.Pattern, segments: segs, literals: literals, costCents: e.CostCents})
	}
	return t
}

func NewDefaultTable() *Table {
	return NewTable(DefaultEntries, DefaultCostCents)
}

// CostOf returns the cost of the most specific matching pattern, or the default cost.
func (t *Table) CostOf(path string) int64 {
	if e := t.match(path); e != nil {
		return e.costCents
	}
	return t.defaultCost
}

// PatternOf returns the pattern that prices path, or "other" for the default.
func (t *Table) PatternOf(path string) string {
	if e := t.match(path); e != nil {
		return e.pattern
	}
	return "other"
}

func (t *Table) match(path string) *compiledEntry {
	segs := splitPath(path)
	var best *compiledEntry
	for i := range t.entries {
		e := &t.entries[i]
		if !e.matches(segs) {
			continue
		}
		if best == nil || e.literals > best.literals {
			best = e
		}
	}
	return best
}

func (e compiledEntry) matches(segs []string) bool {
	if len(segs) != len(e.segments) {
		return false
	}
	for i, s := range e.segments {
		if strings.HasPrefix(s, ":") {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if s != segs[i] {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
