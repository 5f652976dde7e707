package cycle

import "strings"

// Group is an ordered set of interchangeable values. Toggling replaces a
// value with its successor, wrapping at the end. Case-sensitive as
// authored; matching against file values is lenient (see Table.Match).
type Group []string

// Table holds the configured groups in order. Immutable once built;
// configuration changes replace the whole table.
type Table struct {
	groups []Group
}

// NewTable builds a table from configured value lists. Groups with fewer
// than two members cannot cycle and are skipped.
func NewTable(values [][]string) *Table {
	t := &Table{}
	for _, vs := range values {
		if len(vs) < 2 {
			continue
		}
		g := make(Group, len(vs))
		copy(g, vs)
		t.groups = append(t.groups, g)
	}
	return t
}

// Groups returns the configured groups in order.
func (t *Table) Groups() []Group {
	return t.groups
}

// Match finds the first group containing value. Groups are tried in
// configured order; within a group an exact comparison is tried before a
// case-insensitive one. The returned group keeps its canonical casing
// regardless of the casing found in the file. Groups need not be
// disjoint — the first hit in table order wins.
func (t *Table) Match(value string) (Group, bool) {
	if value == "" {
		return nil, false
	}
	for _, g := range t.groups {
		if g.contains(value) {
			return g, true
		}
	}
	return nil, false
}

func (g Group) contains(value string) bool {
	for _, v := range g {
		if v == value {
			return true
		}
	}
	for _, v := range g {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// indexOf returns the position of value in g using the same leniency as
// Match, so anything flagged toggleable is always resolvable.
func (g Group) indexOf(value string) int {
	for i, v := range g {
		if v == value {
			return i
		}
	}
	for i, v := range g {
		if strings.EqualFold(v, value) {
			return i
		}
	}
	return -1
}
