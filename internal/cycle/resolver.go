package cycle

import "strings"

// Next computes the successor of current within group, preserving the
// surrounding quote style. A single layer of matching double or single
// quotes is treated as presentation: it is stripped before the lookup and
// re-applied to the replacement. Unquoted values stay unquoted.
//
// If current (unquoted) is not a member of group the input is returned
// unchanged with ok=false; callers must treat that as a failed toggle
// rather than write a nonsensical value.
func Next(current string, group Group) (string, bool) {
	inner, quote := stripQuotes(strings.TrimSpace(current))
	idx := group.indexOf(inner)
	if idx < 0 {
		return current, false
	}
	next := group[(idx+1)%len(group)]
	return quote + next + quote, true
}

// Normalize prepares a raw file value for matching: surrounding
// whitespace is trimmed, then one layer of matching quotes is stripped.
// The parser matches against this form; the stored value keeps its quotes.
func Normalize(s string) string {
	inner, _ := stripQuotes(strings.TrimSpace(s))
	return inner
}

// stripQuotes removes one layer of matching quotes and reports which
// quote character was found ("" when unquoted).
func stripQuotes(s string) (inner, quote string) {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1], string(first)
		}
	}
	return s, ""
}
