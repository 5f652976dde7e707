package parse

import (
	"regexp"
	"strings"

	"dotflip/internal/cycle"
	"dotflip/internal/model"
)

// Pattern: optional indentation, optional `export`, a key, `=`, the rest
// of the line as the value. Keys may contain dots and hyphens after the
// first character (FEATURE.flag-name=on is a real thing in .flags files).
// Submatch 1 is the key, submatch 2 the value with leading whitespace
// already consumed, so the submatch index is the exact value offset.
var lineRe = regexp.MustCompile(`^\s*(?:export\s+)?([A-Za-z_][A-Za-z0-9_.-]*)\s*=[ \t]*(.*)$`)

// Line parses one line of a dotfile. It returns ok=false for blank lines,
// comments and anything that is not a KEY=VALUE line.
//
// Offsets in the returned entry address the line with its trailing
// carriage returns removed — the same representation the toggle engine
// edits and writes back, so a span can be substituted blindly.
func Line(text string, lineNumber int, table *cycle.Table) (model.Entry, bool) {
	line := strings.TrimRight(text, "\r")

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return model.Entry{}, false
	}

	m := lineRe.FindStringSubmatchIndex(line)
	if m == nil {
		return model.Entry{}, false
	}

	key := line[m[2]:m[3]]
	valueStart := m[4]
	rawValue := line[m[4]:m[5]]

	// The editable span excludes trailing whitespace; leading whitespace
	// after `=` was consumed by the pattern.
	value := strings.TrimRight(rawValue, " \t")
	valueEnd := valueStart + len(value)

	entry := model.Entry{
		Key:        key,
		Value:      value,
		LineNumber: lineNumber,
		ValueStart: valueStart,
		ValueEnd:   valueEnd,
		RawLine:    line,
	}

	// Quotes are presentation; match on the normalized form. Empty
	// values can never toggle.
	normalized := cycle.Normalize(value)
	if normalized != "" {
		if g, ok := table.Match(normalized); ok {
			entry.Toggleable = true
			entry.Cycle = g
		}
	}

	return entry, true
}
