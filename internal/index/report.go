package index

import (
	"fmt"
	"sort"
	"strings"

	"dotflip/internal/cycle"
	"dotflip/internal/model"
)

// GenerateReport renders a plain-text diagnostic report over the parsed
// files: every entry with its toggle status, plus duplicate-key findings.
// Verbose adds offsets and raw lines for debugging the parser itself.
func GenerateReport(files []*model.ParsedFile, verbose bool) string {
	var sb strings.Builder

	sb.WriteString("dotflip report\n")
	sb.WriteString("==============\n\n")

	if len(files) == 0 {
		sb.WriteString("No matching dotfiles found.\n")
		return sb.String()
	}

	totalEntries := 0
	totalToggleable := 0

	for _, pf := range files {
		sb.WriteString(pf.DisplayPath + "\n")
		sb.WriteString(strings.Repeat("-", len(pf.DisplayPath)) + "\n")

		if len(pf.Entries) == 0 {
			sb.WriteString("  (no entries)\n\n")
			continue
		}

		for _, e := range pf.Entries {
			marker := " "
			hint := ""
			if e.Toggleable {
				marker = "*"
				if next, ok := cycle.Next(e.Value, e.Cycle); ok {
					hint = fmt.Sprintf("  -> %s", next)
				}
			}
			sb.WriteString(fmt.Sprintf("  %s %4d  %s=%s%s\n", marker, e.LineNumber, e.Key, e.Value, hint))
			if verbose {
				sb.WriteString(fmt.Sprintf("        span [%d,%d) raw %q\n", e.ValueStart, e.ValueEnd, e.RawLine))
			}
		}
		sb.WriteString("\n")

		totalEntries += len(pf.Entries)
		totalToggleable += len(pf.Toggleable)
	}

	if diags := Diagnostics(files); len(diags) > 0 {
		sb.WriteString("Diagnostics\n")
		sb.WriteString("-----------\n")
		for _, d := range diags {
			sb.WriteString("  " + d + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("%d entries across %d files, %d toggleable (*)\n",
		totalEntries, len(files), totalToggleable))
	return sb.String()
}

// Diagnostics flags keys defined more than once, both within one file and
// across files. Duplicates are legal but usually mean one definition is
// being silently shadowed.
func Diagnostics(files []*model.ParsedFile) []string {
	var diags []string

	type site struct {
		file string
		line int
	}
	byKey := make(map[string][]site)

	for _, pf := range files {
		seen := make(map[string]int)
		for _, e := range pf.Entries {
			if first, ok := seen[e.Key]; ok {
				diags = append(diags, fmt.Sprintf(
					"%s: %s defined on line %d and again on line %d",
					pf.DisplayPath, e.Key, first, e.LineNumber))
			} else {
				seen[e.Key] = e.LineNumber
			}
			byKey[e.Key] = append(byKey[e.Key], site{pf.DisplayPath, e.LineNumber})
		}
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		distinct := make(map[string]struct{})
		for _, s := range byKey[key] {
			distinct[s.file] = struct{}{}
		}
		if len(distinct) > 1 {
			names := make([]string, 0, len(distinct))
			for f := range distinct {
				names = append(names, f)
			}
			sort.Strings(names)
			diags = append(diags, fmt.Sprintf(
				"%s appears in %d files: %s", key, len(distinct), strings.Join(names, ", ")))
		}
	}

	return diags
}
