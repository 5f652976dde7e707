package parse

import (
	"fmt"
	"os"
	"strings"

	"dotflip/internal/cycle"
	"dotflip/internal/model"
)

// File parses full file text into a ParsedFile. Lines are split strictly
// on \n; carriage returns are handled per line by Line. Pure: the same
// text and table always produce a structurally equal result.
func File(path, displayPath, fullText string, table *cycle.Table) *model.ParsedFile {
	pf := &model.ParsedFile{
		Path:        path,
		DisplayPath: displayPath,
	}

	for i, line := range strings.Split(fullText, "\n") {
		entry, ok := Line(line, i, table)
		if !ok {
			continue
		}
		pf.Entries = append(pf.Entries, entry)
		if entry.Toggleable {
			pf.Toggleable = append(pf.Toggleable, entry)
		}
	}

	return pf
}

// FromDisk reads and parses the current on-disk content of path.
func FromDisk(path, displayPath string, table *cycle.Table) (*model.ParsedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return File(path, displayPath, string(data), table), nil
}
