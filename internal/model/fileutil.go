package model

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LineContext is a target line with up to two lines of context on each
// side, used to show a toggled entry in place (CLI reveal, web hover).
type LineContext struct {
	Before2    string
	Before1    string
	Target     string
	After1     string
	After2     string
	LineNumber int // 0-based, matching Entry.LineNumber
	HasBefore2 bool
	HasBefore1 bool
	HasAfter1  bool
	HasAfter2  bool
	ErrorMsg   string // set if the file couldn't be read
}

// GetLineContext reads filePath and returns lineNumber with its
// surrounding lines. Errors are reported in the result rather than
// returned; context display is best-effort.
func GetLineContext(filePath string, lineNumber int) LineContext {
	result := LineContext{LineNumber: lineNumber}

	if strings.HasPrefix(filePath, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			filePath = strings.Replace(filePath, "~", home, 1)
		}
	}

	file, err := os.Open(filePath)
	if err != nil {
		result.ErrorMsg = fmt.Sprintf("Could not read file: %v", err)
		return result
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		result.ErrorMsg = fmt.Sprintf("Error reading file: %v", err)
		return result
	}

	if lineNumber < 0 || lineNumber >= len(lines) {
		result.ErrorMsg = fmt.Sprintf("Line %d out of range (file has %d lines)", lineNumber, len(lines))
		return result
	}

	result.Target = lines[lineNumber]

	if lineNumber >= 2 {
		result.Before2 = lines[lineNumber-2]
		result.HasBefore2 = true
	}
	if lineNumber >= 1 {
		result.Before1 = lines[lineNumber-1]
		result.HasBefore1 = true
	}
	if lineNumber+1 < len(lines) {
		result.After1 = lines[lineNumber+1]
		result.HasAfter1 = true
	}
	if lineNumber+2 < len(lines) {
		result.After2 = lines[lineNumber+2]
		result.HasAfter2 = true
	}

	return result
}
