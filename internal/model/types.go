package model

// Version is the release version, overridden at build time via -ldflags.
var Version = "0.3.0"

// Entry represents a single KEY=VALUE line recovered from a dotfile.
type Entry struct {
	Key        string   // e.g. DEBUG
	Value      string   // trimmed raw value, quotes kept (e.g. `"true"` including the quotes)
	LineNumber int      // 0-based line index within the file
	ValueStart int      // offset of the first value character within the line
	ValueEnd   int      // offset one past the last value character
	Toggleable bool     // true when the value matched a configured cycle
	Cycle      []string // members of the matched cycle in canonical casing; nil unless Toggleable
	RawLine    string   // the line as addressed by edits (trailing \r removed)
}

// ParsedFile is the parse result for one file. It is replaced wholesale
// whenever the source file changes; entries are never mutated in place.
type ParsedFile struct {
	Path        string  `json:"path"`
	DisplayPath string  `json:"displayPath"`
	Entries     []Entry `json:"entries"`
	Toggleable  []Entry `json:"toggleable"` // derived subset, original order
}

// ErrorKind classifies the expected, reported failure modes of a toggle.
type ErrorKind string

const (
	ErrNoEntryAtLine  ErrorKind = "NoEntryAtLine"
	ErrNotToggleable  ErrorKind = "NotToggleable"
	ErrUserCancelled  ErrorKind = "UserCancelled"
	ErrParseIO        ErrorKind = "ParseIOError"
	ErrPersistFailure ErrorKind = "PersistFailure"
)

// ToggleOutcome is the structured result of one toggle request.
// Always freshly constructed, never cached.
type ToggleOutcome struct {
	Success  bool      `json:"success"`
	NewValue string    `json:"newValue,omitempty"`
	Kind     ErrorKind `json:"errorKind,omitempty"`
	Message  string    `json:"message,omitempty"`
	Diff     string    `json:"diff,omitempty"` // patch text for the edited line
}

// FileOp is the kind of filesystem notification delivered to the index.
type FileOp int

const (
	FileCreated FileOp = iota
	FileChanged
	FileDeleted
)

// FileEvent is one discrete filesystem notification.
type FileEvent struct {
	Op   FileOp
	Path string
}
