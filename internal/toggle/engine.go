package toggle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"

	"dotflip/internal/cycle"
	"dotflip/internal/logger"
	"dotflip/internal/model"
	"dotflip/internal/parse"
)

// IgnoreChecker reports whether a file is excluded from version control.
// Implemented by GitIgnoreChecker; nil disables the warning stage.
type IgnoreChecker interface {
	Ignored(path string) (bool, error)
}

// Refresher is poked after a successful write so the index re-reads the
// file. The index satisfies this.
type Refresher interface {
	OnFileChanged(path string)
}

// Confirmer asks the human whether a file that is NOT git-ignored should
// really be edited. Returning false cancels the toggle before any edit.
type Confirmer func(path string) bool

// Revealer is the presentation side effect of the interactive entry
// point: bring the toggled line into view however the frontend likes.
type Revealer func(path string, line int)

// Engine executes toggle requests. One request runs at a time: the fresh
// re-parse happens inside the same critical section as the write, so a
// re-parse can never observe a file version older than a previously
// completed toggle.
type Engine struct {
	mu        sync.Mutex
	root      string
	table     *cycle.Table
	ignores   IgnoreChecker
	refresher Refresher
	confirm   Confirmer

	acked map[string]bool // session "edit anyway" acknowledgements
}

// NewEngine builds an engine. ignores and refresher may be nil.
func NewEngine(root string, table *cycle.Table, ignores IgnoreChecker, refresher Refresher) *Engine {
	return &Engine{
		root:      root,
		table:     table,
		ignores:   ignores,
		refresher: refresher,
		acked:     make(map[string]bool),
	}
}

// SetConfirmer installs the frontend's confirmation prompt.
func (e *Engine) SetConfirmer(c Confirmer) {
	e.mu.Lock()
	e.confirm = c
	e.mu.Unlock()
}

// SetTable swaps the cycle table on a configuration reload.
func (e *Engine) SetTable(table *cycle.Table) {
	e.mu.Lock()
	e.table = table
	e.mu.Unlock()
}

// Acknowledge marks path as approved for this session, so the next toggle
// skips the not-ignored warning. Frontends that cannot block on a
// Confirmer (the TUI) ask via NeedsAck and call this on a "yes".
func (e *Engine) Acknowledge(path string) {
	e.mu.Lock()
	e.acked[path] = true
	e.mu.Unlock()
}

// NeedsAck reports whether toggling path would stop to ask for
// confirmation: the file is not git-ignored and has not been acknowledged
// this session.
func (e *Engine) NeedsAck(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.needsAckLocked(path)
}

func (e *Engine) needsAckLocked(path string) bool {
	if e.ignores == nil || e.acked[path] {
		return false
	}
	ignored, err := e.ignores.Ignored(path)
	if err != nil {
		// Not a git repo, or git is missing: nothing to warn about.
		logger.Debug("toggle: ignore check failed for %s: %v", path, err)
		return false
	}
	return !ignored
}

// Toggle is the interactive entry point: on success the revealer is
// invoked so the human sees the edit. reveal may be nil.
func (e *Engine) Toggle(path string, line int, reveal Revealer) model.ToggleOutcome {
	out := e.run(path, line)
	if out.Success && reveal != nil {
		reveal(path, line)
	}
	return out
}

// ToggleSilently edits without any presentation side effect. Identical
// state machine to Toggle.
func (e *Engine) ToggleSilently(path string, line int) model.ToggleOutcome {
	return e.run(path, line)
}

// run is the state machine:
// Start -> GitignoreCheck -> Reparse -> Locate -> Validate -> Edit ->
// Persist -> Done, with early Rejected exits. Cancellation happens before
// Reparse, so a declined confirmation leaves zero side effects.
func (e *Engine) run(path string, line int) model.ToggleOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	// GitignoreCheck
	if e.needsAckLocked(path) {
		if e.confirm == nil || !e.confirm(path) {
			return rejected(model.ErrUserCancelled,
				fmt.Sprintf("%s is not git-ignored; toggle cancelled", e.display(path)))
		}
		e.acked[path] = true
	}

	// Reparse — never trust cached offsets: the file may have changed
	// since it was indexed, and a stale span would corrupt other text.
	data, err := os.ReadFile(path)
	if err != nil {
		return rejected(model.ErrParseIO, fmt.Sprintf("cannot read %s: %v", e.display(path), err))
	}
	text := string(data)
	pf := parse.File(path, e.display(path), text, e.table)

	// Locate
	var entry *model.Entry
	for i := range pf.Entries {
		if pf.Entries[i].LineNumber == line {
			entry = &pf.Entries[i]
			break
		}
	}
	if entry == nil {
		return rejected(model.ErrNoEntryAtLine,
			fmt.Sprintf("no KEY=VALUE entry on line %d of %s", line, e.display(path)))
	}

	// Validate
	if !entry.Toggleable || entry.Cycle == nil {
		return rejected(model.ErrNotToggleable,
			fmt.Sprintf("%s=%s matches no configured cycle", entry.Key, entry.Value))
	}

	// Edit
	newValue, ok := cycle.Next(entry.Value, entry.Cycle)
	if !ok {
		// Match-time and resolve-time disagree; with a fresh parse this
		// should not happen, but never emit a nonsensical value.
		return rejected(model.ErrNotToggleable,
			fmt.Sprintf("%s is no longer resolvable in its cycle", entry.Value))
	}

	lines := strings.Split(text, "\n")
	if line >= len(lines) {
		return rejected(model.ErrNoEntryAtLine,
			fmt.Sprintf("line %d out of range for %s", line, e.display(path)))
	}
	edited, err := spliceValue(lines[line], entry.ValueStart, entry.ValueEnd, newValue)
	if err != nil {
		return rejected(model.ErrNotToggleable, err.Error())
	}
	oldLine := lines[line]
	lines[line] = edited

	// Persist — all-or-nothing; everything outside the span is untouched.
	if err := writeAtomic(path, strings.Join(lines, "\n")); err != nil {
		return rejected(model.ErrPersistFailure,
			fmt.Sprintf("writing %s: %v", e.display(path), err))
	}

	if e.refresher != nil {
		e.refresher.OnFileChanged(path)
	}

	return model.ToggleOutcome{
		Success:  true,
		NewValue: newValue,
		Message:  fmt.Sprintf("%s -> %s", entry.Key, newValue),
		Diff:     lineDiff(oldLine, edited),
	}
}

// spliceValue replaces [start,end) within line, addressing the line with
// its trailing carriage returns removed (the representation the parser
// computed the span against) and re-appending them afterwards so CRLF
// files survive byte-for-byte outside the span.
func spliceValue(line string, start, end int, replacement string) (string, error) {
	stripped := strings.TrimRight(line, "\r")
	cr := line[len(stripped):]
	if start < 0 || end > len(stripped) || start > end {
		return "", fmt.Errorf("value span [%d,%d) out of range", start, end)
	}
	return stripped[:start] + replacement + stripped[end:] + cr, nil
}

// writeAtomic writes content via a temp file in the same directory plus
// rename, preserving the original file mode. A failed write leaves the
// target untouched.
func writeAtomic(path, content string) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// lineDiff renders a patch of the edited line for previews and logs.
func lineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(before, after)
	return strings.TrimSpace(dmp.PatchToText(patches))
}

func rejected(kind model.ErrorKind, msg string) model.ToggleOutcome {
	return model.ToggleOutcome{Kind: kind, Message: msg}
}

func (e *Engine) display(path string) string {
	if rel, err := filepath.Rel(e.root, path); err == nil {
		return rel
	}
	return path
}
