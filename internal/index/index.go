package index

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"dotflip/internal/cycle"
	"dotflip/internal/logger"
	"dotflip/internal/model"
	"dotflip/internal/parse"
)

// Index owns the path → ParsedFile map. It is the only shared mutable
// state in the program and is only ever updated through its own methods;
// consumers get the stored (immutable) ParsedFile values.
//
// Staleness is bounded by event delivery: at any quiescent point each
// stored ParsedFile reflects the file's content as of the last observed
// event for that path.
type Index struct {
	mu       sync.RWMutex
	root     string
	patterns []string
	table    *cycle.Table
	files    map[string]*model.ParsedFile

	broker *Broker
}

// New creates an empty index for the project root. Call RefreshAll to
// populate it.
func New(root string, table *cycle.Table, patterns []string) *Index {
	return &Index{
		root:     root,
		patterns: patterns,
		table:    table,
		files:    make(map[string]*model.ParsedFile),
		broker:   NewBroker(),
	}
}

// Root returns the project root the index scans under.
func (ix *Index) Root() string {
	return ix.root
}

// Subscribe returns a channel receiving change notifications.
func (ix *Index) Subscribe() <-chan Event {
	return ix.broker.Subscribe()
}

// Unsubscribe releases a subscription obtained from Subscribe.
func (ix *Index) Unsubscribe(ch <-chan Event) {
	ix.broker.Unsubscribe(ch)
}

// Patterns returns the configured location globs.
func (ix *Index) Patterns() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.patterns
}

// RefreshAll rescans the configured location set end to end. The new map
// is built aside and swapped in, so no consumer ever observes a half-
// scanned state. Fires a single notification.
func (ix *Index) RefreshAll() error {
	ix.mu.RLock()
	patterns := ix.patterns
	table := ix.table
	ix.mu.RUnlock()

	paths, err := discover(ix.root, patterns)
	if err != nil {
		return err
	}

	next := make(map[string]*model.ParsedFile, len(paths))
	for _, path := range paths {
		pf, err := parse.FromDisk(path, ix.displayPath(path), table)
		if err != nil {
			// Unreadable files are absent from the index, never fatal
			// to the refresh.
			logger.Debug("index: skipping %s: %v", path, err)
			continue
		}
		next[path] = pf
	}

	ix.mu.Lock()
	ix.files = next
	ix.mu.Unlock()

	ix.broker.Publish(Event{})
	return nil
}

// Apply processes one filesystem event. Created and Changed both re-parse
// from current content, Deleted removes the entry; a missing file on a
// Created/Changed event is treated as deleted. Re-parsing from current
// content makes application idempotent, so a burst of events for the same
// path converges on the last observed state regardless of arrival order.
func (ix *Index) Apply(ev model.FileEvent) {
	switch ev.Op {
	case model.FileCreated, model.FileChanged:
		ix.mu.RLock()
		table := ix.table
		ix.mu.RUnlock()

		pf, err := parse.FromDisk(ev.Path, ix.displayPath(ev.Path), table)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Debug("index: dropping %s: %v", ev.Path, err)
			}
			ix.remove(ev.Path)
			return
		}
		ix.mu.Lock()
		ix.files[ev.Path] = pf
		ix.mu.Unlock()
		ix.broker.Publish(Event{Path: ev.Path})

	case model.FileDeleted:
		ix.remove(ev.Path)
	}
}

// OnFileChanged is the refresh hook the toggle engine calls after a
// successful write, so consumers see the new value without a full rescan.
func (ix *Index) OnFileChanged(path string) {
	ix.Apply(model.FileEvent{Op: model.FileChanged, Path: path})
}

// Get returns the most recent parse of path, if indexed.
func (ix *Index) Get(path string) (*model.ParsedFile, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	pf, ok := ix.files[path]
	return pf, ok
}

// All returns the indexed files sorted by display path. Ordering is a
// presentation choice, not an index invariant.
func (ix *Index) All() []*model.ParsedFile {
	ix.mu.RLock()
	files := make([]*model.ParsedFile, 0, len(ix.files))
	for _, pf := range ix.files {
		files = append(files, pf)
	}
	ix.mu.RUnlock()

	sort.Slice(files, func(i, j int) bool {
		return files[i].DisplayPath < files[j].DisplayPath
	})
	return files
}

// Reconfigure replaces the cycle table and location patterns, then
// rebuilds all derived state with a full refresh.
func (ix *Index) Reconfigure(table *cycle.Table, patterns []string) error {
	ix.mu.Lock()
	ix.table = table
	ix.patterns = patterns
	ix.mu.Unlock()

	return ix.RefreshAll()
}

// Close tears the index down, releasing all subscribers.
func (ix *Index) Close() {
	ix.broker.Close()
}

func (ix *Index) remove(path string) {
	ix.mu.Lock()
	_, had := ix.files[path]
	delete(ix.files, path)
	ix.mu.Unlock()

	if had {
		ix.broker.Publish(Event{Path: path})
	}
}

func (ix *Index) displayPath(path string) string {
	if rel, err := filepath.Rel(ix.root, path); err == nil {
		return rel
	}
	return path
}
