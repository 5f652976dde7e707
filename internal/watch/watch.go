package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"dotflip/internal/index"
	"dotflip/internal/logger"
	"dotflip/internal/model"
)

// Watcher turns raw OS file notifications into debounced FileEvents for
// the index. Rapid bursts (an external tool rewriting many files, an
// editor's write-then-rename dance) are coalesced per path; the last
// observed operation for each path wins, which is safe because the index
// re-reads current content when applying an event.
type Watcher struct {
	root     string
	patterns []string
	debounce time.Duration

	fsw      *fsnotify.Watcher
	onEvents func([]model.FileEvent)

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]model.FileOp

	done     chan struct{}
	stopOnce sync.Once
}

// DefaultDebounce is long enough to swallow editor save bursts without
// making the index feel laggy.
const DefaultDebounce = 250 * time.Millisecond

// New creates a watcher rooted at root. Only paths matching one of the
// location patterns are forwarded. onEvents receives each debounced batch.
func New(root string, patterns []string, debounce time.Duration, onEvents func([]model.FileEvent)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     root,
		patterns: patterns,
		debounce: debounce,
		fsw:      fsw,
		onEvents: onEvents,
		pending:  make(map[string]model.FileOp),
		done:     make(chan struct{}),
	}, nil
}

// Start registers watches on the root tree and begins delivering events.
func (w *Watcher) Start() error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop shuts the watcher down. Pending debounced events are dropped.
// Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Debug("watch: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	// Newly created directories must be watched too, or files created
	// inside them later are invisible.
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !ignoredDir(filepath.Base(ev.Name)) {
				_ = w.addTree(ev.Name)
			}
			return
		}
	}

	if !index.MatchesAny(w.root, ev.Name, w.patterns) {
		return
	}

	var op model.FileOp
	switch {
	case ev.Op.Has(fsnotify.Create):
		op = model.FileCreated
	case ev.Op.Has(fsnotify.Write):
		op = model.FileChanged
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		op = model.FileDeleted
	default:
		return // chmod only
	}

	w.record(ev.Name, op)
}

// record notes the latest operation for a path and (re)arms the flush
// timer. No event is dropped: flushing delivers the last operation seen
// for every pending path.
func (w *Watcher) record(path string, op model.FileOp) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = op

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	events := make([]model.FileEvent, 0, len(w.pending))
	for path, op := range w.pending {
		events = append(events, model.FileEvent{Op: op, Path: path})
	}
	w.pending = make(map[string]model.FileOp)
	w.timer = nil
	w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	if len(events) > 0 && w.onEvents != nil {
		w.onEvents(events)
	}
}

// addTree watches dir and every subdirectory, skipping trees that can
// never hold project dotfiles.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep going
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir && ignoredDir(name) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			logger.Debug("watch: cannot watch %s: %v", path, err)
		}
		return nil
	})
}

// ignoredDir filters directory trees that never hold project dotfiles.
func ignoredDir(name string) bool {
	switch name {
	case ".git", ".svn", ".hg", ".idea", ".vscode",
		"node_modules", "vendor", "dist", "build", "target", "__pycache__":
		return true
	}
	return false
}
