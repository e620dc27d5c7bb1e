// Package watcher reports changes to processable files under a directory tree
// as debounced, path-ordered batches.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch of events is emitted.
const DefaultDebounce = 100 * time.Millisecond

// IgnoreFileName is reported even though it is never a processable file,
// so listeners can reload exclusion rules when it changes.
const IgnoreFileName = ".gitignore"

// Filter selects the directories to watch and the files to report.
// *ignore.Matcher implements it.
type Filter interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Watcher watches rootDir and every non-excluded directory below it.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	filter    Filter
	rootDir   string
	logger    *slog.Logger
}

// NewWatcher registers rootDir and its subdirectories with fsnotify. A
// non-positive debounce falls back to DefaultDebounce.
func NewWatcher(rootDir string, filter Filter, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(debounce),
		filter:    filter,
		rootDir:   rootDir,
		logger:    logger,
	}
	if err := w.watchTree(rootDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// watchTree adds dir and its subdirectories. Excluded directories are pruned;
// WalkDir does not follow symlinks, so linked trees stay unwatched just as the
// processor does not descend into them.
func (w *Watcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.rootDir && w.filter.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if addErr := w.fsWatcher.Add(path); addErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", addErr)
		}
		return nil
	})
}

// Events returns the channel that receives debounced batches.
func (w *Watcher) Events() <-chan []DebouncedEvent {
	return w.debouncer.Output()
}

// Start forwards fsnotify events until ctx is done or the watcher is closed.
// Run it in its own goroutine.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) && w.isDir(event.Name) {
		// A directory moved in may already hold subdirectories.
		if !w.filter.ShouldIgnoreDir(event.Name) {
			if err := w.watchTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
		}
		return
	}

	if !w.reportable(event.Name) {
		return
	}
	if op, ok := opFor(event); ok {
		w.debouncer.Add(event.Name, op)
	}
}

// isDir uses Lstat so a symlink to a directory is treated as a file entry.
func (w *Watcher) isDir(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}

func (w *Watcher) reportable(path string) bool {
	return filepath.Base(path) == IgnoreFileName || !w.filter.ShouldIgnore(path)
}

// opFor maps an fsnotify event to the operation reported for it. Chmod-only
// events are dropped.
func opFor(event fsnotify.Event) (EventOp, bool) {
	switch {
	case event.Has(fsnotify.Create):
		return OpCreate, true
	case event.Has(fsnotify.Write):
		return OpWrite, true
	case event.Has(fsnotify.Remove):
		return OpRemove, true
	case event.Has(fsnotify.Rename):
		return OpRename, true
	default:
		return 0, false
	}
}

// Close stops watching. Events already waiting in the debouncer are dropped.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}
