package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lexandro/eolguard/watcher"
)

// fileProcessor is the part of *processor.Processor watch mode drives.
type fileProcessor interface {
	ProcessFile(path string) bool
}

// ruleReloader is implemented by *ignore.Matcher.
type ruleReloader interface {
	Reload()
}

// indexSaver is implemented by *index.Store.
type indexSaver interface {
	Save() error
}

// runWatch processes the directory once and then every changed file until
// ctx is cancelled. The index is saved after the first pass and on exit.
func (a *app) runWatch(ctx context.Context, opts runOptions) error {
	root, isDir, err := resolveTarget(opts.target)
	if err != nil {
		return err
	}
	if !isDir {
		return &usageError{err: fmt.Errorf("watch needs a directory, got %s", opts.target)}
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	matcher := a.newMatcher(root)
	proc, err := a.newProcessor(opts, store, matcher, a.stdout, a.stderr)
	if err != nil {
		return err
	}

	if _, err := proc.Run(root); err != nil {
		return err
	}
	proc.PrintSummary()
	if err := store.Save(); err != nil {
		return err
	}

	fileWatcher, err := watcher.NewWatcher(root, matcher, watcher.DefaultDebounce, a.logger)
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer fileWatcher.Close()
	go fileWatcher.Start(ctx)

	a.logger.Info("watching for changes", "root", root, "action", opts.action, "ending", opts.ending)
	handleWatcherEvents(ctx, fileWatcher.Events(), proc, matcher, store, a.logger)

	proc.PrintSummary()
	if err := store.Save(); err != nil {
		return err
	}
	a.logger.Info("watch stopped, index saved", "path", a.cfg.Index.Path)
	return nil
}

// handleWatcherEvents feeds debounced events to the processor one file at a
// time until ctx is done or the event channel closes.
func handleWatcherEvents(
	ctx context.Context,
	events <-chan []watcher.DebouncedEvent,
	proc fileProcessor,
	rules ruleReloader,
	store indexSaver,
	logger *slog.Logger,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-events:
			if !ok {
				return
			}
			processed := 0
			for _, event := range batch {
				switch event.Op {
				case watcher.OpRemove, watcher.OpRename:
					// Entries for vanished files are reported as stale by status.
					logger.Debug("file gone", "path", event.Path, "op", event.Op)

				case watcher.OpCreate, watcher.OpWrite:
					if filepath.Base(event.Path) == watcher.IgnoreFileName {
						rules.Reload()
						logger.Info("reloaded ignore rules", "trigger", event.Path)
						continue
					}
					ok := proc.ProcessFile(event.Path)
					processed++
					logger.Debug("processed change", "path", event.Path, "op", event.Op, "ok", ok)
				}
			}
			if processed > 0 {
				if err := store.Save(); err != nil {
					logger.Error("saving index failed", "error", err)
				}
			}
		}
	}
}
