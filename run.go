package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lexandro/eolguard/eol"
	"github.com/lexandro/eolguard/ignore"
	"github.com/lexandro/eolguard/index"
	"github.com/lexandro/eolguard/processor"
	"github.com/lexandro/eolguard/trash"
)

// runOptions are the per-invocation settings of fix, validate and watch.
type runOptions struct {
	action processor.Action
	ending eol.Ending
	target string
	force  bool
}

// runOnce loads the index, processes the target, prints the summary and
// saves the index. Files that fail are reported as they happen and turn
// into errFilesFailed at the end.
func (a *app) runOnce(opts runOptions) error {
	root, _, err := resolveTarget(opts.target)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	proc, err := a.newProcessor(opts, store, a.newMatcher(root), a.stdout, a.stderr)
	if err != nil {
		return err
	}

	ok, err := proc.Run(opts.target)
	if err != nil {
		return err
	}
	proc.PrintSummary()

	if err := store.Save(); err != nil {
		return err
	}
	a.logger.Info("index saved", "path", a.cfg.Index.Path, "entries", store.Len())

	if !ok {
		return errFilesFailed
	}
	return nil
}

// resolveTarget returns the directory exclusion rules are relative to (the
// target itself, or a file's parent) and whether the target is a directory.
func resolveTarget(target string) (string, bool, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s", processor.ErrTargetNotFound, target)
	}
	info, err := os.Stat(absTarget)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s", processor.ErrTargetNotFound, target)
	}
	if info.IsDir() {
		return absTarget, true, nil
	}
	return filepath.Dir(absTarget), false, nil
}

// openStore creates the configured backend and loads the index once.
func (a *app) openStore() (*index.Store, error) {
	backend, err := index.NewBackend(a.cfg.Index.Backend, a.cfg.Index.Path)
	if err != nil {
		return nil, err
	}
	store := index.NewStore(backend)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("%w (%s)", err, a.cfg.Index.Path)
	}
	a.logger.Debug("index loaded", "path", a.cfg.Index.Path, "entries", store.Len())
	return store, nil
}

func (a *app) newMatcher(root string) *ignore.Matcher {
	return ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:          root,
		Extensions:       a.cfg.Extensions,
		ExcludedFolders:  a.cfg.ExcludeFolders,
		ExcludePatterns:  a.cfg.ExcludePatterns,
		RespectGitignore: a.cfg.RespectGitignore,
		MaxFileSizeBytes: a.cfg.MaxFileSize,
	})
}

// newRemover picks how fix disposes of originals.
func (a *app) newRemover(force bool) (trash.Remover, error) {
	if force {
		return trash.Permanent{}, nil
	}
	bin, err := trash.NewRecycleBin(a.cfg.TrashDir)
	if err != nil {
		return nil, fmt.Errorf("locating trash: %w", err)
	}
	return bin, nil
}

func (a *app) newProcessor(opts runOptions, store processor.IndexStore, filter processor.Filter, out, errOut io.Writer) (*processor.Processor, error) {
	var remover trash.Remover
	if opts.action == processor.Fix {
		var err error
		if remover, err = a.newRemover(opts.force); err != nil {
			return nil, err
		}
	}

	return processor.New(processor.Options{
		Action:   opts.action,
		Ending:   opts.ending,
		Store:    store,
		Filter:   filter,
		Remover:  remover,
		WriteBOM: a.cfg.WriteBOM,
		Out:      out,
		ErrOut:   errOut,
		Logger:   a.logger,
	}), nil
}
