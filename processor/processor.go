// Package processor fixes or validates line endings file by file, consulting
// the index to skip files that are unchanged and already known to be valid.
//
// A Processor handles one file at a time and is not safe for concurrent use.
package processor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lexandro/eolguard/charset"
	"github.com/lexandro/eolguard/eol"
	"github.com/lexandro/eolguard/index"
	"github.com/lexandro/eolguard/trash"
)

// ErrTargetNotFound is returned by Run when the target is neither a file nor a directory.
var ErrTargetNotFound = errors.New("path should be valid file or directory")

// Action selects what happens to a file whose line endings are checked.
type Action int

const (
	Validate Action = iota
	Fix
)

func (a Action) String() string {
	if a == Fix {
		return "fix"
	}
	return "validate"
}

// IndexStore is the part of index.Store the processor needs.
type IndexStore interface {
	Get(path string) (index.Entry, bool)
	Upsert(path string, entry index.Entry)
}

// Filter decides which paths a walk visits. *ignore.Matcher implements it.
type Filter interface {
	ShouldIgnore(absolutePath string) bool
	ShouldIgnoreDir(absolutePath string) bool
	IsFileTooLarge(fileSize int64) bool
}

// Options configures a Processor.
type Options struct {
	Action   Action
	Ending   eol.Ending
	Store    IndexStore
	Filter   Filter
	Remover  trash.Remover // how originals are disposed of on fix; default trash.Permanent
	WriteBOM bool
	Out      io.Writer // invalid-file report, default os.Stdout
	ErrOut   io.Writer // per-file errors and summary, default os.Stderr
	Logger   *slog.Logger
}

// Processor runs the per-file fix/validate state machine.
type Processor struct {
	action   Action
	ending   eol.Ending
	store    IndexStore
	filter   Filter
	remover  trash.Remover
	writeBOM bool
	report   *reporter
	logger   *slog.Logger
	stats    Stats

	readFile func(path string) ([]byte, error)
}

// New creates a Processor. Store and Filter are required.
func New(options Options) *Processor {
	remover := options.Remover
	if remover == nil {
		remover = trash.Permanent{}
	}
	out := options.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := options.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Processor{
		action:   options.Action,
		ending:   options.Ending,
		store:    options.Store,
		filter:   options.Filter,
		remover:  remover,
		writeBOM: options.WriteBOM,
		report:   newReporter(out, errOut),
		logger:   logger,
		readFile: readFileWithRetry,
	}
}

// Stats returns counters accumulated since the Processor was created.
func (p *Processor) Stats() Stats {
	return p.stats
}

// Run processes target, which may be a file or a directory. The returned bool
// is false if any file failed validation or processing.
func (p *Processor) Run(target string) (bool, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}
	info, err := os.Stat(absTarget)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}

	p.logger.Info("run started",
		"action", p.action,
		"ending", p.ending,
		"target", absTarget,
	)

	var ok bool
	switch {
	case info.IsDir() && p.filter.ShouldIgnoreDir(absTarget):
		// An excluded folder is skipped even when named as the target.
		p.logger.Debug("skipped directory", "path", absTarget)
		ok = true
	case info.IsDir():
		ok = p.ProcessDir(absTarget)
	default:
		ok = p.ProcessFile(absTarget)
	}

	p.logger.Info("run complete", "ok", ok, "stats", p.stats)
	return ok, nil
}

// ProcessDir walks dir: subdirectories first, then files, each in name order.
// Excluded and symlinked directories are not entered. Every entry is
// processed even after a failure; the result is true only if all succeed.
func (p *Processor) ProcessDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		p.stats.Failed++
		p.report.fileError(dir, err)
		p.logger.Error("reading directory failed", "path", dir, "error", err)
		return false
	}

	result := true
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		child := filepath.Join(dir, entry.Name())
		if p.filter.ShouldIgnoreDir(child) {
			p.logger.Debug("skipped directory", "path", child)
			continue
		}
		if !p.ProcessDir(child) {
			result = false
		}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !p.ProcessFile(filepath.Join(dir, entry.Name())) {
			result = false
		}
	}
	return result
}

// ProcessFile fixes or validates a single file. Errors are reported and
// turned into a false result; they never panic or abort the caller's walk.
func (p *Processor) ProcessFile(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	outcome, err := p.processFile(absPath)
	p.stats.record(outcome)
	if err != nil {
		p.report.fileError(absPath, err)
		p.logger.Error("processing file failed", "path", absPath, "error", err)
		return false
	}

	p.logger.Debug("processed file", "path", absPath, "outcome", outcome)
	return outcome != Invalid
}

func (p *Processor) processFile(path string) (Outcome, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Failed, fmt.Errorf("stat: %w", err)
	}
	// Symlinks, devices and other reparse points are left alone.
	if !info.Mode().IsRegular() {
		return Skipped, nil
	}
	if p.filter.ShouldIgnore(path) || p.filter.IsFileTooLarge(info.Size()) {
		return Skipped, nil
	}

	modTime := info.ModTime()
	if entry, ok := p.store.Get(path); ok && entry.Valid && entry.LastModified.Equal(modTime) {
		return Cached, nil
	}

	data, err := p.readFile(path)
	if err != nil {
		return Failed, fmt.Errorf("reading file: %w", err)
	}

	text, detected, err := charset.Decode(data)
	if err != nil {
		return Failed, fmt.Errorf("decoding file: %w", err)
	}
	p.logger.Debug("detected encoding",
		"path", path,
		"charset", detected.Name,
		"confidence", detected.Confidence,
	)

	if p.action == Fix {
		return p.fixFile(path, info, data, text)
	}
	return p.validateFile(path, modTime, text), nil
}

func (p *Processor) fixFile(path string, info os.FileInfo, original []byte, text string) (Outcome, error) {
	output := charset.Encode(eol.Normalize(text, p.ending), p.writeBOM)
	if bytes.Equal(output, original) {
		p.store.Upsert(path, index.Entry{LastModified: info.ModTime(), Valid: true})
		return Unchanged, nil
	}

	if err := replaceFile(path, output, info.Mode().Perm(), p.remover); err != nil {
		return Failed, err
	}

	written, err := os.Stat(path)
	if err != nil {
		return Failed, fmt.Errorf("stat after write: %w", err)
	}
	p.store.Upsert(path, index.Entry{LastModified: written.ModTime(), Valid: true})
	return Fixed, nil
}

func (p *Processor) validateFile(path string, modTime time.Time, text string) Outcome {
	if !eol.Validate(text, p.ending) {
		p.report.invalidFile(path)
		p.store.Upsert(path, index.Entry{LastModified: modTime, Valid: false})
		return Invalid
	}
	p.store.Upsert(path, index.Entry{LastModified: modTime, Valid: true})
	return Valid
}

// PrintSummary writes a one-line account of the run to the error stream.
func (p *Processor) PrintSummary() {
	p.report.summary(p.action, p.stats)
}
