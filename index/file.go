package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultPath is where the index lives, relative to the working directory.
const DefaultPath = ".eolguard.index"

const fileFormatVersion = 1

// fileDocument is the on-disk msgpack layout.
type fileDocument struct {
	Version int                  `msgpack:"version"`
	Entries map[string]fileEntry `msgpack:"entries"`
}

type fileEntry struct {
	Modified time.Time `msgpack:"modified"`
	Valid    bool      `msgpack:"valid"`
}

// FileBackend stores the index as a single msgpack file. Reads take a shared
// lock and writes an exclusive lock on "<path>.lock", so two processes never
// observe a half-written index.
type FileBackend struct {
	path string
	lock *flock.Flock
}

// NewFileBackend creates a backend for the index file at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Read decodes the index file. A missing file yields an empty map.
func (b *FileBackend) Read() (map[string]Entry, error) {
	if _, err := os.Stat(b.path); errors.Is(err, os.ErrNotExist) {
		return make(map[string]Entry), nil
	}

	if err := b.lock.RLock(); err != nil {
		return nil, fmt.Errorf("locking %s: %w", b.path, err)
	}
	defer b.lock.Unlock()

	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.path, err)
	}

	var doc fileDocument
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, b.path, err)
	}
	if doc.Version != fileFormatVersion {
		return nil, fmt.Errorf("%w: %s: unsupported format version %d", ErrCorrupt, b.path, doc.Version)
	}

	entries := make(map[string]Entry, len(doc.Entries))
	for path, fe := range doc.Entries {
		entries[path] = Entry{LastModified: fe.Modified.UTC(), Valid: fe.Valid}
	}
	return entries, nil
}

// Write encodes entries and atomically replaces the index file.
func (b *FileBackend) Write(entries map[string]Entry) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	doc := fileDocument{
		Version: fileFormatVersion,
		Entries: make(map[string]fileEntry, len(entries)),
	}
	for path, entry := range entries {
		doc.Entries[path] = fileEntry{Modified: entry.LastModified.UTC(), Valid: entry.Valid}
	}

	data, err := msgpack.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	if err := b.lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", b.path, err)
	}
	defer b.lock.Unlock()

	return atomicWrite(b.path, data)
}

// atomicWrite writes data to a temp file next to path and renames it over path.
func atomicWrite(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, path, err)
	}
	return nil
}
