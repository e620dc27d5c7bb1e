// Package index keeps the per-file cache of modification times and validity
// that lets repeated runs skip unchanged, known-good files.
//
// A Store is loaded once, mutated in memory, and saved once. It is not safe
// for concurrent use.
package index

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotLoaded signals use of a Store before Load.
	ErrNotLoaded = errors.New("index used before Load")

	// ErrCorrupt is wrapped by backends when persisted state cannot be decoded.
	ErrCorrupt = errors.New("index is corrupt")
)

// Entry is the last observed state of one file.
type Entry struct {
	LastModified time.Time // file mtime, UTC
	Valid        bool
}

// Backend persists the complete index mapping.
type Backend interface {
	// Read returns the persisted mapping, or an empty map when none exists.
	Read() (map[string]Entry, error)
	// Write replaces the persisted mapping with entries.
	Write(entries map[string]Entry) error
}

// Store is the in-memory index backed by a Backend.
type Store struct {
	backend Backend
	entries map[string]Entry
}

// NewStore creates an unloaded store. Call Load before anything else.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load reads the persisted index. A second call discards in-memory changes.
func (s *Store) Load() error {
	entries, err := s.backend.Read()
	if err != nil {
		return fmt.Errorf("loading index: %w", err)
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}
	s.entries = entries
	return nil
}

// Loaded reports whether Load has succeeded.
func (s *Store) Loaded() bool {
	return s.entries != nil
}

// Get returns the entry for an absolute path. It panics before Load.
func (s *Store) Get(path string) (Entry, bool) {
	s.mustBeLoaded()
	entry, ok := s.entries[path]
	return entry, ok
}

// Upsert sets the entry for an absolute path. It panics before Load.
func (s *Store) Upsert(path string, entry Entry) {
	s.mustBeLoaded()
	entry.LastModified = entry.LastModified.UTC()
	s.entries[path] = entry
}

// Len returns the number of entries. It panics before Load.
func (s *Store) Len() int {
	s.mustBeLoaded()
	return len(s.entries)
}

// Snapshot returns a copy of all entries. It panics before Load.
func (s *Store) Snapshot() map[string]Entry {
	s.mustBeLoaded()
	out := make(map[string]Entry, len(s.entries))
	for path, entry := range s.entries {
		out[path] = entry
	}
	return out
}

// Save writes every entry through the backend, replacing what was there.
func (s *Store) Save() error {
	if !s.Loaded() {
		return ErrNotLoaded
	}
	if err := s.backend.Write(s.entries); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}
	return nil
}

func (s *Store) mustBeLoaded() {
	if !s.Loaded() {
		panic(ErrNotLoaded)
	}
}
