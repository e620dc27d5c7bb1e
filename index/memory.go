package index

// MemoryBackend keeps the persisted mapping in memory.
type MemoryBackend struct {
	entries map[string]Entry
	Writes  int
}

// NewMemoryBackend creates a backend seeded with entries (may be nil).
func NewMemoryBackend(entries map[string]Entry) *MemoryBackend {
	return &MemoryBackend{entries: copyEntries(entries)}
}

// Read returns a copy of the stored mapping.
func (m *MemoryBackend) Read() (map[string]Entry, error) {
	return copyEntries(m.entries), nil
}

// Write stores a copy of entries.
func (m *MemoryBackend) Write(entries map[string]Entry) error {
	m.entries = copyEntries(entries)
	m.Writes++
	return nil
}

func copyEntries(entries map[string]Entry) map[string]Entry {
	out := make(map[string]Entry, len(entries))
	for path, entry := range entries {
		out[path] = entry
	}
	return out
}
