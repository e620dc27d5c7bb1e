package watcher

import (
	"sort"
	"sync"
	"time"
)

// EventOp is the kind of change reported for a path.
type EventOp int

const (
	OpCreate EventOp = iota
	OpWrite
	OpRemove
	OpRename
)

func (op EventOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// DebouncedEvent is the last operation seen for Path within one quiet period.
type DebouncedEvent struct {
	Path string
	Op   EventOp
}

// Debouncer coalesces events per path and emits them as one batch, sorted by
// path, once no new event has arrived for interval.
type Debouncer struct {
	interval time.Duration
	output   chan []DebouncedEvent

	mu      sync.Mutex
	pending map[string]EventOp
	timer   *time.Timer
	stopped bool
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		output:   make(chan []DebouncedEvent, 16),
		pending:  make(map[string]EventOp),
	}
}

// Output returns the channel batches are delivered on. It is never closed.
func (d *Debouncer) Output() <-chan []DebouncedEvent {
	return d.output
}

// Add records op for path, replacing any earlier op for it, and restarts the
// quiet period.
func (d *Debouncer) Add(path string, op EventOp) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending[path] = op
	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, d.flush)
		return
	}
	d.timer.Reset(d.interval)
}

// Stop discards pending events; later calls to Add are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	clear(d.pending)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || len(d.pending) == 0 {
		return
	}

	paths := make([]string, 0, len(d.pending))
	for path := range d.pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	batch := make([]DebouncedEvent, len(paths))
	for i, path := range paths {
		batch[i] = DebouncedEvent{Path: path, Op: d.pending[path]}
	}
	clear(d.pending)
	d.output <- batch
}
