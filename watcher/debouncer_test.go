package watcher

import (
	"testing"
	"time"
)

const testInterval = 50 * time.Millisecond

func receiveBatch(t *testing.T, d *Debouncer, timeout time.Duration) []DebouncedEvent {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(timeout):
		t.Fatal("timed out waiting for debouncer batch")
		return nil
	}
}

func Test_Debouncer_SingleEvent(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("notes.txt", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)

	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
	if batch[0].Path != "notes.txt" {
		t.Errorf("expected path 'notes.txt', got '%s'", batch[0].Path)
	}
	if batch[0].Op != OpWrite {
		t.Errorf("expected OpWrite, got %d", batch[0].Op)
	}
}

func Test_Debouncer_EventCollapsing(t *testing.T) {
	d := NewDebouncer(testInterval)

	// Add the same path twice; should collapse to one event with the latest op
	d.Add("notes.txt", OpCreate)
	d.Add("notes.txt", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)

	if len(batch) != 1 {
		t.Fatalf("expected 1 event (collapsed), got %d", len(batch))
	}
	if batch[0].Op != OpWrite {
		t.Errorf("expected latest op OpWrite, got %d", batch[0].Op)
	}
}

func Test_Debouncer_MultiplePaths(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("notes.txt", OpWrite)
	d.Add("site.css", OpCreate)
	d.Add("README.md", OpRemove)

	batch := receiveBatch(t, d, 500*time.Millisecond)

	if len(batch) != 3 {
		t.Fatalf("expected 3 events, got %d", len(batch))
	}

	// Batches arrive ordered by path
	expectedPaths := []string{"README.md", "notes.txt", "site.css"}
	for i, expected := range expectedPaths {
		if batch[i].Path != expected {
			t.Errorf("event[%d]: expected path '%s', got '%s'", i, expected, batch[i].Path)
		}
	}
}

func Test_Debouncer_TimerReset(t *testing.T) {
	d := NewDebouncer(testInterval)

	// Add first event
	d.Add("notes.txt", OpWrite)

	// Wait less than the interval, then add another event; should reset timer
	time.Sleep(testInterval / 2)
	d.Add("site.css", OpWrite)

	// Both events should arrive in a single batch
	batch := receiveBatch(t, d, 500*time.Millisecond)

	if len(batch) != 2 {
		t.Fatalf("expected 2 events in single batch, got %d", len(batch))
	}

	paths := make(map[string]bool)
	for _, e := range batch {
		paths[e.Path] = true
	}
	if !paths["notes.txt"] || !paths["site.css"] {
		t.Errorf("expected both notes.txt and site.css in batch, got: %v", batch)
	}
}

func Test_EventOp_String(t *testing.T) {
	tests := map[EventOp]string{
		OpCreate:    "create",
		OpWrite:     "write",
		OpRemove:    "remove",
		OpRename:    "rename",
		EventOp(42): "unknown",
	}
	for op, want := range tests {
		if got := op.String(); got != want {
			t.Errorf("EventOp(%d).String() = %q, want %q", int(op), got, want)
		}
	}
}

func Test_Debouncer_StopDropsPending(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("notes.txt", OpWrite)
	d.Stop()
	d.Add("site.css", OpWrite)

	select {
	case batch := <-d.Output():
		t.Fatalf("expected no batch after Stop, got %v", batch)
	case <-time.After(4 * testInterval):
	}
}
