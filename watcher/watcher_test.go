package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// suffixFilter ignores directories named "skip" and files ending in ".log".
type suffixFilter struct{}

func (suffixFilter) ShouldIgnoreDir(absolutePath string) bool {
	return filepath.Base(absolutePath) == "skip"
}

func (suffixFilter) ShouldIgnore(absolutePath string) bool {
	return strings.HasSuffix(absolutePath, ".log")
}

func startWatcher(t *testing.T, rootDir string) *Watcher {
	t.Helper()
	w, err := NewWatcher(rootDir, suffixFilter{}, testInterval, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)
	t.Cleanup(func() {
		cancel()
		w.Close()
	})
	return w
}

// collectPaths gathers event paths until want is seen or the timeout passes.
func collectPaths(w *Watcher, want string, timeout time.Duration) map[string]EventOp {
	seen := make(map[string]EventOp)
	deadline := time.After(timeout)
	for {
		select {
		case batch := <-w.Events():
			for _, event := range batch {
				seen[event.Path] = event.Op
			}
			if _, ok := seen[want]; ok {
				return seen
			}
		case <-deadline:
			return seen
		}
	}
}

func Test_Watcher_ReportsFileChanges(t *testing.T) {
	tmpDir := t.TempDir()
	w := startWatcher(t, tmpDir)

	target := filepath.Join(tmpDir, "notes.txt")
	if err := os.WriteFile(target, []byte("a\r\n"), 0644); err != nil {
		t.Fatal(err)
	}

	seen := collectPaths(w, target, 2*time.Second)
	if _, ok := seen[target]; !ok {
		t.Fatalf("expected an event for %s, got %v", target, seen)
	}
}

func Test_Watcher_FiltersIgnoredFiles(t *testing.T) {
	tmpDir := t.TempDir()
	w := startWatcher(t, tmpDir)

	ignored := filepath.Join(tmpDir, "build.log")
	target := filepath.Join(tmpDir, "notes.txt")
	os.WriteFile(ignored, []byte("x"), 0644)
	os.WriteFile(target, []byte("x"), 0644)

	seen := collectPaths(w, target, 2*time.Second)
	if _, ok := seen[ignored]; ok {
		t.Errorf("expected no event for ignored file %s", ignored)
	}
}

func Test_Watcher_ReportsIgnoreFile(t *testing.T) {
	tmpDir := t.TempDir()
	w, err := NewWatcher(tmpDir, ignoreEverything{}, testInterval, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer w.Close()
	go w.Start(ctx)

	gitignore := filepath.Join(tmpDir, IgnoreFileName)
	os.WriteFile(gitignore, []byte("*.md\n"), 0644)

	seen := collectPaths(w, gitignore, 2*time.Second)
	if _, ok := seen[gitignore]; !ok {
		t.Fatalf("expected .gitignore changes to be reported, got %v", seen)
	}
}

func Test_Watcher_WatchesNewDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	w := startWatcher(t, tmpDir)

	subDir := filepath.Join(tmpDir, "docs")
	if err := os.Mkdir(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to register the new directory.
	time.Sleep(2 * testInterval)

	target := filepath.Join(subDir, "guide.md")
	os.WriteFile(target, []byte("x"), 0644)

	seen := collectPaths(w, target, 2*time.Second)
	if _, ok := seen[target]; !ok {
		t.Fatalf("expected an event inside the new directory, got %v", seen)
	}
	if _, ok := seen[subDir]; ok {
		t.Error("expected no event for the directory itself")
	}
}

type ignoreEverything struct{}

func (ignoreEverything) ShouldIgnoreDir(string) bool { return false }
func (ignoreEverything) ShouldIgnore(string) bool    { return true }

func Test_Watcher_WatchesDirectoryTreeMovedIn(t *testing.T) {
	tmpDir := t.TempDir()
	staging := t.TempDir()
	nested := filepath.Join(staging, "site", "assets", "css")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	w := startWatcher(t, tmpDir)

	site := filepath.Join(tmpDir, "site")
	if err := os.Rename(filepath.Join(staging, "site"), site); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * testInterval)

	target := filepath.Join(site, "assets", "css", "main.css")
	os.WriteFile(target, []byte("x"), 0644)

	seen := collectPaths(w, target, 2*time.Second)
	if _, ok := seen[target]; !ok {
		t.Fatalf("expected an event two levels inside the moved directory, got %v", seen)
	}
}

func Test_opFor(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want EventOp
		ok   bool
	}{
		{fsnotify.Create, OpCreate, true},
		{fsnotify.Write, OpWrite, true},
		{fsnotify.Create | fsnotify.Write, OpCreate, true},
		{fsnotify.Remove, OpRemove, true},
		{fsnotify.Rename, OpRename, true},
		{fsnotify.Chmod, 0, false},
	}
	for _, tt := range tests {
		got, ok := opFor(fsnotify.Event{Name: "/p/a.txt", Op: tt.op})
		if ok != tt.ok || got != tt.want {
			t.Errorf("opFor(%v) = %v, %v; want %v, %v", tt.op, got, ok, tt.want, tt.ok)
		}
	}
}
