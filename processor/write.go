package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lexandro/eolguard/trash"
)

// replaceFile writes content to a temp file beside path, disposes of the
// original through remover, then renames the temp file into place. If the
// write fails the original is untouched.
func replaceFile(path string, content []byte, perm os.FileMode, remover trash.Remover) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".eolguard-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	needsCleanup := true
	defer func() {
		if needsCleanup {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := remover.Remove(path); err != nil {
		return fmt.Errorf("removing original: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}
	needsCleanup = false
	return nil
}

// readFileWithRetry attempts to read a file, retrying once after a short delay
// if the file is locked (common on Windows when editors are saving).
func readFileWithRetry(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		time.Sleep(50 * time.Millisecond)
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}
