// Package trash removes files either permanently or by moving them into a
// freedesktop.org style trash directory, where they can be restored.
package trash

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Remover disposes of a file that is about to be replaced.
type Remover interface {
	Remove(path string) error
}

// Permanent deletes files outright.
type Permanent struct{}

// Remove deletes path.
func (Permanent) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// RecycleBin moves files into <dir>/files and records their origin in
// <dir>/info/<name>.trashinfo.
type RecycleBin struct {
	dir string
	now func() time.Time
}

// NewRecycleBin creates a recycle bin rooted at dir, or at DefaultDir when
// dir is empty. The files and info subdirectories are created on demand.
func NewRecycleBin(dir string) (*RecycleBin, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	return &RecycleBin{dir: dir, now: time.Now}, nil
}

// DefaultDir returns $XDG_DATA_HOME/Trash, falling back to ~/.local/share/Trash.
func DefaultDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "Trash"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "Trash"), nil
}

// Dir returns the trash root.
func (r *RecycleBin) Dir() string {
	return r.dir
}

// Remove moves path into the trash.
func (r *RecycleBin) Remove(path string) error {
	_, err := r.Trash(path)
	return err
}

// Trash moves path into the trash and returns where it ended up.
func (r *RecycleBin) Trash(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}

	filesDir := filepath.Join(r.dir, "files")
	infoDir := filepath.Join(r.dir, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", fmt.Errorf("creating trash directory %s: %w", dir, err)
		}
	}

	name := filepath.Base(absPath)
	infoPath := filepath.Join(infoDir, name+".trashinfo")
	infoFile, err := os.OpenFile(infoPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if errors.Is(err, os.ErrExist) {
		name = uniqueName(name)
		infoPath = filepath.Join(infoDir, name+".trashinfo")
		infoFile, err = os.OpenFile(infoPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	}
	if err != nil {
		return "", fmt.Errorf("creating trash info for %s: %w", absPath, err)
	}

	_, err = infoFile.WriteString(trashInfo(absPath, r.now()))
	if closeErr := infoFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(infoPath)
		return "", fmt.Errorf("writing trash info %s: %w", infoPath, err)
	}

	trashedPath := filepath.Join(filesDir, name)
	if err := moveFile(absPath, trashedPath); err != nil {
		os.Remove(infoPath)
		return "", fmt.Errorf("moving %s to trash: %w", absPath, err)
	}
	return trashedPath, nil
}

// uniqueName keeps the extension so trashed files still open sensibly.
func uniqueName(name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return stem + "." + uuid.New().String()[:8] + ext
}

func trashInfo(absPath string, deletedAt time.Time) string {
	escaped := (&url.URL{Path: filepath.ToSlash(absPath)}).EscapedPath()
	return fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		escaped, deletedAt.Format("2006-01-02T15:04:05"))
}

// moveFile renames src to dst, copying across filesystems when rename fails.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	in.Close()
	return os.Remove(src)
}
