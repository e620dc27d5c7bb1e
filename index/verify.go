package index

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Report summarizes how the index compares with the files on disk.
type Report struct {
	Total    int // entries under the prefix
	Valid    int // up to date and valid
	Invalid  int // up to date and invalid
	Stale    int // file no longer exists
	Modified int // file changed since it was last checked

	InvalidPaths  []string
	StalePaths    []string
	ModifiedPaths []string

	Duration time.Duration
}

// Verify compares every entry under prefix with the filesystem. An empty
// prefix covers the whole index. Verify never modifies the store.
func (s *Store) Verify(prefix string) Report {
	start := time.Now()
	var report Report

	for path, entry := range s.Snapshot() {
		if !underPrefix(path, prefix) {
			continue
		}
		report.Total++

		info, err := os.Lstat(path)
		switch {
		case err != nil:
			report.Stale++
			report.StalePaths = append(report.StalePaths, path)
		case !info.Mode().IsRegular() || !info.ModTime().Equal(entry.LastModified):
			report.Modified++
			report.ModifiedPaths = append(report.ModifiedPaths, path)
		case entry.Valid:
			report.Valid++
		default:
			report.Invalid++
			report.InvalidPaths = append(report.InvalidPaths, path)
		}
	}

	sort.Strings(report.InvalidPaths)
	sort.Strings(report.StalePaths)
	sort.Strings(report.ModifiedPaths)
	report.Duration = time.Since(start)
	return report
}

func underPrefix(path, prefix string) bool {
	if prefix == "" || path == prefix {
		return true
	}
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
