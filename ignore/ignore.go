package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher decides which files and directories a walk visits.
// It combines the processable extension list, excluded folder names,
// optional .gitignore rules, and custom doublestar patterns.
// Thread-safe: Reload() acquires a write lock, the query methods a read lock.
type Matcher struct {
	mu               sync.RWMutex
	rootDir          string
	extensions       map[string]bool
	excludedFolders  map[string]bool
	patterns         []string
	respectGitignore bool
	gitIgnore        gitignore.GitIgnore
	maxFileSizeBytes int64
}

// MatcherOptions configures the matcher. Nil Extensions or ExcludedFolders
// fall back to the defaults; an empty non-nil slice means "none".
type MatcherOptions struct {
	RootDir          string
	Extensions       []string
	ExcludedFolders  []string
	ExcludePatterns  []string
	RespectGitignore bool
	MaxFileSizeBytes int64 // <= 0 means unlimited
}

// NewMatcher creates a matcher for walks rooted at options.RootDir.
func NewMatcher(options MatcherOptions) *Matcher {
	extensions := options.Extensions
	if extensions == nil {
		extensions = DefaultExtensions
	}
	folders := options.ExcludedFolders
	if folders == nil {
		folders = DefaultExcludedFolders
	}

	matcher := &Matcher{
		rootDir:          options.RootDir,
		extensions:       make(map[string]bool, len(extensions)),
		excludedFolders:  make(map[string]bool, len(folders)),
		respectGitignore: options.RespectGitignore,
		maxFileSizeBytes: options.MaxFileSizeBytes,
	}
	for _, ext := range extensions {
		matcher.extensions[strings.ToLower(ext)] = true
	}
	for _, folder := range folders {
		matcher.excludedFolders[folder] = true
	}
	for _, pattern := range options.ExcludePatterns {
		pattern = filepath.ToSlash(pattern)
		if doublestar.ValidatePattern(pattern) {
			matcher.patterns = append(matcher.patterns, pattern)
		}
	}

	if matcher.respectGitignore {
		matcher.gitIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".gitignore"), options.RootDir)
	}

	return matcher
}

// IsProcessable reports whether the file's extension is in the processable set.
func (m *Matcher) IsProcessable(path string) bool {
	return m.extensions[strings.ToLower(filepath.Ext(path))]
}

// ShouldIgnore returns true if a file should not be processed: its extension
// is not processable, or it matches .gitignore or a custom pattern.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	if !m.IsProcessable(absolutePath) {
		return true
	}
	return m.matchesRules(absolutePath, false)
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	if m.excludedFolders[filepath.Base(absolutePath)] {
		return true
	}
	return m.matchesRules(absolutePath, true)
}

// IsFileTooLarge returns true if the file exceeds the max file size limit.
func (m *Matcher) IsFileTooLarge(fileSize int64) bool {
	return m.maxFileSizeBytes > 0 && fileSize > m.maxFileSizeBytes
}

// matchesRules checks .gitignore and custom patterns against the path
// relative to the root.
func (m *Matcher) matchesRules(absolutePath string, isDir bool) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil || relativePath == "." || strings.HasPrefix(relativePath, "..") {
		return false
	}
	relativePath = filepath.ToSlash(relativePath)

	if m.gitIgnore != nil {
		match := m.gitIgnore.Relative(relativePath, isDir)
		if match != nil && match.Ignore() {
			return true
		}
	}

	return m.matchesCustomPatterns(relativePath)
}

// matchesCustomPatterns checks the relative path and its base name.
func (m *Matcher) matchesCustomPatterns(relativePath string) bool {
	baseName := filepath.Base(relativePath)
	for _, pattern := range m.patterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

// Reload re-reads .gitignore from disk. Watch mode calls it when the file changes.
func (m *Matcher) Reload() {
	if !m.respectGitignore {
		return
	}
	newGitIgnore := loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Uses io.Reader approach to ensure the file handle is properly closed on Windows.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
