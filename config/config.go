// Package config loads eolguard settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lexandro/eolguard/ignore"
	"github.com/lexandro/eolguard/index"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = ".eolguard.yaml"

// IndexConfig selects where and how the index is persisted.
type IndexConfig struct {
	// Path is the index location, relative to the working directory
	Path string `yaml:"path"`

	// Backend is "msgpack" or "sqlite"
	Backend string `yaml:"backend"`
}

// Config represents eolguard configuration options
type Config struct {
	// Extensions lists processable file extensions, with leading dot
	Extensions []string `yaml:"extensions"`

	// ExcludeFolders lists directory names that are never descended into
	ExcludeFolders []string `yaml:"exclude_folders"`

	// ExcludePatterns are doublestar globs relative to the walk root
	ExcludePatterns []string `yaml:"exclude_patterns"`

	// RespectGitignore skips paths matched by the root .gitignore
	RespectGitignore bool `yaml:"respect_gitignore"`

	// MaxFileSize skips larger files (bytes, 0 = unlimited)
	MaxFileSize int64 `yaml:"max_file_size"`

	// WriteBOM prefixes rewritten files with a UTF-8 byte-order mark
	WriteBOM bool `yaml:"write_bom"`

	// TrashDir overrides the recycle bin location
	TrashDir string `yaml:"trash_dir"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogFile receives log output instead of stderr
	LogFile string `yaml:"log_file"`

	Index IndexConfig `yaml:"index"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Extensions:     append([]string(nil), ignore.DefaultExtensions...),
		ExcludeFolders: append([]string(nil), ignore.DefaultExcludedFolders...),
		LogLevel:       "warn",
		Index: IndexConfig{
			Path:    index.DefaultPath,
			Backend: index.BackendMsgpack,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointers distinguish "absent" from zero values so absent keys keep defaults.
	var fileCfg struct {
		Extensions       []string `yaml:"extensions"`
		ExcludeFolders   []string `yaml:"exclude_folders"`
		ExcludePatterns  []string `yaml:"exclude_patterns"`
		RespectGitignore *bool    `yaml:"respect_gitignore"`
		MaxFileSize      *int64   `yaml:"max_file_size"`
		WriteBOM         *bool    `yaml:"write_bom"`
		TrashDir         string   `yaml:"trash_dir"`
		LogLevel         string   `yaml:"log_level"`
		LogFile          string   `yaml:"log_file"`
		Index            struct {
			Path    string `yaml:"path"`
			Backend string `yaml:"backend"`
		} `yaml:"index"`
	}
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if fileCfg.Extensions != nil {
		cfg.Extensions = fileCfg.Extensions
	}
	if fileCfg.ExcludeFolders != nil {
		cfg.ExcludeFolders = fileCfg.ExcludeFolders
	}
	if fileCfg.ExcludePatterns != nil {
		cfg.ExcludePatterns = fileCfg.ExcludePatterns
	}
	if fileCfg.RespectGitignore != nil {
		cfg.RespectGitignore = *fileCfg.RespectGitignore
	}
	if fileCfg.MaxFileSize != nil {
		cfg.MaxFileSize = *fileCfg.MaxFileSize
	}
	if fileCfg.WriteBOM != nil {
		cfg.WriteBOM = *fileCfg.WriteBOM
	}
	if fileCfg.TrashDir != "" {
		cfg.TrashDir = fileCfg.TrashDir
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogFile != "" {
		cfg.LogFile = fileCfg.LogFile
	}
	if fileCfg.Index.Path != "" {
		cfg.Index.Path = fileCfg.Index.Path
	}
	if fileCfg.Index.Backend != "" {
		cfg.Index.Backend = fileCfg.Index.Backend
	}

	return cfg, nil
}

// MergeWithFlags applies CLI flag values over the loaded configuration.
// Empty strings leave the configured value in place.
func (c *Config) MergeWithFlags(logLevel, logFile, indexPath string) {
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if logFile != "" {
		c.LogFile = logFile
	}
	if indexPath != "" {
		c.Index.Path = indexPath
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid extension %q, must start with a dot", ext)
		}
	}

	for _, folder := range c.ExcludeFolders {
		if folder == "" || strings.ContainsAny(folder, `/\`) {
			return fmt.Errorf("invalid exclude folder %q, must be a plain directory name", folder)
		}
	}

	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must be >= 0, got %d", c.MaxFileSize)
	}

	if c.Index.Path == "" {
		return fmt.Errorf("index.path cannot be empty")
	}
	switch c.Index.Backend {
	case index.BackendMsgpack, index.BackendSQLite:
	default:
		return fmt.Errorf("invalid index.backend %q, must be one of: %s, %s",
			c.Index.Backend, index.BackendMsgpack, index.BackendSQLite)
	}

	return nil
}
