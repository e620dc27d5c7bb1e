package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ServeCommand is the subcommand MCP clients launch.
const ServeCommand = "serve"

// ErrUsage is returned for an unknown or missing scope.
var ErrUsage = errors.New("register needs a scope: project [directory] or user")

type mcpServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Run executes the register subcommand and reports the written file on out.
// serverName is the MCP server name (e.g. "eolguard").
// args is everything after "register".
func Run(serverName string, args []string, out io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}

	scope := args[0]
	if scope != "project" && scope != "user" {
		return fmt.Errorf("%w: unknown scope %q", ErrUsage, scope)
	}

	var directory string
	var serverArgs []string

	if scope == "project" {
		directory, serverArgs = parseProjectArgs(args[1:])
	} else {
		serverArgs = parseUserArgs(args[1:])
	}

	binaryPath, err := detectBinaryPath()
	if err != nil {
		return fmt.Errorf("detecting binary path: %w", err)
	}

	configPath, err := resolveConfigPath(scope, directory)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}

	entry := buildEntry(binaryPath, serverArgs)

	if err := writeConfig(configPath, serverName, entry); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(out, "Registered %q in %s\n", serverName, configPath)
	return nil
}

// DeriveServerName extracts a server name from a binary path by stripping .exe and -mcp suffixes.
func DeriveServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, "-mcp")
	return name
}

// splitServerArgs separates "<positional...> -- <server args...>".
func splitServerArgs(args []string) (positional []string, serverArgs []string) {
	for i, arg := range args {
		if arg == "--" {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}

// parseProjectArgs reads "[directory] [-- server args...]"; directory defaults to ".".
func parseProjectArgs(args []string) (directory string, serverArgs []string) {
	positional, serverArgs := splitServerArgs(args)
	directory = "."
	if len(positional) > 0 {
		directory = positional[0]
	}
	return directory, serverArgs
}

// parseUserArgs reads "[-- server args...]".
func parseUserArgs(args []string) (serverArgs []string) {
	_, serverArgs = splitServerArgs(args)
	return serverArgs
}

func detectBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("getting executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", exe, err)
	}
	return resolved, nil
}

func resolveConfigPath(scope string, directory string) (string, error) {
	if scope == "project" {
		absDir, err := filepath.Abs(directory)
		if err != nil {
			return "", fmt.Errorf("resolving directory %s: %w", directory, err)
		}
		return filepath.Join(absDir, ".mcp.json"), nil
	}
	// user scope
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude.json"), nil
}

// buildEntry launches "<binary> serve [serverArgs...]", through cmd /C on Windows.
func buildEntry(binaryPath string, serverArgs []string) mcpServerEntry {
	args := append([]string{ServeCommand}, serverArgs...)
	if runtime.GOOS == "windows" {
		return mcpServerEntry{
			Command: "cmd",
			Args:    append([]string{"/C", binaryPath}, args...),
		}
	}
	return mcpServerEntry{
		Command: binaryPath,
		Args:    args,
	}
}

// writeConfig sets mcpServers[serverName] in the JSON file at configPath.
// Other top-level keys and other servers are carried over verbatim.
func writeConfig(configPath string, serverName string, entry mcpServerEntry) error {
	document := map[string]json.RawMessage{}
	servers := map[string]json.RawMessage{}
	perm := os.FileMode(0644)

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &document); err != nil {
			return fmt.Errorf("parsing existing config %s: %w", configPath, err)
		}
		if raw, ok := document["mcpServers"]; ok {
			if err := json.Unmarshal(raw, &servers); err != nil || servers == nil {
				return fmt.Errorf("mcpServers in %s is not an object", configPath)
			}
		}
		if info, statErr := os.Stat(configPath); statErr == nil {
			perm = info.Mode().Perm()
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("reading %s: %w", configPath, err)
	}

	rawEntry, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling server entry: %w", err)
	}
	servers[serverName] = rawEntry

	rawServers, err := json.Marshal(servers)
	if err != nil {
		return fmt.Errorf("marshaling mcpServers: %w", err)
	}
	document["mcpServers"] = rawServers

	output, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	output = append(output, '\n')

	return replaceFile(configPath, output, perm)
}

// replaceFile writes data next to path and renames it into place.
func replaceFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".mcp-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmpFile.Name()
	cleanup := func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmpFile.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("setting mode on %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, path, err)
	}
	return nil
}
