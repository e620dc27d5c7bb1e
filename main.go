package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexandro/eolguard/config"
)

// errFilesFailed ends a run whose files were reported individually.
var errFilesFailed = errors.New("one or more files failed")

// usageError marks a malformed invocation. It prints usage and exits 0.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// app holds the global flags and what is built from them before a command runs.
type app struct {
	configPath string
	logLevel   string
	logFile    string
	indexPath  string

	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}
	if cmd == nil {
		cmd = root
	}

	var usage *usageError
	if errors.As(err, &usage) || strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fmt.Fprint(stdout, cmd.UsageString())
		return 0
	}
	if errors.Is(err, errFilesFailed) {
		return 1
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "eolguard",
		Short: "Fix or validate line endings across a source tree",
		Long: `eolguard checks that text files use one line-ending convention, unix (LF)
or windows (CRLF), and can rewrite the ones that do not.

Files unchanged since they were last found valid are skipped using a
persistent index of modification times.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.setup() },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultFileName, "Config file path")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error (default from config: warn)")
	flags.StringVar(&a.logFile, "log-file", "", "Log file path (default: stderr)")
	flags.StringVar(&a.indexPath, "index", "", "Index location (default from config: .eolguard.index)")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.AddCommand(
		a.fixCommand(),
		a.validateCommand(),
		a.watchCommand(),
		a.serveCommand(),
		a.statusCommand(),
		a.registerCommand(),
	)
	return root
}

// setup loads configuration, applies flag overrides and creates the logger.
func (a *app) setup() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	cfg.MergeWithFlags(a.logLevel, a.logFile, a.indexPath)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.logger = setupLogger(cfg.LogLevel, cfg.LogFile, a.stderr)
	a.logger.Debug("configuration loaded",
		"config", a.configPath,
		"index", cfg.Index.Path,
		"backend", cfg.Index.Backend,
	)
	return nil
}

// setupLogger creates an slog.Logger writing to fallback or a file.
// Nothing is ever logged to stdout, which belongs to reports and MCP stdio.
func setupLogger(level string, logFile string, fallback io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	writer := fallback
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(fallback, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
		} else {
			writer = f
		}
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
