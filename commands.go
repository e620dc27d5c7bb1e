package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lexandro/eolguard/eol"
	"github.com/lexandro/eolguard/processor"
	"github.com/lexandro/eolguard/register"
)

// usageArgs turns positional-argument failures into usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// endingAndPath accepts exactly "<unix|windows> <path>".
func endingAndPath(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(2)(cmd, args); err != nil {
		return err
	}
	_, err := eol.ParseEnding(args[0])
	return err
}

func (a *app) fixCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "fix <unix|windows> <path>",
		Short: "Rewrite files to the target line ending",
		Long: `Rewrite every eligible file under path (or path itself) so that all line
breaks follow the target convention. Originals are moved to the trash unless
-f is given.`,
		Example: `  eolguard fix unix src
  eolguard fix windows -f README.md`,
		Args: usageArgs(endingAndPath),
		RunE: func(cmd *cobra.Command, args []string) error {
			ending, _ := eol.ParseEnding(args[0])
			return a.runOnce(runOptions{
				action: processor.Fix,
				ending: ending,
				target: args[1],
				force:  force,
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete originals permanently instead of moving them to the trash")
	return cmd
}

func (a *app) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <unix|windows> <path>",
		Short: "Report files whose line endings do not match",
		Long: `Check every eligible file under path (or path itself) and print each one
whose line endings break the target convention. Exits 1 if any file is invalid
or could not be processed.`,
		Example: `  eolguard validate unix .
  eolguard validate windows src/App.cs`,
		Args: usageArgs(endingAndPath),
		RunE: func(cmd *cobra.Command, args []string) error {
			ending, _ := eol.ParseEnding(args[0])
			return a.runOnce(runOptions{
				action: processor.Validate,
				ending: ending,
				target: args[1],
			})
		},
	}
	// Accepted for symmetry with fix; validation never deletes anything.
	cmd.Flags().BoolP("force", "f", false, "Ignored")
	cmd.Flags().MarkHidden("force")
	return cmd
}

func (a *app) watchCommand() *cobra.Command {
	var fix, force bool
	cmd := &cobra.Command{
		Use:   "watch <unix|windows> <directory>",
		Short: "Validate or fix files as they change",
		Long: `Process directory once, then keep processing files as they are created or
modified until interrupted. The index is saved after the first pass and on exit.`,
		Args: usageArgs(endingAndPath),
		RunE: func(cmd *cobra.Command, args []string) error {
			ending, _ := eol.ParseEnding(args[0])
			action := processor.Validate
			if fix {
				action = processor.Fix
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.runWatch(ctx, runOptions{
				action: action,
				ending: ending,
				target: args[1],
				force:  force,
			})
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "Rewrite non-conforming files instead of reporting them")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "With --fix, delete originals permanently")
	return cmd
}

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as an MCP server on stdio",
		Long: `Expose eolguard_validate, eolguard_fix and eolguard_status as MCP tools over
stdio. Logs go to stderr or --log-file, never stdout.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx)
		},
	}
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status [path]",
		Short: "Compare the index with the files on disk",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return a.runStatus(prefix)
		},
	}
}

func (a *app) registerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register <project [directory] | user> [-- server args...]",
		Short: "Add eolguard to an MCP client configuration",
		Example: `  eolguard register project            # ./.mcp.json
  eolguard register user               # ~/.claude.json
  eolguard register project . -- --index /tmp/eol.index`,
		Args: cobra.ArbitraryArgs,
		// Registration does not need the config file or a logger.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flag parsing drops "--"; put it back for the server args split.
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				rebuilt := append([]string{}, args[:dash]...)
				args = append(append(rebuilt, "--"), args[dash:]...)
			}
			binaryPath, err := os.Executable()
			if err != nil {
				binaryPath = os.Args[0]
			}
			err = register.Run(register.DeriveServerName(binaryPath), args, a.stdout)
			if errors.Is(err, register.ErrUsage) {
				return &usageError{err: err}
			}
			return err
		},
	}
}
