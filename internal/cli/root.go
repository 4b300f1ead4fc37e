// Package cli implements the cobra command tree for pvfilter.
//
// Exit codes:
//
//	0  success
//	1  generic error
//	2  invalid arguments or config file
//	3  invalid filter definition
//	6  output could not be written
//	7  plugin validation failed
//	8  breaking property changes detected
//	9  audit findings at or above --fail-on
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pvfilter/internal/config"
	"github.com/hupe1980/pvfilter/internal/logging"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it with the process arguments, and
// returns the exit code.
func Execute() int {
	return executeArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func executeArgs(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return 1
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "pvfilter",
		Short: "Generate ParaView plugins from programmable filter definitions",
		Long: `pvfilter turns a declarative Python programmable filter definition into
the ServerManagerConfiguration XML that ParaView loads as a plugin.

A definition names the filter, its input and output data types, its
parameters, and the Python scripts that run in the pipeline. The generated
plugin shows the parameters as regular GUI widgets and forwards their values
to the scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger := logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
			)

			return nil
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .pvfilter.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	// Register subcommands.
	cmd.AddCommand(
		newVersionCommand(),
		newGenerateCommand(),
		newInspectCommand(),
		newValidateCommand(),
		newDiffCommand(),
		newDocsCommand(),
		newAuditCommand(),
		newWatchCommand(),
		newCompletionCommand(),
	)

	return cmd
}
