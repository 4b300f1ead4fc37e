package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pvfilter/internal/logging"
	"github.com/hupe1980/pvfilter/internal/output"
	"github.com/hupe1980/pvfilter/internal/watch"
)

type watchOptions struct {
	output   string
	dryRun   bool
	debounce time.Duration
	validate bool
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <definition>",
		Short: "Watch a definition for changes and regenerate",
		Long: `Watch monitors a filter definition, every file it extends, and its script
files, and regenerates the plugin whenever one of them changes.

File changes are debounced to avoid rapid re-runs. Each regeneration
reports the proxy name, the field count, and the property changes since the
previous generation (properties added, removed, or changed).

A failing generation is reported and leaves the output file untouched;
watching continues until interrupted. Use --validate (enabled by default)
to validate every generated document.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: definitionArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file path (required)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "regenerate without writing")
	f.DurationVar(&opts.debounce, "debounce", watch.DefaultOptions().Debounce, "debounce interval for file changes")
	f.BoolVar(&opts.validate, "validate", true, "auto-validate after each generation")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, path string, opts *watchOptions) error {
	if opts.output == "" {
		return &ExitError{Code: 2, Err: fmt.Errorf("--output (-o) is required for watch mode")}
	}

	logger := logging.FromContext(ctx)

	runFn := func(fnCtx context.Context) (*watch.RunResult, error) {
		res, err := runPipeline(fnCtx, path)
		if err != nil {
			return nil, err
		}

		if !opts.dryRun {
			w := output.NewFileWriter(opts.output, output.WithLogger(logger))
			if err := w.Write(res.Document); err != nil {
				return nil, fmt.Errorf("writing output: %w", err)
			}
		}

		return &watch.RunResult{
			Proxy:      res.Definition.Name(),
			Fields:     len(res.Definition.Fields()),
			Document:   res.Document,
			Files:      res.Files,
			OutputPath: opts.output,
		}, nil
	}

	watchOpts := watch.Options{
		Files:    []string{path},
		Debounce: opts.debounce,
		Validate: opts.validate,
		ValidateFn: func(_ context.Context, doc []byte) error {
			return validateDocument(doc)
		},
		Logger: logger,
		Out:    cmd.ErrOrStderr(),
	}

	return watch.Run(ctx, watchOpts, runFn)
}
