package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pvfilter/internal/output"
)

type inspectOptions struct {
	format    string
	showFiles bool
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}
	registry := output.DefaultRegistry()

	cmd := &cobra.Command{
		Use:   "inspect <definition>",
		Short: "Inspect a filter definition without generating",
		Long: `Inspect loads a filter definition, resolving its extends chain and script
files, and shows what the generated plugin would contain: proxy name and
group, input and output data types, every parameter with its kind, label,
defaults and choices, and the scripts that are set.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: definitionArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), cmd, args[0], registry, opts)
		},
	}

	registerFormatFlag(cmd, &opts.format, "table", registry.Formats())
	cmd.Flags().BoolVar(&opts.showFiles, "show-files", false, "list the files the definition was read from")

	return cmd
}

func runInspect(ctx context.Context, cmd *cobra.Command, path string, registry *output.Registry, opts *inspectOptions) error {
	enc, err := registry.Encoder(opts.format)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	res, err := runPipeline(ctx, path)
	if err != nil {
		return err
	}

	data, err := enc(output.Summarize(res.Definition))
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	w := cmd.OutOrStdout()

	if _, err := w.Write(data); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	// Files go to stderr so json and yaml output stays parseable.
	if opts.showFiles {
		e := cmd.ErrOrStderr()
		_, _ = fmt.Fprintln(e, "Files:")

		for _, f := range res.Files {
			_, _ = fmt.Fprintf(e, "  %s\n", f)
		}
	}

	return nil
}
