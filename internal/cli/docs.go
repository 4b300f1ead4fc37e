package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pvfilter/internal/docs"
	"github.com/hupe1980/pvfilter/internal/logging"
	"github.com/hupe1980/pvfilter/internal/output"
)

type docsOptions struct {
	format          string
	title           string
	includeExamples bool
	outputFile      string
}

func newDocsCommand() *cobra.Command {
	opts := &docsOptions{}

	cmd := &cobra.Command{
		Use:   "docs <definition>",
		Short: "Generate reference documentation for a filter",
		Long: `Generate human-readable reference documentation from a filter definition.

Outputs the proxy name, input and output data types, a parameter table with
the names paraview.simple exposes, defaults and choices, and optionally a
Python usage example.

Supports markdown, HTML, and AsciiDoc output formats.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: definitionArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocs(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "markdown", "output format (markdown, html, asciidoc)")
	cmd.Flags().StringVar(&opts.title, "title", "", "override document title")
	cmd.Flags().BoolVar(&opts.includeExamples, "include-examples", true, "include a paraview.simple example")
	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func runDocs(ctx context.Context, cmd *cobra.Command, path string, opts *docsOptions) error {
	formatter, err := docs.NewFormatter(opts.format)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	res, err := runPipeline(ctx, path)
	if err != nil {
		return err
	}

	model := docs.FromDefinition(res.Definition)
	model.Title = opts.title
	model.IncludeExamples = opts.includeExamples

	var buf bytes.Buffer
	if err := formatter.Format(&buf, model); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("formatting docs: %w", err)}
	}

	var w output.Writer = output.NewStdoutWriter(cmd.OutOrStdout())
	if opts.outputFile != "" {
		w = output.NewFileWriter(opts.outputFile, output.WithLogger(logging.FromContext(ctx)))
	}

	if err := w.Write(buf.Bytes()); err != nil {
		return &ExitError{Code: 6, Err: fmt.Errorf("writing docs: %w", err)}
	}

	return nil
}
