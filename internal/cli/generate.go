package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pvfilter/internal/config"
	"github.com/hupe1980/pvfilter/internal/logging"
	"github.com/hupe1980/pvfilter/internal/output"
)

type generateOptions struct {
	// Output.
	output    string
	outputDir string
	dryRun    bool

	// Check each document with the plugin validator before writing.
	validate bool
}

func newGenerateCommand() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [definition...]",
		Short: "Generate plugin XML from filter definitions",
		Long: `Generate reads programmable filter definitions (YAML, TOML or JSON) and
writes the ServerManagerConfiguration XML that ParaView loads as a plugin.

With a single definition the document goes to stdout, or to the file named
by --output. Several definitions, or glob patterns such as
"filters/**/*.yaml", require --output-dir, which receives one <Name>.xml per
definition.

Without arguments the definitions, exclude and outputDir keys of the
config file are used.

All documents are generated before anything is written, so an invalid
definition leaves existing output untouched (exit code 3).`,
		Example: `  pvfilter generate my_filter.yaml > MyFilter.xml
  pvfilter generate my_filter.yaml -o plugins/MyFilter.xml
  pvfilter generate "filters/**/*.yaml" --output-dir plugins`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file path (default: stdout)")
	f.StringVar(&opts.outputDir, "output-dir", "", "directory receiving one <Name>.xml per definition")
	f.BoolVar(&opts.dryRun, "dry-run", false, "generate and report without writing")
	f.BoolVar(&opts.validate, "validate", false, "validate each generated document before writing")

	cmd.MarkFlagsMutuallyExclusive("output", "output-dir")

	return cmd
}

// generated is one document waiting to be written.
type generated struct {
	source string
	name   string
	fields int
	doc    []byte
	target string
}

func runGenerate(ctx context.Context, cmd *cobra.Command, args []string, opts *generateOptions) error {
	logger := logging.FromContext(ctx)

	project := &config.Project{}
	if len(args) == 0 {
		project = &config.FromContext(ctx).Project
	}

	files, err := expandDefinitions(ctx, args, project)
	if err != nil {
		return err
	}

	outputDir := opts.outputDir
	if outputDir == "" && opts.output == "" {
		outputDir = project.OutputDir
	}

	if len(files) > 1 && outputDir == "" {
		return &ExitError{Code: 2, Err: fmt.Errorf("%d definitions need --output-dir", len(files))}
	}

	// 1. Generate every document in memory.
	docs := make([]*generated, 0, len(files))
	targets := make(map[string]string)

	for _, file := range files {
		res, err := runPipeline(ctx, file)
		if err != nil {
			return err
		}

		g := &generated{
			source: file,
			name:   res.Definition.Name(),
			fields: len(res.Definition.Fields()),
			doc:    res.Document,
			target: opts.output,
		}

		if outputDir != "" {
			g.target = filepath.Join(outputDir, g.name+".xml")

			if prev, dup := targets[g.target]; dup {
				return &ExitError{Code: 3, Err: fmt.Errorf("%s and %s both define %s", prev, file, g.name)}
			}

			targets[g.target] = file
		}

		if opts.validate {
			if err := validateDocument(g.doc); err != nil {
				return &ExitError{Code: 7, Err: fmt.Errorf("%s: %w", file, err)}
			}
		}

		docs = append(docs, g)
	}

	cfg := config.FromContext(ctx)

	// 2. Write.
	for _, g := range docs {
		if opts.dryRun {
			if !cfg.Quiet {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Would write %s (%d bytes, %d field(s))\n", describeTarget(g.target), len(g.doc), g.fields)
			}

			continue
		}

		var w output.Writer = output.NewStdoutWriter(cmd.OutOrStdout())
		if g.target != "" {
			w = output.NewFileWriter(g.target, output.WithLogger(logger))
		}

		if err := w.Write(g.doc); err != nil {
			return &ExitError{Code: 6, Err: fmt.Errorf("writing output: %w", err)}
		}

		logger.Debug("plugin written", slog.String("source", g.source), slog.String("target", describeTarget(g.target)))

		if g.target != "" && !cfg.Quiet {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%s, %d field(s))\n", g.target, g.name, g.fields)
		}
	}

	return nil
}

func describeTarget(target string) string {
	if target == "" {
		return "stdout"
	}

	return target
}
