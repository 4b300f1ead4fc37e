package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pvfilter/internal/config"
	"github.com/hupe1980/pvfilter/internal/plan"
)

var diffFormats = []string{"unified", "json", "summary"}

type diffOptions struct {
	// Existing plugin file to diff against.
	existing string

	// Output format: "unified" (default), "json", "summary".
	format string
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <definition>",
		Short: "Compare a generated plugin against an existing one",
		Long: `Diff generates the plugin for a definition and compares it against an
existing plugin document, reporting line-level and property-level changes.

Removing a property, renaming the proxy, or changing a property's type or
number of elements breaks state files saved with the existing plugin.
Such changes are reported as breaking.

Exit codes:
  0  No breaking changes
  1  Error
  2  Invalid arguments
  3  Invalid definition
  7  Existing document is not valid XML
  8  Breaking property changes detected`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: definitionArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.existing, "existing", "", "path to the existing plugin XML file to diff against")
	registerFormatFlag(cmd, &opts.format, "unified", diffFormats)

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, path string, opts *diffOptions) error {
	if opts.existing == "" {
		return &ExitError{Code: 2, Err: fmt.Errorf("--existing flag is required: specify the path to the existing plugin file")}
	}

	if err := checkFormat(opts.format, diffFormats); err != nil {
		return err
	}

	existing, err := loadPluginFile(opts.existing, 7)
	if err != nil {
		return err
	}

	res, err := runPipeline(ctx, path)
	if err != nil {
		return err
	}

	analysis, err := plan.Analyze(existing, res.Document)
	if err != nil {
		return &ExitError{Code: 7, Err: fmt.Errorf("analyzing %s: %w", opts.existing, err)}
	}

	w := cmd.OutOrStdout()

	switch opts.format {
	case "json":
		if err := plan.FormatJSON(w, analysis); err != nil {
			return &ExitError{Code: 1, Err: fmt.Errorf("formatting JSON: %w", err)}
		}
	case "summary":
		_, _ = fmt.Fprintln(w, plan.FormatCompactSummary(analysis))
	default:
		diffOpts := plan.DefaultDiffOptions()
		diffOpts.OldLabel = opts.existing

		diffResult, diffErr := plan.ComputeDiff(string(existing), string(res.Document), diffOpts)
		if diffErr != nil {
			return &ExitError{Code: 1, Err: diffErr}
		}

		plan.WriteDiff(w, diffResult, !config.FromContext(ctx).NoColor)

		if analysis.HasChanges() {
			_, _ = fmt.Fprintln(w)
			plan.FormatTable(w, analysis)
		}
	}

	if analysis.HasBreakingChanges() {
		return &ExitError{
			Code: 8,
			Err:  fmt.Errorf("%d breaking change(s) detected", analysis.BreakingCount()),
		}
	}

	return nil
}
