package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pvfilter/internal/audit"
	"github.com/hupe1980/pvfilter/internal/logging"
)

var auditFormats = []string{"table", "json", "sarif"}

type auditOptions struct {
	format      string
	failOn      string
	policyPaths []string
	disable     []string
}

func newAuditCommand() *cobra.Command {
	opts := &auditOptions{}

	cmd := &cobra.Command{
		Use:   "audit <definition>",
		Short: "Check a filter definition against best practices",
		Long: `Audit loads a filter definition and checks it for problems the generator
accepts but that surface later inside ParaView: parameters named after Python
keywords or shadowing script variables, scripts mixing tabs and spaces,
unused parameters, slider defaults outside their range, and missing help.

Built-in rules are PVF-001 through PVF-008. Policy files given with --policy
can change rule severities, disable rules, and add regex-based rules.

Use --fail-on to set a severity threshold: the command exits with
code 9 if any finding meets or exceeds the threshold.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: definitionArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd.Context(), cmd, args[0], opts)
		},
	}

	registerFormatFlag(cmd, &opts.format, "table", auditFormats)

	f := cmd.Flags()
	f.StringVar(&opts.failOn, "fail-on", "", "fail with exit code 9 if findings >= severity (critical, high, medium, low, info)")
	f.StringArrayVar(&opts.policyPaths, "policy", nil, "policy YAML files (can specify multiple)")
	f.StringSliceVar(&opts.disable, "disable", nil, "rule IDs to skip")

	return cmd
}

func runAudit(ctx context.Context, cmd *cobra.Command, path string, opts *auditOptions) error {
	logger := logging.FromContext(ctx)

	if err := checkFormat(opts.format, auditFormats); err != nil {
		return err
	}

	formatter, err := audit.NewFormatter(opts.format)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	threshold := audit.SeverityInfo

	if opts.failOn != "" {
		if threshold, err = audit.ParseSeverity(opts.failOn); err != nil {
			return &ExitError{Code: 2, Err: err}
		}
	}

	res, err := runPipeline(ctx, path)
	if err != nil {
		return err
	}

	checks := audit.DefaultChecks()
	policy := &audit.PolicyFile{}

	for _, p := range opts.policyPaths {
		pf, loadErr := audit.LoadPolicyFile(p)
		if loadErr != nil {
			return &ExitError{Code: 2, Err: loadErr}
		}

		checks = append(checks, pf.ToChecks()...)
		policy.Overrides = append(policy.Overrides, pf.Overrides...)

		logger.Info("audit: loaded policy",
			slog.String("path", p),
			slog.Int("rules", len(pf.Rules)),
			slog.Int("overrides", len(pf.Overrides)),
		)
	}

	for _, id := range opts.disable {
		policy.Overrides = append(policy.Overrides, audit.RuleOverride{ID: id, Disabled: true})
	}

	result := audit.New(checks...).WithPolicy(policy).Run(ctx, res.Definition)

	if err := formatter.Format(cmd.OutOrStdout(), result); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("formatting results: %w", err)}
	}

	if opts.failOn != "" && !result.Passed(threshold) {
		return &ExitError{
			Code: 9,
			Err:  fmt.Errorf("audit failed: findings at or above %s severity", threshold),
		}
	}

	return nil
}
