package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// registerFormatFlag adds --format with the given default and registers
// shell completion for the allowed values.
func registerFormatFlag(cmd *cobra.Command, target *string, def string, allowed []string) {
	cmd.Flags().StringVar(target, "format", def, "output format: "+strings.Join(allowed, ", "))

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return allowed, cobra.ShellCompDirectiveNoFileComp
	})
}

// checkFormat rejects a --format value outside allowed with exit code 2.
func checkFormat(format string, allowed []string) error {
	if slices.Contains(allowed, format) {
		return nil
	}

	return &ExitError{Code: 2, Err: fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))}
}

// definitionArgs completes definition file arguments.
func definitionArgs(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"yaml", "yml", "toml", "json"}, cobra.ShellCompDirectiveFilterFileExt
}
