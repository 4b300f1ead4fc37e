package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pvfilter/internal/output"
)

type validateOptions struct {
	strict bool
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <plugin.xml>",
		Short: "Validate a generated plugin document",
		Long: `Validate checks a ServerManagerConfiguration document for the structure
ParaView expects from a Python programmable filter: proxy group and class,
input property, parameter attributes and defaults, the output data set type,
and the script properties.

Reports all errors and warnings found in the document. Returns exit code 7
on validation failure (or on warnings with --strict).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on warnings in addition to errors")

	return cmd
}

func runValidate(cmd *cobra.Command, filePath string, opts *validateOptions) error {
	doc, err := loadPluginFile(filePath, 7)
	if err != nil {
		if exitErr, ok := err.(*ExitError); ok && exitErr.Code == 7 {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "XML syntax error: %v\n", exitErr.Err)
		}

		return err
	}

	result := output.ValidatePlugin(doc)

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), output.FormatValidationResult(result))

	if result.HasErrors() {
		return &ExitError{Code: 7, Err: fmt.Errorf("validation failed with %d error(s)", len(result.Errors()))}
	}

	if opts.strict && result.HasWarnings() {
		return &ExitError{Code: 7, Err: fmt.Errorf("validation failed with %d warning(s) (strict mode)", len(result.Warnings()))}
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed.")

	return nil
}

// validateDocument reports the first validation error of a generated
// document, if any.
func validateDocument(doc []byte) error {
	result := output.ValidatePlugin(doc)
	if !result.HasErrors() {
		return nil
	}

	errs := result.Errors()

	return fmt.Errorf("validation failed with %d error(s): %s", len(errs), errs[0].Error())
}
