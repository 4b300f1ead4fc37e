package cli

import (
	"fmt"
	"os"

	"github.com/hupe1980/pvfilter/internal/xmltree"
)

// loadPluginFile reads a plugin XML document. Unreadable files exit with 1,
// malformed XML with syntaxErrorCode.
func loadPluginFile(filePath string, syntaxErrorCode int) ([]byte, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // User-specified input file
	if err != nil {
		return nil, &ExitError{Code: 1, Err: fmt.Errorf("reading file: %w", err)}
	}

	if _, err := xmltree.ParseBytes(data); err != nil {
		return nil, &ExitError{Code: syntaxErrorCode, Err: fmt.Errorf("parsing XML: %w", err)}
	}

	return data, nil
}
