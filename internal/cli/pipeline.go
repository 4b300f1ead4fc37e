package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hupe1980/pvfilter/internal/config"
	"github.com/hupe1980/pvfilter/internal/definition"
	"github.com/hupe1980/pvfilter/internal/logging"
	"github.com/hupe1980/pvfilter/internal/property"
)

// pipelineResult holds a loaded definition and the plugin generated from it.
type pipelineResult struct {
	*definition.Result

	// Document is the complete plugin XML.
	Document []byte
}

// runPipeline loads the definition at path and generates its plugin
// document. This is the shared core used by generate, diff, and watch.
// Nothing is written; the document only exists in memory.
func runPipeline(ctx context.Context, path string) (*pipelineResult, error) {
	logger := logging.FromContext(ctx)

	logger.Debug("loading definition", slog.String("path", path))

	res, err := definition.Load(ctx, path)
	if err != nil {
		return nil, definitionError(err)
	}

	def := res.Definition

	logger.Info("definition loaded",
		slog.String("name", def.Name()),
		slog.Int("fields", len(def.Fields())),
		slog.Int("files", len(res.Files)),
	)

	return &pipelineResult{Result: res, Document: def.XML()}, nil
}

// definitionError maps a loader failure onto an exit code. Invalid
// definitions exit with 3, anything else (I/O, permissions) with 1.
func definitionError(err error) error {
	var (
		cfgErr *property.ConfigError
		synErr *definition.SyntaxError
	)

	if errors.As(err, &cfgErr) || errors.As(err, &synErr) {
		return &ExitError{Code: 3, Err: err}
	}

	return &ExitError{Code: 1, Err: err}
}

// expandDefinitions resolves command-line arguments, or the project's
// definition patterns when there are none, into a sorted list of distinct
// files. Arguments without glob characters are taken literally so a missing
// file is reported instead of silently matching nothing.
func expandDefinitions(ctx context.Context, args []string, project *config.Project) ([]string, error) {
	patterns := args
	if len(patterns) == 0 {
		patterns = project.Definitions
	}

	if len(patterns) == 0 {
		return nil, &ExitError{Code: 2, Err: fmt.Errorf("no definitions given: pass definition files or configure definitions in the config file")}
	}

	seen := make(map[string]bool)

	var files []string

	for _, pattern := range patterns {
		matches := []string{pattern}

		if isGlob(pattern) {
			var err error

			matches, err = doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, &ExitError{Code: 2, Err: fmt.Errorf("expanding %q: %w", pattern, err)}
			}

			if len(matches) == 0 {
				logging.FromContext(ctx).Warn("pattern matched no definitions", slog.String("pattern", pattern))
			}
		}

		for _, m := range matches {
			m = filepath.Clean(m)

			if seen[m] || project.Excluded(filepath.ToSlash(m)) {
				continue
			}

			seen[m] = true
			files = append(files, m)
		}
	}

	if len(files) == 0 {
		return nil, &ExitError{Code: 2, Err: fmt.Errorf("no definitions matched %s", strings.Join(patterns, ", "))}
	}

	sort.Strings(files)

	return files, nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
