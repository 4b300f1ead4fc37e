package definition

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/pvfilter/internal/filter"
	"github.com/hupe1980/pvfilter/internal/logging"
	"github.com/hupe1980/pvfilter/internal/property"
	"github.com/hupe1980/pvfilter/internal/version"
)

// Result is a loaded definition together with every file that contributed
// to it.
type Result struct {
	// Definition is the finalized filter definition.
	Definition *filter.Definition

	// Files lists the definition file, its extends chain, and all script
	// files, in the order they were read.
	Files []string
}

// Options configures a Loader.
type Options struct {
	// GeneratorVersion is checked against each file's generator constraint.
	// Versions that are not valid semver (such as "dev") skip the check.
	GeneratorVersion string
}

// Loader reads definition files.
type Loader struct {
	opts Options
}

// NewLoader creates a loader.
func NewLoader(opts Options) *Loader {
	return &Loader{opts: opts}
}

// Load reads path with the running binary's version as generator version.
func Load(ctx context.Context, path string) (*Result, error) {
	return NewLoader(Options{GeneratorVersion: version.GetInfo().Version}).Load(ctx, path)
}

// Load reads and finalizes the definition at path.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	res := &Result{}

	def, err := l.load(ctx, path, res, nil)
	if err != nil {
		return nil, err
	}

	res.Definition = def

	return res, nil
}

func (l *Loader) load(ctx context.Context, path string, res *Result, chain []string) (*filter.Definition, error) {
	logger := logging.FromContext(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	for _, seen := range chain {
		if seen == abs {
			return nil, &property.ConfigError{
				Field:   "extends",
				Message: fmt.Sprintf("cycle detected: %s", strings.Join(append(chain, abs), " -> ")),
			}
		}
	}

	chain = append(chain, abs)

	data, err := os.ReadFile(abs) //nolint:gosec // User-specified definition file
	if err != nil {
		return nil, fmt.Errorf("reading definition: %w", err)
	}

	res.Files = append(res.Files, abs)

	file, err := Parse(data, DetectFormat(abs))
	if err != nil {
		return nil, &SyntaxError{Path: path, Err: err}
	}

	logger.Debug("parsed definition",
		slog.String("path", abs),
		slog.String("name", file.Name),
		slog.Int("fields", len(file.Fields)),
	)

	if err := l.checkGenerator(file.Generator); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(abs)

	opts, err := l.options(file, dir, res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if file.Extends == "" {
		def, err := filter.New(file.Name, opts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		return def, nil
	}

	basePath := file.Extends
	if !filepath.IsAbs(basePath) {
		basePath = filepath.Join(dir, basePath)
	}

	base, err := l.load(ctx, basePath, res, chain)
	if err != nil {
		return nil, err
	}

	logger.Debug("extending definition",
		slog.String("name", file.Name),
		slog.String("base", base.Name()),
	)

	def, err := base.Extend(file.Name, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return def, nil
}
