// Package pvfilter provides a public Go API for generating ParaView Python
// programmable filter plugins.
//
// A filter can be built in Go and written to stdout with Main:
//
//	func main() {
//	    os.Exit(pvfilter.Main(pvfilter.NewFilter("MyFilter",
//	        pvfilter.WithInputDataTypes("vtkPolyData"),
//	        pvfilter.WithField("iterations", must(pvfilter.NewInteger("", pvfilter.WithDefault(20)))),
//	        pvfilter.WithRequestData(script),
//	    )))
//	}
//
// Or loaded from a YAML, TOML or JSON definition file:
//
//	result, err := pvfilter.Generate(ctx, "filters/my_filter.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(string(result.XML))
package pvfilter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/pvfilter/internal/definition"
	"github.com/hupe1980/pvfilter/internal/logging"
	"github.com/hupe1980/pvfilter/internal/output"
	"github.com/hupe1980/pvfilter/internal/version"
)

// Option configures Generate.
type Option func(*options)

type options struct {
	logger           *slog.Logger
	generatorVersion string
	validate         bool
}

// WithLogger sets the logger for load diagnostics. Logging is discarded by
// default.
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

// WithGeneratorVersion overrides the version that generator constraints in
// definition files are checked against.
func WithGeneratorVersion(v string) Option { return func(o *options) { o.generatorVersion = v } }

// WithValidation checks the generated document and fails on validation
// errors.
func WithValidation() Option { return func(o *options) { o.validate = true } }

// Result is a generated plugin.
type Result struct {
	// XML is the complete plugin document.
	XML []byte

	// Name is the proxy name.
	Name string

	// FieldCount is the number of parameters.
	FieldCount int

	// Files lists the definition file, its extends chain, and its script
	// files.
	Files []string
}

// Generate loads the definition file at path and renders its plugin.
func Generate(ctx context.Context, path string, opts ...Option) (*Result, error) {
	if path == "" {
		return nil, errors.New("definition path must not be empty")
	}

	o := &options{
		logger:           logging.Discard(),
		generatorVersion: version.GetInfo().Version,
	}

	for _, opt := range opts {
		opt(o)
	}

	ctx = logging.NewContext(ctx, o.logger)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := definition.NewLoader(definition.Options{GeneratorVersion: o.generatorVersion}).Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading definition: %w", err)
	}

	doc := res.Definition.XML()

	if o.validate {
		if result := output.ValidatePlugin(doc); result.HasErrors() {
			errs := result.Errors()
			return nil, fmt.Errorf("generated plugin is invalid: %w", &errs[0])
		}
	}

	return &Result{
		XML:        doc,
		Name:       res.Definition.Name(),
		FieldCount: len(res.Definition.Fields()),
		Files:      res.Files,
	}, nil
}
