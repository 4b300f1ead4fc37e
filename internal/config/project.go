package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Project lists the definitions a repository generates when `pvfilter
// generate` runs without arguments. Load reads it from the same file as the
// global keys:
//
//	definitions:
//	  - "filters/**/*.yaml"
//	exclude:
//	  - "**/base.yaml"
//	outputDir: plugins
type Project struct {
	// Definitions are doublestar glob patterns relative to the working
	// directory.
	Definitions []string `mapstructure:"definitions" json:"definitions,omitempty"`

	// Exclude drops matches of Definitions, typically shared base files.
	Exclude []string `mapstructure:"exclude" json:"exclude,omitempty"`

	// OutputDir receives one <Name>.xml per definition.
	OutputDir string `mapstructure:"outputDir" json:"outputDir,omitempty"`
}

// Validate checks every pattern for glob syntax errors.
func (p *Project) Validate() error {
	for i, pattern := range p.Definitions {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("definitions[%d]: invalid glob pattern %q", i, pattern)
		}
	}

	for i, pattern := range p.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("exclude[%d]: invalid glob pattern %q", i, pattern)
		}
	}

	return nil
}

// Excluded reports whether path matches one of the exclude patterns.
func (p *Project) Excluded(path string) bool {
	for _, pattern := range p.Exclude {
		if ok, _ := doublestar.PathMatch(pattern, path); ok {
			return true
		}
	}

	return false
}

// IsEmpty returns true if no definitions are configured.
func (p *Project) IsEmpty() bool {
	return len(p.Definitions) == 0
}
