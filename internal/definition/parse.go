package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a definition file encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// SyntaxError reports a definition file that could not be decoded.
type SyntaxError struct {
	Path string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// DetectFormat picks the format from the file extension. Unknown extensions
// are treated as YAML, which also accepts JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Parse decodes a definition. Unknown keys are rejected so that typos do not
// silently drop a setting.
func Parse(data []byte, format Format) (*File, error) {
	var f File

	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, fmt.Errorf("parsing TOML: %w", err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}

			return nil, fmt.Errorf("parsing TOML: unknown keys: %s", strings.Join(keys, ", "))
		}
	case FormatYAML, FormatJSON:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("parsing %s: empty document", strings.ToUpper(string(format)))
			}

			return nil, fmt.Errorf("parsing %s: %w", strings.ToUpper(string(format)), err)
		}
	default:
		return nil, fmt.Errorf("unsupported definition format %q", format)
	}

	return &f, nil
}
