// Package definition reads declarative filter definition files (YAML, JSON
// or TOML) and turns them into finalized filter definitions. A file may
// extend another file, in which case the base's fields come first.
package definition

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of one filter definition.
type File struct {
	// Name is the proxy name. Required.
	Name string `yaml:"name" toml:"name"`

	// Extends is the path of a base definition, relative to this file.
	Extends string `yaml:"extends" toml:"extends"`

	// Generator is a semantic version constraint on the pvfilter release
	// able to process this file (e.g. ">= 0.2.0").
	Generator string `yaml:"generator" toml:"generator"`

	Label           *string    `yaml:"label" toml:"label"`
	Help            *string    `yaml:"help" toml:"help"`
	ShortHelp       *string    `yaml:"short_help" toml:"short_help"`
	InputDataType   StringList `yaml:"input_data_type" toml:"input_data_type"`
	OutputDataType  *string    `yaml:"output_data_type" toml:"output_data_type"`
	NumberOfInputs  *int       `yaml:"number_of_inputs" toml:"number_of_inputs"`
	ScriptInvisible *bool      `yaml:"script_invisible" toml:"script_invisible"`

	Fields  []Field `yaml:"fields" toml:"fields"`
	Scripts Scripts `yaml:"scripts" toml:"scripts"`
}

// Field declares one parameter.
type Field struct {
	Name     string       `yaml:"name" toml:"name"`
	Type     string       `yaml:"type" toml:"type"`
	Label    string       `yaml:"label" toml:"label"`
	Help     string       `yaml:"help" toml:"help"`
	Default  any          `yaml:"default" toml:"default"`
	Elements int          `yaml:"elements" toml:"elements"`
	Slider   []any        `yaml:"slider" toml:"slider"`
	Enum     []EnumMember `yaml:"enum" toml:"enum"`
}

// EnumMember is one entry of an integer_enum field.
type EnumMember struct {
	Name  string `yaml:"name" toml:"name"`
	Value int    `yaml:"value" toml:"value"`
}

// Scripts holds each hook either inline or as a path relative to the
// definition file. Setting both forms of one hook is an error.
type Scripts struct {
	RequestData             string `yaml:"request_data" toml:"request_data"`
	RequestDataFile         string `yaml:"request_data_file" toml:"request_data_file"`
	RequestInformation      string `yaml:"request_information" toml:"request_information"`
	RequestInformationFile  string `yaml:"request_information_file" toml:"request_information_file"`
	RequestUpdateExtent     string `yaml:"request_update_extent" toml:"request_update_extent"`
	RequestUpdateExtentFile string `yaml:"request_update_extent_file" toml:"request_update_extent_file"`
}

// StringList accepts either a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v string
		if err := node.Decode(&v); err != nil {
			return err
		}

		*s = StringList{v}

		return nil
	case yaml.SequenceNode:
		var v []string
		if err := node.Decode(&v); err != nil {
			return err
		}

		*s = v

		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// UnmarshalTOML implements toml.Unmarshaler.
func (s *StringList) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		*s = StringList{v}
		return nil
	case []any:
		out := make(StringList, 0, len(v))

		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected a list of strings, got element %v (%T)", item, item)
			}

			out = append(out, str)
		}

		*s = out

		return nil
	default:
		return fmt.Errorf("expected a string or a list of strings, got %T", data)
	}
}
