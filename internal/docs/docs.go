// Package docs generates human-readable reference documentation for a
// programmable filter definition. It supports Markdown, HTML, and AsciiDoc
// output formats, with an optional paraview.simple usage example.
package docs

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hupe1980/pvfilter/internal/filter"
	"github.com/hupe1980/pvfilter/internal/output"
)

// FieldInfo describes a single filter parameter.
type FieldInfo struct {
	// Name is the declared field name (e.g., "field_3").
	Name string
	// Label is the GUI label (e.g., "Field 3").
	Label string
	// Property is the name paraview.simple exposes the parameter under.
	Property string
	// Type is the field kind (string, boolean, integer, double, integer_enum).
	Type string
	// Default is the space-joined default value.
	Default string
	// Choices lists enum entries as "name=value" or the slider range.
	Choices string
	// Help is the parameter documentation.
	Help string
}

// DocModel is the structured data model for documentation generation.
type DocModel struct {
	// Title overrides the document title.
	Title string
	// Name is the proxy name.
	Name string
	// Label is the menu label.
	Label string
	// Group is "filters" or "sources".
	Group string
	// Description is the long help text.
	Description string
	// InputTypes lists accepted input data types. Empty means any.
	InputTypes []string
	// OutputType is the output data set type name.
	OutputType string
	// Fields are the parameters in declaration order.
	Fields []FieldInfo
	// Scripts lists the pipeline hooks that carry a script.
	Scripts []string
	// IncludeExamples controls whether a usage example section is appended.
	IncludeExamples bool
}

// FromDefinition extracts a DocModel from a filter definition.
func FromDefinition(def *filter.Definition) *DocModel {
	s := output.Summarize(def)

	model := &DocModel{
		Name:        s.Name,
		Label:       s.Label,
		Group:       s.Group,
		Description: def.LongHelp(),
		InputTypes:  s.InputDataTypes,
		OutputType:  s.OutputDataType,
		Scripts:     s.Scripts,
	}

	for _, f := range s.Fields {
		fi := FieldInfo{
			Name:     f.Name,
			Label:    f.Label,
			Property: PythonName(f.Label),
			Type:     f.Kind,
			Default:  strings.Join(f.Defaults, " "),
			Help:     f.Help,
		}

		switch {
		case len(f.Enum) > 0:
			fi.Choices = strings.Join(f.Enum, ", ")
		case len(f.Slider) == 2:
			fi.Choices = fmt.Sprintf("%s .. %s", f.Slider[0], f.Slider[1])
		}

		model.Fields = append(model.Fields, fi)
	}

	return model
}

// PythonName returns the attribute name paraview.simple derives from a
// property label: every character that is not a letter, digit or underscore
// is dropped.
func PythonName(label string) string {
	var b strings.Builder

	for _, r := range label {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

func (m *DocModel) title() string {
	if m.Title != "" {
		return m.Title
	}

	return m.Label + " Reference"
}

// GenerateExample creates a paraview.simple script that applies the filter
// with every parameter set to its default.
func GenerateExample(model *DocModel) string {
	var b strings.Builder

	b.WriteString("from paraview.simple import *\n\n")

	if model.Group == "sources" {
		fmt.Fprintf(&b, "f = %s()\n", model.Name)
	} else {
		fmt.Fprintf(&b, "f = %s(Input=GetActiveSource())\n", model.Name)
	}

	for _, f := range model.Fields {
		fmt.Fprintf(&b, "f.%s = %s\n", f.Property, exampleValue(f))
	}

	b.WriteString("Show(f)\nRender()\n")

	return b.String()
}

func exampleValue(f FieldInfo) string {
	values := strings.Fields(f.Default)

	if f.Type == "string" {
		return fmt.Sprintf("%q", f.Default)
	}

	if len(values) == 1 {
		return values[0]
	}

	return "[" + strings.Join(values, ", ") + "]"
}
