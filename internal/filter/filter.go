// Package filter collects the description of one ParaView Python
// programmable filter and serializes it into a ServerManagerConfiguration
// document the host's plugin manager can load.
//
// A Definition is built once by [New] (or derived from another one by
// [Definition.Extend]) and is immutable afterwards. Fields keep their
// declaration order, which is the order the host maps property values back
// onto the script's parameters.
package filter

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/hupe1980/pvfilter/internal/property"
	"github.com/hupe1980/pvfilter/internal/xmltree"
)

// ProgrammableFilterClass is the VTK class every generated proxy wraps.
const ProgrammableFilterClass = "vtkPythonProgrammableFilter"

// Names of the properties every generated proxy carries. Fields may not
// reuse them.
const (
	InputPropertyName      = "Input"
	OutputDataSetTypeName  = "OutputDataSetType"
	ScriptPropertyName     = "Script"
	InformationScriptName  = "InformationScript"
	UpdateExtentScriptName = "UpdateExtentScript"
)

const defaultNumberOfInputs = 1

var reservedNames = map[string]struct{}{
	InputPropertyName:      {},
	OutputDataSetTypeName:  {},
	ScriptPropertyName:     {},
	InformationScriptName:  {},
	UpdateExtentScriptName: {},
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// outputDataTypes maps VTK data object class names onto the integer codes
// vtkPythonProgrammableFilter.SetOutputDataSetType expects.
var outputDataTypes = map[string]int{
	"":                          8, // same as input
	"vtkPolyData":               0,
	"vtkStructuredGrid":         2,
	"vtkRectilinearGrid":        3,
	"vtkUnstructuredGrid":       4,
	"vtkImageData":              6,
	"vtkUniformGrid":            10,
	"vtkMultiblockDataSet":      13,
	"vtkMultiBlockDataSet":      13,
	"vtkHierarchicalBoxDataSet": 15,
	"vtkTable":                  19,
}

// OutputDataSetType returns the integer code for an output data type name.
// The empty name means "same as input".
func OutputDataSetType(name string) (int, bool) {
	code, ok := outputDataTypes[name]
	return code, ok
}

// OutputDataTypes returns the recognised output type names, sorted.
func OutputDataTypes() []string {
	names := make([]string, 0, len(outputDataTypes))
	for n := range outputDataTypes {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Scripts holds the literal source of the three script hooks.
type Scripts struct {
	// RequestData is the main computation. Required.
	RequestData string
	// RequestInformation answers the pipeline's information request.
	RequestInformation string
	// RequestUpdateExtent answers the pipeline's update-extent request.
	RequestUpdateExtent string
}

// Field is one registered parameter.
type Field struct {
	Name     string
	Property property.Property
}

// Definition is a finalized filter description.
type Definition struct {
	name            string
	base            string
	label           string
	longHelp        string
	shortHelp       string
	hasShortHelp    bool
	inputDataTypes  []string
	outputDataType  string
	numberOfInputs  int
	scriptInvisible bool
	scripts         Scripts
	fields          []Field
}

// New builds and validates a definition. Options are applied in order;
// WithField options register fields in the order they appear.
func New(name string, opts ...Option) (*Definition, error) {
	d := &Definition{
		name:            name,
		numberOfInputs:  defaultNumberOfInputs,
		scriptInvisible: true,
	}

	return d.finish(opts)
}

// Extend derives a new definition from d. The derived definition starts with
// every field of d, followed by the fields registered through opts, and
// inherits d's other attributes unless opts override them.
func (d *Definition) Extend(name string, opts ...Option) (*Definition, error) {
	derived := &Definition{
		name:            name,
		base:            d.name,
		label:           d.label,
		longHelp:        d.longHelp,
		shortHelp:       d.shortHelp,
		hasShortHelp:    d.hasShortHelp,
		inputDataTypes:  append([]string(nil), d.inputDataTypes...),
		outputDataType:  d.outputDataType,
		numberOfInputs:  d.numberOfInputs,
		scriptInvisible: d.scriptInvisible,
		scripts:         d.scripts,
		fields:          append([]Field(nil), d.fields...),
	}

	return derived.finish(opts)
}

func (d *Definition) finish(opts []Option) (*Definition, error) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(d); err != nil {
			return nil, fmt.Errorf("filter %s: %w", d.name, err)
		}
	}

	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("filter %s: %w", d.name, err)
	}

	return d, nil
}

func (d *Definition) validate() error {
	if !identifierRegex.MatchString(d.name) {
		return &property.ConfigError{Message: fmt.Sprintf("filter name %q must be an identifier", d.name)}
	}

	if d.numberOfInputs < 0 {
		return &property.ConfigError{Field: "number_of_inputs", Message: fmt.Sprintf("must not be negative, got %d", d.numberOfInputs)}
	}

	if d.numberOfInputs >= 1 && len(d.inputDataTypes) == 0 {
		return &property.ConfigError{Field: "input_data_type", Message: "required when the filter takes inputs"}
	}

	for _, t := range d.inputDataTypes {
		if t == "" {
			return &property.ConfigError{Field: "input_data_type", Message: "data type names must not be empty"}
		}
	}

	if _, ok := OutputDataSetType(d.outputDataType); !ok {
		return &property.ConfigError{
			Field:   "output_data_type",
			Message: fmt.Sprintf("unrecognized output data type %q", d.outputDataType),
		}
	}

	if d.scripts.RequestData == "" {
		return &property.ConfigError{Field: "request_data", Message: "script is required"}
	}

	return d.checkText()
}

// checkText rejects text the generated document could not carry.
func (d *Definition) checkText() error {
	texts := []struct{ field, value string }{
		{"label", d.label},
		{"help", d.longHelp},
		{"short_help", d.shortHelp},
		{"request_data", d.scripts.RequestData},
		{"request_information", d.scripts.RequestInformation},
		{"request_update_extent", d.scripts.RequestUpdateExtent},
	}

	for _, t := range d.inputDataTypes {
		texts = append(texts, struct{ field, value string }{"input_data_type", t})
	}

	for _, t := range texts {
		if err := xmltree.CheckText(t.value); err != nil {
			return &property.ConfigError{Field: t.field, Message: err.Error()}
		}
	}

	return nil
}

// add registers a field. Declaration order is preserved.
func (d *Definition) add(name string, p property.Property) error {
	if p == nil {
		return &property.ConfigError{Field: name, Message: "property must not be nil"}
	}

	if !identifierRegex.MatchString(name) {
		return &property.ConfigError{Field: name, Message: "field name must be an identifier"}
	}

	if _, reserved := reservedNames[name]; reserved {
		return &property.ConfigError{Field: name, Message: "field name is reserved for a built-in property"}
	}

	for _, f := range d.fields {
		if f.Name == name {
			return &property.ConfigError{Field: name, Message: "duplicate field name"}
		}
	}

	d.fields = append(d.fields, Field{Name: name, Property: p})

	return nil
}

// Name is the proxy name (the SourceProxy name attribute).
func (d *Definition) Name() string { return d.name }

// Base is the name of the definition this one extends, or "".
func (d *Definition) Base() string { return d.base }

// Label is the menu label, falling back to the proxy name.
func (d *Definition) Label() string {
	if d.label == "" {
		return d.name
	}

	return d.label
}

// LongHelp is the cleaned long help text.
func (d *Definition) LongHelp() string { return d.longHelp }

// ShortHelp returns the short help, falling back to the long help.
func (d *Definition) ShortHelp() string {
	if d.hasShortHelp {
		return d.shortHelp
	}

	return d.longHelp
}

// InputDataTypes returns the accepted input data types.
func (d *Definition) InputDataTypes() []string {
	return append([]string(nil), d.inputDataTypes...)
}

// OutputDataType is the output data type name ("" = same as input).
func (d *Definition) OutputDataType() string { return d.outputDataType }

// NumberOfInputs is the number of input connections.
func (d *Definition) NumberOfInputs() int { return d.numberOfInputs }

// ScriptInvisible reports whether the script properties are hidden.
func (d *Definition) ScriptInvisible() bool { return d.scriptInvisible }

// Scripts returns the script hooks.
func (d *Definition) Scripts() Scripts { return d.scripts }

// Fields returns the registered fields in declaration order.
func (d *Definition) Fields() []Field {
	return append([]Field(nil), d.fields...)
}

// Field looks a field up by name.
func (d *Definition) Field(name string) (Field, bool) {
	for _, f := range d.fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}
