package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/pvfilter/internal/filter"
	"github.com/hupe1980/pvfilter/internal/property"
)

// Summary describes a filter definition without its scripts.
type Summary struct {
	Name           string         `json:"name"`
	Base           string         `json:"base,omitempty"`
	Label          string         `json:"label"`
	ShortHelp      string         `json:"shortHelp,omitempty"`
	Group          string         `json:"group"`
	NumberOfInputs int            `json:"numberOfInputs"`
	InputDataTypes []string       `json:"inputDataTypes,omitempty"`
	OutputDataType string         `json:"outputDataType"`
	OutputCode     int            `json:"outputCode"`
	Fields         []FieldSummary `json:"fields"`
	Scripts        []string       `json:"scripts"`
}

// FieldSummary describes one parameter.
type FieldSummary struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Label    string   `json:"label"`
	Defaults []string `json:"defaults"`
	Help     string   `json:"help,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	Slider   []string `json:"slider,omitempty"`
}

// Summarize flattens def. Scripts lists the hooks that carry a script.
func Summarize(def *filter.Definition) *Summary {
	code, _ := filter.OutputDataSetType(def.OutputDataType())

	s := &Summary{
		Name:           def.Name(),
		Base:           def.Base(),
		Label:          def.Label(),
		ShortHelp:      def.ShortHelp(),
		Group:          "filters",
		NumberOfInputs: def.NumberOfInputs(),
		InputDataTypes: def.InputDataTypes(),
		OutputDataType: def.OutputDataType(),
		OutputCode:     code,
		Fields:         []FieldSummary{},
		Scripts:        []string{},
	}

	if def.NumberOfInputs() == 0 {
		s.Group = "sources"
	}

	for _, f := range def.Fields() {
		fs := FieldSummary{
			Name:     f.Name,
			Kind:     string(f.Property.Kind()),
			Label:    f.Property.Label(),
			Defaults: f.Property.Defaults(),
			Help:     f.Property.Help(),
		}

		if fs.Label == "" {
			fs.Label = property.LabelFromName(f.Name)
		}

		switch p := f.Property.(type) {
		case *property.IntegerEnum:
			for _, m := range p.Enum().Members() {
				fs.Enum = append(fs.Enum, fmt.Sprintf("%s=%d", m.Name, m.Value))
			}
		case *property.Double:
			if lo, hi, ok := p.Slider(); ok {
				fs.Slider = []string{lo, hi}
			}
		}

		s.Fields = append(s.Fields, fs)
	}

	scripts := def.Scripts()
	for _, hook := range []struct{ name, text string }{
		{"request_data", scripts.RequestData},
		{"request_information", scripts.RequestInformation},
		{"request_update_extent", scripts.RequestUpdateExtent},
	} {
		if hook.text != "" {
			s.Scripts = append(s.Scripts, hook.name)
		}
	}

	return s
}

// EncodeYAML renders the summary as YAML.
func EncodeYAML(s *Summary) ([]byte, error) {
	data, err := sigsyaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("serializing YAML: %w", err)
	}

	return data, nil
}

// EncodeJSON renders the summary as indented JSON. The YAML encoding is
// converted so that both formats share one field mapping.
func EncodeJSON(s *Summary) ([]byte, error) {
	data, err := EncodeYAML(s)
	if err != nil {
		return nil, err
	}

	raw, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}

	return indentJSON(raw)
}

// EncodeTable renders a header block followed by one row per field.
func EncodeTable(s *Summary) ([]byte, error) {
	var buf bytes.Buffer

	_, _ = fmt.Fprintf(&buf, "Name:    %s\n", s.Name)

	if s.Base != "" {
		_, _ = fmt.Fprintf(&buf, "Extends: %s\n", s.Base)
	}

	_, _ = fmt.Fprintf(&buf, "Label:   %s\n", s.Label)
	_, _ = fmt.Fprintf(&buf, "Group:   %s (%d input(s): %s)\n", s.Group, s.NumberOfInputs, strings.Join(s.InputDataTypes, ", "))
	_, _ = fmt.Fprintf(&buf, "Output:  %s (%d)\n", displayOutput(s.OutputDataType), s.OutputCode)
	_, _ = fmt.Fprintf(&buf, "Scripts: %s\n\n", strings.Join(s.Scripts, ", "))

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FIELD\tKIND\tLABEL\tDEFAULT\tDOMAIN")

	for _, f := range s.Fields {
		domain := "-"

		switch {
		case len(f.Enum) > 0:
			domain = strings.Join(f.Enum, " ")
		case len(f.Slider) == 2:
			domain = "[" + f.Slider[0] + ", " + f.Slider[1] + "]"
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Name, f.Kind, f.Label, strings.Join(f.Defaults, " "), domain)
	}

	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("formatting table: %w", err)
	}

	return buf.Bytes(), nil
}

func displayOutput(name string) string {
	if name == "" {
		return "same as input"
	}

	return name
}

func indentJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer

	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting JSON: %w", err)
	}

	buf.WriteByte('\n')

	return buf.Bytes(), nil
}
