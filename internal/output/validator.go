package output

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hupe1980/pvfilter/internal/filter"
	"github.com/hupe1980/pvfilter/internal/xmltree"
)

// ValidationSeverity indicates the severity of a validation finding.
type ValidationSeverity int

const (
	// SeverityError means the host will reject or misread the plugin.
	SeverityError ValidationSeverity = iota
	// SeverityWarning means the plugin loads but may behave unexpectedly.
	SeverityWarning
)

// String returns the severity name.
func (s ValidationSeverity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// ValidationFinding is a single validation issue. Field is a path such as
// "SourceProxy[MyFilter]/IntVectorProperty[count]".
type ValidationFinding struct {
	Severity ValidationSeverity
	Field    string
	Message  string
}

// Error implements the error interface.
func (f *ValidationFinding) Error() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Field, f.Message)
}

// ValidationResult holds all findings from a validation run.
type ValidationResult struct {
	Findings []ValidationFinding
}

// Errors returns only error-severity findings.
func (r *ValidationResult) Errors() []ValidationFinding {
	return r.filter(SeverityError)
}

// Warnings returns only warning-severity findings.
func (r *ValidationResult) Warnings() []ValidationFinding {
	return r.filter(SeverityWarning)
}

// HasErrors returns true if any error-severity findings exist.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors()) > 0
}

// HasWarnings returns true if any warning-severity findings exist.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings()) > 0
}

func (r *ValidationResult) filter(sev ValidationSeverity) []ValidationFinding {
	var result []ValidationFinding

	for _, f := range r.Findings {
		if f.Severity == sev {
			result = append(result, f)
		}
	}

	return result
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// vectorTags are the property elements a programmable filter proxy may hold.
var vectorTags = map[string]bool{
	"IntVectorProperty":    true,
	"DoubleVectorProperty": true,
	"StringVectorProperty": true,
}

// ValidatePlugin checks a plugin document for the structure the host
// expects from a programmable filter. Documents that do not parse yield a
// single error finding.
func ValidatePlugin(doc []byte) *ValidationResult {
	v := &validator{}

	root, err := xmltree.ParseBytes(doc)
	if err != nil {
		v.addError("document", err.Error())
		return &v.result
	}

	v.validateRoot(root)

	return &v.result
}

type validator struct {
	result ValidationResult
}

func (v *validator) addError(field, msg string) {
	v.result.Findings = append(v.result.Findings, ValidationFinding{
		Severity: SeverityError,
		Field:    field,
		Message:  msg,
	})
}

func (v *validator) addWarning(field, msg string) {
	v.result.Findings = append(v.result.Findings, ValidationFinding{
		Severity: SeverityWarning,
		Field:    field,
		Message:  msg,
	})
}

func (v *validator) validateRoot(root *xmltree.Element) {
	if root.Tag != "ServerManagerConfiguration" {
		v.addError(root.Tag, "root element must be ServerManagerConfiguration")
		return
	}

	groups := root.FindAll("ProxyGroup")
	if len(groups) == 0 {
		v.addError("ServerManagerConfiguration", "no ProxyGroup found")
		return
	}

	for _, g := range groups {
		name := g.Value("name")
		if name != "filters" && name != "sources" {
			v.addError("ProxyGroup["+name+"]", `group name must be "filters" or "sources"`)
		}

		proxies := g.FindAll("SourceProxy")
		if len(proxies) == 0 {
			v.addWarning("ProxyGroup["+name+"]", "group holds no SourceProxy")
		}

		for _, p := range proxies {
			v.validateProxy(name, p)
		}
	}
}

func (v *validator) validateProxy(group string, p *xmltree.Element) {
	name := p.Value("name")
	path := "SourceProxy[" + name + "]"

	if !identifier.MatchString(name) {
		v.addError(path, fmt.Sprintf("proxy name %q must be an identifier", name))
	}

	if class := p.Value("class"); class != filter.ProgrammableFilterClass {
		v.addError(path, fmt.Sprintf("class is %q, expected %s", class, filter.ProgrammableFilterClass))
	}

	if p.Value("label") == "" {
		v.addWarning(path, "label is empty; the host shows the proxy name")
	}

	if doc := p.Find("Documentation"); doc == nil || doc.Value("short_help") == "" {
		v.addWarning(path, "no short help documentation")
	}

	input := p.Find("InputProperty")

	switch {
	case group == "filters" && input == nil:
		v.addError(path, "filters need an InputProperty")
	case group == "sources" && input != nil:
		v.addError(path, "sources must not declare an InputProperty")
	case input != nil:
		v.validateInput(path, input)
	}

	seen := make(map[string]bool)

	for _, c := range p.Children {
		if !vectorTags[c.Tag] {
			continue
		}

		pname := c.Value("name")
		ppath := path + "/" + c.Tag + "[" + pname + "]"

		if seen[pname] {
			v.addError(ppath, "duplicate property name")
		}

		seen[pname] = true

		v.validateProperty(ppath, c)
	}

	for _, required := range []string{filter.OutputDataSetTypeName, filter.ScriptPropertyName} {
		if !seen[required] {
			v.addError(path, fmt.Sprintf("missing %s property", required))
		}
	}
}

func (v *validator) validateInput(path string, input *xmltree.Element) {
	ipath := path + "/InputProperty"

	domain := input.Find("DataTypeDomain")
	if domain == nil || len(domain.FindAll("DataType")) == 0 {
		v.addError(ipath, "no accepted input data types")
	}

	if input.Value("multiple_input") == "1" && input.Value("command") != "AddInputConnection" {
		v.addError(ipath, "multiple inputs require command AddInputConnection")
	}
}

func (v *validator) validateProperty(path string, p *xmltree.Element) {
	name := p.Value("name")
	defaults := p.Value("default_values")

	switch name {
	case filter.OutputDataSetTypeName:
		v.validateOutputType(path, defaults)
		return
	case filter.ScriptPropertyName:
		if strings.TrimSpace(defaults) == "" {
			v.addError(path, "RequestData script is empty")
		}

		return
	case filter.InformationScriptName, filter.UpdateExtentScriptName:
		return
	}

	if !identifier.MatchString(name) {
		v.addError(path, "property name must be an identifier")
	}

	if p.Value("command") != "SetParameter" {
		v.addError(path, "parameter properties must use command SetParameter")
	}

	n, err := strconv.Atoi(p.Value("number_of_elements"))
	if err != nil || n < 1 {
		v.addError(path, fmt.Sprintf("invalid number_of_elements %q", p.Value("number_of_elements")))
		return
	}

	if p.Tag == "StringVectorProperty" {
		if n != 1 {
			v.addError(path, "string parameters hold exactly one value")
		}

		return
	}

	values := strings.Fields(defaults)
	if len(values) != n {
		v.addError(path, fmt.Sprintf("default_values has %d value(s), number_of_elements is %d", len(values), n))
		return
	}

	for _, val := range values {
		if !numeric(p.Tag, val) {
			v.addError(path, fmt.Sprintf("default value %q is not valid for %s", val, p.Tag))
			return
		}
	}

	if p.Find("BooleanDomain") != nil {
		for _, val := range values {
			if val != "0" && val != "1" {
				v.addError(path, fmt.Sprintf("boolean default %q must be 0 or 1", val))
			}
		}
	}

	if enum := p.Find("EnumerationDomain"); enum != nil {
		v.validateEnum(path, enum, values)
	}

	if r := p.Find("DoubleRangeDomain"); r != nil {
		v.validateRange(path, r)
	}
}

func (v *validator) validateOutputType(path, value string) {
	code, err := strconv.Atoi(value)
	if err != nil {
		v.addError(path, fmt.Sprintf("output type %q is not an integer", value))
		return
	}

	for _, name := range append(filter.OutputDataTypes(), "") {
		if c, _ := filter.OutputDataSetType(name); c == code {
			return
		}
	}

	v.addError(path, fmt.Sprintf("unknown output data set type code %d", code))
}

func (v *validator) validateEnum(path string, enum *xmltree.Element, values []string) {
	entries := enum.FindAll("Entry")
	if len(entries) == 0 {
		v.addError(path, "enumeration has no entries")
		return
	}

	known := make(map[string]bool, len(entries))
	for _, e := range entries {
		known[e.Value("value")] = true
	}

	for _, val := range values {
		if !known[val] {
			v.addError(path, fmt.Sprintf("default %s is not an enumeration entry", val))
		}
	}
}

func (v *validator) validateRange(path string, r *xmltree.Element) {
	lo, errLo := strconv.ParseFloat(r.Value("min"), 64)
	hi, errHi := strconv.ParseFloat(r.Value("max"), 64)

	if errLo != nil || errHi != nil {
		v.addError(path, "range bounds must be numbers")
		return
	}

	if lo > hi {
		v.addError(path, fmt.Sprintf("range minimum %s is greater than maximum %s", r.Value("min"), r.Value("max")))
	}
}

func numeric(tag, s string) bool {
	if tag == "IntVectorProperty" {
		_, err := strconv.ParseInt(s, 10, 32)
		return err == nil
	}

	_, err := strconv.ParseFloat(s, 64)

	return err == nil
}

// FormatValidationResult returns a human-readable string of all findings.
func FormatValidationResult(result *ValidationResult) string {
	if len(result.Findings) == 0 {
		return "Validation passed: no issues found."
	}

	var sb strings.Builder

	errs := result.Errors()
	warnings := result.Warnings()

	if len(errs) > 0 {
		_, _ = fmt.Fprintf(&sb, "Errors (%d):\n", len(errs))

		for _, f := range errs {
			_, _ = fmt.Fprintf(&sb, "  - %s: %s\n", f.Field, f.Message)
		}
	}

	if len(warnings) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}

		_, _ = fmt.Fprintf(&sb, "Warnings (%d):\n", len(warnings))

		for _, f := range warnings {
			_, _ = fmt.Fprintf(&sb, "  - %s: %s\n", f.Field, f.Message)
		}
	}

	return sb.String()
}
