package audit

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hupe1980/pvfilter/internal/filter"
	"github.com/hupe1980/pvfilter/internal/property"
)

// Python keywords. A parameter is bound as a variable before the script
// runs, so a keyword name is a syntax error.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// Names the programmable filter binds for its scripts, and commonly used
// builtins.
var shadowedNames = map[string]string{
	"self":   "the filter object",
	"inputs": "the wrapped input data sets",
	"output": "the wrapped output data set",
	"input":  "the Python builtin",
	"len":    "the Python builtin",
	"list":   "the Python builtin",
	"dict":   "the Python builtin",
	"range":  "the Python builtin",
	"str":    "the Python builtin",
	"int":    "the Python builtin",
	"float":  "the Python builtin",
	"type":   "the Python builtin",
	"min":    "the Python builtin",
	"max":    "the Python builtin",
	"sum":    "the Python builtin",
	"filter": "the Python builtin",
	"map":    "the Python builtin",
	"id":     "the Python builtin",
	"np":     "the conventional numpy alias",
	"vtk":    "the vtk module",
}

func scriptHooks(def *filter.Definition) []struct{ name, text string } {
	s := def.Scripts()

	return []struct{ name, text string }{
		{"request_data", s.RequestData},
		{"request_information", s.RequestInformation},
		{"request_update_extent", s.RequestUpdateExtent},
	}
}

func finding(def *filter.Definition, id string, sev Severity, location, msg, fix string) Finding {
	return Finding{
		RuleID:      id,
		Severity:    sev,
		Filter:      def.Name(),
		Location:    location,
		Message:     msg,
		Remediation: fix,
	}
}

// ---------------------------------------------------------------------------
// PVF-001: keyword parameter names
// ---------------------------------------------------------------------------

// KeywordNameCheck flags parameters named after a Python keyword.
type KeywordNameCheck struct{}

func (c *KeywordNameCheck) ID() string { return "PVF-001" }

func (c *KeywordNameCheck) Run(_ context.Context, def *filter.Definition) []Finding {
	var out []Finding

	for _, f := range def.Fields() {
		if pythonKeywords[f.Name] {
			out = append(out, finding(def, c.ID(), SeverityCritical, f.Name,
				fmt.Sprintf("parameter %q is a Python keyword; every script fails to compile", f.Name),
				"rename the field"))
		}
	}

	return out
}

// ---------------------------------------------------------------------------
// PVF-002: mixed indentation
// ---------------------------------------------------------------------------

// MixedIndentationCheck flags scripts whose indentation mixes tabs and
// spaces.
type MixedIndentationCheck struct{}

func (c *MixedIndentationCheck) ID() string { return "PVF-002" }

func (c *MixedIndentationCheck) Run(_ context.Context, def *filter.Definition) []Finding {
	var out []Finding

	for _, hook := range scriptHooks(def) {
		var tabs, spaces bool

		for _, line := range strings.Split(hook.text, "\n") {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			tabs = tabs || strings.Contains(indent, "\t")
			spaces = spaces || strings.Contains(indent, " ")
		}

		if tabs && spaces {
			out = append(out, finding(def, c.ID(), SeverityHigh, hook.name,
				"script indentation mixes tabs and spaces",
				"indent with spaces only"))
		}
	}

	return out
}

// ---------------------------------------------------------------------------
// PVF-003: shadowed names
// ---------------------------------------------------------------------------

// ShadowedNameCheck flags parameters that hide a name scripts rely on.
type ShadowedNameCheck struct{}

func (c *ShadowedNameCheck) ID() string { return "PVF-003" }

func (c *ShadowedNameCheck) Run(_ context.Context, def *filter.Definition) []Finding {
	var out []Finding

	for _, f := range def.Fields() {
		if what, ok := shadowedNames[f.Name]; ok {
			out = append(out, finding(def, c.ID(), SeverityMedium, f.Name,
				fmt.Sprintf("parameter %q shadows %s inside the scripts", f.Name, what),
				"rename the field"))
		}
	}

	return out
}

// ---------------------------------------------------------------------------
// PVF-004: unused parameters
// ---------------------------------------------------------------------------

// UnusedFieldCheck flags parameters no script mentions.
type UnusedFieldCheck struct{}

func (c *UnusedFieldCheck) ID() string { return "PVF-004" }

func (c *UnusedFieldCheck) Run(_ context.Context, def *filter.Definition) []Finding {
	var (
		out  []Finding
		text strings.Builder
	)

	for _, hook := range scriptHooks(def) {
		text.WriteString(hook.text)
		text.WriteByte('\n')
	}

	scripts := text.String()

	for _, f := range def.Fields() {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(f.Name) + `\b`)
		if !re.MatchString(scripts) {
			out = append(out, finding(def, c.ID(), SeverityLow, f.Name,
				fmt.Sprintf("parameter %q is not used by any script", f.Name),
				"use the parameter or remove the field"))
		}
	}

	return out
}

// ---------------------------------------------------------------------------
// PVF-005: slider defaults
// ---------------------------------------------------------------------------

// SliderDefaultCheck flags double defaults outside their slider range. The
// host clamps such values silently.
type SliderDefaultCheck struct{}

func (c *SliderDefaultCheck) ID() string { return "PVF-005" }

func (c *SliderDefaultCheck) Run(_ context.Context, def *filter.Definition) []Finding {
	var out []Finding

	for _, f := range def.Fields() {
		d, ok := f.Property.(*property.Double)
		if !ok {
			continue
		}

		minS, maxS, ok := d.Slider()
		if !ok {
			continue
		}

		lo, errLo := strconv.ParseFloat(minS, 64)
		hi, errHi := strconv.ParseFloat(maxS, 64)

		if errLo != nil || errHi != nil {
			continue
		}

		for _, v := range d.Defaults() {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil || (x >= lo && x <= hi) {
				continue
			}

			out = append(out, finding(def, c.ID(), SeverityMedium, f.Name,
				fmt.Sprintf("default %s is outside the slider range [%s, %s]", v, minS, maxS),
				"move the default into the range or widen the slider"))

			break
		}
	}

	return out
}

// ---------------------------------------------------------------------------
// PVF-006: parameter documentation
// ---------------------------------------------------------------------------

// FieldHelpCheck flags parameters without help text.
type FieldHelpCheck struct{}

func (c *FieldHelpCheck) ID() string { return "PVF-006" }

func (c *FieldHelpCheck) Run(_ context.Context, def *filter.Definition) []Finding {
	var out []Finding

	for _, f := range def.Fields() {
		if strings.TrimSpace(f.Property.Help()) == "" {
			out = append(out, finding(def, c.ID(), SeverityLow, f.Name,
				fmt.Sprintf("parameter %q has no help text", f.Name),
				"add help to the field; the host shows it as a tooltip"))
		}
	}

	return out
}

// ---------------------------------------------------------------------------
// PVF-007: filter documentation
// ---------------------------------------------------------------------------

// FilterHelpCheck flags filters without any documentation.
type FilterHelpCheck struct{}

func (c *FilterHelpCheck) ID() string { return "PVF-007" }

func (c *FilterHelpCheck) Run(_ context.Context, def *filter.Definition) []Finding {
	if strings.TrimSpace(def.LongHelp()) != "" || strings.TrimSpace(def.ShortHelp()) != "" {
		return nil
	}

	return []Finding{finding(def, c.ID(), SeverityLow, "",
		"filter has no documentation",
		"set help or short_help")}
}

// ---------------------------------------------------------------------------
// PVF-008: single-member enumerations
// ---------------------------------------------------------------------------

// SingleMemberEnumCheck flags enumerations that offer no choice.
type SingleMemberEnumCheck struct{}

func (c *SingleMemberEnumCheck) ID() string { return "PVF-008" }

func (c *SingleMemberEnumCheck) Run(_ context.Context, def *filter.Definition) []Finding {
	var out []Finding

	for _, f := range def.Fields() {
		e, ok := f.Property.(*property.IntegerEnum)
		if !ok || len(e.Enum().Members()) != 1 {
			continue
		}

		out = append(out, finding(def, c.ID(), SeverityInfo, f.Name,
			fmt.Sprintf("enumeration %q has a single member", f.Name),
			"add members or drop the field"))
	}

	return out
}
