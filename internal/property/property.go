// Package property implements the typed field descriptors of a programmable
// filter. Each descriptor renders one ParaView vector property element with
// its domain, and rejects invalid defaults when it is constructed rather than
// when the document is rendered.
package property

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hupe1980/pvfilter/internal/xmltree"
)

// MaxElements is the largest number of values a single property may carry.
const MaxElements = 3

// Vector property tags understood by the ParaView server manager.
const (
	TagInt    = "IntVectorProperty"
	TagDouble = "DoubleVectorProperty"
	TagString = "StringVectorProperty"
)

// Kind names the descriptor type. The values double as the "type" key of a
// definition file.
type Kind string

// Supported kinds.
const (
	KindString      Kind = "string"
	KindBoolean     Kind = "boolean"
	KindInteger     Kind = "integer"
	KindDouble      Kind = "double"
	KindIntegerEnum Kind = "integer_enum"
)

// Property is one user-facing filter parameter. The parameter name is not
// part of the descriptor; it is bound when the descriptor is registered on a
// filter definition.
type Property interface {
	// Kind reports the descriptor type.
	Kind() Kind
	// Tag is the XML element name the property renders as.
	Tag() string
	// Label is the explicit label, or "" when the label derives from the name.
	Label() string
	// Help is the optional documentation text.
	Help() string
	// Defaults returns the stringified default values in order.
	Defaults() []string
	// Element renders the property for the given parameter name.
	Element(name string) *xmltree.Element
}

// ConfigError reports an invalid field declaration.
type ConfigError struct {
	// Field names the offending field. Descriptor constructors only know
	// the label and report that; definition files replace it with the
	// field name.
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Message
	}

	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// checkText rejects text the generated document could not carry.
func checkText(field, what, s string) error {
	if err := xmltree.CheckText(s); err != nil {
		return configErrorf(field, "%s: %v", what, err)
	}

	return nil
}

// checkLabelHelp validates the text every descriptor renders.
func (o *options) checkLabelHelp(label string) error {
	if err := checkText("", fmt.Sprintf("label %q", label), label); err != nil {
		return err
	}

	return checkText(label, "help", o.help)
}

// base carries the attributes every descriptor shares.
type base struct {
	label    string
	help     string
	defaults []string
}

func (b *base) Label() string { return b.label }

func (b *base) Help() string { return b.help }

func (b *base) Defaults() []string {
	return append([]string(nil), b.defaults...)
}

// DefaultValues is the space-joined default_values attribute.
func (b *base) DefaultValues() string {
	return strings.Join(b.defaults, " ")
}

func (b *base) element(tag, name string) *xmltree.Element {
	label := b.label
	if label == "" {
		label = LabelFromName(name)
	}

	root := xmltree.New(tag,
		"name", name,
		"label", label,
		"initial_string", name,
		"command", "SetParameter",
		"animateable", "1",
		"default_values", b.DefaultValues(),
		"number_of_elements", fmt.Sprint(len(b.defaults)),
	)

	if b.help != "" {
		root.Append(xmltree.New("Documentation").WithText(b.help))
	}

	return root
}

// LabelFromName derives a display label from a parameter name: underscores
// become spaces and every word is title-cased.
func LabelFromName(name string) string {
	s := strings.ReplaceAll(name, "_", " ")

	var (
		sb        strings.Builder
		prevCased bool
	)

	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && !prevCased:
			sb.WriteRune(unicode.ToUpper(r))

			prevCased = true
		case unicode.IsLetter(r):
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(r)

			prevCased = false
		}
	}

	return sb.String()
}
