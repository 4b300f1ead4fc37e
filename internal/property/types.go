package property

import (
	"math"

	"github.com/hupe1980/pvfilter/internal/xmltree"
)

// String is a text parameter. Strings are always scalar.
type String struct{ base }

// NewString creates a string property. The default is "".
func NewString(label string, opts ...Option) (*String, error) {
	o := applyOptions(opts)

	if err := o.checkLabelHelp(label); err != nil {
		return nil, err
	}

	if err := o.rejectSlider(label, KindString); err != nil {
		return nil, err
	}

	vals, err := o.values(label, "")
	if err != nil {
		return nil, err
	}

	if len(vals) > 1 {
		return nil, configErrorf(label, "only numbers can have more than 1 value")
	}

	s, ok := vals[0].(string)
	if !ok {
		return nil, configErrorf(label, "string default must be a string, got %s", describe(vals[0]))
	}

	if err := checkText(label, "default", s); err != nil {
		return nil, err
	}

	return &String{base{label: label, help: o.help, defaults: []string{s}}}, nil
}

func (*String) Kind() Kind { return KindString }

func (*String) Tag() string { return TagString }

func (p *String) Element(name string) *xmltree.Element {
	return p.element(TagString, name)
}

// Boolean is a checkbox parameter, rendered as a single integer with a
// boolean domain.
type Boolean struct{ base }

// NewBoolean creates a boolean property. The default is 0 (unchecked).
func NewBoolean(label string, opts ...Option) (*Boolean, error) {
	o := applyOptions(opts)

	if err := o.checkLabelHelp(label); err != nil {
		return nil, err
	}

	if err := o.rejectSlider(label, KindBoolean); err != nil {
		return nil, err
	}

	vals, err := o.values(label, 0)
	if err != nil {
		return nil, err
	}

	if len(vals) > 1 {
		return nil, configErrorf(label, "boolean properties can only have 1 entry")
	}

	s, ok := formatBool(vals[0])
	if !ok {
		return nil, configErrorf(label, "boolean default must be true, false, 0 or 1, got %s", describe(vals[0]))
	}

	return &Boolean{base{label: label, help: o.help, defaults: []string{s}}}, nil
}

func (*Boolean) Kind() Kind { return KindBoolean }

func (*Boolean) Tag() string { return TagInt }

func (p *Boolean) Element(name string) *xmltree.Element {
	return p.element(TagInt, name).Append(xmltree.New("BooleanDomain", "name", "bool"))
}

// Integer is a parameter of one to three integers.
type Integer struct{ base }

// NewInteger creates an integer property. The default is 0.
func NewInteger(label string, opts ...Option) (*Integer, error) {
	o := applyOptions(opts)

	if err := o.checkLabelHelp(label); err != nil {
		return nil, err
	}

	if err := o.rejectSlider(label, KindInteger); err != nil {
		return nil, err
	}

	vals, err := o.values(label, 0)
	if err != nil {
		return nil, err
	}

	defaults := make([]string, len(vals))

	for i, v := range vals {
		s, ok := formatInt(v)
		if !ok {
			return nil, configErrorf(label, "integer default must be an integer, got %s", describe(v))
		}

		if !hostInt(s) {
			return nil, configErrorf(label, "integer default %s is outside the range %d to %d", s, math.MinInt32, math.MaxInt32)
		}

		defaults[i] = s
	}

	return &Integer{base{label: label, help: o.help, defaults: defaults}}, nil
}

func (*Integer) Kind() Kind { return KindInteger }

func (*Integer) Tag() string { return TagInt }

func (p *Integer) Element(name string) *xmltree.Element {
	return p.element(TagInt, name)
}

// Double is a parameter of one to three floating point numbers, optionally
// bounded by a slider range.
type Double struct {
	base

	hasSlider bool
	sliderMin string
	sliderMax string
}

// NewDouble creates a double property. The default is 0.0.
func NewDouble(label string, opts ...Option) (*Double, error) {
	o := applyOptions(opts)

	if err := o.checkLabelHelp(label); err != nil {
		return nil, err
	}

	vals, err := o.values(label, "0.0")
	if err != nil {
		return nil, err
	}

	p := &Double{base: base{label: label, help: o.help, defaults: make([]string, len(vals))}}

	for i, v := range vals {
		s, _, ok := formatDouble(v)
		if !ok {
			return nil, configErrorf(label, "double default must be a number, got %s", describe(v))
		}

		p.defaults[i] = s
	}

	if o.slider != nil {
		minStr, minVal, okMin := formatDouble(o.slider[0])
		maxStr, maxVal, okMax := formatDouble(o.slider[1])

		if !okMin || !okMax {
			return nil, configErrorf(label, "slider must be a pair of numbers, got [%v, %v]", o.slider[0], o.slider[1])
		}

		if minVal > maxVal {
			return nil, configErrorf(label, "slider minimum %s is greater than maximum %s", minStr, maxStr)
		}

		p.hasSlider = true
		p.sliderMin = minStr
		p.sliderMax = maxStr
	}

	return p, nil
}

func (*Double) Kind() Kind { return KindDouble }

func (*Double) Tag() string { return TagDouble }

// Slider returns the slider bounds, if any.
func (p *Double) Slider() (minValue, maxValue string, ok bool) {
	return p.sliderMin, p.sliderMax, p.hasSlider
}

func (p *Double) Element(name string) *xmltree.Element {
	root := p.element(TagDouble, name)

	if p.hasSlider {
		root.Append(xmltree.New("DoubleRangeDomain",
			"name", "range",
			"min", p.sliderMin,
			"max", p.sliderMax,
		))
	}

	return root
}

// IntegerEnum is a drop-down parameter whose value is one member of an
// enumeration.
type IntegerEnum struct {
	base

	enum Enum
}

// NewIntegerEnum creates an enumeration property. A default member is
// required; it may be given by member name or as a Member.
func NewIntegerEnum(label string, enum Enum, opts ...Option) (*IntegerEnum, error) {
	o := applyOptions(opts)

	if err := o.checkLabelHelp(label); err != nil {
		return nil, err
	}

	if err := o.rejectSlider(label, KindIntegerEnum); err != nil {
		return nil, err
	}

	if len(enum.members) == 0 {
		return nil, configErrorf(label, "must specify an enumeration with at least one member")
	}

	if !o.hasDefault {
		return nil, configErrorf(label, "default must be a member of enumeration %s", enum.name)
	}

	vals, err := o.values(label, nil)
	if err != nil {
		return nil, err
	}

	if len(vals) > 1 {
		return nil, configErrorf(label, "enumeration properties can only have 1 entry")
	}

	var (
		m  Member
		ok bool
	)

	switch d := vals[0].(type) {
	case string:
		m, ok = enum.Lookup(d)
	case Member:
		m, ok = enum.Lookup(d.Name)
		ok = ok && m.Value == d.Value
	}

	if !ok {
		return nil, configErrorf(label, "default %v is not a member of enumeration %s", vals[0], enum.name)
	}

	return &IntegerEnum{
		base: base{label: label, help: o.help, defaults: []string{m.valueString()}},
		enum: enum,
	}, nil
}

func (*IntegerEnum) Kind() Kind { return KindIntegerEnum }

func (*IntegerEnum) Tag() string { return TagInt }

// Enum returns the enumeration backing the property.
func (p *IntegerEnum) Enum() Enum { return p.enum }

func (p *IntegerEnum) Element(name string) *xmltree.Element {
	domain := xmltree.New("EnumerationDomain", "name", "enum")

	for _, m := range p.enum.members {
		domain.Append(xmltree.New("Entry", "value", m.valueString(), "text", m.Name))
	}

	return p.element(TagInt, name).Append(domain)
}
