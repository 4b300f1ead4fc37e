package property

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testEnum(t *testing.T) Enum {
	t.Helper()

	e, err := NewEnum("MyEnum", Member{Name: "value1", Value: 1}, Member{Name: "value2", Value: 2})
	require.NoError(t, err)

	return e
}

func requireConfigError(t *testing.T, err error, contains string) {
	t.Helper()

	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), contains)
}

// ---------------------------------------------------------------------------
// LabelFromName
// ---------------------------------------------------------------------------

func TestLabelFromName(t *testing.T) {
	tests := map[string]string{
		"scalar_str":    "Scalar Str",
		"double_slider": "Double Slider",
		"many2ints":     "Many2Ints",
		"HTTPPort":      "Httpport",
		"x":             "X",
		"_private":      " Private",
	}

	for in, want := range tests {
		assert.Equal(t, want, LabelFromName(in), "input=%s", in)
	}
}

// ---------------------------------------------------------------------------
// String
// ---------------------------------------------------------------------------

func TestString_Defaults(t *testing.T) {
	p, err := NewString("scalar string", WithHelp("scalar string"))
	require.NoError(t, err)

	assert.Equal(t, KindString, p.Kind())
	assert.Equal(t, TagString, p.Tag())
	assert.Equal(t, []string{""}, p.Defaults())

	want := `<StringVectorProperty name="scalar_str" label="scalar string" initial_string="scalar_str" command="SetParameter" animateable="1" default_values="" number_of_elements="1">
  <Documentation>scalar string</Documentation>
</StringVectorProperty>
`
	assert.Equal(t, want, p.Element("scalar_str").String())
}

func TestString_RejectsMultipleValues(t *testing.T) {
	_, err := NewString("s", WithDefault("a", "b"))
	requireConfigError(t, err, "only numbers can have more than 1 value")
}

func TestString_RejectsNonString(t *testing.T) {
	_, err := NewString("s", WithDefault(5))
	requireConfigError(t, err, "must be a string")
}

func TestString_RejectsSlider(t *testing.T) {
	_, err := NewString("s", WithSlider(0, 1))
	requireConfigError(t, err, "slider is only supported")
}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

func TestBoolean_AlwaysHasBooleanDomain(t *testing.T) {
	for _, def := range []any{false, true, 0, 1} {
		p, err := NewBoolean("flag", WithDefault(def))
		require.NoError(t, err)

		el := p.Element("flag")
		assert.Equal(t, TagInt, el.Tag)
		require.NotNil(t, el.Find("BooleanDomain"), "default=%v", def)
		assert.Equal(t, "bool", el.Find("BooleanDomain").Value("name"))
		assert.Equal(t, "1", el.Value("number_of_elements"))
	}
}

func TestBoolean_DefaultValues(t *testing.T) {
	p, err := NewBoolean("boolean variable")
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, p.Defaults())

	p, err = NewBoolean("b", WithDefault(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, p.Defaults())
}

func TestBoolean_Errors(t *testing.T) {
	_, err := NewBoolean("b", WithDefault(true, false))
	requireConfigError(t, err, "can only have 1 entry")

	_, err = NewBoolean("b", WithDefault(2))
	requireConfigError(t, err, "boolean default")

	_, err = NewBoolean("b", WithDefault("yes"))
	requireConfigError(t, err, "boolean default")
}

func TestBoolean_NoLabelUsesName(t *testing.T) {
	p, err := NewBoolean("")
	require.NoError(t, err)
	assert.Equal(t, "Use Cache", p.Element("use_cache").Value("label"))
}

// ---------------------------------------------------------------------------
// Integer
// ---------------------------------------------------------------------------

func TestInteger_ListDefault(t *testing.T) {
	p, err := NewInteger("many integers", WithDefault([]int{0, 1, 2}), WithHelp("many integers"))
	require.NoError(t, err)

	el := p.Element("many_ints")
	assert.Equal(t, "3", el.Value("number_of_elements"))
	assert.Equal(t, "0 1 2", el.Value("default_values"))
}

func TestInteger_VariadicDefaultEqualsSlice(t *testing.T) {
	a, err := NewInteger("a", WithDefault(4, 5))
	require.NoError(t, err)

	b, err := NewInteger("a", WithDefault([]any{4, 5}))
	require.NoError(t, err)

	assert.Equal(t, a.Element("a").String(), b.Element("a").String())
}

func TestInteger_AcceptsIntegralFloats(t *testing.T) {
	p, err := NewInteger("n", WithDefault(float64(7), int64(8)))
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "8"}, p.Defaults())

	_, err = NewInteger("n", WithDefault(7.5))
	requireConfigError(t, err, "must be an integer")
}

func TestInteger_ElementsWithoutDefault(t *testing.T) {
	p, err := NewInteger("n", WithElements(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0", "0"}, p.Defaults())
}

func TestInteger_ArityErrors(t *testing.T) {
	_, err := NewInteger("n", WithDefault(1, 2), WithElements(3))
	requireConfigError(t, err, "2 value(s) but 3 element(s)")

	_, err = NewInteger("n", WithDefault(1, 2, 3, 4))
	requireConfigError(t, err, "maximum number of values")

	_, err = NewInteger("n", WithDefault([]int{}))
	requireConfigError(t, err, "at least one value")

	_, err = NewInteger("n", WithElements(4))
	requireConfigError(t, err, "between 1 and 3")
}

func TestInteger_RejectsValuesOutsideHostRange(t *testing.T) {
	p, err := NewInteger("n", WithDefault(int64(math.MinInt32), uint32(math.MaxInt32)))
	require.NoError(t, err)
	assert.Equal(t, []string{"-2147483648", "2147483647"}, p.Defaults())

	for _, v := range []any{uint64(1 << 63), int64(math.MaxInt32) + 1, int64(math.MinInt32) - 1, float64(1 << 40)} {
		_, err := NewInteger("n", WithDefault(v))
		requireConfigError(t, err, "outside the range -2147483648 to 2147483647")
	}
}

// ---------------------------------------------------------------------------
// Double
// ---------------------------------------------------------------------------

func TestDouble_DefaultAndSlider(t *testing.T) {
	p, err := NewDouble("double with slider", WithDefault(0.5), WithSlider(0.0, 1.0), WithHelp("double with slider"))
	require.NoError(t, err)

	want := `<DoubleVectorProperty name="double_slider" label="double with slider" initial_string="double_slider" command="SetParameter" animateable="1" default_values="0.5" number_of_elements="1">
  <Documentation>double with slider</Documentation>
  <DoubleRangeDomain name="range" min="0.0" max="1.0"/>
</DoubleVectorProperty>
`
	assert.Equal(t, want, p.Element("double_slider").String())

	lo, hi, ok := p.Slider()
	assert.True(t, ok)
	assert.Equal(t, "0.0", lo)
	assert.Equal(t, "1.0", hi)
}

func TestDouble_TypeDefault(t *testing.T) {
	p, err := NewDouble("d")
	require.NoError(t, err)
	assert.Equal(t, []string{"0.0"}, p.Defaults())
	assert.Nil(t, p.Element("d").Find("DoubleRangeDomain"))
}

func TestDouble_IntegerDefaultKeepsIntegerForm(t *testing.T) {
	p, err := NewDouble("d", WithDefault(1, 2.5, 1e-5))
	require.NoError(t, err)
	assert.Equal(t, "1 2.5 1e-05", p.Element("d").Value("default_values"))
}

func TestDouble_SliderErrors(t *testing.T) {
	_, err := NewDouble("d", WithSlider(1.0, 0.0))
	requireConfigError(t, err, "greater than maximum")

	_, err = NewDouble("d", WithSlider("low", 1.0))
	requireConfigError(t, err, "pair of numbers")
}

func TestFormatFloat(t *testing.T) {
	tests := map[float64]string{
		0:        "0.0",
		0.5:      "0.5",
		1:        "1.0",
		-2:       "-2.0",
		0.0001:   "0.0001",
		0.00001:  "1e-05",
		1e16:     "1e+16",
		123456.5: "123456.5",
		0.1:      "0.1",
	}

	for in, want := range tests {
		assert.Equal(t, want, FormatFloat(in), "input=%v", in)
	}
}

func TestDouble_Float32DefaultsKeepShortestDigits(t *testing.T) {
	p, err := NewDouble("d", WithDefault(float32(0.1), float32(0.0001), float32(2)), WithSlider(float32(0.1), float32(0.7)))
	require.NoError(t, err)
	assert.Equal(t, []string{"0.1", "0.0001", "2.0"}, p.Defaults())

	lo, hi, _ := p.Slider()
	assert.Equal(t, "0.1", lo)
	assert.Equal(t, "0.7", hi)
}

// ---------------------------------------------------------------------------
// IntegerEnum
// ---------------------------------------------------------------------------

func TestIntegerEnum_Entries(t *testing.T) {
	p, err := NewIntegerEnum("integer based enums", testEnum(t), WithDefault("value1"), WithHelp("many integers"))
	require.NoError(t, err)

	el := p.Element("int_enum")
	assert.Equal(t, TagInt, el.Tag)
	assert.Equal(t, "1", el.Value("default_values"))

	domain := el.Find("EnumerationDomain")
	require.NotNil(t, domain)
	assert.Equal(t, "enum", domain.Value("name"))

	entries := domain.FindAll("Entry")
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].Value("value"))
	assert.Equal(t, "value1", entries[0].Value("text"))
	assert.Equal(t, "2", entries[1].Value("value"))
	assert.Equal(t, "value2", entries[1].Value("text"))
	assert.Equal(t, "value", entries[0].Attrs[0].Name)
}

func TestIntegerEnum_MemberDefault(t *testing.T) {
	p, err := NewIntegerEnum("e", testEnum(t), WithDefault(Member{Name: "value2", Value: 2}))
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, p.Defaults())
}

func TestIntegerEnum_Errors(t *testing.T) {
	e := testEnum(t)

	_, err := NewIntegerEnum("e", e)
	requireConfigError(t, err, "default must be a member")

	_, err = NewIntegerEnum("e", e, WithDefault("value3"))
	requireConfigError(t, err, "not a member")

	_, err = NewIntegerEnum("e", e, WithDefault(Member{Name: "value1", Value: 9}))
	requireConfigError(t, err, "not a member")

	_, err = NewIntegerEnum("e", Enum{}, WithDefault("value1"))
	requireConfigError(t, err, "at least one member")

	_, err = NewIntegerEnum("e", e, WithDefault("value1", "value2"))
	requireConfigError(t, err, "only have 1 entry")
}

func TestNewEnum_Errors(t *testing.T) {
	_, err := NewEnum("E")
	requireConfigError(t, err, "at least one member")

	_, err = NewEnum("E", Member{Name: "a", Value: 1}, Member{Name: "a", Value: 2})
	requireConfigError(t, err, "duplicate enumeration member")

	_, err = NewEnum("E", Member{Name: "a", Value: 1}, Member{Name: "b", Value: 1})
	requireConfigError(t, err, "share value 1")

	_, err = NewEnum("E", Member{Name: "a\x01", Value: 1})
	requireConfigError(t, err, "U+0001")

	tooBig := int64(math.MaxInt32) + 1
	_, err = NewEnum("E", Member{Name: "a", Value: int(tooBig)})
	requireConfigError(t, err, "outside the range")
}

// ---------------------------------------------------------------------------
// Text the document cannot carry
// ---------------------------------------------------------------------------

func TestConstructors_RejectNonXMLText(t *testing.T) {
	enum := testEnum(t)

	bad := []string{"tab\x0bvt", "page\fbreak", "nul\x00", "bad\xffutf8", "nonchar\uFFFE"}

	for _, s := range bad {
		t.Run(s, func(t *testing.T) {
			_, err := NewString("s", WithHelp(s))
			requireConfigError(t, err, "help")

			_, err = NewString("s", WithDefault(s))
			requireConfigError(t, err, "default")

			_, err = NewBoolean(s)
			requireConfigError(t, err, "label")

			_, err = NewInteger("n", WithHelp(s))
			requireConfigError(t, err, "help")

			_, err = NewDouble(s)
			requireConfigError(t, err, "label")

			_, err = NewIntegerEnum("e", enum, WithDefault("value1"), WithHelp(s))
			requireConfigError(t, err, "help")
		})
	}
}

func TestConstructors_AcceptXMLText(t *testing.T) {
	p, err := NewString("Ünïcode ∑", WithHelp("line one\n\tline two\r\n"), WithDefault("a < b & c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a < b & c"}, p.Defaults())
}

func TestEnum_MembersIsCopy(t *testing.T) {
	e := testEnum(t)
	m := e.Members()
	m[0].Name = "changed"

	_, ok := e.Lookup("value1")
	assert.True(t, ok)
}
