package property

import (
	"reflect"
)

// Option configures a field descriptor.
type Option func(*options)

type options struct {
	help       string
	defaults   []any
	hasDefault bool
	elements   int
	slider     []any
}

// WithHelp sets the documentation text shown in the host's property panel.
func WithHelp(help string) Option {
	return func(o *options) { o.help = help }
}

// WithDefault sets the default value(s). A single slice argument is
// expanded, so WithDefault([]int{0, 1, 2}) and WithDefault(0, 1, 2) are
// equivalent.
func WithDefault(values ...any) Option {
	return func(o *options) {
		o.defaults = flatten(values)
		o.hasDefault = true
	}
}

// WithElements declares the number of values explicitly. The default must
// then carry exactly that many values; without a default the type's default
// value is repeated.
func WithElements(n int) Option {
	return func(o *options) { o.elements = n }
}

// WithSlider attaches a (min, max) range to a double property, which the
// host renders as a slider.
func WithSlider(minValue, maxValue any) Option {
	return func(o *options) { o.slider = []any{minValue, maxValue} }
}

func applyOptions(opts []Option) *options {
	o := &options{}

	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	return o
}

// values resolves the raw default values and checks their arity.
func (o *options) values(field string, typeDefault any) ([]any, error) {
	if o.elements != 0 && (o.elements < 1 || o.elements > MaxElements) {
		return nil, configErrorf(field, "number of elements must be between 1 and %d, got %d", MaxElements, o.elements)
	}

	vals := o.defaults

	if !o.hasDefault {
		n := 1
		if o.elements > 0 {
			n = o.elements
		}

		vals = make([]any, n)
		for i := range vals {
			vals[i] = typeDefault
		}
	}

	if len(vals) == 0 {
		return nil, configErrorf(field, "default must have at least one value")
	}

	if len(vals) > MaxElements {
		return nil, configErrorf(field, "the maximum number of values a property can have is %d, got %d", MaxElements, len(vals))
	}

	if o.elements != 0 && o.elements != len(vals) {
		return nil, configErrorf(field, "default has %d value(s) but %d element(s) were declared", len(vals), o.elements)
	}

	return vals, nil
}

func (o *options) rejectSlider(field string, kind Kind) error {
	if o.slider != nil {
		return configErrorf(field, "slider is only supported on %s properties, not %s", KindDouble, kind)
	}

	return nil
}

// flatten expands a single slice or array argument into its elements.
func flatten(values []any) []any {
	if len(values) != 1 || values[0] == nil {
		return values
	}

	rv := reflect.ValueOf(values[0])
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return values
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out
}
