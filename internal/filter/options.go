package filter

import (
	"strings"

	"github.com/hupe1980/pvfilter/internal/property"
)

// Option configures a Definition. Options run in order and may fail.
type Option func(*Definition) error

// WithLabel sets the label shown in the host's filters menu.
func WithLabel(label string) Option {
	return func(d *Definition) error {
		d.label = label
		return nil
	}
}

// WithLongHelp sets the long help. Common indentation and surrounding blank
// lines are removed, so an indented block reads the same as a flush one.
func WithLongHelp(help string) Option {
	return func(d *Definition) error {
		d.longHelp = CleanDoc(help)
		return nil
	}
}

// WithShortHelp sets the short help. Without it the long help is used.
func WithShortHelp(help string) Option {
	return func(d *Definition) error {
		d.shortHelp = help
		d.hasShortHelp = true

		return nil
	}
}

// WithInputDataTypes replaces the accepted input data types.
func WithInputDataTypes(types ...string) Option {
	return func(d *Definition) error {
		d.inputDataTypes = append([]string(nil), types...)
		return nil
	}
}

// WithOutputDataType sets the output data type name. The empty name keeps
// the input's type.
func WithOutputDataType(name string) Option {
	return func(d *Definition) error {
		d.outputDataType = name
		return nil
	}
}

// WithNumberOfInputs sets the number of input connections. Zero turns the
// filter into a source.
func WithNumberOfInputs(n int) Option {
	return func(d *Definition) error {
		d.numberOfInputs = n
		return nil
	}
}

// WithScriptInvisible controls whether the script properties are hidden
// (the default) or shown in the advanced section of the property panel.
func WithScriptInvisible(invisible bool) Option {
	return func(d *Definition) error {
		d.scriptInvisible = invisible
		return nil
	}
}

// WithScripts sets every non-empty script of s, keeping the others.
func WithScripts(s Scripts) Option {
	return func(d *Definition) error {
		if s.RequestData != "" {
			d.scripts.RequestData = s.RequestData
		}

		if s.RequestInformation != "" {
			d.scripts.RequestInformation = s.RequestInformation
		}

		if s.RequestUpdateExtent != "" {
			d.scripts.RequestUpdateExtent = s.RequestUpdateExtent
		}

		return nil
	}
}

// WithRequestData sets the main script.
func WithRequestData(script string) Option {
	return WithScripts(Scripts{RequestData: script})
}

// WithField registers one parameter. Fields appear in the generated document
// in the order their options are applied.
func WithField(name string, p property.Property) Option {
	return func(d *Definition) error {
		return d.add(name, p)
	}
}

// WithFields registers several parameters in order.
func WithFields(fields ...Field) Option {
	return func(d *Definition) error {
		for _, f := range fields {
			if err := d.add(f.Name, f.Property); err != nil {
				return err
			}
		}

		return nil
	}
}

// CleanDoc normalizes documentation text: tabs expand to eight columns, the
// first line loses its leading whitespace, the smallest indentation of the
// remaining non-blank lines is removed from all of them, and leading and
// trailing blank lines are dropped.
func CleanDoc(doc string) string {
	lines := strings.Split(expandTabs(doc), "\n")

	margin := -1

	for _, line := range lines[1:] {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			continue
		}

		indent := len(line) - len(content)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " ")

	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n")
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var (
		sb  strings.Builder
		col int
	)

	for _, r := range s {
		switch r {
		case '\t':
			n := 8 - col%8
			sb.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n':
			sb.WriteRune(r)

			col = 0
		default:
			sb.WriteRune(r)

			col++
		}
	}

	return sb.String()
}
