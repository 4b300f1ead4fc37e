package definition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/hupe1980/pvfilter/internal/filter"
	"github.com/hupe1980/pvfilter/internal/property"
)

// checkGenerator verifies the running version against a file's generator
// constraint. Development builds skip the check.
func (l *Loader) checkGenerator(constraint string) error {
	if constraint == "" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return &property.ConfigError{Field: "generator", Message: fmt.Sprintf("invalid version constraint %q: %v", constraint, err)}
	}

	v, err := semver.NewVersion(l.opts.GeneratorVersion)
	if err != nil {
		// Development builds carry no release version.
		return nil
	}

	if !c.Check(v) {
		return &property.ConfigError{
			Field:   "generator",
			Message: fmt.Sprintf("requires pvfilter %s, running %s", constraint, v.String()),
		}
	}

	return nil
}

// options translates a decoded file into filter options. Only attributes
// present in the file become options, so a derived file inherits whatever it
// leaves out.
func (l *Loader) options(f *File, dir string, res *Result) ([]filter.Option, error) {
	var opts []filter.Option

	if f.Label != nil {
		opts = append(opts, filter.WithLabel(*f.Label))
	}

	if f.Help != nil {
		opts = append(opts, filter.WithLongHelp(*f.Help))
	}

	if f.ShortHelp != nil {
		opts = append(opts, filter.WithShortHelp(*f.ShortHelp))
	}

	if f.InputDataType != nil {
		opts = append(opts, filter.WithInputDataTypes(f.InputDataType...))
	}

	if f.OutputDataType != nil {
		opts = append(opts, filter.WithOutputDataType(*f.OutputDataType))
	}

	if f.NumberOfInputs != nil {
		opts = append(opts, filter.WithNumberOfInputs(*f.NumberOfInputs))
	}

	if f.ScriptInvisible != nil {
		opts = append(opts, filter.WithScriptInvisible(*f.ScriptInvisible))
	}

	scripts, err := l.scripts(f.Scripts, dir, res)
	if err != nil {
		return nil, err
	}

	opts = append(opts, filter.WithScripts(scripts))

	for i, fd := range f.Fields {
		p, err := BuildProperty(fd)
		if err != nil {
			return nil, fmt.Errorf("fields[%d]: %w", i, err)
		}

		opts = append(opts, filter.WithField(fd.Name, p))
	}

	return opts, nil
}

func (l *Loader) scripts(s Scripts, dir string, res *Result) (filter.Scripts, error) {
	var (
		out filter.Scripts
		err error
	)

	if out.RequestData, err = readScript("request_data", s.RequestData, s.RequestDataFile, dir, res); err != nil {
		return out, err
	}

	if out.RequestInformation, err = readScript("request_information", s.RequestInformation, s.RequestInformationFile, dir, res); err != nil {
		return out, err
	}

	if out.RequestUpdateExtent, err = readScript("request_update_extent", s.RequestUpdateExtent, s.RequestUpdateExtentFile, dir, res); err != nil {
		return out, err
	}

	return out, nil
}

// readScript returns the inline script or the content of the script file.
// File content is used verbatim.
func readScript(hook, inline, file, dir string, res *Result) (string, error) {
	if file == "" {
		return inline, nil
	}

	if inline != "" {
		return "", &property.ConfigError{Field: hook, Message: "set either the inline script or the script file, not both"}
	}

	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // Script path comes from the user's definition
	if err != nil {
		return "", fmt.Errorf("reading %s script: %w", hook, err)
	}

	res.Files = append(res.Files, path)

	if len(data) == 0 {
		return "", &property.ConfigError{Field: hook, Message: fmt.Sprintf("script file %s is empty", file)}
	}

	return string(data), nil
}

// BuildProperty creates the descriptor a field declaration describes.
// Configuration errors name the field, not its label.
func BuildProperty(fd Field) (property.Property, error) {
	p, err := buildProperty(fd)
	if err != nil {
		var cfgErr *property.ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Field = fd.Name
		}

		return nil, err
	}

	return p, nil
}

func buildProperty(fd Field) (property.Property, error) {
	var opts []property.Option

	if fd.Help != "" {
		opts = append(opts, property.WithHelp(fd.Help))
	}

	if fd.Default != nil {
		opts = append(opts, property.WithDefault(fd.Default))
	}

	if fd.Elements != 0 {
		opts = append(opts, property.WithElements(fd.Elements))
	}

	if fd.Slider != nil {
		if len(fd.Slider) != 2 {
			return nil, &property.ConfigError{Field: fd.Name, Message: fmt.Sprintf("slider must be [min, max], got %d value(s)", len(fd.Slider))}
		}

		opts = append(opts, property.WithSlider(fd.Slider[0], fd.Slider[1]))
	}

	kind := property.Kind(fd.Type)

	if len(fd.Enum) > 0 && kind != property.KindIntegerEnum {
		return nil, &property.ConfigError{Field: fd.Name, Message: fmt.Sprintf("enum is only supported on %s fields", property.KindIntegerEnum)}
	}

	switch kind {
	case property.KindString:
		return property.NewString(fd.Label, opts...)
	case property.KindBoolean:
		return property.NewBoolean(fd.Label, opts...)
	case property.KindInteger:
		return property.NewInteger(fd.Label, opts...)
	case property.KindDouble:
		return property.NewDouble(fd.Label, opts...)
	case property.KindIntegerEnum:
		members := make([]property.Member, len(fd.Enum))
		for i, m := range fd.Enum {
			members[i] = property.Member{Name: m.Name, Value: m.Value}
		}

		enum, err := property.NewEnum(fd.Name, members...)
		if err != nil {
			return nil, err
		}

		return property.NewIntegerEnum(fd.Label, enum, opts...)
	case "":
		return nil, &property.ConfigError{Field: fd.Name, Message: "field type is required"}
	default:
		return nil, &property.ConfigError{
			Field: fd.Name,
			Message: fmt.Sprintf("unknown field type %q (want one of %s, %s, %s, %s, %s)", fd.Type,
				property.KindString, property.KindBoolean, property.KindInteger, property.KindDouble, property.KindIntegerEnum),
		}
	}
}
