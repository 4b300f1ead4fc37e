package definition

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pvfilter/internal/property"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

func load(t *testing.T, path string) (*Result, error) {
	t.Helper()

	return NewLoader(Options{GeneratorVersion: "0.3.0"}).Load(context.Background(), path)
}

func fieldNames(res *Result) []string {
	var names []string
	for _, f := range res.Definition.Fields() {
		names = append(names, f.Name)
	}

	return names
}

const minimal = `name: Base
input_data_type: vtkPolyData
scripts:
  request_data: "pass\n"
`

// ---------------------------------------------------------------------------
// Formats
// ---------------------------------------------------------------------------

func TestLoad_ExampleFormats(t *testing.T) {
	want, err := os.ReadFile(filepath.Join("testdata", "my_example_filter.xml"))
	require.NoError(t, err)

	for _, name := range []string{"my_example_filter.yaml", "my_example_filter.json", "my_example_filter.toml"} {
		t.Run(name, func(t *testing.T) {
			res, err := load(t, filepath.Join("testdata", name))
			require.NoError(t, err)
			assert.Equal(t, string(want), string(res.Definition.XML()))
		})
	}
}

func TestLoad_ReportsScriptFiles(t *testing.T) {
	res, err := load(t, filepath.Join("testdata", "my_example_filter.yaml"))
	require.NoError(t, err)

	require.Len(t, res.Files, 2)
	assert.Equal(t, "my_example_filter.yaml", filepath.Base(res.Files[0]))
	assert.Equal(t, "request_data.py", filepath.Base(res.Files[1]))
}

func TestLoad_TOMLFilesOnlyDefinition(t *testing.T) {
	res, err := load(t, filepath.Join("testdata", "my_example_filter.toml"))
	require.NoError(t, err)
	assert.Len(t, res.Files, 1)
}

// ---------------------------------------------------------------------------
// Extends
// ---------------------------------------------------------------------------

func TestLoad_Extends(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base/base.yaml", `name: Base
label: Base Filter
short_help: shared
input_data_type: [vtkPolyData, vtkUnstructuredGrid]
fields:
  - {name: radius, type: double, default: 1}
  - {name: enabled, type: boolean, default: true}
scripts:
  request_data: "pass\n"
`)
	path := writeFile(t, dir, "derived.yaml", `name: Derived
extends: base/base.yaml
fields:
  - {name: count, type: integer, default: 3}
`)

	res, err := load(t, path)
	require.NoError(t, err)

	def := res.Definition
	assert.Equal(t, "Derived", def.Name())
	assert.Equal(t, "Base", def.Base())
	assert.Equal(t, "Base Filter", def.Label())
	assert.Equal(t, "shared", def.ShortHelp())
	assert.Equal(t, []string{"vtkPolyData", "vtkUnstructuredGrid"}, def.InputDataTypes())
	assert.Equal(t, []string{"radius", "enabled", "count"}, fieldNames(res))
	assert.Len(t, res.Files, 2)
}

func TestLoad_ExtendsOverridesScripts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", minimal)
	writeFile(t, dir, "info.py", "print('info')\n")
	path := writeFile(t, dir, "derived.yaml", `name: Derived
extends: base.yaml
output_data_type: vtkTable
scripts:
  request_information_file: info.py
`)

	res, err := load(t, path)
	require.NoError(t, err)

	scripts := res.Definition.Scripts()
	assert.Equal(t, "pass\n", scripts.RequestData)
	assert.Equal(t, "print('info')\n", scripts.RequestInformation)
	assert.Equal(t, "vtkTable", res.Definition.OutputDataType())
}

func TestLoad_ExtendsDuplicateField(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", minimal+"fields:\n  - {name: x, type: integer}\n")
	path := writeFile(t, dir, "derived.yaml", "name: Derived\nextends: base.yaml\nfields:\n  - {name: x, type: double}\n")

	_, err := load(t, path)
	require.Error(t, err)

	var cfgErr *property.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_ExtendsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "name: A\nextends: b.yaml\n")
	path := writeFile(t, dir, "b.yaml", "name: B\nextends: a.yaml\n")

	_, err := load(t, path)
	require.Error(t, err)

	var cfgErr *property.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "extends", cfgErr.Field)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestLoad_ExtendsSelf(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "self.yaml", "name: A\nextends: self.yaml\n")

	_, err := load(t, path)
	assert.ErrorContains(t, err, "cycle detected")
}

func TestLoad_ExtendsMissing(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "derived.yaml", "name: A\nextends: nope.yaml\n")

	_, err := load(t, path)
	assert.ErrorContains(t, err, "reading definition")
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestLoad_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "typo.yaml", minimal+"lable: oops\n")

	_, err := load(t, path)
	require.Error(t, err)

	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Contains(t, err.Error(), "lable")
}

func TestLoad_UnknownTOMLKey(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "typo.toml", "name = \"A\"\nlable = \"oops\"\n")

	_, err := load(t, path)

	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Contains(t, err.Error(), "unknown keys: lable")
}

func TestLoad_EmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.yaml", "")

	_, err := load(t, path)
	assert.ErrorContains(t, err, "empty document")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := load(t, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields string
		want   string
	}{
		{"unknown type", "  - {name: x, type: float}", `unknown field type "float"`},
		{"missing type", "  - {name: x}", "field type is required"},
		{"enum on integer", "  - {name: x, type: integer, enum: [{name: a, value: 1}]}", "enum is only supported"},
		{"short slider", "  - {name: x, type: double, slider: [1]}", "slider must be [min, max]"},
		{"too many values", "  - {name: x, type: integer, default: [1, 2, 3, 4]}", "fields[0]"},
		{"bad identifier", "  - {name: 1x, type: integer}", "fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "f.yaml", minimal+"fields:\n"+tt.fields+"\n")

			_, err := load(t, path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var cfgErr *property.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoad_FieldErrorNamesField(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.yaml", minimal+"fields:\n  - {name: iterations, type: integer, default: 1.5}\n")

	_, err := load(t, path)

	var cfgErr *property.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "iterations", cfgErr.Field)
	assert.Contains(t, err.Error(), "iterations: integer default must be an integer")
}

func TestBuildProperty_ErrorNamesFieldNotLabel(t *testing.T) {
	_, err := BuildProperty(Field{Name: "mode", Type: "integer_enum", Label: "Mode", Default: "c",
		Enum: []EnumMember{{Name: "a", Value: 0}, {Name: "b", Value: 1}}})

	var cfgErr *property.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "mode", cfgErr.Field)
}

func TestLoad_MissingRequestData(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.yaml", "name: A\ninput_data_type: vtkTable\n")

	_, err := load(t, path)

	var cfgErr *property.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_ScriptInlineAndFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rd.py", "pass\n")
	path := writeFile(t, dir, "f.yaml", `name: A
input_data_type: vtkPolyData
scripts:
  request_data: "pass\n"
  request_data_file: rd.py
`)

	_, err := load(t, path)
	assert.ErrorContains(t, err, "not both")
}

func TestLoad_ScriptFileMissing(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.yaml", "name: A\ninput_data_type: vtkPolyData\nscripts:\n  request_data_file: gone.py\n")

	_, err := load(t, path)
	assert.ErrorContains(t, err, "reading request_data script")
}

func TestLoad_ScriptFileWithFormFeed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rd.py", "import math\n\f\ndef f():\n    pass\n")
	path := writeFile(t, dir, "f.yaml", "name: A\ninput_data_type: vtkPolyData\nscripts:\n  request_data_file: rd.py\n")

	res, err := load(t, path)
	assert.Nil(t, res)

	var cfgErr *property.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "request_data", cfgErr.Field)
	assert.Contains(t, err.Error(), "U+000C")
}

func TestLoad_ScriptFileEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.py", "")
	path := writeFile(t, dir, "f.yaml", "name: A\ninput_data_type: vtkPolyData\nscripts:\n  request_data_file: empty.py\n")

	_, err := load(t, path)
	assert.ErrorContains(t, err, "is empty")
}

// ---------------------------------------------------------------------------
// Generator constraint
// ---------------------------------------------------------------------------

func TestLoad_GeneratorConstraint(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		version    string
		wantErr    string
	}{
		{"satisfied", ">= 0.2.0", "0.3.0", ""},
		{"tilde satisfied", "~0.3", "v0.3.4", ""},
		{"too old", ">= 1.0.0", "0.3.0", "requires pvfilter >= 1.0.0"},
		{"dev build skips", ">= 9.0.0", "dev", ""},
		{"invalid constraint", "not-a-version", "0.3.0", "invalid version constraint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "f.yaml", minimal+"generator: \""+tt.constraint+"\"\n")

			_, err := NewLoader(Options{GeneratorVersion: tt.version}).Load(context.Background(), path)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var cfgErr *property.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "generator", cfgErr.Field)
		})
	}
}

// ---------------------------------------------------------------------------
// Parse
// ---------------------------------------------------------------------------

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("a.yaml"))
	assert.Equal(t, FormatYAML, DetectFormat("a.yml"))
	assert.Equal(t, FormatYAML, DetectFormat("a"))
	assert.Equal(t, FormatJSON, DetectFormat("a.JSON"))
	assert.Equal(t, FormatTOML, DetectFormat("dir/a.toml"))
}

func TestParse_InputDataTypeForms(t *testing.T) {
	f, err := Parse([]byte("name: A\ninput_data_type: vtkTable\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, StringList{"vtkTable"}, f.InputDataType)

	f, err = Parse([]byte("name: A\ninput_data_type: [vtkTable, vtkPolyData]\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, StringList{"vtkTable", "vtkPolyData"}, f.InputDataType)

	f, err = Parse([]byte("name = \"A\"\ninput_data_type = \"vtkTable\"\n"), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, StringList{"vtkTable"}, f.InputDataType)

	_, err = Parse([]byte("name: A\ninput_data_type: {a: b}\n"), FormatYAML)
	require.Error(t, err)

	_, err = Parse([]byte("name = \"A\"\ninput_data_type = [1]\n"), FormatTOML)
	require.Error(t, err)
}

func TestParse_AbsentAttributesStayNil(t *testing.T) {
	f, err := Parse([]byte("name: A\n"), FormatYAML)
	require.NoError(t, err)
	assert.Nil(t, f.Label)
	assert.Nil(t, f.NumberOfInputs)
	assert.Nil(t, f.ScriptInvisible)
	assert.Nil(t, f.InputDataType)
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte("x"), Format("ini"))
	assert.ErrorContains(t, err, "unsupported definition format")
}

func TestBuildProperty_Kinds(t *testing.T) {
	for _, typ := range []string{"string", "boolean", "integer", "double"} {
		p, err := BuildProperty(Field{Name: "x", Type: typ})
		require.NoError(t, err, typ)
		assert.Equal(t, property.Kind(typ), p.Kind())
	}

	p, err := BuildProperty(Field{
		Name: "mode", Type: "integer_enum", Default: "b",
		Enum: []EnumMember{{Name: "a", Value: 1}, {Name: "b", Value: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, p.Defaults())
}
