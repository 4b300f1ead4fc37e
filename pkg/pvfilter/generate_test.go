package pvfilter_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pvfilter/pkg/pvfilter"
)

const exampleDefinition = "../../internal/definition/testdata/my_example_filter.yaml"

func TestGenerate_EmptyPath(t *testing.T) {
	_, err := pvfilter.Generate(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definition path must not be empty")
}

func TestGenerate_MissingFile(t *testing.T) {
	_, err := pvfilter.Generate(context.Background(), "/nonexistent/filter.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading definition")
}

func TestGenerate_ExampleFilter(t *testing.T) {
	result, err := pvfilter.Generate(context.Background(), exampleDefinition, pvfilter.WithValidation())
	require.NoError(t, err)

	want, err := os.ReadFile("../../internal/definition/testdata/my_example_filter.xml")
	require.NoError(t, err)

	assert.Equal(t, string(want), string(result.XML))
	assert.Equal(t, "MyExampleFilter", result.Name)
	assert.Equal(t, 5, result.FieldCount)
	assert.Len(t, result.Files, 2)
}

func TestGenerate_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pvfilter.Generate(ctx, exampleDefinition)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_GeneratorConstraint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: F
generator: ">= 2.0.0"
input_data_type: vtkPolyData
scripts:
  request_data: pass
`), 0o600))

	_, err := pvfilter.Generate(context.Background(), path, pvfilter.WithGeneratorVersion("1.4.0"))
	require.Error(t, err)

	var cfgErr *pvfilter.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "generator", cfgErr.Field)

	_, err = pvfilter.Generate(context.Background(), path, pvfilter.WithGeneratorVersion("2.1.0"))
	require.NoError(t, err)
}

func TestGenerate_SyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = [\n"), 0o600))

	_, err := pvfilter.Generate(context.Background(), path)

	var synErr *pvfilter.SyntaxError
	require.ErrorAs(t, err, &synErr)
}
