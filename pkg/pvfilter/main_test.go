package pvfilter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}

	return v
}

func TestRun_WritesDocument(t *testing.T) {
	var stdout, stderr bytes.Buffer

	def, err := NewFilter("Shrink",
		WithInputDataTypes("vtkDataSet"),
		WithOutputDataType("vtkUnstructuredGrid"),
		WithField("factor", must(NewDouble("", WithDefault(0.5), WithSlider(0, 1)))),
		WithRequestData("pass\n"),
	)
	code := run(&stdout, &stderr, def, err)

	require.Equal(t, ExitOK, code)
	assert.Empty(t, stderr.String())
	assert.True(t, strings.HasPrefix(stdout.String(), "<ServerManagerConfiguration>"))
	assert.Contains(t, stdout.String(), `<DoubleRangeDomain name="range" min="0" max="1"/>`)
}

func TestRun_ConfigError(t *testing.T) {
	var stdout, stderr bytes.Buffer

	def, err := NewFilter("Shrink", WithInputDataTypes("vtkDataSet"))
	code := run(&stdout, &stderr, def, err)

	assert.Equal(t, ExitConfigError, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "request_data")
}

func TestRun_OtherError(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(&stdout, &stderr, nil, errors.New("boom"))

	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr.String(), "boom")
}

func TestRun_NilDefinition(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, ExitError, run(&stdout, &stderr, nil, nil))
}

func TestOutputDataTypes(t *testing.T) {
	assert.Contains(t, OutputDataTypes(), "vtkPolyData")

	code, ok := OutputDataSetType("vtkPolyData")
	require.True(t, ok)
	assert.Equal(t, 0, code)
}
