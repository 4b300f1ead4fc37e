package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pluginDoc = "<ServerManagerConfiguration>\n  <ProxyGroup name=\"filters\"/>\n</ServerManagerConfiguration>\n"

func TestStdoutWriter_Write(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewStdoutWriter(&buf).Write([]byte(pluginDoc)))
	assert.Equal(t, pluginDoc, buf.String())
}

func TestStdoutWriter_NilDefault(t *testing.T) {
	assert.NotNil(t, NewStdoutWriter(nil))
}

func TestFileWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins", "MyExampleFilter.xml")

	require.NoError(t, NewFileWriter(path).Write([]byte(pluginDoc)))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, pluginDoc, string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileWriter_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "plugin.xml")

	require.NoError(t, NewFileWriter(path).Write([]byte("x")))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestFileWriter_CustomPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugin.xml")

	require.NoError(t, NewFileWriter(path, WithPermissions(0o600)).Write([]byte("x")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileWriter_OverwriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plugin.xml")

	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644)) //nolint:gosec // test
	require.NoError(t, NewFileWriter(path).Write([]byte("new")))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileWriter_Path(t *testing.T) {
	assert.Equal(t, "/tmp/plugin.xml", NewFileWriter("/tmp/plugin.xml").Path())
}

func TestFileWriter_InvalidPath(t *testing.T) {
	assert.Error(t, NewFileWriter("/dev/null/impossible/plugin.xml").Write([]byte("x")))
}
