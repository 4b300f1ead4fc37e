package watch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pvfilter/internal/filter"
	"github.com/hupe1980/pvfilter/internal/logging"
	"github.com/hupe1980/pvfilter/internal/property"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func testOptions(files ...string) Options {
	opts := DefaultOptions()
	opts.Files = files
	opts.Debounce = 50 * time.Millisecond
	opts.Out = io.Discard
	opts.Logger = logging.Discard()

	return opts
}

func document(t *testing.T, fields ...string) []byte {
	t.Helper()

	opts := []filter.Option{filter.WithInputDataTypes("vtkPolyData"), filter.WithRequestData("pass\n")}

	for _, f := range fields {
		p, err := property.NewInteger("")
		require.NoError(t, err)

		opts = append(opts, filter.WithField(f, p))
	}

	def, err := filter.New("Smooth", opts...)
	require.NoError(t, err)

	return def.XML()
}

// ---------------------------------------------------------------------------
// Debouncer
// ---------------------------------------------------------------------------

func TestDebouncer_SingleEvent(t *testing.T) {
	var (
		calls atomic.Int32
		got   atomic.Value
	)

	d := NewDebouncer(50*time.Millisecond, func(paths []string) {
		calls.Add(1)
		got.Store(paths)
	})
	defer d.Stop()

	d.Trigger("a.yaml")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"a.yaml"}, got.Load())
}

func TestDebouncer_BurstCoalescedWithAllPaths(t *testing.T) {
	var (
		calls atomic.Int32
		got   atomic.Value
	)

	d := NewDebouncer(100*time.Millisecond, func(paths []string) {
		calls.Add(1)
		got.Store(paths)
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger("script.py")
		d.Trigger("filter.yaml")
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"filter.yaml", "script.py"}, got.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	var calls atomic.Int32

	d := NewDebouncer(50*time.Millisecond, func([]string) { calls.Add(1) })

	d.Trigger("a.yaml")
	d.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

// ---------------------------------------------------------------------------
// isRelevant / fileSet
// ---------------------------------------------------------------------------

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"definition write", "filter.yaml", fsnotify.Write, true},
		{"script write", "request_data.py", fsnotify.Write, true},
		{"create event", "new.toml", fsnotify.Create, true},
		{"remove event", "old.yaml", fsnotify.Remove, true},
		{"rename event", "renamed.yaml", fsnotify.Rename, true},
		{"hidden file", ".hidden", fsnotify.Write, false},
		{"swap file", "filter.yaml.swp", fsnotify.Write, false},
		{"backup tilde", "filter.yaml~", fsnotify.Write, false},
		{"emacs hash", "#filter.yaml#", fsnotify.Write, false},
		{"zero op", "filter.yaml", 0, false},
		{"chmod only", "filter.yaml", fsnotify.Chmod, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRelevant(fsnotify.Event{Name: tt.path, Op: tt.op}))
		})
	}
}

func TestFileSet(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	s := newFileSet(watcher, logging.Discard())
	require.NoError(t, s.Set([]string{filepath.Join(dirA, "f.yaml"), filepath.Join(dirB, "base.yaml")}))

	assert.True(t, s.Has(filepath.Join(dirA, "f.yaml")))
	assert.True(t, s.Has(filepath.Join(dirB, "base.yaml")))
	assert.False(t, s.Has(filepath.Join(dirA, "other.yaml")))
	assert.ElementsMatch(t, []string{dirA, dirB}, watcher.WatchList())

	require.NoError(t, s.Set([]string{filepath.Join(dirA, "f.yaml")}))
	assert.False(t, s.Has(filepath.Join(dirB, "base.yaml")))
}

func TestFileSet_MissingDirectory(t *testing.T) {
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	s := newFileSet(watcher, logging.Discard())
	assert.Error(t, s.Set([]string{"/nonexistent/dir/12345/f.yaml"}))
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRun_NoFiles(t *testing.T) {
	err := Run(context.Background(), testOptions(), func(context.Context) (*RunResult, error) {
		return &RunResult{}, nil
	})
	assert.ErrorContains(t, err, "no files to watch")
}

func TestRun_GracefulShutdown(t *testing.T) {
	def := filepath.Join(t.TempDir(), "filter.yaml")
	writeFile(t, def, "name: A\n")

	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, testOptions(def), func(context.Context) (*RunResult, error) {
			runs.Add(1)
			return &RunResult{Proxy: "A"}, nil
		})
	}()

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down in time")
	}
}

func TestRun_TracksFilesReportedByRun(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "filter.yaml")
	script := filepath.Join(dir, "request_data.py")
	unrelated := filepath.Join(dir, "notes.txt")

	writeFile(t, def, "name: A\n")
	writeFile(t, script, "pass\n")
	writeFile(t, unrelated, "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, testOptions(def), func(context.Context) (*RunResult, error) {
			runs.Add(1)
			return &RunResult{Proxy: "A", Files: []string{def, script}}, nil
		})
	}()

	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(1), runs.Load())

	writeFile(t, unrelated, "y")
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load(), "untracked file must not trigger a run")

	writeFile(t, script, "print(1)\n")
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load(), "script change should trigger a run")

	cancel()
	<-done
}

func TestRun_ReportsPropertyChangesAndValidation(t *testing.T) {
	def := filepath.Join(t.TempDir(), "filter.yaml")
	writeFile(t, def, "v1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docs := [][]byte{document(t, "a", "b"), document(t, "a")}

	var (
		runs atomic.Int32
		out  syncBuffer
	)

	opts := testOptions(def)
	opts.Out = &out
	opts.ValidateFn = func(context.Context, []byte) error { return errors.New("bad plugin") }

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(context.Context) (*RunResult, error) {
			i := runs.Add(1) - 1
			if int(i) >= len(docs) {
				i = int32(len(docs) - 1)
			}

			return &RunResult{Proxy: "Smooth", Fields: 2, Document: docs[i]}, nil
		})
	}()

	time.Sleep(200 * time.Millisecond)
	writeFile(t, def, "v2")
	time.Sleep(250 * time.Millisecond)

	cancel()
	<-done

	text := out.String()
	assert.Contains(t, text, "(initial) → OK (Smooth, 2 fields)")
	assert.Contains(t, text, "filter.yaml → OK")
	assert.Contains(t, text, "properties: 1 removed (1 breaking)")
	assert.Contains(t, text, "validate: FAILED: bad plugin")
}

func TestRun_RunFuncErrorKeepsWatching(t *testing.T) {
	def := filepath.Join(t.TempDir(), "filter.yaml")
	writeFile(t, def, "name: A\n")

	ctx, cancel := context.WithCancel(context.Background())

	var (
		calls atomic.Int32
		out   syncBuffer
	)

	opts := testOptions(def)
	opts.Out = &out

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(context.Context) (*RunResult, error) {
			calls.Add(1)
			return nil, errors.New("configuration error: x: broken")
		})
	}()

	time.Sleep(200 * time.Millisecond)
	writeFile(t, def, "name: B\n")
	time.Sleep(250 * time.Millisecond)

	cancel()
	<-done

	assert.GreaterOrEqual(t, calls.Load(), int32(2))
	assert.Contains(t, out.String(), "ERROR: configuration error: x: broken")
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 300*time.Millisecond, opts.Debounce)
	assert.True(t, opts.Validate)
	assert.NotNil(t, opts.Logger)
	assert.NotNil(t, opts.Out)
}
