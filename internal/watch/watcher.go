package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hupe1980/pvfilter/internal/plan"
)

// RunFunc regenerates the plugin once.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult describes one successful generation.
type RunResult struct {
	// Proxy is the generated proxy name.
	Proxy string

	// Fields is the number of parameters.
	Fields int

	// Document is the generated XML. Consecutive documents are compared to
	// report property changes.
	Document []byte

	// Files lists every file the generation read. The watch set follows
	// this list, so a changed extends chain is picked up without a restart.
	Files []string

	// OutputPath is where the document was written, if anywhere.
	OutputPath string
}

// ValidateFunc checks a generated document.
type ValidateFunc func(ctx context.Context, doc []byte) error

// Options configures the watch behaviour.
type Options struct {
	// Files are watched before the first run completes, typically the
	// definition file itself.
	Files []string

	// Debounce is the quiet period before triggering a rebuild.
	Debounce time.Duration

	// Validate enables ValidateFn after each generation.
	Validate bool

	ValidateFn ValidateFunc

	Logger *slog.Logger

	// Out receives user-facing status lines.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 300 * time.Millisecond,
		Validate: true,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts the watcher and blocks until ctx is cancelled or SIGINT or
// SIGTERM arrives. A failing run is reported and watching continues.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if len(opts.Files) == 0 {
		return fmt.Errorf("no files to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	tracked := newFileSet(watcher, opts.Logger)
	if err := tracked.Set(opts.Files); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(opts.Out, "watching %s (debounce=%s, validate=%t)\n",
		strings.Join(opts.Files, ", "), opts.Debounce, opts.Validate)

	r := &runner{opts: opts, run: runFn, files: tracked}
	r.once(sigCtx, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, func(paths []string) {
		names := make([]string, len(paths))
		for i, p := range paths {
			names[i] = filepath.Base(p)
		}

		r.once(sigCtx, strings.Join(names, ", "))
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			_, _ = fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event) || !tracked.Has(event.Name) {
				continue
			}

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// runner serializes generations and remembers the last document.
type runner struct {
	mu    sync.Mutex
	opts  Options
	run   RunFunc
	files *fileSet
	last  []byte
}

func (r *runner) once(ctx context.Context, trigger string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.opts.Out
	now := time.Now().Format("15:04:05")

	result, err := r.run(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	_, _ = fmt.Fprintf(out, "[%s] %s → OK (%s, %d fields)\n", now, trigger, result.Proxy, result.Fields)

	if len(result.Files) > 0 {
		if err := r.files.Set(result.Files); err != nil {
			r.opts.Logger.Warn("updating watch set", slog.String("error", err.Error()))
		}
	}

	if r.last != nil && result.Document != nil {
		if a, err := plan.Analyze(r.last, result.Document); err == nil && a.HasChanges() {
			_, _ = fmt.Fprintf(out, "  properties: %s\n", plan.FormatCompactSummary(a))
		}
	}

	r.last = result.Document

	if r.opts.Validate && r.opts.ValidateFn != nil && result.Document != nil {
		if err := r.opts.ValidateFn(ctx, result.Document); err != nil {
			_, _ = fmt.Fprintf(out, "  validate: FAILED: %v\n", err)
			return
		}

		_, _ = fmt.Fprintln(out, "  validate: OK")
	}
}

// fileSet tracks the watched files. fsnotify watches their directories so
// that editors replacing a file by rename keep being observed.
type fileSet struct {
	mu      sync.RWMutex
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	files   map[string]bool
	dirs    map[string]bool
}

func newFileSet(w *fsnotify.Watcher, logger *slog.Logger) *fileSet {
	return &fileSet{
		watcher: w,
		logger:  logger,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}
}

// Set replaces the tracked files and watches any new directory.
func (s *fileSet) Set(paths []string) error {
	files := make(map[string]bool, len(paths))

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", p, err)
		}

		files[abs] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for f := range files {
		dir := filepath.Dir(f)
		if s.dirs[dir] {
			continue
		}

		if err := s.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %q: %w", dir, err)
		}

		s.logger.Debug("watching directory", slog.String("dir", dir))
		s.dirs[dir] = true
	}

	s.files = files

	return nil
}

// Has reports whether path is tracked.
func (s *fileSet) Has(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.files[abs]
}

// isRelevant filters out chmod-only events and editor scratch files.
func isRelevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	return !strings.HasPrefix(name, ".") && !strings.HasSuffix(name, "~") &&
		!strings.HasSuffix(name, ".swp") && !strings.HasPrefix(name, "#")
}
