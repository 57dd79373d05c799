// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when the Go sources of a set of
// directories change. Events are debounced so an editor's write-and-rename
// sequence triggers a single run with every changed file.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period before OnChange fires.
const defaultDebounce = 300 * time.Millisecond

var (
	// defaultPatterns select the files a generation run reads.
	defaultPatterns = []string{"*.go"}

	// defaultIgnores are never reported: tests are not scanned and editor
	// scratch files are noise.
	defaultIgnores = []string{
		"*_test.go",
		"*.swp",
		"*.swo",
		"*~",
		".#*",
	}
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dirs are watched without recursion, mirroring how sources are scanned.
		Dirs []string

		// Patterns are doublestar patterns matched against file base names.
		// Empty means "*.go".
		Patterns []string

		// Ignore adds to the built-in ignore patterns.
		Ignore []string

		// Debounce is the quiet period after the last event. Zero or negative
		// values use the default.
		Debounce time.Duration

		// OnChange receives the sorted absolute paths changed since the last
		// call. Errors are logged and watching continues.
		OnChange func(ctx context.Context, changed []string) error

		// Logger defaults to slog.Default().
		Logger *slog.Logger
	}

	// Watcher fires Config.OnChange after matching files change. Run must
	// be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		patterns []string
		ignores  []string
		debounce time.Duration
		log      *slog.Logger
		started  atomic.Bool
	}
)

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// New validates cfg and registers every directory with fsnotify.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Dirs) == 0 {
		return nil, errors.New("watch: no directories to watch")
	}
	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	w := &Watcher{
		cfg:      cfg,
		patterns: cfg.Patterns,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		debounce: cfg.Debounce,
		log:      cfg.Logger,
	}
	if len(w.patterns) == 0 {
		w.patterns = defaultPatterns
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}
	if w.log == nil {
		w.log = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	for _, dir := range cfg.Dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			fsw.Close() //nolint:errcheck // best-effort cleanup
			return nil, fmt.Errorf("watch: resolve %s: %w", dir, err)
		}
		if err := fsw.Add(abs); err != nil {
			fsw.Close() //nolint:errcheck // best-effort cleanup
			return nil, fmt.Errorf("watch: add directory %q: %w", abs, err)
		}
	}
	w.fsw = fsw
	return w, nil
}

// Run processes events until ctx is cancelled. It returns nil on
// cancellation and an error when the watcher can no longer work.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire runs on the timer goroutine. A run still in progress defers the
	// batch to the next debounce window instead of overlapping.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.log.Debug("previous run still in progress, retrying")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.log.Error("watch callback failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.log.Warn("close fsnotify", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			if !w.matches(filepath.Base(evt.Name)) {
				continue
			}
			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.log.Warn("fsnotify error", "error", err)
		}
	}
}

// matches reports whether a file name passes the ignore and watch patterns.
func (w *Watcher) matches(name string) bool {
	if matchAny(w.ignores, name) {
		return false
	}
	return matchAny(w.patterns, name)
}

// isFatal reports fsnotify errors after which no further events arrive.
func isFatal(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && slices.Contains(fatalErrnos, errno)
}

func matchAny(patterns []string, name string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if pat == "" || !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
