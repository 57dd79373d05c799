// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/zero88/sxbuild/internal/testutil"
)

func TestWatcher_DebouncesAndFilters(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var (
		mu      sync.Mutex
		calls   int
		changed []string
	)
	done := make(chan struct{})
	w, err := New(Config{
		Dirs:     []string{dir},
		Debounce: 150 * time.Millisecond,
		OnChange: func(_ context.Context, paths []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			changed = append(changed, paths...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	for _, name := range []string{"scheduler.go", "trigger.go", "scheduler_test.go", "notes.txt", "scheduler.go"} {
		testutil.MustWriteFile(t, filepath.Join(dir, name), "package core\n")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange not called")
	}
	// Leave room for a stray second call.
	time.Sleep(400 * time.Millisecond)
	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	want := []string{filepath.Join(dir, "scheduler.go"), filepath.Join(dir, "trigger.go")}
	if !slices.Equal(changed, want) {
		t.Errorf("changed = %v, want %v", changed, want)
	}
}

func TestWatcher_ContextCancel(t *testing.T) {
	t.Parallel()
	w, err := New(Config{Dirs: []string{t.TempDir()}})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no directories", Config{}},
		{"bad watch pattern", Config{Dirs: []string{dir}, Patterns: []string{"[*.go"}}},
		{"empty ignore pattern", Config{Dirs: []string{dir}, Ignore: []string{""}}},
		{"missing directory", Config{Dirs: []string{filepath.Join(dir, "absent")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() should fail")
			}
		})
	}
}

func TestWatcher_Matches(t *testing.T) {
	t.Parallel()
	w, err := New(Config{Dirs: []string{t.TempDir()}, Ignore: []string{"zz_*.go"}})
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsw.Close()

	tests := map[string]bool{
		"scheduler.go":      true,
		"scheduler_test.go": false,
		"zz_generated.go":   false,
		"scheduler.go.swp":  false,
		".#scheduler.go":    false,
		"README.md":         false,
	}
	for name, want := range tests {
		if got := w.matches(name); got != want {
			t.Errorf("matches(%q) = %v, want %v", name, got, want)
		}
	}
}
