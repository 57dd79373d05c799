// SPDX-License-Identifier: MPL-2.0

package history

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/zero88/sxbuild/internal/testutil"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { testutil.MustClose(t, s) })
	return s
}

func TestStore_PutGet(t *testing.T) {
	t.Parallel()
	s := openStore(t)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "codegen::core:rx"); err != nil || ok {
		t.Fatalf("Get() on empty store = %v, %v", ok, err)
	}

	finished := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	want := Record{
		Task:        "codegen::core:rx",
		Fingerprint: "abc",
		Outputs:     []string{"/tmp/rx"},
		FinishedAt:  finished,
		Duration:    1500 * time.Millisecond,
	}
	if err := s.Put(ctx, want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	want.Fingerprint = "def"
	if err := s.Put(ctx, want); err != nil {
		t.Fatalf("Put() replace error = %v", err)
	}

	got, ok, err := s.Get(ctx, want.Task)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if got.Fingerprint != "def" || !got.FinishedAt.Equal(finished) || got.Duration != want.Duration || !slices.Equal(got.Outputs, want.Outputs) {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	if err := s.Put(ctx, Record{Task: "api::core", Fingerprint: "x"}); err != nil {
		t.Fatal(err)
	}
	records, err := s.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].Task != "api::core" {
		t.Errorf("Records() = %+v", records)
	}

	if err := s.Forget(ctx, "api::core"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "api::core"); ok {
		t.Error("Forget() kept the record")
	}
}

func TestStore_UpToDate(t *testing.T) {
	t.Parallel()
	s := openStore(t)
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "out.go")
	if err := os.WriteFile(out, []byte("package out\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, Record{Task: "t", Fingerprint: "fp", Outputs: []string{out}}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		fingerprint string
		remove      bool
		want        bool
	}{
		{"same inputs", "fp", false, true},
		{"changed inputs", "other", false, false},
		{"missing output", "fp", true, false},
	}
	for _, tt := range tests {
		if tt.remove {
			if err := os.Remove(out); err != nil {
				t.Fatal(err)
			}
		}
		got, err := s.UpToDate(ctx, "t", tt.fingerprint)
		if err != nil || got != tt.want {
			t.Errorf("%s: UpToDate() = %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}
	if got, _ := s.UpToDate(ctx, "unknown", "fp"); got {
		t.Error("unknown task reported up to date")
	}
}

func TestHasher(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.go", "package a\n")
	write("notes.txt", "one\n")

	sum := func() string {
		t.Helper()
		h := NewHasher()
		h.String("idiom", "rx")
		if err := h.Tree(dir, "*.go"); err != nil {
			t.Fatal(err)
		}
		return h.Sum()
	}

	first := sum()
	if first != sum() {
		t.Fatal("fingerprint is not stable")
	}
	write("notes.txt", "two\n")
	if sum() != first {
		t.Error("unmatched file changed the fingerprint")
	}
	write("a.go", "package a\n\nvar X int\n")
	if sum() == first {
		t.Error("matched file change not detected")
	}

	h1, h2 := NewHasher(), NewHasher()
	h1.String("ab", "c")
	h2.String("a", "bc")
	if h1.Sum() == h2.Sum() {
		t.Error("adjacent values run together")
	}

	missing, empty := NewHasher(), NewHasher()
	if err := missing.File(filepath.Join(dir, "none")); err != nil {
		t.Fatal(err)
	}
	write("none", "")
	if err := empty.File(filepath.Join(dir, "none")); err != nil {
		t.Fatal(err)
	}
	if missing.Sum() == empty.Sum() {
		t.Error("missing and empty files hash the same")
	}
}
