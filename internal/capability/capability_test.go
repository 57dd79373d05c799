// SPDX-License-Identifier: MPL-2.0

package capability

import (
	"errors"
	"slices"
	"testing"

	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/pkg/buildfile"
)

func TestDefault_Names(t *testing.T) {
	t.Parallel()

	want := []string{Antora, Codegen, Docgen, OSS, TestFixtures}
	slices.Sort(want)
	if got := Default().Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestApply_OSS(t *testing.T) {
	t.Parallel()

	off := false
	s := &Settings{
		Publishing: buildfile.Publishing{Homepage: "https://github.com/zero88/scheduler.x"},
		Features:   buildfile.Features{GitHub: &off},
	}
	if err := Default().Apply(":core", []string{OSS}, s); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if s.Features.Zero88 == nil || !*s.Features.Zero88 {
		t.Error("zero88 should default to enabled")
	}
	if *s.Features.GitHub {
		t.Error("explicit github=false must be kept")
	}
	if s.Features.TestLogger.SlowThreshold != DefaultSlowThreshold {
		t.Errorf("SlowThreshold = %d", s.Features.TestLogger.SlowThreshold)
	}
	if !s.HasTask(TaskPublication) {
		t.Errorf("Tasks = %v", s.Tasks)
	}
}

func TestApply_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		caps     []string
		settings Settings
		wantKey  string
	}{
		{"unknown", []string{"kotlin"}, Settings{}, "capabilities"},
		{"oss without homepage", []string{OSS}, Settings{}, "publishing.homepage"},
		{"codegen without targets", []string{Codegen}, Settings{Codegen: &buildfile.Codegen{}}, "codegen"},
		{"docgen before codegen", []string{Docgen}, Settings{}, "capabilities"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := tt.settings
			err := Default().Apply(":core", tt.caps, &s)
			var ce *issue.ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("error = %v, want *issue.ConfigurationError", err)
			}
			if ce.Module != ":core" || ce.Key != tt.wantKey {
				t.Errorf("error = %v, want module :core key %q", ce, tt.wantKey)
			}
		})
	}
}

func TestApply_CodegenDocgenAntora(t *testing.T) {
	t.Parallel()

	s := &Settings{Codegen: &buildfile.Codegen{Targets: []buildfile.Target{{ID: "rx", Idiom: "rx"}}}}
	if err := Default().Apply(":core", []string{Codegen, Docgen, Antora, TestFixtures, Codegen}, s); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := []string{TaskCodegen, TaskDocgen, TaskDocs}
	if !slices.Equal(s.Tasks, want) {
		t.Errorf("Tasks = %v, want %v", s.Tasks, want)
	}
	if !s.TestFixtures {
		t.Error("TestFixtures should be set")
	}
	if s.Docs == nil || s.Docs.Narrative != buildfile.DefaultNarrativeDir {
		t.Errorf("Docs = %+v", s.Docs)
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	r := New()
	called := false
	if err := r.Register("custom", func(buildfile.ModulePath, *Settings) error { called = true; return nil }); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("custom", func(buildfile.ModulePath, *Settings) error { return nil }); err == nil {
		t.Error("duplicate Register() should fail")
	}
	if err := r.Register("", nil); err == nil {
		t.Error("empty Register() should fail")
	}
	if err := r.Apply(":x", []string{"custom"}, &Settings{}); err != nil || !called {
		t.Errorf("Apply() = %v, called = %v", err, called)
	}
}
