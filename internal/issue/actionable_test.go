// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "resolve versions"},
			want: "failed to resolve versions",
		},
		{
			name: "with resource",
			err:  &ActionableError{Operation: "load build descriptor", Resource: "sxbuild.cue"},
			want: "failed to load build descriptor: sxbuild.cue",
		},
		{
			name: "with cause",
			err: &ActionableError{
				Operation: "generate facades",
				Resource:  ":core",
				Cause:     errors.New("no API types"),
			},
			want: "failed to generate facades: :core: no API types",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("unexpected token")
	err := &ActionableError{
		Operation:   "load build descriptor",
		Resource:    "sxbuild.cue",
		Suggestions: []string{"Check the CUE syntax"},
		Cause:       fmt.Errorf("parse: %w", root),
	}

	short := err.Format(false)
	if !strings.Contains(short, "• Check the CUE syntax") {
		t.Errorf("Format(false) misses suggestion: %q", short)
	}
	if strings.Contains(short, "Error chain:") {
		t.Errorf("Format(false) must not include the chain: %q", short)
	}

	long := err.Format(true)
	for _, want := range []string{"Error chain:", "1. parse: unexpected token", "2. unexpected token"} {
		if !strings.Contains(long, want) {
			t.Errorf("Format(true) missing %q in %q", want, long)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return a nil interface")
	}

	cause := errors.New("cause")
	err := NewErrorContext().
		WithOperation("assemble docs").
		WithResource(":docs").
		WithSuggestion("a").
		WithSuggestion("b").
		WithSuggestion("c").
		Wrap(cause).
		BuildError()

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("BuildError() = %T, want *ActionableError", err)
	}
	if len(ae.Suggestions) != 3 {
		t.Errorf("Suggestions = %v, want 3 entries", ae.Suggestions)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}
	cause := errors.New("boom")
	err := WrapWithContext(cause, "write partials", "build/site")
	if err.Error() != "failed to write partials: build/site: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestConfigurationError(t *testing.T) {
	t.Parallel()

	cause := errors.New("patch index 6 out of range")
	err := &ConfigurationError{Module: ":core", Key: "vertx[4]", Cause: cause}

	if !IsConfiguration(err) {
		t.Error("IsConfiguration() = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should match the cause")
	}
	wrapped := fmt.Errorf("resolve: %w", err)
	var ce *ConfigurationError
	if !errors.As(wrapped, &ce) || ce.Module != ":core" {
		t.Errorf("errors.As failed on wrapped error: %v", wrapped)
	}
	for _, want := range []string{":core", `"vertx[4]"`, "out of range"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error() = %q, missing %q", err.Error(), want)
		}
	}

	bare := NewConfigurationError("", "projectPool", "unknown module %s", ":ghost")
	if !strings.Contains(bare.Error(), "module -") {
		t.Errorf("Error() = %q, want placeholder module", bare.Error())
	}
	if IsConfiguration(errors.New("other")) {
		t.Error("IsConfiguration() = true for a plain error")
	}
}
