// SPDX-License-Identifier: MPL-2.0

package buildfile

import (
	"errors"
	"slices"
	"testing"
)

func TestModulePath_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    ModulePath
		wantErr bool
	}{
		{path: ":", wantErr: false},
		{path: ":core", wantErr: false},
		{path: ":ratelimit:api", wantErr: false},
		{path: ":event-trigger.jsonschema", wantErr: false},
		{path: "", wantErr: true},
		{path: "core", wantErr: true},
		{path: ":core:", wantErr: true},
		{path: "::core", wantErr: true},
		{path: ":Core", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.path), func(t *testing.T) {
			t.Parallel()
			err := tt.path.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidModulePath) {
				t.Errorf("error does not wrap ErrInvalidModulePath: %v", err)
			}
		})
	}
}

func TestModulePath_Navigation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path       ModulePath
		wantName   string
		wantParent ModulePath
		hasParent  bool
		wantDir    string
	}{
		{path: ":", wantName: "", hasParent: false, wantDir: "."},
		{path: ":core", wantName: "core", wantParent: ":", hasParent: true, wantDir: "core"},
		{path: ":ratelimit:api", wantName: "api", wantParent: ":ratelimit", hasParent: true, wantDir: "ratelimit/api"},
	}

	for _, tt := range tests {
		t.Run(string(tt.path), func(t *testing.T) {
			t.Parallel()
			if got := tt.path.Name(); got != tt.wantName {
				t.Errorf("Name() = %q, want %q", got, tt.wantName)
			}
			parent, ok := tt.path.Parent()
			if ok != tt.hasParent || parent != tt.wantParent {
				t.Errorf("Parent() = (%q, %v), want (%q, %v)", parent, ok, tt.wantParent, tt.hasParent)
			}
			if got := tt.path.Dir(); got != tt.wantDir {
				t.Errorf("Dir() = %q, want %q", got, tt.wantDir)
			}
		})
	}

	if got := RootPath.Child("core").Child("rx"); got != ":core:rx" {
		t.Errorf("Child() = %q", got)
	}
}

func TestBuildfile_ModulePathsParentsFirst(t *testing.T) {
	t.Parallel()

	bf := &Buildfile{Modules: map[ModulePath]Module{
		":ratelimit:api": {},
		":docs":          {},
		":":              {},
		":ratelimit":     {},
		":core":          {},
	}}
	want := []ModulePath{":", ":core", ":docs", ":ratelimit", ":ratelimit:api"}
	if got := bf.ModulePaths(); !slices.Equal(got, want) {
		t.Errorf("ModulePaths() = %v, want %v", got, want)
	}
}
