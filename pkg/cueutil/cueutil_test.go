// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSchema = `
#Doc: {
	name:  string & !=""
	layer: int & >=0 | *0
	tags?: [...string]
}
`

type testDoc struct {
	Name  string   `json:"name"`
	Layer int      `json:"layer"`
	Tags  []string `json:"tags,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		wantName  string
		wantLayer int
		wantErr   string
	}{
		{name: "defaults applied", data: `name: "core"`, wantName: "core", wantLayer: 0},
		{name: "explicit layer", data: "name: \"docs\"\nlayer: 2", wantName: "docs", wantLayer: 2},
		{name: "constraint violated", data: "name: \"docs\"\nlayer: -1", wantErr: "layer"},
		{name: "syntax error", data: `name: `, wantErr: "doc.cue"},
		{name: "unknown field", data: "name: \"a\"\nextra: 1", wantErr: "extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(tt.data), "#Doc", WithFilename("doc.cue"))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAndDecode() error = %v", err)
			}
			if res.Value.Name != tt.wantName || res.Value.Layer != tt.wantLayer {
				t.Errorf("decoded = %+v", *res.Value)
			}
		})
	}
}

func TestParseAndDecode_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "x"`), "#Nope")
	if err == nil || !strings.Contains(err.Error(), "#Nope") {
		t.Errorf("error = %v, want missing definition", err)
	}
}

func TestParseAndDecode_SizeLimit(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "core"`), "#Doc", WithMaxFileSize(4))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("error = %v, want size error", err)
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.cue")
	if err := os.WriteFile(path, []byte(`name: "core", tags: ["a"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := ParseFile[testDoc]([]byte(testSchema), path, "#Doc")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(res.Value.Tags) != 1 {
		t.Errorf("Tags = %v", res.Value.Tags)
	}

	_, err = ParseFile[testDoc]([]byte(testSchema), filepath.Join(t.TempDir(), "missing.cue"), "#Doc")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x.cue") != nil {
		t.Error("FormatError(nil) should return nil")
	}
	err := FormatError(errors.New("plain"), "x.cue")
	if err.Error() != "x.cue: plain" {
		t.Errorf("FormatError() = %q", err.Error())
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{path: nil, want: ""},
		{path: []string{"project"}, want: "project"},
		{path: []string{"modules", ":core", "layer"}, want: "modules.:core.layer"},
		{path: []string{"targets", "0", "id"}, want: "targets[0].id"},
		{path: []string{"a", "0", "b", "12"}, want: "a[0].b[12]"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "a.cue"); err != nil {
		t.Errorf("at limit: %v", err)
	}
	err := CheckFileSize(make([]byte, 101), 100, "a.cue")
	if err == nil || !strings.Contains(err.Error(), "101") {
		t.Errorf("over limit: %v", err)
	}
}
