// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zero88/sxbuild/internal/issue"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	if cfg.Log.Level != LogLevelInfo || cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("unexpected UI/log defaults: %+v", cfg)
	}
	if cfg.Build.Parallelism != 0 || !cfg.Build.History || cfg.Build.HistoryPath != DefaultHistoryPath {
		t.Errorf("unexpected build defaults: %+v", cfg.Build)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg *Config)
		wantErr bool
	}{
		{
			name:    "partial file keeps defaults",
			content: "build: parallelism: 3\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Build.Parallelism != 3 || !cfg.Build.History || cfg.Log.Level != LogLevelInfo {
					t.Errorf("cfg = %+v", cfg)
				}
			},
		},
		{
			name:    "all sections",
			content: "ui: {verbose: true, color_scheme: \"dark\"}\nlog: level: \"debug\"\nbuild: {history: false, history_path: \"/tmp/h.db\"}\n",
			check: func(t *testing.T, cfg *Config) {
				if !cfg.UI.Verbose || cfg.UI.ColorScheme != ColorSchemeDark || cfg.Log.Level != LogLevelDebug {
					t.Errorf("cfg = %+v", cfg)
				}
				if cfg.Build.History || cfg.Build.HistoryPath != "/tmp/h.db" {
					t.Errorf("build = %+v", cfg.Build)
				}
			},
		},
		{name: "unknown field", content: "build: workers: 2\n", wantErr: true},
		{name: "bad level", content: "log: level: \"trace\"\n", wantErr: true},
		{name: "negative parallelism", content: "build: parallelism: -1\n", wantErr: true},
		{name: "syntax error", content: "build: {\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := writeConfig(t, tt.content)
			cfg, path, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
			if tt.wantErr {
				if err == nil {
					t.Fatal("Load() should fail")
				}
				var ae *issue.ActionableError
				if !errors.As(err, &ae) {
					t.Errorf("error should be actionable, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if path != filepath.Join(dir, "config.cue") {
				t.Errorf("path = %q", path)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, path, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if cfg.Build.HistoryPath != DefaultHistoryPath {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()
	_, _, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "absent.cue"),
	})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("Load() error = %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SXBUILD_BUILD_PARALLELISM", "5")
	t.Setenv("SXBUILD_LOG_LEVEL", "warn")

	dir := writeConfig(t, "build: parallelism: 2\n")
	cfg, _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Build.Parallelism != 5 || cfg.Log.Level != LogLevelWarn {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v", err)
	}
}

func TestCreateDefault_RoundTrip(t *testing.T) {
	t.Parallel()
	opts := LoadOptions{ConfigDirPath: filepath.Join(t.TempDir(), "nested")}

	path, err := CreateDefault(opts)
	if err != nil {
		t.Fatalf("CreateDefault() error = %v", err)
	}
	if _, err := CreateDefault(opts); !errors.Is(err, ErrConfigExists) {
		t.Errorf("second CreateDefault() error = %v", err)
	}

	cfg, loaded, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() of generated file error = %v", err)
	}
	if loaded != path {
		t.Errorf("loaded %q, want %q", loaded, path)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("round trip = %+v, want defaults", cfg)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Log.Level = "loud"
	cfg.UI.ColorScheme = "neon"
	cfg.Build.HistoryPath = " "

	err := cfg.Validate()
	var ice *InvalidConfigError
	if !errors.As(err, &ice) || len(ice.FieldErrors) != 3 {
		t.Fatalf("Validate() = %v", err)
	}
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, ErrInvalidLogLevel) || !errors.Is(err, ErrInvalidColorScheme) {
		t.Error("Validate() error should match every sentinel")
	}
}

func TestLogLevel_Slog(t *testing.T) {
	t.Parallel()
	tests := map[LogLevel]slog.Level{
		LogLevelDebug: slog.LevelDebug,
		LogLevelInfo:  slog.LevelInfo,
		LogLevelWarn:  slog.LevelWarn,
		LogLevelError: slog.LevelError,
		"other":       slog.LevelInfo,
	}
	for level, want := range tests {
		if got := level.Slog(); got != want {
			t.Errorf("%s.Slog() = %v, want %v", level, got, want)
		}
	}
}
