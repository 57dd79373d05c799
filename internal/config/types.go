// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	ColorSchemeAuto  ColorScheme = "auto"
	ColorSchemeDark  ColorScheme = "dark"
	ColorSchemeLight ColorScheme = "light"

	// DefaultHistoryPath is relative to the project directory.
	DefaultHistoryPath = ".sxbuild/history.db"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of log records shown.
	LogLevel string

	// ColorScheme selects the terminal palette.
	ColorScheme string

	// Config is the user configuration.
	Config struct {
		UI    UIConfig    `json:"ui" mapstructure:"ui"`
		Log   LogConfig   `json:"log" mapstructure:"log"`
		Build BuildConfig `json:"build" mapstructure:"build"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}

	// LogConfig configures logging.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// BuildConfig configures task execution.
	BuildConfig struct {
		// Parallelism bounds concurrent tasks; 0 means the CPU count.
		Parallelism int  `json:"parallelism" mapstructure:"parallelism"`
		History     bool `json:"history" mapstructure:"history"`
		// HistoryPath is the task history database.
		HistoryPath string `json:"history_path" mapstructure:"history_path"`
	}

	// InvalidConfigError lists every invalid field.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		UI:  UIConfig{ColorScheme: ColorSchemeAuto},
		Log: LogConfig{Level: LogLevelInfo},
		Build: BuildConfig{
			History:     true,
			HistoryPath: DefaultHistoryPath,
		},
	}
}

// String returns the level name.
func (l LogLevel) String() string { return string(l) }

// Validate reports an unknown level.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidLogLevel, string(l))
}

// Slog maps the level onto slog. Unknown levels map to info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate reports an unknown scheme.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidColorScheme, string(c))
}

// Validate checks the fields the schema cannot constrain once environment
// overrides are applied.
func (c Config) Validate() error {
	var errs []error
	if err := c.Log.Level.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ui.color_scheme: %w", err))
	}
	if c.Build.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("build.parallelism: must not be negative, got %d", c.Build.Parallelism))
	}
	if c.Build.History && strings.TrimSpace(c.Build.HistoryPath) == "" {
		errs = append(errs, errors.New("build.history_path: required when history is enabled"))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
