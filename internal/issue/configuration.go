// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the sentinel wrapped by every ConfigurationError.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a descriptor or catalog problem that must stop
// the build before anything is generated. Module is the module path
// (":core") or "-" when the problem is not tied to a module; Key names the
// offending table, role or field.
type ConfigurationError struct {
	Module string
	Key    string
	Cause  error
}

// NewConfigurationError creates a ConfigurationError from a formatted reason.
func NewConfigurationError(module, key, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Module: module,
		Key:    key,
		Cause:  fmt.Errorf(format, args...),
	}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	module := e.Module
	if module == "" {
		module = "-"
	}
	if e.Cause == nil {
		return fmt.Sprintf("configuration error in module %s, key %q", module, e.Key)
	}
	return fmt.Sprintf("configuration error in module %s, key %q: %v", module, e.Key, e.Cause)
}

// Unwrap returns both the sentinel and the cause so errors.Is matches either.
func (e *ConfigurationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Cause}
}

// IsConfiguration reports whether err carries a ConfigurationError.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
