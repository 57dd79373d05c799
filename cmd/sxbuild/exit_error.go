// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/zero88/sxbuild/internal/codegen"
	"github.com/zero88/sxbuild/internal/config"
	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/pkg/buildfile"
	"github.com/zero88/sxbuild/pkg/catalog"
)

// Exit codes.
const (
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitGeneration    = 3
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCode maps err to the process exit status. Configuration problems win
// over generation errors, which win over everything else.
func exitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.Code
	case issue.IsConfiguration(err),
		errors.Is(err, buildfile.ErrNotFound),
		errors.Is(err, buildfile.ErrInvalid),
		errors.Is(err, catalog.ErrInvalidCatalog),
		errors.Is(err, config.ErrInvalidConfig):
		return ExitConfiguration
	case errors.Is(err, codegen.ErrGeneration):
		return ExitGeneration
	default:
		return ExitFailure
	}
}
