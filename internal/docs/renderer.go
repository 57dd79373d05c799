// SPDX-License-Identifier: MPL-2.0

package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ErrRenderer is wrapped by every failure of the external renderer.
var ErrRenderer = errors.New("documentation renderer failed")

// runRenderer runs the external renderer command through the embedded
// shell with IN set to the bundle directory and OUT to the site directory.
func runRenderer(ctx context.Context, script, in, out string, stdout, stderr io.Writer) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "renderer")
	if err != nil {
		return fmt.Errorf("parse renderer command: %w", err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create site directory: %w", err)
	}

	env := append(os.Environ(), "IN="+in, "OUT="+out)
	runner, err := interp.New(
		interp.Dir(in),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return fmt.Errorf("create renderer shell: %w", err)
	}
	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return fmt.Errorf("%w: exited with status %d", ErrRenderer, int(status))
		}
		return fmt.Errorf("%w: %w", ErrRenderer, err)
	}
	return nil
}
