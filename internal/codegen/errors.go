// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrGeneration is the sentinel wrapped by every GenerationError.
var ErrGeneration = errors.New("generation error")

// Reasons a member cannot be generated.
const (
	ReasonMultipleCallbacks = "multiple callback parameters"
	ReasonCallbackNotLast   = "callback is not the last parameter"
	ReasonCallbackArity     = "callback carries more than one value"
	ReasonCallbackSignature = "unsupported callback signature"
	ReasonAsyncResults      = "callback method also returns results"
	ReasonNameCollision     = "name collision after rebinding"
	ReasonStreamBlocking    = "stream method has no blocking form"
	ReasonUnexportedType    = "signature uses an unexported type"
)

type (
	// GenerationError reports an API member skipped for one target.
	GenerationError struct {
		Target string
		// Member is "Interface.Method".
		Member string
		Reason string
	}

	// GenerationErrors batches the errors of a generation run.
	GenerationErrors []*GenerationError
)

func (e *GenerationError) Error() string {
	return fmt.Sprintf("target %s: member %s: %s", e.Target, e.Member, e.Reason)
}

func (e *GenerationError) Unwrap() error { return ErrGeneration }

func (errs GenerationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return fmt.Sprintf("%d member(s) could not be generated:\n  %s", len(errs), strings.Join(lines, "\n  "))
}

// Unwrap exposes each error to errors.Is and errors.As.
func (errs GenerationErrors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}
