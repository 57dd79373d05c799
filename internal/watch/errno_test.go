// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsFatal(t *testing.T) {
	t.Parallel()

	for _, errno := range fatalErrnos {
		if !isFatal(errno) {
			t.Errorf("isFatal(%v) = false", errno)
		}
		if err := fmt.Errorf("fsnotify: %w", errno); !isFatal(err) {
			t.Errorf("isFatal(%v) = false", err)
		}
	}
	for _, err := range []error{
		errors.New("queue overflow"),
		syscall.Errno(0),
		nil,
	} {
		if isFatal(err) {
			t.Errorf("isFatal(%v) = true", err)
		}
	}
}
