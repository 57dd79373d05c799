// SPDX-License-Identifier: MPL-2.0

package codegen

import "fmt"

// Idiom names a facade style.
type Idiom string

const (
	// IdiomBlocking turns async methods into context-aware calls returning
	// (T, error).
	IdiomBlocking Idiom = "blocking"
	// IdiomRx adds Rx-prefixed methods returning Single[T] or Observable[T]
	// next to the mirrored callback methods.
	IdiomRx Idiom = "rx"
	// IdiomMutiny replaces callback methods with ones returning Uni[T] or
	// Multi[T], plus AndAwait variants of async methods.
	IdiomMutiny Idiom = "mutiny"
)

// Idioms lists the supported idioms.
var Idioms = []Idiom{IdiomBlocking, IdiomRx, IdiomMutiny}

// ParseIdiom validates s.
func ParseIdiom(s string) (Idiom, error) {
	for _, i := range Idioms {
		if string(i) == s {
			return i, nil
		}
	}
	return "", fmt.Errorf("unknown idiom %q", s)
}

// reserved returns the package-level names the idiom's support file declares.
func (i Idiom) reserved() []string {
	switch i {
	case IdiomRx:
		return []string{"Single", "Completable", "Observable", "newSingle", "newObservable", "awaitOutcome"}
	case IdiomMutiny:
		return []string{"Uni", "Multi", "newUni", "newMulti", "awaitOutcome"}
	default:
		return []string{"await"}
	}
}
