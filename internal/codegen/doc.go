// SPDX-License-Identifier: MPL-2.0

// Package codegen generates facade packages from a core Go package.
//
// The API surface is every exported interface whose doc comment carries the
// //sxgen:api directive. Each method is classified by shape:
//
//   - sync: no callback parameter; mirrored as is.
//   - fluent: sync, returning its own interface; the facade returns itself.
//   - async: last parameter is func(T, error) or func(error).
//   - stream: last parameter is func(T).
//
// A target renders the surface in one idiom (blocking, rx or mutiny) into
// its own package with a private support file. Members that cannot be
// expressed in the idiom are skipped and reported as GenerationErrors once
// every target has run. Output is deterministic: members are sorted and the
// code is formatted in format-only mode, so regenerating unchanged input
// yields byte-identical files.
package codegen
