// SPDX-License-Identifier: MPL-2.0

// Package versionpool resolves concrete dependency versions from curated
// compatibility tables.
//
// A Table maps a major version to the ordered list of minor versions known
// to work with the project; callers select a minor by its patch position.
// Keeping selection behind an index lets consumers stay version-consistent
// while the table grows by appending entries.
//
// Each dependency family (the networking core, its test-support library, ...)
// owns a separate Table inside a Pool. Tables are copied on construction, so
// two families never share backing storage even when built from the same
// literal.
package versionpool
