// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that fail the test
// on error instead of returning it. WriteTree lays out project fixtures;
// MustWriteFile and MustClose cover single operations.
package testutil
