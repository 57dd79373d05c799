// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE parsing flow shared by the build descriptor
// and the user configuration:
//
//  1. compile the embedded schema,
//  2. compile the user file and unify it with the schema definition,
//  3. validate and decode into a Go value.
//
// Errors are reported with JSON-path prefixes ("modules[:core].layer") so a
// user can find the offending field.
package cueutil
