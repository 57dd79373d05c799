// SPDX-License-Identifier: MPL-2.0

// Package docs assembles the documentation site bundle: per-module API
// reference pages produced from go/doc, narrative fragments copied into
// partials/, the Antora component descriptor and an index page. Only the
// modules listed in the project pool take part.
package docs
