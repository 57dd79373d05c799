// SPDX-License-Identifier: MPL-2.0

// Package buildfile loads sxbuild.cue, the declarative description of the
// project's module tree.
//
// The descriptor names the project metadata, the version catalog, the
// publish skip-list, the documentation pool and one entry per module keyed
// by its path (":core", ":ratelimit:api"). Each module lists the
// capabilities it uses, its external dependencies by logical role per
// scope, its project references, its source sets and its codegen targets.
package buildfile
