// SPDX-License-Identifier: MPL-2.0

// Package modgraph builds the module tree from a build descriptor and a
// version catalog. It computes each module's effective settings (parent
// defaults merged with explicit overrides), resolves dependency roles into
// coordinates, enforces layering and acyclicity, and answers classpath
// queries per dependency scope.
//
// Scope semantics:
//
//   - api: exposed to consumers transitively through api project references.
//   - implementation: on the module's own compile and runtime paths, never exposed.
//   - compileOnly and codeGenerator: never leave the module.
//   - test and testFixtures: confined to their own compilation units and
//     never part of the published artifact.
package modgraph
