// SPDX-License-Identifier: MPL-2.0

// Package pipeline wires the build stages into a task graph.
//
// A run declares one task per unit of work:
//
//   - api:<core> scans the core module's API surface once every target of
//     the module has been validated.
//   - codegen:<core>:<target> renders one facade and registers it as the
//     child module <core>:<target>.
//   - docgen:<core> writes per-member narrative fragments.
//   - docs assembles the documentation bundle of the project pool.
//   - publish applies the publish gate to every module, generated ones
//     included.
//
// Tasks with a fingerprint in the task history are reported up to date
// when their inputs and outputs are unchanged.
package pipeline
