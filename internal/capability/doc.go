// SPDX-License-Identifier: MPL-2.0

// Package capability holds the registry of named module capabilities.
// A module lists capability names in its descriptor; each name maps to an
// apply function that adjusts the module's settings and contributes tasks.
// Unknown names are configuration errors rather than silent no-ops.
package capability
