// SPDX-License-Identifier: MPL-2.0

// Package issue defines the error taxonomy shared by the build pipeline.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints for CLI output. ConfigurationError marks a fatal problem
// in the build descriptor or version catalog; it always names the offending
// module and key. The Issue catalog holds Markdown guidance rendered with
// glamour when the CLI reports a failure.
package issue
