// SPDX-License-Identifier: MPL-2.0

// Package catalog loads the version catalog (versions.toml): the version
// pool tables per dependency family, the library coordinates and the
// mapping from logical dependency roles to libraries.
//
//	[pools.vertx]
//	4 = [0, 1, 2, 3, 4, 5]
//
//	[libraries.vertx-core]
//	module = "io.vertx:vertx-core"
//	pool = { family = "vertx", release = "4", major = 4, patch = 4 }
//
//	[libraries.jackson-databind]
//	module = "com.fasterxml.jackson.core:jackson-databind"
//	version = "2.12.0"
//
//	[roles]
//	core-runtime = ["vertx-core"]
//
// Every library version is resolved when the catalog loads, so a broken
// selector fails the build before any module is configured.
package catalog
