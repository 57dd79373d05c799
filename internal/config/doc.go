// SPDX-License-Identifier: MPL-2.0

// Package config holds the user configuration of sxbuild, loaded with Viper
// from a CUE file.
//
// The file lives at ~/.config/sxbuild/config.cue (XDG_CONFIG_HOME on Linux,
// ~/Library/Application Support/sxbuild on macOS, %APPDATA%\sxbuild on
// Windows) and is validated against the embedded #Config schema. Values can
// be overridden with SXBUILD_* environment variables, for example
// SXBUILD_BUILD_PARALLELISM=2.
package config
