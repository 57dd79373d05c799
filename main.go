// SPDX-License-Identifier: MPL-2.0

// sxbuild orchestrates the build, facade generation and documentation of
// the scheduler.x module tree.
package main

import cmd "github.com/zero88/sxbuild/cmd/sxbuild"

func main() {
	cmd.Execute()
}
