// SPDX-License-Identifier: MPL-2.0

// bundle-lua merges a Lua script and the modules it requires into one file.
package main

import cmd "github.com/BlockOG/bundle-lua/cmd/bundlelua"

func main() {
	cmd.Execute()
}
