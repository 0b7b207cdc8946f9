// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/modcurator/modcurator/cmd/modcurator"

func main() {
	cmd.Execute()
}
