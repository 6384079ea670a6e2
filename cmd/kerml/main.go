// Command kerml parses, validates, and exports SysML v2 / KerML textual
// models. All of its logic lives in internal/cli; this package is
// the one-line entry point, the same split cmd/cue/main.go keeps from
// cmd/cue/cmd.
package main

import (
	"os"

	"kerml.dev/sysml/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
