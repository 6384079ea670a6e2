// Package cli implements the kerml command-line surface: the parse,
// validate, and export subcommands and their text/JSON/SARIF reporters.
//
// It mirrors the shape of cmd/cue/cmd: a thin Command wrapper around
// *cobra.Command, a flagName-keyed flag registry, and a New/Main split so
// the cmd/kerml main package stays a one-liner.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Command wraps the active cobra command and the shared exit-code cell the
// way cmd/cue/cmd.Command wraps a cobra command plus its own bookkeeping
// fields; a subcommand's runFunction reports its exit code by setting
// cmd.exitCode rather than by returning a sentinel error.
type Command struct {
	*cobra.Command
	exitCode *int
}

// SetExitCode records the process exit code this invocation should produce,
// per the per-command exit-code rules. It does not stop execution; a
// RunE still returns nil so cobra does not print redundant usage output.
func (c *Command) SetExitCode(code int) {
	*c.exitCode = code
}

type runFunction func(cmd *Command, args []string) error

func mkRunE(exitCode *int, f runFunction) func(*cobra.Command, []string) error {
	return func(cc *cobra.Command, args []string) error {
		return f(&Command{Command: cc, exitCode: exitCode}, args)
	}
}

// New builds the root "kerml" command with every subcommand registered.
// exitCode receives the exit code the invoked subcommand reports.
func New(exitCode *int) *cobra.Command {
	root := &cobra.Command{
		Use:   "kerml",
		Short: "parse, validate, and export SysML v2 / KerML textual models",

		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.InitDefaultHelpFlag()

	root.AddCommand(newParseCmd(exitCode))
	root.AddCommand(newValidateCmd(exitCode))
	root.AddCommand(newExportCmd(exitCode))

	return root
}

// Main runs the kerml CLI with os.Args and returns the process exit code,
// the way cmd/cue/cmd.Main does.
func Main() int {
	exitCode := 0
	root := New(&exitCode)
	root.SetArgs(os.Args[1:])
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}
