package cli

import "github.com/spf13/pflag"

// flagName follows cmd/cue/cmd/flags.go's pattern: flag names are typed
// constants, and each has an accessor that panics if a command forgot to
// register it, rather than a bare string threaded through every RunE.
type flagName string

const (
	flagOutFile  flagName = "out"
	flagFormat   flagName = "format"
	flagNoColors flagName = "no-colors"
	flagWarnings flagName = "warnings-as-errors"
	flagHints    flagName = "hints"
	flagQuiet    flagName = "quiet"
)

func (f flagName) ensureAdded(cmd *Command) {
	if cmd.Flags().Lookup(string(f)) == nil {
		panic("cli: flag " + string(f) + " used without being registered")
	}
}

func (f flagName) String(cmd *Command) string {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetString(string(f))
	return v
}

func (f flagName) Bool(cmd *Command) bool {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetBool(string(f))
	return v
}

// addOutFlag registers the `-o, --out` flag shared by all three subcommands.
func addOutFlag(fs *pflag.FlagSet) {
	fs.StringP(string(flagOutFile), "o", "", "write output to file instead of stdout")
}

// addFormatFlag registers the `-f, --format` flag, whose accepted values
// differ per subcommand.
func addFormatFlag(fs *pflag.FlagSet, def, usage string) {
	fs.StringP(string(flagFormat), "f", def, usage)
}

func addNoColorsFlag(fs *pflag.FlagSet) {
	fs.Bool(string(flagNoColors), false, "disable ANSI color in text output")
}

// addValidateFlags registers validate's extra flags: -w promotes warnings to
// errors for exit-code purposes, --hints includes hint-severity diagnostics
// in reporter output, -q suppresses everything but the summary line.
func addValidateFlags(fs *pflag.FlagSet) {
	fs.BoolP(string(flagWarnings), "w", false, "treat warnings as errors for the exit code")
	fs.Bool(string(flagHints), false, "include hint-severity diagnostics in output")
	fs.BoolP(string(flagQuiet), "q", false, "print only the summary line")
}
