package cli

import (
	"github.com/spf13/cobra"

	"kerml.dev/sysml/kerml/build"
)

// newParseCmd implements `kerml parse`: parses each named file and
// reports lexer/parser diagnostics only, exiting 0 iff every file parsed
// clean.
func newParseCmd(exitCode *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <files...>",
		Short: "parse files and report lexer/parser diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE:  mkRunE(exitCode, runParse),
	}
	addOutFlag(cmd.Flags())
	addFormatFlag(cmd.Flags(), "compact", "output format: json|compact")
	addNoColorsFlag(cmd.Flags())
	return cmd
}

func runParse(cmd *Command, args []string) error {
	contents, files, err := readFiles(args)
	if err != nil {
		return err
	}

	var results []fileResult
	allClean := true
	for _, f := range files {
		doc := build.NewDocument(f, contents[f])
		diags := doc.Diagnostics()
		if diags.HasErrors() {
			allClean = false
		}
		results = append(results, fileResult{File: f, Diagnostics: diags})
	}
	sortResults(results)

	out, closeOut, err := openOut(cmd)
	if err != nil {
		return err
	}
	defer closeOut()

	rep := buildReport(results, true)
	switch flagFormat.String(cmd) {
	case "json":
		if err := writeJSON(out, rep); err != nil {
			return err
		}
	default:
		writeText(out, out, rep, flagNoColors.Bool(cmd))
	}

	if !allClean {
		cmd.SetExitCode(1)
	}
	return nil
}
