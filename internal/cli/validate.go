package cli

import (
	"github.com/spf13/cobra"

	"kerml.dev/sysml/kerml/build"
	"kerml.dev/sysml/kerml/errors"
)

// newValidateCmd implements `kerml validate`: runs every stage of the
// pipeline (parse, scope, link, validate) and reports all diagnostics,
// exiting 0 iff zero Error-severity diagnostics across all files (warnings
// and hints never affect the exit code unless -w is given).
func newValidateCmd(exitCode *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <files...>",
		Short: "parse, link, and validate files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  mkRunE(exitCode, runValidate),
	}
	addOutFlag(cmd.Flags())
	addFormatFlag(cmd.Flags(), "text", "output format: text|json|sarif")
	addNoColorsFlag(cmd.Flags())
	addValidateFlags(cmd.Flags())
	return cmd
}

func runValidate(cmd *Command, args []string) error {
	contents, files, err := readFiles(args)
	if err != nil {
		return err
	}

	includeHints := flagHints.Bool(cmd)
	warnAsError := flagWarnings.Bool(cmd)

	var results []fileResult
	hasError := false
	for _, f := range files {
		doc := build.NewDocument(f, contents[f])
		doc.Validate()
		diags := doc.Diagnostics()
		if diags.HasErrors() {
			hasError = true
		}
		if warnAsError && diags.CountSeverity(errors.Warning) > 0 {
			hasError = true
		}
		results = append(results, fileResult{File: f, Diagnostics: diags})
	}
	sortResults(results)

	out, closeOut, err := openOut(cmd)
	if err != nil {
		return err
	}
	defer closeOut()

	quiet := flagQuiet.Bool(cmd)
	rep := buildReport(results, includeHints)
	if quiet {
		rep.Files = nil
	}

	switch flagFormat.String(cmd) {
	case "json":
		err = writeJSON(out, rep)
	case "sarif":
		err = writeSARIF(out, results, includeHints)
	default:
		writeText(out, out, rep, flagNoColors.Bool(cmd))
	}
	if err != nil {
		return err
	}

	if hasError {
		cmd.SetExitCode(1)
	}
	return nil
}
