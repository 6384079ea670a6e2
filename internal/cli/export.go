package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"kerml.dev/sysml/kerml/build"
)

// newExportCmd implements `kerml export`: serializes each file's AST
// to JSON, exiting 0 iff every file parsed. "ast" keeps the "$type" tag on
// every node; "json" strips it, the way cmd/cue/cmd/export.go's -f json and
// -f text differ only in their final encode step.
func newExportCmd(exitCode *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <files...>",
		Short: "export parsed files as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE:  mkRunE(exitCode, runExport),
	}
	addOutFlag(cmd.Flags())
	addFormatFlag(cmd.Flags(), "json", "output format: json|ast")
	return cmd
}

func runExport(cmd *Command, args []string) error {
	contents, files, err := readFiles(args)
	if err != nil {
		return err
	}

	withType := flagFormat.String(cmd) == "ast"

	out, closeOut, err := openOut(cmd)
	if err != nil {
		return err
	}
	defer closeOut()

	allClean := true
	type fileAST struct {
		File string      `json:"file"`
		AST  interface{} `json:"ast"`
	}
	var docs []fileAST
	for _, f := range files {
		doc := build.NewDocument(f, contents[f])
		if doc.Diagnostics().HasErrors() {
			allClean = false
		}
		docs = append(docs, fileAST{File: f, AST: astToJSON(doc.AST(), withType)})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return err
	}

	if !allClean {
		cmd.SetExitCode(1)
	}
	return nil
}
