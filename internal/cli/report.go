package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"kerml.dev/sysml/kerml/errors"
)

// diagReport is one diagnostic in the shape the JSON/SARIF reporters use.
type diagReport struct {
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"endLine"`
	EndColumn int    `json:"endColumn"`
}

// fileReport is one file's entry in the JSON report.
type fileReport struct {
	File         string       `json:"file"`
	IsValid      bool         `json:"isValid"`
	ErrorCount   int          `json:"errorCount"`
	WarningCount int          `json:"warningCount"`
	Diagnostics  []diagReport `json:"diagnostics"`
}

// summaryReport is the `summary` object of the JSON report.
type summaryReport struct {
	TotalFiles      int  `json:"totalFiles"`
	FilesWithErrors int  `json:"filesWithErrors"`
	TotalErrors     int  `json:"totalErrors"`
	TotalWarnings   int  `json:"totalWarnings"`
	IsValid         bool `json:"isValid"`
}

// diagnosticReport is the full JSON report document.
type diagnosticReport struct {
	Summary summaryReport `json:"summary"`
	Files   []fileReport  `json:"files"`
}

// fileResult is one processed file, independent of which subcommand
// produced it; buildReport folds a slice of these into the JSON report.
type fileResult struct {
	File        string
	Diagnostics errors.List
}

func severityString(sev errors.Severity) string {
	switch sev {
	case errors.Error:
		return "error"
	case errors.Warning:
		return "warning"
	case errors.Information:
		return "info"
	case errors.Hint:
		return "hint"
	default:
		return "error"
	}
}

// buildReport assembles the JSON report from a set of per-file results.
// includeHints controls whether Hint-severity diagnostics are kept (the
// --hints flag); isValid per file and overall always reflects only
// Error-severity diagnostics, independent of --hints or -w.
func buildReport(results []fileResult, includeHints bool) diagnosticReport {
	rep := diagnosticReport{}
	for _, r := range results {
		fr := fileReport{File: r.File}
		diags := r.Diagnostics.Sanitize()
		for _, d := range diags {
			if d.Severity() == errors.Hint && !includeHints {
				continue
			}
			pos := d.Range()
			start := pos.Start.Position()
			end := pos.End.Position()
			fr.Diagnostics = append(fr.Diagnostics, diagReport{
				Severity:  severityString(d.Severity()),
				Message:   d.Error(),
				Line:      start.Line,
				Column:    start.Column,
				EndLine:   end.Line,
				EndColumn: end.Column,
			})
			switch d.Severity() {
			case errors.Error:
				fr.ErrorCount++
			case errors.Warning:
				fr.WarningCount++
			}
		}
		fr.IsValid = fr.ErrorCount == 0
		rep.Files = append(rep.Files, fr)

		rep.Summary.TotalFiles++
		rep.Summary.TotalErrors += fr.ErrorCount
		rep.Summary.TotalWarnings += fr.WarningCount
		if !fr.IsValid {
			rep.Summary.FilesWithErrors++
		}
	}
	rep.Summary.IsValid = rep.Summary.FilesWithErrors == 0
	return rep
}

func writeJSON(w io.Writer, rep diagnosticReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

const (
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiReset  = "\033[0m"
)

func colorFor(sev string) string {
	switch sev {
	case "error":
		return ansiRed
	case "warning":
		return ansiYellow
	case "info", "hint":
		return ansiCyan
	default:
		return ""
	}
}

// isTerminal reports whether f is attached to a character device, using
// only os.FileInfo — the standard-library way to detect a terminal without
// pulling in a dependency cmd/cue/cmd itself never needed.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// writeText renders rep as the human-readable form of the report: one
// block per file, one line per diagnostic, colorized when out is a terminal
// and noColors is false, finishing with the summary line.
func writeText(w io.Writer, out *os.File, rep diagnosticReport, noColors bool) {
	colorize := !noColors && out != nil && isTerminal(out)
	for _, fr := range rep.Files {
		fmt.Fprintf(w, "%s (%d error(s), %d warning(s))\n", fr.File, fr.ErrorCount, fr.WarningCount)
		for _, d := range fr.Diagnostics {
			if colorize {
				fmt.Fprintf(w, "  %s%s%s: %s\n    %s:%d:%d\n",
					colorFor(d.Severity), d.Severity, ansiReset, d.Message, fr.File, d.Line, d.Column)
			} else {
				fmt.Fprintf(w, "  %s: %s\n    %s:%d:%d\n",
					d.Severity, d.Message, fr.File, d.Line, d.Column)
			}
		}
	}
	fmt.Fprintf(w, "%d file(s), %d error(s), %d warning(s), isValid=%t\n",
		rep.Summary.TotalFiles, rep.Summary.TotalErrors, rep.Summary.TotalWarnings, rep.Summary.IsValid)
}

// sarifLog is the minimal SARIF 2.1.0 envelope for this tool's diagnostics:
// schema/version header, one run, one tool driver, and results
// carrying ruleId/level/message/locations.
type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool      `json:"tool"`
	Results []sarifResult  `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name  string   `json:"name"`
	Rules []string `json:"rules,omitempty"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

func sarifLevel(sev string) string {
	switch sev {
	case "error":
		return "error"
	case "warning":
		return "warning"
	default:
		return "note"
	}
}

func buildSARIF(results []fileResult, includeHints bool) sarifLog {
	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name: "kerml",
				Rules: []string{
					string(errors.CodeSyntaxError),
					string(errors.CodeSemanticError),
					string(errors.CodeValidationWarning),
					string(errors.CodeValidationHint),
				},
			}},
		}},
	}
	run := &log.Runs[0]
	for _, r := range results {
		diags := r.Diagnostics.Sanitize()
		for _, d := range diags {
			if d.Severity() == errors.Hint && !includeHints {
				continue
			}
			start := d.Range().Start.Position()
			end := d.Range().End.Position()
			run.Results = append(run.Results, sarifResult{
				RuleID:  string(d.Code()),
				Level:   sarifLevel(severityString(d.Severity())),
				Message: sarifMessage{Text: d.Error()},
				Locations: []sarifLocation{{PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: r.File},
					Region: sarifRegion{
						StartLine: start.Line, StartColumn: start.Column,
						EndLine: end.Line, EndColumn: end.Column,
					},
				}}},
			})
		}
	}
	return log
}

func writeSARIF(w io.Writer, results []fileResult, includeHints bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildSARIF(results, includeHints))
}

// sortResults orders file results by name so reporter output is
// deterministic regardless of glob-expansion order.
func sortResults(results []fileResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
}
