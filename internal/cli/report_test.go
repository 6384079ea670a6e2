package cli

import (
	"testing"

	"kerml.dev/sysml/kerml/errors"
	"kerml.dev/sysml/kerml/token"
)

func newTestDiag(sev errors.Severity, code errors.Code, msg string, line int) errors.Error {
	f := token.NewFile("t.kerml", 100)
	// Seed enough lines so Pos(offset) lands on the requested 1-based line.
	for i := 1; i < line; i++ {
		f.AddLine(i * 10)
	}
	offset := (line - 1) * 10
	pos := f.Pos(offset)
	return errors.NewSeverityf(token.Range{Start: pos, End: pos}, sev, code, "%s", msg)
}

func TestBuildReportCountsAndIsValid(t *testing.T) {
	var diags errors.List
	diags = append(diags, newTestDiag(errors.Error, errors.CodeSemanticError, "dup name", 1))
	diags = append(diags, newTestDiag(errors.Warning, errors.CodeValidationWarning, "careful", 2))
	diags = append(diags, newTestDiag(errors.Hint, errors.CodeValidationHint, "consider this", 3))

	rep := buildReport([]fileResult{{File: "a.kerml", Diagnostics: diags}}, false)

	if rep.Summary.TotalFiles != 1 {
		t.Fatalf("TotalFiles = %d, want 1", rep.Summary.TotalFiles)
	}
	if rep.Summary.TotalErrors != 1 || rep.Summary.TotalWarnings != 1 {
		t.Fatalf("Summary = %+v, want 1 error and 1 warning", rep.Summary)
	}
	if rep.Summary.IsValid {
		t.Fatal("IsValid must be false when an error diagnostic is present")
	}
	if len(rep.Files) != 1 {
		t.Fatalf("Files = %v, want one entry", rep.Files)
	}
	fr := rep.Files[0]
	// Hints are dropped by default (includeHints=false).
	if len(fr.Diagnostics) != 2 {
		t.Fatalf("Diagnostics = %v, want 2 entries (error+warning, hint excluded)", fr.Diagnostics)
	}
	if fr.IsValid {
		t.Fatal("a file with an Error-severity diagnostic must not be valid")
	}
}

func TestBuildReportIncludeHints(t *testing.T) {
	var diags errors.List
	diags = append(diags, newTestDiag(errors.Hint, errors.CodeValidationHint, "a hint", 1))

	without := buildReport([]fileResult{{File: "a.kerml", Diagnostics: diags}}, false)
	if len(without.Files[0].Diagnostics) != 0 {
		t.Fatalf("expected hints excluded by default, got %v", without.Files[0].Diagnostics)
	}

	with := buildReport([]fileResult{{File: "a.kerml", Diagnostics: diags}}, true)
	if len(with.Files[0].Diagnostics) != 1 {
		t.Fatalf("expected the hint included with includeHints=true, got %v", with.Files[0].Diagnostics)
	}
	// A hint alone must never flip isValid to false: warnings/hints don't
	// affect validity.
	if !with.Files[0].IsValid || !with.Summary.IsValid {
		t.Fatal("a hint-only file must still be valid")
	}
}

func TestBuildReportIsValidIgnoresWarnings(t *testing.T) {
	var diags errors.List
	diags = append(diags, newTestDiag(errors.Warning, errors.CodeValidationWarning, "heads up", 1))
	rep := buildReport([]fileResult{{File: "a.kerml", Diagnostics: diags}}, false)
	if !rep.Files[0].IsValid || !rep.Summary.IsValid {
		t.Fatal("a warning-only file must still report isValid=true")
	}
}

func TestBuildReportMultipleFilesAggregatesSummary(t *testing.T) {
	var clean errors.List
	var broken errors.List
	broken = append(broken, newTestDiag(errors.Error, errors.CodeSyntaxError, "boom", 1))

	rep := buildReport([]fileResult{
		{File: "a.kerml", Diagnostics: clean},
		{File: "b.kerml", Diagnostics: broken},
	}, false)

	if rep.Summary.TotalFiles != 2 {
		t.Fatalf("TotalFiles = %d, want 2", rep.Summary.TotalFiles)
	}
	if rep.Summary.FilesWithErrors != 1 {
		t.Fatalf("FilesWithErrors = %d, want 1", rep.Summary.FilesWithErrors)
	}
	if rep.Summary.IsValid {
		t.Fatal("overall IsValid must be false when any file has an error")
	}
}

func TestBuildSARIFRuleIDsAndLevels(t *testing.T) {
	var diags errors.List
	diags = append(diags, newTestDiag(errors.Error, errors.CodeSyntaxError, "syntax boom", 1))
	diags = append(diags, newTestDiag(errors.Warning, errors.CodeValidationWarning, "warn", 2))

	log := buildSARIF([]fileResult{{File: "a.kerml", Diagnostics: diags}}, false)

	if log.Version != "2.1.0" {
		t.Fatalf("Version = %q, want 2.1.0", log.Version)
	}
	if len(log.Runs) != 1 {
		t.Fatalf("expected exactly one run, got %d", len(log.Runs))
	}
	results := log.Runs[0].Results
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].RuleID != string(errors.CodeSyntaxError) {
		t.Errorf("RuleID = %q, want %q", results[0].RuleID, errors.CodeSyntaxError)
	}
	if results[0].Level != "error" {
		t.Errorf("Level = %q, want error", results[0].Level)
	}
	if results[1].Level != "warning" {
		t.Errorf("Level = %q, want warning", results[1].Level)
	}
}

func TestBuildSARIFExcludesHintsByDefault(t *testing.T) {
	var diags errors.List
	diags = append(diags, newTestDiag(errors.Hint, errors.CodeValidationHint, "a hint", 1))
	log := buildSARIF([]fileResult{{File: "a.kerml", Diagnostics: diags}}, false)
	if len(log.Runs[0].Results) != 0 {
		t.Fatalf("expected hints excluded by default, got %v", log.Runs[0].Results)
	}
}

func TestSortResultsOrdersByFileName(t *testing.T) {
	results := []fileResult{{File: "z.kerml"}, {File: "a.kerml"}, {File: "m.kerml"}}
	sortResults(results)
	want := []string{"a.kerml", "m.kerml", "z.kerml"}
	for i, w := range want {
		if results[i].File != w {
			t.Fatalf("sortResults order = %v, want %v", results, want)
		}
	}
}

func TestSeverityStringMatchesSpecVocabulary(t *testing.T) {
	cases := map[errors.Severity]string{
		errors.Error:       "error",
		errors.Warning:     "warning",
		errors.Information: "info",
		errors.Hint:        "hint",
	}
	for sev, want := range cases {
		if got := severityString(sev); got != want {
			t.Errorf("severityString(%v) = %q, want %q", sev, got, want)
		}
	}
}
