package errors_test

import (
	"testing"

	"kerml.dev/sysml/kerml/errors"
	"kerml.dev/sysml/kerml/token"
)

func TestListHasErrorsOnlyCountsErrorSeverity(t *testing.T) {
	f := token.NewFile("t.kerml", 10)
	var list errors.List
	list.Add(errors.NewSeverityf(token.Range{Start: f.Pos(0), End: f.Pos(1)}, errors.Hint, errors.CodeValidationHint, "a hint"))
	if list.HasErrors() {
		t.Fatal("a hint-only list must not report HasErrors")
	}
	list.AddNewf(f.Pos(2), errors.CodeSyntaxError, "boom")
	if !list.HasErrors() {
		t.Fatal("expected HasErrors to be true once an Error-severity diagnostic is present")
	}
}

func TestListCountSeverity(t *testing.T) {
	f := token.NewFile("t.kerml", 10)
	var list errors.List
	list.AddNewf(f.Pos(0), errors.CodeSyntaxError, "e1")
	list.AddNewf(f.Pos(1), errors.CodeSyntaxError, "e2")
	list.Add(errors.NewSeverityf(token.Range{Start: f.Pos(2), End: f.Pos(2)}, errors.Warning, errors.CodeValidationWarning, "w1"))
	if n := list.CountSeverity(errors.Error); n != 2 {
		t.Fatalf("CountSeverity(Error) = %d, want 2", n)
	}
	if n := list.CountSeverity(errors.Warning); n != 1 {
		t.Fatalf("CountSeverity(Warning) = %d, want 1", n)
	}
}

func TestAddFlattensNestedList(t *testing.T) {
	f := token.NewFile("t.kerml", 10)
	var inner errors.List
	inner.AddNewf(f.Pos(0), errors.CodeSyntaxError, "inner error")

	var outer errors.List
	outer.Add(inner)
	if len(outer) != 1 {
		t.Fatalf("expected Add to flatten a nested List, got %d entries", len(outer))
	}
}

func TestSortOrdersByPositionThenMessage(t *testing.T) {
	f := token.NewFile("t.kerml", 10)
	var list errors.List
	list.AddNewf(f.Pos(5), errors.CodeSyntaxError, "later")
	list.AddNewf(f.Pos(1), errors.CodeSyntaxError, "earlier")
	list.Sort()
	if list[0].Error() != "earlier" {
		t.Fatalf("Sort() did not put the earlier position first: %v", list)
	}
}

func TestSanitizeRemovesExactDuplicates(t *testing.T) {
	f := token.NewFile("t.kerml", 10)
	var list errors.List
	list.AddNewf(f.Pos(3), errors.CodeSyntaxError, "dup")
	list.AddNewf(f.Pos(3), errors.CodeSyntaxError, "dup")
	list.AddNewf(f.Pos(3), errors.CodeSyntaxError, "different")
	got := list.Sanitize()
	if len(got) != 2 {
		t.Fatalf("Sanitize() left %d entries, want 2: %v", len(got), got)
	}
}

func TestListErrWrapsOrNilsOnEmpty(t *testing.T) {
	var empty errors.List
	if empty.Err() != nil {
		t.Fatal("Err() on an empty list must be nil")
	}
	f := token.NewFile("t.kerml", 10)
	var list errors.List
	list.AddNewf(f.Pos(0), errors.CodeSyntaxError, "boom")
	if list.Err() == nil {
		t.Fatal("Err() on a non-empty list must be non-nil")
	}
}

func TestSeverityStringValues(t *testing.T) {
	cases := map[errors.Severity]string{
		errors.Error:       "error",
		errors.Warning:     "warning",
		errors.Information: "info",
		errors.Hint:        "hint",
	}
	for sev, want := range cases {
		if got := sev.String(); got != want {
			t.Errorf("Severity(%d).String() = %q, want %q", sev, got, want)
		}
	}
}
