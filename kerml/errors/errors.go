// Package errors defines the diagnostic types produced by every stage of the
// pipeline: lexing, parsing, scope computation, and validation.
//
// The pivotal type is the [Error] interface. A [List] accumulates Errors in
// document order and can be sorted, deduplicated, and printed.
package errors

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"kerml.dev/sysml/kerml/token"
)

// Severity classifies how serious a diagnostic is. Unlike a plain syntax
// error, not every diagnostic in this pipeline should fail a build: hints and
// information diagnostics are informational only (see the validator and the
// CLI's exit-code rules).
type Severity int

const (
	// Error is a severity-1 diagnostic: syntax errors, unresolved references
	// treated as fatal, and hard semantic violations.
	Error Severity = iota + 1
	Warning
	Information
	Hint
)

// String renders the severity the way the text and JSON reporters spell it.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Information:
		return "info"
	case Hint:
		return "hint"
	default:
		return "error"
	}
}

// Code identifies the kind of check that produced a diagnostic, independent
// of its human-readable message. SARIF output uses these as rule IDs.
type Code string

const (
	CodeSyntaxError       Code = "syntax-error"
	CodeSemanticError     Code = "semantic-error"
	CodeValidationWarning Code = "validation-warning"
	CodeValidationHint    Code = "validation-hint"
)

// A Message implements the error interface and separates the format string
// from its arguments, so a later consumer (e.g. a localizer) can recombine
// them differently than fmt.Sprintf would.
type Message struct {
	format string
	args   []interface{}
}

// NewMessagef creates a Message for human consumption.
func NewMessagef(format string, args ...interface{}) Message {
	return Message{format: format, args: args}
}

// Msg returns the unformatted message and its arguments.
func (m *Message) Msg() (format string, args []interface{}) { return m.format, m.args }

func (m *Message) Error() string { return fmt.Sprintf(m.format, m.args...) }

// Error is the diagnostic type threaded through every stage of the pipeline.
type Error interface {
	// Position returns the diagnostic's primary source position.
	Position() token.Pos

	// Range returns the full span the diagnostic covers, used for reporter
	// output that needs an end position as well as a start.
	Range() token.Range

	// Severity reports how serious the diagnostic is.
	Severity() Severity

	// Code identifies the check or stage that produced the diagnostic.
	Code() Code

	// Error reports the message without position information.
	Error() string

	// Path returns the path into the model tree where the error occurred,
	// if applicable; nil otherwise.
	Path() []string

	// Msg returns the unformatted message and its arguments.
	Msg() (format string, args []interface{})
}

var _ Error = &diagError{}

// diagError is the concrete Error implementation used throughout the core;
// List only ever holds values of this type or of type List itself.
type diagError struct {
	pos  token.Pos
	rng  token.Range
	sev  Severity
	code Code
	Message
}

func (e *diagError) Position() token.Pos { return e.pos }
func (e *diagError) Range() token.Range  { return e.rng }
func (e *diagError) Severity() Severity  { return e.sev }
func (e *diagError) Code() Code          { return e.code }
func (e *diagError) Path() []string      { return nil }

// Newf creates an Error of Error severity at a single position.
func Newf(p token.Pos, code Code, format string, args ...interface{}) Error {
	return &diagError{
		pos:     p,
		rng:     token.Range{Start: p, End: p},
		sev:     Error,
		code:    code,
		Message: NewMessagef(format, args...),
	}
}

// NewRangef creates an Error of Error severity spanning rng.
func NewRangef(rng token.Range, code Code, format string, args ...interface{}) Error {
	return &diagError{
		pos:     rng.Start,
		rng:     rng,
		sev:     Error,
		code:    code,
		Message: NewMessagef(format, args...),
	}
}

// NewSeverityf creates an Error with an explicit severity spanning rng.
func NewSeverityf(rng token.Range, sev Severity, code Code, format string, args ...interface{}) Error {
	return &diagError{
		pos:     rng.Start,
		rng:     rng,
		sev:     sev,
		code:    code,
		Message: NewMessagef(format, args...),
	}
}

// List is an accumulator of Errors in the order they were added. Its zero
// value is an empty, ready-to-use list.
type List []Error

// AddNewf appends an Error-severity diagnostic at a single position.
func (p *List) AddNewf(pos token.Pos, code Code, format string, args ...interface{}) {
	*p = append(*p, Newf(pos, code, format, args...))
}

// Add appends err, flattening it if it is itself a List.
func (p *List) Add(err Error) {
	if err == nil {
		return
	}
	if l, ok := err.(List); ok {
		*p = append(*p, l...)
		return
	}
	*p = append(*p, err)
}

// Reset empties the list.
func (p *List) Reset() { *p = (*p)[:0] }

// HasErrors reports whether the list contains at least one Error-severity
// diagnostic; this underlies the CLI's "isValid" computation.
func (p List) HasErrors() bool {
	for _, e := range p {
		if e.Severity() == Error {
			return true
		}
	}
	return false
}

// CountSeverity counts the diagnostics at the given severity.
func (p List) CountSeverity(sev Severity) int {
	n := 0
	for _, e := range p {
		if e.Severity() == sev {
			n++
		}
	}
	return n
}

// Sort orders the list by position, then by path, then by message text —
// diagnostics with no position sort last.
func (p List) Sort() {
	slices.SortFunc(p, func(a, b Error) int {
		if c := comparePosNoPosLast(a.Position(), b.Position()); c != 0 {
			return c
		}
		if c := slices.Compare(a.Path(), b.Path()); c != 0 {
			return c
		}
		return cmp.Compare(a.Error(), b.Error())
	})
}

func comparePosNoPosLast(a, b token.Pos) int {
	if a == b {
		return 0
	}
	if a == token.NoPos {
		return +1
	}
	if b == token.NoPos {
		return -1
	}
	return a.Compare(b)
}

// Sanitize sorts the list and removes exact duplicates (same position,
// severity, code, and message) on a best-effort basis.
func (p List) Sanitize() List {
	if p == nil {
		return nil
	}
	a := slices.Clone(p)
	a.Sort()
	a = slices.CompactFunc(a, func(x, y Error) bool {
		return x.Position() == y.Position() && x.Severity() == y.Severity() &&
			x.Code() == y.Code() && x.Error() == y.Error()
	})
	return a
}

// Error implements the error interface by reporting the first diagnostic's
// message, noting how many more there are.
func (p List) Error() string {
	switch len(p) {
	case 0:
		return "no errors"
	case 1:
		return p[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more diagnostics)", p[0].Error(), len(p)-1)
	}
}

// Err returns p as an error, or nil if p is empty.
func (p List) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

// Is supports errors.Is: it reports whether any diagnostic in p matches target.
func (p List) Is(target error) bool {
	for _, e := range p {
		if errors.Is(e, target) {
			return true
		}
	}
	return false
}

// Config controls how Print renders diagnostics.
type Config struct {
	// Cwd, if set, is stripped as a prefix from filenames before printing.
	Cwd string
}

// Print writes one line per diagnostic to w: "severity: message\n    file:line:col".
func Print(w io.Writer, list List, cfg *Config) {
	if cfg == nil {
		cfg = &Config{}
	}
	for _, e := range list {
		printOne(w, e, cfg)
	}
}

func printOne(w io.Writer, e Error, cfg *Config) {
	fmt.Fprintf(w, "%s: %s\n", e.Severity(), e.Error())
	pos := e.Position()
	if !pos.IsValid() {
		return
	}
	p := pos.Position()
	name := p.Filename
	if cfg.Cwd != "" {
		name = strings.TrimPrefix(name, cfg.Cwd+"/")
	}
	fmt.Fprintf(w, "    %s:%d:%d\n", name, p.Line, p.Column)
}

// Details renders list with Print and returns the result as a string.
func Details(list List, cfg *Config) string {
	var b strings.Builder
	Print(&b, list, cfg)
	return b.String()
}
