package scanner_test

import (
	"testing"

	"kerml.dev/sysml/kerml/errors"
	"kerml.dev/sysml/kerml/scanner"
	"kerml.dev/sysml/kerml/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, []string, errors.List) {
	t.Helper()
	file := token.NewFile("t.kerml", len(src))
	var errs errors.List
	var s scanner.Scanner
	s.Init(file, []byte(src), &errs, 0)

	var toks []token.Token
	var lits []string
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		toks = append(toks, tok)
		lits = append(lits, lit)
	}
	return toks, lits, errs
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks, lits, errs := scanAll(t, "package Engine attribute")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	wantToks := []token.Token{token.PACKAGE, token.IDENT, token.ATTRIBUTE}
	wantLits := []string{"package", "Engine", "attribute"}
	if len(toks) != len(wantToks) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(wantToks), toks)
	}
	for i := range toks {
		if toks[i] != wantToks[i] || lits[i] != wantLits[i] {
			t.Errorf("token[%d] = (%s, %q), want (%s, %q)", i, toks[i], lits[i], wantToks[i], wantLits[i])
		}
	}
}

func TestScanIntegerLiteralBases(t *testing.T) {
	toks, lits, errs := scanAll(t, "123 0xFF 0b101 0o17")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	for _, tok := range toks {
		if tok != token.INT {
			t.Errorf("expected all literals to scan as INT, got %s", tok)
		}
	}
	want := []string{"123", "0xFF", "0b101", "0o17"}
	for i, lit := range lits {
		if lit != want[i] {
			t.Errorf("literal[%d] = %q, want %q", i, lit, want[i])
		}
	}
}

func TestScanRealLiterals(t *testing.T) {
	toks, lits, errs := scanAll(t, "1.5 1e10 1.5e-3")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	for i, tok := range toks {
		if tok != token.FLOAT {
			t.Errorf("literal[%d] = %q scanned as %s, want FLOAT", i, lits[i], tok)
		}
	}
}

func TestScanStringLiteralWithEscapes(t *testing.T) {
	toks, lits, errs := scanAll(t, `"a\nb\u{41}"`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(toks) != 1 || toks[0] != token.STRING {
		t.Fatalf("expected a single STRING token, got %v", toks)
	}
	if want := `"a\nb\u{41}"`; lits[0] != want {
		t.Fatalf("lexeme = %q, want %q (scanner keeps escapes undecoded)", lits[0], want)
	}
}

func TestScanUnrestrictedName(t *testing.T) {
	toks, lits, errs := scanAll(t, `'use case'`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(toks) != 1 || toks[0] != token.NAME {
		t.Fatalf("expected a single NAME token, got %v", toks)
	}
	if want := `'use case'`; lits[0] != want {
		t.Fatalf("lexeme = %q, want %q", lits[0], want)
	}
}

func TestScanUnterminatedStringResynchronises(t *testing.T) {
	toks, _, errs := scanAll(t, "\"abc\nx;")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one lexer error, got %d: %v", len(errs), errs)
	}
	// Scanning must continue past the unterminated string to the rest of
	// the input rather than hanging or aborting.
	foundIdent := false
	for _, tok := range toks {
		if tok == token.IDENT {
			foundIdent = true
		}
	}
	if !foundIdent {
		t.Fatalf("expected scanning to resynchronise and continue, got tokens %v", toks)
	}
}

func TestScanUnterminatedBlockCommentProducesOneError(t *testing.T) {
	_, _, errs := scanAll(t, "/* never closes")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one lexer error for an unterminated block comment, got %d: %v", len(errs), errs)
	}
}

func TestScanDocCommentIsAlwaysEmitted(t *testing.T) {
	file := token.NewFile("t.kerml", len("/** hello */ part"))
	var errs errors.List
	var s scanner.Scanner
	s.Init(file, []byte("/** hello */ part"), &errs, 0) // mode=0: ordinary comments skipped

	_, tok, lit := s.Scan()
	if tok != token.DOC_COMMENT {
		t.Fatalf("expected DOC_COMMENT even without ScanComments mode, got %s", tok)
	}
	if lit != "/** hello */" {
		t.Fatalf("doc comment lexeme = %q", lit)
	}
}

func TestScanOrdinaryCommentsSkippedWithoutMode(t *testing.T) {
	toks, _, errs := scanAll(t, "// a line comment\npart")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(toks) != 1 || toks[0] != token.PART {
		t.Fatalf("expected the comment to be skipped, got %v", toks)
	}
}

func TestScanNestedCommentMarkerInsideDocCommentDoesNotTerminateEarly(t *testing.T) {
	src := "/** a /* nested */ comment still open */"
	// The first "*/" after "nested" must not end the doc comment; only the
	// final "*/" does, since a doc comment treats "/*"/"*/" as balanced.
	file := token.NewFile("t.kerml", len(src))
	var errs errors.List
	var s scanner.Scanner
	s.Init(file, []byte(src), &errs, 0)
	_, tok, lit := s.Scan()
	if tok != token.DOC_COMMENT {
		t.Fatalf("expected DOC_COMMENT, got %s", tok)
	}
	if lit != src {
		t.Fatalf("expected the doc comment to consume the entire input, got %q", lit)
	}
}

func TestScanPunctuationDisambiguation(t *testing.T) {
	toks, _, errs := scanAll(t, ":  ::  :>  :>>  :=  ::=")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Token{token.COLON, token.COLONCOLON, token.SUBSETS, token.REDEFINES, token.DEFINE, token.CCEQ}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Errorf("token[%d] = %s, want %s", i, toks[i], want[i])
		}
	}
}

func TestScanIllegalCharacterReportsErrorAndContinues(t *testing.T) {
	toks, _, errs := scanAll(t, "part $ def")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one illegal-character error, got %d: %v", len(errs), errs)
	}
	if len(toks) != 3 {
		t.Fatalf("expected scanning to continue past the illegal character, got %v", toks)
	}
	if toks[1] != token.ILLEGAL {
		t.Fatalf("expected the bad byte to scan as ILLEGAL, got %s", toks[1])
	}
}

func TestEmptyAndWhitespaceOnlyInputProducesNoTokensAndNoErrors(t *testing.T) {
	for _, src := range []string{"", "   \n\t  \r\n", "// just a comment\n"} {
		toks, _, errs := scanAll(t, src)
		if len(toks) != 0 {
			t.Errorf("scanAll(%q) produced tokens %v, want none", src, toks)
		}
		if len(errs) != 0 {
			t.Errorf("scanAll(%q) produced errors %v, want none", src, errs)
		}
	}
}
