package token_test

import (
	"testing"

	"kerml.dev/sysml/kerml/token"
)

func TestFilePositionLineColumn(t *testing.T) {
	src := "abc\ndef\nghi"
	f := token.NewFile("t.kerml", len(src))
	for i, b := range []byte(src) {
		if b == '\n' {
			f.AddLine(i + 1)
		}
	}

	p := f.Pos(5) // 'e' on line 2
	pos := p.Position()
	if pos.Line != 2 || pos.Column != 2 {
		t.Fatalf("Position() = %+v, want line 2 col 2", pos)
	}
}

func TestNoPosIsInvalidAndSortsLast(t *testing.T) {
	if token.NoPos.IsValid() {
		t.Fatal("NoPos must be invalid")
	}
	f := token.NewFile("t.kerml", 10)
	valid := f.Pos(0)
	if !valid.Before(token.NoPos) {
		t.Fatal("a valid position must sort before NoPos")
	}
}

func TestFileSetAddAndLookup(t *testing.T) {
	fs := token.NewFileSet()
	f := fs.AddFile("a.kerml", 3)
	if fs.File("a.kerml") != f {
		t.Fatal("expected File to return the same *File added by AddFile")
	}
	fs.Remove("a.kerml")
	if fs.File("a.kerml") != nil {
		t.Fatal("expected File to return nil after Remove")
	}
}

func TestPosOffsetRoundTrip(t *testing.T) {
	f := token.NewFile("t.kerml", 20)
	for _, off := range []int{0, 5, 19} {
		p := f.Pos(off)
		if got := f.Offset(p); got != off {
			t.Errorf("Offset(Pos(%d)) = %d, want %d", off, got, off)
		}
	}
}
