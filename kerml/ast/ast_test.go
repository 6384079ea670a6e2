package ast_test

import (
	"testing"

	"kerml.dev/sysml/kerml/ast"
	"kerml.dev/sysml/kerml/parser"
)

func TestQualifiedNameStringJoinsWithColonColon(t *testing.T) {
	root, errs := parser.ParseFile("t.kerml", []byte(`part def Car :> A::B::C;`))
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	var qn *ast.QualifiedName
	ast.Walk(root, func(n ast.Node) bool {
		if q, ok := n.(*ast.QualifiedName); ok {
			qn = q
		}
		return true
	}, nil)
	if qn == nil {
		t.Fatal("expected a QualifiedName in the tree")
	}
	if got, want := qn.String(), "A::B::C"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestElementNameReturnsDefinitionAndUsageNames(t *testing.T) {
	root, errs := parser.ParseFile("t.kerml", []byte(`part def Car { part engine : Engine; }`))
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	om, ok := root.Elements[0].(*ast.OwningMembership)
	if !ok {
		t.Fatalf("expected an OwningMembership, got %T", root.Elements[0])
	}
	def, ok := om.Element.(*ast.Definition)
	if !ok {
		t.Fatalf("expected a Definition, got %T", om.Element)
	}
	name := ast.ElementName(def)
	if name == nil || name.Name != "Car" {
		t.Fatalf("ElementName(def) = %v, want Car", name)
	}

	_, elements, ok := ast.ElementBody(def)
	if !ok || len(elements) != 1 {
		t.Fatalf("ElementBody(def) = (ok=%v, elements=%v), want one element", ok, elements)
	}
}

func TestWalkVisitsContainerBackLinks(t *testing.T) {
	root, errs := parser.ParseFile("t.kerml", []byte(`package P { part def Engine; }`))
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	var defNode ast.Node
	ast.Walk(root, func(n ast.Node) bool {
		if d, ok := n.(*ast.Definition); ok {
			defNode = d
		}
		return true
	}, nil)
	if defNode == nil {
		t.Fatal("expected to find the Engine definition")
	}
	// For every node n, n's container's children contain n — walking up the
	// container chain from the definition must reach the root.
	seenRoot := false
	for c := defNode.Container(); c != nil; c = c.Container() {
		if c == ast.Node(root) {
			seenRoot = true
			break
		}
	}
	if !seenRoot {
		t.Fatal("expected the container chain to reach the root namespace")
	}
}

func TestVisibilityString(t *testing.T) {
	cases := map[ast.Visibility]string{
		ast.VisibilityUnspecified: "",
		ast.VisibilityPublic:      "public",
		ast.VisibilityPrivate:     "private",
		ast.VisibilityProtected:   "protected",
	}
	for v, want := range cases {
		if got := v.String(); got != want {
			t.Errorf("Visibility(%d).String() = %q, want %q", v, got, want)
		}
	}
}
