package linker_test

import (
	"testing"

	"kerml.dev/sysml/kerml/ast"
	"kerml.dev/sysml/kerml/linker"
	"kerml.dev/sysml/kerml/parser"
	"kerml.dev/sysml/kerml/scope"
)

func mustParse(t *testing.T, src string) *ast.RootNamespace {
	t.Helper()
	root, errs := parser.ParseFile("test.kerml", []byte(src))
	if errs.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return root
}

func findQualifiedNames(root *ast.RootNamespace) []*ast.QualifiedName {
	var out []*ast.QualifiedName
	ast.Walk(root, func(n ast.Node) bool {
		if qn, ok := n.(*ast.QualifiedName); ok {
			out = append(out, qn)
		}
		return true
	}, nil)
	return out
}

func findDefinition(root *ast.RootNamespace, name string) *ast.Definition {
	var found *ast.Definition
	ast.Walk(root, func(n ast.Node) bool {
		if d, ok := n.(*ast.Definition); ok && d.Name != nil && d.Name.Name == name {
			found = d
		}
		return true
	}, nil)
	return found
}

func TestResolveQualifiedCrossPackage(t *testing.T) {
	src := `
package P {
	part def Engine;
}
package Q {
	part turbo : P::Engine;
}
`
	root := mustParse(t, src)
	exports, locals := scope.Compute(root)
	p := linker.NewProvider(exports, locals)
	errs := p.ResolveAll(root)
	if errs.HasErrors() {
		t.Fatalf("unexpected resolution errors: %v", errs)
	}

	engine := findDefinition(root, "Engine")
	if engine == nil {
		t.Fatal("expected to find Engine definition")
	}

	var target ast.Node
	for _, qn := range findQualifiedNames(root) {
		if len(qn.Parts) == 2 && qn.Parts[0].Name == "P" && qn.Parts[1].Name == "Engine" {
			target = qn.Parts[1].Target
		}
	}
	if target != engine {
		t.Fatalf("expected P::Engine to resolve to the Engine definition, got %v", target)
	}
}

func TestResolveShadowingInnerOverOuter(t *testing.T) {
	src := `
part def Outer {
	part n;
	part def Inner {
		part n;
		part useInner : Inner;
		part localRef :> n;
	}
}
`
	root := mustParse(t, src)
	exports, locals := scope.Compute(root)
	p := linker.NewProvider(exports, locals)
	errs := p.ResolveAll(root)
	if errs.HasErrors() {
		t.Fatalf("unexpected resolution errors: %v", errs)
	}

	var innerN, outerN ast.Node
	ast.Walk(root, func(n ast.Node) bool {
		if u, ok := n.(*ast.Usage); ok && u.Name != nil && u.Name.Name == "n" {
			if outerN == nil {
				outerN = u
			} else {
				innerN = u
			}
		}
		return true
	}, nil)
	if outerN == nil || innerN == nil {
		t.Fatal("expected to find both n usages")
	}

	var localRef *ast.Usage
	ast.Walk(root, func(n ast.Node) bool {
		if u, ok := n.(*ast.Usage); ok && u.Name != nil && u.Name.Name == "localRef" {
			localRef = u
		}
		return true
	}, nil)
	if localRef == nil || localRef.RelationTarget == nil || len(localRef.RelationTarget.Parts) == 0 {
		t.Fatal("expected localRef to carry a resolvable relation target")
	}
	if got := localRef.RelationTarget.Parts[0].Target; got != innerN {
		t.Fatalf("expected localRef's 'n' to resolve to the shadowing inner declaration, got %v want %v", got, innerN)
	}
}

func TestResolveWildcardImport(t *testing.T) {
	src := `
package P {
	part def A;
	part def B;
}
package Q {
	import P::*;
	part a : A;
	part b : B;
}
`
	root := mustParse(t, src)
	exports, locals := scope.Compute(root)
	p := linker.NewProvider(exports, locals)
	errs := p.ResolveAll(root)
	if errs.HasErrors() {
		t.Fatalf("unexpected resolution errors: %v", errs)
	}

	defA := findDefinition(root, "A")
	defB := findDefinition(root, "B")
	if defA == nil || defB == nil {
		t.Fatal("expected to find A and B definitions")
	}

	var usageA, usageB *ast.Usage
	ast.Walk(root, func(n ast.Node) bool {
		if u, ok := n.(*ast.Usage); ok {
			switch u.Name.Name {
			case "a":
				usageA = u
			case "b":
				usageB = u
			}
		}
		return true
	}, nil)
	if len(usageA.FeatureTypes) != 1 || usageA.FeatureTypes[0].Parts[0].Target != defA {
		t.Fatalf("expected 'a' to resolve via wildcard import to A")
	}
	if len(usageB.FeatureTypes) != 1 || usageB.FeatureTypes[0].Parts[0].Target != defB {
		t.Fatalf("expected 'b' to resolve via wildcard import to B")
	}
}

func TestResolveRecursiveImport(t *testing.T) {
	src := `
package P {
	package Q {
		part def Deep;
	}
}
package R {
	import P::**;
	part d : Deep;
}
`
	root := mustParse(t, src)
	exports, locals := scope.Compute(root)
	p := linker.NewProvider(exports, locals)
	errs := p.ResolveAll(root)
	if errs.HasErrors() {
		t.Fatalf("unexpected resolution errors: %v", errs)
	}

	deep := findDefinition(root, "Deep")
	var usageD *ast.Usage
	ast.Walk(root, func(n ast.Node) bool {
		if u, ok := n.(*ast.Usage); ok && u.Name != nil && u.Name.Name == "d" {
			usageD = u
		}
		return true
	}, nil)
	if usageD == nil || len(usageD.FeatureTypes) != 1 {
		t.Fatal("expected 'd' to carry one feature type")
	}
	if got := usageD.FeatureTypes[0].Parts[0].Target; got != deep {
		t.Fatalf("expected 'd' to resolve via recursive import to Deep, got %v", got)
	}
}

func TestResolveImportAllSeesPrivateMembers(t *testing.T) {
	src := `
package P {
	private part def Hidden;
}
package Q {
	import all P;
	part h : Hidden;
}
`
	root := mustParse(t, src)
	exports, locals := scope.Compute(root)
	p := linker.NewProvider(exports, locals)
	errs := p.ResolveAll(root)
	if errs.HasErrors() {
		t.Fatalf("unexpected resolution errors: %v", errs)
	}

	hidden := findDefinition(root, "Hidden")
	var usageH *ast.Usage
	ast.Walk(root, func(n ast.Node) bool {
		if u, ok := n.(*ast.Usage); ok && u.Name != nil && u.Name.Name == "h" {
			usageH = u
		}
		return true
	}, nil)
	if usageH == nil || len(usageH.FeatureTypes) != 1 {
		t.Fatal("expected 'h' to carry one feature type")
	}
	if got := usageH.FeatureTypes[0].Parts[0].Target; got != hidden {
		t.Fatalf("expected 'import all' to reach a private member, got %v", got)
	}
}

func TestResolveAliasChain(t *testing.T) {
	src := `
package P {
	part def Real;
	alias First for Real;
	alias Second for First;
}
package Q {
	part r : P::Second;
}
`
	root := mustParse(t, src)
	exports, locals := scope.Compute(root)
	p := linker.NewProvider(exports, locals)
	errs := p.ResolveAll(root)
	if errs.HasErrors() {
		t.Fatalf("unexpected resolution errors: %v", errs)
	}

	real := findDefinition(root, "Real")
	var usageR *ast.Usage
	ast.Walk(root, func(n ast.Node) bool {
		if u, ok := n.(*ast.Usage); ok && u.Name != nil && u.Name.Name == "r" {
			usageR = u
		}
		return true
	}, nil)
	if usageR == nil || len(usageR.FeatureTypes) != 1 {
		t.Fatal("expected 'r' to carry one feature type")
	}
	ft := usageR.FeatureTypes[0]
	if got := ft.Parts[len(ft.Parts)-1].Target; got != real {
		t.Fatalf("expected alias chain P::Second to resolve to Real, got %v", got)
	}
}

func TestResolveUnknownNameReportsError(t *testing.T) {
	src := `
package P {
	part missing : DoesNotExist;
}
`
	root := mustParse(t, src)
	exports, locals := scope.Compute(root)
	p := linker.NewProvider(exports, locals)
	errs := p.ResolveAll(root)
	if !errs.HasErrors() {
		t.Fatal("expected a resolution error for an unresolvable name")
	}
}

// TestEveryExportResolvesByItsOwnName checks a round-trip invariant: for
// every exported qualified name q recorded during scope computation,
// looking q back up in the same export index yields the identical node.
// This is the property kerml/linker's resolveChild relies on: each later
// segment of a reference is found by a "parentPath::childName" lookup
// against exactly this index.
func TestEveryExportResolvesByItsOwnName(t *testing.T) {
	src := `
package P {
	part def A;
	package Q {
		part def B;
		part def C;
	}
}
`
	root := mustParse(t, src)
	exports, locals := scope.Compute(root)
	p := linker.NewProvider(exports, locals)
	if errs := p.ResolveAll(root); errs.HasErrors() {
		t.Fatalf("unexpected resolution errors: %v", errs)
	}

	for _, e := range exports.All() {
		found := exports.Lookup(e.Name)
		if len(found) == 0 || found[0].Node != e.Node {
			t.Fatalf("exported name %q does not resolve back to its own recorded node", e.Name)
		}
	}
}
