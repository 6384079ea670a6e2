package cli

import "kerml.dev/sysml/kerml/ast"

// astToJSON converts an AST node into the generic map/slice tree
// encoding/json expects, the shape the `export` command needs for
// both its "ast" and "json" formats: "ast" keeps the "$type" tag per
// node, "json" strips it. This is a plain recursive type switch over the
// node set, the same style as kerml/ast.Walk, rather than reflection —
// consistent with the rest of the core never reaching for a generic
// object-mapping library.
func astToJSON(n ast.Node, withType bool) interface{} {
	if n == nil || isNilPointer(n) {
		return nil
	}
	m := map[string]interface{}{}
	typeTag := ""

	switch x := n.(type) {
	case *ast.Ident:
		typeTag = "Ident"
		m["name"] = x.Name
		m["isKeyword"] = x.IsKeyword

	case *ast.QualifiedName:
		typeTag = "QualifiedName"
		parts := make([]interface{}, len(x.Parts))
		for i, p := range x.Parts {
			parts[i] = astToJSON(p, withType)
		}
		m["parts"] = parts

	case *ast.RootNamespace:
		typeTag = "RootNamespace"
		m["elements"] = nodeSlice(declsToNodes(membershipsToDecls(x.Elements)), withType)

	case *ast.PackageBody:
		typeTag = "PackageBody"
		m["name"] = astToJSON(x.Name, withType)
		m["isLibrary"] = x.IsLibrary
		m["isStandard"] = x.IsStandard
		m["elements"] = nodeSlice(declsToNodes(x.Elements), withType)

	case *ast.OwningMembership:
		typeTag = "OwningMembership"
		m["visibility"] = x.Visibility.String()
		m["element"] = astToJSON(x.Element, withType)

	case *ast.ImportMembership:
		typeTag = "ImportMembership"
		m["visibility"] = x.Visibility.String()
		m["isAll"] = x.IsAll
		if x.ImportRef != nil {
			m["path"] = astToJSON(x.ImportRef.Path, withType)
			m["isWildcard"] = x.ImportRef.IsWildcard
			m["isRecursive"] = x.ImportRef.IsRecursive
		}

	case *ast.AliasMember:
		typeTag = "AliasMember"
		m["visibility"] = x.Visibility.String()
		m["aliasName"] = astToJSON(x.AliasName, withType)
		m["target"] = astToJSON(x.Target, withType)

	case *ast.Definition:
		typeTag = "Definition"
		m["kind"] = x.Kind.String()
		m["name"] = astToJSON(x.Name, withType)
		m["isAbstract"] = x.IsAbstract
		m["isVariation"] = x.IsVariation
		m["specializations"] = nodeSlice(qualifiedNamesToNodes(x.Specializations), withType)
		m["disjointTypes"] = nodeSlice(qualifiedNamesToNodes(x.DisjointTypes), withType)
		m["body"] = astToJSON(x.Body, withType)

	case *ast.Usage:
		typeTag = "Usage"
		m["kind"] = x.Kind.String()
		m["name"] = astToJSON(x.Name, withType)
		m["direction"] = x.Direction.String()
		m["isReadonly"] = x.IsReadonly
		m["isDerived"] = x.IsDerived
		m["isAbstract"] = x.IsAbstract
		m["featureTypes"] = nodeSlice(qualifiedNamesToNodes(x.FeatureTypes), withType)
		m["multiplicity"] = astToJSON(x.Multiplicity, withType)
		m["value"] = astToJSON(x.Value, withType)
		m["body"] = astToJSON(x.Body, withType)

	case *ast.MultiplicityBounds:
		typeTag = "MultiplicityBounds"
		m["lowerBound"] = x.LowerBound
		m["upperBound"] = x.UpperBound

	case *ast.TypeBody:
		typeTag = "TypeBody"
		m["elements"] = nodeSlice(declsToNodes(x.Elements), withType)

	case *ast.FeatureBody:
		typeTag = "FeatureBody"
		m["elements"] = nodeSlice(declsToNodes(x.Elements), withType)

	case *ast.Transition:
		typeTag = "Transition"
		m["name"] = astToJSON(x.Name, withType)
		m["first"] = astToJSON(x.First, withType)
		m["accept"] = astToJSON(x.Accept, withType)
		m["then"] = astToJSON(x.Then, withType)

	case *ast.Succession:
		typeTag = "Succession"
		m["name"] = astToJSON(x.Name, withType)
		m["steps"] = nodeSlice(qualifiedNamesToNodes(x.Steps), withType)

	case *ast.Connector:
		typeTag = "Connector"
		m["name"] = astToJSON(x.Name, withType)
		m["from"] = astToJSON(x.From, withType)
		m["to"] = astToJSON(x.To, withType)

	case *ast.Binding:
		typeTag = "Binding"
		m["name"] = astToJSON(x.Name, withType)
		m["x"] = astToJSON(x.X, withType)
		m["y"] = astToJSON(x.Y, withType)

	case *ast.Flow:
		typeTag = "Flow"
		m["name"] = astToJSON(x.Name, withType)
		m["from"] = astToJSON(x.From, withType)
		m["to"] = astToJSON(x.To, withType)

	case *ast.BasicLit:
		typeTag = "BasicLit"
		m["value"] = x.Value

	case *ast.UnaryExpr:
		typeTag = "UnaryExpr"
		m["x"] = astToJSON(x.X, withType)

	case *ast.BinaryExpr:
		typeTag = "BinaryExpr"
		m["x"] = astToJSON(x.X, withType)
		m["y"] = astToJSON(x.Y, withType)

	case *ast.RangeExpr:
		typeTag = "RangeExpr"
		m["low"] = astToJSON(x.Low, withType)
		m["high"] = astToJSON(x.High, withType)

	case *ast.ConditionalExpr:
		typeTag = "ConditionalExpr"
		m["cond"] = astToJSON(x.Cond, withType)
		m["then"] = astToJSON(x.Then, withType)
		m["else"] = astToJSON(x.Else, withType)

	case *ast.ClassificationExpr:
		typeTag = "ClassificationExpr"
		m["x"] = astToJSON(x.X, withType)
		m["type"] = astToJSON(x.Type, withType)

	case *ast.ParenExpr:
		typeTag = "ParenExpr"
		m["x"] = astToJSON(x.X, withType)

	case *ast.FeatureChainExpr:
		typeTag = "FeatureChainExpr"
		m["x"] = astToJSON(x.X, withType)
		m["sel"] = astToJSON(x.Sel, withType)

	case *ast.InvocationExpr:
		typeTag = "InvocationExpr"
		m["fun"] = astToJSON(x.Fun, withType)
		args := make([]interface{}, len(x.Args))
		for i, a := range x.Args {
			args[i] = astToJSON(a, withType)
		}
		m["args"] = args

	case *ast.ExtentExpr:
		typeTag = "ExtentExpr"
		m["type"] = astToJSON(x.Type, withType)

	case *ast.Documentation:
		typeTag = "Documentation"
		m["name"] = astToJSON(x.Name, withType)
		m["body"] = x.Body

	case *ast.CommentAnnotation:
		typeTag = "CommentAnnotation"
		m["name"] = astToJSON(x.Name, withType)
		m["body"] = x.Body

	case *ast.TextualRepresentation:
		typeTag = "TextualRepresentation"
		m["name"] = astToJSON(x.Name, withType)
		m["language"] = x.Language
		m["body"] = x.Body

	case *ast.MetadataUsage:
		typeTag = "MetadataUsage"
		m["isPrefixed"] = x.IsPrefixed
		m["name"] = astToJSON(x.Name, withType)
		m["type"] = astToJSON(x.Type, withType)
		m["body"] = astToJSON(x.Body, withType)

	case *ast.BadNode:
		typeTag = "BadNode"

	default:
		return nil
	}

	if withType {
		m["$type"] = typeTag
	}
	return m
}

// isNilPointer reports whether n wraps a typed nil pointer (e.g. a
// (*ast.Ident)(nil) stored in an ast.Node field such as Definition.Name):
// Go's `n == nil` does not catch this case, since the interface value
// itself carries a non-nil type descriptor.
func isNilPointer(n ast.Node) bool {
	switch v := n.(type) {
	case *ast.Ident:
		return v == nil
	case *ast.QualifiedName:
		return v == nil
	case *ast.TypeBody:
		return v == nil
	case *ast.FeatureBody:
		return v == nil
	case *ast.MultiplicityBounds:
		return v == nil
	default:
		return false
	}
}

func nodeSlice(nodes []ast.Node, withType bool) []interface{} {
	out := make([]interface{}, len(nodes))
	for i, n := range nodes {
		out[i] = astToJSON(n, withType)
	}
	return out
}

func membershipsToDecls(ms []ast.Membership) []ast.Decl {
	out := make([]ast.Decl, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

func declsToNodes(decls []ast.Decl) []ast.Node {
	out := make([]ast.Node, len(decls))
	for i, d := range decls {
		out[i] = d
	}
	return out
}

func qualifiedNamesToNodes(qs []*ast.QualifiedName) []ast.Node {
	out := make([]ast.Node, len(qs))
	for i, q := range qs {
		out[i] = q
	}
	return out
}
