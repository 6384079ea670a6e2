package ast

import "fmt"

// Walk traverses an AST in depth-first order. It calls before(node); node
// must not be nil. If before returns true (or is nil), Walk recurses into
// each non-nil child, then calls after. Both callbacks may be nil.
//
// Scope computation and the validator both walk the whole tree this way.
func Walk(node Node, before func(Node) bool, after func(Node)) {
	if node == nil {
		return
	}
	if before != nil && !before(node) {
		return
	}

	switch n := node.(type) {
	case *Ident, *BasicLit, *QualifiedName, *BadNode:
		// leaves; QualifiedName's Parts are Idents but are not walked as
		// independent tree nodes since they never carry their own children.

	case *ImportRef:
		walkQualifiedName(n.Path, before, after)

	case *RootNamespace:
		for _, e := range n.Elements {
			Walk(e, before, after)
		}

	case *PackageBody:
		walkIdent(n.Name, before, after)
		for _, d := range n.Elements {
			Walk(d, before, after)
		}

	case *OwningMembership:
		Walk(n.Element, before, after)

	case *ImportMembership:
		if n.ImportRef != nil {
			Walk(n.ImportRef, before, after)
		}

	case *AliasMember:
		walkIdent(n.AliasName, before, after)
		Walk(n.Target, before, after)

	case *Definition:
		walkIdent(n.Name, before, after)
		for _, q := range n.Specializations {
			Walk(q, before, after)
		}
		for _, q := range n.DisjointTypes {
			Walk(q, before, after)
		}
		if n.Body != nil {
			Walk(n.Body, before, after)
		}

	case *Usage:
		walkIdent(n.Name, before, after)
		for _, q := range n.FeatureTypes {
			Walk(q, before, after)
		}
		if n.Multiplicity != nil {
			Walk(n.Multiplicity, before, after)
		}
		if n.RelationTarget != nil {
			Walk(n.RelationTarget, before, after)
		}
		if n.Value != nil {
			Walk(n.Value, before, after)
		}
		if n.Body != nil {
			Walk(n.Body, before, after)
		}

	case *MultiplicityBounds:
		// bounds are stored as lexemes, not sub-nodes.

	case *TypeBody:
		for _, d := range n.Elements {
			Walk(d, before, after)
		}

	case *FeatureBody:
		for _, d := range n.Elements {
			Walk(d, before, after)
		}

	case *Transition:
		walkIdent(n.Name, before, after)
		walkQualifiedName(n.First, before, after)
		walkQualifiedName(n.Accept, before, after)
		if n.Guard != nil {
			Walk(n.Guard, before, after)
		}
		walkQualifiedName(n.Effect, before, after)
		walkQualifiedName(n.Then, before, after)

	case *Succession:
		walkIdent(n.Name, before, after)
		for _, s := range n.Steps {
			Walk(s, before, after)
		}

	case *Connector:
		walkIdent(n.Name, before, after)
		walkQualifiedName(n.From, before, after)
		walkQualifiedName(n.To, before, after)

	case *Binding:
		walkIdent(n.Name, before, after)
		walkQualifiedName(n.X, before, after)
		walkQualifiedName(n.Y, before, after)

	case *Flow:
		walkIdent(n.Name, before, after)
		walkQualifiedName(n.From, before, after)
		walkQualifiedName(n.To, before, after)

	case *EntryAction:
		walkQualifiedName(n.Behavior, before, after)
	case *ExitAction:
		walkQualifiedName(n.Behavior, before, after)
	case *DoAction:
		walkQualifiedName(n.Behavior, before, after)

	case *IfAction:
		if n.Guard != nil {
			Walk(n.Guard, before, after)
		}
		if n.Then != nil {
			Walk(n.Then, before, after)
		}
		if n.Else != nil {
			Walk(n.Else, before, after)
		}

	case *WhileAction:
		if n.Guard != nil {
			Walk(n.Guard, before, after)
		}
		if n.Until != nil {
			Walk(n.Until, before, after)
		}
		if n.Body != nil {
			Walk(n.Body, before, after)
		}

	case *ForAction:
		walkIdent(n.Variable, before, after)
		if n.Source != nil {
			Walk(n.Source, before, after)
		}
		if n.Body != nil {
			Walk(n.Body, before, after)
		}

	case *AssignAction:
		walkQualifiedName(n.Target, before, after)
		if n.Value != nil {
			Walk(n.Value, before, after)
		}

	case *SendAction:
		if n.Payload != nil {
			Walk(n.Payload, before, after)
		}
		walkQualifiedName(n.To, before, after)
		walkQualifiedName(n.Via, before, after)

	case *AcceptAction:
		walkQualifiedName(n.PayloadType, before, after)
		walkQualifiedName(n.Via, before, after)

	case *PerformAction:
		walkQualifiedName(n.Behavior, before, after)

	case *AssertAction:
		if n.Constraint != nil {
			Walk(n.Constraint, before, after)
		}

	case *UnaryExpr:
		Walk(n.X, before, after)
	case *BinaryExpr:
		Walk(n.X, before, after)
		Walk(n.Y, before, after)
	case *RangeExpr:
		Walk(n.Low, before, after)
		Walk(n.High, before, after)
	case *ConditionalExpr:
		Walk(n.Cond, before, after)
		Walk(n.Then, before, after)
		Walk(n.Else, before, after)
	case *ClassificationExpr:
		Walk(n.X, before, after)
		walkQualifiedName(n.Type, before, after)
	case *ParenExpr:
		Walk(n.X, before, after)
	case *FeatureChainExpr:
		Walk(n.X, before, after)
		walkIdent(n.Sel, before, after)
	case *InvocationExpr:
		Walk(n.Fun, before, after)
		for _, a := range n.Args {
			Walk(a, before, after)
		}
	case *ExtentExpr:
		walkQualifiedName(n.Type, before, after)

	case *Documentation:
		walkIdent(n.Name, before, after)
	case *CommentAnnotation:
		walkIdent(n.Name, before, after)
		for _, q := range n.About {
			Walk(q, before, after)
		}
	case *TextualRepresentation:
		walkIdent(n.Name, before, after)
	case *MetadataUsage:
		walkIdent(n.Name, before, after)
		walkQualifiedName(n.Type, before, after)
		if n.Body != nil {
			Walk(n.Body, before, after)
		}

	default:
		panic(fmt.Sprintf("ast.Walk: unexpected node type %T", n))
	}

	if after != nil {
		after(node)
	}
}

func walkIdent(id *Ident, before func(Node) bool, after func(Node)) {
	if id == nil {
		return
	}
	Walk(id, before, after)
}

func walkQualifiedName(q *QualifiedName, before func(Node) bool, after func(Node)) {
	if q == nil {
		return
	}
	Walk(q, before, after)
}
