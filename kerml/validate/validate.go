// Package validate implements a fixed set of semantic checks: structural
// rules run over a parsed AST, each producing a diagnostic at its own
// severity. No check reads the linker's resolved targets.
//
// Every check here operates on the AST directly, via ast.Walk and the
// ast.ElementName/ast.ElementBody helpers, the way cue/ast's single-pass
// checks (e.g. the duplicate-field check in cue/ast/astutil) inspect a
// parsed tree without needing a resolved scope graph.
package validate

import (
	"kerml.dev/sysml/kerml/ast"
	"kerml.dev/sysml/kerml/errors"
	"kerml.dev/sysml/kerml/literal"
	"kerml.dev/sysml/kerml/token"
)

// Run executes every check over root and returns their combined diagnostics
// in the order the checks ran, each already at its own severity (error,
// warning, or hint).
func Run(root *ast.RootNamespace) errors.List {
	var errs errors.List
	checkDuplicateNames(root, &errs)
	ast.Walk(root, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.Definition:
			checkSelfSpecialization(x, &errs)
			checkEmptyAbstractDefinition(x, &errs)
		case *ast.Usage:
			checkUntypedPart(x, &errs)
			checkComputedAttributeConsistency(x, &errs)
		case *ast.MultiplicityBounds:
			checkMultiplicityBounds(x, &errs)
		case *ast.QualifiedName:
			checkQualifiedNameWellFormed(x, &errs)
		}
		return true
	}, nil)
	return errs
}

func rangeOf(n ast.Node) token.Range {
	return token.Range{Start: n.Pos(), End: n.End()}
}

// checkDuplicateNames implements two duplicate-name rules that deliberately
// differ in how many diagnostics they produce: a duplicate at the root
// namespace is reported once per occurrence (every offending element gets
// its own error), while a duplicate inside one package body is reported
// only once, anchored at the first occurrence.
func checkDuplicateNames(root *ast.RootNamespace, errs *errors.List) {
	checkDuplicatesAtRoot(root.Elements, errs)
	ast.Walk(root, func(n ast.Node) bool {
		if pkg, ok := n.(*ast.PackageBody); ok {
			checkDuplicatesInPackage(pkg, errs)
		}
		return true
	}, nil)
}

func checkDuplicatesAtRoot(elements []ast.Membership, errs *errors.List) {
	seen := make(map[string]bool)
	for _, m := range elements {
		om, ok := m.(*ast.OwningMembership)
		if !ok {
			continue
		}
		name := ast.ElementName(om.Element)
		if name == nil || name.Name == "" {
			continue
		}
		if seen[name.Name] {
			errs.Add(errors.NewRangef(rangeOf(name), errors.CodeSemanticError,
				"Duplicate element name: '%s'", name.Name))
			continue
		}
		seen[name.Name] = true
	}
}

func checkDuplicatesInPackage(pkg *ast.PackageBody, errs *errors.List) {
	pkgLabel := "<anonymous>"
	if pkg.Name != nil && pkg.Name.Name != "" {
		pkgLabel = pkg.Name.Name
	}
	first := make(map[string]*ast.Ident)
	reported := make(map[string]bool)
	for _, d := range pkg.Elements {
		om, ok := d.(*ast.OwningMembership)
		if !ok {
			continue
		}
		name := ast.ElementName(om.Element)
		if name == nil || name.Name == "" {
			continue
		}
		if f, ok := first[name.Name]; ok {
			if !reported[name.Name] {
				errs.Add(errors.NewRangef(rangeOf(f), errors.CodeSemanticError,
					"Duplicate element name '%s' in package '%s'", name.Name, pkgLabel))
				reported[name.Name] = true
			}
			continue
		}
		first[name.Name] = name
	}
}

// checkSelfSpecialization flags a definition that lists itself among its
// own specializations by name.
func checkSelfSpecialization(d *ast.Definition, errs *errors.List) {
	if d.Name == nil || d.Name.Name == "" {
		return
	}
	for _, spec := range d.Specializations {
		if len(spec.Parts) == 0 {
			continue
		}
		last := spec.Parts[len(spec.Parts)-1]
		if last.Name == d.Name.Name {
			errs.Add(errors.NewRangef(rangeOf(spec), errors.CodeSemanticError,
				"%s '%s' cannot specialize itself", kindLabel(d.Kind), d.Name.Name))
		}
	}
}

func kindLabel(k ast.DefinitionKind) string {
	switch k {
	case ast.PartDefinition:
		return "Part definition"
	case ast.AttributeDefinition:
		return "Attribute definition"
	case ast.ItemDefinition:
		return "Item definition"
	default:
		return "Definition"
	}
}

// checkEmptyAbstractDefinition flags an abstract part definition that owns
// no members (a `;` terminator or an empty `{ }` body): suspicious enough to
// flag, but not wrong, so it is a hint rather than an error.
func checkEmptyAbstractDefinition(d *ast.Definition, errs *errors.List) {
	if !d.IsAbstract || d.Kind != ast.PartDefinition || d.Name == nil {
		return
	}
	if d.Body == nil || len(d.Body.Elements) == 0 {
		errs.Add(errors.NewSeverityf(rangeOf(d), errors.Hint, errors.CodeValidationHint,
			"Abstract part definition '%s' has no members", d.Name.Name))
	}
}

// checkUntypedPart flags a part usage with no feature type at all: legal
// but worth flagging, so it is a hint.
func checkUntypedPart(u *ast.Usage, errs *errors.List) {
	if u.Kind != ast.PartDefinition || u.Name == nil || u.Name.Name == "" {
		return
	}
	if len(u.FeatureTypes) == 0 && u.Relation == ast.RelationNone {
		errs.Add(errors.NewSeverityf(rangeOf(u), errors.Hint, errors.CodeValidationHint,
			"Part '%s' has no explicit type", u.Name.Name))
	}
}

// checkMultiplicityBounds flags a lower bound that exceeds the upper bound,
// or a negative lower bound, as a hard error. The `*` sentinel means
// unbounded and is exempt from the comparison.
func checkMultiplicityBounds(m *ast.MultiplicityBounds, errs *errors.List) {
	lowerLit := m.LowerBound
	upperLit := m.UpperBound
	if lowerLit == "" {
		lowerLit = upperLit
	}
	if lowerLit == "" || literal.IsUnbounded(lowerLit) {
		return
	}
	lower, err := literal.ParseInt(lowerLit)
	if err != nil {
		return
	}
	if lower < 0 {
		errs.Add(errors.NewRangef(rangeOf(m), errors.CodeSemanticError,
			"Multiplicity lower bound (%d) cannot be negative", lower))
		return
	}
	if upperLit == "" || literal.IsUnbounded(upperLit) {
		return
	}
	upper, err := literal.ParseInt(upperLit)
	if err != nil {
		return
	}
	if lower > upper {
		errs.Add(errors.NewRangef(rangeOf(m), errors.CodeSemanticError,
			"Lower bound (%d) cannot be greater than upper bound (%d)", lower, upper))
	}
}

// checkQualifiedNameWellFormed flags a qualified name with no parts at all,
// which can only arise from recovery over malformed input; the AST shape
// permits it, so the validator guards against it explicitly.
func checkQualifiedNameWellFormed(q *ast.QualifiedName, errs *errors.List) {
	if len(q.Parts) == 0 {
		errs.Add(errors.NewRangef(rangeOf(q), errors.CodeSemanticError,
			"Qualified name must have at least one part"))
	}
}

// checkComputedAttributeConsistency flags a usage marked computed (`::=`)
// that carries no value expression at all — the parser accepts the bare
// operator on recovery, but a computed attribute with nothing to compute
// from is a hard error.
func checkComputedAttributeConsistency(u *ast.Usage, errs *errors.List) {
	if u.ValueKind != ast.ValueComputed {
		return
	}
	if u.Value == nil {
		errs.Add(errors.NewRangef(rangeOf(u), errors.CodeSemanticError,
			"computed attribute '%s' has no value expression", nameOrAnon(u.Name)))
	}
}

func nameOrAnon(id *ast.Ident) string {
	if id == nil || id.Name == "" {
		return "<anonymous>"
	}
	return id.Name
}
