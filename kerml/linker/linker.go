// Package linker implements reference resolution: given a document's
// export index and local scopes (kerml/scope), it resolves every
// QualifiedName occurring in the tree to the node it names, expanding import
// bindings and following aliases along the way.
//
// The algorithm mirrors the walk-up-the-scope-chain shape of
// cue/parser/resolve.go, generalized from CUE's single flat scope chain to
// this grammar's two-index model (export index for cross-document and
// cross-package lookup, local scopes for same-document shadowing) and its
// richer import forms.
package linker

import (
	"strings"

	"kerml.dev/sysml/kerml/ast"
	"kerml.dev/sysml/kerml/errors"
	"kerml.dev/sysml/kerml/scope"
	"kerml.dev/sysml/kerml/token"
)

// maxAliasDepth guards against alias cycles (`alias A for B; alias B for A;`)
// by bounding how many targets followAlias will chase before giving up.
const maxAliasDepth = 32

// Provider resolves qualified names against one document's precomputed
// scopes.
type Provider struct {
	exports *scope.ExportIndex
	locals  *scope.LocalScopes

	importBindings map[ast.Node]map[string]ast.Node
}

// NewProvider builds a Provider from the output of scope.Compute.
func NewProvider(exports *scope.ExportIndex, locals *scope.LocalScopes) *Provider {
	return &Provider{
		exports:        exports,
		locals:         locals,
		importBindings: make(map[ast.Node]map[string]ast.Node),
	}
}

// ResolveAll walks root and resolves every QualifiedName it finds, setting
// each part's Target (ast.Ident.Target). It returns one semantic-error
// diagnostic per qualified name that could not be fully resolved, anchored
// at the first part that failed; the parts after it are left unresolved.
func (p *Provider) ResolveAll(root *ast.RootNamespace) errors.List {
	var errs errors.List
	ast.Walk(root, func(n ast.Node) bool {
		if qn, ok := n.(*ast.QualifiedName); ok {
			p.resolve(qn, qn, true, &errs)
		}
		return true
	}, nil)
	return errs
}

// resolve resolves every part of qn in order, starting lexical lookup of the
// first part at context. useImports controls whether import bindings are
// consulted for the first segment; it is false only while resolving an
// import's own path, to avoid a container's imports depending on themselves.
func (p *Provider) resolve(qn *ast.QualifiedName, context ast.Node, useImports bool, errs *errors.List) {
	if qn == nil || len(qn.Parts) == 0 {
		return
	}
	var cur ast.Node
	for i, part := range qn.Parts {
		var (
			target ast.Node
			ok     bool
		)
		if i == 0 {
			target, ok = p.resolveFirst(context, part.Name, useImports)
		} else {
			target, ok = p.resolveChild(cur, part.Name)
		}
		if !ok {
			if errs != nil {
				errs.Add(errors.NewRangef(
					token.Range{Start: part.Pos(), End: part.End()}, errors.CodeSemanticError,
					"cannot resolve name %q", part.Name))
			}
			return
		}
		part.Target = target
		cur = target
	}
}

// resolveFirst resolves a qualified name's leading segment starting at
// context: it walks context's $container chain (the local scope at each
// level, shadowing outward), consulting that level's import
// bindings too when useImports is set, and falls back to a document-wide
// export lookup by simple name.
func (p *Provider) resolveFirst(context ast.Node, name string, useImports bool) (ast.Node, bool) {
	for n := ast.Node(context); n != nil; n = n.Container() {
		for _, e := range p.locals.Entries(n) {
			if e.Name == name {
				return p.followAlias(e.Node), true
			}
		}
		if useImports {
			if b := p.importBindingsFor(n); b != nil {
				if t, ok := b[name]; ok {
					return p.followAlias(t), true
				}
			}
		}
	}
	if exps := p.exports.Lookup(name); len(exps) > 0 {
		return p.followAlias(exps[0].Node), true
	}
	return nil, false
}

// resolveChild resolves a non-leading segment: it is restricted to the
// direct children of the node the previous segment resolved to.
func (p *Provider) resolveChild(prev ast.Node, name string) (ast.Node, bool) {
	if path, ok := p.exports.PathOf(prev); ok {
		if child, ok := p.exports.DirectChild(path, name); ok {
			return p.followAlias(child), true
		}
	}
	if container, _, ok := ast.ElementBody(asElement(prev)); ok {
		for _, e := range p.locals.Entries(container) {
			if e.Name == name {
				return p.followAlias(e.Node), true
			}
		}
	}
	return nil, false
}

func asElement(n ast.Node) ast.Element {
	e, _ := n.(ast.Element)
	return e
}

// followAlias dereferences a chain of AliasMember targets, guarding
// against cycles. It returns the original node unchanged if it is not an
// alias, or if the chain cannot be fully resolved.
func (p *Provider) followAlias(n ast.Node) ast.Node {
	cur := n
	for depth := 0; depth < maxAliasDepth; depth++ {
		am, ok := cur.(*ast.AliasMember)
		if !ok {
			return cur
		}
		if am.Target == nil || len(am.Target.Parts) == 0 {
			return cur
		}
		target, ok := p.resolveQualifiedNameFrom(am, am.Target)
		if !ok {
			return cur
		}
		cur = target
	}
	return cur
}

// resolveQualifiedNameFrom resolves qn's parts starting lexical lookup at
// context, without recording diagnostics, and returns the final segment's
// target. It is used for alias targets and import paths, which are resolved
// eagerly rather than as part of the ResolveAll tree walk.
func (p *Provider) resolveQualifiedNameFrom(context ast.Node, qn *ast.QualifiedName) (ast.Node, bool) {
	var cur ast.Node
	for i, part := range qn.Parts {
		var (
			target ast.Node
			ok     bool
		)
		if i == 0 {
			target, ok = p.resolveFirst(context, part.Name, false)
		} else {
			target, ok = p.resolveChild(cur, part.Name)
		}
		if !ok {
			return nil, false
		}
		part.Target = target
		cur = target
	}
	return cur, true
}

// importBindingsFor returns the name bindings introduced by the import
// memberships declared directly inside container, computing and
// memoizing them on first use.
func (p *Provider) importBindingsFor(container ast.Node) map[string]ast.Node {
	if b, ok := p.importBindings[container]; ok {
		return b
	}
	bindings := make(map[string]ast.Node)
	for _, d := range declsOf(container) {
		im, ok := d.(*ast.ImportMembership)
		if !ok || im.ImportRef == nil {
			continue
		}
		p.bindImport(container, im, bindings)
	}
	p.importBindings[container] = bindings
	return bindings
}

func (p *Provider) bindImport(container ast.Node, im *ast.ImportMembership, bindings map[string]ast.Node) {
	ref := im.ImportRef
	target, ok := p.resolveQualifiedNameFrom(container, ref.Path)
	if !ok {
		return
	}

	if im.IsAll {
		// `import all X`: every member in X's own local scope, in-document
		// only, regardless of visibility (SPEC_FULL.md Open Questions).
		if body, _, ok := ast.ElementBody(asElement(target)); ok {
			for _, e := range p.locals.Entries(body) {
				if _, exists := bindings[e.Name]; !exists {
					bindings[e.Name] = e.Node
				}
			}
		}
		return
	}

	path, hasPath := p.exports.PathOf(target)

	switch {
	case ref.IsRecursive:
		if !hasPath {
			return
		}
		for _, e := range p.exports.Descendants(path) {
			tail := e.Name
			if i := strings.LastIndex(tail, "::"); i >= 0 {
				tail = tail[i+2:]
			}
			if _, exists := bindings[tail]; !exists {
				bindings[tail] = e.Node
			}
		}
	case ref.IsWildcard:
		if !hasPath {
			return
		}
		for _, e := range p.exports.DirectChildren(path) {
			tail := e.Name
			if i := strings.LastIndex(tail, "::"); i >= 0 {
				tail = tail[i+2:]
			}
			if _, exists := bindings[tail]; !exists {
				bindings[tail] = e.Node
			}
		}
	default:
		last := ref.Path.Parts[len(ref.Path.Parts)-1]
		bindings[last.Name] = target
	}
}

// declsOf returns the raw declaration list directly owned by container, the
// shape scope.Compute itself walks but does not expose (it only retains
// named members). The linker needs the unfiltered list to find import
// memberships, which scope.Compute skips.
func declsOf(container ast.Node) []ast.Decl {
	switch c := container.(type) {
	case *ast.RootNamespace:
		out := make([]ast.Decl, len(c.Elements))
		for i, m := range c.Elements {
			out[i] = m
		}
		return out
	case *ast.PackageBody:
		return c.Elements
	case *ast.TypeBody:
		return c.Elements
	case *ast.FeatureBody:
		return c.Elements
	default:
		return nil
	}
}
