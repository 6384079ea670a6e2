// Package scope computes two outputs: a document-wide export index of
// publicly visible qualified names, and a per-container table of
// immediately-enclosed named elements.
//
// It runs once per document, after parsing and before linking, and is
// idempotent: calling Compute twice on the same tree yields structurally
// equal ExportIndex and LocalScopes values.
package scope

import (
	"strings"

	"kerml.dev/sysml/kerml/ast"
)

// Export pairs a simple or qualified name with the node it names.
type Export struct {
	Name string
	Node ast.Node
}

// ExportIndex is the document-wide table of publicly visible names: every
// visited public element is recorded both under its simple name and under
// its fully-qualified "::"-separated path.
type ExportIndex struct {
	all    []Export
	byName map[string][]Export
	paths  map[ast.Node]string
}

func newExportIndex() *ExportIndex {
	return &ExportIndex{byName: make(map[string][]Export), paths: make(map[ast.Node]string)}
}

func (ix *ExportIndex) add(name string, node ast.Node) {
	e := Export{Name: name, Node: node}
	ix.all = append(ix.all, e)
	ix.byName[name] = append(ix.byName[name], e)
}

// Lookup returns every export registered under name, in traversal order.
func (ix *ExportIndex) Lookup(name string) []Export {
	if ix == nil {
		return nil
	}
	return ix.byName[name]
}

// All returns every export entry, in the order scope computation visited
// them.
func (ix *ExportIndex) All() []Export {
	if ix == nil {
		return nil
	}
	return ix.all
}

// PathOf returns node's own fully-qualified path (the deepest name it was
// exported under), if node was visited during export computation.
func (ix *ExportIndex) PathOf(node ast.Node) (string, bool) {
	if ix == nil {
		return "", false
	}
	p, ok := ix.paths[node]
	return p, ok
}

// DirectChild looks up the export registered under "parentPath::childName",
// the shape kerml/linker uses to restrict a qualified name's later segments
// to the direct children of a resolved namespace.
func (ix *ExportIndex) DirectChild(parentPath, childName string) (ast.Node, bool) {
	if ix == nil {
		return nil, false
	}
	entries := ix.byName[parentPath+"::"+childName]
	if len(entries) == 0 {
		return nil, false
	}
	return entries[0].Node, true
}

// DirectChildren returns every export whose qualified name is exactly one
// "::"-segment below parentPath — the direct (non-transitive) children of
// the namespace at parentPath. Used to expand `import X::*`.
func (ix *ExportIndex) DirectChildren(parentPath string) []Export {
	if ix == nil {
		return nil
	}
	prefix := parentPath + "::"
	var out []Export
	for _, e := range ix.all {
		rest, ok := strings.CutPrefix(e.Name, prefix)
		if ok && rest != "" && !strings.Contains(rest, "::") {
			out = append(out, e)
		}
	}
	return out
}

// Descendants returns every export whose qualified name is strictly below
// parentPath, at any depth — the transitive children of the namespace at
// parentPath. Used to expand `import X::**`.
func (ix *ExportIndex) Descendants(parentPath string) []Export {
	if ix == nil {
		return nil
	}
	prefix := parentPath + "::"
	var out []Export
	for _, e := range ix.all {
		if strings.HasPrefix(e.Name, prefix) {
			out = append(out, e)
		}
	}
	return out
}

// LocalEntry is one immediately-enclosed named element of a container.
type LocalEntry struct {
	Name string
	Node ast.Node
}

// LocalScopes maps each container node (root, package body, definition or
// usage body) to its immediately-enclosed named elements, unfiltered by
// visibility: within-document local lookup can see private and protected
// members (visibility only bites at the export boundary).
type LocalScopes struct {
	byContainer map[ast.Node][]LocalEntry
}

func (ls *LocalScopes) add(container ast.Node, name string, node ast.Node) {
	if ls.byContainer == nil {
		ls.byContainer = make(map[ast.Node][]LocalEntry)
	}
	ls.byContainer[container] = append(ls.byContainer[container], LocalEntry{Name: name, Node: node})
}

// Entries returns the immediately-enclosed named elements of container, or
// nil if container records none.
func (ls *LocalScopes) Entries(container ast.Node) []LocalEntry {
	if ls == nil {
		return nil
	}
	return ls.byContainer[container]
}

// Chain returns the local-scope entries visible starting at node and
// walking outward through its $container chain, with entries from an inner
// container shadowing a same-named entry from an outer one.
func (ls *LocalScopes) Chain(node ast.Node) []LocalEntry {
	if ls == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []LocalEntry
	for n := node; n != nil; n = n.Container() {
		for _, e := range ls.byContainer[n] {
			if !seen[e.Name] {
				seen[e.Name] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// Compute runs the export and local-scope traversals over root.
func Compute(root *ast.RootNamespace) (*ExportIndex, *LocalScopes) {
	c := &computer{exports: newExportIndex(), locals: &LocalScopes{}}
	c.visit(root, membershipDecls(root.Elements), nil, true)
	return c.exports, c.locals
}

type computer struct {
	exports *ExportIndex
	locals  *LocalScopes
}

func membershipDecls(ms []ast.Membership) []ast.Decl {
	out := make([]ast.Decl, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

// isExportVisible reports whether a membership's visibility permits its
// element to be exported. Unspecified visibility defaults to public.
func isExportVisible(v ast.Visibility) bool {
	return v != ast.VisibilityPrivate && v != ast.VisibilityProtected
}

// visit records local-scope entries for every named member of container
// (regardless of visibility) and, when exportEnabled, also records export
// entries and recurses into each visible member's body for further export
// computation. Local-scope recursion always happens, independent of
// exportEnabled, since within-document lookup can see private members.
func (c *computer) visit(container ast.Node, members []ast.Decl, prefix []string, exportEnabled bool) {
	for _, d := range members {
		switch m := d.(type) {
		case *ast.OwningMembership:
			c.visitOwning(container, m, prefix, exportEnabled)
		case *ast.AliasMember:
			c.visitAlias(container, m, prefix, exportEnabled)
		case *ast.ImportMembership:
			// Imports introduce no local name of their own at scope
			// computation time; kerml/linker expands them into bindings
			// during resolution.
		}
	}
}

func (c *computer) visitOwning(container ast.Node, m *ast.OwningMembership, prefix []string, exportEnabled bool) {
	elem := m.Element
	if elem == nil {
		return
	}
	name := ast.ElementName(elem)
	visible := exportEnabled && isExportVisible(m.Visibility)

	var childPrefix []string
	if name != nil && name.Name != "" {
		c.locals.add(container, name.Name, elem)
		childPrefix = append(append([]string{}, prefix...), name.Name)
		if visible {
			c.addExport(prefix, name.Name, elem)
		}
	} else {
		childPrefix = prefix
	}

	if childContainer, decls, ok := ast.ElementBody(elem); ok {
		c.visit(childContainer, decls, childPrefix, visible)
	}
}

func (c *computer) visitAlias(container ast.Node, m *ast.AliasMember, prefix []string, exportEnabled bool) {
	if m.AliasName == nil || m.AliasName.Name == "" {
		return
	}
	name := m.AliasName.Name
	// The local/export entry for an alias points at the AliasMember node
	// itself; kerml/linker follows its Target to reach the aliased element,
	// since scope computation runs before linking and cannot resolve the
	// target yet.
	c.locals.add(container, name, m)
	if exportEnabled && isExportVisible(m.Visibility) {
		c.addExport(prefix, name, m)
	}
}

func (c *computer) addExport(prefix []string, name string, node ast.Node) {
	c.exports.add(name, node)
	if len(prefix) > 0 {
		qualified := strings.Join(prefix, "::") + "::" + name
		c.exports.add(qualified, node)
		if _, ok := c.exports.paths[node]; !ok {
			c.exports.paths[node] = qualified
		}
	} else if _, ok := c.exports.paths[node]; !ok {
		c.exports.paths[node] = name
	}
}
