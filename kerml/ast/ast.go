// Package ast defines the abstract syntax tree produced by kerml/parser: a
// tree of tagged nodes, each carrying a source span and a non-owning
// back-link to its container.
package ast

import (
	"strings"

	"kerml.dev/sysml/kerml/token"
)

// Node is implemented by every AST node.
type Node interface {
	// Pos returns the position of the node's first token.
	Pos() token.Pos
	// End returns the position immediately after the node's last token.
	End() token.Pos
	// Container returns the node's parent in the tree, or nil for the root.
	// The back-link is non-owning: it must never be used to extend the
	// lifetime of a node past its owning document.
	Container() Node
	setContainer(Node)

	// Comments returns the comment groups attached to this node.
	Comments() []*CommentGroup
	AddComment(*CommentGroup)
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Decl is implemented by every node that can appear as a namespace element:
// memberships, definitions, usages, and behavioral statements.
type Decl interface {
	Node
	declNode()
}

// Membership is implemented by the three membership kinds that can appear
// directly inside a RootNamespace or PackageBody.
type Membership interface {
	Decl
	membershipNode()
}

// Element is implemented by every node an OwningMembership can own.
type Element interface {
	Node
	elementNode()
}

// Body is implemented by TypeBody and FeatureBody, which share structure but
// are tagged separately for validation dispatch.
type Body interface {
	Node
	bodyNode()
}

// base is embedded by every concrete node type. It supplies the span,
// container back-link, and comment storage so individual node types need
// only declare their own fields.
type base struct {
	startPos token.Pos
	endPos   token.Pos
	parent   Node
	comments []*CommentGroup
}

func (b *base) Pos() token.Pos          { return b.startPos }
func (b *base) End() token.Pos          { return b.endPos }
func (b *base) Container() Node         { return b.parent }
func (b *base) setContainer(p Node)     { b.parent = p }
func (b *base) Comments() []*CommentGroup { return b.comments }
func (b *base) AddComment(c *CommentGroup) {
	b.comments = append(b.comments, c)
}

// SetSpan records the node's start and end positions; called by the parser
// once a production completes.
func SetSpan(n Node, start, end token.Pos) {
	if b, ok := n.(interface{ setSpan(token.Pos, token.Pos) }); ok {
		b.setSpan(start, end)
	}
}

func (b *base) setSpan(start, end token.Pos) {
	b.startPos, b.endPos = start, end
}

// SetContainer sets n's non-owning back-link to parent. It is the only
// supported way to establish $container; it is called by the parser
// immediately after a child node is attached to its parent's field.
func SetContainer(n Node, parent Node) {
	if n != nil {
		n.setContainer(parent)
	}
}

// Comment is a single "//" or "/* */" comment.
type Comment struct {
	base
	Text string
}

// CommentGroup is a sequence of adjacent comments attached to one node.
type CommentGroup struct {
	List []*Comment
}

// Text returns the comment group's text with comment markers stripped and
// common leading whitespace trimmed.
func (g *CommentGroup) Text() string {
	if g == nil {
		return ""
	}
	var lines []string
	for _, c := range g.List {
		t := c.Text
		switch {
		case strings.HasPrefix(t, "//"):
			t = strings.TrimPrefix(t, "//")
		case strings.HasPrefix(t, "/*"):
			t = strings.TrimSuffix(strings.TrimPrefix(t, "/*"), "*/")
		}
		lines = append(lines, strings.TrimSpace(t))
	}
	return strings.Join(lines, "\n")
}

// Visibility is the explicit visibility modifier on a membership.
type Visibility int

const (
	// VisibilityUnspecified means no visibility keyword was written; the
	// effective visibility (public, in most contexts) is a scope-computation
	// concern, not a parser concern.
	VisibilityUnspecified Visibility = iota
	VisibilityPublic
	VisibilityPrivate
	VisibilityProtected
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityPrivate:
		return "private"
	case VisibilityProtected:
		return "protected"
	default:
		return ""
	}
}

// Ident is a simple name: a bare identifier, a keyword used in an identifier
// position, or an unrestricted name '...'.
type Ident struct {
	base
	Name      string
	IsKeyword bool // true if Name came from a reserved keyword lexeme
	Unrestricted bool

	// Target is the node this identifier resolves to when it occurs as a
	// segment of a reference (a QualifiedName part), set by kerml/linker
	// during link resolution. It is nil both before linking and for
	// Idents that name a declaration rather than reference one (e.g. a
	// Definition's own Name), since those are never resolution targets.
	Target Node
}

func (*Ident) exprNode() {}

// QualifiedName is a sequence of name parts separated by "::".
type QualifiedName struct {
	base
	Parts []*Ident
}

func (*QualifiedName) exprNode() {}

// String renders the qualified name with "::" separators.
func (q *QualifiedName) String() string {
	if q == nil {
		return ""
	}
	names := make([]string, len(q.Parts))
	for i, p := range q.Parts {
		names[i] = p.Name
	}
	return strings.Join(names, "::")
}

// ImportRef is the target of an import membership.
type ImportRef struct {
	base
	Path        *QualifiedName
	IsWildcard  bool // trailing ::*
	IsRecursive bool // trailing ::**
}

func (*ImportRef) elementNode() {}

// RootNamespace is the root of one document's AST.
type RootNamespace struct {
	base
	Elements []Membership
}

func (*RootNamespace) declNode() {}

// PackageBody is a named or anonymous package body.
type PackageBody struct {
	base
	Name       *Ident // nil for an anonymous package
	IsLibrary  bool
	IsStandard bool
	Elements   []Decl
}

func (*PackageBody) declNode()   {}
func (*PackageBody) elementNode() {}

// OwningMembership wraps an owned Element with an optional visibility.
type OwningMembership struct {
	base
	Visibility Visibility
	Element    Element
}

func (*OwningMembership) declNode()       {}
func (*OwningMembership) membershipNode() {}

// ImportMembership is one `import ...;` declaration.
type ImportMembership struct {
	base
	Visibility Visibility
	IsAll      bool
	ImportRef  *ImportRef
}

func (*ImportMembership) declNode()       {}
func (*ImportMembership) membershipNode() {}

// AliasMember is one `alias A for X::Y::Z;` declaration.
type AliasMember struct {
	base
	Visibility Visibility
	AliasName  *Ident
	Target     *QualifiedName
}

func (*AliasMember) declNode()       {}
func (*AliasMember) membershipNode() {}

// TypeBody is the brace-delimited body of a definition.
type TypeBody struct {
	base
	Elements []Decl
}

func (*TypeBody) bodyNode() {}

// FeatureBody is the brace-delimited body of a usage. It has the same shape
// as TypeBody but is tagged separately so the validator can dispatch
// definition-only and usage-only checks correctly.
type FeatureBody struct {
	base
	Elements []Decl
}

func (*FeatureBody) bodyNode() {}

// BadNode stands in for a subtree the parser could not make sense of; it
// lets recovery produce a partial-but-well-formed AST.
type BadNode struct {
	base
}

func (*BadNode) declNode()   {}
func (*BadNode) elementNode() {}
func (*BadNode) exprNode()   {}
func (*BadNode) bodyNode()   {}

// ElementName returns the name under which e would appear as a namespace
// element, or nil if e is anonymous or cannot be named at all. kerml/scope
// and kerml/validate both need this to decide what to export, what to
// index locally, and what counts as a duplicate; it lives here, next to the
// node definitions, the way cue/ast.LabelName lives next to cue/ast's node
// set.
func ElementName(e Element) *Ident {
	switch x := e.(type) {
	case *PackageBody:
		return x.Name
	case *Definition:
		return x.Name
	case *Usage:
		return x.Name
	case *Transition:
		return x.Name
	case *Succession:
		return x.Name
	case *Connector:
		return x.Name
	case *Binding:
		return x.Name
	case *Flow:
		return x.Name
	case *Documentation:
		return x.Name
	case *CommentAnnotation:
		return x.Name
	case *TextualRepresentation:
		return x.Name
	case *MetadataUsage:
		return x.Name
	default:
		return nil
	}
}

// ElementBody returns the child namespace-element list directly owned by e,
// and the AST node that should be used as the local-scope container key for
// that list. It reports ok=false for elements with no body at all (a
// Definition/Usage terminated by ';', or an element kind with no body
// concept), in which case container and elements are both nil.
func ElementBody(e Element) (container Node, elements []Decl, ok bool) {
	switch x := e.(type) {
	case *PackageBody:
		return x, x.Elements, true
	case *Definition:
		if x.Body != nil {
			return x.Body, x.Body.Elements, true
		}
	case *Usage:
		if x.Body != nil {
			return x.Body, x.Body.Elements, true
		}
	}
	return nil, nil, false
}
