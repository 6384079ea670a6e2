package ast

// Documentation is a `doc /* ... */` element attached to an owner.
type Documentation struct {
	base
	Name *Ident // nil for an anonymous doc
	Body string
}

func (*Documentation) declNode()   {}
func (*Documentation) elementNode() {}

// CommentAnnotation is a `comment [about <refs>] [language "<lang>"] /* ... */`
// element — a model-level comment, distinct from a lexer Comment.
type CommentAnnotation struct {
	base
	Name     *Ident
	About    []*QualifiedName
	Language string
	Body     string
}

func (*CommentAnnotation) declNode()   {}
func (*CommentAnnotation) elementNode() {}

// TextualRepresentation is a `rep [name] language "<lang>" /* ... */`
// element describing an element's concrete notation in another language.
type TextualRepresentation struct {
	base
	Name     *Ident
	Language string
	Body     string
}

func (*TextualRepresentation) declNode()   {}
func (*TextualRepresentation) elementNode() {}

// MetadataUsage is either prefixed metadata (`#Type`) or inline metadata
// (`@name?:Type?{body?}`) attached to the preceding element.
type MetadataUsage struct {
	base
	IsPrefixed bool
	Name       *Ident
	Type       *QualifiedName
	Body       *FeatureBody
}

func (*MetadataUsage) declNode()   {}
func (*MetadataUsage) elementNode() {}
