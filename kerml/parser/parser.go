// Package parser implements a hand-written recursive-descent parser for
// SysML v2 / KerML source text. It consumes a token stream from
// kerml/scanner and produces a kerml/ast tree, recovering from syntax errors
// at bounded synchronization points instead of aborting the document.
package parser

import (
	"kerml.dev/sysml/kerml/ast"
	"kerml.dev/sysml/kerml/errors"
	"kerml.dev/sysml/kerml/literal"
	"kerml.dev/sysml/kerml/scanner"
	"kerml.dev/sysml/kerml/token"
)

// parser holds one document's parsing state. It is not reused across
// documents.
type parser struct {
	file    *token.File
	errs    errors.List
	scanner scanner.Scanner

	pos token.Pos   // position of tok
	tok token.Token // one token look-ahead
	lit string      // tok's lexeme

	// syncPos/syncCnt bound sync's zero-progress loop, the same way
	// cue/parser's syncExpr bounds its own recovery loop.
	syncPos token.Pos
	syncCnt int
}

// ParseFile parses one document's source text and returns its root
// namespace together with every lexer and parser diagnostic recorded along
// the way. Parsing never aborts: a malformed document yields a partial tree
// and a non-empty error list.
func ParseFile(filename string, src []byte) (*ast.RootNamespace, errors.List) {
	var p parser
	p.init(filename, src)
	root := p.parseRootNamespace()
	return root, p.errs
}

func (p *parser) init(filename string, src []byte) {
	p.file = token.NewFile(filename, len(src))
	p.file.SetContent(src)
	p.scanner.Init(p.file, src, &p.errs, 0)
	p.next()
}

func (p *parser) next() {
	p.pos, p.tok, p.lit = p.scanner.Scan()
}

// ----------------------------------------------------------------------
// Error reporting and recovery

func (p *parser) errf(pos token.Pos, format string, args ...interface{}) {
	p.errs.AddNewf(pos, errors.CodeSyntaxError, format, args...)
}

func (p *parser) errorExpected(pos token.Pos, obj string) {
	if pos != p.pos {
		p.errf(pos, "expected %s", obj)
		return
	}
	if p.tok.IsLiteral() {
		p.errf(pos, "expected %s, found %s %q", obj, p.tok, p.lit)
	} else {
		p.errf(pos, "expected %s, found %q", obj, p.tok.String())
	}
}

// expect reports an error if the current token is not tok, then advances
// regardless so the parser always makes progress.
func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorExpected(pos, "'"+tok.String()+"'")
	}
	p.next()
	return pos
}

// declStartTokens are the tokens that can begin a namespace element:
// visibility, import/alias/package/namespace, metadata, behavior statements,
// and every definition/usage kind keyword together with the modifiers and
// directions that may precede one. sync treats any of these as a valid
// resumption point.
var declStartTokens = map[token.Token]bool{
	token.PUBLIC: true, token.PRIVATE: true, token.PROTECTED: true,
	token.PACKAGE: true, token.LIBRARY: true, token.STANDARD: true, token.NAMESPACE: true,
	token.IMPORT: true, token.ALIAS: true,
	token.DOC: true, token.COMMENT_KW: true, token.REP: true, token.HASH: true, token.AT: true,
	token.TRANSITION: true, token.SUCCESSION: true,
	token.ENTRY: true, token.EXIT: true, token.DO: true,
	token.IF: true, token.WHILE: true, token.FOR: true, token.ASSIGN_KW: true,
	token.SEND: true, token.ACCEPT: true, token.PERFORM: true, token.ASSERT: true,

	token.ABSTRACT: true, token.VARIANT: true, token.READONLY: true, token.DERIVED: true,
	token.REF: true, token.END: true, token.COMPOSITE: true, token.PORTION: true,
	token.PARALLEL: true, token.IN: true, token.OUT: true, token.INOUT: true,

	token.PART: true, token.ITEM: true, token.ATTRIBUTE: true, token.ACTION: true,
	token.STATE: true, token.CONSTRAINT: true, token.REQUIREMENT: true, token.PORT: true,
	token.CONNECTION: true, token.INTERFACE: true, token.FLOW: true, token.ALLOCATION: true,
	token.CALC: true, token.CASE: true, token.ANALYSIS: true, token.VERIFICATION: true,
	token.USE: true, token.VIEW: true, token.VIEWPOINT: true, token.RENDERING: true,
	token.METADATA: true, token.OCCURRENCE: true, token.CONCERN: true, token.ENUM: true,
}

// sync skips tokens until a synchronization point: the consumed ';', or an
// unconsumed '}'/EOF/declaration-start keyword. It is bounded against
// zero-progress loops the same way cue/parser's syncExpr is.
func (p *parser) sync() {
	for {
		switch p.tok {
		case token.SEMICOLON:
			p.next()
			return
		case token.RBRACE, token.EOF:
			return
		}
		if declStartTokens[p.tok] {
			return
		}
		if p.pos == p.syncPos && p.syncCnt < 10 {
			p.syncCnt++
			return
		}
		if p.syncPos.Before(p.pos) {
			p.syncPos = p.pos
			p.syncCnt = 0
		}
		p.next()
	}
}

func (p *parser) badNode(start token.Pos) *ast.BadNode {
	bad := &ast.BadNode{}
	ast.SetSpan(bad, start, p.pos)
	return bad
}

// ----------------------------------------------------------------------
// Container-setting helpers

// setIdentContainer is the safe form of ast.SetContainer for an optional
// *ast.Ident field: a nil *ast.Ident boxed directly into the ast.Node
// parameter would be a non-nil interface wrapping a nil pointer, defeating
// SetContainer's own nil check, so optional Ident fields must go through
// this helper instead of calling ast.SetContainer directly.
func setIdentContainer(id *ast.Ident, parent ast.Node) {
	if id != nil {
		ast.SetContainer(id, parent)
	}
}

// setQNContainer is setIdentContainer's counterpart for optional
// *ast.QualifiedName fields.
func setQNContainer(q *ast.QualifiedName, parent ast.Node) {
	if q != nil {
		ast.SetContainer(q, parent)
	}
}

// ----------------------------------------------------------------------
// Identifiers and qualified names

// startsIdent reports whether the current token can begin an identifier
// position: a bare IDENT, an unrestricted NAME, or any reserved keyword.
func (p *parser) startsIdent() bool {
	return p.tok == token.IDENT || p.tok == token.NAME || p.tok.IsKeyword()
}

// ident parses one name: an identifier, an unrestricted name, or a reserved
// keyword used in an identifier position. Every reserved keyword is accepted
// here, so a feature can be named "package" or "import" without ambiguity.
func (p *parser) ident() *ast.Ident {
	pos := p.pos
	switch {
	case p.tok == token.IDENT:
		lit := p.lit
		p.next()
		return newIdent(lit, false, false, pos, pos.Add(len(lit)))
	case p.tok == token.NAME:
		raw := p.lit
		name, err := literal.UnquoteName(raw)
		if err != nil {
			p.errf(pos, "invalid unrestricted name: %v", err)
		}
		p.next()
		return newIdent(name, false, true, pos, pos.Add(len(raw)))
	case p.tok.IsKeyword():
		lit := p.lit
		p.next()
		return newIdent(lit, true, false, pos, pos.Add(len(lit)))
	default:
		p.errorExpected(pos, "identifier")
		return newIdent("", false, false, pos, pos)
	}
}

func newIdent(name string, isKeyword, unrestricted bool, start, end token.Pos) *ast.Ident {
	id := &ast.Ident{Name: name, IsKeyword: isKeyword, Unrestricted: unrestricted}
	ast.SetSpan(id, start, end)
	return id
}

// qualifiedName parses a '::'-separated sequence of identifier-position
// tokens.
func (p *parser) qualifiedName() *ast.QualifiedName {
	pos := p.pos
	parts := []*ast.Ident{p.ident()}
	for p.tok == token.COLONCOLON {
		p.next()
		parts = append(parts, p.ident())
	}
	q := &ast.QualifiedName{Parts: parts}
	for _, part := range parts {
		ast.SetContainer(part, q)
	}
	ast.SetSpan(q, pos, p.pos)
	return q
}

func (p *parser) qualifiedNameList() []*ast.QualifiedName {
	list := []*ast.QualifiedName{p.qualifiedName()}
	for p.tok == token.COMMA {
		p.next()
		list = append(list, p.qualifiedName())
	}
	return list
}

func (p *parser) parseStringLit() string {
	if p.tok != token.STRING {
		p.errorExpected(p.pos, "string literal")
		return ""
	}
	s, err := literal.UnquoteString(p.lit)
	if err != nil {
		p.errf(p.pos, "invalid string literal: %v", err)
	}
	p.next()
	return s
}

// ----------------------------------------------------------------------
// Root namespace and memberships

func (p *parser) parseRootNamespace() *ast.RootNamespace {
	pos := p.pos
	root := &ast.RootNamespace{}
	for p.tok != token.EOF {
		if p.tok == token.RBRACE {
			// A stray '}' closes no body here; report and skip it.
			p.errorExpected(p.pos, "namespace element")
			p.next()
			continue
		}
		m := p.parseMembership()
		if m != nil {
			root.Elements = append(root.Elements, m)
			ast.SetContainer(m, root)
		}
	}
	ast.SetSpan(root, pos, p.pos)
	return root
}

func (p *parser) parseVisibility() ast.Visibility {
	switch p.tok {
	case token.PUBLIC:
		p.next()
		return ast.VisibilityPublic
	case token.PRIVATE:
		p.next()
		return ast.VisibilityPrivate
	case token.PROTECTED:
		p.next()
		return ast.VisibilityProtected
	default:
		return ast.VisibilityUnspecified
	}
}

// parseMembership parses one namespace element: a visibility-qualified
// owned element, an import, or an alias — the only three membership shapes
// that can appear inside a RootNamespace, PackageBody, TypeBody, or
// FeatureBody. Every other body-level construct (definitions,
// usages, nested packages, behavior statements, metadata) is parsed as the
// Element an OwningMembership wraps, so a body is uniformly a list of
// Memberships even where the grammar gives no visibility prefix.
func (p *parser) parseMembership() ast.Membership {
	startPos := p.pos
	vis := p.parseVisibility()

	switch p.tok {
	case token.IMPORT:
		return p.parseImport(startPos, vis)
	case token.ALIAS:
		return p.parseAlias(startPos, vis)
	case token.EOF, token.RBRACE:
		if vis != ast.VisibilityUnspecified {
			p.errorExpected(p.pos, "namespace element")
		}
		return nil
	default:
		elem := p.parseElement()
		if elem == nil {
			return nil
		}
		m := &ast.OwningMembership{Visibility: vis, Element: elem}
		ast.SetContainer(elem, m)
		ast.SetSpan(m, startPos, p.pos)
		return m
	}
}

func (p *parser) parseImport(startPos token.Pos, vis ast.Visibility) ast.Membership {
	p.expect(token.IMPORT)
	isAll := false
	if p.tok == token.ALL {
		isAll = true
		p.next()
	}

	qPos := p.pos
	parts := []*ast.Ident{p.ident()}
	isWildcard, isRecursive := false, false
loop:
	for p.tok == token.COLONCOLON {
		p.next()
		switch p.tok {
		case token.STAR:
			p.next()
			isWildcard = true
			break loop
		case token.POW: // "**", lexed as one token by the scanner
			p.next()
			isRecursive = true
			break loop
		default:
			parts = append(parts, p.ident())
		}
	}

	path := &ast.QualifiedName{Parts: parts}
	for _, part := range parts {
		ast.SetContainer(part, path)
	}
	ast.SetSpan(path, qPos, p.pos)

	ref := &ast.ImportRef{Path: path, IsWildcard: isWildcard, IsRecursive: isRecursive}
	ast.SetContainer(path, ref)
	ast.SetSpan(ref, qPos, p.pos)

	m := &ast.ImportMembership{Visibility: vis, IsAll: isAll, ImportRef: ref}
	ast.SetContainer(ref, m)
	end := p.pos
	p.expect(token.SEMICOLON)
	ast.SetSpan(m, startPos, end)
	return m
}

func (p *parser) parseAlias(startPos token.Pos, vis ast.Visibility) ast.Membership {
	p.expect(token.ALIAS)
	name := p.ident()
	p.expect(token.FOR)
	target := p.qualifiedName()
	m := &ast.AliasMember{Visibility: vis, AliasName: name, Target: target}
	ast.SetContainer(name, m)
	ast.SetContainer(target, m)
	end := p.pos
	p.expect(token.SEMICOLON)
	ast.SetSpan(m, startPos, end)
	return m
}

// ----------------------------------------------------------------------
// Elements: the things an OwningMembership can wrap

func isKindKeyword(tok token.Token) bool {
	switch tok {
	case token.PART, token.ITEM, token.ATTRIBUTE, token.ACTION, token.STATE,
		token.CONSTRAINT, token.REQUIREMENT, token.PORT, token.CONNECTION,
		token.INTERFACE, token.FLOW, token.ALLOCATION, token.CALC, token.CASE,
		token.ANALYSIS, token.VERIFICATION, token.USE, token.VIEW, token.VIEWPOINT,
		token.RENDERING, token.METADATA, token.OCCURRENCE, token.CONCERN, token.ENUM:
		return true
	}
	return false
}

func isDeclModifierOrDirection(tok token.Token) bool {
	switch tok {
	case token.ABSTRACT, token.VARIANT, token.PARALLEL, token.READONLY, token.DERIVED,
		token.REF, token.END, token.COMPOSITE, token.PORTION,
		token.IN, token.OUT, token.INOUT:
		return true
	}
	return false
}

func (p *parser) parseElement() ast.Element {
	switch p.tok {
	case token.PACKAGE, token.LIBRARY, token.STANDARD, token.NAMESPACE:
		return p.parsePackageBody()
	case token.DOC:
		return p.parseDocumentation()
	case token.COMMENT_KW:
		return p.parseCommentAnnotation()
	case token.REP:
		return p.parseTextualRepresentation()
	case token.HASH:
		return p.parseMetadataUsage(true)
	case token.AT:
		return p.parseMetadataUsage(false)
	case token.TRANSITION:
		return p.parseTransition()
	case token.SUCCESSION:
		return p.parseSuccession()
	case token.ENTRY:
		return p.parseEntryAction()
	case token.EXIT:
		return p.parseExitAction()
	case token.DO:
		return p.parseDoAction()
	case token.IF:
		return p.parseIfAction()
	case token.WHILE:
		return p.parseWhileAction()
	case token.FOR:
		return p.parseForAction()
	case token.ASSIGN_KW:
		return p.parseAssignAction()
	case token.SEND:
		return p.parseSendAction()
	case token.ACCEPT:
		return p.parseAcceptAction()
	case token.PERFORM:
		return p.parsePerformAction()
	case token.ASSERT:
		return p.parseAssertAction()
	default:
		if isKindKeyword(p.tok) || isDeclModifierOrDirection(p.tok) {
			return p.parseDefinitionOrUsage()
		}
		pos := p.pos
		p.errorExpected(pos, "namespace element")
		p.sync()
		return p.badNode(pos)
	}
}

// parsePackageBody parses `[standard] [library] (package | namespace)
// [name] (';' | '{' ... '}')`. `namespace` shares PackageBody's shape (a
// named or anonymous container of namespace elements) since the grammar
// gives it no dedicated node kind of its own.
func (p *parser) parsePackageBody() *ast.PackageBody {
	startPos := p.pos
	isLibrary, isStandard := false, false
modifiers:
	for {
		switch p.tok {
		case token.STANDARD:
			isStandard = true
			p.next()
		case token.LIBRARY:
			isLibrary = true
			p.next()
		default:
			break modifiers
		}
	}

	switch p.tok {
	case token.PACKAGE, token.NAMESPACE:
		p.next()
	default:
		p.errorExpected(p.pos, "'package' or 'namespace'")
	}

	pb := &ast.PackageBody{IsLibrary: isLibrary, IsStandard: isStandard}
	if p.tok != token.LBRACE && p.tok != token.SEMICOLON && p.startsIdent() {
		pb.Name = p.ident()
		setIdentContainer(pb.Name, pb)
	}

	if p.tok == token.LBRACE {
		p.next()
		for p.tok != token.RBRACE && p.tok != token.EOF {
			m := p.parseMembership()
			if m != nil {
				pb.Elements = append(pb.Elements, m)
				ast.SetContainer(m, pb)
			}
		}
		p.expect(token.RBRACE)
	} else {
		p.expect(token.SEMICOLON)
	}

	ast.SetSpan(pb, startPos, p.pos)
	return pb
}

// ----------------------------------------------------------------------
// Definitions and usages

// parseDefinitionOrUsage parses the shared declaration shape:
// `[direction] [modifiers] <kind-keyword> [is_abstract flags] <name?>
// [: type_refs] [multiplicity] [specializations] [disjoint] [value-binding]
// (';' | body)`. Whether `def` follows the kind keyword disambiguates a
// Definition from a Usage (`part def X` vs `part X`).
func (p *parser) parseDefinitionOrUsage() ast.Element {
	startPos := p.pos

	var direction ast.Direction
	var isAbstract, isVariation, isParallel bool
	var isReadonly, isDerived, isRef, isEnd, isComposite, isPortion bool

modifierLoop:
	for {
		switch p.tok {
		case token.IN:
			direction = ast.DirectionIn
			p.next()
		case token.OUT:
			direction = ast.DirectionOut
			p.next()
		case token.INOUT:
			direction = ast.DirectionInout
			p.next()
		case token.ABSTRACT:
			isAbstract = true
			p.next()
		case token.VARIANT:
			isVariation = true
			p.next()
		case token.PARALLEL:
			isParallel = true
			p.next()
		case token.READONLY:
			isReadonly = true
			p.next()
		case token.DERIVED:
			isDerived = true
			p.next()
		case token.REF:
			isRef = true
			p.next()
		case token.END:
			isEnd = true
			p.next()
		case token.COMPOSITE:
			isComposite = true
			p.next()
		case token.PORTION:
			isPortion = true
			p.next()
		default:
			break modifierLoop
		}
	}

	if !isKindKeyword(p.tok) {
		p.errorExpected(p.pos, "definition or usage kind keyword")
		p.sync()
		return p.badNode(startPos)
	}

	kind := p.parseKind()

	isDef := false
	if p.tok == token.DEF {
		isDef = true
		p.next()
	}

	var name *ast.Ident
	if p.startsIdent() {
		name = p.ident()
	}

	if isDef {
		return p.finishDefinition(startPos, kind, isAbstract, isVariation, isParallel, name)
	}
	return p.finishUsage(startPos, kind, name, direction, isReadonly, isDerived, isAbstract, isEnd, isRef, isComposite, isPortion)
}

func (p *parser) parseKind() ast.DefinitionKind {
	switch p.tok {
	case token.PART:
		p.next()
		return ast.PartDefinition
	case token.ITEM:
		p.next()
		return ast.ItemDefinition
	case token.ATTRIBUTE:
		p.next()
		return ast.AttributeDefinition
	case token.ACTION:
		p.next()
		return ast.ActionDefinition
	case token.STATE:
		p.next()
		return ast.StateDefinition
	case token.CONSTRAINT:
		p.next()
		return ast.ConstraintDefinition
	case token.REQUIREMENT:
		p.next()
		return ast.RequirementDefinition
	case token.PORT:
		p.next()
		return ast.PortDefinition
	case token.CONNECTION:
		p.next()
		return ast.ConnectionDefinition
	case token.INTERFACE:
		p.next()
		return ast.InterfaceDefinition
	case token.FLOW:
		p.next()
		return ast.FlowConnectionDefinition
	case token.ALLOCATION:
		p.next()
		return ast.AllocationDefinition
	case token.CALC:
		p.next()
		return ast.CalculationDefinition
	case token.CASE:
		p.next()
		return ast.CaseDefinition
	case token.ANALYSIS:
		p.next()
		if p.tok == token.CASE {
			p.next()
		} else {
			p.errorExpected(p.pos, "'case'")
		}
		return ast.AnalysisCaseDefinition
	case token.VERIFICATION:
		p.next()
		if p.tok == token.CASE {
			p.next()
		} else {
			p.errorExpected(p.pos, "'case'")
		}
		return ast.VerificationCaseDefinition
	case token.USE:
		p.next()
		if p.tok == token.CASE {
			p.next()
		} else {
			p.errorExpected(p.pos, "'case'")
		}
		return ast.UseCaseDefinition
	case token.VIEW:
		p.next()
		return ast.ViewDefinition
	case token.VIEWPOINT:
		p.next()
		return ast.ViewpointDefinition
	case token.RENDERING:
		p.next()
		return ast.RenderingDefinition
	case token.METADATA:
		p.next()
		return ast.MetadataDefinition
	case token.OCCURRENCE:
		p.next()
		return ast.OccurrenceDefinition
	case token.CONCERN:
		p.next()
		return ast.ConcernDefinition
	case token.ENUM:
		p.next()
		return ast.EnumerationDefinition
	}
	// unreachable: callers only invoke parseKind after isKindKeyword(p.tok)
	p.next()
	return ast.PartDefinition
}

// isSpecializationToken reports whether tok introduces a specialization
// clause: the `:>` operator, or one of its keyword synonyms (`specializes`,
// `subtype`, `subclassifier`, `subclassification`), both of which are
// accepted in a specialization position.
func isSpecializationToken(tok token.Token) bool {
	switch tok {
	case token.SUBSETS, token.SPECIALIZES, token.SUBTYPE, token.SUBCLASSIFIER, token.SUBCLASSIFICATION:
		return true
	}
	return false
}

func (p *parser) finishDefinition(startPos token.Pos, kind ast.DefinitionKind, isAbstract, isVariation, isParallel bool, name *ast.Ident) ast.Element {
	def := ast.NewDefinition(kind, startPos, token.NoPos)
	def.IsAbstract = isAbstract
	def.IsVariation = isVariation
	def.IsParallel = isParallel
	def.Name = name
	setIdentContainer(name, def)

	if isSpecializationToken(p.tok) {
		p.next()
		def.Specializations = p.qualifiedNameList()
		for _, q := range def.Specializations {
			ast.SetContainer(q, def)
		}
	}

	if p.tok == token.DISJOINT {
		p.next()
		if p.tok == token.FROM {
			p.next()
		}
		def.DisjointTypes = p.qualifiedNameList()
		for _, q := range def.DisjointTypes {
			ast.SetContainer(q, def)
		}
	}

	if p.tok == token.LBRACE {
		def.Body = p.parseTypeBody()
		ast.SetContainer(def.Body, def)
	} else {
		p.expect(token.SEMICOLON)
	}

	ast.SetSpan(def, startPos, p.pos)
	return def
}

func (p *parser) finishUsage(startPos token.Pos, kind ast.UsageKind, name *ast.Ident, direction ast.Direction, isReadonly, isDerived, isAbstract, isEnd, isRef, isComposite, isPortion bool) ast.Element {
	u := ast.NewUsage(kind, startPos, token.NoPos)
	u.Name = name
	setIdentContainer(name, u)
	u.Direction = direction
	u.IsReadonly = isReadonly
	u.IsDerived = isDerived
	u.IsAbstract = isAbstract
	u.IsEnd = isEnd
	u.IsRef = isRef
	u.IsComposite = isComposite
	u.IsPortion = isPortion

	if p.tok == token.COLON {
		p.next()
		u.FeatureTypes = p.qualifiedNameList()
		for _, q := range u.FeatureTypes {
			ast.SetContainer(q, u)
		}
	}

	if p.tok == token.LBRACK {
		u.Multiplicity = p.parseMultiplicity()
		ast.SetContainer(u.Multiplicity, u)
	}

	switch p.tok {
	case token.SUBSETS:
		p.next()
		u.Relation = ast.RelationSubsets
		u.RelationTarget = p.qualifiedName()
		ast.SetContainer(u.RelationTarget, u)
	case token.REDEFINES:
		p.next()
		u.Relation = ast.RelationRedefines
		u.RelationTarget = p.qualifiedName()
		ast.SetContainer(u.RelationTarget, u)
	case token.SUBSETS_KW:
		p.next()
		u.Relation = ast.RelationSubsetsKeyword
		u.RelationTarget = p.qualifiedName()
		ast.SetContainer(u.RelationTarget, u)
	case token.REDEFINES_KW:
		p.next()
		u.Relation = ast.RelationRedefinesKeyword
		u.RelationTarget = p.qualifiedName()
		ast.SetContainer(u.RelationTarget, u)
	case token.REFERENCES:
		p.next()
		u.Relation = ast.RelationReferences
		u.RelationTarget = p.qualifiedName()
		ast.SetContainer(u.RelationTarget, u)
	}

	switch p.tok {
	case token.ASSIGN:
		p.next()
		u.ValueKind = ast.ValueAssign
		u.Value = p.parseExpr()
		ast.SetContainer(u.Value, u)
	case token.DEFINE:
		p.next()
		u.ValueKind = ast.ValueBind
		u.Value = p.parseExpr()
		ast.SetContainer(u.Value, u)
	case token.CCEQ:
		p.next()
		u.ValueKind = ast.ValueComputed
		if p.tok != token.SEMICOLON && p.tok != token.LBRACE && p.tok != token.EOF {
			u.Value = p.parseExpr()
			ast.SetContainer(u.Value, u)
		}
	}

	if p.tok == token.LBRACE {
		u.Body = p.parseFeatureBody()
		ast.SetContainer(u.Body, u)
	} else {
		p.expect(token.SEMICOLON)
	}

	ast.SetSpan(u, startPos, p.pos)
	return u
}

func (p *parser) parseMultiplicity() *ast.MultiplicityBounds {
	pos := p.expect(token.LBRACK)
	mb := &ast.MultiplicityBounds{}
	lower := p.parseBound()
	if p.tok == token.RANGE {
		p.next()
		mb.LowerBound = lower
		mb.UpperBound = p.parseBound()
	} else {
		mb.UpperBound = lower
	}
	end := p.pos
	p.expect(token.RBRACK)
	ast.SetSpan(mb, pos, end)
	return mb
}

func (p *parser) parseBound() string {
	switch p.tok {
	case token.STAR:
		p.next()
		return "*"
	case token.INT:
		lit := p.lit
		p.next()
		return lit
	case token.MINUS:
		// A negative bound is kept as "-<int>" so that kerml/validate can
		// report it.
		p.next()
		if p.tok == token.INT {
			lit := "-" + p.lit
			p.next()
			return lit
		}
		p.errorExpected(p.pos, "multiplicity bound")
		return "0"
	default:
		p.errorExpected(p.pos, "multiplicity bound")
		return "0"
	}
}

// ----------------------------------------------------------------------
// Bodies

func (p *parser) parseTypeBody() *ast.TypeBody {
	pos := p.expect(token.LBRACE)
	body := &ast.TypeBody{}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		m := p.parseMembership()
		if m != nil {
			body.Elements = append(body.Elements, m)
			ast.SetContainer(m, body)
		}
	}
	end := p.pos
	p.expect(token.RBRACE)
	ast.SetSpan(body, pos, end)
	return body
}

func (p *parser) parseFeatureBody() *ast.FeatureBody {
	pos := p.expect(token.LBRACE)
	body := &ast.FeatureBody{}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		m := p.parseMembership()
		if m != nil {
			body.Elements = append(body.Elements, m)
			ast.SetContainer(m, body)
		}
	}
	end := p.pos
	p.expect(token.RBRACE)
	ast.SetSpan(body, pos, end)
	return body
}

// ----------------------------------------------------------------------
// Behavioral statements

// parseTransition parses `transition [name] first <state-ref> [accept
// <event>] [if <guard>] [do action <effect>] then <state-ref> ';'`. `first`
// must come first and `then` last; the three optional segments between them
// are accepted in any order the input presents them in, and a repeated
// segment replaces the earlier one. Their relative order carries no semantic
// meaning.
func (p *parser) parseTransition() ast.Element {
	startPos := p.pos
	p.expect(token.TRANSITION)
	t := &ast.Transition{}
	if p.tok != token.FIRST && p.startsIdent() {
		t.Name = p.ident()
		setIdentContainer(t.Name, t)
	}
	p.expect(token.FIRST)
	t.First = p.qualifiedName()
	ast.SetContainer(t.First, t)

segments:
	for {
		switch p.tok {
		case token.ACCEPT:
			p.next()
			t.Accept = p.qualifiedName()
			ast.SetContainer(t.Accept, t)
		case token.IF:
			p.next()
			t.Guard = p.parseExpr()
			ast.SetContainer(t.Guard, t)
		case token.DO:
			p.next()
			if p.tok == token.ACTION {
				p.next()
			}
			t.Effect = p.qualifiedName()
			ast.SetContainer(t.Effect, t)
		default:
			break segments
		}
	}

	p.expect(token.THEN)
	t.Then = p.qualifiedName()
	ast.SetContainer(t.Then, t)
	end := p.pos
	p.expect(token.SEMICOLON)
	ast.SetSpan(t, startPos, end)
	return t
}

// parseSuccession parses `succession [name] first <step> ('then'
// <step>)+ ';'`.
func (p *parser) parseSuccession() ast.Element {
	startPos := p.pos
	p.expect(token.SUCCESSION)
	s := &ast.Succession{}
	if p.tok != token.FIRST && p.startsIdent() {
		s.Name = p.ident()
		setIdentContainer(s.Name, s)
	}
	p.expect(token.FIRST)
	s.Steps = append(s.Steps, p.qualifiedName())
	for p.tok == token.THEN {
		p.next()
		s.Steps = append(s.Steps, p.qualifiedName())
	}
	if len(s.Steps) < 2 {
		p.errf(startPos, "succession requires at least one 'then' step")
	}
	for _, step := range s.Steps {
		ast.SetContainer(step, s)
	}
	end := p.pos
	p.expect(token.SEMICOLON)
	ast.SetSpan(s, startPos, end)
	return s
}

func (p *parser) parseEntryAction() ast.Element {
	startPos := p.pos
	p.expect(token.ENTRY)
	a := &ast.EntryAction{}
	if p.tok != token.SEMICOLON && p.startsIdent() {
		a.Behavior = p.qualifiedName()
		ast.SetContainer(a.Behavior, a)
	}
	end := p.pos
	p.expect(token.SEMICOLON)
	ast.SetSpan(a, startPos, end)
	return a
}

func (p *parser) parseExitAction() ast.Element {
	startPos := p.pos
	p.expect(token.EXIT)
	a := &ast.ExitAction{}
	if p.tok != token.SEMICOLON && p.startsIdent() {
		a.Behavior = p.qualifiedName()
		ast.SetContainer(a.Behavior, a)
	}
	end := p.pos
	p.expect(token.SEMICOLON)
	ast.SetSpan(a, startPos, end)
	return a
}

func (p *parser) parseDoAction() ast.Element {
	startPos := p.pos
	p.expect(token.DO)
	if p.tok == token.ACTION {
		p.next()
	}
	a := &ast.DoAction{}
	if p.tok != token.SEMICOLON && p.startsIdent() {
		a.Behavior = p.qualifiedName()
		ast.SetContainer(a.Behavior, a)
	}
	end := p.pos
	p.expect(token.SEMICOLON)
	ast.SetSpan(a, startPos, end)
	return a
}

// parseIfAction, parseWhileAction, and parseForAction parse `if <guard>
// <then-body> [else <else-body>]`, `while <guard> [until <stop>] <body>`,
// and `for <var> in <source> <body>`.
func (p *parser) parseIfAction() ast.Element {
	startPos := p.pos
	p.expect(token.IF)
	a := &ast.IfAction{}
	a.Guard = p.parseExpr()
	ast.SetContainer(a.Guard, a)
	a.Then = p.parseFeatureBody()
	ast.SetContainer(a.Then, a)
	if p.tok == token.ELSE {
		p.next()
		a.Else = p.parseFeatureBody()
		ast.SetContainer(a.Else, a)
	}
	ast.SetSpan(a, startPos, p.pos)
	return a
}

func (p *parser) parseWhileAction() ast.Element {
	startPos := p.pos
	p.expect(token.WHILE)
	a := &ast.WhileAction{}
	a.Guard = p.parseExpr()
	ast.SetContainer(a.Guard, a)
	if p.tok == token.UNTIL {
		p.next()
		a.Until = p.parseExpr()
		ast.SetContainer(a.Until, a)
	}
	a.Body = p.parseFeatureBody()
	ast.SetContainer(a.Body, a)
	ast.SetSpan(a, startPos, p.pos)
	return a
}

func (p *parser) parseForAction() ast.Element {
	startPos := p.pos
	p.expect(token.FOR)
	a := &ast.ForAction{}
	a.Variable = p.ident()
	setIdentContainer(a.Variable, a)
	p.expect(token.IN)
	a.Source = p.parseExpr()
	ast.SetContainer(a.Source, a)
	a.Body = p.parseFeatureBody()
	ast.SetContainer(a.Body, a)
	ast.SetSpan(a, startPos, p.pos)
	return a
}

func (p *parser) parseAssignAction() ast.Element {
	startPos := p.pos
	p.expect(token.ASSIGN_KW)
	a := &ast.AssignAction{}
	a.Target = p.qualifiedName()
	ast.SetContainer(a.Target, a)
	p.expect(token.DEFINE)
	a.Value = p.parseExpr()
	ast.SetContainer(a.Value, a)
	end := p.pos
	p.expect(token.SEMICOLON)
	ast.SetSpan(a, startPos, end)
	return a
}

func (p *parser) parseSendAction() ast.Element {
	startPos := p.pos
	p.expect(token.SEND)
	a := &ast.SendAction{}
	a.Payload = p.parseExpr()
	ast.SetContainer(a.Payload, a)
	if p.tok == token.TO {
		p.next()
		a.To = p.qualifiedName()
		ast.SetContainer(a.To, a)
	}
	if p.tok == token.VIA {
		p.next()
		a.Via = p.qualifiedName()
		ast.SetContainer(a.Via, a)
	}
	end := p.pos
	p.expect(token.SEMICOLON)
	ast.SetSpan(a, startPos, end)
	return a
}

func (p *parser) parseAcceptAction() ast.Element {
	startPos := p.pos
	p.expect(token.ACCEPT)
	a := &ast.AcceptAction{}
	a.PayloadType = p.qualifiedName()
	ast.SetContainer(a.PayloadType, a)
	if p.tok == token.VIA {
		p.next()
		a.Via = p.qualifiedName()
		ast.SetContainer(a.Via, a)
	}
	end := p.pos
	p.expect(token.SEMICOLON)
	ast.SetSpan(a, startPos, end)
	return a
}

func (p *parser) parsePerformAction() ast.Element {
	startPos := p.pos
	p.expect(token.PERFORM)
	a := &ast.PerformAction{}
	a.Behavior = p.qualifiedName()
	ast.SetContainer(a.Behavior, a)
	end := p.pos
	p.expect(token.SEMICOLON)
	ast.SetSpan(a, startPos, end)
	return a
}

func (p *parser) parseAssertAction() ast.Element {
	startPos := p.pos
	p.expect(token.ASSERT)
	a := &ast.AssertAction{}
	if p.tok == token.NOT_KW {
		a.IsNegated = true
		p.next()
	}
	a.Constraint = p.parseExpr()
	ast.SetContainer(a.Constraint, a)
	end := p.pos
	p.expect(token.SEMICOLON)
	ast.SetSpan(a, startPos, end)
	return a
}

// ----------------------------------------------------------------------
// Metadata

func (p *parser) parseDocumentation() ast.Element {
	startPos := p.pos
	p.expect(token.DOC)
	d := &ast.Documentation{}
	if p.tok != token.DOC_COMMENT && p.startsIdent() {
		d.Name = p.ident()
		setIdentContainer(d.Name, d)
	}
	if p.tok == token.DOC_COMMENT {
		d.Body = p.lit
		p.next()
	} else {
		p.errorExpected(p.pos, "doc comment")
	}
	ast.SetSpan(d, startPos, p.pos)
	return d
}

func (p *parser) parseCommentAnnotation() ast.Element {
	startPos := p.pos
	p.expect(token.COMMENT_KW)
	c := &ast.CommentAnnotation{}
	if p.tok != token.ABOUT && p.tok != token.LANGUAGE && p.tok != token.DOC_COMMENT && p.startsIdent() {
		c.Name = p.ident()
		setIdentContainer(c.Name, c)
	}
	if p.tok == token.ABOUT {
		p.next()
		c.About = p.qualifiedNameList()
		for _, q := range c.About {
			ast.SetContainer(q, c)
		}
	}
	if p.tok == token.LANGUAGE {
		p.next()
		c.Language = p.parseStringLit()
	}
	if p.tok == token.DOC_COMMENT {
		c.Body = p.lit
		p.next()
	} else {
		p.errorExpected(p.pos, "doc comment")
	}
	ast.SetSpan(c, startPos, p.pos)
	return c
}

func (p *parser) parseTextualRepresentation() ast.Element {
	startPos := p.pos
	p.expect(token.REP)
	r := &ast.TextualRepresentation{}
	if p.tok != token.LANGUAGE && p.startsIdent() {
		r.Name = p.ident()
		setIdentContainer(r.Name, r)
	}
	p.expect(token.LANGUAGE)
	r.Language = p.parseStringLit()
	if p.tok == token.DOC_COMMENT {
		r.Body = p.lit
		p.next()
	} else {
		p.errorExpected(p.pos, "doc comment")
	}
	ast.SetSpan(r, startPos, p.pos)
	return r
}

// parseMetadataUsage parses either prefixed metadata `#Type` or inline
// metadata `@name?:Type?{body?}`.
func (p *parser) parseMetadataUsage(prefixed bool) ast.Element {
	startPos := p.pos
	if prefixed {
		p.expect(token.HASH)
	} else {
		p.expect(token.AT)
	}
	m := &ast.MetadataUsage{IsPrefixed: prefixed}
	if prefixed {
		m.Type = p.qualifiedName()
		setQNContainer(m.Type, m)
	} else {
		if p.tok != token.COLON && p.tok != token.LBRACE && p.startsIdent() {
			m.Name = p.ident()
			setIdentContainer(m.Name, m)
		}
		if p.tok == token.COLON {
			p.next()
			m.Type = p.qualifiedName()
			setQNContainer(m.Type, m)
		}
	}
	if p.tok == token.LBRACE {
		m.Body = p.parseFeatureBody()
		ast.SetContainer(m.Body, m)
	} else if prefixed {
		p.expect(token.SEMICOLON)
	}
	ast.SetSpan(m, startPos, p.pos)
	return m
}

// ----------------------------------------------------------------------
// Expressions (fifteen-level precedence table, tightest binding last)

func (p *parser) parseExpr() ast.Expr {
	x := p.parseBinaryExpr(2)
	if p.tok == token.QUESTION {
		p.next()
		then := p.parseExpr()
		p.expect(token.COLON)
		els := p.parseExpr()
		c := &ast.ConditionalExpr{Cond: x, Then: then, Else: els}
		ast.SetContainer(x, c)
		ast.SetContainer(then, c)
		ast.SetContainer(els, c)
		ast.SetSpan(c, x.Pos(), els.End())
		return c
	}
	return x
}

// parseBinaryExpr implements precedence climbing over levels 2 (implies)
// through 12 (**), dispatching to the right node type per level: a plain
// BinaryExpr for the arithmetic/logical/comparison operators, a
// RangeExpr for '..' (level 9), and a ClassificationExpr for the
// hastype/istype/as/@/meta family (level 6), whose right-hand side is a
// type reference rather than a recursively-parsed expression.
func (p *parser) parseBinaryExpr(minPrec int) ast.Expr {
	x := p.parseUnary()
	for {
		op := p.tok
		prec := op.Precedence()
		if prec == 0 || prec < minPrec {
			return x
		}
		p.next()

		switch prec {
		case 6:
			qn := p.qualifiedName()
			ce := &ast.ClassificationExpr{X: x, Op: op, Type: qn}
			ast.SetContainer(x, ce)
			ast.SetContainer(qn, ce)
			ast.SetSpan(ce, x.Pos(), qn.End())
			x = ce
		case 9:
			y := p.parseBinaryExpr(prec + 1)
			re := &ast.RangeExpr{Low: x, High: y}
			ast.SetContainer(x, re)
			ast.SetContainer(y, re)
			ast.SetSpan(re, x.Pos(), y.End())
			x = re
		default:
			nextMin := prec + 1
			if op.RightAssociative() {
				nextMin = prec
			}
			y := p.parseBinaryExpr(nextMin)
			be := &ast.BinaryExpr{X: x, Op: op, Y: y}
			ast.SetContainer(x, be)
			ast.SetContainer(y, be)
			ast.SetSpan(be, x.Pos(), y.End())
			x = be
		}
	}
}

func (p *parser) parseUnary() ast.Expr {
	switch p.tok {
	case token.PLUS, token.MINUS, token.NOT, token.NOT_KW, token.TILDE:
		op := p.tok
		pos := p.pos
		p.next()
		x := p.parseUnary()
		u := &ast.UnaryExpr{Op: op, X: x}
		ast.SetContainer(x, u)
		ast.SetSpan(u, pos, x.End())
		return u
	default:
		return p.parsePostfix()
	}
}

func (p *parser) parsePostfix() ast.Expr {
	x := p.parseAtom()
	for {
		switch p.tok {
		case token.PERIOD:
			p.next()
			sel := p.ident()
			fc := &ast.FeatureChainExpr{X: x, Sel: sel}
			ast.SetContainer(x, fc)
			ast.SetContainer(sel, fc)
			ast.SetSpan(fc, x.Pos(), sel.End())
			x = fc
		case token.LPAREN:
			p.next()
			var args []ast.Expr
			if p.tok != token.RPAREN {
				args = append(args, p.parseExpr())
				for p.tok == token.COMMA {
					p.next()
					args = append(args, p.parseExpr())
				}
			}
			end := p.pos
			p.expect(token.RPAREN)
			inv := &ast.InvocationExpr{Fun: x, Args: args}
			ast.SetContainer(x, inv)
			for _, a := range args {
				ast.SetContainer(a, inv)
			}
			ast.SetSpan(inv, x.Pos(), end)
			x = inv
		default:
			return x
		}
	}
}

func (p *parser) parseAtom() ast.Expr {
	pos := p.pos
	switch p.tok {
	case token.INT, token.FLOAT:
		lit := p.lit
		tok := p.tok
		p.next()
		bl := &ast.BasicLit{Kind: tok, Value: lit}
		ast.SetSpan(bl, pos, p.pos)
		return bl
	case token.STRING:
		val := p.parseStringLit()
		bl := &ast.BasicLit{Kind: token.STRING, Value: val}
		ast.SetSpan(bl, pos, p.pos)
		return bl
	case token.TRUE, token.FALSE, token.NULL:
		tok := p.tok
		p.next()
		bl := &ast.BasicLit{Kind: tok, Value: tok.String()}
		ast.SetSpan(bl, pos, p.pos)
		return bl
	case token.LPAREN:
		p.next()
		x := p.parseExpr()
		end := p.pos
		p.expect(token.RPAREN)
		pe := &ast.ParenExpr{X: x}
		ast.SetContainer(x, pe)
		ast.SetSpan(pe, pos, end)
		return pe
	case token.ALL:
		p.next()
		qn := p.qualifiedName()
		ee := &ast.ExtentExpr{Type: qn}
		ast.SetContainer(qn, ee)
		ast.SetSpan(ee, pos, qn.End())
		return ee
	case token.IDENT, token.NAME:
		return p.qualifiedName()
	default:
		if p.tok.IsKeyword() {
			return p.qualifiedName()
		}
		p.errorExpected(pos, "expression")
		p.sync()
		return p.badNode(pos)
	}
}
