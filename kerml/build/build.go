// Package build drives one document through the pipeline's state machine:
// Parsed -> IndexedContent -> ComputedScopes -> Linked -> Validated.
// Advancing is monotonic and idempotent, the way cue/build.Instance tracks a
// package's load progress with cumulative Err/Incomplete fields rather than
// re-running finished stages.
package build

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"kerml.dev/sysml/kerml/ast"
	"kerml.dev/sysml/kerml/errors"
	"kerml.dev/sysml/kerml/linker"
	"kerml.dev/sysml/kerml/parser"
	"kerml.dev/sysml/kerml/scope"
	"kerml.dev/sysml/kerml/validate"
)

// DocState is one stage of a Document's processing pipeline.
type DocState int

const (
	// Parsed means the source text has been lexed and parsed into an AST;
	// ast.RootNamespace is populated and syntax diagnostics, if any, are
	// recorded.
	Parsed DocState = iota
	// IndexedContent means scope computation has produced the document's
	// export index and local scopes. This is tracked as a distinct stage,
	// though this implementation reaches it in the same pass as
	// ComputedScopes, since scope.Compute produces both indexes together,
	// so IndexedContent and ComputedScopes always advance in lockstep here.
	IndexedContent
	// ComputedScopes means the export index and local scopes are both
	// available for linking.
	ComputedScopes
	// Linked means every qualified name in the tree has been resolved (or
	// reported unresolved).
	Linked
	// Validated means the semantic validation checks have run.
	Validated
)

func (s DocState) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case IndexedContent:
		return "indexed-content"
	case ComputedScopes:
		return "computed-scopes"
	case Linked:
		return "linked"
	case Validated:
		return "validated"
	default:
		return "unknown"
	}
}

// Document is one source file carried through the pipeline.
type Document struct {
	ID       uuid.UUID
	Filename string
	Source   []byte

	mu          sync.RWMutex
	state       DocState
	root        *ast.RootNamespace
	diagnostics errors.List

	exports *scope.ExportIndex
	locals  *scope.LocalScopes
	linker  *linker.Provider
}

// NewDocument parses src and returns a Document at stage Parsed.
func NewDocument(filename string, src []byte) *Document {
	root, errs := parser.ParseFile(filename, src)
	return &Document{
		ID:          uuid.New(),
		Filename:    filename,
		Source:      src,
		state:       Parsed,
		root:        root,
		diagnostics: errs,
	}
}

// State returns the document's current pipeline stage.
func (d *Document) State() DocState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// AST returns the document's parsed tree.
func (d *Document) AST() *ast.RootNamespace {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root
}

// Diagnostics returns every diagnostic accumulated so far, across every
// stage the document has advanced through.
func (d *Document) Diagnostics() errors.List {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.diagnostics
}

// Exports returns the document's export index, or nil before ComputedScopes.
func (d *Document) Exports() *scope.ExportIndex {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.exports
}

// Locals returns the document's local scopes, or nil before ComputedScopes.
func (d *Document) Locals() *scope.LocalScopes {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.locals
}

// ComputeScopes advances the document to ComputedScopes (by way of
// IndexedContent), computing its export index and local scopes. It is a
// no-op if the document has already reached that stage or further.
func (d *Document) ComputeScopes() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state >= ComputedScopes {
		return
	}
	d.exports, d.locals = scope.Compute(d.root)
	d.state = ComputedScopes
}

// Link advances the document to Linked, resolving every qualified name
// against its own export index and local scopes. Scope computation runs
// first if it has not already. It is a no-op if the document has already
// reached Linked or further.
//
// This implementation links each document only against itself: a
// multi-document Index (below) that wants cross-document resolution must
// merge export indexes before constructing the linker.Provider; single-file
// use, the CLI's default mode, never needs that.
func (d *Document) Link() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state >= Linked {
		return
	}
	if d.state < ComputedScopes {
		d.exports, d.locals = scope.Compute(d.root)
	}
	d.linker = linker.NewProvider(d.exports, d.locals)
	d.diagnostics = append(d.diagnostics, d.linker.ResolveAll(d.root)...)
	d.state = Linked
}

// Validate advances the document to Validated, running the semantic
// validation checks. Link runs first if it has not already. It is a no-op
// if the document has already reached Validated.
func (d *Document) Validate() {
	d.mu.Lock()
	needLink := d.state < Linked
	d.mu.Unlock()
	if needLink {
		d.Link()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state >= Validated {
		return
	}
	d.diagnostics = append(d.diagnostics, validate.Run(d.root)...)
	d.state = Validated
}

// AdvanceTo runs every stage between the document's current state and
// target, in order. Calling it with a target the document already reached
// is a no-op.
func (d *Document) AdvanceTo(target DocState) {
	switch target {
	case Parsed:
	case IndexedContent, ComputedScopes:
		d.ComputeScopes()
	case Linked:
		d.Link()
	case Validated:
		d.Validate()
	}
}

// Index is a process-wide, concurrency-safe registry of documents, keyed by
// ID, the way cue/build's Context tracks loaded instances, aggregating
// exports across documents for cross-document name resolution.
type Index struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*Document
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{docs: make(map[uuid.UUID]*Document)}
}

// Put registers doc under its ID, replacing any prior document with the
// same ID.
func (ix *Index) Put(doc *Document) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.docs == nil {
		ix.docs = make(map[uuid.UUID]*Document)
	}
	ix.docs[doc.ID] = doc
}

// Remove drops a document from the index.
func (ix *Index) Remove(id uuid.UUID) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.docs, id)
}

// Document returns the document registered under id, if any.
func (ix *Index) Document(id uuid.UUID) (*Document, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	doc, ok := ix.docs[id]
	return doc, ok
}

// Lookup resolves qualifiedName against every registered document's export
// index and returns the first match, searching documents in no particular
// order. This is the cross-document counterpart to scope.ExportIndex.Lookup:
// a single document only knows its own exports, so a caller that wants to
// resolve a name against the whole process-wide set of known documents goes
// through the Index instead.
func (ix *Index) Lookup(qualifiedName string) (ast.Node, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, doc := range ix.docs {
		if doc.exports == nil {
			continue
		}
		if exports := doc.exports.Lookup(qualifiedName); len(exports) > 0 {
			return exports[0].Node, true
		}
	}
	return nil, false
}

// Documents returns every registered document, in no particular order.
func (ix *Index) Documents() []*Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]*Document, 0, len(ix.docs))
	for _, doc := range ix.docs {
		out = append(out, doc)
	}
	return out
}

// ExportedPath reports the fully-qualified path under which node is
// exported by whichever indexed document owns it, the simplest form of
// "aggregating exports across documents": callers that hold an Index and a
// node reachable from one of its documents can ask where it lives without
// re-threading the document's own ExportIndex through unrelated code.
func (ix *Index) ExportedPath(node ast.Node) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, doc := range ix.docs {
		if doc.exports == nil {
			continue
		}
		if p, ok := doc.exports.PathOf(node); ok {
			return p, true
		}
	}
	return "", false
}

// Summary is a one-line human-readable status for a document: its file name,
// state and diagnostic count.
func Summary(d *Document) string {
	return fmt.Sprintf("%s [%s] %d diagnostic(s)", d.Filename, d.State(), len(d.Diagnostics()))
}
