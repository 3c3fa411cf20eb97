// Package grammar wraps the tree-sitter JavaScript and TypeScript grammars
// behind a small adapter: source text in, syntax tree or tagged parse error
// out. The adapter never panics on malformed input; tree-sitter is
// error-tolerant, so a "parse failure" here means the grammar produced ERROR
// nodes and callers should switch to the pattern-based fallback classifier.
package grammar

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/jsmorph/internal/types"
)

// Tree is one file's parsed source. It owns the underlying tree-sitter tree
// and must be Closed by the caller that obtained it. Trees are read-only:
// refactors operate on derived text edits, never on tree mutation.
type Tree struct {
	inner  *tree_sitter.Tree
	source []byte
	kind   types.FileKind
}

// Root returns the syntax tree's root node.
func (t *Tree) Root() *tree_sitter.Node {
	return t.inner.RootNode()
}

// Source returns the exact bytes the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// Kind returns the grammar variant used.
func (t *Tree) Kind() types.FileKind {
	return t.kind
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.inner != nil {
		t.inner.Close()
		t.inner = nil
	}
}

// ParseError reports that the grammar rejected the input. Line and Column
// point at the first ERROR node when one could be located (1-based line,
// 0-based column); both are zero when no position hint is available.
type ParseError struct {
	Kind   types.FileKind
	Line   int
	Column int
	Msg    string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s parse error at %d:%d: %s", e.Kind, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s parse error: %s", e.Kind, e.Msg)
}

// Adapter holds one parser per grammar variant. A parser is stateful during
// a parse, so an Adapter must not be shared across goroutines; callers that
// parse in parallel create one Adapter per worker.
type Adapter struct {
	parsers map[types.FileKind]*tree_sitter.Parser
}

// NewAdapter initializes parsers for all four grammar variants.
func NewAdapter() (*Adapter, error) {
	a := &Adapter{parsers: make(map[types.FileKind]*tree_sitter.Parser, 4)}

	langs := map[types.FileKind]*tree_sitter.Language{
		types.FileKindJS:  tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		types.FileKindJSX: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		types.FileKindTS:  tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		types.FileKindTSX: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
	}

	for kind, lang := range langs {
		parser := tree_sitter.NewParser()
		if err := parser.SetLanguage(lang); err != nil {
			a.Close()
			parser.Close()
			return nil, fmt.Errorf("failed to set %s language: %w", kind, err)
		}
		a.parsers[kind] = parser
	}

	return a, nil
}

// Close releases all parsers.
func (a *Adapter) Close() {
	for _, p := range a.parsers {
		p.Close()
	}
	a.parsers = nil
}

// Parse turns source text into a syntax tree for the given grammar variant.
// On failure the returned *ParseError carries a position hint; the Tree is
// nil and nothing needs closing.
func (a *Adapter) Parse(source []byte, kind types.FileKind) (*Tree, *ParseError) {
	parser, ok := a.parsers[kind]
	if !ok {
		return nil, &ParseError{Kind: kind, Msg: "unsupported file kind"}
	}

	inner := parser.Parse(source, nil)
	if inner == nil {
		return nil, &ParseError{Kind: kind, Msg: "parser returned no tree"}
	}

	root := inner.RootNode()
	if root == nil {
		inner.Close()
		return nil, &ParseError{Kind: kind, Msg: "parse produced no root node"}
	}

	if root.HasError() {
		perr := &ParseError{Kind: kind, Msg: "syntax error"}
		if errNode := firstErrorNode(root); errNode != nil {
			pos := errNode.StartPosition()
			perr.Line = int(pos.Row) + 1
			perr.Column = int(pos.Column)
		}
		inner.Close()
		return nil, perr
	}

	return &Tree{inner: inner, source: source, kind: kind}, nil
}

// firstErrorNode locates the shallowest, leftmost ERROR or MISSING node.
func firstErrorNode(node *tree_sitter.Node) *tree_sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !child.HasError() {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}
