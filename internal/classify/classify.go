// Package classify walks a syntax tree and produces an ordered sequence of
// symbol occurrences, each tagged with a context kind and enclosing scope.
// Classification is a pure function of the input: identical source yields
// identical occurrence order (source order, top to bottom, left to right).
//
// Two strategies exist per file: Structured (tree available) and Fallback
// (pattern matching over raw lines when the grammar rejects the input). The
// strategy is an explicit value on the result, decided per file by parse
// success, never a hidden global.
package classify

import (
	"bytes"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/jsmorph/internal/grammar"
	"github.com/standardbeagle/jsmorph/internal/scope"
	"github.com/standardbeagle/jsmorph/internal/types"
)

// Strategy identifies how a file was classified.
type Strategy uint8

const (
	StrategyStructured Strategy = iota
	StrategyFallback
)

// String returns the strategy name.
func (s Strategy) String() string {
	if s == StrategyFallback {
		return "fallback"
	}
	return "structured"
}

// FileClassification is the complete classification result for one file.
// Occurrences are in deterministic source order. In fallback mode Scopes is
// a root-only tree and every occurrence lives at module scope.
type FileClassification struct {
	Path        string
	Kind        types.FileKind
	Strategy    Strategy
	Occurrences []types.Occurrence
	Scopes      *scope.Tree
}

// ForSymbol returns the occurrences of one symbol, preserving order.
func (fc *FileClassification) ForSymbol(name string) []types.Occurrence {
	var out []types.Occurrence
	for _, occ := range fc.Occurrences {
		if occ.Symbol == name {
			out = append(out, occ)
		}
	}
	return out
}

// CountsByKind tallies occurrences per context kind.
func (fc *FileClassification) CountsByKind() map[string]int {
	counts := make(map[string]int)
	for _, occ := range fc.Occurrences {
		counts[occ.Kind.String()]++
	}
	return counts
}

// Source classifies a file's source text, choosing the strategy from parse
// success: structured when the grammar accepts the input, fallback
// otherwise. symbolFilter, when non-empty, lets the caller skip files that
// cannot contain the symbol; the check is a conservative substring test that
// never produces a false negative.
func Source(adapter *grammar.Adapter, src []byte, path, symbolFilter string) *FileClassification {
	kind := types.FileKindForPath(path)

	if symbolFilter != "" && !bytes.Contains(src, []byte(symbolFilter)) {
		return &FileClassification{Path: path, Kind: kind, Strategy: StrategyStructured, Scopes: scope.NewTree()}
	}

	tree, perr := adapter.Parse(src, kind)
	if perr != nil {
		return Fallback(src, path, symbolFilter)
	}
	defer tree.Close()

	return File(tree, path)
}

// File classifies a parsed tree in structured mode.
func File(tree *grammar.Tree, path string) *FileClassification {
	w := &walker{
		src:    tree.Source(),
		path:   path,
		lines:  strings.Split(string(tree.Source()), "\n"),
		scopes: scope.NewTree(),
	}
	w.walk(tree.Root(), types.ScopeModuleRoot)

	return &FileClassification{
		Path:        path,
		Kind:        tree.Kind(),
		Strategy:    StrategyStructured,
		Occurrences: w.occ,
		Scopes:      w.scopes,
	}
}

type walker struct {
	src    []byte
	path   string
	lines  []string
	occ    []types.Occurrence
	scopes *scope.Tree

	// handled marks identifier nodes already emitted while processing a
	// scope-forming parent, so the generic walk does not emit them twice.
	handled map[uintptr]bool
}

func (w *walker) markHandled(node *tree_sitter.Node) {
	if w.handled == nil {
		w.handled = make(map[uintptr]bool)
	}
	w.handled[node.Id()] = true
}

// identifierKinds are the leaf node kinds that mention a symbol.
var identifierKinds = map[string]bool{
	"identifier":                            true,
	"property_identifier":                   true,
	"type_identifier":                       true,
	"shorthand_property_identifier":         true,
	"shorthand_property_identifier_pattern": true,
	"statement_identifier":                  true,
}

// functionScopeKinds open a Function scope around their body.
var functionScopeKinds = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

// classScopeKinds open a Class scope.
var classScopeKinds = map[string]bool{
	"class_declaration": true,
	"class_expression":  true,
}

func (w *walker) walk(node *tree_sitter.Node, cur types.ScopeID) {
	kind := node.Kind()

	switch {
	case functionScopeKinds[kind]:
		w.walkFunctionLike(node, kind, cur)
		return
	case classScopeKinds[kind]:
		w.walkClassLike(node, cur)
		return
	case kind == "statement_block":
		// A block directly forming a function or method body shares the
		// Function scope; only freestanding blocks introduce a Block scope.
		if parent := node.Parent(); parent != nil && (functionScopeKinds[parent.Kind()] || parent.Kind() == "class_static_block") {
			w.walkChildren(node, cur)
			return
		}
		child := w.scopes.Enter(types.ScopeKindBlock, "", cur)
		w.walkChildren(node, child)
		return
	}

	if identifierKinds[kind] {
		if w.handled == nil || !w.handled[node.Id()] {
			w.emit(node, cur)
		}
		return
	}

	w.walkChildren(node, cur)
}

func (w *walker) walkChildren(node *tree_sitter.Node, cur types.ScopeID) {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			w.walk(child, cur)
		}
	}
}

// walkFunctionLike emits the function's name into the enclosing scope, then
// opens a Function scope for parameters and body.
func (w *walker) walkFunctionLike(node *tree_sitter.Node, kind string, cur types.ScopeID) {
	scopeName := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		scopeName = w.text(nameNode)
		// The name itself belongs to the scope the function appears in.
		w.emit(nameNode, cur)
		w.markHandled(nameNode)
	} else if scopeName = w.declaratorName(node); scopeName != "" {
		// Anonymous function assigned to a variable: name the scope after
		// the declarator so scoped operations can target it.
	}

	fnScope := w.scopes.Enter(types.ScopeKindFunction, scopeName, cur)
	w.walkChildren(node, fnScope)
}

func (w *walker) walkClassLike(node *tree_sitter.Node, cur types.ScopeID) {
	scopeName := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		scopeName = w.text(nameNode)
		w.emit(nameNode, cur)
		w.markHandled(nameNode)
	}

	clsScope := w.scopes.Enter(types.ScopeKindClass, scopeName, cur)
	w.walkChildren(node, clsScope)
}

// declaratorName returns the variable name when node is the value of a
// variable declarator (const f = () => {}).
func (w *walker) declaratorName(node *tree_sitter.Node) string {
	parent := node.Parent()
	if parent == nil || parent.Kind() != "variable_declarator" {
		return ""
	}
	if nameNode := parent.ChildByFieldName("name"); nameNode != nil && nameNode.Kind() == "identifier" {
		return w.text(nameNode)
	}
	return ""
}

// emit classifies one identifier node and appends its occurrence. The rule
// table goes strictly by the identifier's immediate syntactic position.
func (w *walker) emit(node *tree_sitter.Node, cur types.ScopeID) {
	name := w.text(node)
	if name == "" {
		return
	}

	kind, parentKind, declares, exported := w.classifyPosition(node)

	pos := node.StartPosition()
	occ := types.Occurrence{
		Symbol:    name,
		FilePath:  w.path,
		Line:      int(pos.Row) + 1,
		Column:    int(pos.Column),
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
		Kind:      kind,
		Scope:     cur,
		Snippet:   w.snippet(int(pos.Row)),
		NodeKind:  parentKind,
		Exported:  exported,
	}
	w.occ = append(w.occ, occ)

	if declares {
		w.bindDeclaration(node, name, cur, len(w.occ)-1)
	}
}

// classifyPosition decides the context kind for an identifier from its
// parent node. Returns the kind, the parent kind for audit, whether the
// mention declares a binding, and whether that declaration is exported.
func (w *walker) classifyPosition(node *tree_sitter.Node) (types.ContextKind, string, bool, bool) {
	parent := node.Parent()
	if parent == nil {
		return types.ContextUnknown, "", false, false
	}
	parentKind := parent.Kind()

	switch parentKind {
	case "function_declaration", "generator_function_declaration",
		"function_expression", "generator_function",
		"class_declaration", "class_expression",
		"method_definition",
		"interface_declaration", "type_alias_declaration", "enum_declaration",
		"variable_declarator":
		if w.isField(parent, "name", node) {
			return types.ContextDeclaration, parentKind, true, isExportedDeclaration(parent)
		}

	case "call_expression":
		if w.isField(parent, "function", node) {
			return types.ContextFunctionCall, parentKind, false, false
		}

	case "new_expression":
		if w.isField(parent, "constructor", node) {
			return types.ContextNewInstance, parentKind, false, false
		}

	case "import_specifier", "namespace_import", "import_clause":
		return types.ContextImport, parentKind, true, false

	case "export_specifier":
		return types.ContextExport, parentKind, false, false

	case "jsx_opening_element", "jsx_closing_element", "jsx_self_closing_element":
		name := w.text(node)
		if isComponentName(name) {
			return types.ContextJsxComponent, parentKind, false, false
		}
		return types.ContextUnknown, parentKind, false, false

	case "member_expression", "nested_type_identifier":
		if w.isField(parent, "property", node) {
			return types.ContextPropertyAccess, parentKind, false, false
		}

	case "formal_parameters":
		return types.ContextDeclaration, parentKind, true, false

	case "required_parameter", "optional_parameter", "rest_pattern":
		return types.ContextDeclaration, parentKind, true, false

	case "arrow_function":
		// Single-parameter shorthand: x => x * 2
		if w.isField(parent, "parameter", node) {
			return types.ContextDeclaration, parentKind, true, false
		}
	}

	// TypeScript annotation and generic-argument positions.
	if node.Kind() == "type_identifier" {
		return types.ContextTypeReference, parentKind, false, false
	}

	return types.ContextUnknown, parentKind, false, false
}

// bindDeclaration records the binding in the scope the declaration belongs
// to. Parameters bind into the Function scope currently being built; other
// declarations bind where they appear.
func (w *walker) bindDeclaration(node *tree_sitter.Node, name string, cur types.ScopeID, occIdx int) {
	w.scopes.Bind(cur, name, occIdx)
}

// isField reports whether child occupies the named field of parent.
func (w *walker) isField(parent *tree_sitter.Node, field string, child *tree_sitter.Node) bool {
	f := parent.ChildByFieldName(field)
	return f != nil && f.Id() == child.Id()
}

func (w *walker) text(node *tree_sitter.Node) string {
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(w.src) || start >= end {
		return ""
	}
	return string(w.src[start:end])
}

func (w *walker) snippet(row int) string {
	if row < 0 || row >= len(w.lines) {
		return ""
	}
	return strings.TrimSpace(w.lines[row])
}

// isExportedDeclaration checks whether a declaration node sits directly
// inside an export statement, covering both `export function f` and
// `export const x = ...` (where the declarator is one level deeper).
func isExportedDeclaration(declNode *tree_sitter.Node) bool {
	parent := declNode.Parent()
	if parent == nil {
		return false
	}
	if parent.Kind() == "export_statement" {
		return true
	}
	switch parent.Kind() {
	case "lexical_declaration", "variable_declaration":
		if gp := parent.Parent(); gp != nil && gp.Kind() == "export_statement" {
			return true
		}
	}
	return false
}

// isComponentName implements the JSX convention: capitalized tag names are
// components, lowercase ones are intrinsic elements.
func isComponentName(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}

// IsComponentName reports whether name would be treated as a JSX component
// tag rather than an intrinsic element.
func IsComponentName(name string) bool {
	return isComponentName(name)
}
