// Package analysis produces a structural overview of a single JavaScript or
// TypeScript file: its functions, classes, imports and exports. This is the
// read-only companion to the refactoring operations, useful for orienting
// in an unfamiliar file before touching it.
package analysis

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/jsmorph/internal/grammar"
	"github.com/standardbeagle/jsmorph/internal/types"
)

// FunctionInfo describes one function found in a file. Class is set for
// methods and names the enclosing class.
type FunctionInfo struct {
	Name      string   `json:"name"`
	Params    []string `json:"params"`
	Async     bool     `json:"async,omitempty"`
	Generator bool     `json:"generator,omitempty"`
	Class     string   `json:"class,omitempty"`
	Line      int      `json:"line"`
}

// ClassInfo describes one class declaration.
type ClassInfo struct {
	Name    string   `json:"name"`
	Extends string   `json:"extends,omitempty"`
	Methods []string `json:"methods,omitempty"`
	Line    int      `json:"line"`
}

// ImportInfo describes one import statement or require call.
type ImportInfo struct {
	Source    string   `json:"source"`
	Default   string   `json:"default,omitempty"`
	Named     []string `json:"named,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	Require   bool     `json:"require,omitempty"`
	Line      int      `json:"line"`
}

// ExportInfo describes one exported name.
type ExportInfo struct {
	Name    string `json:"name"`
	Default bool   `json:"default,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Line    int    `json:"line"`
}

// FileReport is the full structural summary of one file.
type FileReport struct {
	Path      string         `json:"file"`
	Kind      string         `json:"language"`
	Strategy  string         `json:"strategy"`
	Functions []FunctionInfo `json:"functions"`
	Classes   []ClassInfo    `json:"classes"`
	Imports   []ImportInfo   `json:"imports"`
	Exports   []ExportInfo   `json:"exports"`

	// ParseNote explains why pattern matching was used instead of the
	// syntax tree, when that happened.
	ParseNote string `json:"parse_note,omitempty"`
}

// File analyzes one file's source. A file the grammar cannot parse falls
// back to line-pattern extraction rather than failing.
func File(adapter *grammar.Adapter, src []byte, path string) *FileReport {
	kind := types.FileKindForPath(path)
	rep := &FileReport{Path: path, Kind: kind.String(), Strategy: "structured"}

	tree, perr := adapter.Parse(src, kind)
	if perr != nil {
		rep.Strategy = "fallback"
		rep.ParseNote = perr.Error()
		fallbackReport(rep, src)
		return rep
	}
	defer tree.Close()

	w := &reportWalker{src: src, rep: rep}
	w.walk(tree.Root(), "")
	return rep
}

type reportWalker struct {
	src []byte
	rep *FileReport
}

func (w *reportWalker) walk(node *tree_sitter.Node, class string) {
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration":
		w.addFunction(node, class, node.Kind() == "generator_function_declaration")
	case "method_definition":
		w.addFunction(node, class, w.hasToken(node, "*"))
	case "class_declaration":
		class = w.addClass(node)
	case "lexical_declaration", "variable_declaration":
		w.scanDeclarators(node, class)
	case "import_statement":
		w.addImport(node)
	case "export_statement":
		w.addExports(node)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		w.walk(node.Child(i), class)
	}
}

func (w *reportWalker) addFunction(node *tree_sitter.Node, class string, generator bool) {
	name := w.fieldText(node, "name")
	if name == "" {
		return
	}
	w.rep.Functions = append(w.rep.Functions, FunctionInfo{
		Name:      name,
		Params:    w.params(node.ChildByFieldName("parameters")),
		Async:     w.hasToken(node, "async"),
		Generator: generator,
		Class:     class,
		Line:      int(node.StartPosition().Row) + 1,
	})
}

func (w *reportWalker) addClass(node *tree_sitter.Node) string {
	name := w.fieldText(node, "name")
	if name == "" {
		return ""
	}
	info := ClassInfo{Name: name, Line: int(node.StartPosition().Row) + 1}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "class_heritage" {
			info.Extends = strings.TrimSpace(strings.TrimPrefix(w.text(child), "extends"))
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			m := body.Child(i)
			if m.Kind() == "method_definition" {
				if mn := w.fieldText(m, "name"); mn != "" {
					info.Methods = append(info.Methods, mn)
				}
			}
		}
	}
	w.rep.Classes = append(w.rep.Classes, info)
	return name
}

// scanDeclarators picks up `const f = () => {}` style functions and
// `const x = require('mod')` imports.
func (w *reportWalker) scanDeclarators(node *tree_sitter.Node, class string) {
	for i := uint(0); i < node.ChildCount(); i++ {
		decl := node.Child(i)
		if decl.Kind() != "variable_declarator" {
			continue
		}
		value := decl.ChildByFieldName("value")
		if value == nil {
			continue
		}
		switch value.Kind() {
		case "arrow_function", "function_expression", "generator_function":
			name := w.fieldText(decl, "name")
			if name == "" {
				continue
			}
			w.rep.Functions = append(w.rep.Functions, FunctionInfo{
				Name:      name,
				Params:    w.params(value.ChildByFieldName("parameters")),
				Async:     w.hasToken(value, "async"),
				Generator: value.Kind() == "generator_function",
				Class:     class,
				Line:      int(decl.StartPosition().Row) + 1,
			})
		case "call_expression":
			if w.fieldText(value, "function") != "require" {
				continue
			}
			imp := ImportInfo{
				Require: true,
				Source:  w.stringArg(value),
				Line:    int(decl.StartPosition().Row) + 1,
			}
			nameNode := decl.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			if nameNode.Kind() == "object_pattern" {
				imp.Named = w.patternNames(nameNode)
			} else {
				imp.Default = w.text(nameNode)
			}
			w.rep.Imports = append(w.rep.Imports, imp)
		}
	}
}

func (w *reportWalker) addImport(node *tree_sitter.Node) {
	imp := ImportInfo{
		Source: trimQuotes(w.fieldText(node, "source")),
		Line:   int(node.StartPosition().Row) + 1,
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		clause := node.Child(i)
		if clause.Kind() != "import_clause" {
			continue
		}
		for j := uint(0); j < clause.ChildCount(); j++ {
			part := clause.Child(j)
			switch part.Kind() {
			case "identifier":
				imp.Default = w.text(part)
			case "namespace_import":
				for k := uint(0); k < part.ChildCount(); k++ {
					if part.Child(k).Kind() == "identifier" {
						imp.Namespace = w.text(part.Child(k))
					}
				}
			case "named_imports":
				for k := uint(0); k < part.ChildCount(); k++ {
					spec := part.Child(k)
					if spec.Kind() == "import_specifier" {
						imp.Named = append(imp.Named, w.importedName(spec))
					}
				}
			}
		}
	}
	w.rep.Imports = append(w.rep.Imports, imp)
}

func (w *reportWalker) addExports(node *tree_sitter.Node) {
	line := int(node.StartPosition().Row) + 1
	isDefault := w.hasToken(node, "default")

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		name := w.fieldText(decl, "name")
		if name == "" && (decl.Kind() == "lexical_declaration" || decl.Kind() == "variable_declaration") {
			for i := uint(0); i < decl.ChildCount(); i++ {
				d := decl.Child(i)
				if d.Kind() == "variable_declarator" {
					w.rep.Exports = append(w.rep.Exports, ExportInfo{
						Name: w.fieldText(d, "name"), Kind: "variable", Line: line,
					})
				}
			}
			return
		}
		if name != "" {
			w.rep.Exports = append(w.rep.Exports, ExportInfo{
				Name: name, Default: isDefault, Kind: exportKind(decl.Kind()), Line: line,
			})
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() != "export_clause" {
			continue
		}
		for j := uint(0); j < child.ChildCount(); j++ {
			spec := child.Child(j)
			if spec.Kind() == "export_specifier" {
				w.rep.Exports = append(w.rep.Exports, ExportInfo{
					Name: w.exportedName(spec), Kind: "specifier", Line: line,
				})
			}
		}
	}

	if isDefault && len(w.rep.Exports) == 0 {
		// `export default <expression>`: report what is visible.
		w.rep.Exports = append(w.rep.Exports, ExportInfo{
			Name: "default", Default: true, Kind: "expression", Line: line,
		})
	}
}

// importedName prefers the local alias: `import { a as b }` binds b.
func (w *reportWalker) importedName(spec *tree_sitter.Node) string {
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		return w.text(alias)
	}
	return w.fieldText(spec, "name")
}

// exportedName prefers the public alias: `export { a as b }` exposes b.
func (w *reportWalker) exportedName(spec *tree_sitter.Node) string {
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		return w.text(alias)
	}
	return w.fieldText(spec, "name")
}

func (w *reportWalker) params(paramsNode *tree_sitter.Node) []string {
	if paramsNode == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < paramsNode.ChildCount(); i++ {
		child := paramsNode.Child(i)
		switch child.Kind() {
		case "(", ")", ",":
			continue
		}
		out = append(out, w.text(child))
	}
	return out
}

func (w *reportWalker) patternNames(pattern *tree_sitter.Node) []string {
	var out []string
	for i := uint(0); i < pattern.ChildCount(); i++ {
		child := pattern.Child(i)
		if child.Kind() == "shorthand_property_identifier_pattern" || child.Kind() == "identifier" {
			out = append(out, w.text(child))
		}
	}
	return out
}

// stringArg returns the unquoted first string argument of a call.
func (w *reportWalker) stringArg(call *tree_sitter.Node) string {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		child := args.Child(i)
		if child.Kind() == "string" {
			return trimQuotes(w.text(child))
		}
	}
	return ""
}

func (w *reportWalker) hasToken(node *tree_sitter.Node, token string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == token {
			return true
		}
	}
	return false
}

func (w *reportWalker) text(node *tree_sitter.Node) string {
	return string(w.src[node.StartByte():node.EndByte()])
}

func (w *reportWalker) fieldText(node *tree_sitter.Node, field string) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return w.text(child)
}

func trimQuotes(s string) string {
	return strings.Trim(s, "'\"`")
}

func exportKind(nodeKind string) string {
	switch nodeKind {
	case "function_declaration", "generator_function_declaration":
		return "function"
	case "class_declaration":
		return "class"
	case "interface_declaration":
		return "interface"
	case "type_alias_declaration":
		return "type"
	case "enum_declaration":
		return "enum"
	default:
		return nodeKind
	}
}
