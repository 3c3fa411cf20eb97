// Package types holds the shared data model for classification and
// refactoring: file kinds, occurrence context kinds, and the occurrence
// record itself. These are immutable value records produced fresh on each
// classification pass.
package types

import (
	"path/filepath"
	"strings"
)

// FileKind selects the grammar variant used to parse a file.
type FileKind uint8

const (
	FileKindUnknown FileKind = iota
	FileKindJS
	FileKindJSX
	FileKindTS
	FileKindTSX
)

// String returns the canonical name of the file kind.
func (k FileKind) String() string {
	switch k {
	case FileKindJS:
		return "javascript"
	case FileKindJSX:
		return "jsx"
	case FileKindTS:
		return "typescript"
	case FileKindTSX:
		return "tsx"
	default:
		return "unknown"
	}
}

// supportedExtensions maps recognized file extensions to grammar variants.
// .mjs and .cjs are module/script flavors of plain JavaScript.
var supportedExtensions = map[string]FileKind{
	".js":  FileKindJS,
	".mjs": FileKindJS,
	".cjs": FileKindJS,
	".jsx": FileKindJSX,
	".ts":  FileKindTS,
	".tsx": FileKindTSX,
}

// FileKindForPath derives the grammar variant from a path's extension.
// Returns FileKindUnknown for unsupported extensions.
func FileKindForPath(path string) FileKind {
	ext := strings.ToLower(filepath.Ext(path))
	return supportedExtensions[ext]
}

// IsSupportedPath reports whether the path has a JS/TS family extension.
func IsSupportedPath(path string) bool {
	return FileKindForPath(path) != FileKindUnknown
}

// SupportedExtensions returns the recognized extensions in stable order.
func SupportedExtensions() []string {
	return []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}
}

// ContextKind is the closed set of semantic contexts an identifier mention
// can occupy. Classification is decided by an explicit ordered rule table
// over the identifier's immediate syntactic position.
type ContextKind uint8

const (
	ContextUnknown ContextKind = iota
	ContextDeclaration
	ContextFunctionCall
	ContextImport
	ContextExport
	ContextJsxComponent
	ContextNewInstance
	ContextPropertyAccess
	ContextTypeReference
)

var contextNames = map[ContextKind]string{
	ContextUnknown:        "unknown",
	ContextDeclaration:    "declaration",
	ContextFunctionCall:   "function_call",
	ContextImport:         "import",
	ContextExport:         "export",
	ContextJsxComponent:   "jsx_component",
	ContextNewInstance:    "new_instance",
	ContextPropertyAccess: "property_access",
	ContextTypeReference:  "type_reference",
}

// String returns the wire name of the context kind.
func (c ContextKind) String() string {
	if name, ok := contextNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseContextKind resolves a wire name back to a ContextKind.
func ParseContextKind(s string) (ContextKind, bool) {
	for kind, name := range contextNames {
		if name == s {
			return kind, true
		}
	}
	return ContextUnknown, false
}

// AllContextKinds returns every kind in declaration order, for exhaustive
// report counters.
func AllContextKinds() []ContextKind {
	return []ContextKind{
		ContextUnknown, ContextDeclaration, ContextFunctionCall,
		ContextImport, ContextExport, ContextJsxComponent,
		ContextNewInstance, ContextPropertyAccess, ContextTypeReference,
	}
}

// ScopeID indexes into a per-file scope arena. The module root is always
// scope 0; ScopeNone marks occurrences outside any scope tree (fallback
// mode classifications).
type ScopeID int32

const (
	ScopeModuleRoot ScopeID = 0
	ScopeNone       ScopeID = -1
)

// ScopeKind categorizes a lexical scope.
type ScopeKind uint8

const (
	ScopeKindModule ScopeKind = iota
	ScopeKindFunction
	ScopeKindBlock
	ScopeKindClass
)

// String returns the scope kind name.
func (k ScopeKind) String() string {
	switch k {
	case ScopeKindModule:
		return "module"
	case ScopeKindFunction:
		return "function"
	case ScopeKindBlock:
		return "block"
	case ScopeKindClass:
		return "class"
	default:
		return "unknown"
	}
}

// Occurrence is one classified mention of a symbol at a specific position.
// Line is 1-based, Column is a 0-based byte column; StartByte/EndByte span
// the identifier itself within the file's source.
type Occurrence struct {
	Symbol    string
	FilePath  string
	Line      int
	Column    int
	StartByte int
	EndByte   int
	Kind      ContextKind
	Scope     ScopeID

	// Snippet is the containing source line, for display and audit.
	Snippet string

	// NodeKind records the identifier's parent syntax node kind in
	// structured mode ("function_declaration", "variable_declarator", ...).
	// Empty in fallback mode.
	NodeKind string

	// Exported marks a Declaration whose statement is directly wrapped in
	// an export. Export-specifier mentions are already ContextExport; this
	// flag covers the `export function f` / `export const x` forms where
	// the identifier's immediate position is a declaration.
	Exported bool
}
