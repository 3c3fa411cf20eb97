package classify

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/standardbeagle/jsmorph/internal/scope"
	"github.com/standardbeagle/jsmorph/internal/types"
)

// Fallback classifies a file by matching a fixed ordered list of textual
// templates against raw lines. It is used when the grammar rejects the input
// (experimental syntax, intentionally broken code during editing) and always
// produces a result, never an error. The first matching template wins per
// line; name-containing lines that match no template are tagged Unknown.
//
// Fallback occurrences all live in a single module-root scope, so the
// occurrence/scope invariant holds even without a parse.
func Fallback(src []byte, path, symbolFilter string) *FileClassification {
	fc := &FileClassification{
		Path:     path,
		Kind:     types.FileKindForPath(path),
		Strategy: StrategyFallback,
		Scopes:   scope.NewTree(),
	}

	lines := strings.Split(string(src), "\n")
	byteOffset := 0
	for i, line := range lines {
		lineStart := byteOffset
		byteOffset += len(line) + 1

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isCommentLine(trimmed) {
			continue
		}

		if symbolFilter != "" {
			if occ, ok := matchSymbolTemplates(line, symbolFilter); ok {
				fc.add(occ, path, i+1, lineStart, trimmed)
			}
			continue
		}

		for _, occ := range matchGenericTemplates(line) {
			fc.add(occ, path, i+1, lineStart, trimmed)
		}
	}

	return fc
}

// add finalizes a raw template match into an occurrence and binds
// declarations into the module-root scope.
func (fc *FileClassification) add(m templateMatch, path string, lineNum, lineStart int, snippet string) {
	occ := types.Occurrence{
		Symbol:    m.symbol,
		FilePath:  path,
		Line:      lineNum,
		Column:    m.column,
		StartByte: lineStart + m.column,
		EndByte:   lineStart + m.column + len(m.symbol),
		Kind:      m.kind,
		Scope:     types.ScopeModuleRoot,
		Snippet:   snippet,
		Exported:  m.exported,
	}
	fc.Occurrences = append(fc.Occurrences, occ)
	if m.kind == types.ContextDeclaration || m.kind == types.ContextImport {
		fc.Scopes.Bind(types.ScopeModuleRoot, m.symbol, len(fc.Occurrences)-1)
	}
}

type templateMatch struct {
	symbol   string
	column   int
	kind     types.ContextKind
	exported bool
}

// symbolTemplate is one entry in the ordered pattern table. The pattern is a
// format string with a single %s slot for the (escaped) symbol, and must
// wrap the symbol slot in the pattern's only capture group.
type symbolTemplate struct {
	name     string
	pattern  string
	kind     types.ContextKind
	exported bool
}

// symbolTemplates is the fixed, ordered template table. Definition forms
// come before usage forms so a declaring line is never misread as a call.
var symbolTemplates = []symbolTemplate{
	{"export_default_class", `export\s+default\s+class\s+(%s)\b`, types.ContextDeclaration, true},
	{"export_class", `export\s+class\s+(%s)\b`, types.ContextDeclaration, true},
	{"class", `class\s+(%s)\b`, types.ContextDeclaration, false},
	{"export_function", `export\s+(?:default\s+)?(?:async\s+)?function\s*\*?\s*(%s)\b`, types.ContextDeclaration, true},
	{"function", `(?:async\s+)?function\s*\*?\s*(%s)\b`, types.ContextDeclaration, false},
	{"export_const", `export\s+(?:const|let|var)\s+(%s)\s*=`, types.ContextDeclaration, true},
	{"const", `(?:const|let|var)\s+(%s)\s*=`, types.ContextDeclaration, false},
	{"export_interface", `export\s+interface\s+(%s)\b`, types.ContextDeclaration, true},
	{"interface", `interface\s+(%s)\b`, types.ContextDeclaration, false},
	{"export_type", `export\s+type\s+(%s)\s*=`, types.ContextDeclaration, true},
	{"type_alias", `type\s+(%s)\s*=`, types.ContextDeclaration, false},
	{"enum", `(?:const\s+)?enum\s+(%s)\b`, types.ContextDeclaration, false},
	{"import_named", `import\s*\{[^}]*\b(%s)\b[^}]*\}\s*from`, types.ContextImport, false},
	{"import_default", `import\s+(%s)\s+from`, types.ContextImport, false},
	{"require_destructure", `(?:const|let|var)\s*\{[^}]*\b(%s)\b[^}]*\}\s*=\s*require`, types.ContextImport, false},
	{"export_specifier", `export\s*\{[^}]*\b(%s)\b[^}]*\}`, types.ContextExport, false},
	{"jsx_component", `<(%s)[\s/>]`, types.ContextJsxComponent, false},
	{"new_instance", `new\s+(%s)\b`, types.ContextNewInstance, false},
	{"function_call", `\b(%s)\s*\(`, types.ContextFunctionCall, false},
	{"property_access", `\.(%s)\b`, types.ContextPropertyAccess, false},
	{"type_usage", `:\s*(%s)\b`, types.ContextTypeReference, false},
}

// templateCache memoizes compiled per-symbol patterns. sync.Map because
// fallback classification runs inside parallel index workers.
var templateCache sync.Map

func compiledTemplate(pattern, symbol string) *regexp.Regexp {
	key := pattern + "\x00" + symbol
	if re, ok := templateCache.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(fmt.Sprintf(pattern, regexp.QuoteMeta(symbol)))
	templateCache.Store(key, re)
	return re
}

// matchSymbolTemplates tries each template in order against one line; the
// first match wins. Lines containing the symbol but matching no template
// are tagged Unknown.
func matchSymbolTemplates(line, symbol string) (templateMatch, bool) {
	for _, tpl := range symbolTemplates {
		re := compiledTemplate(tpl.pattern, symbol)
		loc := re.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		return templateMatch{
			symbol:   symbol,
			column:   loc[2],
			kind:     tpl.kind,
			exported: tpl.exported,
		}, true
	}

	if col, ok := wordIndex(line, symbol); ok {
		return templateMatch{symbol: symbol, column: col, kind: types.ContextUnknown}, true
	}
	return templateMatch{}, false
}

var genericDeclRes = []struct {
	re       *regexp.Regexp
	kind     types.ContextKind
	expGroup bool
}{
	{regexp.MustCompile(`(export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][A-Za-z0-9_$]*)`), types.ContextDeclaration, true},
	{regexp.MustCompile(`(export\s+)?(?:default\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)`), types.ContextDeclaration, true},
	{regexp.MustCompile(`(export\s+)?(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=`), types.ContextDeclaration, true},
	{regexp.MustCompile(`(export\s+)?interface\s+([A-Za-z_$][A-Za-z0-9_$]*)`), types.ContextDeclaration, true},
	{regexp.MustCompile(`(export\s+)?type\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=`), types.ContextDeclaration, true},
	{regexp.MustCompile(`(export\s+)?enum\s+([A-Za-z_$][A-Za-z0-9_$]*)`), types.ContextDeclaration, true},
	{regexp.MustCompile(`()import\s+([A-Za-z_$][A-Za-z0-9_$]*)\s+from`), types.ContextImport, false},
}

var genericNamedImportRe = regexp.MustCompile(`import\s*\{([^}]*)\}\s*from`)
var genericExportClauseRe = regexp.MustCompile(`export\s*\{([^}]*)\}`)

// genericUsageRes mirrors the usage rows of symbolTemplates for whole-file
// mode. Ordered after the declaration and clause passes so a name is only
// read as a usage when the line did not already define or re-export it.
var genericUsageRes = []struct {
	re   *regexp.Regexp
	kind types.ContextKind
}{
	{regexp.MustCompile(`new\s+([A-Za-z_$][A-Za-z0-9_$]*)`), types.ContextNewInstance},
	{regexp.MustCompile(`<([A-Z][A-Za-z0-9_$]*)[\s/>]`), types.ContextJsxComponent},
	{regexp.MustCompile(`\b([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`), types.ContextFunctionCall},
	{regexp.MustCompile(`\.([A-Za-z_$][A-Za-z0-9_$]*)\b`), types.ContextPropertyAccess},
	{regexp.MustCompile(`:\s*([A-Z][A-Za-z0-9_$]*)\b`), types.ContextTypeReference},
}

// reservedWords are keywords the call template would otherwise pick up
// (`if (...)`, `return (...)`). They are never recorded as symbols.
var reservedWords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "function": true, "typeof": true, "new": true,
	"do": true, "else": true, "await": true, "yield": true,
	"import": true, "export": true, "require": true, "delete": true,
	"void": true, "in": true, "of": true, "throw": true, "super": true,
}

// matchGenericTemplates extracts every declaration, import, export, and
// usage mention from a line without a target symbol, used when
// classification runs over a whole file in fallback mode (e.g.
// unused-export scans). Usage forms matter there too: a call in an
// unparseable file still keeps the callee's export alive.
func matchGenericTemplates(line string) []templateMatch {
	var out []templateMatch
	seen := map[string]bool{}

	for _, g := range genericDeclRes {
		loc := g.re.FindStringSubmatchIndex(line)
		if loc == nil || loc[4] < 0 {
			continue
		}
		name := line[loc[4]:loc[5]]
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, templateMatch{
			symbol:   name,
			column:   loc[4],
			kind:     g.kind,
			exported: g.expGroup && loc[2] >= 0,
		})
	}

	if m := genericNamedImportRe.FindStringSubmatchIndex(line); m != nil {
		for _, spec := range splitSpecifiers(line[m[2]:m[3]]) {
			if seen[spec.name] {
				continue
			}
			seen[spec.name] = true
			out = append(out, templateMatch{symbol: spec.name, column: m[2] + spec.offset, kind: types.ContextImport})
		}
	} else if m := genericExportClauseRe.FindStringSubmatchIndex(line); m != nil {
		for _, spec := range splitSpecifiers(line[m[2]:m[3]]) {
			if seen[spec.name] {
				continue
			}
			seen[spec.name] = true
			out = append(out, templateMatch{symbol: spec.name, column: m[2] + spec.offset, kind: types.ContextExport})
		}
	}

	for _, g := range genericUsageRes {
		for _, loc := range g.re.FindAllStringSubmatchIndex(line, -1) {
			name := line[loc[2]:loc[3]]
			if seen[name] || reservedWords[name] {
				continue
			}
			seen[name] = true
			out = append(out, templateMatch{symbol: name, column: loc[2], kind: g.kind})
		}
	}

	return out
}

type specifier struct {
	name   string
	offset int
}

// splitSpecifiers parses the inside of an import/export brace list,
// honoring `name as alias` by reporting the original name.
func splitSpecifiers(clause string) []specifier {
	var out []specifier
	offset := 0
	for _, part := range strings.Split(clause, ",") {
		name := part
		if idx := strings.Index(name, " as "); idx >= 0 {
			name = name[:idx]
		}
		trimmed := strings.TrimSpace(name)
		if trimmed != "" && isIdentifierName(trimmed) {
			out = append(out, specifier{name: trimmed, offset: offset + strings.Index(part, trimmed)})
		}
		offset += len(part) + 1
	}
	return out
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// isIdentifierName reports whether s is a legal JS identifier.
func isIdentifierName(s string) bool {
	return identRe.MatchString(s)
}

// ValidIdentifier reports whether s can be used as a JavaScript or
// TypeScript identifier. Refactoring operations reject anything else
// before computing edits.
func ValidIdentifier(s string) bool {
	return isIdentifierName(s)
}

// isCommentLine mirrors the classifier's comment skip: lines starting with
// //, /* or a block-comment continuation * are never classified.
func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*")
}

// wordIndex finds symbol in line at an identifier boundary.
func wordIndex(line, symbol string) (int, bool) {
	for start := 0; ; {
		idx := strings.Index(line[start:], symbol)
		if idx < 0 {
			return 0, false
		}
		pos := start + idx
		before := pos == 0 || !isIdentChar(line[pos-1])
		afterIdx := pos + len(symbol)
		after := afterIdx >= len(line) || !isIdentChar(line[afterIdx])
		if before && after {
			return pos, true
		}
		start = pos + len(symbol)
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
