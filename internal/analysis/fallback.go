package analysis

import (
	"regexp"
	"strings"
)

// Line patterns for files the grammar rejects. Coarser than the tree walk:
// no parameter lists for arrow assignments, no method attribution, but
// enough to orient in a broken file.
var (
	fbFunctionRe = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(async\s+)?function\s*(\*)?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\(([^)]*)`)
	fbArrowRe    = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*(?::[^=]+)?=\s*(async\s+)?\(?[^)=]*\)?\s*=>`)
	fbClassRe    = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)(?:\s+extends\s+([A-Za-z_$][A-Za-z0-9_$.]*))?`)
	fbImportRe   = regexp.MustCompile(`^\s*import\s+(?:([A-Za-z_$][A-Za-z0-9_$]*)\s*,?\s*)?(?:\{([^}]*)\}|\*\s*as\s+([A-Za-z_$][A-Za-z0-9_$]*))?\s*from\s*['"]([^'"]+)['"]`)
	fbRequireRe  = regexp.MustCompile(`^\s*(?:const|let|var)\s+(?:([A-Za-z_$][A-Za-z0-9_$]*)|\{([^}]*)\})\s*=\s*require\s*\(\s*['"]([^'"]+)['"]`)
	fbExportRe   = regexp.MustCompile(`^\s*export\s+(default\s+)?(?:function\s*\*?\s*|class\s+|const\s+|let\s+|var\s+|interface\s+|type\s+|enum\s+)([A-Za-z_$][A-Za-z0-9_$]*)`)
	fbExportClRe = regexp.MustCompile(`^\s*export\s+(?:type\s+)?\{([^}]*)\}`)
)

func fallbackReport(rep *FileReport, src []byte) {
	for lineNo, line := range strings.Split(string(src), "\n") {
		n := lineNo + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "/*") {
			continue
		}

		if m := fbFunctionRe.FindStringSubmatch(line); m != nil {
			rep.Functions = append(rep.Functions, FunctionInfo{
				Name:      m[3],
				Params:    splitParams(m[4]),
				Async:     m[1] != "",
				Generator: m[2] != "",
				Line:      n,
			})
		} else if m := fbArrowRe.FindStringSubmatch(line); m != nil {
			rep.Functions = append(rep.Functions, FunctionInfo{
				Name:  m[1],
				Async: m[2] != "",
				Line:  n,
			})
		}

		if m := fbClassRe.FindStringSubmatch(line); m != nil {
			rep.Classes = append(rep.Classes, ClassInfo{Name: m[1], Extends: m[2], Line: n})
		}

		if m := fbImportRe.FindStringSubmatch(line); m != nil {
			rep.Imports = append(rep.Imports, ImportInfo{
				Default:   m[1],
				Named:     splitParams(m[2]),
				Namespace: m[3],
				Source:    m[4],
				Line:      n,
			})
		} else if m := fbRequireRe.FindStringSubmatch(line); m != nil {
			rep.Imports = append(rep.Imports, ImportInfo{
				Default: m[1],
				Named:   splitParams(m[2]),
				Source:  m[3],
				Require: true,
				Line:    n,
			})
		}

		if m := fbExportRe.FindStringSubmatch(line); m != nil {
			rep.Exports = append(rep.Exports, ExportInfo{
				Name: m[2], Default: m[1] != "", Line: n,
			})
		} else if m := fbExportClRe.FindStringSubmatch(line); m != nil {
			for _, spec := range splitParams(m[1]) {
				rep.Exports = append(rep.Exports, ExportInfo{Name: spec, Kind: "specifier", Line: n})
			}
		}
	}
}

// splitParams splits a comma list, trimming each entry and keeping `a as b`
// aliases' public side.
func splitParams(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		entry := strings.TrimSpace(part)
		if idx := strings.Index(entry, " as "); idx >= 0 {
			entry = strings.TrimSpace(entry[idx+4:])
		}
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
