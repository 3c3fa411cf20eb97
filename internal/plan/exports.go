package plan

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/jsmorph/internal/jserrors"
	"github.com/standardbeagle/jsmorph/internal/refindex"
	"github.com/standardbeagle/jsmorph/internal/types"
)

// usageKinds are the context kinds that keep an export alive when they
// appear in another file. Declarations and exports don't count: a second
// file declaring its own symbol of the same name is a different binding,
// and re-exporting something is not using it.
var usageKinds = map[types.ContextKind]bool{
	types.ContextImport:         true,
	types.ContextFunctionCall:   true,
	types.ContextNewInstance:    true,
	types.ContextJsxComponent:   true,
	types.ContextTypeReference:  true,
	types.ContextPropertyAccess: true,
	types.ContextUnknown:        true,
}

// exportClauseRe picks apart an `export { ... }` line: optional TS `type`
// keyword, the specifier list, an optional re-export source.
var exportClauseRe = regexp.MustCompile(`export\s+(?:type\s+)?\{([^}]*)\}`)

// exportPrefixRe matches the export wrapper on a declaration line.
var exportPrefixRe = regexp.MustCompile(`^(\s*)(export\s+(?:default\s+)?)`)

// RemoveUnusedExports plans stripping the export wrapper from every export
// with no reference in any other file. Declarations keep their code and
// lose only the `export` keyword; specifier-only exports are removed from
// their clause, and a clause left empty is deleted whole. Files matching
// excludePatterns keep all their exports (entry points, published APIs).
func RemoveUnusedExports(ix *refindex.Index, excludePatterns []string) (*Plan, error) {
	p := newPlan("remove_unused_exports")

	used := usedNames(ix)

	for i := range ix.Files {
		fr := &ix.Files[i]
		fc := fr.Classification
		if fc == nil || excluded(ix.Root, fr.Path, excludePatterns) {
			continue
		}

		// Specifier removals are planned per clause line so a clause losing
		// several names still yields a single consistent edit.
		clauseUnused := make(map[int][]types.Occurrence)

		for _, occ := range fc.Occurrences {
			switch {
			case occ.Kind == types.ContextExport:
				if isUsedElsewhere(used, occ.Symbol, fr.Path) {
					continue
				}
				clauseUnused[occ.Line] = append(clauseUnused[occ.Line], occ)

			case occ.Kind == types.ContextDeclaration && occ.Exported:
				if isUsedElsewhere(used, occ.Symbol, fr.Path) {
					continue
				}
				p.Unused = append(p.Unused, UnusedExport{
					Path: fr.Path, Name: occ.Symbol, Line: occ.Line,
					Kind: declKindName(occ),
				})
				if e, ok := exportPrefixEdit(fr.Source, occ); ok {
					p.addEdit(fr.Path, fr.Snapshot, e, "export")
				}
			}
		}

		lines := make([]int, 0, len(clauseUnused))
		for line := range clauseUnused {
			lines = append(lines, line)
		}
		sort.Ints(lines)
		for _, line := range lines {
			occs := clauseUnused[line]
			for _, occ := range occs {
				p.Unused = append(p.Unused, UnusedExport{
					Path: fr.Path, Name: occ.Symbol, Line: occ.Line,
					Kind: "export_specifier",
				})
			}
			if e, ok := clauseEdit(fr.Source, occs); ok {
				p.addEdit(fr.Path, fr.Snapshot, e, "export")
			}
		}
	}

	sort.Slice(p.Unused, func(a, b int) bool {
		if p.Unused[a].Path != p.Unused[b].Path {
			return p.Unused[a].Path < p.Unused[b].Path
		}
		if p.Unused[a].Line != p.Unused[b].Line {
			return p.Unused[a].Line < p.Unused[b].Line
		}
		return p.Unused[a].Name < p.Unused[b].Name
	})

	if err := p.normalize(); err != nil {
		return nil, jserrors.New(jserrors.ErrorTypeInternal, "remove_unused_exports", err)
	}
	return p, nil
}

// usedNames maps symbol -> set of files that reference it in a usage
// position.
func usedNames(ix *refindex.Index) map[string]map[string]bool {
	used := make(map[string]map[string]bool)
	for i := range ix.Files {
		fr := &ix.Files[i]
		if fr.Classification == nil {
			continue
		}
		for _, occ := range fr.Classification.Occurrences {
			if !usageKinds[occ.Kind] {
				continue
			}
			files := used[occ.Symbol]
			if files == nil {
				files = make(map[string]bool)
				used[occ.Symbol] = files
			}
			files[fr.Path] = true
		}
	}
	return used
}

func isUsedElsewhere(used map[string]map[string]bool, name, selfPath string) bool {
	for path := range used[name] {
		if path != selfPath {
			return true
		}
	}
	return false
}

// excluded matches a file against exclusion globs by project-relative path
// and by base name, so both "src/index.ts" and "index.ts" protect a barrel.
func excluded(root, path string, patterns []string) bool {
	rel := path
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pat, base); err == nil && ok {
			return true
		}
	}
	return false
}

// exportPrefixEdit removes the `export ` (or `export default `) wrapper
// from the declaration line containing occ, leaving the declaration itself.
func exportPrefixEdit(src []byte, occ types.Occurrence) (Edit, bool) {
	start, end := lineBounds(src, occ.StartByte)
	line := string(src[start:end])
	m := exportPrefixRe.FindStringSubmatchIndex(line)
	if m == nil {
		return Edit{}, false
	}
	// Groups: 1 = indent, 2 = export wrapper.
	return Edit{Start: start + m[4], End: start + m[5], Replacement: ""}, true
}

// clauseEdit rewrites one `export { ... }` line given the unused
// occurrences on it. Every surviving specifier is kept verbatim; when none
// survive the whole line goes.
func clauseEdit(src []byte, unused []types.Occurrence) (Edit, bool) {
	start, end := lineBounds(src, unused[0].StartByte)
	line := string(src[start:end])

	m := exportClauseRe.FindStringSubmatchIndex(line)
	if m == nil {
		return Edit{}, false
	}
	innerStart, innerEnd := m[2], m[3]

	gone := make(map[string]bool, len(unused))
	for _, occ := range unused {
		gone[occ.Symbol] = true
	}

	var kept []string
	for _, seg := range strings.Split(line[innerStart:innerEnd], ",") {
		spec := strings.TrimSpace(seg)
		if spec == "" {
			continue
		}
		if specifierRemoved(spec, gone) {
			continue
		}
		kept = append(kept, spec)
	}

	if len(kept) == 0 {
		return Edit{Start: start, End: end, Replacement: ""}, true
	}
	return Edit{
		Start:       start + innerStart,
		End:         start + innerEnd,
		Replacement: " " + strings.Join(kept, ", ") + " ",
	}, true
}

// specifierRemoved drops a specifier only when every name in it is unused,
// so `foo as bar` survives as long as either side still has references.
func specifierRemoved(spec string, gone map[string]bool) bool {
	for _, word := range strings.Fields(strings.ReplaceAll(spec, " as ", " ")) {
		if word == "as" || word == "type" {
			continue
		}
		if !gone[word] {
			return false
		}
	}
	return true
}

func declKindName(occ types.Occurrence) string {
	if occ.NodeKind != "" {
		return occ.NodeKind
	}
	return "declaration"
}
