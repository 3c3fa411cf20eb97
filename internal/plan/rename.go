package plan

import (
	"fmt"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/jsmorph/internal/classify"
	"github.com/standardbeagle/jsmorph/internal/jserrors"
	"github.com/standardbeagle/jsmorph/internal/refindex"
	"github.com/standardbeagle/jsmorph/internal/types"
)

// renameKinds are the context kinds a rename always rewrites. Property
// accesses and unknowns are rewritten only when scope resolution ties them
// to a declaration of the same name in the same file; a bare `obj.getUserData`
// might belong to an unrelated object.
var renameKinds = map[types.ContextKind]bool{
	types.ContextDeclaration:   true,
	types.ContextFunctionCall:  true,
	types.ContextImport:        true,
	types.ContextExport:        true,
	types.ContextJsxComponent:  true,
	types.ContextNewInstance:   true,
	types.ContextTypeReference: true,
}

// suggestionFloor is the minimum Jaro-Winkler similarity for a nearest-name
// suggestion to be worth reporting.
const suggestionFloor = 0.85

// Rename plans replacing every rewritable occurrence of oldName with
// newName. When scopeSelector is non-empty only occurrences whose resolved
// declaration sits inside the selected scope are touched; an ambiguous
// selector yields candidate diagnostics and no edits.
func Rename(ix *refindex.Index, oldName, newName, scopeSelector string) (*Plan, error) {
	if !classify.ValidIdentifier(newName) {
		return nil, jserrors.New(jserrors.ErrorTypeInvalidInput, "rename_symbol",
			fmt.Errorf("%q is not a valid identifier", newName))
	}
	if oldName == newName {
		return nil, jserrors.New(jserrors.ErrorTypeInvalidInput, "rename_symbol",
			fmt.Errorf("old and new name are both %q", oldName))
	}

	p := newPlan("rename_symbol")

	if scopeSelector != "" {
		if ambiguous := resolveScopeTargets(ix, oldName, scopeSelector, p); ambiguous {
			return p, nil
		}
	}

	jsxWarned := false
	for i := range ix.Files {
		fr := &ix.Files[i]
		fc := fr.Classification
		if fc == nil {
			continue
		}

		fileEdits := 0
		for _, occ := range fc.ForSymbol(oldName) {
			if !renameable(fc, occ, scopeSelector) {
				continue
			}
			if occ.Kind == types.ContextJsxComponent && !jsxWarned && !classify.IsComponentName(newName) {
				p.diag(DiagJsxCase, fr.Path, occ.Line,
					"renaming component %s to lowercase %s: JSX treats lowercase tags as HTML elements",
					oldName, newName)
				jsxWarned = true
			}
			p.addEdit(fr.Path, fr.Snapshot, Edit{
				Start:       occ.StartByte,
				End:         occ.EndByte,
				Replacement: newName,
			}, occ.Kind.String())
			fileEdits++
		}

		if fileEdits > 0 && fc.Scopes != nil && fc.Scopes.HasBinding(newName) {
			p.diag(DiagNameCollision, fr.Path, 0,
				"%s already binds a symbol named %q; review for shadowing after the rename",
				fr.Path, newName)
		}
	}

	if p.TotalEdits() == 0 && len(p.Diagnostics) == 0 {
		msg := "no occurrences of " + oldName + " found"
		if hint := NearestName(oldName, ix.SymbolNames()); hint != "" {
			msg += "; did you mean " + hint + "?"
		}
		p.diag(DiagNotFound, "", 0, "%s", msg)
	}

	if err := p.normalize(); err != nil {
		return nil, jserrors.New(jserrors.ErrorTypeInternal, "rename_symbol", err)
	}
	return p, nil
}

// renameable applies the kind table plus, for scoped renames, the
// containment check against the selected scope.
func renameable(fc *classify.FileClassification, occ types.Occurrence, scopeSelector string) bool {
	locallyBound := false
	var declScope types.ScopeID
	if fc.Scopes != nil {
		if sid, declIdx, ok := fc.Scopes.Resolve(occ.Symbol, occ.Scope); ok {
			decl := fc.Occurrences[declIdx]
			if decl.Symbol == occ.Symbol {
				locallyBound = true
				declScope = sid
			}
		}
	}

	switch {
	case renameKinds[occ.Kind]:
		// fall through to the scope check below
	case occ.Kind == types.ContextPropertyAccess || occ.Kind == types.ContextUnknown:
		if !locallyBound {
			return false
		}
	default:
		return false
	}

	if scopeSelector == "" {
		return true
	}
	if !locallyBound {
		return false
	}
	targets := fc.Scopes.FindSelector(scopeSelector)
	for _, t := range targets {
		if fc.Scopes.Within(declScope, t) {
			return true
		}
	}
	return false
}

// resolveScopeTargets checks a scope selector across the whole index. More
// than one matching scope makes the rename ambiguous: every candidate is
// reported so the caller can narrow the target, and true is returned to
// stop planning. Zero matches fall through to the not-found path.
func resolveScopeTargets(ix *refindex.Index, symbol, selector string, p *Plan) bool {
	type candidate struct {
		path string
		id   types.ScopeID
	}
	var found []candidate
	for i := range ix.Files {
		fc := ix.Files[i].Classification
		if fc == nil || fc.Scopes == nil {
			continue
		}
		for _, id := range fc.Scopes.FindSelector(selector) {
			// Only scopes that actually see the symbol count as candidates.
			if _, _, ok := fc.Scopes.Resolve(symbol, id); ok {
				found = append(found, candidate{path: ix.Files[i].Path, id: id})
			}
		}
	}
	if len(found) <= 1 {
		return false
	}
	for _, c := range found {
		fc, _ := ix.File(c.path)
		p.diag(DiagAmbiguousTarget, c.path, 0,
			"scope %q matches %s in %s; qualify the selector or narrow the path",
			selector, fc.Classification.Scopes.Path(c.id), c.path)
	}
	return true
}

// NearestName returns the closest known symbol to name, or "" when nothing
// is similar enough to suggest.
func NearestName(name string, known []string) string {
	best, bestScore := "", float32(0)
	for _, cand := range known {
		if cand == name {
			continue
		}
		score, err := edlib.StringsSimilarity(name, cand, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = cand, score
		}
	}
	if bestScore < suggestionFloor {
		return ""
	}
	return best
}
