// Package scope builds and queries per-file scope trees. Scopes are stored
// in an arena indexed by integer id rather than linked by pointers, so the
// tree can be read concurrently during classification and carries no
// ownership cycles. Scope trees never share nodes across files.
package scope

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/jsmorph/internal/types"
)

// Scope is one node in a file's scope tree. Bindings maps a symbol name to
// the index (into the file's occurrence list) of the occurrence that
// declares it in this scope.
type Scope struct {
	ID       types.ScopeID
	Kind     types.ScopeKind
	Parent   types.ScopeID
	Name     string
	Bindings map[string]int
}

// Tree is the arena of scopes for a single file. Index 0 is always the
// module root.
type Tree struct {
	scopes []Scope
}

// NewTree creates a scope tree containing only the module root.
func NewTree() *Tree {
	t := &Tree{scopes: make([]Scope, 0, 8)}
	t.scopes = append(t.scopes, Scope{
		ID:       types.ScopeModuleRoot,
		Kind:     types.ScopeKindModule,
		Parent:   types.ScopeNone,
		Bindings: make(map[string]int),
	})
	return t
}

// Enter appends a child scope under parent and returns its id.
func (t *Tree) Enter(kind types.ScopeKind, name string, parent types.ScopeID) types.ScopeID {
	id := types.ScopeID(len(t.scopes))
	t.scopes = append(t.scopes, Scope{
		ID:       id,
		Kind:     kind,
		Parent:   parent,
		Name:     name,
		Bindings: make(map[string]int),
	})
	return id
}

// Bind records that occurrence occIdx declares name in scope id. The first
// declaration in a scope wins; JS redeclarations keep the original binding.
func (t *Tree) Bind(id types.ScopeID, name string, occIdx int) {
	if !t.valid(id) {
		return
	}
	if _, exists := t.scopes[id].Bindings[name]; !exists {
		t.scopes[id].Bindings[name] = occIdx
	}
}

// Get returns the scope record for id.
func (t *Tree) Get(id types.ScopeID) (Scope, bool) {
	if !t.valid(id) {
		return Scope{}, false
	}
	return t.scopes[id], true
}

// Len returns the number of scopes in the tree.
func (t *Tree) Len() int {
	return len(t.scopes)
}

// Resolve walks from the given scope outward through parents until a binding
// for name is found; the nearest one wins (lexical scoping). The second
// return is false when no scope in the file binds the name, in which case
// the mention refers to a module-external or global name.
func (t *Tree) Resolve(name string, from types.ScopeID) (types.ScopeID, int, bool) {
	for id := from; t.valid(id); {
		if occIdx, ok := t.scopes[id].Bindings[name]; ok {
			return id, occIdx, true
		}
		id = t.scopes[id].Parent
	}
	return types.ScopeNone, 0, false
}

// HasBinding reports whether any scope in the file binds name.
func (t *Tree) HasBinding(name string) bool {
	for i := range t.scopes {
		if _, ok := t.scopes[i].Bindings[name]; ok {
			return true
		}
	}
	return false
}

// Within reports whether id is ancestor itself or nested anywhere inside it.
func (t *Tree) Within(id, ancestor types.ScopeID) bool {
	for cur := id; t.valid(cur); cur = t.scopes[cur].Parent {
		if cur == ancestor {
			return true
		}
		if cur == t.scopes[cur].Parent {
			break
		}
	}
	return false
}

// FindSelector resolves a scope selector of the form "function:<name>" or
// "class:<name>" to a scope id. A bare name matches either kind. Returns
// all matching scopes; more than one means the selector is ambiguous within
// this file.
func (t *Tree) FindSelector(selector string) []types.ScopeID {
	wantKind := types.ScopeKind(0xFF)
	name := selector
	if idx := strings.IndexByte(selector, ':'); idx >= 0 {
		switch selector[:idx] {
		case "function":
			wantKind = types.ScopeKindFunction
		case "class":
			wantKind = types.ScopeKindClass
		}
		name = selector[idx+1:]
	}

	var matches []types.ScopeID
	for i := range t.scopes {
		s := &t.scopes[i]
		if s.Name != name {
			continue
		}
		if wantKind != 0xFF && s.Kind != wantKind {
			continue
		}
		matches = append(matches, s.ID)
	}
	return matches
}

// Path renders the scope chain from the module root down to id, e.g.
// "module/processData/class:Cache". Used for display in reports.
func (t *Tree) Path(id types.ScopeID) string {
	if !t.valid(id) {
		return ""
	}
	var parts []string
	for cur := id; t.valid(cur); cur = t.scopes[cur].Parent {
		s := t.scopes[cur]
		switch s.Kind {
		case types.ScopeKindModule:
			parts = append(parts, "module")
		case types.ScopeKindClass:
			parts = append(parts, "class:"+s.Name)
		case types.ScopeKindBlock:
			parts = append(parts, "block")
		default:
			if s.Name != "" {
				parts = append(parts, s.Name)
			} else {
				parts = append(parts, fmt.Sprintf("anon#%d", s.ID))
			}
		}
	}
	// Reverse: collected leaf-first.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func (t *Tree) valid(id types.ScopeID) bool {
	return id >= 0 && int(id) < len(t.scopes)
}
