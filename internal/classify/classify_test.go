package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/jsmorph/internal/grammar"
	"github.com/standardbeagle/jsmorph/internal/types"
)

func classifyString(t *testing.T, path, src string) *FileClassification {
	t.Helper()
	adapter, err := grammar.NewAdapter()
	require.NoError(t, err)
	t.Cleanup(adapter.Close)
	return Source(adapter, []byte(src), path, "")
}

func kindsOf(occs []types.Occurrence) []types.ContextKind {
	out := make([]types.ContextKind, len(occs))
	for i, occ := range occs {
		out[i] = occ.Kind
	}
	return out
}

func TestFunctionDeclarationAndCall(t *testing.T) {
	fc := classifyString(t, "api.js", `
function getUserData(id) {
  return fetch('/users/' + id);
}
const result = getUserData(42);
`)
	require.Equal(t, StrategyStructured, fc.Strategy)

	occs := fc.ForSymbol("getUserData")
	require.Len(t, occs, 2)
	assert.Equal(t, types.ContextDeclaration, occs[0].Kind)
	assert.False(t, occs[0].Exported)
	assert.Equal(t, types.ContextFunctionCall, occs[1].Kind)
	assert.Equal(t, 2, occs[0].Line)
	assert.Equal(t, 5, occs[1].Line)
}

func TestExportedDeclarationCarriesFlag(t *testing.T) {
	fc := classifyString(t, "api.ts", `
export function fetchUsers(): Promise<void> { return Promise.resolve(); }
export const LIMIT = 10;
`)
	occs := fc.ForSymbol("fetchUsers")
	require.Len(t, occs, 1)
	assert.Equal(t, types.ContextDeclaration, occs[0].Kind)
	assert.True(t, occs[0].Exported)

	limit := fc.ForSymbol("LIMIT")
	require.Len(t, limit, 1)
	assert.True(t, limit[0].Exported)
}

func TestImportAndExportSpecifiers(t *testing.T) {
	fc := classifyString(t, "index.js", `
import { getUserData, saveUser } from './api';
import Default from './widget';
import * as utils from './utils';
export { getUserData };
`)
	imp := fc.ForSymbol("getUserData")
	require.Len(t, imp, 2)
	assert.Equal(t, types.ContextImport, imp[0].Kind)
	assert.Equal(t, types.ContextExport, imp[1].Kind)

	def := fc.ForSymbol("Default")
	require.Len(t, def, 1)
	assert.Equal(t, types.ContextImport, def[0].Kind)

	ns := fc.ForSymbol("utils")
	require.Len(t, ns, 1)
	assert.Equal(t, types.ContextImport, ns[0].Kind)
}

func TestJsxComponentVsIntrinsic(t *testing.T) {
	fc := classifyString(t, "App.jsx", `
function App() {
  return <div><UserCard name="x" /></div>;
}
`)
	card := fc.ForSymbol("UserCard")
	require.Len(t, card, 1)
	assert.Equal(t, types.ContextJsxComponent, card[0].Kind)

	for _, occ := range fc.ForSymbol("div") {
		assert.NotEqual(t, types.ContextJsxComponent, occ.Kind,
			"lowercase tags are intrinsic elements, not components")
	}
}

func TestNewInstance(t *testing.T) {
	fc := classifyString(t, "cache.js", `
class Cache {}
const c = new Cache();
`)
	occs := fc.ForSymbol("Cache")
	require.Len(t, occs, 2)
	assert.Equal(t, types.ContextDeclaration, occs[0].Kind)
	assert.Equal(t, types.ContextNewInstance, occs[1].Kind)
}

func TestMethodCallIsPropertyAccess(t *testing.T) {
	fc := classifyString(t, "svc.js", `
const api = buildApi();
api.getUserData(1);
`)
	occs := fc.ForSymbol("getUserData")
	require.Len(t, occs, 1)
	assert.Equal(t, types.ContextPropertyAccess, occs[0].Kind,
		"member position wins over call position for obj.method()")
}

func TestTypeReference(t *testing.T) {
	fc := classifyString(t, "model.ts", `
interface User { id: number }
function load(id: number): User { return { id }; }
`)
	occs := fc.ForSymbol("User")
	require.Len(t, occs, 2)
	assert.Equal(t, types.ContextDeclaration, occs[0].Kind)
	assert.Equal(t, types.ContextTypeReference, occs[1].Kind)
}

func TestParametersAreDeclarations(t *testing.T) {
	fc := classifyString(t, "fn.js", `function add(a, b) { return a + b; }`)

	a := fc.ForSymbol("a")
	require.NotEmpty(t, a)
	assert.Equal(t, types.ContextDeclaration, a[0].Kind)
}

func TestScopeTreeBindsFunctionInEnclosingScope(t *testing.T) {
	fc := classifyString(t, "scoped.js", `
function outer() {
  const data = 1;
  return data;
}
const data = 2;
`)
	require.NotNil(t, fc.Scopes)

	occs := fc.ForSymbol("data")
	require.Len(t, occs, 3)

	// Inner declaration and use live in the function scope; the module
	// declaration stays at root.
	assert.NotEqual(t, types.ScopeModuleRoot, occs[0].Scope)
	assert.Equal(t, occs[0].Scope, occs[1].Scope)
	assert.Equal(t, types.ScopeModuleRoot, occs[2].Scope)

	// The function name itself binds at module level.
	outer := fc.ForSymbol("outer")
	require.Len(t, outer, 1)
	assert.Equal(t, types.ScopeModuleRoot, outer[0].Scope)
	sid, _, ok := fc.Scopes.Resolve("outer", types.ScopeModuleRoot)
	require.True(t, ok)
	assert.Equal(t, types.ScopeModuleRoot, sid)
}

func TestArrowFunctionScopeNamedAfterDeclarator(t *testing.T) {
	fc := classifyString(t, "arrow.js", `
const handler = (event) => {
  const payload = event.data;
  return payload;
}
`)
	require.NotNil(t, fc.Scopes)
	matches := fc.Scopes.FindSelector("function:handler")
	assert.Len(t, matches, 1)
}

func TestClassificationIsDeterministic(t *testing.T) {
	src := `
import { helper } from './helper';
export function process(items) {
  return items.map(helper);
}
const x = new Map();
`
	first := classifyString(t, "det.js", src)
	second := classifyString(t, "det.js", src)
	assert.Equal(t, first.Occurrences, second.Occurrences,
		"same bytes must classify identically")
}

func TestSymbolFilterPrefilter(t *testing.T) {
	adapter, err := grammar.NewAdapter()
	require.NoError(t, err)
	t.Cleanup(adapter.Close)

	fc := Source(adapter, []byte("const other = 1;"), "x.js", "missing")
	assert.Empty(t, fc.Occurrences, "file without the symbol text yields nothing")
}

func TestBrokenFileFallsBack(t *testing.T) {
	fc := classifyString(t, "broken.js", "function foo( {\n  return 1;\n}\n")
	assert.Equal(t, StrategyFallback, fc.Strategy)

	occs := fc.ForSymbol("foo")
	require.NotEmpty(t, occs, "fallback still finds the declaration")
	assert.Equal(t, types.ContextDeclaration, occs[0].Kind)
}

func TestCountsByKind(t *testing.T) {
	fc := classifyString(t, "counts.js", `
function f() {}
f();
f();
`)
	counts := fc.CountsByKind()
	assert.Equal(t, 1, counts["declaration"])
	assert.Equal(t, 2, counts["function_call"])
}
