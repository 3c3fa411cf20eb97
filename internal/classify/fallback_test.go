package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/jsmorph/internal/types"
)

func TestFallbackSymbolMode(t *testing.T) {
	src := `// user helpers
export function getUserData(id) {
const cached = getUserData(1);
import { getUserData } from './api';
export { getUserData };
<UserCard />
`
	fc := Fallback([]byte(src), "broken.js", "getUserData")
	require.Equal(t, StrategyFallback, fc.Strategy)

	occs := fc.ForSymbol("getUserData")
	require.Len(t, occs, 4)
	assert.Equal(t, types.ContextDeclaration, occs[0].Kind)
	assert.Equal(t, types.ContextFunctionCall, occs[1].Kind)
	assert.Equal(t, types.ContextImport, occs[2].Kind)
	assert.Equal(t, types.ContextExport, occs[3].Kind)

	for _, occ := range occs {
		assert.Equal(t, types.ScopeModuleRoot, occ.Scope,
			"fallback occurrences all live at module scope")
	}
}

func TestFallbackSkipsComments(t *testing.T) {
	src := `// getUserData is important
/* getUserData docs */
 * getUserData continued
getUserData();
`
	fc := Fallback([]byte(src), "c.js", "getUserData")
	occs := fc.ForSymbol("getUserData")
	require.Len(t, occs, 1)
	assert.Equal(t, 4, occs[0].Line)
}

func TestFallbackJsxComponent(t *testing.T) {
	fc := Fallback([]byte("<UserCard name={x} />\n"), "App.jsx", "UserCard")
	occs := fc.ForSymbol("UserCard")
	require.Len(t, occs, 1)
	assert.Equal(t, types.ContextJsxComponent, occs[0].Kind)
}

func TestFallbackNewInstance(t *testing.T) {
	fc := Fallback([]byte("const c = new Cache(size);\n"), "c.js", "Cache")
	occs := fc.ForSymbol("Cache")
	require.Len(t, occs, 1)
	assert.Equal(t, types.ContextNewInstance, occs[0].Kind)
}

func TestFallbackUnmatchedMentionIsUnknown(t *testing.T) {
	fc := Fallback([]byte("doSomething(helper, 2);\n"), "u.js", "helper")
	occs := fc.ForSymbol("helper")
	require.Len(t, occs, 1)
	assert.Equal(t, types.ContextUnknown, occs[0].Kind)
}

func TestFallbackWordBoundaries(t *testing.T) {
	fc := Fallback([]byte("const getUserDataCached = 1;\n"), "b.js", "getUserData")
	assert.Empty(t, fc.ForSymbol("getUserData"),
		"substring inside a longer identifier is not a mention")
}

func TestFallbackGenericMode(t *testing.T) {
	src := `export function alpha() {
class Beta {
import { gamma, delta as d } from './mod';
`
	fc := Fallback([]byte(src), "g.js", "")

	alpha := fc.ForSymbol("alpha")
	require.NotEmpty(t, alpha)
	assert.Equal(t, types.ContextDeclaration, alpha[0].Kind)

	beta := fc.ForSymbol("Beta")
	require.NotEmpty(t, beta)
	assert.Equal(t, types.ContextDeclaration, beta[0].Kind)

	gamma := fc.ForSymbol("gamma")
	require.NotEmpty(t, gamma)
	assert.Equal(t, types.ContextImport, gamma[0].Kind)
}

func TestFallbackGenericModeUsages(t *testing.T) {
	src := `getUserData(1);
const c = new Cache(size);
<UserCard name={x} />
config.timeout
`
	fc := Fallback([]byte(src), "u.js", "")

	call := fc.ForSymbol("getUserData")
	require.NotEmpty(t, call, "a call in a broken file is still a reference")
	assert.Equal(t, types.ContextFunctionCall, call[0].Kind)

	inst := fc.ForSymbol("Cache")
	require.NotEmpty(t, inst)
	assert.Equal(t, types.ContextNewInstance, inst[0].Kind)

	jsx := fc.ForSymbol("UserCard")
	require.NotEmpty(t, jsx)
	assert.Equal(t, types.ContextJsxComponent, jsx[0].Kind)

	prop := fc.ForSymbol("timeout")
	require.NotEmpty(t, prop)
	assert.Equal(t, types.ContextPropertyAccess, prop[0].Kind)
}

func TestFallbackGenericModeKeywordsAreNotCalls(t *testing.T) {
	src := "if (ready) {\nreturn (total);\n"
	fc := Fallback([]byte(src), "k.js", "")
	assert.Empty(t, fc.ForSymbol("if"))
	assert.Empty(t, fc.ForSymbol("return"))
}

func TestValidIdentifier(t *testing.T) {
	assert.True(t, ValidIdentifier("getUserData"))
	assert.True(t, ValidIdentifier("_private"))
	assert.True(t, ValidIdentifier("$elem"))
	assert.True(t, ValidIdentifier("x2"))
	assert.False(t, ValidIdentifier("2x"))
	assert.False(t, ValidIdentifier("has-dash"))
	assert.False(t, ValidIdentifier(""))
	assert.False(t, ValidIdentifier("a b"))
}
