package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/jsmorph/internal/types"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	adapter, err := NewAdapter()
	require.NoError(t, err)
	t.Cleanup(adapter.Close)
	return adapter
}

func TestParseValidJavaScript(t *testing.T) {
	adapter := newTestAdapter(t)

	tree, perr := adapter.Parse([]byte("function greet(name) { return 'hi ' + name; }"), types.FileKindJS)
	require.Nil(t, perr)
	defer tree.Close()

	assert.Equal(t, "program", tree.Root().Kind())
	assert.Equal(t, types.FileKindJS, tree.Kind())
}

func TestParseValidTypeScript(t *testing.T) {
	adapter := newTestAdapter(t)

	src := []byte("interface User { id: number }\nconst u: User = { id: 1 };\n")
	tree, perr := adapter.Parse(src, types.FileKindTS)
	require.Nil(t, perr)
	defer tree.Close()

	assert.False(t, tree.Root().HasError())
}

func TestParseTSXElement(t *testing.T) {
	adapter := newTestAdapter(t)

	src := []byte("const App = () => <Button label=\"ok\" />;\n")
	tree, perr := adapter.Parse(src, types.FileKindTSX)
	require.Nil(t, perr)
	defer tree.Close()

	assert.False(t, tree.Root().HasError())
}

func TestParseBrokenSourceReportsPosition(t *testing.T) {
	adapter := newTestAdapter(t)

	src := []byte("function broken( {\n  return 1;\n}\n")
	tree, perr := adapter.Parse(src, types.FileKindJS)
	require.NotNil(t, perr)
	assert.Nil(t, tree)
	assert.Equal(t, types.FileKindJS, perr.Kind)
	assert.Greater(t, perr.Line, 0, "error should carry a line hint")
	assert.Contains(t, perr.Error(), "parse error")
}

func TestParseUnsupportedKind(t *testing.T) {
	adapter := newTestAdapter(t)

	_, perr := adapter.Parse([]byte("x"), types.FileKindUnknown)
	require.NotNil(t, perr)
	assert.Contains(t, perr.Msg, "unsupported")
}

func TestTypeScriptIsNotParsedAsJavaScript(t *testing.T) {
	adapter := newTestAdapter(t)

	// Interfaces are a TS-only construct; the JS grammar rejects them.
	src := []byte("interface User {\n  id: number;\n}\n")
	_, perr := adapter.Parse(src, types.FileKindJS)
	assert.NotNil(t, perr)
}
