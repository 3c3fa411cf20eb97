package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileKindForPath(t *testing.T) {
	tests := []struct {
		path string
		want FileKind
	}{
		{"src/app.js", FileKindJS},
		{"src/app.mjs", FileKindJS},
		{"src/app.cjs", FileKindJS},
		{"src/App.jsx", FileKindJSX},
		{"src/util.ts", FileKindTS},
		{"src/App.tsx", FileKindTSX},
		{"src/styles.css", FileKindUnknown},
		{"Makefile", FileKindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileKindForPath(tt.path), "path %s", tt.path)
	}
}

func TestIsSupportedPath(t *testing.T) {
	assert.True(t, IsSupportedPath("a/b/c.tsx"))
	assert.False(t, IsSupportedPath("a/b/c.go"))
	assert.False(t, IsSupportedPath("noext"))
}

func TestContextKindRoundTrip(t *testing.T) {
	for _, kind := range AllContextKinds() {
		parsed, ok := ParseContextKind(kind.String())
		assert.True(t, ok, "kind %s should parse", kind)
		assert.Equal(t, kind, parsed)
	}

	_, ok := ParseContextKind("no_such_kind")
	assert.False(t, ok)
}

func TestContextKindNames(t *testing.T) {
	assert.Equal(t, "declaration", ContextDeclaration.String())
	assert.Equal(t, "function_call", ContextFunctionCall.String())
	assert.Equal(t, "jsx_component", ContextJsxComponent.String())
	assert.Equal(t, "unknown", ContextUnknown.String())
}
