package plan

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddParameterAppendsWithDefault(t *testing.T) {
	src := "function processData(items, limit) {\n  return items.slice(0, limit);\n}\nprocessData(rows, 10);\n"
	dir := writeFiles(t, map[string]string{"p.js": src})
	ix := buildIndex(t, dir, "processData")

	p, err := AddParameter(ix, "processData",
		Param{Name: "options", Default: "{}"}, -1, true)
	require.NoError(t, err)

	out := applyEdits(src, editsFor(p, filepath.Join(dir, "p.js")))
	assert.Contains(t, out, "function processData(items, limit, options = {})")
	assert.Contains(t, out, "processData(rows, 10, {})")
}

func TestAddParameterPrepend(t *testing.T) {
	src := "function log(msg) {}\nlog('hi');\n"
	dir := writeFiles(t, map[string]string{"l.js": src})
	ix := buildIndex(t, dir, "log")

	p, err := AddParameter(ix, "log", Param{Name: "level", Default: "'info'"}, 0, true)
	require.NoError(t, err)

	out := applyEdits(src, editsFor(p, filepath.Join(dir, "l.js")))
	assert.Contains(t, out, "function log(level = 'info', msg)")
	assert.Contains(t, out, "log('info', 'hi')")
}

func TestAddParameterMiddlePosition(t *testing.T) {
	src := "function join(a, c) {}\n"
	dir := writeFiles(t, map[string]string{"j.js": src})
	ix := buildIndex(t, dir, "join")

	p, err := AddParameter(ix, "join", Param{Name: "b"}, 1, false)
	require.NoError(t, err)

	out := applyEdits(src, editsFor(p, filepath.Join(dir, "j.js")))
	assert.Contains(t, out, "function join(a, b, c)")
}

func TestAddParameterEmptyList(t *testing.T) {
	src := "function init() {}\n"
	dir := writeFiles(t, map[string]string{"i.js": src})
	ix := buildIndex(t, dir, "init")

	p, err := AddParameter(ix, "init", Param{Name: "config"}, -1, false)
	require.NoError(t, err)

	out := applyEdits(src, editsFor(p, filepath.Join(dir, "i.js")))
	assert.Contains(t, out, "function init(config)")
}

func TestAddParameterTypeScriptAnnotation(t *testing.T) {
	src := "export function save(user: User) {\n  return db.put(user);\n}\n"
	dir := writeFiles(t, map[string]string{"s.ts": src})
	ix := buildIndex(t, dir, "save")

	p, err := AddParameter(ix, "save",
		Param{Name: "retries", Type: "number", Default: "3"}, -1, false)
	require.NoError(t, err)

	out := applyEdits(src, editsFor(p, filepath.Join(dir, "s.ts")))
	assert.Contains(t, out, "function save(user: User, retries: number = 3)")
}

func TestAddParameterTypeIgnoredForJavaScript(t *testing.T) {
	src := "function save(user) {}\n"
	dir := writeFiles(t, map[string]string{"s.js": src})
	ix := buildIndex(t, dir, "save")

	p, err := AddParameter(ix, "save",
		Param{Name: "retries", Type: "number", Default: "3"}, -1, false)
	require.NoError(t, err)

	out := applyEdits(src, editsFor(p, filepath.Join(dir, "s.js")))
	assert.Contains(t, out, "function save(user, retries = 3)")
	assert.NotContains(t, out, ": number")
}

func TestAddParameterArrowFunction(t *testing.T) {
	src := "const handler = async (event) => {\n  return event;\n};\nhandler(e);\n"
	dir := writeFiles(t, map[string]string{"h.js": src})
	ix := buildIndex(t, dir, "handler")

	p, err := AddParameter(ix, "handler", Param{Name: "ctx", Default: "null"}, -1, true)
	require.NoError(t, err)

	out := applyEdits(src, editsFor(p, filepath.Join(dir, "h.js")))
	assert.Contains(t, out, "async (event, ctx = null) =>")
	assert.Contains(t, out, "handler(e, null)")
}

func TestAddParameterCallsWithoutDefaultNeedManualUpdate(t *testing.T) {
	src := "function f(a) {}\nf(1);\nf(2);\n"
	dir := writeFiles(t, map[string]string{"m.js": src})
	ix := buildIndex(t, dir, "f")

	p, err := AddParameter(ix, "f", Param{Name: "b"}, -1, true)
	require.NoError(t, err)

	assert.True(t, hasDiag(p, DiagNeedsManualUpdate))
	manual := 0
	for _, d := range p.Diagnostics {
		if d.Kind == DiagNeedsManualUpdate {
			manual++
		}
	}
	assert.Equal(t, 2, manual, "one diagnostic per call site")

	out := applyEdits(src, editsFor(p, filepath.Join(dir, "m.js")))
	assert.Contains(t, out, "function f(a, b)")
	assert.Contains(t, out, "f(1);", "call sites stay untouched without a default")
}

func TestAddParameterCallsUntouchedWithoutFlag(t *testing.T) {
	src := "function f(a) {}\nf(1);\n"
	dir := writeFiles(t, map[string]string{"u.js": src})
	ix := buildIndex(t, dir, "f")

	p, err := AddParameter(ix, "f", Param{Name: "b", Default: "0"}, -1, false)
	require.NoError(t, err)

	out := applyEdits(src, editsFor(p, filepath.Join(dir, "u.js")))
	assert.Contains(t, out, "function f(a, b = 0)")
	assert.Contains(t, out, "f(1);")
}

func TestAddParameterNestedCallArguments(t *testing.T) {
	src := "function f(a) {}\nf(g(1, 2), h([3, 4]));\n"
	dir := writeFiles(t, map[string]string{"n.js": src})
	ix := buildIndex(t, dir, "f")

	p, err := AddParameter(ix, "f", Param{Name: "z", Default: "0"}, -1, true)
	require.NoError(t, err)

	out := applyEdits(src, editsFor(p, filepath.Join(dir, "n.js")))
	assert.Contains(t, out, "f(g(1, 2), h([3, 4]), 0);",
		"nested commas must not split the argument list")
}

func TestAddParameterStringArgumentsWithParens(t *testing.T) {
	src := "function f(a) {}\nf('call )( me');\n"
	dir := writeFiles(t, map[string]string{"q.js": src})
	ix := buildIndex(t, dir, "f")

	p, err := AddParameter(ix, "f", Param{Name: "z", Default: "0"}, -1, true)
	require.NoError(t, err)

	out := applyEdits(src, editsFor(p, filepath.Join(dir, "q.js")))
	assert.Contains(t, out, "f('call )( me', 0);")
}

func TestAddParameterInvalidName(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": "function f() {}\n"})
	ix := buildIndex(t, dir, "f")

	_, err := AddParameter(ix, "f", Param{Name: "bad name"}, -1, false)
	assert.Error(t, err)
}

func TestAddParameterCallsOnlyIsNotFound(t *testing.T) {
	src := "processData(1);\nprocessData(2);\n"
	dir := writeFiles(t, map[string]string{"caller.js": src})
	ix := buildIndex(t, dir, "processData")

	p, err := AddParameter(ix, "processData",
		Param{Name: "options", Default: "{}"}, -1, true)
	require.NoError(t, err)

	assert.Zero(t, p.TotalEdits(),
		"call sites stay untouched when no declaration exists")
	assert.True(t, hasDiag(p, DiagNotFound))
	assert.Equal(t, src, applyEdits(src, editsFor(p, filepath.Join(dir, "caller.js"))))
}

func TestAddParameterValueBindingIsNotADeclaration(t *testing.T) {
	src := "const processData = 5;\nprocessData + 1;\n"
	dir := writeFiles(t, map[string]string{"v.js": src})
	ix := buildIndex(t, dir, "processData")

	p, err := AddParameter(ix, "processData",
		Param{Name: "options", Default: "{}"}, -1, true)
	require.NoError(t, err)

	assert.Zero(t, p.TotalEdits())
	assert.False(t, hasDiag(p, DiagNeedsManualUpdate),
		"a plain value binding is not a signature to complain about")
	assert.True(t, hasDiag(p, DiagNotFound))
}

func TestAddParameterIgnoresSameNameValueBinding(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lib.js":  "function processData(items) {}\n",
		"data.js": "const processData = 5;\n",
	})
	ix := buildIndex(t, dir, "processData")

	p, err := AddParameter(ix, "processData",
		Param{Name: "options", Default: "{}"}, -1, false)
	require.NoError(t, err)

	assert.Empty(t, p.Diagnostics)
	out := applyEdits("function processData(items) {}\n",
		editsFor(p, filepath.Join(dir, "lib.js")))
	assert.Contains(t, out, "function processData(items, options = {})")
	assert.Empty(t, editsFor(p, filepath.Join(dir, "data.js")))
}

func TestAddParameterNotFound(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": "function realName() {}\n"})
	ix := buildIndex(t, dir, "realNam")

	p, err := AddParameter(ix, "realNam", Param{Name: "x"}, -1, false)
	require.NoError(t, err)
	assert.Zero(t, p.TotalEdits())
	assert.True(t, hasDiag(p, DiagNotFound))
}
