package apply

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/jsmorph/internal/plan"
	"github.com/standardbeagle/jsmorph/internal/refindex"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func planFor(path string, content string, edits ...plan.Edit) *plan.Plan {
	return &plan.Plan{
		Operation: "rename_symbol",
		Files: []plan.FileEdits{{
			Path:     path,
			Snapshot: refindex.SnapshotOf([]byte(content)),
			Edits:    edits,
		}},
	}
}

func TestRewrite(t *testing.T) {
	src := []byte("const alpha = alpha + 1;")
	edits := []plan.Edit{
		{Start: 6, End: 11, Replacement: "beta"},
		{Start: 14, End: 19, Replacement: "beta"},
	}
	assert.Equal(t, "const beta = beta + 1;", string(Rewrite(src, edits)))
}

func TestRewriteInsertion(t *testing.T) {
	src := []byte("log(msg)")
	out := Rewrite(src, []plan.Edit{{Start: 7, End: 7, Replacement: ", level"}})
	assert.Equal(t, "log(msg, level)", string(out))
}

func TestRewriteIgnoresOutOfRangeEdit(t *testing.T) {
	src := []byte("abc")
	out := Rewrite(src, []plan.Edit{{Start: 1, End: 10, Replacement: "x"}})
	assert.Equal(t, "abc", string(out))
}

func TestDryRunDoesNotWrite(t *testing.T) {
	content := "const x = 1;\n"
	path := writeTemp(t, "a.js", content)
	p := planFor(path, content, plan.Edit{Start: 6, End: 7, Replacement: "y"})

	rep, err := Run(context.Background(), p, true)
	require.NoError(t, err)
	assert.True(t, rep.DryRun)
	assert.Equal(t, 1, rep.TotalEdits)
	assert.Zero(t, rep.ModifiedFiles)
	require.Len(t, rep.Files, 1)
	assert.False(t, rep.Files[0].Applied)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(after))
}

func TestRunAppliesEdits(t *testing.T) {
	content := "const x = 1;\n"
	path := writeTemp(t, "a.js", content)
	p := planFor(path, content, plan.Edit{Start: 6, End: 7, Replacement: "total"})

	rep, err := Run(context.Background(), p, false)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.ModifiedFiles)
	require.Len(t, rep.Files, 1)
	assert.True(t, rep.Files[0].Applied)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "const total = 1;\n", string(after))
}

func TestStaleFileIsSkipped(t *testing.T) {
	content := "const x = 1;\n"
	path := writeTemp(t, "a.js", content)
	p := planFor(path, content, plan.Edit{Start: 6, End: 7, Replacement: "y"})

	// Simulate an external edit between planning and application.
	require.NoError(t, os.WriteFile(path, []byte("const x = 2;\n"), 0644))

	rep, err := Run(context.Background(), p, false)
	require.NoError(t, err)
	require.Len(t, rep.Files, 1)
	assert.True(t, rep.Files[0].Stale)
	assert.False(t, rep.Files[0].Applied)
	assert.Zero(t, rep.ModifiedFiles)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "const x = 2;\n", string(after), "a stale file is left alone")
}

func TestPartialApplication(t *testing.T) {
	good := "let a = 1;\n"
	bad := "let b = 2;\n"
	dir := t.TempDir()
	goodPath := filepath.Join(dir, "good.js")
	badPath := filepath.Join(dir, "bad.js")
	require.NoError(t, os.WriteFile(goodPath, []byte(good), 0644))
	require.NoError(t, os.WriteFile(badPath, []byte(bad), 0644))

	p := &plan.Plan{
		Operation: "rename_symbol",
		Files: []plan.FileEdits{
			{Path: goodPath, Snapshot: refindex.SnapshotOf([]byte(good)),
				Edits: []plan.Edit{{Start: 4, End: 5, Replacement: "x"}}},
			{Path: badPath, Snapshot: refindex.SnapshotOf([]byte("something else")),
				Edits: []plan.Edit{{Start: 4, End: 5, Replacement: "x"}}},
		},
	}

	rep, err := Run(context.Background(), p, false)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.ModifiedFiles)
	require.Len(t, rep.Files, 2)
	assert.True(t, rep.Files[0].Applied)
	assert.True(t, rep.Files[1].Stale)
}

func TestMissingFileReportsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ghost.js")
	p := planFor(path, "anything", plan.Edit{Start: 0, End: 1, Replacement: "x"})

	rep, err := Run(context.Background(), p, false)
	require.NoError(t, err)
	require.Len(t, rep.Files, 1)
	assert.False(t, rep.Files[0].Applied)
	assert.NotEmpty(t, rep.Files[0].Error)
}

func TestCancellationStopsBetweenFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	content := "const x = 1;\n"
	path := writeTemp(t, "a.js", content)
	p := planFor(path, content, plan.Edit{Start: 6, End: 7, Replacement: "y"})

	_, err := Run(ctx, p, false)
	assert.ErrorIs(t, err, context.Canceled)

	after, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, content, string(after))
}

func TestPermissionsPreserved(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	content := "const x = 1;\n"
	path := filepath.Join(t.TempDir(), "a.js")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	p := planFor(path, content, plan.Edit{Start: 6, End: 7, Replacement: "y"})
	_, err := Run(context.Background(), p, false)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
