package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/jsmorph/internal/config"
	"github.com/standardbeagle/jsmorph/internal/jserrors"
	"github.com/standardbeagle/jsmorph/internal/plan"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func newEngine() *Engine {
	return New(config.Default(), nil)
}

func TestClassifyReferences(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"api.js":  "export function getUserData(id) { return id; }\n",
		"main.js": "import { getUserData } from './api';\nconst u = getUserData(1);\n",
	})

	rep, err := newEngine().ClassifyReferences(context.Background(), dir, "getUserData", nil)
	require.NoError(t, err)

	assert.Equal(t, "getUserData", rep.Symbol)
	assert.Equal(t, 2, rep.FilesAnalyzed)
	assert.Equal(t, 2, rep.FilesWithReferences)
	assert.Equal(t, 3, rep.TotalReferences)
	assert.Equal(t, 1, rep.CountsByKind["declaration"])
	assert.Equal(t, 1, rep.CountsByKind["import"])
	assert.Equal(t, 1, rep.CountsByKind["function_call"])

	for _, f := range rep.Files {
		for _, occ := range f.Occurrences {
			assert.Equal(t, "getUserData", occ.Symbol)
			assert.NotEmpty(t, occ.Scope)
		}
	}
}

func TestClassifyKindFilter(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"api.js":  "export function run() {}\n",
		"main.js": "import { run } from './api';\nrun();\n",
	})

	rep, err := newEngine().ClassifyReferences(context.Background(), dir, "run", []string{"function_call"})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.TotalReferences)
	assert.Equal(t, 1, rep.CountsByKind["function_call"])
	assert.Zero(t, rep.CountsByKind["import"])
}

func TestClassifyUnknownKindRejected(t *testing.T) {
	dir := writeProject(t, map[string]string{"a.js": "let x = 1;\n"})

	_, err := newEngine().ClassifyReferences(context.Background(), dir, "x", []string{"bogus"})
	require.Error(t, err)
	assert.True(t, jserrors.IsType(err, jserrors.ErrorTypeInvalidInput))
}

func TestClassifySuggestionForUnknownSymbol(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"api.js": "export function getUserData(id) { return id; }\n",
	})

	rep, err := newEngine().ClassifyReferences(context.Background(), dir, "getUserDat", nil)
	require.NoError(t, err)
	assert.Zero(t, rep.TotalReferences)
	assert.Equal(t, "getUserData", rep.Suggestion)
}

func TestAnalyzeFile(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"app.js": "import React from 'react';\nexport function App() { return null; }\n",
	})

	rep, err := newEngine().AnalyzeFile(filepath.Join(dir, "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "structured", rep.Strategy)
	require.Len(t, rep.Functions, 1)
	assert.Equal(t, "App", rep.Functions[0].Name)
	require.Len(t, rep.Imports, 1)
	assert.Equal(t, "react", rep.Imports[0].Source)
}

func TestAnalyzeFileRejectsUnsupported(t *testing.T) {
	dir := writeProject(t, map[string]string{"notes.md": "# notes\n"})

	_, err := newEngine().AnalyzeFile(filepath.Join(dir, "notes.md"))
	require.Error(t, err)
	assert.True(t, jserrors.IsType(err, jserrors.ErrorTypeInvalidInput))
}

func TestRenameDryRunThenApply(t *testing.T) {
	apiSrc := "export function getUserData(id) { return id; }\n"
	mainSrc := "import { getUserData } from './api';\ngetUserData(7);\n"
	dir := writeProject(t, map[string]string{"api.js": apiSrc, "main.js": mainSrc})
	eng := newEngine()

	dry, err := eng.RenameSymbol(context.Background(), dir, "getUserData", "fetchUserProfile", "", true)
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Equal(t, 3, dry.TotalEdits)
	assert.Zero(t, dry.ModifiedFiles)

	before, err := os.ReadFile(filepath.Join(dir, "api.js"))
	require.NoError(t, err)
	assert.Equal(t, apiSrc, string(before))

	applied, err := eng.RenameSymbol(context.Background(), dir, "getUserData", "fetchUserProfile", "", false)
	require.NoError(t, err)
	assert.Equal(t, 2, applied.ModifiedFiles)

	after, err := os.ReadFile(filepath.Join(dir, "main.js"))
	require.NoError(t, err)
	assert.Equal(t, "import { fetchUserProfile } from './api';\nfetchUserProfile(7);\n", string(after))
}

func TestAddParameterEndToEnd(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"log.js": "function log(msg) {}\nlog('hi');\n",
	})

	rep, err := newEngine().AddParameter(context.Background(), dir, "log",
		plan.Param{Name: "level", Default: "'info'"}, -1, true, false)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.ModifiedFiles)

	after, err := os.ReadFile(filepath.Join(dir, "log.js"))
	require.NoError(t, err)
	assert.Equal(t, "function log(msg, level = 'info') {}\nlog('hi', 'info');\n", string(after))
}

func TestRemoveUnusedExportsEndToEnd(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"mod.js":  "export function used() {}\nexport function orphan() {}\n",
		"main.js": "import { used } from './mod';\nused();\n",
	})

	rep, err := newEngine().RemoveUnusedExports(context.Background(), dir, nil, false)
	require.NoError(t, err)
	require.Len(t, rep.Unused, 1)
	assert.Equal(t, "orphan", rep.Unused[0].Name)

	after, err := os.ReadFile(filepath.Join(dir, "mod.js"))
	require.NoError(t, err)
	assert.Contains(t, string(after), "export function used()")
	assert.Contains(t, string(after), "\nfunction orphan()")
}
