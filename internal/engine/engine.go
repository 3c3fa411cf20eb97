// Package engine ties the pipeline together: index build, occurrence
// classification, plan computation and application, behind one facade the
// CLI and the MCP server both call. The engine holds no per-operation
// state; every call builds a fresh index so results always reflect the
// files as they are now.
package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/standardbeagle/jsmorph/internal/analysis"
	"github.com/standardbeagle/jsmorph/internal/apply"
	"github.com/standardbeagle/jsmorph/internal/config"
	"github.com/standardbeagle/jsmorph/internal/grammar"
	"github.com/standardbeagle/jsmorph/internal/jserrors"
	"github.com/standardbeagle/jsmorph/internal/plan"
	"github.com/standardbeagle/jsmorph/internal/refindex"
	"github.com/standardbeagle/jsmorph/internal/types"
	"github.com/standardbeagle/jsmorph/pkg/pathutil"
)

// Logger is the minimal diagnostic sink the engine writes to. The MCP
// server passes its file-backed logger; the CLI passes one that writes to
// stderr.
type Logger interface {
	Printf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

// Engine executes source intelligence and refactoring operations under one
// configuration.
type Engine struct {
	cfg *config.Config
	log Logger
}

// New creates an engine. A nil logger disables diagnostics.
func New(cfg *config.Config, log Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Engine{cfg: cfg, log: log}
}

// OccurrenceView is the report form of one classified occurrence.
type OccurrenceView struct {
	Symbol  string `json:"symbol"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Context string `json:"context"`
	Scope   string `json:"scope,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// FileReferences groups one file's occurrences for reporting.
type FileReferences struct {
	Path        string           `json:"file"`
	Strategy    string           `json:"strategy"`
	Counts      map[string]int   `json:"counts"`
	Occurrences []OccurrenceView `json:"occurrences"`
}

// ClassifyReport is the result of a classify-references operation.
type ClassifyReport struct {
	Symbol              string           `json:"symbol,omitempty"`
	Target              string           `json:"target"`
	FilesAnalyzed       int              `json:"files_analyzed"`
	FilesWithReferences int              `json:"files_with_references"`
	TotalReferences     int              `json:"total_references"`
	CountsByKind        map[string]int   `json:"counts_by_kind"`
	Files               []FileReferences `json:"files"`
	Suggestion          string           `json:"suggestion,omitempty"`
}

// ClassifyReferences finds and classifies every occurrence of symbol under
// target. An empty symbol reports all occurrences; kinds, when non-empty,
// restricts the report to those context kinds.
func (e *Engine) ClassifyReferences(ctx context.Context, target, symbol string, kinds []string) (*ClassifyReport, error) {
	wanted, err := parseKinds(kinds)
	if err != nil {
		return nil, err
	}

	ix, err := e.buildIndex(ctx, target, symbol)
	if err != nil {
		return nil, err
	}

	rep := &ClassifyReport{
		Symbol:        symbol,
		Target:        target,
		FilesAnalyzed: ix.FilesAnalyzed(),
		CountsByKind:  make(map[string]int),
	}

	for i := range ix.Files {
		fr := &ix.Files[i]
		fc := fr.Classification
		if fc == nil {
			continue
		}
		occs := fc.Occurrences
		if symbol != "" {
			occs = fc.ForSymbol(symbol)
		}

		fileRefs := FileReferences{
			Path:     pathutil.ToRelative(fr.Path, ix.Root),
			Strategy: fc.Strategy.String(),
			Counts:   make(map[string]int),
		}
		for _, occ := range occs {
			if wanted != nil && !wanted[occ.Kind] {
				continue
			}
			view := OccurrenceView{
				Symbol:  occ.Symbol,
				Line:    occ.Line,
				Column:  occ.Column,
				Context: occ.Kind.String(),
				Snippet: occ.Snippet,
			}
			if fc.Scopes != nil {
				view.Scope = fc.Scopes.Path(occ.Scope)
			}
			fileRefs.Occurrences = append(fileRefs.Occurrences, view)
			fileRefs.Counts[view.Context]++
			rep.CountsByKind[view.Context]++
			rep.TotalReferences++
		}
		if len(fileRefs.Occurrences) > 0 {
			rep.Files = append(rep.Files, fileRefs)
			rep.FilesWithReferences++
		}
	}

	if symbol != "" && rep.TotalReferences == 0 {
		rep.Suggestion = plan.NearestName(symbol, ix.SymbolNames())
	}

	e.log.Printf("classify %q under %s: %d references in %d/%d files",
		symbol, target, rep.TotalReferences, rep.FilesWithReferences, rep.FilesAnalyzed)
	return rep, nil
}

// AnalyzeFile summarizes the structure of one file.
func (e *Engine) AnalyzeFile(path string) (*analysis.FileReport, error) {
	if !types.IsSupportedPath(path) {
		return nil, jserrors.New(jserrors.ErrorTypeInvalidInput, "analyze_js",
			fmt.Errorf("%s is not a JavaScript or TypeScript file", path)).WithFile(path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, jserrors.New(jserrors.ErrorTypeIO, "analyze_js", err).WithFile(path)
	}
	adapter, err := grammar.NewAdapter()
	if err != nil {
		return nil, jserrors.New(jserrors.ErrorTypeInternal, "analyze_js", err)
	}
	defer adapter.Close()
	return analysis.File(adapter, src, path), nil
}

// RenameSymbol plans and, unless dryRun, applies a rename across target.
func (e *Engine) RenameSymbol(ctx context.Context, target, oldName, newName, scopeSelector string, dryRun bool) (*apply.Report, error) {
	ix, err := e.buildIndex(ctx, target, oldName)
	if err != nil {
		return nil, err
	}
	p, err := plan.Rename(ix, oldName, newName, scopeSelector)
	if err != nil {
		return nil, err
	}
	return e.execute(ctx, p, ix.Root, dryRun)
}

// AddParameter plans and, unless dryRun, applies a signature change.
func (e *Engine) AddParameter(ctx context.Context, target, functionName string, param plan.Param, position int, updateCalls, dryRun bool) (*apply.Report, error) {
	ix, err := e.buildIndex(ctx, target, functionName)
	if err != nil {
		return nil, err
	}
	p, err := plan.AddParameter(ix, functionName, param, position, updateCalls)
	if err != nil {
		return nil, err
	}
	return e.execute(ctx, p, ix.Root, dryRun)
}

// RemoveUnusedExports plans and, unless dryRun, strips exports nothing else
// references. With dryRun the report lists the unused exports untouched.
func (e *Engine) RemoveUnusedExports(ctx context.Context, target string, excludePatterns []string, dryRun bool) (*apply.Report, error) {
	ix, err := e.buildIndex(ctx, target, "")
	if err != nil {
		return nil, err
	}
	p, err := plan.RemoveUnusedExports(ix, excludePatterns)
	if err != nil {
		return nil, err
	}
	return e.execute(ctx, p, ix.Root, dryRun)
}

func (e *Engine) buildIndex(ctx context.Context, target, symbol string) (*refindex.Index, error) {
	ix, err := refindex.NewBuilder(e.cfg).Build(ctx, target, symbol)
	if err != nil {
		return nil, err
	}
	e.log.Printf("indexed %d files under %s", ix.FilesAnalyzed(), ix.Root)
	return ix, nil
}

func (e *Engine) execute(ctx context.Context, p *plan.Plan, root string, dryRun bool) (*apply.Report, error) {
	rep, err := apply.Run(ctx, p, dryRun)
	if err != nil {
		return rep, err
	}
	relativizeReport(rep, root)
	e.log.Printf("%s: %d edits across %d files (dry_run=%v, modified=%d)",
		rep.Operation, rep.TotalEdits, len(rep.Files), dryRun, rep.ModifiedFiles)
	return rep, nil
}

// relativizeReport rewrites report paths relative to the index root. Edits
// are applied against absolute paths; only the user-facing report changes.
func relativizeReport(rep *apply.Report, root string) {
	for i := range rep.Files {
		rep.Files[i].Path = pathutil.ToRelative(rep.Files[i].Path, root)
	}
	for i := range rep.Diagnostics {
		rep.Diagnostics[i].Path = pathutil.ToRelative(rep.Diagnostics[i].Path, root)
	}
	for i := range rep.Unused {
		rep.Unused[i].Path = pathutil.ToRelative(rep.Unused[i].Path, root)
	}
}

func parseKinds(names []string) (map[types.ContextKind]bool, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make(map[types.ContextKind]bool, len(names))
	for _, name := range names {
		kind, ok := types.ParseContextKind(name)
		if !ok {
			return nil, jserrors.New(jserrors.ErrorTypeInvalidInput, "classify_references",
				fmt.Errorf("unknown context kind %q", name))
		}
		out[kind] = true
	}
	return out, nil
}
