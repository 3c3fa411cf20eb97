// Package plan computes refactoring edit plans from a cross-file reference
// index. A plan is an ordered, per-file list of non-overlapping byte-range
// replacements plus diagnostics; computing one never touches the files.
// Whether a plan mutates anything is entirely the edit applier's business.
package plan

import (
	"fmt"
	"sort"

	"github.com/standardbeagle/jsmorph/internal/refindex"
)

// Edit replaces source[Start:End] with Replacement. Start == End is a pure
// insertion.
type Edit struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Replacement string `json:"replacement"`
}

// FileEdits groups one file's edits, sorted ascending by position, together
// with the content snapshot the plan was computed against.
type FileEdits struct {
	Path     string            `json:"file"`
	Snapshot refindex.Snapshot `json:"-"`
	Edits    []Edit            `json:"edits"`

	// Counts tallies planned replacements by context kind for reporting.
	Counts map[string]int `json:"counts,omitempty"`
}

// Diagnostic flags a condition the caller should know about without
// aborting the plan: name collisions, call sites needing manual updates,
// ambiguous targets, nearest-name suggestions.
type Diagnostic struct {
	Kind    string `json:"kind"`
	Path    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

const (
	DiagNameCollision     = "name_collision"
	DiagNeedsManualUpdate = "needs_manual_update"
	DiagAmbiguousTarget   = "ambiguous_target"
	DiagNotFound          = "not_found"
	DiagJsxCase           = "jsx_case"
)

// UnusedExport describes one export with no cross-file reference.
type UnusedExport struct {
	Path string `json:"file"`
	Name string `json:"name"`
	Line int    `json:"line"`
	Kind string `json:"kind"`
}

// Plan is a complete, validated refactoring proposal: either fully applied
// or fully discarded per file, never partially within one file.
type Plan struct {
	Operation   string         `json:"operation"`
	Files       []FileEdits    `json:"files"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
	Unused      []UnusedExport `json:"unused_exports,omitempty"`

	byPath map[string]int
}

func newPlan(operation string) *Plan {
	return &Plan{Operation: operation, byPath: make(map[string]int)}
}

// fileEdits returns the (created on demand) edit group for a path.
func (p *Plan) fileEdits(path string, snap refindex.Snapshot) *FileEdits {
	if idx, ok := p.byPath[path]; ok {
		return &p.Files[idx]
	}
	p.byPath[path] = len(p.Files)
	p.Files = append(p.Files, FileEdits{
		Path:     path,
		Snapshot: snap,
		Counts:   make(map[string]int),
	})
	return &p.Files[len(p.Files)-1]
}

// addEdit records one replacement attributed to a context kind.
func (p *Plan) addEdit(path string, snap refindex.Snapshot, e Edit, kind string) {
	fe := p.fileEdits(path, snap)
	fe.Edits = append(fe.Edits, e)
	if kind != "" {
		fe.Counts[kind]++
	}
}

func (p *Plan) diag(kind, path string, line int, format string, args ...interface{}) {
	p.Diagnostics = append(p.Diagnostics, Diagnostic{
		Kind:    kind,
		Path:    path,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

// TotalEdits counts replacements across all files.
func (p *Plan) TotalEdits() int {
	n := 0
	for i := range p.Files {
		n += len(p.Files[i].Edits)
	}
	return n
}

// normalize sorts each file's edits ascending, drops exact duplicates, and
// verifies the non-overlap invariant. A residual overlap is a planner bug
// and fails the whole plan rather than risking a corrupt file.
func (p *Plan) normalize() error {
	for i := range p.Files {
		fe := &p.Files[i]
		sort.Slice(fe.Edits, func(a, b int) bool {
			if fe.Edits[a].Start != fe.Edits[b].Start {
				return fe.Edits[a].Start < fe.Edits[b].Start
			}
			return fe.Edits[a].End < fe.Edits[b].End
		})

		deduped := fe.Edits[:0]
		for _, e := range fe.Edits {
			if n := len(deduped); n > 0 && deduped[n-1] == e {
				continue
			}
			deduped = append(deduped, e)
		}
		fe.Edits = deduped

		for j := 1; j < len(fe.Edits); j++ {
			prev, cur := fe.Edits[j-1], fe.Edits[j]
			if cur.Start < prev.End {
				return fmt.Errorf("overlapping edits in %s: [%d,%d) and [%d,%d)",
					fe.Path, prev.Start, prev.End, cur.Start, cur.End)
			}
		}
	}

	// Drop files that ended up with no edits after dedupe.
	kept := p.Files[:0]
	for _, fe := range p.Files {
		if len(fe.Edits) > 0 {
			kept = append(kept, fe)
		}
	}
	p.Files = kept
	p.byPath = nil
	return nil
}
