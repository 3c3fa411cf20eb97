// Package apply executes refactoring plans against the filesystem. It is
// the only package in the engine that writes files; planning and
// classification stay read-only so a dry run is structurally incapable of
// mutation.
package apply

import (
	"context"
	"io/fs"
	"os"

	"github.com/standardbeagle/jsmorph/internal/jserrors"
	"github.com/standardbeagle/jsmorph/internal/plan"
)

// FileOutcome reports what happened to one file in the plan.
type FileOutcome struct {
	Path    string         `json:"file"`
	Edits   int            `json:"edits"`
	Counts  map[string]int `json:"counts,omitempty"`
	Applied bool           `json:"applied"`

	// Stale means the file changed between index build and application;
	// its edits were discarded rather than risk writing against moved
	// offsets.
	Stale bool   `json:"stale,omitempty"`
	Error string `json:"error,omitempty"`
}

// Report summarizes one application pass. When some files applied and
// others were stale or unwritable, both halves appear side by side; the
// caller decides whether to re-plan.
type Report struct {
	Operation     string              `json:"operation"`
	DryRun        bool                `json:"dry_run"`
	Files         []FileOutcome       `json:"files"`
	Diagnostics   []plan.Diagnostic   `json:"diagnostics,omitempty"`
	Unused        []plan.UnusedExport `json:"unused_exports,omitempty"`
	TotalEdits    int                 `json:"total_edits"`
	ModifiedFiles int                 `json:"modified_files"`
}

// Run applies p. With dryRun set no file is opened for writing; the report
// shows exactly what a real run would change. Cancellation is honored
// between files, never mid-write, so no file is ever left half-edited.
func Run(ctx context.Context, p *plan.Plan, dryRun bool) (*Report, error) {
	rep := &Report{
		Operation:   p.Operation,
		DryRun:      dryRun,
		Diagnostics: p.Diagnostics,
		Unused:      p.Unused,
	}

	for i := range p.Files {
		fe := &p.Files[i]
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		outcome := FileOutcome{Path: fe.Path, Edits: len(fe.Edits), Counts: fe.Counts}
		rep.TotalEdits += len(fe.Edits)

		if dryRun {
			rep.Files = append(rep.Files, outcome)
			continue
		}

		if err := applyFile(p.Operation, fe); err != nil {
			outcome.Stale = jserrors.IsType(err, jserrors.ErrorTypeStale)
			outcome.Error = err.Error()
			rep.Files = append(rep.Files, outcome)
			continue
		}
		outcome.Applied = true
		rep.ModifiedFiles++
		rep.Files = append(rep.Files, outcome)
	}
	return rep, nil
}

// applyFile re-reads the target, verifies it still matches the snapshot the
// plan was computed against, rewrites it, and writes it back preserving the
// original permissions.
func applyFile(op string, fe *plan.FileEdits) error {
	current, err := os.ReadFile(fe.Path)
	if err != nil {
		return jserrors.New(jserrors.ErrorTypeIO, op, err).WithFile(fe.Path)
	}
	if !fe.Snapshot.Matches(current) {
		return jserrors.Stalef(op, fe.Path, "file changed since it was analyzed; re-run the operation")
	}

	updated := Rewrite(current, fe.Edits)

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(fe.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(fe.Path, updated, mode); err != nil {
		return jserrors.New(jserrors.ErrorTypeIO, op, err).WithFile(fe.Path)
	}
	return nil
}

// Rewrite applies sorted non-overlapping edits to src, working from the
// last edit backward so earlier offsets stay valid throughout.
func Rewrite(src []byte, edits []plan.Edit) []byte {
	out := make([]byte, len(src))
	copy(out, src)
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		if e.Start < 0 || e.End > len(out) || e.Start > e.End {
			continue
		}
		next := make([]byte, 0, len(out)-(e.End-e.Start)+len(e.Replacement))
		next = append(next, out[:e.Start]...)
		next = append(next, e.Replacement...)
		next = append(next, out[e.End:]...)
		out = next
	}
	return out
}
