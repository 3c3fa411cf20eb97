// Package refindex aggregates per-file classification results across a file
// set into a global symbol-to-occurrences mapping. The index is rebuilt per
// invocation and never persisted; every occurrence it holds corresponds to a
// byte range valid at read time, witnessed by a content snapshot that the
// edit applier re-checks before writing.
package refindex

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/jsmorph/internal/classify"
	"github.com/standardbeagle/jsmorph/internal/config"
	"github.com/standardbeagle/jsmorph/internal/grammar"
	"github.com/standardbeagle/jsmorph/internal/security"
	"github.com/standardbeagle/jsmorph/internal/types"
)

// Snapshot witnesses a file's content at read time. Length plus xxhash is
// enough to detect concurrent external edits before applying a plan.
type Snapshot struct {
	Size int64
	Hash uint64
}

// SnapshotOf computes the snapshot for file content.
func SnapshotOf(content []byte) Snapshot {
	return Snapshot{Size: int64(len(content)), Hash: xxhash.Sum64(content)}
}

// Matches reports whether content still matches the snapshot.
func (s Snapshot) Matches(content []byte) bool {
	return s.Size == int64(len(content)) && s.Hash == xxhash.Sum64(content)
}

// FileResult carries one file's analysis through the merge step.
type FileResult struct {
	Path           string
	Source         []byte
	Snapshot       Snapshot
	Classification *classify.FileClassification

	// Skipped marks files rejected by the conservative substring
	// pre-filter: the target symbol cannot occur in them.
	Skipped bool

	// Err records a per-file read failure. The file contributes nothing to
	// the index but sibling files are unaffected.
	Err error
}

// FileOccurrences pairs a file with its occurrences of one symbol.
type FileOccurrences struct {
	Path        string
	Occurrences []types.Occurrence
}

// Index is the cross-file reference index for one operation. Files are held
// in sorted path order so dry-run output is reproducible for a given file
// set.
type Index struct {
	Root   string
	Symbol string
	Files  []FileResult

	byPath map[string]int
}

// File returns the result for a path, if analyzed.
func (ix *Index) File(path string) (*FileResult, bool) {
	idx, ok := ix.byPath[path]
	if !ok {
		return nil, false
	}
	return &ix.Files[idx], true
}

// Occurrences returns (file, occurrence-list) pairs for a symbol, grouped by
// file in index order.
func (ix *Index) Occurrences(symbol string) []FileOccurrences {
	var out []FileOccurrences
	for i := range ix.Files {
		fr := &ix.Files[i]
		if fr.Classification == nil {
			continue
		}
		occs := fr.Classification.ForSymbol(symbol)
		if len(occs) > 0 {
			out = append(out, FileOccurrences{Path: fr.Path, Occurrences: occs})
		}
	}
	return out
}

// FilesAnalyzed counts files that were actually read and classified.
func (ix *Index) FilesAnalyzed() int {
	n := 0
	for i := range ix.Files {
		if ix.Files[i].Err == nil {
			n++
		}
	}
	return n
}

// SymbolNames returns every distinct symbol seen across the index, sorted.
// Used for nearest-name suggestions when a target symbol is absent.
func (ix *Index) SymbolNames() []string {
	seen := make(map[string]bool)
	for i := range ix.Files {
		fc := ix.Files[i].Classification
		if fc == nil {
			continue
		}
		for _, occ := range fc.Occurrences {
			seen[occ.Symbol] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builder constructs reference indexes under one configuration.
type Builder struct {
	cfg       *config.Config
	validator *security.SourceValidator
}

// NewBuilder creates an index builder.
func NewBuilder(cfg *config.Config) *Builder {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Builder{cfg: cfg, validator: security.NewSourceValidator()}
}

// Build analyzes target (a file or directory) and merges per-file results.
// When symbol is non-empty, files that cannot contain it are skipped via a
// conservative substring check: scanning an irrelevant file is acceptable,
// missing a relevant one is not.
//
// File analysis runs on a bounded worker pool; the merge is single-threaded.
// Cancelling ctx before the merge completes abandons the build with no side
// effects.
func (b *Builder) Build(ctx context.Context, target, symbol string) (*Index, error) {
	paths, root, err := b.discover(target)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	indexCh := make(chan int)

	g.Go(func() error {
		defer close(indexCh)
		for i := range paths {
			select {
			case indexCh <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < b.cfg.EffectiveWorkers(); w++ {
		g.Go(func() error {
			adapter, err := grammar.NewAdapter()
			if err != nil {
				return err
			}
			defer adapter.Close()

			for i := range indexCh {
				results[i] = b.analyzeFile(adapter, paths[i], symbol)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ix := &Index{
		Root:   root,
		Symbol: symbol,
		Files:  results,
		byPath: make(map[string]int, len(results)),
	}
	for i := range ix.Files {
		ix.byPath[ix.Files[i].Path] = i
	}
	return ix, nil
}

// analyzeFile reads, snapshots, and classifies one file.
func (b *Builder) analyzeFile(adapter *grammar.Adapter, path, symbol string) FileResult {
	fr := FileResult{Path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		fr.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return fr
	}

	if err := b.validator.Check(path, content); err != nil {
		fr.Err = fmt.Errorf("rejected %s: %w", path, err)
		return fr
	}

	fr.Source = content
	fr.Snapshot = SnapshotOf(content)

	if symbol != "" && !bytes.Contains(content, []byte(symbol)) {
		fr.Skipped = true
		return fr
	}

	fr.Classification = classify.Source(adapter, content, path, symbol)
	return fr
}

// discover resolves the target to a sorted list of supported source files.
func (b *Builder) discover(target string) ([]string, string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat target %s: %w", target, err)
	}

	if !info.IsDir() {
		if !types.IsSupportedPath(target) {
			return nil, "", fmt.Errorf("unsupported file type: %s (expected one of %v)", target, types.SupportedExtensions())
		}
		return []string{target}, filepath.Dir(target), nil
	}

	root := target
	var gi *ignore.GitIgnore
	if b.cfg.Index.RespectGitignore {
		// A missing .gitignore is fine; gi stays nil.
		gi, _ = ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	}

	excludes := b.cfg.AllExcludes()
	includes := b.cfg.Index.Include

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // keep scanning despite unreadable entries
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if matchesAny(excludes, rel) || matchesAny(excludes, rel+"/") {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !types.IsSupportedPath(path) {
			return nil
		}
		if matchesAny(excludes, rel) {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if len(includes) > 0 && !matchesAny(includes, rel) {
			return nil
		}
		if max := b.cfg.Index.MaxFileSize; max > 0 {
			if info, err := d.Info(); err == nil && info.Size() > max {
				return nil
			}
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	sort.Strings(paths)
	return paths, root, nil
}

// matchesAny tests a relative slash path against doublestar globs.
func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
