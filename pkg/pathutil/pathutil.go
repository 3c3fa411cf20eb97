// Package pathutil converts between the absolute paths the engine works
// with and the project-relative paths reports show. Internally every path
// is absolute so index lookups are unambiguous; at the output boundary
// relative paths are shorter and survive a project move.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative returns path relative to root. A path outside root, an already
// relative path, or a failed conversion comes back unchanged.
func ToRelative(path, root string) string {
	if path == "" || root == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
