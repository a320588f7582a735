// Package exclusion answers whether a source-relative path falls under a
// configured exclusion prefix.
package exclusion

import (
	"path/filepath"
	"strings"

	"github.com/galleryloom/gallerysync/internal/entity"
)

// Index is a set of exclusion prefixes, normalized for fast prefix checks.
type Index struct {
	prefixes []string
}

// NewIndex builds an Index from the configured exclusions.
func NewIndex(exclusions []entity.Exclusion) *Index {
	prefixes := make([]string, 0, len(exclusions))
	for _, e := range exclusions {
		prefixes = append(prefixes, normalize(e.Path))
	}
	return &Index{prefixes: prefixes}
}

func normalize(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// Excludes reports whether relPath is excluded: either it equals an
// exclusion prefix exactly, or it is a descendant of one.
func (idx *Index) Excludes(relPath string) bool {
	candidate := normalize(relPath)
	for _, prefix := range idx.prefixes {
		if candidate == prefix || strings.HasPrefix(candidate, prefix+"/") {
			return true
		}
	}
	return false
}
