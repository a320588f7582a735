// Package resolver maps source-relative paths to their virtual and physical
// locations under the output root, implementing the nesting-replication and
// basename-flattening rules a scan's output layout follows.
package resolver

import (
	"path/filepath"
	"strings"

	"github.com/galleryloom/gallerysync/internal/entity"
)

// VirtualPath returns relFile's path under the output root before any
// flattening is applied: unchanged when nesting is replicated, collapsed to
// "<top-level-dir>/<basename>" otherwise (single-segment paths pass through
// unchanged either way).
func VirtualPath(relFile string, replicateNesting bool) string {
	if replicateNesting {
		return relFile
	}
	parts := strings.Split(filepath.ToSlash(relFile), "/")
	if len(parts) > 1 {
		return filepath.Join(parts[0], filepath.Base(relFile))
	}
	return filepath.Base(relFile)
}

// FlattenMap tracks, within one scan, which source-relative path first
// claimed a given basename under the flattened output root. Resolve uses it
// to disambiguate a second file that would otherwise collide.
type FlattenMap struct {
	claimedBy map[string]string // basename -> the relFile that first claimed it
}

func NewFlattenMap() *FlattenMap {
	return &FlattenMap{claimedBy: make(map[string]string)}
}

// Resolve computes a file's physical output path (where it is actually
// written) and virtual output path (the nested location it logically
// belongs at, used for display and diffing). When flattening is disabled
// the two are identical.
func Resolve(outputRoot, relFile string, replicateNesting, flattenEnabled bool, flatten *FlattenMap) (physical, virtual string) {
	virtualRel := VirtualPath(relFile, replicateNesting)
	virtual = filepath.Join(outputRoot, virtualRel)
	if !flattenEnabled {
		return virtual, virtual
	}

	base := filepath.Base(relFile)
	if claimedBy, ok := flatten.claimedBy[base]; ok && claimedBy != relFile {
		ext := filepath.Ext(relFile)
		stem := strings.TrimSuffix(base, ext)
		base = stem + "__" + entity.ShortHash(relFile) + ext
	}
	if _, ok := flatten.claimedBy[base]; !ok {
		flatten.claimedBy[base] = relFile
	}

	physical = filepath.Join(outputRoot, base)
	return physical, virtual
}
