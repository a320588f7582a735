// Package classifier decides, from a walker.Result's per-directory rollups,
// which directories qualify as galleries, which are skipped and why, and
// which ancestor directories are mere containers that need an empty output
// directory of their own.
package classifier

import (
	"path/filepath"
	"sort"

	"github.com/galleryloom/gallerysync/internal/entity"
	"github.com/galleryloom/gallerysync/internal/walker"
)

// Candidate is one directory's classification outcome.
type Candidate struct {
	RelDir     string
	DirectImages int
	TotalImages  int
	IsLeaf       bool
	Qualifies    bool
	ReasonCode   entity.ReasonCode // set only when !Qualifies and a reason applies
}

// Classify walks result.Order and returns one Candidate per directory,
// using settings to decide which directories qualify as galleries.
func Classify(result *walker.Result, settings entity.Settings) []Candidate {
	out := make([]Candidate, 0, len(result.Order))
	for _, relDir := range result.Order {
		stat := result.Stats[relDir]
		c := Candidate{
			RelDir:       relDir,
			DirectImages: stat.DirectImages,
			TotalImages:  stat.TotalImages,
			IsLeaf:       stat.IsLeaf,
		}

		switch {
		case stat.DirectImages >= settings.MinImagesToBeGallery:
			c.Qualifies = true
		case settings.LeafOnly && stat.IsLeaf && stat.DirectImages > 0:
			c.Qualifies = true
		case !settings.LeafOnly && settings.ConsiderImagesInSubfolders && stat.TotalImages >= settings.MinImagesToBeGallery:
			c.Qualifies = true
		}

		if !c.Qualifies {
			switch {
			case stat.DirectImages == 0 && stat.IsLeaf:
				c.ReasonCode = entity.ReasonSkipNoImages
			case stat.DirectImages > 0 && stat.DirectImages < settings.MinImagesToBeGallery:
				c.ReasonCode = entity.ReasonSkipBelowMinImages
			}
		}

		out = append(out, c)
	}
	return out
}

// ContainerDirs returns the ancestors of every qualifying gallery directory
// that themselves hold zero direct images — directories that exist only to
// group galleries and need an empty output directory created for them when
// nesting is replicated.
func ContainerDirs(result *walker.Result, galleryRelDirs []string) []string {
	seen := make(map[string]bool)
	for _, relDir := range galleryRelDirs {
		parent := filepath.Dir(relDir)
		if parent == "." {
			parent = ""
		}
		// Walk every ancestor up to and including the source root (""),
		// regardless of how deeply relDir is nested.
		for {
			stat, ok := result.Stats[parent]
			if !ok {
				break
			}
			if stat.DirectImages == 0 {
				seen[parent] = true
			}
			if parent == "" {
				break
			}
			next := filepath.Dir(parent)
			if next == "." {
				next = ""
			}
			if next == parent {
				break
			}
			parent = next
		}
	}

	out := make([]string, 0, len(seen))
	for relDir := range seen {
		out = append(out, relDir)
	}
	sort.Strings(out)
	return out
}
