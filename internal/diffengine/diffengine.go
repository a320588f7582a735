// Package diffengine re-derives the set of expected physical targets from
// the current Settings and Sources, without any of the Planner's side
// effects, and classifies each against the Record Store: new, unchanged,
// changed, or missing.
package diffengine

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/galleryloom/gallerysync/internal/classifier"
	"github.com/galleryloom/gallerysync/internal/entity"
	"github.com/galleryloom/gallerysync/internal/exclusion"
	"github.com/galleryloom/gallerysync/internal/recordstore"
	"github.com/galleryloom/gallerysync/internal/resolver"
	"github.com/galleryloom/gallerysync/internal/signature"
	"github.com/galleryloom/gallerysync/internal/walker"
)

// expectedTarget is one physical output the Diff Engine re-derived,
// carrying enough of the would-be PlanAction to classify and report it.
type expectedTarget struct {
	targetPath string
	virtual    string
	sourcePath string
	recordType entity.RecordType
	signature  entity.Signature
}

// Engine computes a DiffResult by comparing expected targets (recomputed
// from disk) against the Record Store's recorded targets.
type Engine struct {
	store recordstore.Store
	roots entity.Roots
}

// New returns a diff Engine reading from store and resolving paths under
// roots.
func New(store recordstore.Store, roots entity.Roots) *Engine {
	return &Engine{store: store, roots: roots}
}

// Diff re-derives expected targets for sources exactly as the Planner's
// resolver would, then buckets every expected target plus every recorded
// target into new/unchanged/changed/missing.
func (e *Engine) Diff(ctx context.Context, settings entity.Settings, sources []entity.Source, exclusions []entity.Exclusion) (*entity.DiffResult, error) {
	idx := exclusion.NewIndex(exclusions)
	flatten := resolver.NewFlattenMap()

	expected := make(map[string]expectedTarget)

	enabled := make([]entity.Source, 0, len(sources))
	for _, s := range sources {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].Path < enabled[j].Path })

	for _, source := range enabled {
		base := filepath.Join(e.roots.DataRoot, source.Path)
		if _, err := os.Stat(base); err != nil {
			continue
		}

		if source.ScanMode != entity.ScanModeFoldersOnly {
			archives, err := walker.ArchiveFiles(base, e.roots.DataRoot, settings.ArchiveExtensions)
			if err != nil {
				return nil, err
			}
			for _, archive := range archives {
				if idx.Excludes(archive.RelPath) {
					continue
				}
				target, virtual := resolver.Resolve(e.roots.OutputRoot, archive.RelPath, settings.ReplicateNesting, settings.LanraragiFlatten, flatten)
				sig, err := signature.Archive(archive.Path)
				if err != nil {
					continue
				}
				expected[target] = expectedTarget{
					targetPath: target, virtual: virtual, sourcePath: archive.Path,
					recordType: entity.RecordTypeArchive, signature: entity.NewArchiveSignatureValue(sig),
				}
			}
		}

		if source.ScanMode == entity.ScanModeArchivesOnly || !settings.ProcessGalleries() {
			continue
		}

		result, err := walker.Walk(base, settings.ImageExtensions)
		if err != nil {
			return nil, err
		}
		for _, c := range classifier.Classify(result, settings) {
			if !c.Qualifies {
				continue
			}
			relDir := filepath.Join(source.Path, c.RelDir)
			if idx.Excludes(relDir) {
				continue
			}
			absDir := filepath.Join(base, c.RelDir)
			images, err := walker.GatherImages(absDir, settings.ImageExtensions, settings.ConsiderImagesInSubfolders)
			if err != nil {
				return nil, err
			}
			if len(images) == 0 {
				continue
			}
			sig, err := signature.Gallery(images)
			if err != nil {
				continue
			}
			sigValue := entity.NewGallerySignatureValue(sig)

			if settings.HasOutputMode(entity.OutputModeZip) {
				ext := string(settings.ArchiveExtensionForGalleries)
				relFile := filepath.Join(filepath.Dir(relDir), filepath.Base(relDir)+"."+ext)
				target, virtual := resolver.Resolve(e.roots.OutputRoot, relFile, settings.ReplicateNesting, settings.LanraragiFlatten, flatten)
				expected[target] = expectedTarget{
					targetPath: target, virtual: virtual, sourcePath: absDir,
					recordType: entity.RecordTypeGalleryZip, signature: sigValue,
				}
			}
			if settings.HasOutputMode(entity.OutputModeFolderCopy) {
				virtualRel := resolver.VirtualPath(relDir, settings.ReplicateNesting)
				target := filepath.Join(e.roots.OutputRoot, virtualRel)
				expected[target] = expectedTarget{
					targetPath: target, virtual: target, sourcePath: absDir,
					recordType: entity.RecordTypeFolderCopy, signature: sigValue,
				}
			}
		}
	}

	recorded, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	recordedByTarget := make(map[string]entity.ArchiveRecord, len(recorded))
	for _, r := range recorded {
		recordedByTarget[r.TargetPath] = r
	}

	result := &entity.DiffResult{}

	targets := make([]string, 0, len(expected))
	for target := range expected {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	for _, target := range targets {
		et := expected[target]
		item := entity.DiffItem{
			TargetPath:        et.targetPath,
			VirtualTargetPath: et.virtual,
			SourcePath:        et.sourcePath,
			Type:              et.recordType,
			Signature:         et.signature,
		}
		record, ok := recordedByTarget[target]
		switch {
		case !ok:
			item.Status = entity.DiffNew
			result.New = append(result.New, item)
		case record.Signature.Equal(et.signature):
			item.Status = entity.DiffUnchanged
			result.Unchanged = append(result.Unchanged, item)
		default:
			item.Status = entity.DiffChanged
			result.Changed = append(result.Changed, item)
		}
	}

	recordedPaths := make([]string, 0, len(recorded))
	for _, r := range recorded {
		recordedPaths = append(recordedPaths, r.TargetPath)
	}
	sort.Strings(recordedPaths)
	for _, target := range recordedPaths {
		r := recordedByTarget[target]
		if _, err := os.Stat(r.SourcePath); err == nil || !os.IsNotExist(err) {
			continue
		}
		result.Missing = append(result.Missing, entity.DiffItem{
			Status: entity.DiffMissing, TargetPath: r.TargetPath, VirtualTargetPath: r.VirtualTargetPath,
			SourcePath: r.SourcePath, Type: r.Type, Signature: r.Signature,
		})
	}

	return result, nil
}
