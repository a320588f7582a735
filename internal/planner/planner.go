// Package planner implements the canonical decision table: given a scan's
// settings, enabled sources, and the current Record Store, it produces an
// ordered list of PlanAction values without performing any of the I/O those
// actions describe. The Executor is responsible for carrying them out.
package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/xrash/smetrics"
	"go.uber.org/zap"

	"github.com/galleryloom/gallerysync/internal/activity"
	"github.com/galleryloom/gallerysync/internal/classifier"
	"github.com/galleryloom/gallerysync/internal/entity"
	"github.com/galleryloom/gallerysync/internal/exclusion"
	"github.com/galleryloom/gallerysync/internal/recordstore"
	"github.com/galleryloom/gallerysync/internal/resolver"
	"github.com/galleryloom/gallerysync/internal/signature"
	"github.com/galleryloom/gallerysync/internal/walker"
)

// Planner produces a ScanResult from the current on-disk state and records.
type Planner struct {
	store      recordstore.Store
	activities *activity.Sink
	log        *zap.SugaredLogger
	roots      entity.Roots
}

// New creates a Planner that reads from store and resolves paths relative
// to roots. activities may be nil, in which case the missing-source and
// missing-duplicates warnings are simply not logged.
func New(store recordstore.Store, activities *activity.Sink, roots entity.Roots, log *zap.SugaredLogger) *Planner {
	if log == nil {
		log = zap.S()
	}
	return &Planner{store: store, activities: activities, roots: roots, log: log.Named("planner")}
}

func duplicatesAvailable(root string) bool {
	if root == "" {
		return false
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return false
	}
	f, err := os.CreateTemp(root, ".write-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// Plan runs the decision table over every enabled source, in sorted-by-path
// order, and returns the accumulated result.
func (p *Planner) Plan(ctx context.Context, settings entity.Settings, sources []entity.Source, exclusions []entity.Exclusion) (*entity.ScanResult, error) {
	summary := entity.NewScanSummary()
	var actions []entity.PlanAction

	idx := exclusion.NewIndex(exclusions)
	flatten := resolver.NewFlattenMap()
	dupAvailable := duplicatesAvailable(p.roots.DuplicatesRoot)

	var warnMissingDuplicates sync.Once
	warnOnce := func() {
		if settings.DuplicatesEnabled && !dupAvailable && p.activities != nil {
			warnMissingDuplicates.Do(func() {
				p.activities.Log(entity.ActivityWarn, "Duplicates directory unavailable; falling back to rename strategy",
					map[string]any{"path": p.roots.DuplicatesRoot}, "")
			})
		}
	}

	enabled := make([]entity.Source, 0, len(sources))
	for _, s := range sources {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].Path < enabled[j].Path })

	for _, source := range enabled {
		base := filepath.Join(p.roots.DataRoot, source.Path)
		if _, err := os.Stat(base); err != nil {
			p.log.Warnw("source path missing, skipping", "source_id", source.ID, "path", base)
			if p.activities != nil {
				p.activities.Log(entity.ActivityWarn, "Source path missing; skipping source",
					map[string]any{"source_id": source.ID, "path": base}, "")
			}
			continue
		}

		if source.ScanMode != entity.ScanModeFoldersOnly {
			if err := p.planArchives(ctx, base, source, settings, idx, flatten, dupAvailable, warnOnce, summary, &actions); err != nil {
				return nil, fmt.Errorf("plan archives for source %s: %w", source.ID, err)
			}
		}

		if source.ScanMode == entity.ScanModeArchivesOnly || !settings.ProcessGalleries() {
			continue
		}
		if err := p.planGalleries(ctx, base, source, settings, idx, flatten, dupAvailable, warnOnce, summary, &actions); err != nil {
			return nil, fmt.Errorf("plan galleries for source %s: %w", source.ID, err)
		}
	}

	return &entity.ScanResult{Summary: summary, Actions: actions}, nil
}

func (p *Planner) planArchives(ctx context.Context, base string, source entity.Source, settings entity.Settings, idx *exclusion.Index, flatten *resolver.FlattenMap, dupAvailable bool, warnOnce func(), summary *entity.ScanSummary, actions *[]entity.PlanAction) error {
	archives, err := walker.ArchiveFiles(base, p.roots.DataRoot, settings.ArchiveExtensions)
	if err != nil {
		return err
	}

	for _, archive := range archives {
		if idx.Excludes(archive.RelPath) {
			continue
		}

		physical, virtual := resolver.Resolve(p.roots.OutputRoot, archive.RelPath, settings.ReplicateNesting, settings.LanraragiFlatten, flatten)

		sig, err := signature.Archive(archive.Path)
		if err != nil {
			return err
		}
		sigValue := entity.NewArchiveSignatureValue(sig)

		action := entity.PlanAction{
			Action:         entity.ActionCopyArchive,
			Type:           entity.ItemTypeArchive,
			SourcePath:     archive.Path,
			TargetPath:     physical,
			VirtualTarget:  virtual,
			RelativeSource: archive.RelPath,
			Signature:      &sigValue,
			Similarity:     ptr(1.0),
			Bytes:          &sig.Size,
			Decision:       entity.DecisionCopy,
		}

		info, statErr := os.Stat(physical)
		if statErr != nil {
			summary.Register(action)
			*actions = append(*actions, action)
			continue
		}

		record, hasRecord, err := p.store.Get(ctx, physical)
		if err != nil {
			return err
		}
		if hasRecord && record.Signature.Equal(sigValue) {
			action.Decision = entity.DecisionSkip
			action.ReasonCode = entity.ReasonSkipExistingUnchanged
			summary.Register(action)
			*actions = append(*actions, action)
			continue
		}

		if info.Size() == sig.Size {
			action.Decision = entity.DecisionSkip
			action.ReasonCode = entity.ReasonSkipDuplicateSameSize
			summary.Register(action)
			*actions = append(*actions, action)
			continue
		}

		if settings.DuplicatesEnabled && dupAvailable {
			action.Decision = entity.DecisionCopyDuplicate
			action.TargetPath = filepath.Join(p.roots.DuplicatesRoot, archive.RelPath)
		} else {
			action.Decision = entity.DecisionRename
			action.TargetPath = renamedPath(physical)
			warnOnce()
		}
		action.ReasonCode = entity.ReasonSkipOutputConflict
		summary.Register(action)
		*actions = append(*actions, action)
	}

	return nil
}

func (p *Planner) planGalleries(ctx context.Context, base string, source entity.Source, settings entity.Settings, idx *exclusion.Index, flatten *resolver.FlattenMap, dupAvailable bool, warnOnce func(), summary *entity.ScanSummary, actions *[]entity.PlanAction) error {
	result, err := walker.Walk(base, settings.ImageExtensions)
	if err != nil {
		return err
	}

	candidates := classifier.Classify(result, settings)
	var galleryRelDirs []string
	type gallery struct {
		relDir   string
		path     string
		images   []string
		sidecars []string
	}
	var galleries []gallery

	for _, c := range candidates {
		if !c.Qualifies {
			if c.ReasonCode == "" {
				continue
			}
			*actions = append(*actions, registerAndReturn(summary, entity.PlanAction{
				Action:         entity.ActionScanGallery,
				Type:           entity.ItemTypeGallery,
				SourcePath:     filepath.Join(base, c.RelDir),
				RelativeSource: filepath.Join(source.Path, c.RelDir),
				Decision:       entity.DecisionSkip,
				ReasonCode:     c.ReasonCode,
			}))
			continue
		}

		absDir := filepath.Join(base, c.RelDir)
		images, err := walker.GatherImages(absDir, settings.ImageExtensions, settings.ConsiderImagesInSubfolders)
		if err != nil {
			return err
		}
		var sidecars []string
		if settings.CopySidecars {
			sidecars, err = walker.GatherSidecars(absDir, settings.SidecarExtensions, settings.ConsiderImagesInSubfolders)
			if err != nil {
				return err
			}
		}
		sourceRelDir := filepath.Join(source.Path, c.RelDir)
		galleryRelDirs = append(galleryRelDirs, c.RelDir)
		galleries = append(galleries, gallery{relDir: sourceRelDir, path: absDir, images: images, sidecars: sidecars})
	}

	containers := classifier.ContainerDirs(result, galleryRelDirs)
	if (settings.ReplicateNesting && !settings.LanraragiFlatten) || settings.HasOutputMode(entity.OutputModeFolderCopy) {
		for _, containerRelDir := range containers {
			sourceRelDir := filepath.Join(source.Path, containerRelDir)
			virtualRel := resolver.VirtualPath(sourceRelDir, settings.ReplicateNesting)
			target := filepath.Join(p.roots.OutputRoot, virtualRel)
			*actions = append(*actions, registerAndReturn(summary, entity.PlanAction{
				Action:         entity.ActionEnsureOutputDir,
				Type:           entity.ItemTypeContainer,
				SourcePath:     filepath.Join(base, containerRelDir),
				TargetPath:     target,
				RelativeSource: sourceRelDir,
				Decision:       entity.DecisionEnsureDir,
			}))
		}
	}

	sort.Slice(galleries, func(i, j int) bool { return galleries[i].relDir < galleries[j].relDir })

	for _, g := range galleries {
		if idx.Excludes(g.relDir) {
			continue
		}

		if len(g.images) == 0 {
			*actions = append(*actions, registerAndReturn(summary, entity.PlanAction{
				Action:         entity.ActionScanGallery,
				Type:           entity.ItemTypeGallery,
				SourcePath:     g.path,
				RelativeSource: g.relDir,
				Decision:       entity.DecisionSkip,
				ReasonCode:     entity.ReasonSkipNoImages,
			}))
			continue
		}

		sig, err := signature.Gallery(g.images)
		if err != nil {
			return err
		}
		sigValue := entity.NewGallerySignatureValue(sig)

		if settings.HasOutputMode(entity.OutputModeZip) {
			action, err := p.planZip(ctx, g.relDir, g.path, g.images, sig, sigValue, settings, flatten, dupAvailable, warnOnce)
			if err != nil {
				return err
			}
			action.Images = g.images
			action.Sidecars = g.sidecars
			summary.Register(action)
			*actions = append(*actions, action)
		}

		if settings.HasOutputMode(entity.OutputModeFolderCopy) {
			action, err := p.planFolderCopy(ctx, g.relDir, g.path, sig, sigValue, settings)
			if err != nil {
				return err
			}
			action.Images = g.images
			action.Sidecars = g.sidecars
			summary.Register(action)
			*actions = append(*actions, action)
		}
	}

	return nil
}

func (p *Planner) planZip(ctx context.Context, relDir, path string, images []string, sig entity.GallerySignature, sigValue entity.Signature, settings entity.Settings, flatten *resolver.FlattenMap, dupAvailable bool, warnOnce func()) (entity.PlanAction, error) {
	ext := string(settings.ArchiveExtensionForGalleries)
	relFile := filepath.Join(filepath.Dir(relDir), filepath.Base(relDir)+"."+ext)
	target, virtual := resolver.Resolve(p.roots.OutputRoot, relFile, settings.ReplicateNesting, settings.LanraragiFlatten, flatten)

	action := entity.PlanAction{
		Action:         entity.ActionZipGallery,
		Type:           entity.ItemTypeGallery,
		SourcePath:     path,
		TargetPath:     target,
		VirtualTarget:  virtual,
		RelativeSource: relDir,
		Signature:      &sigValue,
		Similarity:     ptr(smetrics.JaroWinkler(filepath.Base(path), filepath.Base(relDir), 0.7, 4)),
		Bytes:          &sig.TotalImageBytes,
		Decision:       entity.DecisionZip,
	}

	if _, err := os.Stat(target); err != nil {
		return action, nil
	}

	record, hasRecord, err := p.store.Get(ctx, target)
	if err != nil {
		return entity.PlanAction{}, err
	}
	if hasRecord && record.Signature.Equal(sigValue) {
		action.Decision = entity.DecisionSkip
		action.ReasonCode = entity.ReasonSkipDuplicateSameSignature
		return action, nil
	}

	if settings.UpdateGalleryZips {
		action.Action = entity.ActionOverwriteZip
		action.Decision = entity.DecisionUpdate
		return action, nil
	}

	if settings.DuplicatesEnabled && dupAvailable {
		action.Decision = entity.DecisionCopyDuplicate
		action.TargetPath = filepath.Join(p.roots.DuplicatesRoot, relDir, filepath.Base(relDir)+"."+ext)
	} else {
		action.Decision = entity.DecisionRename
		action.TargetPath = renamedPath(target)
		warnOnce()
	}
	action.ReasonCode = entity.ReasonSkipOutputConflict
	return action, nil
}

func (p *Planner) planFolderCopy(ctx context.Context, relDir, path string, sig entity.GallerySignature, sigValue entity.Signature, settings entity.Settings) (entity.PlanAction, error) {
	virtualRel := resolver.VirtualPath(relDir, settings.ReplicateNesting)
	target := filepath.Join(p.roots.OutputRoot, virtualRel)

	action := entity.PlanAction{
		Action:         entity.ActionFolderCopy,
		Type:           entity.ItemTypeGallery,
		SourcePath:     path,
		TargetPath:     target,
		RelativeSource: relDir,
		Signature:      &sigValue,
		Bytes:          &sig.TotalImageBytes,
		Decision:       entity.DecisionFolderCopy,
	}

	_, statErr := os.Stat(target)
	exists := statErr == nil

	record, hasRecord, err := p.store.Get(ctx, target)
	if err != nil {
		return entity.PlanAction{}, err
	}
	sameSignature := hasRecord && record.Signature.Equal(sigValue)

	if exists && sameSignature {
		action.Decision = entity.DecisionSkip
		action.ReasonCode = entity.ReasonSkipDuplicateSameSignature
		return action, nil
	}
	if exists && !settings.UpdateGalleryZips {
		action.Decision = entity.DecisionSkip
		action.ReasonCode = entity.ReasonSkipOutputConflict
		return action, nil
	}

	return action, nil
}

func registerAndReturn(summary *entity.ScanSummary, action entity.PlanAction) entity.PlanAction {
	summary.Register(action)
	return action
}

func renamedPath(target string) string {
	ext := filepath.Ext(target)
	stem := target[:len(target)-len(ext)]
	return fmt.Sprintf("%s_DUP_%d%s", stem, time.Now().Unix(), ext)
}

func ptr[T any](v T) *T { return &v }
