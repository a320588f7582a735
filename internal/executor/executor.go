// Package executor materializes the actions a Planner accepted: it copies
// archives, writes gallery zips, and replicates folder-copy galleries, using
// the same atomic-write discipline (temp file, fsync, rename, cross-device
// .partial fallback) the original scan service used for every write that
// must never leave a half-written file behind.
package executor

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/galleryloom/gallerysync/internal/activity"
	"github.com/galleryloom/gallerysync/internal/entity"
	"github.com/galleryloom/gallerysync/internal/recordstore"
	"github.com/galleryloom/gallerysync/internal/status"
	"github.com/galleryloom/gallerysync/pkg/job"
)

// Executor carries out PlanAction values produced by internal/planner.
type Executor struct {
	store      recordstore.Store
	activities *activity.Sink
	reporter   *status.Reporter
	roots      entity.Roots
	useHardlinks bool
	log        *zap.SugaredLogger
}

// New returns an Executor writing under roots and recording outcomes in
// store, activities, and reporter.
func New(store recordstore.Store, activities *activity.Sink, reporter *status.Reporter, roots entity.Roots, useHardlinks bool, log *zap.SugaredLogger) *Executor {
	if log == nil {
		log = zap.S()
	}
	return &Executor{
		store:        store,
		activities:   activities,
		reporter:     reporter,
		roots:        roots,
		useHardlinks: useHardlinks,
		log:          log.Named("executor"),
	}
}

// Run executes every non-skip action in result, updating progress as it
// goes. dryRun true runs the exact same planning/progress bookkeeping but
// skips every filesystem write and record mutation.
func (e *Executor) Run(ctx context.Context, result *entity.ScanResult, dryRun bool) error {
	planned := 0
	for _, a := range result.Actions {
		if a.Decision != entity.DecisionSkip {
			planned++
		}
	}

	completed := 0
	e.reporter.Progress(completed, planned, "Scanning", dryRun)

	for _, a := range result.Actions {
		if err := ctx.Err(); err != nil {
			return err
		}

		if a.Decision == entity.DecisionSkip {
			if !dryRun && a.TargetPath != "" {
				if err := e.store.Touch(ctx, a.TargetPath, time.Now()); err != nil {
					e.log.Warnw("touch failed", "target", a.TargetPath, "error", err)
				}
			}
			continue
		}

		if err := e.execute(ctx, a, dryRun); err != nil {
			e.activities.Log(entity.ActivityError, fmt.Sprintf("action failed: %s", a.Action), map[string]any{
				"source": a.SourcePath, "target": a.TargetPath, "error": err.Error(),
			}, jobIDFrom(ctx))
			e.reporter.Error(err.Error(), map[string]any{"action": a.Action, "target": a.TargetPath})
			return fmt.Errorf("execute %s %s: %w", a.Action, a.TargetPath, err)
		}

		completed++
		e.reporter.Progress(completed, planned, fmt.Sprintf("Processed %s", a.RelativeSource), dryRun)
	}

	e.reporter.Standby("Scan complete")
	return nil
}

func jobIDFrom(ctx context.Context) string {
	if jc, ok := job.FromContext(ctx); ok {
		return jc.JobID
	}
	return ""
}

func (e *Executor) execute(ctx context.Context, a entity.PlanAction, dryRun bool) error {
	switch a.Decision {
	case entity.DecisionCopy, entity.DecisionCopyDuplicate, entity.DecisionRename:
		if a.Type != entity.ItemTypeArchive {
			return fmt.Errorf("unsupported copy decision for type %s", a.Type)
		}
		return e.copyArchive(ctx, a, dryRun)
	case entity.DecisionZip:
		return e.writeZip(ctx, a, dryRun)
	case entity.DecisionUpdate:
		if a.Action == entity.ActionOverwriteZip {
			return e.writeZip(ctx, a, dryRun)
		}
		return e.folderCopy(ctx, a, dryRun)
	case entity.DecisionFolderCopy:
		return e.folderCopy(ctx, a, dryRun)
	case entity.DecisionEnsureDir:
		return e.ensureDir(ctx, a, dryRun)
	default:
		return fmt.Errorf("unhandled decision %s", a.Decision)
	}
}

func (e *Executor) copyArchive(ctx context.Context, a entity.PlanAction, dryRun bool) error {
	if dryRun {
		return nil
	}
	if err := copyFile(a.SourcePath, a.TargetPath, e.useHardlinks); err != nil {
		return err
	}
	if err := e.store.Upsert(ctx, a.TargetPath, a.SourcePath, entity.RecordTypeArchive, *a.Signature, a.VirtualTarget, time.Now()); err != nil {
		return err
	}
	e.activities.Log(entity.ActivityInfo, "Archive copied", map[string]any{
		"source": a.SourcePath, "target": a.TargetPath, "decision": a.Decision,
	}, jobIDFrom(ctx))
	return nil
}

func (e *Executor) writeZip(ctx context.Context, a entity.PlanAction, dryRun bool) error {
	if dryRun {
		return nil
	}

	if err := writeZipAtomic(a.SourcePath, a.Images, a.TargetPath, e.roots); err != nil {
		return err
	}
	if err := e.store.Upsert(ctx, a.TargetPath, a.SourcePath, entity.RecordTypeGalleryZip, *a.Signature, a.VirtualTarget, time.Now()); err != nil {
		return err
	}
	e.activities.Log(entity.ActivityInfo, "Gallery zipped", map[string]any{
		"source": a.SourcePath, "target": a.TargetPath, "images": len(a.Images),
	}, jobIDFrom(ctx))
	return nil
}

func (e *Executor) folderCopy(ctx context.Context, a entity.PlanAction, dryRun bool) error {
	if dryRun {
		return nil
	}

	if err := os.MkdirAll(a.TargetPath, 0o755); err != nil {
		return fmt.Errorf("create target dir %s: %w", a.TargetPath, err)
	}

	for _, file := range append(append([]string{}, a.Images...), a.Sidecars...) {
		rel, err := filepath.Rel(a.SourcePath, file)
		if err != nil {
			return err
		}
		if err := copyFile(file, filepath.Join(a.TargetPath, rel), e.useHardlinks); err != nil {
			return fmt.Errorf("copy folder contents %s -> %s: %w", a.SourcePath, a.TargetPath, err)
		}
	}

	if err := e.store.Upsert(ctx, a.TargetPath, a.SourcePath, entity.RecordTypeFolderCopy, *a.Signature, a.VirtualTarget, time.Now()); err != nil {
		return err
	}
	e.activities.Log(entity.ActivityInfo, "Gallery folder copied", map[string]any{
		"source": a.SourcePath, "target": a.TargetPath,
	}, jobIDFrom(ctx))
	return nil
}

func (e *Executor) ensureDir(_ context.Context, a entity.PlanAction, dryRun bool) error {
	if dryRun {
		return nil
	}
	if err := os.MkdirAll(a.TargetPath, 0o755); err != nil {
		return fmt.Errorf("ensure dir %s: %w", a.TargetPath, err)
	}
	return nil
}

// copyFile copies src to dest, creating dest's parent directories first. If
// useHardlinks is set it tries os.Link before falling back to a full copy.
func copyFile(src, dest string, useHardlinks bool) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", dest, err)
	}

	if useHardlinks {
		if err := os.Link(src, dest); err == nil {
			return nil
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create dest %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s -> %s: %w", src, dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close dest %s: %w", dest, err)
	}

	if info, statErr := os.Stat(src); statErr == nil {
		_ = os.Chtimes(dest, time.Now(), info.ModTime())
	}
	return nil
}

// fsyncPath opens path read-only and fsyncs it, matching the original
// service's best-effort durability step; failures are non-fatal.
func fsyncPath(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}

func safeUnlink(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		zap.S().Debugw("failed to remove temp file", "path", path, "error", err)
	}
}

// createTempZipPath creates a temp file beside targetZip; if that fails
// (e.g. permissions) it falls back to the configured tmp root.
func createTempZipPath(targetZip string, roots entity.Roots) (path string, sameDevice bool, err error) {
	targetDir := filepath.Dir(targetZip)
	if mkErr := os.MkdirAll(targetDir, 0o755); mkErr == nil {
		f, tmpErr := os.CreateTemp(targetDir, filepath.Base(targetZip)+"_*.zip.tmp")
		if tmpErr == nil {
			name := f.Name()
			f.Close()
			return name, true, nil
		}
	}

	tmpRoot := roots.TempDir
	if tmpRoot == "" {
		tmpRoot = roots.TmpRoot
	}
	if err := os.MkdirAll(tmpRoot, 0o755); err != nil {
		return "", false, fmt.Errorf("create tmp root %s: %w", tmpRoot, err)
	}
	f, err := os.CreateTemp(tmpRoot, filepath.Base(targetZip)+"_*.zip.tmp")
	if err != nil {
		return "", false, fmt.Errorf("create temp zip: %w", err)
	}
	name := f.Name()
	f.Close()
	return name, false, nil
}

// writeZipAtomic writes image files into a zip at a temp path, then renames
// it into place. A rename across devices (EXDEV) falls back to a copy into
// a ".partial" sibling followed by a same-device rename.
func writeZipAtomic(sourceDir string, imageFiles []string, targetZip string, roots entity.Roots) (err error) {
	tempZip, _, err := createTempZipPath(targetZip, roots)
	if err != nil {
		return err
	}
	var partialPath string
	defer func() {
		safeUnlink(tempZip)
		safeUnlink(partialPath)
	}()

	if err := writeZipEntries(sourceDir, imageFiles, tempZip); err != nil {
		return fmt.Errorf("write zip entries: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(targetZip), 0o755); err != nil {
		return err
	}
	fsyncPath(tempZip)

	if err := os.Rename(tempZip, targetZip); err == nil {
		return nil
	} else if !isCrossDevice(err) {
		return fmt.Errorf("rename temp zip into place: %w", err)
	}

	partialPath = targetZip + ".partial"
	safeUnlink(partialPath)
	if err := copyFile(tempZip, partialPath, false); err != nil {
		return fmt.Errorf("cross-device copy to partial: %w", err)
	}
	fsyncPath(partialPath)
	if err := os.Rename(partialPath, targetZip); err != nil {
		return fmt.Errorf("rename partial into place: %w", err)
	}
	return nil
}

func isCrossDevice(err error) bool {
	return strings.Contains(err.Error(), "cross-device") || strings.Contains(err.Error(), "invalid cross-device link")
}

func writeZipEntries(sourceDir string, imageFiles []string, tempZip string) error {
	out, err := os.Create(tempZip)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, file := range imageFiles {
		arcname, err := filepath.Rel(sourceDir, file)
		if err != nil || strings.HasPrefix(arcname, "..") {
			arcname = filepath.Base(file)
		}

		w, err := zw.Create(filepath.ToSlash(arcname))
		if err != nil {
			return err
		}
		in, err := os.Open(file)
		if err != nil {
			return err
		}
		_, copyErr := io.Copy(w, in)
		in.Close()
		if copyErr != nil {
			return copyErr
		}
	}
	return zw.Close()
}
