package executor

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/galleryloom/gallerysync/internal/activity"
	"github.com/galleryloom/gallerysync/internal/entity"
	"github.com/galleryloom/gallerysync/internal/status"
)

type fakeStore struct {
	records map[string]entity.ArchiveRecord
}

func newFakeStore() *fakeStore { return &fakeStore{records: make(map[string]entity.ArchiveRecord)} }

func (f *fakeStore) Get(_ context.Context, targetPath string) (entity.ArchiveRecord, bool, error) {
	r, ok := f.records[targetPath]
	return r, ok, nil
}

func (f *fakeStore) Upsert(_ context.Context, targetPath, sourcePath string, recordType entity.RecordType, sig entity.Signature, virtualTargetPath string, now time.Time) error {
	f.records[targetPath] = entity.ArchiveRecord{TargetPath: targetPath, SourcePath: sourcePath, Type: recordType, Signature: sig, VirtualTargetPath: virtualTargetPath, UpdatedAt: now, LastSeenAt: now}
	return nil
}

func (f *fakeStore) Touch(_ context.Context, targetPath string, now time.Time) error {
	if r, ok := f.records[targetPath]; ok {
		r.LastSeenAt = now
		f.records[targetPath] = r
	}
	return nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]entity.ArchiveRecord, error) { return nil, nil }
func (f *fakeStore) ListByType(_ context.Context, types ...entity.RecordType) ([]entity.ArchiveRecord, error) {
	return nil, nil
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunCopiesArchive(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	writeFile(t, filepath.Join(srcRoot, "a.zip"), "archive-bytes")

	store := newFakeStore()
	ex := New(store, activity.NewSink(10), status.NewReporter(), entity.Roots{}, false, nil)

	sig := entity.NewArchiveSignatureValue(entity.ArchiveSignature{Size: 13})
	result := &entity.ScanResult{
		Summary: entity.NewScanSummary(),
		Actions: []entity.PlanAction{{
			Action: entity.ActionCopyArchive, Type: entity.ItemTypeArchive,
			SourcePath: filepath.Join(srcRoot, "a.zip"), TargetPath: filepath.Join(outRoot, "a.zip"),
			Decision: entity.DecisionCopy, Signature: &sig,
		}},
	}

	require.NoError(t, ex.Run(context.Background(), result, false))

	data, err := os.ReadFile(filepath.Join(outRoot, "a.zip"))
	require.NoError(t, err)
	require.Equal(t, "archive-bytes", string(data))
	require.Contains(t, store.records, filepath.Join(outRoot, "a.zip"))
}

func TestDryRunWritesNothing(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	writeFile(t, filepath.Join(srcRoot, "a.zip"), "archive-bytes")

	store := newFakeStore()
	ex := New(store, activity.NewSink(10), status.NewReporter(), entity.Roots{}, false, nil)

	sig := entity.NewArchiveSignatureValue(entity.ArchiveSignature{Size: 13})
	result := &entity.ScanResult{
		Summary: entity.NewScanSummary(),
		Actions: []entity.PlanAction{{
			Action: entity.ActionCopyArchive, Type: entity.ItemTypeArchive,
			SourcePath: filepath.Join(srcRoot, "a.zip"), TargetPath: filepath.Join(outRoot, "a.zip"),
			Decision: entity.DecisionCopy, Signature: &sig,
		}},
	}

	require.NoError(t, ex.Run(context.Background(), result, true))

	_, err := os.Stat(filepath.Join(outRoot, "a.zip"))
	require.True(t, os.IsNotExist(err))
	require.Empty(t, store.records)
}

func TestRunWritesZipWithImageEntries(t *testing.T) {
	srcDir := t.TempDir()
	outRoot := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "1.jpg"), "one")
	writeFile(t, filepath.Join(srcDir, "2.jpg"), "two")

	store := newFakeStore()
	ex := New(store, activity.NewSink(10), status.NewReporter(), entity.Roots{}, false, nil)

	sig := entity.NewGallerySignatureValue(entity.GallerySignature{ImageCount: 2})
	target := filepath.Join(outRoot, "gallery.zip")
	images := []string{filepath.Join(srcDir, "1.jpg"), filepath.Join(srcDir, "2.jpg")}
	result := &entity.ScanResult{
		Summary: entity.NewScanSummary(),
		Actions: []entity.PlanAction{{
			Action: entity.ActionZipGallery, Type: entity.ItemTypeGallery,
			SourcePath: srcDir, TargetPath: target, Decision: entity.DecisionZip, Signature: &sig,
			Images: images,
		}},
	}

	require.NoError(t, ex.Run(context.Background(), result, false))

	zr, err := zip.OpenReader(target)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 2)
}

func TestRunFolderCopyCopiesOnlyPlannedFiles(t *testing.T) {
	srcDir := t.TempDir()
	outRoot := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "1.jpg"), "one")
	writeFile(t, filepath.Join(srcDir, "2.jpg"), "two")
	writeFile(t, filepath.Join(srcDir, "notes.nfo"), "sidecar")
	writeFile(t, filepath.Join(srcDir, "readme.txt"), "not planned")

	store := newFakeStore()
	ex := New(store, activity.NewSink(10), status.NewReporter(), entity.Roots{}, false, nil)

	sig := entity.NewGallerySignatureValue(entity.GallerySignature{ImageCount: 2})
	target := filepath.Join(outRoot, "gallery")
	result := &entity.ScanResult{
		Summary: entity.NewScanSummary(),
		Actions: []entity.PlanAction{{
			Action: entity.ActionFolderCopy, Type: entity.ItemTypeGallery,
			SourcePath: srcDir, TargetPath: target, Decision: entity.DecisionFolderCopy, Signature: &sig,
			Images:   []string{filepath.Join(srcDir, "1.jpg"), filepath.Join(srcDir, "2.jpg")},
			Sidecars: []string{filepath.Join(srcDir, "notes.nfo")},
		}},
	}

	require.NoError(t, ex.Run(context.Background(), result, false))

	require.FileExists(t, filepath.Join(target, "1.jpg"))
	require.FileExists(t, filepath.Join(target, "2.jpg"))
	require.FileExists(t, filepath.Join(target, "notes.nfo"))
	_, err := os.Stat(filepath.Join(target, "readme.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestRunSkipActionTouchesRecord(t *testing.T) {
	outRoot := t.TempDir()
	target := filepath.Join(outRoot, "a.zip")

	store := newFakeStore()
	store.records[target] = entity.ArchiveRecord{TargetPath: target}
	ex := New(store, activity.NewSink(10), status.NewReporter(), entity.Roots{}, false, nil)

	result := &entity.ScanResult{
		Summary: entity.NewScanSummary(),
		Actions: []entity.PlanAction{{
			Decision: entity.DecisionSkip, TargetPath: target, ReasonCode: entity.ReasonSkipExistingUnchanged,
		}},
	}

	require.NoError(t, ex.Run(context.Background(), result, false))
	require.False(t, store.records[target].LastSeenAt.IsZero())
}

func TestRunEnsureDirCreatesDirectory(t *testing.T) {
	outRoot := t.TempDir()
	target := filepath.Join(outRoot, "container", "nested")

	store := newFakeStore()
	ex := New(store, activity.NewSink(10), status.NewReporter(), entity.Roots{}, false, nil)

	result := &entity.ScanResult{
		Summary: entity.NewScanSummary(),
		Actions: []entity.PlanAction{{Decision: entity.DecisionEnsureDir, TargetPath: target}},
	}

	require.NoError(t, ex.Run(context.Background(), result, false))
	info, err := os.Stat(target)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
