package diffengine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/galleryloom/gallerysync/internal/entity"
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
	f.records[targetPath] = entity.ArchiveRecord{TargetPath: targetPath, SourcePath: sourcePath, Type: recordType, Signature: sig, VirtualTargetPath: virtualTargetPath}
	return nil
}
func (f *fakeStore) Touch(_ context.Context, targetPath string, now time.Time) error { return nil }
func (f *fakeStore) ListAll(_ context.Context) ([]entity.ArchiveRecord, error) {
	var out []entity.ArchiveRecord
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}
func (f *fakeStore) ListByType(_ context.Context, types ...entity.RecordType) ([]entity.ArchiveRecord, error) {
	return nil, nil
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func defaultSettings() entity.Settings {
	s := entity.NewDefaultSettings()
	s.MinImagesToBeGallery = 1
	return s
}

func TestDiffReportsNewArchive(t *testing.T) {
	dataRoot := t.TempDir()
	outputRoot := t.TempDir()
	writeFile(t, filepath.Join(dataRoot, "src", "a.zip"), 10)

	store := newFakeStore()
	e := New(store, entity.Roots{DataRoot: dataRoot, OutputRoot: outputRoot})
	settings := defaultSettings()
	settings.OutputModes = map[entity.OutputMode]bool{}
	sources := []entity.Source{{ID: "s1", Path: "src", Enabled: true, ScanMode: entity.ScanModeArchivesOnly}}

	result, err := e.Diff(context.Background(), settings, sources, nil)
	require.NoError(t, err)
	require.Len(t, result.New, 1)
	require.Empty(t, result.Changed)
	require.Empty(t, result.Unchanged)
}

func TestDiffReportsUnchangedWhenSignatureMatches(t *testing.T) {
	dataRoot := t.TempDir()
	outputRoot := t.TempDir()
	archivePath := filepath.Join(dataRoot, "src", "a.zip")
	writeFile(t, archivePath, 10)
	target := filepath.Join(outputRoot, "src", "a.zip")

	info, err := os.Stat(archivePath)
	require.NoError(t, err)
	mtime := float64(info.ModTime().UnixNano()) / 1e9

	store := newFakeStore()
	store.records[target] = entity.ArchiveRecord{
		TargetPath: target, SourcePath: archivePath, Type: entity.RecordTypeArchive,
		Signature: entity.NewArchiveSignatureValue(entity.ArchiveSignature{Size: 10, Mtime: mtime}),
	}

	e := New(store, entity.Roots{DataRoot: dataRoot, OutputRoot: outputRoot})
	settings := defaultSettings()
	settings.OutputModes = map[entity.OutputMode]bool{}
	sources := []entity.Source{{ID: "s1", Path: "src", Enabled: true, ScanMode: entity.ScanModeArchivesOnly}}

	result, err := e.Diff(context.Background(), settings, sources, nil)
	require.NoError(t, err)
	require.Len(t, result.Unchanged, 1)
	require.Empty(t, result.New)
}

func TestDiffReportsMissingWhenSourceGone(t *testing.T) {
	dataRoot := t.TempDir()
	outputRoot := t.TempDir()

	store := newFakeStore()
	store.records["/out/ghost.zip"] = entity.ArchiveRecord{
		TargetPath: "/out/ghost.zip", SourcePath: "/data/ghost.zip", Type: entity.RecordTypeArchive,
		Signature: entity.NewArchiveSignatureValue(entity.ArchiveSignature{Size: 1}),
	}

	e := New(store, entity.Roots{DataRoot: dataRoot, OutputRoot: outputRoot})
	result, err := e.Diff(context.Background(), defaultSettings(), nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Missing, 1)
	require.Equal(t, "/out/ghost.zip", result.Missing[0].TargetPath)
}

func TestDiffReportsChangedWhenSignatureDiffers(t *testing.T) {
	dataRoot := t.TempDir()
	outputRoot := t.TempDir()
	archivePath := filepath.Join(dataRoot, "src", "a.zip")
	writeFile(t, archivePath, 10)
	target := filepath.Join(outputRoot, "src", "a.zip")

	store := newFakeStore()
	store.records[target] = entity.ArchiveRecord{
		TargetPath: target, SourcePath: archivePath, Type: entity.RecordTypeArchive,
		Signature: entity.NewArchiveSignatureValue(entity.ArchiveSignature{Size: 999}),
	}

	e := New(store, entity.Roots{DataRoot: dataRoot, OutputRoot: outputRoot})
	settings := defaultSettings()
	settings.OutputModes = map[entity.OutputMode]bool{}
	sources := []entity.Source{{ID: "s1", Path: "src", Enabled: true, ScanMode: entity.ScanModeArchivesOnly}}

	result, err := e.Diff(context.Background(), settings, sources, nil)
	require.NoError(t, err)
	require.Len(t, result.Changed, 1)
}
