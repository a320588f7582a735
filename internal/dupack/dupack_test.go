package dupack

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAcknowledgedMissingFileIsEmpty(t *testing.T) {
	require.Empty(t, LoadAcknowledged(t.TempDir()))
}

func TestMarkAcknowledgedPersistsAndMerges(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, MarkAcknowledged(dir, "/out/a.zip"))
	require.NoError(t, MarkAcknowledged(dir, "/out/b.zip", "/out/a.zip"))

	got := LoadAcknowledged(dir)
	require.Len(t, got, 2)
	require.True(t, got["/out/a.zip"])
	require.True(t, got["/out/b.zip"])
}

func TestLoadAcknowledgedCorruptFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(ackPath(dir), []byte("{not a json array"), 0o644))

	got := LoadAcknowledged(dir)
	require.Empty(t, got)
}
