package resolver_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galleryloom/gallerysync/internal/resolver"
)

func TestVirtualPathReplicatesNesting(t *testing.T) {
	got := resolver.VirtualPath(filepath.Join("series", "vol1", "cover.zip"), true)
	require.Equal(t, filepath.Join("series", "vol1", "cover.zip"), got)
}

func TestVirtualPathCollapsesDeepNesting(t *testing.T) {
	got := resolver.VirtualPath(filepath.Join("series", "vol1", "cover.zip"), false)
	require.Equal(t, filepath.Join("series", "cover.zip"), got)
}

func TestVirtualPathSingleSegmentUnaffected(t *testing.T) {
	require.Equal(t, "cover.zip", resolver.VirtualPath("cover.zip", false))
}

func TestResolveWithoutFlattenMatchesVirtual(t *testing.T) {
	physical, virtual := resolver.Resolve("/out", filepath.Join("a", "b.zip"), true, false, nil)
	require.Equal(t, virtual, physical)
}

func TestResolveFlattenDisambiguatesCollision(t *testing.T) {
	flatten := resolver.NewFlattenMap()
	first, _ := resolver.Resolve("/out", filepath.Join("a", "book.zip"), false, true, flatten)
	second, _ := resolver.Resolve("/out", filepath.Join("b", "book.zip"), false, true, flatten)

	require.Equal(t, filepath.Join("/out", "book.zip"), first)
	require.NotEqual(t, first, second)
	require.Contains(t, second, "book__")
}

func TestResolveFlattenSamePathIsStable(t *testing.T) {
	flatten := resolver.NewFlattenMap()
	first, _ := resolver.Resolve("/out", filepath.Join("a", "book.zip"), false, true, flatten)
	again, _ := resolver.Resolve("/out", filepath.Join("a", "book.zip"), false, true, flatten)
	require.Equal(t, first, again)
}
