package exclusion_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galleryloom/gallerysync/internal/entity"
	"github.com/galleryloom/gallerysync/internal/exclusion"
)

func TestExcludesExactMatch(t *testing.T) {
	idx := exclusion.NewIndex([]entity.Exclusion{{Path: "drafts"}})
	require.True(t, idx.Excludes("drafts"))
}

func TestExcludesDescendant(t *testing.T) {
	idx := exclusion.NewIndex([]entity.Exclusion{{Path: "drafts"}})
	require.True(t, idx.Excludes("drafts/volume1"))
}

func TestDoesNotExcludeSiblingWithSharedPrefix(t *testing.T) {
	idx := exclusion.NewIndex([]entity.Exclusion{{Path: "drafts"}})
	require.False(t, idx.Excludes("drafts2/volume1"))
}

func TestNoExclusionsExcludesNothing(t *testing.T) {
	idx := exclusion.NewIndex(nil)
	require.False(t, idx.Excludes("anything"))
}
