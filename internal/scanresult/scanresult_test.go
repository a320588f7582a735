package scanresult

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galleryloom/gallerysync/internal/entity"
)

func TestLastReturnsNilBeforeAnyScan(t *testing.T) {
	c := NewCache()
	require.Nil(t, c.Last(true))
	require.Nil(t, c.Last(false))
}

func TestStoreKeepsDryRunAndAppliedSeparate(t *testing.T) {
	c := NewCache()
	dry := &entity.ScanResult{Summary: entity.NewScanSummary()}
	applied := &entity.ScanResult{Summary: entity.NewScanSummary()}

	c.Store(dry, true)
	c.Store(applied, false)

	require.Same(t, dry, c.Last(true))
	require.Same(t, applied, c.Last(false))
}
