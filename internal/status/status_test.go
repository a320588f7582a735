package status

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galleryloom/gallerysync/internal/entity"
)

func TestNewReporterStartsStandby(t *testing.T) {
	r := NewReporter()
	require.Equal(t, entity.StateStandby, r.Current().State)
}

func TestProgressClampsToOne(t *testing.T) {
	r := NewReporter()
	r.Progress(5, 3, "overrun", false)
	current := r.Current()
	require.Equal(t, entity.StateScanning, current.State)
	require.NotNil(t, current.Progress)
	require.Equal(t, 1.0, *current.Progress)
}

func TestProgressNilWhenNothingPlanned(t *testing.T) {
	r := NewReporter()
	r.Progress(0, 0, "idle scan", true)
	require.Nil(t, r.Current().Progress)
}

func TestStandbyClearsProgress(t *testing.T) {
	r := NewReporter()
	r.Progress(1, 2, "working", true)
	r.Standby("done")
	current := r.Current()
	require.Equal(t, entity.StateStandby, current.State)
	require.Nil(t, current.Progress)
}
