package activity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galleryloom/gallerysync/internal/entity"
)

func TestLogAppendsEntry(t *testing.T) {
	s := NewSink(10)
	s.Log(entity.ActivityWarn, "source path missing", map[string]any{"source_id": "abc"}, "job-1")

	recent := s.Recent(0)
	require.Len(t, recent, 1)
	require.Equal(t, entity.ActivityWarn, recent[0].Level)
	require.Equal(t, "job-1", recent[0].JobID)
}

func TestSinkEvictsOldestPastCapacity(t *testing.T) {
	s := NewSink(3)
	for i := 0; i < 5; i++ {
		s.Log(entity.ActivityInfo, fmt.Sprintf("entry-%d", i), nil, "")
	}

	recent := s.Recent(0)
	require.Len(t, recent, 3)
	require.Equal(t, "entry-2", recent[0].Message)
	require.Equal(t, "entry-4", recent[2].Message)
}

func TestRecentRespectsLimit(t *testing.T) {
	s := NewSink(10)
	for i := 0; i < 5; i++ {
		s.Log(entity.ActivityInfo, fmt.Sprintf("entry-%d", i), nil, "")
	}

	recent := s.Recent(2)
	require.Len(t, recent, 2)
	require.Equal(t, "entry-3", recent[0].Message)
	require.Equal(t, "entry-4", recent[1].Message)
}
