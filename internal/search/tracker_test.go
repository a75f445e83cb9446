package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitnessTracker_WritesCSVRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitness.csv")
	tracker, err := newFitnessTracker(path)
	require.NoError(t, err)

	require.NoError(t, tracker.Record(0, 1.5))
	require.NoError(t, tracker.Record(1, 3.25))
	require.NoError(t, tracker.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "generation,best_fitness\n0,1.500000\n1,3.250000\n", string(data))
}
