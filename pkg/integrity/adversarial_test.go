package integrity

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func readDirNames(dir string) ([]os.DirEntry, error) {
	return os.ReadDir(dir)
}

func TestSimulator_Run_DetectsEveryAttack(t *testing.T) {
	sim := NewSimulator(t.TempDir(), false)

	report, err := sim.Run(42)
	require.NoError(t, err)
	require.Len(t, report.Results, len(AllAttackKinds()))
	require.Equal(t, 1.0, report.DetectionRate)

	for _, r := range report.Results {
		require.True(t, r.Detected, "attack %s should be detected", r.Kind)
	}
}

func TestSimulator_Run_CleansUpScratchByDefault(t *testing.T) {
	root := t.TempDir()
	sim := NewSimulator(root, false)

	_, err := sim.Run(7)
	require.NoError(t, err)

	entries, err := readDirNames(root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSimulator_Run_RetainsScratchWhenRequested(t *testing.T) {
	root := t.TempDir()
	sim := NewSimulator(root, true)

	_, err := sim.Run(7)
	require.NoError(t, err)

	entries, err := readDirNames(root)
	require.NoError(t, err)
	require.Len(t, entries, len(AllAttackKinds()))
}
