package integrity

import (
	"testing"

	"github.com/scie-systems/scie-core/pkg/config"
	"github.com/scie-systems/scie-core/pkg/validator"
	"github.com/scie-systems/scie-core/pkg/worm"
	"github.com/stretchr/testify/require"
)

func testAnalyzer() *Analyzer {
	return NewAnalyzer(&config.Config{
		IntegrityWeights:   config.IntegrityWeights{X: 1, Y: 1, Z: 1},
		MIThreshold:        5,
		DensityThreshold:   0.9,
		MaxLinksPerCluster: 5,
	}, "")
}

func TestAnalyzer_Assess_BaselineAbsentStillReturnsVector(t *testing.T) {
	a := testAnalyzer()

	snap, err := a.Assess(
		sampleReport(), worm.VerificationResult{Valid: true}, 10, true, 0, 0,
		sampleEntries(), nodeTypeBySeq, []string{"VALIDATION_RESULT", "ARTIFACT"},
		Vector{}, true,
	)
	require.NoError(t, err)
	require.Nil(t, snap.Comparison)
	require.InDelta(t, 0.5, snap.Vector.X, 1e-9)
}

func TestAnalyzer_Assess_WithBaselineProducesComparison(t *testing.T) {
	a := testAnalyzer()
	baseline := Vector{X: 0.1, Y: 0.1, Z: 0.1}

	snap, err := a.Assess(
		sampleReport(), worm.VerificationResult{Valid: true}, 10, true, 0, 0,
		sampleEntries(), nodeTypeBySeq, []string{"VALIDATION_RESULT", "ARTIFACT"},
		baseline, false,
	)
	require.NoError(t, err)
	require.NotNil(t, snap.Comparison)
	require.Equal(t, StatusImprovement, snap.Comparison.Status)
}

func TestAnalyzer_Assess_FlagsWeakClusterAndRelinks(t *testing.T) {
	a := testAnalyzer()

	snap, err := a.Assess(
		&validator.Report{}, worm.VerificationResult{Valid: true}, 1, true, 0, 0,
		sampleEntries(), nodeTypeBySeq, []string{"VALIDATION_RESULT", "ARTIFACT"},
		Vector{}, true,
	)
	require.NoError(t, err)
	require.NotEmpty(t, snap.WeakClusters)
	require.NotEmpty(t, snap.Relinks)
}

func TestAnalyzer_RunAdversarialSuite(t *testing.T) {
	a := NewAnalyzer(&config.Config{
		IntegrityWeights: config.IntegrityWeights{X: 1, Y: 1, Z: 1},
	}, t.TempDir())

	report, err := a.RunAdversarialSuite(1, false)
	require.NoError(t, err)
	require.Equal(t, 1.0, report.DetectionRate)
}
