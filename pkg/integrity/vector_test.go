package integrity

import (
	"testing"

	"github.com/scie-systems/scie-core/pkg/config"
	"github.com/scie-systems/scie-core/pkg/scieerr"
	"github.com/scie-systems/scie-core/pkg/validator"
	"github.com/scie-systems/scie-core/pkg/worm"
	"github.com/stretchr/testify/require"
)

func sampleReport() *validator.Report {
	return &validator.Report{
		Results: []validator.Result{
			{RuleID: "r1", Severity: "CRITICAL", Outcome: validator.OutcomePass},
			{RuleID: "r2", Severity: "HIGH", Outcome: validator.OutcomeFail},
			{RuleID: "r3", Severity: "MEDIUM", Outcome: validator.OutcomeFail},
		},
	}
}

func TestComputeVector_StructuralCoverage(t *testing.T) {
	v := ComputeVector(sampleReport(), worm.VerificationResult{Valid: true}, 10, true, 0, 0)
	require.InDelta(t, 0.5, v.X, 1e-9) // 1 of 2 CRITICAL+HIGH passed
	require.Equal(t, 1.0, v.Y)
	require.Equal(t, 1.0, v.Z)
}

func TestComputeVector_NoCritHighRulesYieldsZeroCoverage(t *testing.T) {
	report := &validator.Report{Results: []validator.Result{
		{RuleID: "r1", Severity: "MEDIUM", Outcome: validator.OutcomePass},
	}}
	v := ComputeVector(report, worm.VerificationResult{Valid: true}, 1, true, 0, 0)
	require.Equal(t, 0.0, v.X)
}

func TestComputeVector_ChainBreaksDecayContentIntegrity(t *testing.T) {
	verification := worm.VerificationResult{
		Valid:  false,
		Breaks: []worm.ChainBreak{{Sequence: 3, Kind: worm.BreakHashMismatch}},
	}
	v := ComputeVector(sampleReport(), verification, 10, true, 0, 0)
	require.InDelta(t, 0.9, v.Y, 1e-9)
}

func TestComputeVector_ReversedPairsDecayTemporalCoherence(t *testing.T) {
	v := ComputeVector(sampleReport(), worm.VerificationResult{Valid: true}, 10, false, 2, 8)
	require.InDelta(t, 0.75, v.Z, 1e-9)
}

func TestMagnitude_EqualWeights(t *testing.T) {
	v := Vector{X: 1, Y: 1, Z: 1}
	weights := config.IntegrityWeights{X: 1, Y: 1, Z: 1}
	require.InDelta(t, 1.0, v.Magnitude(weights), 1e-9)
}

func TestCompareVectors_Improvement(t *testing.T) {
	weights := config.IntegrityWeights{X: 1, Y: 1, Z: 1}
	baseline := Vector{X: 0.5, Y: 0.5, Z: 0.5}
	current := Vector{X: 0.9, Y: 0.9, Z: 0.9}

	cmp, err := CompareVectors(baseline, current, weights, false)
	require.NoError(t, err)
	require.Equal(t, StatusImprovement, cmp.Status)
	require.Equal(t, ActionApprove, cmp.Action)
}

func TestCompareVectors_CriticalDecline(t *testing.T) {
	weights := config.IntegrityWeights{X: 1, Y: 1, Z: 1}
	baseline := Vector{X: 0.9, Y: 0.9, Z: 0.9}
	current := Vector{X: 0.3, Y: 0.3, Z: 0.3}

	cmp, err := CompareVectors(baseline, current, weights, false)
	require.NoError(t, err)
	require.Equal(t, StatusCriticalDecline, cmp.Status)
	require.Equal(t, ActionBlock, cmp.Action)
}

func TestCompareVectors_Stable(t *testing.T) {
	weights := config.IntegrityWeights{X: 1, Y: 1, Z: 1}
	baseline := Vector{X: 0.7, Y: 0.7, Z: 0.7}
	current := Vector{X: 0.71, Y: 0.71, Z: 0.71}

	cmp, err := CompareVectors(baseline, current, weights, false)
	require.NoError(t, err)
	require.Equal(t, StatusStable, cmp.Status)
}

func TestCompareVectors_BaselineAbsentReturnsTypedError(t *testing.T) {
	weights := config.IntegrityWeights{X: 1, Y: 1, Z: 1}
	_, err := CompareVectors(Vector{}, Vector{X: 1, Y: 1, Z: 1}, weights, true)
	require.Error(t, err)

	var scieErr *scieerr.Error
	require.ErrorAs(t, err, &scieErr)
	require.Equal(t, scieerr.BaselineAbsent, scieErr.Kind)
}

func TestFocusDimension_PicksLargestAbsoluteDelta(t *testing.T) {
	require.Equal(t, "y", focusDimension(0.01, -0.2, 0.05))
	require.Equal(t, "x", focusDimension(0.3, 0.1, 0.1))
	require.Equal(t, "z", focusDimension(0.0, 0.0, 0.5))
}
