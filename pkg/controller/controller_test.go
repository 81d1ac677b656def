package controller

import (
	"testing"

	"github.com/scie-systems/scie-core/pkg/config"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Setpoint:           0.70,
		KP:                 0.4,
		KI:                 0.05,
		KD:                 0.1,
		UMax:               0.05,
		IMax:               0.15,
		WindowSize:         5,
		DetectionRateFloor: 0.98,
		MIThreshold:        0.5,
		DensityThreshold:   0.05,
	}
}

func TestStep_ErrorAndIntegralClamping(t *testing.T) {
	cfg := testConfig()
	c := New(cfg, nil)

	result := c.Step(0.20, 1.0) // far below setpoint: large positive error
	require.InDelta(t, 0.50, result.Error, 1e-9)
	require.InDelta(t, 0.15, result.Integral, 1e-9) // clamped to I_max
	require.InDelta(t, 0.05, result.Control, 1e-9)  // clamped to U_max
}

func TestStep_ThresholdDistributionAndGlobalClamp(t *testing.T) {
	cfg := testConfig()
	c := New(cfg, nil)

	result := c.Step(0.20, 1.0)
	require.InDelta(t, cfg.MIThreshold+0.5*result.Control, result.Thresholds.MIThreshold, 1e-9)
	// 0.05 + 0.3*0.05 = 0.065 is below the global floor, so it clamps to 0.20.
	require.InDelta(t, 0.20, result.Thresholds.DensityThreshold, 1e-9)
	require.GreaterOrEqual(t, result.Thresholds.MIThreshold, 0.20)
	require.LessOrEqual(t, result.Thresholds.MIThreshold, 0.80)
}

func TestConvergence_Classification(t *testing.T) {
	cfg := testConfig()

	c := New(cfg, nil)
	r1 := c.Step(0.705, 1.0) // |e| = 0.005, within 0.01 => converged even on cycle 1? spec checks |e|<=0.01 first
	require.Equal(t, Converged, r1.Convergence)

	c2 := New(cfg, nil)
	r2 := c2.Step(0.40, 1.0) // |e| = 0.30 > 0.10, but cycles < 3 => LEARNING per spec precedence
	require.Equal(t, Learning, r2.Convergence)

	c2.Step(0.40, 1.0)
	r4 := c2.Step(0.40, 1.0) // cycles = 3 now, |e| > 0.10 => DIVERGENT
	require.Equal(t, Diverging, r4.Convergence)
}

func TestTrendRecommendations_BelowFloorTriggersReinforcement(t *testing.T) {
	cfg := testConfig()
	c := New(cfg, nil)

	result := c.Step(0.70, 0.90)
	require.Contains(t, result.Recommendations, PolicyReinforcement)
}

func TestTrendRecommendations_DegradingTriggersPolicyReview(t *testing.T) {
	cfg := testConfig()
	c := New(cfg, nil)

	c.Step(0.70, 1.0)
	c.Step(0.70, 0.99)
	result := c.Step(0.70, 0.95)
	require.Contains(t, result.Recommendations, PolicyReview)
}

func TestSnapshotAndRestore_RoundTrips(t *testing.T) {
	cfg := testConfig()
	c := New(cfg, nil)
	c.Step(0.60, 1.0)
	snap := c.Snapshot()

	restored, ok := Restore([]Record{{State: snap}})
	require.True(t, ok)
	require.Equal(t, snap.Cycles, restored.Cycles)

	resumed := New(cfg, restored)
	require.Equal(t, snap.Thresholds, resumed.Snapshot().Thresholds)
}

func TestRestore_EmptyRecordsReturnsFalse(t *testing.T) {
	_, ok := Restore(nil)
	require.False(t, ok)
}
