package controller

import "math"

// Anomaly is the closed set of Bollinger-band classifications for the
// current cycle's Δ|V| against its rolling window (§4.F "Anomaly
// detection").
type Anomaly string

const (
	AnomalyNone            Anomaly = "NONE"
	AnomalyNegativeOutlier Anomaly = "NEGATIVE_OUTLIER"
	AnomalyPositiveOutlier Anomaly = "POSITIVE_OUTLIER"
)

func pushWindow(window []float64, sample float64, size int) []float64 {
	out := append(append([]float64{}, window...), sample)
	if len(out) > size {
		out = out[len(out)-size:]
	}
	return out
}

func meanStdDev(window []float64) (mean, stddev float64) {
	if len(window) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	mean = sum / float64(len(window))

	var variance float64
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(window))
	return mean, math.Sqrt(variance)
}

// bandFactor widens decision bands in a noisy environment (σ > 0.03) and
// tightens them in a quiet one (σ < 0.01), per §4.F "Rolling window".
func bandFactor(stddev float64) float64 {
	switch {
	case stddev > 0.03:
		return 1.3
	case stddev < 0.01:
		return 0.7
	default:
		return 1.0
	}
}

// classifyAnomaly applies Bollinger bands (μ ± 1.5σ, widened/tightened by
// bandFactor) to the latest sample (§4.F "Anomaly detection").
func classifyAnomaly(window []float64, latest float64) Anomaly {
	if len(window) < 2 {
		return AnomalyNone
	}
	mean, stddev := meanStdDev(window)
	if stddev == 0 {
		return AnomalyNone
	}
	width := 1.5 * bandFactor(stddev) * stddev

	switch {
	case latest < mean-width:
		return AnomalyNegativeOutlier
	case latest > mean+width:
		return AnomalyPositiveOutlier
	default:
		return AnomalyNone
	}
}

func pushHistory(history []float64, sample float64, size int) []float64 {
	return pushWindow(history, sample, size)
}

// trendRecommendations implements §4.F's trend-driven policy overlay.
func trendRecommendations(latest float64, history []float64, floor float64) []Recommendation {
	var recs []Recommendation

	if floor == 0 {
		floor = 0.98
	}
	if latest < floor {
		recs = append(recs, PolicyReinforcement)
	}
	if latest >= 1.0 && isStable(history) {
		recs = append(recs, IncreaseFuzzingDiversity)
	}
	if isDegrading(history) {
		recs = append(recs, PolicyReview)
	}

	return recs
}

func isStable(history []float64) bool {
	if len(history) < 3 {
		return false
	}
	for _, v := range history {
		if v < 1.0 {
			return false
		}
	}
	return true
}

func isDegrading(history []float64) bool {
	if len(history) < 3 {
		return false
	}
	for i := 1; i < len(history); i++ {
		if history[i] >= history[i-1] {
			return false
		}
	}
	return true
}
