package integrity

import (
	"math"

	"github.com/scie-systems/scie-core/pkg/config"
	"github.com/scie-systems/scie-core/pkg/scieerr"
	"github.com/scie-systems/scie-core/pkg/validator"
	"github.com/scie-systems/scie-core/pkg/worm"
)

// Vector is the three-component IntegrityVector (§3, §4.E).
type Vector struct {
	X float64
	Y float64
	Z float64
}

// Magnitude computes |V| = sqrt(x²+y²+z²)/sqrt(3), weighted per the axis
// weights the caller supplies (§9 Open Question: weights are
// config-exposed, not inferred).
func (v Vector) Magnitude(weights config.IntegrityWeights) float64 {
	wx, wy, wz := v.X*weights.X, v.Y*weights.Y, v.Z*weights.Z
	return math.Sqrt(wx*wx+wy*wy+wz*wz) / math.Sqrt(3)
}

// ComputeVector implements §4.E's "compute_vector(repo, chain, report)".
func ComputeVector(report *validator.Report, verification worm.VerificationResult, totalEntries int, timestampsMonotone bool, reversedPairs, totalPairs int) Vector {
	x := structuralCoverage(report)
	y := contentIntegrity(verification, totalEntries)
	z := temporalCoherence(timestampsMonotone, reversedPairs, totalPairs)
	return Vector{X: x, Y: y, Z: z}
}

// structuralCoverage computes x = (passed_CRITICAL + passed_HIGH) /
// (total_CRITICAL + total_HIGH); 0 if the denominator is zero.
func structuralCoverage(report *validator.Report) float64 {
	if report == nil {
		return 0
	}
	var passedCritHigh, totalCritHigh int
	for _, r := range report.Results {
		if r.Severity != "CRITICAL" && r.Severity != "HIGH" {
			continue
		}
		totalCritHigh++
		if r.Outcome == validator.OutcomePass {
			passedCritHigh++
		}
	}
	if totalCritHigh == 0 {
		return 0
	}
	return float64(passedCritHigh) / float64(totalCritHigh)
}

// contentIntegrity computes y = 1 if the chain verifies clean, else the
// proportional decay 1 - (chain_breaks / total_entries).
func contentIntegrity(verification worm.VerificationResult, totalEntries int) float64 {
	if verification.Valid {
		return 1
	}
	if totalEntries == 0 {
		return 0
	}
	return 1 - (float64(len(verification.Breaks)) / float64(totalEntries))
}

// temporalCoherence computes z = 1 if timestamps are monotone, else
// 1 - (reversed_pairs / total_pairs).
func temporalCoherence(monotone bool, reversedPairs, totalPairs int) float64 {
	if monotone || totalPairs == 0 {
		return 1
	}
	return 1 - (float64(reversedPairs) / float64(totalPairs))
}

// ComparisonStatus is the closed set of release-comparison outcomes
// (§4.E "Release comparison").
type ComparisonStatus string

const (
	StatusImprovement      ComparisonStatus = "IMPROVEMENT"
	StatusStable           ComparisonStatus = "STABLE"
	StatusDegradation      ComparisonStatus = "DEGRADATION"
	StatusCriticalDecline  ComparisonStatus = "CRITICAL_DECLINE"
)

// Action is what the caller should do given a ComparisonStatus.
type Action string

const (
	ActionApprove    Action = "APPROVE"
	ActionInvestigate Action = "INVESTIGATE"
	ActionBlock      Action = "BLOCK"
)

// Comparison is the output of compare_vectors.
type Comparison struct {
	DeltaMagnitude float64
	DeltaX, DeltaY, DeltaZ float64
	Status         ComparisonStatus
	Action         Action
	FocusDimension string // the axis with the largest absolute delta
}

// CompareVectors implements §4.E's decision table. baselineAbsent signals
// the BASELINE_ABSENT recovery path (§4.E "Failure semantics").
func CompareVectors(baseline, current Vector, weights config.IntegrityWeights, baselineAbsent bool) (Comparison, error) {
	if baselineAbsent {
		return Comparison{}, scieerr.New(scieerr.BaselineAbsent, "no baseline vector recorded; caller should create one from current")
	}

	deltaMag := current.Magnitude(weights) - baseline.Magnitude(weights)
	dx, dy, dz := current.X-baseline.X, current.Y-baseline.Y, current.Z-baseline.Z

	var status ComparisonStatus
	var action Action
	switch {
	case deltaMag >= 0.05:
		status, action = StatusImprovement, ActionApprove
	case deltaMag > -0.03:
		status, action = StatusStable, ActionApprove
	case deltaMag > -0.10:
		status, action = StatusDegradation, ActionInvestigate
	default:
		status, action = StatusCriticalDecline, ActionBlock
	}

	focus := focusDimension(dx, dy, dz)

	return Comparison{
		DeltaMagnitude: deltaMag,
		DeltaX:         dx, DeltaY: dy, DeltaZ: dz,
		Status: status, Action: action, FocusDimension: focus,
	}, nil
}

func focusDimension(dx, dy, dz float64) string {
	ax, ay, az := math.Abs(dx), math.Abs(dy), math.Abs(dz)
	switch {
	case ax >= ay && ax >= az:
		return "x"
	case ay >= ax && ay >= az:
		return "y"
	default:
		return "z"
	}
}
