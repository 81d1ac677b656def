// Package controller implements the Adaptive Integrity Controller (§4.F):
// a discrete PID loop with windup prevention that keeps |V| near a
// setpoint by adjusting the Integrity Analyzer's clustering thresholds,
// plus a rolling-window anomaly detector and a trend-driven policy
// overlay. Grounded on the teacher's pkg/kernel/retry/backoff.go
// (deterministic, input-derived numeric control) and
// pkg/util/resiliency/client.go's CircuitBreaker (mutex-guarded clamped
// state machine).
package controller

import (
	"sync"

	"github.com/scie-systems/scie-core/pkg/config"
)

const (
	globalMin = 0.20
	globalMax = 0.80
)

// Thresholds are the Integrity Analyzer knobs the controller regulates.
type Thresholds struct {
	MIThreshold            float64
	DensityThreshold       float64
	LinkingAggressiveness  float64
}

// State is the controller's persisted state (§3 ControllerState).
type State struct {
	Window               []float64 // last N samples of Δ|V|, oldest first
	Integral             float64   // clamped to ±I_max
	LastError            float64
	LastMagnitude        float64
	HasLastMagnitude     bool
	Thresholds           Thresholds
	Cycles               int
	DetectionRateHistory []float64 // last 3 adversarial detection rates
}

// Controller runs the §4.F control law against a live State.
type Controller struct {
	mu    sync.Mutex
	state State
	cfg   *config.Config
}

// New constructs a Controller seeded with the configured setpoint
// thresholds, or restores prior state if given (see persistence.go).
func New(cfg *config.Config, initial *State) *Controller {
	c := &Controller{cfg: cfg}
	if initial != nil {
		c.state = *initial
		return c
	}
	c.state = State{
		Thresholds: Thresholds{
			MIThreshold:           cfg.MIThreshold,
			DensityThreshold:      cfg.DensityThreshold,
			LinkingAggressiveness: 0.5,
		},
	}
	return c
}

// Convergence is the closed set of classifications for |e(t)| (§4.F).
type Convergence string

const (
	Converged  Convergence = "CONVERGED"
	Learning   Convergence = "LEARNING"
	Diverging  Convergence = "DIVERGENT"
	Converging Convergence = "CONVERGING"
)

// Recommendation is the closed set of trend-driven policy overlays.
type Recommendation string

const (
	PolicyReinforcement      Recommendation = "POLICY_REINFORCEMENT"
	IncreaseFuzzingDiversity Recommendation = "INCREASE_FUZZING_DIVERSITY"
	PolicyReview             Recommendation = "POLICY_REVIEW"
)

// StepResult is the full output of one control cycle.
type StepResult struct {
	Error          float64
	Integral       float64
	Derivative     float64
	Control        float64
	Thresholds     Thresholds
	Convergence    Convergence
	Anomaly        Anomaly
	Recommendations []Recommendation
}

// Step runs one control cycle given the current |V| and the adversarial
// suite's latest detection rate, updating and returning the new state.
func (c *Controller) Step(vMagnitude, detectionRate float64) StepResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.cfg.Setpoint - vMagnitude

	iMax := c.cfg.IMax
	if iMax == 0 {
		iMax = 0.15
	}
	integral := clamp(c.state.Integral+e, -iMax, iMax)

	derivative := e - c.state.LastError

	uMax := c.cfg.UMax
	if uMax == 0 {
		uMax = 0.05
	}
	u := clamp(c.cfg.KP*e+c.cfg.KI*integral+c.cfg.KD*derivative, -uMax, uMax)

	newThresholds := Thresholds{
		MIThreshold:           clampGlobal(c.state.Thresholds.MIThreshold + 0.5*u),
		DensityThreshold:      clampGlobal(c.state.Thresholds.DensityThreshold + 0.3*u),
		LinkingAggressiveness: clampGlobal(c.state.Thresholds.LinkingAggressiveness + 0.2*u),
	}

	var deltaV float64
	if c.state.HasLastMagnitude {
		deltaV = vMagnitude - c.state.LastMagnitude
	}
	window := pushWindow(c.state.Window, deltaV, windowSize(c.cfg))
	anomaly := classifyAnomaly(window, deltaV)

	c.state.Cycles++
	convergence := classifyConvergence(e, c.state.Cycles)

	history := pushHistory(c.state.DetectionRateHistory, detectionRate, 3)
	recs := trendRecommendations(detectionRate, history, c.cfg.DetectionRateFloor)

	c.state.Integral = integral
	c.state.LastError = e
	c.state.LastMagnitude = vMagnitude
	c.state.HasLastMagnitude = true
	c.state.Thresholds = newThresholds
	c.state.Window = window
	c.state.DetectionRateHistory = history

	return StepResult{
		Error:           e,
		Integral:        integral,
		Derivative:      derivative,
		Control:         u,
		Thresholds:      newThresholds,
		Convergence:     convergence,
		Anomaly:         anomaly,
		Recommendations: recs,
	}
}

// Snapshot returns a copy of the controller's current state, for
// persistence (§4.F "Persistence").
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func windowSize(cfg *config.Config) int {
	if cfg.WindowSize <= 0 {
		return 30
	}
	return cfg.WindowSize
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampGlobal(v float64) float64 {
	return clamp(v, globalMin, globalMax)
}

func classifyConvergence(e float64, cycles int) Convergence {
	abs := e
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs <= 0.01:
		return Converged
	case cycles < 3:
		return Learning
	case abs > 0.10:
		return Diverging
	default:
		return Converging
	}
}
