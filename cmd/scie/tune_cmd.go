package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/scie-systems/scie-core/pkg/controller"
	"github.com/scie-systems/scie-core/pkg/integrity"
)

// runTuneCmd implements `scie tune`: runs one adaptive-controller cycle
// (§4.F) against the current integrity vector magnitude, resuming from the
// last persisted controller state if one exists.
//
// Exit codes: 0 = cycle ran, the controller is converged, converging or
// still learning, and no anomaly was flagged, 1 = the cycle flagged an
// anomaly or divergence, 2 = runtime error.
func runTuneCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("tune", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		repoRoot       string
		corpusRoot     string
		magnitude      float64
		detectionRate  float64
		haveMagnitude  bool
	)
	cmd.StringVar(&repoRoot, "repo", ".", "Repository root")
	cmd.StringVar(&corpusRoot, "corpus", ".", "Source-of-truth corpus root")
	cmd.Func("magnitude", "Override |V| instead of computing it from the last report", func(v string) error {
		_, err := fmt.Sscanf(v, "%g", &magnitude)
		haveMagnitude = err == nil
		return err
	})
	cmd.Float64Var(&detectionRate, "detection-rate", 1.0, "Adversarial detection rate feeding the controller's trend recommendations")
	if err := cmd.Parse(args); err != nil {
		return 2
	}

	rt, err := setupRuntime(repoRoot, corpusRoot)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if !haveMagnitude {
		magnitude, err = currentVectorMagnitude(rt)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}

	initial, _, err := latestControllerState(rt)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	ctrl := controller.New(rt.cfg, initial)

	result := ctrl.Step(magnitude, detectionRate)

	writer := chainEvidenceWriter{chain: rt.chain}
	if _, err := ctrl.Persist(writer, result); err != nil {
		fmt.Fprintln(stderr, "warning: failed to persist controller state:", err)
	}

	fmt.Fprintf(stdout, "|V|=%.4f  error=%.4f  control=%.4f  convergence=%s  anomaly=%s\n",
		magnitude, result.Error, result.Control, result.Convergence, result.Anomaly)
	fmt.Fprintf(stdout, "thresholds: MI=%.3f density=%.3f aggressiveness=%.3f\n",
		result.Thresholds.MIThreshold, result.Thresholds.DensityThreshold, result.Thresholds.LinkingAggressiveness)
	for _, rec := range result.Recommendations {
		fmt.Fprintf(stdout, "  recommendation: %s\n", rec)
	}

	if result.Convergence == controller.Diverging || result.Anomaly != controller.AnomalyNone {
		return 1
	}
	return 0
}

// currentVectorMagnitude computes |V| from the most recently recorded
// validation report and a full chain verification, treating an absent
// timestamp-reversal count as zero (no adversarial simulation has run yet
// in this cycle).
func currentVectorMagnitude(rt *runtime) (float64, error) {
	report, found, err := latestReport(rt)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("scie: no validation report recorded yet; run `scie validate` first")
	}

	tail, err := rt.store.TailSequence()
	if err != nil {
		return 0, err
	}
	verification, err := rt.chain.VerifyChain(1, tail)
	if err != nil {
		return 0, err
	}

	totalPairs := 0
	if tail > 1 {
		totalPairs = int(tail - 1)
	}
	vector := integrity.ComputeVector(report, verification, int(tail), true, 0, totalPairs)
	return vector.Magnitude(rt.cfg.IntegrityWeights), nil
}
