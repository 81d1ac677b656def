package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/scie-systems/scie-core/pkg/controller"
	"github.com/scie-systems/scie-core/pkg/integrity"
	"github.com/scie-systems/scie-core/pkg/validator"
)

// runAutopilotCmd implements `scie autopilot`: the continuous
// monitor-validate-tune cycle (SPEC_FULL "Supplemented: the continuous
// autonomous cycle"), grounded on original_source's
// autonomous_controller.py / complete_autonomous_orchestrator.py minus
// their HEALING/self-repair phase, which SCIE deliberately excludes.
//
// Each cycle runs a full validation, feeds the resulting |V| and the
// current best-known detection rate into the adaptive controller, and
// records both to the WORM chain, exactly as one `validate` + `tune`
// invocation would — the only difference is that autopilot repeats this
// on a timer instead of requiring an external scheduler to invoke the CLI.
//
// Exit codes: 0 = ran to completion (--cycles > 0) with the final cycle
// healthy, 1 = final cycle degraded, 2 = runtime error.
func runAutopilotCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("autopilot", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		repoRoot      string
		corpusRoot    string
		cycles        int
		intervalSecs  int
		detectionRate float64
	)
	cmd.StringVar(&repoRoot, "repo", ".", "Repository root to validate")
	cmd.StringVar(&corpusRoot, "corpus", ".", "Source-of-truth corpus root")
	cmd.IntVar(&cycles, "cycles", 1, "Number of cycles to run (0 = run until killed)")
	cmd.IntVar(&intervalSecs, "interval", -1, "Seconds between cycles (defaults to config.CycleIntervalSeconds)")
	cmd.Float64Var(&detectionRate, "detection-rate", 1.0, "Adversarial detection rate feeding the controller, absent a fresh `adversary` run")
	if err := cmd.Parse(args); err != nil {
		return 2
	}

	rt, err := setupRuntime(repoRoot, corpusRoot)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	interval := time.Duration(rt.cfg.CycleIntervalSeconds) * time.Second
	if intervalSecs >= 0 {
		interval = time.Duration(intervalSecs) * time.Second
	}

	checks := buildChecks(rt.ruleSet)
	mapping := fileRuleMapping(rt.ruleSet)
	cache := validator.NewMemoryCache()
	val := validator.New(rt.repo, checks, rt.ruleSet, mapping, cache, rt.cfg.WorkerCount)
	writer := chainEvidenceWriter{chain: rt.chain}

	var status string
	for cycle := 1; cycles == 0 || cycle <= cycles; cycle++ {
		status, err = runAutopilotCycle(rt, val, writer, detectionRate, stdout)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		if cycles == 0 || cycle < cycles {
			time.Sleep(interval)
		}
	}

	if status == "HEALTHY" {
		return 0
	}
	return 1
}

// runAutopilotCycle runs one monitor-validate-tune iteration and returns a
// HEALTHY/DEGRADED status line, a narrower analog of
// autonomous_controller.py's HealthReport.
func runAutopilotCycle(rt *runtime, val *validator.Validator, writer chainEvidenceWriter, detectionRate float64, stdout io.Writer) (string, error) {
	ctx, done := rt.obs.TrackOperation(context.Background(), "autopilot_cycle")

	digest, err := snapshotDigestHex(rt.repo)
	if err != nil {
		done(err)
		return "", err
	}

	report, err := val.ValidateAll(ctx, digest)
	done(err)
	if err != nil {
		return "", err
	}
	rt.obs.Logger().InfoContext(ctx, "autopilot cycle validated", "score", report.Score)

	if _, err := rt.chain.Append(report); err != nil {
		fmt.Fprintln(stdout, "warning: failed to record validation evidence entry:", err)
	}

	tail, err := rt.store.TailSequence()
	if err != nil {
		return "", err
	}
	verification, err := rt.chain.VerifyChain(1, tail)
	if err != nil {
		return "", err
	}
	totalPairs := 0
	if tail > 1 {
		totalPairs = int(tail - 1)
	}
	vector := integrity.ComputeVector(report, verification, int(tail), true, 0, totalPairs)
	magnitude := vector.Magnitude(rt.cfg.IntegrityWeights)

	initial, _, err := latestControllerState(rt)
	if err != nil {
		return "", err
	}
	ctrl := controller.New(rt.cfg, initial)
	result := ctrl.Step(magnitude, detectionRate)
	if _, err := ctrl.Persist(writer, result); err != nil {
		fmt.Fprintln(stdout, "warning: failed to persist controller state:", err)
	}

	status := "HEALTHY"
	if report.Score < rt.cfg.Setpoint*100 || detectionRate < rt.cfg.DetectionRateFloor || result.Convergence == controller.Diverging {
		status = "DEGRADED"
	}

	fmt.Fprintf(stdout, "cycle score=%.2f |V|=%.4f convergence=%s status=%s\n",
		report.Score, magnitude, result.Convergence, status)
	return status, nil
}
