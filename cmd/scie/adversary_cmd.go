package main

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/scie-systems/scie-core/pkg/integrity"
)

// runAdversaryCmd implements `scie adversary`: runs the adversarial
// simulation suite (§4.E "Adversarial simulator") and reports the
// detection rate against the configured floor.
//
// Exit codes: 0 = detection rate at or above the floor, 1 = below the
// floor, 2 = runtime error.
func runAdversaryCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("adversary", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		repoRoot    string
		corpusRoot  string
		seed        int64
		noCleanup   bool
	)
	cmd.StringVar(&repoRoot, "repo", ".", "Repository root")
	cmd.StringVar(&corpusRoot, "corpus", ".", "Source-of-truth corpus root")
	cmd.Int64Var(&seed, "seed", time.Now().UnixNano(), "Deterministic seed for the attack fixtures")
	cmd.BoolVar(&noCleanup, "no-cleanup", false, "Retain the attack scratch directories for inspection")
	if err := cmd.Parse(args); err != nil {
		return 2
	}

	rt, err := setupRuntime(repoRoot, corpusRoot)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	scratchRoot := filepath.Join(repoRoot, stateDir, "adversary-scratch")
	analyzer := integrity.NewAnalyzer(rt.cfg, scratchRoot)

	report, err := analyzer.RunAdversarialSuite(seed, noCleanup)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	fmt.Fprintf(stdout, "Seed: %d  Detection rate: %.2f\n", report.Seed, report.DetectionRate)
	for _, r := range report.Results {
		status := "DETECTED"
		if !r.Detected {
			status = "MISSED"
		}
		fmt.Fprintf(stdout, "  %-22s %s  %s\n", r.Kind, status, r.Detail)
	}

	if report.DetectionRate >= rt.cfg.DetectionRateFloor {
		return 0
	}
	return 1
}
