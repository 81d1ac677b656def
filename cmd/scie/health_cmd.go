package main

import (
	"flag"
	"fmt"
	"io"
)

// runHealthCmd implements `scie health`: a cheap liveness check of the
// evidence chain (tail readable, recent entries present) without the full
// verify-chain scan.
//
// Exit codes: 0 = healthy, 1 = chain empty (nothing recorded yet),
// 2 = runtime error.
func runHealthCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("health", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var repoRoot, corpusRoot string
	cmd.StringVar(&repoRoot, "repo", ".", "Repository root")
	cmd.StringVar(&corpusRoot, "corpus", ".", "Source-of-truth corpus root")
	if err := cmd.Parse(args); err != nil {
		return 2
	}

	rt, err := setupRuntime(repoRoot, corpusRoot)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	tail, err := rt.store.TailSequence()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	fmt.Fprintf(stdout, "Repository: %s\n", repoRoot)
	fmt.Fprintf(stdout, "Rules loaded: %d\n", len(rt.ruleSet.Rules))
	fmt.Fprintf(stdout, "WORM tail sequence: %d\n", tail)

	state, found, err := latestControllerState(rt)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if found {
		fmt.Fprintf(stdout, "Controller cycles: %d  convergence thresholds: MI=%.3f density=%.3f aggressiveness=%.3f\n",
			state.Cycles, state.Thresholds.MIThreshold, state.Thresholds.DensityThreshold, state.Thresholds.LinkingAggressiveness)
	} else {
		fmt.Fprintln(stdout, "Controller: no cycles recorded yet")
	}

	if tail == 0 {
		return 1
	}
	return 0
}
