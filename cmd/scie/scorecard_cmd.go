package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/scie-systems/scie-core/pkg/validator"
)

// runScorecardCmd implements `scie scorecard`: prints the score breakdown
// of the most recently recorded validation report.
//
// Exit codes: 0 = report found, 1 = no report recorded yet, 2 = runtime error.
func runScorecardCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("scorecard", flag.ContinueOnError)
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

	report, found, err := latestReport(rt)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if !found {
		fmt.Fprintln(stdout, "no validation report recorded yet; run `scie validate` first")
		return 1
	}

	printReport(stdout, report)
	for severity, count := range report.CountsBySeverity {
		fmt.Fprintf(stdout, "  severity %s: %d\n", severity, count)
	}
	return 0
}

// latestReport scans the WORM chain from the tail backward for the most
// recent entry whose payload decodes as a validation report.
func latestReport(rt *runtime) (*validator.Report, bool, error) {
	tail, err := rt.store.TailSequence()
	if err != nil {
		return nil, false, err
	}
	for seq := tail; seq >= 1; seq-- {
		entry, ok, err := rt.chain.Read(seq)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		var report validator.Report
		if err := decodePayload(entry.Payload, &report); err == nil && report.SnapshotDigest != "" {
			return &report, true, nil
		}
	}
	return nil, false, nil
}
