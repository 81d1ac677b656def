package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/scie-systems/scie-core/pkg/validator"
)

// runValidateCmd implements `scie validate`.
//
// Exit codes:
//
//	0 = score at or above setpoint
//	1 = score below setpoint (investigate)
//	2 = runtime error
func runValidateCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		repoRoot    string
		corpusRoot  string
		incremental bool
		rulesFlag   string
		jsonOutput  bool
	)
	cmd.StringVar(&repoRoot, "repo", ".", "Repository root to validate")
	cmd.StringVar(&corpusRoot, "corpus", ".", "Source-of-truth corpus root")
	cmd.BoolVar(&incremental, "incremental", false, "Run incremental validation against the last snapshot")
	cmd.StringVar(&rulesFlag, "rules", "", "Comma-separated rule IDs to run (overrides --incremental)")
	cmd.BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	rt, err := setupRuntime(repoRoot, corpusRoot)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	checks := buildChecks(rt.ruleSet)
	mapping := fileRuleMapping(rt.ruleSet)
	cache := validator.NewMemoryCache()
	val := validator.New(rt.repo, checks, rt.ruleSet, mapping, cache, rt.cfg.WorkerCount)

	digest, err := snapshotDigestHex(rt.repo)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	ctx, done := rt.obs.TrackOperation(context.Background(), "validate_cycle")

	var report *validator.Report
	switch {
	case rulesFlag != "":
		report, err = val.ValidateRules(ctx, strings.Split(rulesFlag, ","), digest)
	case incremental:
		changed, cerr := rt.repo.ChangedFiles("HEAD~1", "HEAD")
		if cerr != nil {
			changed = nil // no git history: no rule is marked affected, and with this fresh cache every rule still runs
		}
		report, err = val.ValidateIncremental(ctx, changed, digest)
	default:
		report, err = val.ValidateAll(ctx, digest)
	}
	done(err)
	if err != nil {
		rt.obs.Logger().ErrorContext(ctx, "validate cycle failed", "error", err)
		fmt.Fprintln(stderr, err)
		return 2
	}
	rt.obs.Logger().InfoContext(ctx, "validate cycle complete", "mode", report.Mode, "score", report.Score)

	if jsonOutput {
		raw, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(stdout, string(raw))
	} else {
		printReport(stdout, report)
	}

	if _, err := rt.chain.Append(report); err != nil {
		fmt.Fprintln(stderr, "warning: failed to record evidence entry:", err)
	}

	if report.Score >= rt.cfg.Setpoint*100 {
		return 0
	}
	return 1
}

func printReport(w io.Writer, report *validator.Report) {
	fmt.Fprintf(w, "Mode: %s  Score: %.2f  Results: %d\n", report.Mode, report.Score, len(report.Results))
	for outcome, count := range report.CountsByOutcome {
		fmt.Fprintf(w, "  %s: %d\n", outcome, count)
	}
}
