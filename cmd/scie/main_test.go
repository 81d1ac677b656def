package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func emptyRepoAndCorpus(t *testing.T) (string, string) {
	t.Helper()
	repo := t.TempDir()
	corpus := t.TempDir()
	if err := os.WriteFile(filepath.Join(corpus, "policy.md"), []byte("# Empty policy corpus\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return repo, corpus
}

func TestRun_NoArgsPrintsUsageAndExits2(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"scie"}, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stdout.String(), "USAGE") {
		t.Fatalf("usage not printed: %s", stdout.String())
	}
}

func TestRun_UnknownCommandExits2(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"scie", "bogus"}, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "Unknown command") {
		t.Fatalf("expected unknown-command message, got: %s", stderr.String())
	}
}

func TestValidateThenScorecard_RoundTrip(t *testing.T) {
	repo, corpus := emptyRepoAndCorpus(t)

	var vout, verr bytes.Buffer
	code := Run([]string{"scie", "validate", "--repo", repo, "--corpus", corpus}, &vout, &verr)
	if code != 0 {
		t.Fatalf("validate exit = %d, stderr=%s", code, verr.String())
	}
	if !strings.Contains(vout.String(), "Mode: FULL") {
		t.Fatalf("expected FULL mode report, got: %s", vout.String())
	}

	var sout, serr bytes.Buffer
	code = runScorecardCmd([]string{"--repo", repo, "--corpus", corpus}, &sout, &serr)
	if code != 0 {
		t.Fatalf("scorecard exit = %d, stderr=%s", code, serr.String())
	}
	if !strings.Contains(sout.String(), "Mode: FULL") {
		t.Fatalf("expected recorded report in scorecard, got: %s", sout.String())
	}
}

func TestScorecard_NoReportYetReturns1(t *testing.T) {
	repo, corpus := emptyRepoAndCorpus(t)
	var out, errOut bytes.Buffer
	code := runScorecardCmd([]string{"--repo", repo, "--corpus", corpus}, &out, &errOut)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestVerifyChain_EmptyChainIsValid(t *testing.T) {
	repo, corpus := emptyRepoAndCorpus(t)
	var out, errOut bytes.Buffer
	code := runVerifyChainCmd([]string{"--repo", repo, "--corpus", corpus}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0, stderr=%s", code, errOut.String())
	}
}

func TestVerifyChain_AfterValidateIsValid(t *testing.T) {
	repo, corpus := emptyRepoAndCorpus(t)

	var vout, verr bytes.Buffer
	if code := runValidateCmd([]string{"--repo", repo, "--corpus", corpus}, &vout, &verr); code != 0 {
		t.Fatalf("validate exit = %d, stderr=%s", code, verr.String())
	}

	var out, errOut bytes.Buffer
	code := runVerifyChainCmd([]string{"--repo", repo, "--corpus", corpus}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0, stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "Valid: true") {
		t.Fatalf("expected a valid chain, got: %s", out.String())
	}
}

func TestHealth_ReportsRuleCountAndTail(t *testing.T) {
	repo, corpus := emptyRepoAndCorpus(t)
	var out, errOut bytes.Buffer
	code := runHealthCmd([]string{"--repo", repo, "--corpus", corpus}, &out, &errOut)
	if code != 1 { // empty chain
		t.Fatalf("exit code = %d, want 1, stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "no cycles recorded") {
		t.Fatalf("expected no-controller-cycles message, got: %s", out.String())
	}
	if !strings.Contains(out.String(), "Rules loaded: 0") || !strings.Contains(out.String(), "WORM tail sequence: 0") {
		t.Fatalf("expected rule count and tail sequence, got: %s", out.String())
	}
}

func TestAdversary_DetectsEveryAttack(t *testing.T) {
	repo, corpus := emptyRepoAndCorpus(t)
	var out, errOut bytes.Buffer
	code := runAdversaryCmd([]string{"--repo", repo, "--corpus", corpus, "--seed", "7"}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0, stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "Detection rate: 1.00") {
		t.Fatalf("expected full detection, got: %s", out.String())
	}
}

func TestCompare_ImprovementApproves(t *testing.T) {
	repo, corpus := emptyRepoAndCorpus(t)
	var out, errOut bytes.Buffer
	code := runCompareCmd([]string{
		"--repo", repo, "--corpus", corpus,
		"--baseline", "0.5,0.5,0.5",
		"--new", "0.9,0.9,0.9",
	}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0, stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "status=IMPROVEMENT") {
		t.Fatalf("expected improvement status, got: %s", out.String())
	}
}

func TestCompare_MissingFlagsReturns2(t *testing.T) {
	repo, corpus := emptyRepoAndCorpus(t)
	var out, errOut bytes.Buffer
	code := runCompareCmd([]string{"--repo", repo, "--corpus", corpus}, &out, &errOut)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestAutopilot_RunsFixedCycleCountAndRecordsState(t *testing.T) {
	repo, corpus := emptyRepoAndCorpus(t)

	var out, errOut bytes.Buffer
	code := runAutopilotCmd([]string{
		"--repo", repo, "--corpus", corpus,
		"--cycles", "2", "--interval", "0", "--detection-rate", "1.0",
	}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0, stderr=%s", code, errOut.String())
	}
	if strings.Count(out.String(), "cycle score=") != 2 {
		t.Fatalf("expected 2 recorded cycles, got: %s", out.String())
	}
	if !strings.Contains(out.String(), "status=HEALTHY") {
		t.Fatalf("expected a healthy cycle, got: %s", out.String())
	}

	var hout, herr bytes.Buffer
	runHealthCmd([]string{"--repo", repo, "--corpus", corpus}, &hout, &herr)
	if strings.Contains(hout.String(), "no cycles recorded") {
		t.Fatalf("expected controller cycles recorded by autopilot, got: %s", hout.String())
	}
}

func TestTune_RunsOneCycleFromLatestReport(t *testing.T) {
	repo, corpus := emptyRepoAndCorpus(t)

	var vout, verr bytes.Buffer
	if code := runValidateCmd([]string{"--repo", repo, "--corpus", corpus}, &vout, &verr); code != 0 {
		t.Fatalf("validate exit = %d, stderr=%s", code, verr.String())
	}

	var out, errOut bytes.Buffer
	code := runTuneCmd([]string{"--repo", repo, "--corpus", corpus, "--detection-rate", "1.0"}, &out, &errOut)
	if code != 0 && code != 1 {
		t.Fatalf("unexpected exit = %d, stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "convergence=") {
		t.Fatalf("expected convergence in output, got: %s", out.String())
	}

	// A second cycle should resume from the persisted controller state
	// rather than starting cold (Cycles should advance past 1).
	var out2, errOut2 bytes.Buffer
	runTuneCmd([]string{"--repo", repo, "--corpus", corpus, "--detection-rate", "1.0"}, &out2, &errOut2)

	var hout, herr bytes.Buffer
	runHealthCmd([]string{"--repo", repo, "--corpus", corpus}, &hout, &herr)
	if strings.Contains(hout.String(), "no cycles recorded") {
		t.Fatalf("expected controller cycles to be recorded, got: %s", hout.String())
	}
	if !strings.Contains(hout.String(), "Controller cycles: 2") {
		t.Fatalf("expected the second tune to resume at cycle 2, got: %s", hout.String())
	}
}
