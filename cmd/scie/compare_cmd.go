package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/scie-systems/scie-core/pkg/integrity"
)

// runCompareCmd implements `scie compare --baseline V --new V`: runs
// compare_vectors (§4.E) over two explicitly supplied IntegrityVectors,
// each given as a comma-separated "x,y,z" triple.
//
// Exit codes: 0 = APPROVE, 1 = INVESTIGATE, 2 = BLOCK or runtime error.
func runCompareCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("compare", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var repoRoot, corpusRoot, baselineRaw, newRaw string
	cmd.StringVar(&repoRoot, "repo", ".", "Repository root")
	cmd.StringVar(&corpusRoot, "corpus", ".", "Source-of-truth corpus root")
	cmd.StringVar(&baselineRaw, "baseline", "", "Baseline vector as x,y,z")
	cmd.StringVar(&newRaw, "new", "", "New vector as x,y,z")
	if err := cmd.Parse(args); err != nil {
		return 2
	}

	if baselineRaw == "" || newRaw == "" {
		fmt.Fprintln(stderr, "scie compare: both --baseline and --new are required")
		return 2
	}

	baseline, err := parseVector(baselineRaw)
	if err != nil {
		fmt.Fprintln(stderr, "scie compare: --baseline:", err)
		return 2
	}
	current, err := parseVector(newRaw)
	if err != nil {
		fmt.Fprintln(stderr, "scie compare: --new:", err)
		return 2
	}

	rt, err := setupRuntime(repoRoot, corpusRoot)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	comparison, err := integrity.CompareVectors(baseline, current, rt.cfg.IntegrityWeights, false)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	fmt.Fprintf(stdout, "Delta|V|=%.4f  status=%s  action=%s  focus=%s\n",
		comparison.DeltaMagnitude, comparison.Status, comparison.Action, comparison.FocusDimension)
	fmt.Fprintf(stdout, "  dx=%.4f dy=%.4f dz=%.4f\n", comparison.DeltaX, comparison.DeltaY, comparison.DeltaZ)

	switch comparison.Action {
	case integrity.ActionApprove:
		return 0
	case integrity.ActionInvestigate:
		return 1
	default:
		return 2
	}
}

func parseVector(raw string) (integrity.Vector, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return integrity.Vector{}, fmt.Errorf("expected x,y,z but got %q", raw)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return integrity.Vector{}, fmt.Errorf("invalid component %q: %w", p, err)
		}
		vals[i] = v
	}
	return integrity.Vector{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}
