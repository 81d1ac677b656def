// Package validator implements the parallel incremental validator (§4.C):
// full, rule-subset, and change-scoped validation modes over a repository,
// with result caching and a bounded worker pool.
package validator

import "time"

// Outcome is the closed enumeration of per-rule check results.
type Outcome string

const (
	OutcomePass    Outcome = "PASS"
	OutcomeFail    Outcome = "FAIL"
	OutcomePartial Outcome = "PARTIAL"
	OutcomeSkip    Outcome = "SKIP"
)

// CacheState records whether a result came from a fresh check or cache.
type CacheState string

const (
	CacheFresh  CacheState = "FRESH"
	CacheCached CacheState = "CACHED"
)

// Mode is the validation mode a report was produced under.
type Mode string

const (
	ModeFull        Mode = "FULL"
	ModeIncremental Mode = "INCREMENTAL"
	ModeRuleSubset  Mode = "RULE_SUBSET"
)

// Result is the output of one rule applied to the repository (§3
// ValidationResult).
type Result struct {
	RuleID     string     `json:"rule_id"`
	Outcome    Outcome    `json:"outcome"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Evidence   any        `json:"evidence,omitempty"`
	DurationMs int64      `json:"duration_ms"`
	CacheState CacheState `json:"cache_state"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Report is an aggregated validation run (§3 ValidationReport).
type Report struct {
	RunID              string         `json:"run_id"`
	SnapshotDigest      string         `json:"repository_snapshot_digest"`
	Results            []Result       `json:"results"`
	CountsByOutcome    map[Outcome]int `json:"counts_by_outcome"`
	CountsBySeverity   map[string]int  `json:"counts_by_severity"`
	Score              float64        `json:"score"`
	Mode               Mode           `json:"mode"`
	Cancelled          bool           `json:"cancelled"`
}

// Check is the signature every generated rule check stub implements.
type Check func(repo RepoReader) Result

// RepoReader is the minimal surface a Check needs; satisfied by
// pkg/repository.Reader (declared separately to avoid a cyclic import).
type RepoReader interface {
	Exists(path string) bool
	Read(path string) ([]byte, error)
	List(path, pattern string) ([]string, error)
}

// computeScore implements §3's ValidationReport invariant:
// score = (passes / total_applicable) * 100.
func computeScore(results []Result) float64 {
	applicable := 0
	passes := 0
	for _, r := range results {
		if r.Outcome == OutcomeSkip {
			continue
		}
		applicable++
		if r.Outcome == OutcomePass {
			passes++
		}
	}
	if applicable == 0 {
		return 100
	}
	return (float64(passes) / float64(applicable)) * 100
}

func summarize(results []Result) (map[Outcome]int, map[string]int) {
	byOutcome := map[Outcome]int{}
	bySeverity := map[string]int{}
	for _, r := range results {
		byOutcome[r.Outcome]++
		bySeverity[r.Severity]++
	}
	return byOutcome, bySeverity
}
