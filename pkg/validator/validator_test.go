package validator

import (
	"context"
	"testing"
	"time"

	"github.com/scie-systems/scie-core/pkg/rule"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct{}

func (fakeRepo) Exists(path string) bool                   { return true }
func (fakeRepo) Read(path string) ([]byte, error)          { return []byte("ok"), nil }
func (fakeRepo) List(path, pattern string) ([]string, error) { return nil, nil }

func sampleRuleSetAndChecks() (*rule.CanonicalRuleSet, map[string]Check) {
	rs := &rule.CanonicalRuleSet{
		CorpusVersion: "1.0.0",
		Rules: []rule.Rule{
			{RuleID: "r1", Category: rule.CategoryTextReq, Severity: rule.SeverityHigh},
			{RuleID: "r2", Category: rule.CategoryTextReq, Severity: rule.SeverityMedium},
			{RuleID: "r3", Category: rule.CategoryListItem, Severity: rule.SeverityCritical},
		},
	}
	_ = rs.Finalize()
	checks := map[string]Check{
		"r1": func(repo RepoReader) Result { return Result{Outcome: OutcomePass} },
		"r2": func(repo RepoReader) Result { return Result{Outcome: OutcomeFail} },
		"r3": func(repo RepoReader) Result { return Result{Outcome: OutcomePass} },
	}
	return rs, checks
}

func TestValidateAll_ComputesScore(t *testing.T) {
	rs, checks := sampleRuleSetAndChecks()
	val := New(fakeRepo{}, checks, rs, &FileRuleMapping{}, NewMemoryCache(), 2)

	report, err := val.ValidateAll(context.Background(), "digest1")
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	require.InDelta(t, 200.0/3, report.Score, 1e-6)
	require.Equal(t, ModeFull, report.Mode)
}

func TestValidateRules_RunsOnlyRequested(t *testing.T) {
	rs, checks := sampleRuleSetAndChecks()
	val := New(fakeRepo{}, checks, rs, &FileRuleMapping{}, NewMemoryCache(), 2)

	report, err := val.ValidateRules(context.Background(), []string{"r1"}, "digest1")
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	require.Equal(t, "r1", report.Results[0].RuleID)
}

func TestValidateIncremental_FallsBackAboveThreshold(t *testing.T) {
	rs, checks := sampleRuleSetAndChecks()
	mapping := &FileRuleMapping{
		Patterns: map[string][]string{"*.yaml": {"r1", "r2", "r3"}},
	}
	val := New(fakeRepo{}, checks, rs, mapping, NewMemoryCache(), 2)

	report, err := val.ValidateIncremental(context.Background(), []string{"values.yaml"}, "digest1")
	require.NoError(t, err)
	require.Equal(t, ModeFull, report.Mode) // 3/3 affected exceeds 0.78 fallback fraction
}

func TestValidateIncremental_UsesCacheForUnaffected(t *testing.T) {
	rs, checks := sampleRuleSetAndChecks()
	cache := NewMemoryCache()
	mapping := &FileRuleMapping{Patterns: map[string][]string{"*.yaml": {"r1"}}}
	val := New(fakeRepo{}, checks, rs, mapping, cache, 2)

	// First full run populates the cache for every rule.
	_, err := val.ValidateAll(context.Background(), "digestA")
	require.NoError(t, err)

	report, err := val.ValidateIncremental(context.Background(), []string{"values.yaml"}, "digestA")
	require.NoError(t, err)

	var cachedCount int
	for _, r := range report.Results {
		if r.CacheState == CacheCached {
			cachedCount++
		}
	}
	require.Equal(t, 2, cachedCount) // r2, r3 unaffected and served from cache
}

func TestFileRuleMapping_AffectedRules_UnionsAlwaysRun(t *testing.T) {
	mapping := &FileRuleMapping{
		Patterns:  map[string][]string{"*.yaml": {"r1"}},
		AlwaysRun: []string{"r-always"},
	}
	affected := mapping.AffectedRules([]string{"values.yaml"})
	require.Contains(t, affected, "r1")
	require.Contains(t, affected, "r-always")
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCache().WithClock(func() time.Time { return now })

	key := CacheKey{RuleID: "r1", SnapshotDigest: "d", RuleVersion: "r1"}
	cache.Set(key, Result{RuleID: "r1", Outcome: OutcomePass}, time.Minute)

	_, ok := cache.Get(key)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get(key)
	require.False(t, ok)
}
