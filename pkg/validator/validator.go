package validator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/scie-systems/scie-core/pkg/rule"
	"github.com/scie-systems/scie-core/pkg/scieerr"
	"golang.org/x/sync/semaphore"
)

// DefaultRuleTimeout is the per-rule check timeout (§5 "Timeouts").
const DefaultRuleTimeout = 300 * time.Second

// DefaultIncrementalFallbackFraction is the threshold above which an
// incremental run falls back to validate_all (§4.C step 5).
const DefaultIncrementalFallbackFraction = 0.78

// Validator executes rule checks against a repository snapshot, producing
// a Report. It supports full, rule-subset, and change-scoped incremental
// modes (§4.C).
type Validator struct {
	repo           RepoReader
	checks         map[string]Check
	ruleSet        *rule.CanonicalRuleSet
	mapping        *FileRuleMapping
	cache          ResultCache
	workerCount    int
	ruleTimeout    time.Duration
	fallbackFraction float64
	clock          func() time.Time
}

// New constructs a Validator.
func New(repo RepoReader, checks map[string]Check, ruleSet *rule.CanonicalRuleSet, mapping *FileRuleMapping, cache ResultCache, workerCount int) *Validator {
	return &Validator{
		repo: repo, checks: checks, ruleSet: ruleSet, mapping: mapping, cache: cache,
		workerCount: workerCount, ruleTimeout: DefaultRuleTimeout,
		fallbackFraction: DefaultIncrementalFallbackFraction, clock: time.Now,
	}
}

// WithClock overrides the validator's time source for deterministic tests.
func (v *Validator) WithClock(clock func() time.Time) *Validator {
	v.clock = clock
	return v
}

// ValidateAll runs every rule in the rule set (§4.C "validate_all").
func (v *Validator) ValidateAll(ctx context.Context, snapshotDigest string) (*Report, error) {
	ids := make([]string, 0, len(v.ruleSet.Rules))
	for _, r := range v.ruleSet.Rules {
		ids = append(ids, r.RuleID)
	}
	sort.Strings(ids)
	return v.run(ctx, ids, ModeFull, snapshotDigest)
}

// ValidateRules runs exactly the given rule_ids (§4.C "validate_rules").
func (v *Validator) ValidateRules(ctx context.Context, ruleIDs []string, snapshotDigest string) (*Report, error) {
	ids := append([]string{}, ruleIDs...)
	sort.Strings(ids)
	return v.run(ctx, ids, ModeRuleSubset, snapshotDigest)
}

// ValidateIncremental implements §4.C's change-scoped validation: maps
// changed files to affected rules, expands transitively, unions always-run
// rules, and falls back to ValidateAll if the affected fraction exceeds
// fallbackFraction. Unaffected rules are served from cache.
func (v *Validator) ValidateIncremental(ctx context.Context, changedFiles []string, snapshotDigest string) (*Report, error) {
	affected := v.mapping.AffectedRules(changedFiles)

	total := len(v.ruleSet.Rules)
	if total > 0 && float64(len(affected))/float64(total) > v.fallbackFraction {
		return v.ValidateAll(ctx, snapshotDigest)
	}

	affectedSet := make(map[string]bool, len(affected))
	for _, id := range affected {
		affectedSet[id] = true
	}

	results := make([]Result, 0, total)
	toRunFresh := make([]string, 0, len(affected))
	for _, r := range v.ruleSet.Rules {
		if affectedSet[r.RuleID] {
			toRunFresh = append(toRunFresh, r.RuleID)
			continue
		}
		if cached, ok := v.cache.Get(CacheKey{RuleID: r.RuleID, SnapshotDigest: snapshotDigest, RuleVersion: r.RuleID}); ok {
			cached.CacheState = CacheCached
			results = append(results, cached)
		} else {
			toRunFresh = append(toRunFresh, r.RuleID)
		}
	}
	sort.Strings(toRunFresh)

	fresh, cancelled, err := v.executeBatched(ctx, toRunFresh, snapshotDigest)
	if err != nil {
		return nil, err
	}
	results = append(results, fresh...)
	sort.Slice(results, func(i, j int) bool { return results[i].RuleID < results[j].RuleID })

	return v.buildReport(results, ModeIncremental, snapshotDigest, cancelled), nil
}

func (v *Validator) run(ctx context.Context, ruleIDs []string, mode Mode, snapshotDigest string) (*Report, error) {
	results, cancelled, err := v.executeBatched(ctx, ruleIDs, snapshotDigest)
	if err != nil {
		return nil, err
	}
	return v.buildReport(results, mode, snapshotDigest, cancelled), nil
}

func (v *Validator) buildReport(results []Result, mode Mode, snapshotDigest string, cancelled bool) *Report {
	byOutcome, bySeverity := summarize(results)
	return &Report{
		SnapshotDigest:   snapshotDigest,
		Results:          results,
		CountsByOutcome:  byOutcome,
		CountsBySeverity: bySeverity,
		Score:            computeScore(results),
		Mode:             mode,
		Cancelled:        cancelled,
	}
}

// executeBatched implements §4.C scheduling: rules are partitioned into
// batches by category; within a batch, rules execute in parallel via a
// bounded worker pool; batches execute sequentially. A running validation
// may be cancelled via ctx; in-flight tasks finish their current rule but
// no new rules are scheduled after cancellation (§5 "Cancellation").
func (v *Validator) executeBatched(ctx context.Context, ruleIDs []string, snapshotDigest string) ([]Result, bool, error) {
	batches := v.partitionByCategory(ruleIDs)

	var all []Result
	cancelled := false

	for _, batch := range batches {
		if cancelled {
			break
		}
		batchResults, batchCancelled := v.executeBatch(ctx, batch, snapshotDigest)
		all = append(all, batchResults...)
		if batchCancelled {
			cancelled = true
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].RuleID < all[j].RuleID })
	return all, cancelled, nil
}

func (v *Validator) partitionByCategory(ruleIDs []string) [][]string {
	byID := v.ruleSet.ByID()
	grouped := map[rule.Category][]string{}
	for _, id := range ruleIDs {
		cat := rule.Category("UNKNOWN")
		if r, ok := byID[id]; ok {
			cat = r.Category
		}
		grouped[cat] = append(grouped[cat], id)
	}

	categories := make([]string, 0, len(grouped))
	for cat := range grouped {
		categories = append(categories, string(cat))
	}
	sort.Strings(categories)

	batches := make([][]string, 0, len(categories))
	for _, cat := range categories {
		ids := grouped[rule.Category(cat)]
		sort.Strings(ids)
		batches = append(batches, ids)
	}
	return batches
}

func (v *Validator) executeBatch(ctx context.Context, ruleIDs []string, snapshotDigest string) ([]Result, bool) {
	workers := v.workerCount
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))

	results := make([]Result, len(ruleIDs))
	cancelled := false

	type outcome struct {
		index  int
		result Result
	}
	out := make(chan outcome, len(ruleIDs))

	launched := 0
	for i, id := range ruleIDs {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			cancelled = true
			break
		}
		launched++
		go func(index int, ruleID string) {
			defer sem.Release(1)
			out <- outcome{index: index, result: v.executeOne(ctx, ruleID, snapshotDigest)}
		}(i, id)
	}

	for i := 0; i < launched; i++ {
		o := <-out
		results[o.index] = o.result
	}
	for i, r := range results {
		if r.RuleID == "" {
			results[i] = Result{RuleID: ruleIDs[i], Outcome: OutcomeSkip, Message: "cancelled before scheduling"}
		}
	}

	return results, cancelled
}

func (v *Validator) executeOne(ctx context.Context, ruleID, snapshotDigest string) Result {
	r, ok := v.ruleSet.ByID()[ruleID]
	if !ok {
		return Result{RuleID: ruleID, Outcome: OutcomeSkip, Message: "unknown rule"}
	}

	check, ok := v.checks[ruleID]
	if !ok {
		return Result{RuleID: ruleID, Outcome: OutcomeSkip, Severity: string(r.Severity), Message: "no check registered"}
	}

	start := v.clock()
	resultCh := make(chan Result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				resultCh <- Result{
					RuleID: ruleID, Outcome: OutcomeFail, Severity: string(r.Severity),
					Message: fmt.Sprintf("%s: %v", scieerr.RuleCheckException, rec),
				}
			}
		}()
		resultCh <- check(v.repo)
	}()

	select {
	case res := <-resultCh:
		res.RuleID = ruleID
		res.Severity = string(r.Severity)
		res.DurationMs = v.clock().Sub(start).Milliseconds()
		res.CacheState = CacheFresh
		res.Timestamp = v.clock()
		v.cache.Set(CacheKey{RuleID: ruleID, SnapshotDigest: snapshotDigest, RuleVersion: ruleID}, res, 0)
		return res
	case <-time.After(v.ruleTimeout):
		return Result{
			RuleID: ruleID, Outcome: OutcomeFail, Severity: string(r.Severity),
			Message: string(scieerr.RuleCheckTimeout), DurationMs: v.ruleTimeout.Milliseconds(),
			CacheState: CacheFresh, Timestamp: v.clock(),
		}
	case <-ctx.Done():
		return Result{RuleID: ruleID, Outcome: OutcomeSkip, Severity: string(r.Severity), Message: "cancelled"}
	}
}
