package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scie-systems/scie-core/pkg/artifacts"
	"github.com/scie-systems/scie-core/pkg/config"
	"github.com/scie-systems/scie-core/pkg/extractor"
	"github.com/scie-systems/scie-core/pkg/observability"
	"github.com/scie-systems/scie-core/pkg/repository"
	"github.com/scie-systems/scie-core/pkg/rule"
	"github.com/scie-systems/scie-core/pkg/validator"
	"github.com/scie-systems/scie-core/pkg/worm"
)

// stateDir is the per-repository working directory for SCIE's own
// artifacts: the cached rule set, the WORM chain, and scratch space for
// the adversarial simulator.
const stateDir = ".scie"

// runtime bundles the components every subcommand needs, built fresh
// per invocation. `scie autopilot` repeats its cycle in-process on a
// timer; every other subcommand runs once and exits.
type runtime struct {
	cfg     *config.Config
	repo    *repository.FilesystemReader
	store   *worm.FileStore
	chain   *worm.Chain
	ruleSet *rule.CanonicalRuleSet
	obs     *observability.Provider

	// artifactDigests is the sink digest recorded for each of the five
	// generated artifacts on this invocation, keyed by artifacts.Kind.
	artifactDigests map[artifacts.Kind]string
}

func setupRuntime(repoRoot, corpusRoot string) (*runtime, error) {
	cfg := config.Load()
	repo := repository.NewFilesystemReader(repoRoot)

	dir := filepath.Join(repoRoot, stateDir)
	store, err := worm.NewFileStore(filepath.Join(dir, "worm"))
	if err != nil {
		return nil, fmt.Errorf("scie: open worm store: %w", err)
	}
	chain := worm.New(store)

	ruleSet, err := loadOrExtractRuleSet(dir, corpusRoot)
	if err != nil {
		return nil, fmt.Errorf("scie: load rule set: %w", err)
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.OTLPEndpoint = cfg.OTLPEndpoint
	obsCfg.Enabled = cfg.OTelEnabled
	obs, err := observability.New(context.Background(), obsCfg)
	if err != nil {
		return nil, fmt.Errorf("scie: init observability: %w", err)
	}

	digests := generateAndStoreArtifacts(context.Background(), cfg, dir, ruleSet, obs)

	return &runtime{cfg: cfg, repo: repo, store: store, chain: chain, ruleSet: ruleSet, obs: obs, artifactDigests: digests}, nil
}

// generateAndStoreArtifacts runs the §4.B artifact generator over ruleSet
// and persists the resulting bundle through the configured artifact sink
// (§6 "Artifact storage interface"). A sink failure is recorded as a
// warning and never blocks the run: the five artifacts are regenerable at
// any time from ruleSet, so the sink is a durability convenience, not a
// dependency of validate_rules.
func generateAndStoreArtifacts(ctx context.Context, cfg *config.Config, stateDir string, ruleSet *rule.CanonicalRuleSet, obs *observability.Provider) map[artifacts.Kind]string {
	bundle, err := artifacts.Generate(ruleSet)
	if err != nil {
		obs.Logger().WarnContext(ctx, "artifact generation failed", "error", err)
		return nil
	}

	sink, err := artifacts.NewSinkFromConfig(ctx, cfg, stateDir)
	if err != nil {
		obs.Logger().WarnContext(ctx, "artifact sink unavailable", "error", err)
		return nil
	}

	digests, err := artifacts.WriteBundle(ctx, sink, bundle)
	if err != nil {
		obs.Logger().WarnContext(ctx, "artifact sink write failed", "error", err)
		return nil
	}
	obs.Logger().InfoContext(ctx, "artifact bundle stored", "backend", cfg.ArtifactSinkBackend, "kinds", len(digests))
	return digests
}

func ruleSetCachePath(dir string) string {
	return filepath.Join(dir, "ruleset.json")
}

// loadOrExtractRuleSet re-extracts the rule set from corpusRoot whenever
// no cached ruleset.json exists yet, then caches the result so repeated
// invocations in the same repository don't re-scan the corpus.
func loadOrExtractRuleSet(dir, corpusRoot string) (*rule.CanonicalRuleSet, error) {
	cachePath := ruleSetCachePath(dir)

	if raw, err := os.ReadFile(cachePath); err == nil {
		var rs rule.CanonicalRuleSet
		if err := json.Unmarshal(raw, &rs); err == nil {
			return &rs, nil
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	rs, err := extractor.New().Extract(corpusRoot, "0.1.0")
	if err != nil {
		return nil, err
	}

	raw, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(cachePath, raw, 0o644); err != nil {
		return nil, err
	}
	return rs, nil
}

// buildChecks constructs the default rule-check registry: a rule with no
// declared evidence paths is vacuously satisfied; otherwise every
// evidence path must exist in the repository. The generated VALIDATOR_CODE
// artifact documents richer checks per rule; this is the baseline the
// CLI runs until a compiled, rule-specific check replaces it.
func buildChecks(rs *rule.CanonicalRuleSet) map[string]validator.Check {
	checks := make(map[string]validator.Check, len(rs.Rules))
	for _, r := range rs.Rules {
		r := r
		checks[r.RuleID] = func(repo validator.RepoReader) validator.Result {
			for _, path := range r.EvidencePaths {
				if !repo.Exists(path) {
					return validator.Result{
						RuleID:   r.RuleID,
						Outcome:  validator.OutcomeFail,
						Severity: string(r.Severity),
						Message:  fmt.Sprintf("missing evidence path %q", path),
					}
				}
			}
			return validator.Result{
				RuleID:   r.RuleID,
				Outcome:  validator.OutcomePass,
				Severity: string(r.Severity),
			}
		}
	}
	return checks
}

func fileRuleMapping(rs *rule.CanonicalRuleSet) *validator.FileRuleMapping {
	mapping := &validator.FileRuleMapping{Patterns: map[string][]string{}}
	for _, r := range rs.Rules {
		for _, path := range r.EvidencePaths {
			pattern := filepath.Base(path)
			mapping.Patterns[pattern] = append(mapping.Patterns[pattern], r.RuleID)
		}
	}
	return mapping
}

func snapshotDigestHex(repo *repository.FilesystemReader) (string, error) {
	digest, err := repo.SnapshotDigest()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", digest), nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// chainEvidenceWriter adapts *worm.Chain to corectx.EvidenceWriter: the
// chain itself has no notion of an entry "kind", so the kind is folded
// into the recorded payload alongside the caller's value.
type chainEvidenceWriter struct {
	chain *worm.Chain
}

type kindedPayload struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

func (w chainEvidenceWriter) Append(kind string, payload any, sharedRefs ...string) (uint64, string, error) {
	entry, err := w.chain.Append(kindedPayload{Kind: kind, Payload: payload}, sharedRefs...)
	if err != nil {
		return 0, "", err
	}
	return entry.Sequence, entry.SHA512, nil
}

// decodePayload round-trips a generically-decoded WORM payload (typically
// a map[string]any from json.Unmarshal into an any field) into a concrete
// type via JSON re-encoding.
func decodePayload(payload any, target any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}
