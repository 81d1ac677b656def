// Package rule defines the compliance rule data model (SPEC_FULL §3):
// Rule, CanonicalRuleSet, and the closed enumerations for category,
// modality, and severity.
package rule

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/scie-systems/scie-core/pkg/canon"
)

// Category is the closed enumeration of rule categories.
type Category string

const (
	CategoryArchitecture          Category = "ARCHITECTURE"
	CategoryCriticalPolicies      Category = "CRITICAL_POLICIES"
	CategoryVersioningGovernance  Category = "VERSIONING_GOVERNANCE"
	CategoryLifted                Category = "LIFTED"
	CategoryChartStructure        Category = "CHART_STRUCTURE"
	CategoryManifestStructure     Category = "MANIFEST_STRUCTURE"
	CategoryCorePrinciples        Category = "CORE_PRINCIPLES"
	CategoryExtensions            Category = "EXTENSIONS"
	CategoryTechnologyStandards   Category = "TECHNOLOGY_STANDARDS"
	CategoryDeploymentCICD        Category = "DEPLOYMENT_CICD"
	CategoryMatrixRegistry        Category = "MATRIX_REGISTRY"
	CategoryMasterDefPrefix       Category = "MASTER_DEF_" // prefix; concrete categories append a suffix

	// Extraction-provenance categories, from the multi-pass scan (§4.A).
	CategoryYAMLField     Category = "YAML_FIELD"
	CategoryYAMLList      Category = "YAML_LIST"
	CategoryYAMLLine      Category = "YAML_LINE"
	CategoryTextReq       Category = "TEXT_REQUIREMENT"
	CategoryListItem      Category = "LIST_ITEM"
	CategoryTableRow      Category = "TABLE_ROW"
	CategoryPolicyItem    Category = "POLICY_ITEM"
	CategoryKeyValue      Category = "KEY_VALUE"
)

// Modality is the closed enumeration of rule modalities.
type Modality string

const (
	ModalityMust   Modality = "MUST"
	ModalityShould Modality = "SHOULD"
	ModalityCould  Modality = "COULD"
	ModalityNever  Modality = "NEVER"
)

// Severity is the closed enumeration of rule severities, ordered from
// lowest to highest for comparison purposes.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

// Source identifies where a rule was extracted from.
type Source struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Rule is the unit of compliance (§3).
type Rule struct {
	RuleID        string   `json:"rule_id"`
	Category      Category `json:"category"`
	Modality      Modality `json:"modality"`
	Severity      Severity `json:"severity"`
	Statement     string   `json:"statement"`
	Source        Source   `json:"source"`
	EvidencePaths []string `json:"evidence_paths"`
}

// Validate enforces the per-rule invariants from §3:
//   - modality NEVER implies severity >= HIGH
//   - evidence_paths non-empty whenever the rule reads the filesystem
//     (signaled here by the caller via requiresEvidence, since a bare Rule
//     cannot know its own validator wiring)
func (r *Rule) Validate(requiresEvidence bool) error {
	if r.RuleID == "" {
		return fmt.Errorf("rule: empty rule_id")
	}
	if r.Modality == ModalityNever && !r.Severity.AtLeast(SeverityHigh) {
		return fmt.Errorf("rule %s: modality NEVER requires severity >= HIGH, got %s", r.RuleID, r.Severity)
	}
	if requiresEvidence && len(r.EvidencePaths) == 0 {
		return fmt.Errorf("rule %s: evidence_paths must be non-empty", r.RuleID)
	}
	return nil
}

// ExtractionWarning records a non-fatal per-file extraction failure,
// per §4.A's "failure semantics" (extract is total).
type ExtractionWarning struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// CanonicalRuleSet is the versioned, hashed collection of rules (§3).
type CanonicalRuleSet struct {
	CorpusVersion      string               `json:"corpus_version"`
	ExtractionTime     string               `json:"extraction_timestamp"` // RFC3339, stamped by caller
	Rules              []Rule               `json:"rules"`
	CanonicalHash      string               `json:"canonical_hash"`
	ExtractionWarnings []ExtractionWarning  `json:"extraction_warnings,omitempty"`
}

// ParseCorpusVersion parses CorpusVersion as semver, for callers that need
// ordering/comparison.
func (rs *CanonicalRuleSet) ParseCorpusVersion() (*semver.Version, error) {
	return semver.NewVersion(rs.CorpusVersion)
}

// Sort orders rules by RuleID, establishing the stable order required before
// hashing and before any deterministic downstream serialization.
func (rs *CanonicalRuleSet) Sort() {
	sort.Slice(rs.Rules, func(i, j int) bool {
		return rs.Rules[i].RuleID < rs.Rules[j].RuleID
	})
}

// ComputeCanonicalHash computes the SHA-256 hash over the rules sorted by
// rule_id, serialized in canonical form (§3: "Two extractions of the same
// SoT content produce bit-identical canonical hashes").
func (rs *CanonicalRuleSet) ComputeCanonicalHash() (string, error) {
	rs.Sort()
	hashable := struct {
		CorpusVersion string `json:"corpus_version"`
		Rules         []Rule `json:"rules"`
	}{
		CorpusVersion: rs.CorpusVersion,
		Rules:         rs.Rules,
	}
	return canon.Hash(hashable)
}

// Finalize sorts the rule set and stamps CanonicalHash. Callers must call
// this exactly once after all rules have been appended.
func (rs *CanonicalRuleSet) Finalize() error {
	h, err := rs.ComputeCanonicalHash()
	if err != nil {
		return err
	}
	rs.CanonicalHash = h
	return nil
}

// ByID returns a lookup map keyed by RuleID.
func (rs *CanonicalRuleSet) ByID() map[string]*Rule {
	out := make(map[string]*Rule, len(rs.Rules))
	for i := range rs.Rules {
		out[rs.Rules[i].RuleID] = &rs.Rules[i]
	}
	return out
}
