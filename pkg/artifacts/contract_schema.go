package artifacts

import (
	"encoding/json"

	"github.com/scie-systems/scie-core/pkg/rule"
)

// schemaRuleEntry is one rule's representation inside the CONTRACT_SCHEMA
// artifact's "rules" enumeration.
type schemaRuleEntry struct {
	RuleID    string `json:"rule_id"`
	Category  string `json:"category"`
	Modality  string `json:"modality"`
	Severity  string `json:"severity"`
	Statement string `json:"statement"`
}

// contractSchemaDocument is a JSON-Schema-compatible, self-describing
// document enumerating the rule set with counts by severity and modality.
type contractSchemaDocument struct {
	Schema              string                     `json:"$schema"`
	Title               string                     `json:"title"`
	GeneratedFrom        string                     `json:"generated_from"`
	CountsBySeverity    map[string]int             `json:"counts_by_severity"`
	CountsByModality     map[string]int             `json:"counts_by_modality"`
	Type                string                     `json:"type"`
	Properties          map[string]any             `json:"properties"`
	Rules               []schemaRuleEntry          `json:"rules"`
}

// buildContractSchema emits a JSON-Schema-compatible document enumerating
// the rule set, with counts by severity and modality (§4.B).
func buildContractSchema(corpusVersion string, rules []rule.Rule) (Artifact, error) {
	doc := contractSchemaDocument{
		Schema:           "https://json-schema.org/draft/2020-12/schema",
		Title:            "SCIE rule contract",
		GeneratedFrom:    corpusVersion,
		CountsBySeverity: map[string]int{},
		CountsByModality: map[string]int{},
		Type:             "object",
		Properties: map[string]any{
			"rule_checks": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"outcome": map[string]any{"type": "string", "enum": []string{"PASS", "FAIL", "PARTIAL", "SKIP"}},
					},
				},
			},
		},
	}

	coverage := make(map[string]bool, len(rules))
	for _, r := range rules {
		doc.CountsBySeverity[string(r.Severity)]++
		doc.CountsByModality[string(r.Modality)]++
		doc.Rules = append(doc.Rules, schemaRuleEntry{
			RuleID: r.RuleID, Category: string(r.Category), Modality: string(r.Modality),
			Severity: string(r.Severity), Statement: r.Statement,
		})
		coverage[r.RuleID] = true
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Artifact{}, err
	}
	content := string(raw)

	hash, err := hashArtifact(KindContractSchema, corpusVersion, content)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Kind: KindContractSchema, CorpusVersion: corpusVersion, ArtifactHash: hash,
		RuleCoverage: coverage, Content: content,
	}, nil
}
