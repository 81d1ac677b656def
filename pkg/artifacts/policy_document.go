package artifacts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scie-systems/scie-core/pkg/rule"
)

// buildPolicyDocument emits declarative CEL clauses consumed by an external
// evaluator, one clause per rule, organized by severity (§4.B).
func buildPolicyDocument(corpusVersion string, rules []rule.Rule) (Artifact, error) {
	bySeverity := map[rule.Severity][]rule.Rule{}
	for _, r := range rules {
		bySeverity[r.Severity] = append(bySeverity[r.Severity], r)
	}
	for sev := range bySeverity {
		sort.Slice(bySeverity[sev], func(i, j int) bool {
			return bySeverity[sev][i].RuleID < bySeverity[sev][j].RuleID
		})
	}

	order := []rule.Severity{rule.SeverityCritical, rule.SeverityHigh, rule.SeverityMedium, rule.SeverityLow, rule.SeverityInfo}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n", generatedFromComment, corpusVersion)
	b.WriteString("# policy clauses, one per rule, in CEL-expression form\n\n")

	coverage := make(map[string]bool, len(rules))
	for _, sev := range order {
		rs := bySeverity[sev]
		if len(rs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## severity: %s\n", sev)
		for _, r := range rs {
			fmt.Fprintf(&b, "- rule_id: %s\n", r.RuleID)
			fmt.Fprintf(&b, "  modality: %s\n", r.Modality)
			fmt.Fprintf(&b, "  expression: |\n")
			fmt.Fprintf(&b, "    result.rule_checks[%q].outcome == \"PASS\"\n", r.RuleID)
			fmt.Fprintf(&b, "  statement: %q\n", strings.ReplaceAll(r.Statement, "\n", " "))
			coverage[r.RuleID] = true
		}
		b.WriteString("\n")
	}

	content := b.String()
	hash, err := hashArtifact(KindPolicyDocument, corpusVersion, content)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Kind: KindPolicyDocument, CorpusVersion: corpusVersion, ArtifactHash: hash,
		RuleCoverage: coverage, Content: content,
	}, nil
}
