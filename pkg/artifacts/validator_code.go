package artifacts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scie-systems/scie-core/pkg/rule"
)

// buildValidatorCode emits a Go source file exposing one check stub per
// rule, dispatchable by rule_id, grouped by category in stable order.
func buildValidatorCode(corpusVersion string, rules []rule.Rule) (Artifact, error) {
	byCategory := groupByCategory(rules)
	categories := sortedCategories(byCategory)

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by the SCIE artifact generator. DO NOT EDIT.\n")
	fmt.Fprintf(&b, "// %s: %s\n", generatedFromComment, corpusVersion)
	b.WriteString("package generated\n\n")
	b.WriteString("type CheckFunc func(repo RepositoryReader) ValidationResult\n\n")
	b.WriteString("var Checks = map[string]CheckFunc{\n")

	coverage := make(map[string]bool, len(rules))
	for _, cat := range categories {
		fmt.Fprintf(&b, "\t// category: %s\n", cat)
		for _, r := range byCategory[cat] {
			fmt.Fprintf(&b, "\t%q: check_%s,\n", r.RuleID, sanitizeIdent(r.RuleID))
			coverage[r.RuleID] = true
		}
	}
	b.WriteString("}\n\n")

	for _, cat := range categories {
		for _, r := range byCategory[cat] {
			fmt.Fprintf(&b, "func check_%s(repo RepositoryReader) ValidationResult {\n", sanitizeIdent(r.RuleID))
			fmt.Fprintf(&b, "\t// %s\n", strings.ReplaceAll(r.Statement, "\n", " "))
			fmt.Fprintf(&b, "\treturn ValidationResult{RuleID: %q, Outcome: \"SKIP\"}\n", r.RuleID)
			b.WriteString("}\n\n")
		}
	}

	content := b.String()
	hash, err := hashArtifact(KindValidatorCode, corpusVersion, content)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Kind: KindValidatorCode, CorpusVersion: corpusVersion, ArtifactHash: hash,
		RuleCoverage: coverage, Content: content,
	}, nil
}

func groupByCategory(rules []rule.Rule) map[rule.Category][]rule.Rule {
	out := map[rule.Category][]rule.Rule{}
	for _, r := range rules {
		out[r.Category] = append(out[r.Category], r)
	}
	for cat := range out {
		sort.Slice(out[cat], func(i, j int) bool { return out[cat][i].RuleID < out[cat][j].RuleID })
	}
	return out
}

func sortedCategories(byCategory map[rule.Category][]rule.Rule) []rule.Category {
	cats := make([]rule.Category, 0, len(byCategory))
	for c := range byCategory {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}
