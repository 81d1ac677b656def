package extractor

import "github.com/scie-systems/scie-core/pkg/rule"

// RuleSetDiff is the result of diffing two CanonicalRuleSets (§4.A: "diff(old, new)").
type RuleSetDiff struct {
	Added   []rule.Rule
	Removed []rule.Rule
	Changed []RuleChange
}

// RuleChange records a rule present in both sets whose content differs.
type RuleChange struct {
	Old rule.Rule
	New rule.Rule
}

// Diff compares two rule sets by RuleID, classifying each rule as added,
// removed, or changed (statement, modality, severity, or category differs).
func Diff(old, new *rule.CanonicalRuleSet) RuleSetDiff {
	oldByID := old.ByID()
	newByID := new.ByID()

	var d RuleSetDiff
	for id, nr := range newByID {
		or, existed := oldByID[id]
		if !existed {
			d.Added = append(d.Added, *nr)
			continue
		}
		if ruleContentDiffers(*or, *nr) {
			d.Changed = append(d.Changed, RuleChange{Old: *or, New: *nr})
		}
	}
	for id, or := range oldByID {
		if _, stillPresent := newByID[id]; !stillPresent {
			d.Removed = append(d.Removed, *or)
		}
	}
	return d
}

func ruleContentDiffers(a, b rule.Rule) bool {
	return a.Statement != b.Statement ||
		a.Modality != b.Modality ||
		a.Severity != b.Severity ||
		a.Category != b.Category
}
