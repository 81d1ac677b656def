package validator

import (
	"path/filepath"
	"sort"
)

// FileRuleMapping is the static, externally-supplied configuration the
// validator consumes to scope incremental runs: for each glob pattern,
// which rules depend on files matching it (§4.C "Dependency model").
type FileRuleMapping struct {
	Patterns      map[string][]string // glob -> rule_ids
	AlwaysRun     []string
	TransitiveDeps map[string][]string // rule_id -> rule_ids it pulls in
}

// AffectedRules maps changedFiles to the set of affected rules via glob
// match, then expands transitively until fixed point, bounded at 10
// iterations (§4.C steps 2-3), and unions the always-run rules (step 4).
func (m *FileRuleMapping) AffectedRules(changedFiles []string) []string {
	affected := map[string]bool{}

	for _, file := range changedFiles {
		for pattern, ruleIDs := range m.Patterns {
			if matched, _ := filepath.Match(pattern, file); matched {
				for _, id := range ruleIDs {
					affected[id] = true
				}
			}
		}
	}

	for iteration := 0; iteration < 10; iteration++ {
		changed := false
		for id := range affected {
			for _, dep := range m.TransitiveDeps[id] {
				if !affected[dep] {
					affected[dep] = true
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	for _, id := range m.AlwaysRun {
		affected[id] = true
	}

	out := make([]string, 0, len(affected))
	for id := range affected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
