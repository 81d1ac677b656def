package extractor

import (
	"regexp"
	"strings"

	"github.com/scie-systems/scie-core/pkg/rule"
)

// modalityLexicon maps the closed German/English lexical sets to the four
// rule modalities (§4.A, pass 3; Glossary "Modality lexicon").
var modalityLexicon = []struct {
	modality rule.Modality
	terms    []string
}{
	{rule.ModalityMust, []string{"MUST", "MUSS", "SHALL", "REQUIRED"}},
	{rule.ModalityShould, []string{"SHOULD", "SOLL", "RECOMMENDED"}},
	{rule.ModalityCould, []string{"MAY", "MAG", "OPTIONAL"}},
	{rule.ModalityNever, []string{"NEVER", "NIEMALS", "FORBIDDEN"}},
}

var criticalSeverityTerms = []string{
	"critical", "must", "required", "mandatory", "forbidden", "security", "legal", "compliance",
}

var highSeverityTerms = []string{
	"should", "important", "recommended", "standard",
}

// classifyModality returns the modality implied by statement, or ("", false)
// if no lexicon term is present.
func classifyModality(statement string) (rule.Modality, bool) {
	upper := strings.ToUpper(statement)
	for _, entry := range modalityLexicon {
		for _, term := range entry.terms {
			if containsWord(upper, term) {
				return entry.modality, true
			}
		}
	}
	return "", false
}

// deriveSeverity applies the keyword-based severity derivation (§4.A).
func deriveSeverity(statement string) rule.Severity {
	lower := strings.ToLower(statement)
	for _, term := range criticalSeverityTerms {
		if strings.Contains(lower, term) {
			return rule.SeverityCritical
		}
	}
	for _, term := range highSeverityTerms {
		if strings.Contains(lower, term) {
			return rule.SeverityHigh
		}
	}
	return rule.SeverityMedium
}

func containsWord(haystack, word string) bool {
	pattern := `\b` + regexp.QuoteMeta(word) + `\b`
	matched, err := regexp.MatchString(pattern, haystack)
	return err == nil && matched
}

// numberedRulePattern matches "N Regel (<desc>)" declarations (§4.A, pass 3).
var numberedRulePattern = regexp.MustCompile(`^\s*(\d+)\s+Regel\s*\((.+)\)\s*$`)

// decimalPolicyPattern matches "N. <text>" decimal-numbered policy items.
var decimalPolicyPattern = regexp.MustCompile(`^\s*(\d+)\.\s+(.+)$`)

// keyValuePattern matches single-line "Key: value" statements.
var keyValuePattern = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9 _-]{1,40}):\s+(.+)$`)

// keyValueDenylist excludes informational key-value prefixes from extraction.
var keyValueDenylist = map[string]bool{
	"note": true, "example": true, "see": true, "reference": true, "todo": true,
}

// listItemPattern matches "-", "*", "+" bullet prefixes.
var listItemPattern = regexp.MustCompile(`^\s*[-*+]\s+(.+)$`)

// tableRowPattern matches pipe-delimited lines that are not separator rows.
var tableRowPattern = regexp.MustCompile(`^\s*\|(.+)\|\s*$`)
var tableSeparatorPattern = regexp.MustCompile(`^[\s|:-]+$`)
