// Package extractor implements the multi-pass SoT corpus scan (§4.A):
// structured block extraction, meaningful-line capture, prose pattern
// matching, and canonicalization into a CanonicalRuleSet.
package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/scie-systems/scie-core/pkg/rule"
	"gopkg.in/yaml.v3"
)

// structuredBlockFence marks a fenced block carrying a declared format,
// e.g. "```yaml".
const structuredBlockFence = "```"

var structuredFormats = map[string]bool{
	"yaml": true, "yml": true,
}

// Extractor runs the four-pass scan over a repository's SoT corpus.
type Extractor struct {
	clock func() time.Time
}

// New constructs an Extractor using the real-time clock.
func New() *Extractor {
	return &Extractor{clock: time.Now}
}

// WithClock overrides the extractor's time source for deterministic tests.
func (e *Extractor) WithClock(clock func() time.Time) *Extractor {
	e.clock = clock
	return e
}

// Extract walks corpusRoot and emits a CanonicalRuleSet. Extract is total:
// it always returns a set, recording per-file failures as non-fatal
// extraction warnings (§4.A "Failure semantics").
func (e *Extractor) Extract(corpusRoot, corpusVersion string) (*rule.CanonicalRuleSet, error) {
	rs := &rule.CanonicalRuleSet{
		CorpusVersion:  corpusVersion,
		ExtractionTime: e.clock().UTC().Format(time.RFC3339),
	}

	err := filepath.WalkDir(corpusRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			rs.ExtractionWarnings = append(rs.ExtractionWarnings, rule.ExtractionWarning{
				File: path, Message: walkErr.Error(),
			})
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !isCorpusFile(d.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(corpusRoot, path)
		if relErr != nil {
			rel = path
		}
		rules, warn := e.extractFile(path, rel)
		if warn != "" {
			rs.ExtractionWarnings = append(rs.ExtractionWarnings, rule.ExtractionWarning{
				File: rel, Message: warn,
			})
		}
		rs.Rules = append(rs.Rules, rules...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("extractor: walk %s: %w", corpusRoot, err)
	}

	dedupAndFinalize(rs)
	if err := rs.Finalize(); err != nil {
		return nil, fmt.Errorf("extractor: finalize: %w", err)
	}
	return rs, nil
}

func isCorpusFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".txt" || ext == ".yaml" || ext == ".yml"
}

// extractFile runs all four passes over a single file's contents.
func (e *Extractor) extractFile(path, relPath string) ([]rule.Rule, string) {
	data, err := readFileBytes(path)
	if err != nil {
		return nil, err.Error()
	}
	if !utf8.Valid(data) {
		return nil, "file contains invalid UTF-8"
	}

	text := string(data)
	var out []rule.Rule

	blocks, inBlockLines := extractStructuredBlocks(text, relPath)
	out = append(out, blocks...)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lineNo := i + 1
		if inBlockLines[lineNo] {
			continue // captured by pass 1/2 already
		}
		out = append(out, proseRulesForLine(line, relPath, lineNo)...)
	}

	return out, ""
}

// extractStructuredBlocks implements passes 1 and 2: structured block
// extraction (scalars → YAML_FIELD, lists → YAML_LIST) and meaningful-line
// capture within the same fenced region (YAML_LINE), over-capturing by
// design. Returns the rules plus the set of 1-based line numbers consumed
// by fenced blocks (so prose passes skip them).
func extractStructuredBlocks(text, relPath string) ([]rule.Rule, map[int]bool) {
	var out []rule.Rule
	inBlock := map[int]bool{}

	lines := strings.Split(text, "\n")
	i := 0
	for i < len(lines) {
		fenceLine := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(fenceLine, structuredBlockFence) {
			i++
			continue
		}
		format := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(fenceLine, structuredBlockFence)))
		start := i + 1
		end := start
		for end < len(lines) && strings.TrimSpace(lines[end]) != structuredBlockFence {
			end++
		}
		if end >= len(lines) {
			// Unterminated block: skip, not fatal (§4.A edge cases).
			i = end
			continue
		}
		for ln := start + 1; ln <= end; ln++ {
			inBlock[ln] = true
		}

		if structuredFormats[format] {
			body := strings.Join(lines[start:end], "\n")
			var generic any
			if err := yaml.Unmarshal([]byte(body), &generic); err == nil {
				out = append(out, walkYAMLValue(generic, relPath, start+1, "")...)
			}
			// Unparseable structured blocks are skipped, not fatal.
		}

		for ln := start; ln < end; ln++ {
			line := lines[ln]
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || trimmed == structuredBlockFence {
				continue
			}
			out = append(out, newRule(rule.CategoryYAMLLine, relPath, ln+1, trimmed))
		}

		i = end + 1
	}
	return out, inBlock
}

// walkYAMLValue recursively walks a parsed YAML value: scalars become
// YAML_FIELD rules, lists become YAML_LIST rules.
func walkYAMLValue(v any, relPath string, line int, path string) []rule.Rule {
	var out []rule.Rule
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			out = append(out, walkYAMLValue(t[k], relPath, line, childPath)...)
		}
	case []any:
		stmt := fmt.Sprintf("%s: %v", path, t)
		out = append(out, newRule(rule.CategoryYAMLList, relPath, line, stmt))
	default:
		stmt := fmt.Sprintf("%s: %v", path, t)
		out = append(out, newRule(rule.CategoryYAMLField, relPath, line, stmt))
	}
	return out
}

// proseRulesForLine implements pass 3, trying each pattern in the order
// given by §4.A.
func proseRulesForLine(line, relPath string, lineNo int) []rule.Rule {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	if m := numberedRulePattern.FindStringSubmatch(line); m != nil {
		return []rule.Rule{newRule(rule.CategoryTextReq, relPath, lineNo, m[2])}
	}

	if modality, ok := classifyModality(trimmed); ok {
		r := newRule(rule.CategoryTextReq, relPath, lineNo, trimmed)
		r.Modality = modality
		return []rule.Rule{r}
	}

	if m := listItemPattern.FindStringSubmatch(trimmed); m != nil && len(m[1]) > 10 {
		return []rule.Rule{newRule(rule.CategoryListItem, relPath, lineNo, m[1])}
	}

	if m := tableRowPattern.FindStringSubmatch(trimmed); m != nil && !tableSeparatorPattern.MatchString(trimmed) {
		return []rule.Rule{newRule(rule.CategoryTableRow, relPath, lineNo, trimmed)}
	}

	if m := decimalPolicyPattern.FindStringSubmatch(trimmed); m != nil {
		return []rule.Rule{newRule(rule.CategoryPolicyItem, relPath, lineNo, m[2])}
	}

	if m := keyValuePattern.FindStringSubmatch(trimmed); m != nil {
		key := strings.ToLower(strings.TrimSpace(m[1]))
		if !keyValueDenylist[key] {
			return []rule.Rule{newRule(rule.CategoryKeyValue, relPath, lineNo, trimmed)}
		}
	}

	return nil
}

func newRule(cat rule.Category, relPath string, line int, statement string) rule.Rule {
	return rule.Rule{
		Category:  cat,
		Modality:  rule.ModalityShould,
		Severity:  deriveSeverity(statement),
		Statement: statement,
		Source:    rule.Source{File: relPath, Line: line},
	}
}

// dedupAndFinalize implements pass 4: assign stable rule_id by hashing
// (category, source_file, line, normalized_statement); dedup identical
// normalized statements, preserving earliest source location.
func dedupAndFinalize(rs *rule.CanonicalRuleSet) {
	type key struct {
		category  rule.Category
		statement string
	}
	seen := make(map[key]int) // index into deduped, for earliest-wins collapse
	var deduped []rule.Rule

	for _, r := range rs.Rules {
		r.RuleID = ruleID(r)
		normalized := normalizeStatement(r.Statement)
		k := key{category: r.Category, statement: normalized}
		if idx, ok := seen[k]; ok {
			existing := deduped[idx]
			if r.Source.File == existing.Source.File && r.Source.Line < existing.Source.Line {
				deduped[idx] = r
			} else if r.Source.File < existing.Source.File {
				deduped[idx] = r
			}
			continue
		}
		seen[k] = len(deduped)
		deduped = append(deduped, r)
	}

	rs.Rules = deduped
}

func normalizeStatement(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func ruleID(r rule.Rule) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%s",
		r.Category, r.Source.File, r.Source.Line, normalizeStatement(r.Statement))))
	return hex.EncodeToString(h[:])[:16]
}
