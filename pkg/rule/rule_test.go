package rule

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestRule_Validate_NeverRequiresHighSeverity(t *testing.T) {
	r := Rule{RuleID: "R1", Modality: ModalityNever, Severity: SeverityMedium}
	require.Error(t, r.Validate(false))

	r.Severity = SeverityHigh
	require.NoError(t, r.Validate(false))

	r.Severity = SeverityCritical
	require.NoError(t, r.Validate(false))
}

func TestRule_Validate_RequiresEvidencePaths(t *testing.T) {
	r := Rule{RuleID: "R1", Modality: ModalityShould, Severity: SeverityLow}
	require.Error(t, r.Validate(true))

	r.EvidencePaths = []string{"charts/foo/values.yaml"}
	require.NoError(t, r.Validate(true))
}

func TestSeverity_AtLeast(t *testing.T) {
	require.True(t, SeverityCritical.AtLeast(SeverityLow))
	require.True(t, SeverityHigh.AtLeast(SeverityHigh))
	require.False(t, SeverityLow.AtLeast(SeverityHigh))
}

func TestCanonicalRuleSet_Finalize_SortsByRuleID(t *testing.T) {
	rs := &CanonicalRuleSet{
		CorpusVersion: "1.0.0",
		Rules: []Rule{
			{RuleID: "R3", Modality: ModalityShould, Severity: SeverityLow},
			{RuleID: "R1", Modality: ModalityShould, Severity: SeverityLow},
			{RuleID: "R2", Modality: ModalityShould, Severity: SeverityLow},
		},
	}
	require.NoError(t, rs.Finalize())
	require.Equal(t, []string{"R1", "R2", "R3"}, []string{
		rs.Rules[0].RuleID, rs.Rules[1].RuleID, rs.Rules[2].RuleID,
	})
	require.NotEmpty(t, rs.CanonicalHash)
}

func TestCanonicalRuleSet_ByID(t *testing.T) {
	rs := &CanonicalRuleSet{Rules: []Rule{
		{RuleID: "A", Statement: "must do a"},
		{RuleID: "B", Statement: "must do b"},
	}}
	idx := rs.ByID()
	require.Equal(t, "must do a", idx["A"].Statement)
	require.Equal(t, "must do b", idx["B"].Statement)
}

// TestCanonicalHash_Deterministic asserts that hashing the same rule set
// twice, regardless of input order, produces a bit-identical hash — the
// core determinism invariant from SPEC_FULL §3.
func TestCanonicalHash_Deterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("reordering rules before Finalize does not change the hash", prop.ForAll(
		func(ids []string) bool {
			if len(ids) == 0 {
				return true
			}
			forward := make([]Rule, 0, len(ids))
			reversed := make([]Rule, 0, len(ids))
			for _, id := range ids {
				forward = append(forward, Rule{RuleID: id, Modality: ModalityShould, Severity: SeverityLow, Statement: id})
			}
			for i := len(ids) - 1; i >= 0; i-- {
				reversed = append(reversed, Rule{RuleID: ids[i], Modality: ModalityShould, Severity: SeverityLow, Statement: ids[i]})
			}

			rs1 := &CanonicalRuleSet{CorpusVersion: "1.0.0", Rules: forward}
			rs2 := &CanonicalRuleSet{CorpusVersion: "1.0.0", Rules: reversed}

			h1, err1 := rs1.ComputeCanonicalHash()
			h2, err2 := rs2.ComputeCanonicalHash()
			return err1 == nil && err2 == nil && h1 == h2
		},
		gen.SliceOfN(5, gen.OneConstOf("R1", "R2", "R3", "R4", "R5")).SuchThat(func(ids []string) bool {
			seen := map[string]bool{}
			for _, id := range ids {
				if seen[id] {
					return false
				}
				seen[id] = true
			}
			return true
		}),
	))

	properties.TestingRun(t)
}
