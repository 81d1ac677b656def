package integrity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeGraph_ClassifiesWeakCluster(t *testing.T) {
	g := BuildEvidenceGraph(sampleEntries(), nodeTypeBySeq)

	clusters, weak := AnalyzeGraph(g, Thresholds{MIThreshold: 5, DensityThreshold: 0.9})
	require.Len(t, clusters, 1) // only the {1,2,3} component has size >= 2
	require.Len(t, weak, 1)     // thresholds set deliberately high so the cluster is weak
}

func TestAnalyzeGraph_StrongClusterNotWeak(t *testing.T) {
	g := BuildEvidenceGraph(sampleEntries(), nodeTypeBySeq)

	_, weak := AnalyzeGraph(g, Thresholds{MIThreshold: 0, DensityThreshold: 0})
	require.Empty(t, weak)
}

func TestRelink_InternalDensificationWhenAllTypesPresent(t *testing.T) {
	g := BuildEvidenceGraph(sampleEntries(), nodeTypeBySeq)
	clusters, _ := AnalyzeGraph(g, Thresholds{MIThreshold: 5, DensityThreshold: 0.9})

	allTypes := []string{"VALIDATION_RESULT", "ARTIFACT"}
	suggestions := Relink(g, clusters, allTypes, 10)

	require.NotEmpty(t, suggestions)
	for _, s := range suggestions {
		require.Equal(t, "INTERNAL_DENSIFICATION", s.Kind)
	}
}

func TestRelink_ExternalLinkWhenTypeMissing(t *testing.T) {
	g := BuildEvidenceGraph(sampleEntries(), nodeTypeBySeq)
	clusters, _ := AnalyzeGraph(g, Thresholds{MIThreshold: 5, DensityThreshold: 0.9})

	allTypes := []string{"VALIDATION_RESULT", "ARTIFACT", "POLICY_DOCUMENT"}
	suggestions := Relink(g, clusters, allTypes, 10)

	require.NotEmpty(t, suggestions)
	found := false
	for _, s := range suggestions {
		if s.Kind == "EXTERNAL_LINK" && s.NewNodeType == "POLICY_DOCUMENT" {
			found = true
		}
	}
	require.True(t, found)
}

func TestRelink_CapsAtMaxLinksPerCluster(t *testing.T) {
	g := BuildEvidenceGraph(sampleEntries(), nodeTypeBySeq)
	clusters, _ := AnalyzeGraph(g, Thresholds{MIThreshold: 5, DensityThreshold: 0.9})

	suggestions := Relink(g, clusters, []string{"VALIDATION_RESULT", "ARTIFACT"}, 1)
	require.Len(t, suggestions, 1)
}
