package integrity

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// ClusterMetrics is the per-component summary computed by analyze_graph
// (§4.E "Graph analysis").
type ClusterMetrics struct {
	Sequences        []uint64
	Density          float64
	MutualInformation float64
	TypeDiversity    float64
	Weak             bool
}

// Thresholds are the controller-tunable weak-cluster criteria (§4.E,
// §4.F "Distribution").
type Thresholds struct {
	MIThreshold      float64
	DensityThreshold float64
}

// AnalyzeGraph computes ClusterMetrics for every component of size >= 2
// and classifies weak clusters (§4.E).
func AnalyzeGraph(g *EvidenceGraph, thresholds Thresholds) (clusters []ClusterMetrics, weak []ClusterMetrics) {
	for _, c := range g.Components() {
		if len(c.Sequences) < 2 {
			continue
		}
		m := computeClusterMetrics(c, thresholds)
		clusters = append(clusters, m)
		if m.Weak {
			weak = append(weak, m)
		}
	}
	return clusters, weak
}

func computeClusterMetrics(c Component, thresholds Thresholds) ClusterMetrics {
	n := float64(len(c.Sequences))
	e := float64(c.EdgeCount)

	density := 0.0
	if n > 1 {
		density = (2 * e) / (n * (n - 1))
	}

	mi := math.Log2(float64(c.EdgeCount) + 1)

	diversity := 0.0
	total := 0
	for _, count := range c.NodeTypes {
		total += count
	}
	if total > 0 {
		for _, count := range c.NodeTypes {
			p := float64(count) / float64(total)
			if p > 0 {
				diversity -= p * math.Log2(p)
			}
		}
	}

	weak := mi < thresholds.MIThreshold || density < thresholds.DensityThreshold

	return ClusterMetrics{
		Sequences:         c.Sequences,
		Density:           density,
		MutualInformation: mi,
		TypeDiversity:     diversity,
		Weak:              weak,
	}
}

// RelinkSeverity ranks a relinking suggestion's priority.
type RelinkSeverity string

const (
	SeverityHigh   RelinkSeverity = "HIGH"
	SeverityMedium RelinkSeverity = "MEDIUM"
	SeverityLow    RelinkSeverity = "LOW"
)

// RelinkSuggestion is one proposed edge addition (§4.E "Relinking").
type RelinkSuggestion struct {
	Kind        string // "INTERNAL_DENSIFICATION" | "EXTERNAL_LINK"
	Severity    RelinkSeverity
	Description string
	FromSeq     uint64
	ToSeq       uint64
	NewNodeType string // populated for EXTERNAL_LINK
	SharedRef   string // fresh shared-reference UUID, populated for EXTERNAL_LINK
}

// Relink proposes up to maxLinksPerCluster suggestions per weak cluster
// (§4.E). allNodeTypes is the closed set of node types the system expects;
// a cluster missing any of them gets external-link suggestions for each
// missing type; a cluster containing all types gets internal
// densification suggestions instead.
func Relink(g *EvidenceGraph, weak []ClusterMetrics, allNodeTypes []string, maxLinksPerCluster int) []RelinkSuggestion {
	var out []RelinkSuggestion

	for _, cluster := range weak {
		present := map[string]bool{}
		for _, seq := range cluster.Sequences {
			present[g.nodes[seq].NodeType] = true
		}

		var missing []string
		for _, t := range allNodeTypes {
			if !present[t] {
				missing = append(missing, t)
			}
		}
		sort.Strings(missing)

		var suggestions []RelinkSuggestion
		if len(missing) == 0 {
			suggestions = internalDensification(cluster, maxLinksPerCluster)
		} else {
			suggestions = externalLinks(cluster, missing, maxLinksPerCluster)
		}

		sort.Slice(suggestions, func(i, j int) bool {
			return severityRank(suggestions[i].Severity) > severityRank(suggestions[j].Severity)
		})
		if len(suggestions) > maxLinksPerCluster {
			suggestions = suggestions[:maxLinksPerCluster]
		}
		out = append(out, suggestions...)
	}

	return out
}

func severityRank(s RelinkSeverity) int {
	switch s {
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

func internalDensification(cluster ClusterMetrics, max int) []RelinkSuggestion {
	var out []RelinkSuggestion
	seqs := cluster.Sequences
	for i := 0; i < len(seqs) && len(out) < max; i++ {
		for j := i + 1; j < len(seqs) && len(out) < max; j++ {
			out = append(out, RelinkSuggestion{
				Kind:        "INTERNAL_DENSIFICATION",
				Severity:    weaknessSeverity(cluster),
				Description: fmt.Sprintf("add edge between seq %d and seq %d", seqs[i], seqs[j]),
				FromSeq:     seqs[i],
				ToSeq:       seqs[j],
			})
		}
	}
	return out
}

func externalLinks(cluster ClusterMetrics, missing []string, max int) []RelinkSuggestion {
	var out []RelinkSuggestion
	for _, nodeType := range missing {
		if len(out) >= max {
			break
		}
		fresh := uuid.New().String()
		out = append(out, RelinkSuggestion{
			Kind:        "EXTERNAL_LINK",
			Severity:    weaknessSeverity(cluster),
			Description: fmt.Sprintf("inject shared reference %s between cluster and a %s node", fresh, nodeType),
			FromSeq:     cluster.Sequences[0],
			NewNodeType: nodeType,
			SharedRef:   fresh,
		})
	}
	return out
}

func weaknessSeverity(c ClusterMetrics) RelinkSeverity {
	switch {
	case c.Density < 0.01 || c.MutualInformation < 0.1:
		return SeverityHigh
	case c.Density < 0.05:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
