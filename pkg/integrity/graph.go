// Package integrity implements the Integrity Analyzer (§4.E): the
// IntegrityVector metric, release comparison, evidence-graph clustering,
// relinking, and the adversarial simulator.
package integrity

import (
	"sort"
	"sync"

	"github.com/scie-systems/scie-core/pkg/worm"
)

// GraphNode is one WORM entry as a node in the derived EvidenceGraph.
type GraphNode struct {
	Sequence   uint64
	NodeType   string
	SharedRefs []string
}

// EvidenceGraph is the derived view over WORM entries: nodes are entries,
// edges link entries sharing at least one reference UUID (§4.D "Evidence
// graph view"). It is built on demand from the chain, never persisted
// separately (§9 "graph is derived, not stored").
type EvidenceGraph struct {
	mu    sync.RWMutex
	nodes map[uint64]GraphNode
	// adjacency: sequence -> set of connected sequences
	adj map[uint64]map[uint64]bool
}

// BuildEvidenceGraph constructs an EvidenceGraph from a set of WORM
// entries, typically every entry between genesis and the chain tail.
func BuildEvidenceGraph(entries []worm.Entry, nodeTypeOf func(worm.Entry) string) *EvidenceGraph {
	g := &EvidenceGraph{
		nodes: make(map[uint64]GraphNode, len(entries)),
		adj:   make(map[uint64]map[uint64]bool, len(entries)),
	}

	refIndex := map[string][]uint64{}
	for _, e := range entries {
		nodeType := "UNKNOWN"
		if nodeTypeOf != nil {
			nodeType = nodeTypeOf(e)
		}
		g.nodes[e.Sequence] = GraphNode{Sequence: e.Sequence, NodeType: nodeType, SharedRefs: e.SharedRefs}
		g.adj[e.Sequence] = map[uint64]bool{}
		for _, ref := range e.SharedRefs {
			refIndex[ref] = append(refIndex[ref], e.Sequence)
		}
	}

	for _, sequences := range refIndex {
		for i := 0; i < len(sequences); i++ {
			for j := i + 1; j < len(sequences); j++ {
				a, b := sequences[i], sequences[j]
				g.adj[a][b] = true
				g.adj[b][a] = true
			}
		}
	}

	return g
}

// Nodes returns every node, sorted by sequence.
func (g *EvidenceGraph) Nodes() []GraphNode {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]GraphNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

// EdgeCount returns the total number of undirected edges in the graph.
func (g *EvidenceGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	count := 0
	for _, neighbors := range g.adj {
		count += len(neighbors)
	}
	return count / 2
}

// Component is a connected set of evidence-graph nodes (§4.E "Graph
// analysis").
type Component struct {
	Sequences []uint64
	NodeTypes map[string]int
	EdgeCount int
}

// Components finds connected components via breadth-first walk over the
// shared-UUID edges (§4.E).
func (g *EvidenceGraph) Components() []Component {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[uint64]bool{}
	var components []Component

	sequences := make([]uint64, 0, len(g.nodes))
	for seq := range g.nodes {
		sequences = append(sequences, seq)
	}
	sort.Slice(sequences, func(i, j int) bool { return sequences[i] < sequences[j] })

	for _, start := range sequences {
		if visited[start] {
			continue
		}
		var members []uint64
		queue := []uint64{start}
		visited[start] = true
		edges := 0
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, cur)
			for neighbor := range g.adj[cur] {
				edges++
				if !visited[neighbor] {
					visited[neighbor] = true
					queue = append(queue, neighbor)
				}
			}
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })

		nodeTypes := map[string]int{}
		for _, seq := range members {
			nodeTypes[g.nodes[seq].NodeType]++
		}

		components = append(components, Component{
			Sequences: members,
			NodeTypes: nodeTypes,
			EdgeCount: edges / 2,
		})
	}

	return components
}
