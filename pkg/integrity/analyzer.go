package integrity

import (
	"github.com/scie-systems/scie-core/pkg/config"
	"github.com/scie-systems/scie-core/pkg/validator"
	"github.com/scie-systems/scie-core/pkg/worm"
)

// Analyzer is the single entry point the controller and CLI drive: it
// wires compute_vector, compare_vectors, analyze_graph, relink, and
// run_adversarial_suite into one coherent pass over a validation report
// and its backing evidence chain (§4.E).
type Analyzer struct {
	weights            config.IntegrityWeights
	thresholds         Thresholds
	maxLinksPerCluster int
	scratchRoot        string
}

// NewAnalyzer constructs an Analyzer from the live SCIE configuration.
func NewAnalyzer(cfg *config.Config, scratchRoot string) *Analyzer {
	return &Analyzer{
		weights: cfg.IntegrityWeights,
		thresholds: Thresholds{
			MIThreshold:      cfg.MIThreshold,
			DensityThreshold: cfg.DensityThreshold,
		},
		maxLinksPerCluster: cfg.MaxLinksPerCluster,
		scratchRoot:        scratchRoot,
	}
}

// Snapshot is a single integrity assessment: the computed vector, its
// comparison against a baseline (if any), the evidence-graph analysis,
// and any relinking suggestions for weak clusters.
type Snapshot struct {
	Vector      Vector
	Comparison  *Comparison // nil when baselineAbsent
	Clusters    []ClusterMetrics
	WeakClusters []ClusterMetrics
	Relinks     []RelinkSuggestion
}

// Assess runs the full integrity pass: compute the vector from the
// validation report and chain verification, compare it against the
// supplied baseline, derive the evidence graph from entries, and flag
// weak clusters with relinking suggestions (§4.E).
func (a *Analyzer) Assess(
	report *validator.Report,
	verification worm.VerificationResult,
	totalEntries int,
	timestampsMonotone bool,
	reversedPairs, totalPairs int,
	entries []worm.Entry,
	nodeTypeOf func(worm.Entry) string,
	allNodeTypes []string,
	baseline Vector,
	baselineAbsent bool,
) (Snapshot, error) {
	vector := ComputeVector(report, verification, totalEntries, timestampsMonotone, reversedPairs, totalPairs)

	var comparisonPtr *Comparison
	comparison, err := CompareVectors(baseline, vector, a.weights, baselineAbsent)
	switch {
	case baselineAbsent:
		// Expected failure mode (§4.E "Failure semantics"); the caller
		// adopts the fresh vector as the new baseline.
	case err != nil:
		return Snapshot{}, err
	default:
		comparisonPtr = &comparison
	}

	graph := BuildEvidenceGraph(entries, nodeTypeOf)
	clusters, weak := AnalyzeGraph(graph, a.thresholds)
	relinks := Relink(graph, weak, allNodeTypes, a.maxLinksPerCluster)

	return Snapshot{
		Vector:       vector,
		Comparison:   comparisonPtr,
		Clusters:     clusters,
		WeakClusters: weak,
		Relinks:      relinks,
	}, nil
}

// RunAdversarialSuite runs the adversarial simulator against a scratch
// directory derived from the Analyzer's configured scratch root
// (§4.E "Adversarial suite").
func (a *Analyzer) RunAdversarialSuite(seed int64, keepScratch bool) (*AdversarialReport, error) {
	sim := NewSimulator(a.scratchRoot, keepScratch)
	return sim.Run(seed)
}
