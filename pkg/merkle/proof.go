package merkle

import "strings"

// ProofStep is one sibling hash encountered while walking up from a leaf.
type ProofStep struct {
	Side        string // "L" or "R": which side the sibling occupies
	SiblingHash string
}

// InclusionProof lets a verifier confirm a single entry's membership in the
// tree without holding the full entry set.
type InclusionProof struct {
	Sequence  uint64
	LeafHash  string
	Root      string
	ProofPath []ProofStep
}

// Prove builds an inclusion proof for the leaf at the given index in
// t.Leaves (not the WORM sequence number itself, since sequences may be
// sparse after archival).
func (t *Tree) Prove(index int) (InclusionProof, bool) {
	if index < 0 || index >= len(t.Leaves) {
		return InclusionProof{}, false
	}

	proof := InclusionProof{
		Sequence: t.Leaves[index].Sequence,
		LeafHash: t.Leaves[index].Hash,
		Root:     t.Root,
	}

	idx := index
	for _, level := range t.Levels[:len(t.Levels)-1] {
		paddedLevel := level
		if len(paddedLevel)%2 != 0 {
			paddedLevel = append(append([]string{}, paddedLevel...), paddedLevel[len(paddedLevel)-1])
		}
		if idx%2 == 0 {
			proof.ProofPath = append(proof.ProofPath, ProofStep{Side: "R", SiblingHash: paddedLevel[idx+1]})
		} else {
			proof.ProofPath = append(proof.ProofPath, ProofStep{Side: "L", SiblingHash: paddedLevel[idx-1]})
		}
		idx /= 2
	}

	return proof, true
}

// VerifyInclusionProof recomputes the root from proof and compares it to
// expectedRoot.
func VerifyInclusionProof(proof InclusionProof, expectedRoot string) bool {
	current := proof.LeafHash
	for _, step := range proof.ProofPath {
		if step.Side == "L" {
			current = nodeHash(step.SiblingHash, current)
		} else {
			current = nodeHash(current, step.SiblingHash)
		}
	}
	return strings.EqualFold(current, expectedRoot)
}
