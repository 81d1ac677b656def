// Package merkle builds a domain-separated Merkle tree over WORM evidence
// entries, grounded on the teacher's pkg/merkle.BuildMerkleTree, adapted to
// key leaves by sequence number instead of an arbitrary path map, and to
// consume the canon package in place of the teacher's csnf.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/scie-systems/scie-core/pkg/canon"
)

const (
	leafDomain = "scie:evidence:leaf:v1"
	nodeDomain = "scie:evidence:node:v1"
)

// Leaf is one evidence entry's leaf in the tree, keyed by its WORM sequence.
type Leaf struct {
	Sequence uint64
	Hash     string
}

// Tree is a bottom-up Merkle tree over a WORM chain's entries.
type Tree struct {
	Leaves []Leaf
	Levels [][]string
	Root   string
}

// Build constructs a Tree from a sequence→payload map (typically every
// entry between the WORM chain's genesis and tail).
func Build(entries map[uint64]any) (*Tree, error) {
	sequences := make([]uint64, 0, len(entries))
	for seq := range entries {
		sequences = append(sequences, seq)
	}
	sort.Slice(sequences, func(i, j int) bool { return sequences[i] < sequences[j] })

	leaves := make([]Leaf, 0, len(sequences))
	for _, seq := range sequences {
		canonBytes, err := canon.Bytes(entries[seq])
		if err != nil {
			return nil, fmt.Errorf("merkle: canonicalize entry %d: %w", seq, err)
		}
		leaves = append(leaves, Leaf{Sequence: seq, Hash: leafHash(seq, canonBytes)})
	}

	if len(leaves) == 0 {
		return &Tree{Root: ""}, nil
	}

	tree := &Tree{Leaves: leaves}
	level := make([]string, len(leaves))
	for i, l := range leaves {
		level[i] = l.Hash
	}

	for len(level) > 1 {
		tree.Levels = append(tree.Levels, level)
		level = nextLevel(level)
	}
	tree.Levels = append(tree.Levels, level)
	tree.Root = level[0]

	return tree, nil
}

func leafHash(sequence uint64, canonBytes []byte) string {
	var buf bytes.Buffer
	buf.WriteString(leafDomain)
	buf.WriteByte(0)
	fmt.Fprintf(&buf, "%d", sequence)
	buf.WriteByte(0)
	buf.Write(canonBytes)
	return sha256Hex(buf.Bytes())
}

func nextLevel(hashes []string) []string {
	if len(hashes)%2 != 0 {
		hashes = append(hashes, hashes[len(hashes)-1])
	}
	next := make([]string, len(hashes)/2)
	for i := 0; i < len(hashes); i += 2 {
		next[i/2] = nodeHash(hashes[i], hashes[i+1])
	}
	return next
}

func nodeHash(left, right string) string {
	var buf bytes.Buffer
	buf.WriteString(nodeDomain)
	buf.WriteByte(0)
	buf.Write(hexDecode(left))
	buf.Write(hexDecode(right))
	return sha256Hex(buf.Bytes())
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hexDecode(s string) []byte {
	b, _ := hex.DecodeString(s)
	return b
}
