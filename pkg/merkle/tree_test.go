package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuild_Deterministic(t *testing.T) {
	entries := map[uint64]any{
		1: map[string]any{"kind": "VALIDATION", "score": 91},
		2: map[string]any{"kind": "VALIDATION", "score": 92},
		3: map[string]any{"kind": "ARCHIVAL"},
	}

	t1, err := Build(entries)
	require.NoError(t, err)
	t2, err := Build(entries)
	require.NoError(t, err)

	require.Equal(t, t1.Root, t2.Root)
	require.NotEmpty(t, t1.Root)
}

func TestProve_AndVerify(t *testing.T) {
	entries := map[uint64]any{
		1: map[string]any{"a": 1},
		2: map[string]any{"a": 2},
		3: map[string]any{"a": 3},
	}
	tree, err := Build(entries)
	require.NoError(t, err)

	for i := range tree.Leaves {
		proof, ok := tree.Prove(i)
		require.True(t, ok)
		require.True(t, VerifyInclusionProof(proof, tree.Root))
	}
}

func TestVerifyInclusionProof_RejectsTamperedRoot(t *testing.T) {
	entries := map[uint64]any{1: map[string]any{"a": 1}, 2: map[string]any{"a": 2}}
	tree, err := Build(entries)
	require.NoError(t, err)

	proof, ok := tree.Prove(0)
	require.True(t, ok)
	require.False(t, VerifyInclusionProof(proof, "deadbeef"))
}
