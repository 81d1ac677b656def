package artifacts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileSink_WriteIsIdempotentAndReadable(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := []byte("validator source")
	digest1, err := sink.Write(ctx, KindValidatorCode, content, Metadata{"corpus_version": "1.0.0"})
	require.NoError(t, err)
	require.Contains(t, digest1, "sha256:")

	digest2, err := sink.Write(ctx, KindValidatorCode, content, Metadata{"corpus_version": "1.0.0"})
	require.NoError(t, err)
	require.Equal(t, digest1, digest2)

	ok, err := sink.Exists(ctx, KindValidatorCode, digest1)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := sink.Read(ctx, KindValidatorCode, digest1)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestFileSink_DifferentKindsDoNotCollide(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := []byte("same bytes")
	d1, err := sink.Write(ctx, KindPolicyDocument, content, nil)
	require.NoError(t, err)
	d2, err := sink.Write(ctx, KindContractSchema, content, nil)
	require.NoError(t, err)
	require.Equal(t, d1, d2) // content-addressed, so digests match...

	okPolicy, err := sink.Exists(ctx, KindPolicyDocument, d1)
	require.NoError(t, err)
	require.True(t, okPolicy)

	okContract, err := sink.Exists(ctx, KindContractSchema, d1)
	require.NoError(t, err)
	require.True(t, okContract)
}

func TestWriteBundle_PersistsAllFiveArtifacts(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	require.NoError(t, err)

	rs := sampleRuleSet()
	bundle, err := Generate(rs)
	require.NoError(t, err)

	digests, err := WriteBundle(context.Background(), sink, bundle)
	require.NoError(t, err)
	require.Len(t, digests, 5)
	for _, kind := range []Kind{KindValidatorCode, KindPolicyDocument, KindContractSchema, KindCLITool, KindTestSuite} {
		require.Contains(t, digests, kind)
	}
}
