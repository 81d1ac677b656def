package artifacts

import (
	"context"
)

// Metadata is the free-form key/value envelope a sink persists alongside
// each artifact's content bytes (§6 "Artifact storage interface").
type Metadata map[string]string

// Sink is the abstract artifact storage interface named in §6:
// write(artifact_kind, content_bytes, metadata), with an atomic-write
// guarantee. A filesystem implementation lives in sink_file.go; S3/GCS
// implementations are pluggable per the DOMAIN STACK, selected at runtime
// by NewSinkFromConfig.
type Sink interface {
	// Write persists content under kind, content-addressed by its SHA-256
	// digest, alongside metadata. Returns the "sha256:<hex>" digest. A
	// second Write of identical content under the same kind is a no-op
	// (idempotent), matching the teacher's CAS stores.
	Write(ctx context.Context, kind Kind, content []byte, metadata Metadata) (digest string, err error)

	// Read retrieves previously-written content by kind and digest.
	Read(ctx context.Context, kind Kind, digest string) ([]byte, error)

	// Exists reports whether content is already stored under kind/digest.
	Exists(ctx context.Context, kind Kind, digest string) (bool, error)
}

// WriteBundle persists every artifact in b through sink, tagging each with
// its corpus version and artifact hash as metadata. It is the bridge
// between the pure Generate function and durable storage; Generate itself
// stays a pure, sink-free function per §4.B's determinism requirement.
func WriteBundle(ctx context.Context, sink Sink, b *Bundle) (map[Kind]string, error) {
	digests := make(map[Kind]string, 5)
	for _, a := range []Artifact{b.Validator, b.Policy, b.Contract, b.CLI, b.Tests} {
		meta := Metadata{
			"corpus_version": a.CorpusVersion,
			"artifact_hash":  a.ArtifactHash,
		}
		digest, err := sink.Write(ctx, a.Kind, []byte(a.Content), meta)
		if err != nil {
			return nil, err
		}
		digests[a.Kind] = digest
	}
	return digests, nil
}
