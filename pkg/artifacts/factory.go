package artifacts

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/scie-systems/scie-core/pkg/config"
)

// SinkBackend selects which Sink implementation NewSinkFromConfig builds.
type SinkBackend string

const (
	SinkBackendFS  SinkBackend = "fs"
	SinkBackendS3  SinkBackend = "s3"
	SinkBackendGCS SinkBackend = "gcs"
)

// NewSinkFromConfig builds the artifact Sink named by cfg.ArtifactSinkBackend,
// matching the teacher's env-driven artifacts.NewStoreFromEnv dispatch.
func NewSinkFromConfig(ctx context.Context, cfg *config.Config, stateDir string) (Sink, error) {
	backend := SinkBackend(cfg.ArtifactSinkBackend)
	if backend == "" {
		backend = SinkBackendFS
	}

	switch backend {
	case SinkBackendFS:
		return NewFileSink(filepath.Join(stateDir, "artifacts"))
	case SinkBackendS3:
		if cfg.ArtifactS3Bucket == "" {
			return nil, fmt.Errorf("artifacts: ARTIFACT_S3_BUCKET is required for s3 sink backend")
		}
		return NewS3Sink(ctx, S3SinkConfig{
			Bucket:   cfg.ArtifactS3Bucket,
			Region:   cfg.ArtifactS3Region,
			Endpoint: cfg.ArtifactS3Endpoint,
			Prefix:   cfg.ArtifactS3Prefix,
			RPS:      cfg.ArtifactSinkRPS,
			Burst:    cfg.ArtifactSinkBurst,
		})
	case SinkBackendGCS:
		return newGCSSinkFromConfig(ctx, cfg)
	default:
		return nil, fmt.Errorf("artifacts: unsupported sink backend %q", backend)
	}
}
