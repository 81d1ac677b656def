//go:build gcp

package artifacts

import (
	"context"
	"fmt"

	"github.com/scie-systems/scie-core/pkg/config"
)

func newGCSSinkFromConfig(ctx context.Context, cfg *config.Config) (Sink, error) {
	if cfg.ArtifactGCSBucket == "" {
		return nil, fmt.Errorf("artifacts: ARTIFACT_GCS_BUCKET is required for gcs sink backend")
	}
	return NewGCSSink(ctx, GCSSinkConfig{
		Bucket: cfg.ArtifactGCSBucket,
		Prefix: cfg.ArtifactGCSPrefix,
		RPS:    cfg.ArtifactSinkRPS,
		Burst:  cfg.ArtifactSinkBurst,
	})
}
