//go:build !gcp

package artifacts

import (
	"context"
	"fmt"

	"github.com/scie-systems/scie-core/pkg/config"
)

func newGCSSinkFromConfig(ctx context.Context, cfg *config.Config) (Sink, error) {
	return nil, fmt.Errorf("artifacts: gcs sink backend is not enabled in this build (build with -tags gcp)")
}
