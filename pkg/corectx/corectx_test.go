package corectx

import (
	"testing"
	"time"

	"github.com/scie-systems/scie-core/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg := config.Load()
	ctx := New("run-1", "/repo", cfg)

	require.Equal(t, "run-1", ctx.RunID)
	require.Equal(t, "/repo", ctx.RepoRoot)
	require.NotNil(t, ctx.RNG)
	require.WithinDuration(t, time.Now(), ctx.Now(), time.Second)
}

func TestWithClock_Deterministic(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := New("run-1", "/repo", config.Load(), WithClock(func() time.Time { return fixed }))

	require.Equal(t, fixed, ctx.Now())
	require.Equal(t, fixed, ctx.Now())
}
