package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_DisabledSkipsProviderSetup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false

	p, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, p.Logger())
	require.NotNil(t, p.Tracer()) // falls back to the global no-op tracer
}

func TestTrackOperation_RecordsCompletionWithoutPanicking(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	p, err := New(context.Background(), cfg)
	require.NoError(t, err)

	_, done := p.TrackOperation(context.Background(), "validate_cycle")
	done(nil)
}

func TestNewLogger_ParsesLevel(t *testing.T) {
	require.Equal(t, "DEBUG", parseLevel("DEBUG").String())
	require.Equal(t, "WARN", parseLevel("warn").String())
	require.Equal(t, "ERROR", parseLevel("ERROR").String())
	require.Equal(t, "INFO", parseLevel("unknown").String())

	logger := NewLogger("info")
	require.NotNil(t, logger)
}
