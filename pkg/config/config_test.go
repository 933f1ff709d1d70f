package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.Listen)
	require.Equal(t, 30*time.Second, cfg.QueueTimeout)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SCHEDULER_LISTEN", "127.0.0.1:9999")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", cfg.Listen)
}

func TestValidateRejectsBadTimeout(t *testing.T) {
	cfg := Default()
	cfg.QueueTimeout = 0
	require.Error(t, Validate(cfg))
}

func TestValidateRejectsShortTick(t *testing.T) {
	cfg := Default()
	cfg.ReservationTickInterval = 100 * time.Millisecond
	require.Error(t, Validate(cfg))
}
