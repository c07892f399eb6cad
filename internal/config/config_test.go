package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "whatsapp-api", cfg.ServiceName)
	require.Equal(t, ":8085", cfg.Addr())
	require.Equal(t, 3*time.Second, cfg.ReconnectInterval)
	require.Equal(t, 15*time.Minute, cfg.SessionIdleTimeout)
	require.Equal(t, 300*time.Second, cfg.ChallengeTTL)
	require.Equal(t, 60*time.Second, cfg.ChallengeCleanup)
	require.Equal(t, 10, cfg.StartupBatchSize)
	require.Equal(t, time.Second, cfg.StartupBatchPause)
	require.True(t, cfg.StartupEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RECONNECT_INTERVAL", "5s")
	t.Setenv("STARTUP_BATCH_SIZE", "25")
	t.Setenv("STARTUP_ENABLED", "false")
	t.Setenv("TRANSPORT_DRIVER", "fake")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Addr())
	require.Equal(t, 5*time.Second, cfg.ReconnectInterval)
	require.Equal(t, 25, cfg.StartupBatchSize)
	require.False(t, cfg.StartupEnabled)
	require.Equal(t, "fake", cfg.TransportDriver)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("RECONNECT_INTERVAL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadClampsNonPositiveValues(t *testing.T) {
	t.Setenv("STARTUP_BATCH_SIZE", "0")
	t.Setenv("RECONNECT_INTERVAL", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10, cfg.StartupBatchSize)
	require.Equal(t, 3*time.Second, cfg.ReconnectInterval)
}
