package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LumeraProtocol/txclient-go/types"
)

func TestValidateRequiresEndpoint(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestValidatePopulatesDefaults(t *testing.T) {
	cfg := Config{GRPCEndpoint: "localhost:9090"}
	require.NoError(t, cfg.Validate())

	require.Equal(t, 10*time.Second, cfg.BlockchainTimeout)
	require.Equal(t, 1024*1024*50, cfg.MaxRecvMsgSize)
	require.Equal(t, 1024*1024*50, cfg.MaxSendMsgSize)
	require.Equal(t, "sync", cfg.BroadcastMode)
	require.Equal(t, DefaultWaitTxConfig(), cfg.WaitTx)
}

func TestValidateRejectsUnknownBroadcastMode(t *testing.T) {
	cfg := Config{GRPCEndpoint: "localhost:9090", BroadcastMode: "commit"}
	require.ErrorIs(t, cfg.Validate(), types.ErrInvalidConfig)
}

func TestApplyWaitTxDefaults(t *testing.T) {
	cfg := WaitTxConfig{
		PollMaxRetries:         -3,
		PollBackoffMaxInterval: -time.Second,
		PollBackoffJitter:      -1,
	}
	ApplyWaitTxDefaults(&cfg)

	require.Equal(t, 60*time.Second, cfg.Timeout)
	require.Equal(t, time.Second, cfg.PollInterval)
	require.Equal(t, 0, cfg.PollMaxRetries)
	require.Equal(t, float64(1), cfg.PollBackoffMultiplier)
	require.Equal(t, time.Duration(0), cfg.PollBackoffMaxInterval)
	require.Equal(t, float64(0), cfg.PollBackoffJitter)

	// nil is a no-op
	ApplyWaitTxDefaults(nil)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txclient.yaml")
	content := `
grpc_endpoint: grpc.testnet.example:443
broadcast_mode: async
log_level: info
wait_tx:
  timeout: 15s
  poll_interval: 2s
  poll_max_retries: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "grpc.testnet.example:443", cfg.GRPCEndpoint)
	require.Equal(t, "async", cfg.BroadcastMode)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 15*time.Second, cfg.WaitTx.Timeout)
	require.Equal(t, 2*time.Second, cfg.WaitTx.PollInterval)
	require.Equal(t, 5, cfg.WaitTx.PollMaxRetries)
	require.Equal(t, 10*time.Second, cfg.BlockchainTimeout)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txclient.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grpc_endpoint: localhost:9090\n"), 0o600))
	t.Setenv("TXCLIENT_GRPC_ENDPOINT", "node.internal:9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "node.internal:9090", cfg.GRPCEndpoint)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
