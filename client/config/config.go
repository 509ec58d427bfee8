package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LumeraProtocol/txclient-go/types"
)

// Config holds all configuration for the tx client.
type Config struct {
	// Node connection
	GRPCEndpoint string `mapstructure:"grpc_endpoint"` // Cosmos SDK gRPC endpoint (host:port)
	InsecureGRPC bool   `mapstructure:"insecure_grpc"` // force plaintext even for remote hosts

	// BlockchainTimeout bounds each individual RPC call (0 => no per-call deadline).
	BlockchainTimeout time.Duration `mapstructure:"blockchain_timeout"`

	// Optional overrides
	MaxRecvMsgSize int `mapstructure:"max_recv_msg_size"` // Max message size for gRPC (default: 50MB)
	MaxSendMsgSize int `mapstructure:"max_send_msg_size"`

	// BroadcastMode used by the convenience send path: sync, async or block.
	BroadcastMode string `mapstructure:"broadcast_mode"`

	// LogLevel builds a zap logger when Logger is not set ("" => silent).
	LogLevel string `mapstructure:"log_level"`

	// WaitTx controls transaction confirmation behaviour.
	WaitTx WaitTxConfig `mapstructure:"wait_tx"`

	// Logger is optional; when set, client operations emit diagnostics.
	Logger *zap.Logger `mapstructure:"-"`
}

// WaitTxConfig configures how the client waits for transaction confirmation.
type WaitTxConfig struct {
	// Timeout is the wall-clock budget for confirming a broadcast tx.
	Timeout time.Duration `mapstructure:"timeout"`

	// PollInterval controls how frequently the poller queries gRPC for the tx.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// PollMaxRetries limits the number of poll attempts before giving up (0 => unlimited until Timeout).
	PollMaxRetries int `mapstructure:"poll_max_retries"`
	// PollBackoffMultiplier > 1 enables exponential growth for poll intervals.
	PollBackoffMultiplier float64 `mapstructure:"poll_backoff_multiplier"`
	// PollBackoffMaxInterval caps the exponential backoff delay (0 => unlimited).
	PollBackoffMaxInterval time.Duration `mapstructure:"poll_backoff_max_interval"`
	// PollBackoffJitter randomizes delays (0..1) to avoid synced retries.
	PollBackoffJitter float64 `mapstructure:"poll_backoff_jitter"`
}

// Validate checks if the configuration is valid and populates defaults.
func (c *Config) Validate() error {
	if c.GRPCEndpoint == "" {
		return fmt.Errorf("%w: grpc_endpoint is required", types.ErrInvalidConfig)
	}
	switch c.BroadcastMode {
	case "":
		c.BroadcastMode = DefaultBroadcastMode
	case "sync", "async", "block":
	default:
		return fmt.Errorf("%w: unknown broadcast_mode %q", types.ErrInvalidConfig, c.BroadcastMode)
	}
	if c.BlockchainTimeout < 0 {
		return fmt.Errorf("%w: blockchain_timeout must not be negative", types.ErrInvalidConfig)
	}
	if c.WaitTx.PollBackoffJitter > 1 {
		return fmt.Errorf("%w: wait_tx.poll_backoff_jitter must be within [0,1]", types.ErrInvalidConfig)
	}

	// Set defaults
	if c.BlockchainTimeout == 0 {
		c.BlockchainTimeout = 10 * time.Second
	}
	if c.MaxRecvMsgSize == 0 {
		c.MaxRecvMsgSize = 1024 * 1024 * 50 // 50MB
	}
	if c.MaxSendMsgSize == 0 {
		c.MaxSendMsgSize = 1024 * 1024 * 50 // 50MB
	}
	ApplyWaitTxDefaults(&c.WaitTx)

	return nil
}

// DefaultBroadcastMode is the delivery mode of the convenience send path.
const DefaultBroadcastMode = "sync"

// Default returns a configuration with sensible defaults for a local node.
func Default() Config {
	return Config{
		GRPCEndpoint:      "localhost:9090",
		BlockchainTimeout: 10 * time.Second,
		MaxRecvMsgSize:    1024 * 1024 * 50,
		MaxSendMsgSize:    1024 * 1024 * 50,
		BroadcastMode:     DefaultBroadcastMode,
		WaitTx:            DefaultWaitTxConfig(),
	}
}

// DefaultWaitTxConfig returns recommended defaults for wait-tx behaviour.
// Block times are roughly constant, so polling uses a fixed one second interval.
func DefaultWaitTxConfig() WaitTxConfig {
	return WaitTxConfig{
		Timeout:               60 * time.Second,
		PollInterval:          time.Second,
		PollMaxRetries:        0,
		PollBackoffMultiplier: 1,
		PollBackoffJitter:     0,
	}
}

// ApplyWaitTxDefaults normalizes zero or negative values using defaults.
func ApplyWaitTxDefaults(cfg *WaitTxConfig) {
	if cfg == nil {
		return
	}
	def := DefaultWaitTxConfig()

	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.PollMaxRetries < 0 {
		cfg.PollMaxRetries = 0
	}
	if cfg.PollBackoffMultiplier <= 0 {
		cfg.PollBackoffMultiplier = def.PollBackoffMultiplier
	}
	if cfg.PollBackoffMaxInterval < 0 {
		cfg.PollBackoffMaxInterval = 0
	}
	if cfg.PollBackoffJitter < 0 {
		cfg.PollBackoffJitter = 0
	}
	if cfg.PollBackoffJitter > 1 {
		cfg.PollBackoffJitter = 1
	}
}
