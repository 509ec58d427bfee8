package client

import (
	"time"

	"go.uber.org/zap"
)

// Option is a function that modifies Config
type Option func(*Config)

// WithGRPCEndpoint sets the gRPC address
func WithGRPCEndpoint(addr string) Option {
	return func(c *Config) {
		c.GRPCEndpoint = addr
	}
}

// WithInsecureGRPC forces a plaintext gRPC connection
func WithInsecureGRPC() Option {
	return func(c *Config) {
		c.InsecureGRPC = true
	}
}

// WithBlockchainTimeout sets the per-RPC timeout
func WithBlockchainTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.BlockchainTimeout = timeout
	}
}

// WithMaxMessageSize sets both send and receive message sizes
func WithMaxMessageSize(size int) Option {
	return func(c *Config) {
		c.MaxRecvMsgSize = size
		c.MaxSendMsgSize = size
	}
}

// WithBroadcastMode sets the delivery mode of the send path (sync, async, block)
func WithBroadcastMode(mode string) Option {
	return func(c *Config) {
		c.BroadcastMode = mode
	}
}

// WithWaitTimeout sets the confirmation budget
func WithWaitTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.WaitTx.Timeout = timeout
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
