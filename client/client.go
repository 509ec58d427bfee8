package client

import (
	"context"
	"fmt"
	"time"

	abcipb "cosmossdk.io/api/cosmos/base/abci/v1beta1"
	"go.uber.org/zap"

	"github.com/LumeraProtocol/txclient-go/blockchain"
	sdklog "github.com/LumeraProtocol/txclient-go/pkg/log"
)

// Client provides unified access to tx submission and confirmation.
type Client struct {
	Blockchain *blockchain.Client

	// Configuration
	config *Config
	mode   blockchain.BroadcastMode
	logger *zap.Logger
}

// New creates a new client from cfg after applying opts and validating.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	// Apply options
	for _, opt := range opts {
		opt(&cfg)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	mode, err := blockchain.ParseBroadcastMode(cfg.BroadcastMode)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		if logger, err = sdklog.New(cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	blockchainClient, err := blockchain.New(blockchain.Config{
		GRPCAddr:       cfg.GRPCEndpoint,
		Timeout:        cfg.BlockchainTimeout,
		MaxRecvMsgSize: cfg.MaxRecvMsgSize,
		MaxSendMsgSize: cfg.MaxSendMsgSize,
		InsecureGRPC:   cfg.InsecureGRPC,
		WaitTx:         cfg.WaitTx,
	}, blockchain.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blockchain client: %w", err)
	}

	logger.Debug("tx client ready",
		zap.String("grpc_endpoint", cfg.GRPCEndpoint),
		zap.String("broadcast_mode", cfg.BroadcastMode),
		zap.Duration("wait_timeout", cfg.WaitTx.Timeout))

	return &Client{
		Blockchain: blockchainClient,
		config:     &cfg,
		mode:       mode,
		logger:     logger,
	}, nil
}

// Send broadcasts signed tx bytes with the configured mode and waits up to
// WaitTx.Timeout for the node to report the executed result.
func (c *Client) Send(ctx context.Context, txBytes []byte) (*abcipb.TxResponse, error) {
	return c.SendTransaction(ctx, txBytes, c.mode, c.config.WaitTx.Timeout)
}

// SendTransaction broadcasts txBytes once with mode. With a positive
// waitTimeout it then waits for confirmation; otherwise the provisional
// broadcast response is returned as is.
func (c *Client) SendTransaction(ctx context.Context, txBytes []byte, mode blockchain.BroadcastMode, waitTimeout time.Duration) (*abcipb.TxResponse, error) {
	provisional, err := c.Blockchain.Broadcast(ctx, txBytes, mode)
	if err != nil {
		return nil, err
	}
	if waitTimeout <= 0 {
		return provisional, nil
	}
	return c.Blockchain.WaitForTransaction(ctx, provisional, waitTimeout)
}

// Close releases all resources
func (c *Client) Close() error {
	if c.Blockchain != nil {
		if err := c.Blockchain.Close(); err != nil {
			return fmt.Errorf("blockchain close: %w", err)
		}
	}
	_ = c.logger.Sync()
	return nil
}

// Config returns the client configuration
func (c *Client) Config() Config {
	return *c.config
}
