package blockchain

import (
	"fmt"

	txtypes "cosmossdk.io/api/cosmos/tx/v1beta1"
	"github.com/andres-erbsen/clock"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/LumeraProtocol/txclient-go/blockchain/base"
	waittx "github.com/LumeraProtocol/txclient-go/internal/wait-tx"
)

// Config for blockchain client
type Config = base.Config

// Client submits signed transactions to a node and tracks their outcome.
type Client struct {
	*base.Client

	tx     txtypes.ServiceClient
	poller *waittx.Poller
	logger *zap.Logger
	clock  waittx.Clock
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger for broadcast and confirmation diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces the wall clock used to time confirmation waits.
func WithClock(clk waittx.Clock) Option {
	return func(c *Client) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// New creates a new blockchain client
func New(cfg Config, opts ...Option) (*Client, error) {
	bc, err := base.New(cfg)
	if err != nil {
		return nil, err
	}
	c, err := newClient(bc, opts...)
	if err != nil {
		_ = bc.Close()
		return nil, err
	}
	return c, nil
}

// NewWithConn creates a client over an existing gRPC connection.
func NewWithConn(conn *grpc.ClientConn, cfg Config, opts ...Option) (*Client, error) {
	return newClient(base.NewWithConn(conn, cfg), opts...)
}

func newClient(bc *base.Client, opts ...Option) (*Client, error) {
	c := &Client{
		Client: bc,
		logger: zap.NewNop(),
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("blockchain")

	if conn := bc.GRPCConn(); conn != nil {
		c.tx = txtypes.NewServiceClient(conn)
	}

	poller, err := waittx.New(waittx.QuerierFunc(c.queryTx), bc.Config().WaitTx,
		waittx.WithClock(c.clock),
		waittx.WithLogger(c.logger.Named("wait-tx")),
	)
	if err != nil {
		return nil, fmt.Errorf("init tx poller: %w", err)
	}
	c.poller = poller
	return c, nil
}
