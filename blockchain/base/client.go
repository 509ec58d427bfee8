package base

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Client owns the gRPC connection to a Cosmos SDK node.
type Client struct {
	conn   *grpc.ClientConn
	config Config
}

// New creates a base client with a lazily connecting gRPC channel.
func New(cfg Config) (*Client, error) {
	cfg.applyDefaults()

	useTLS := shouldUseTLS(cfg.GRPCAddr)
	if cfg.InsecureGRPC {
		useTLS = false
	}

	var creds credentials.TransportCredentials
	if useTLS {
		creds = credentials.NewTLS(nil)
	} else {
		creds = insecure.NewCredentials()
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(cfg.MaxRecvMsgSize),
			grpc.MaxCallSendMsgSize(cfg.MaxSendMsgSize),
		),
	}

	conn, err := grpc.NewClient(cfg.GRPCAddr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gRPC: %w", err)
	}
	return &Client{conn: conn, config: cfg}, nil
}

// NewWithConn wraps an existing connection, e.g. an in-process bufconn channel.
func NewWithConn(conn *grpc.ClientConn, cfg Config) *Client {
	cfg.applyDefaults()
	return &Client{conn: conn, config: cfg}
}

// Close closes the underlying gRPC connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// GRPCConn exposes the underlying gRPC connection for specialized queries.
func (c *Client) GRPCConn() *grpc.ClientConn {
	return c.conn
}

// Config returns the normalized configuration.
func (c *Client) Config() Config {
	return c.config
}

// CallContext derives the context for a single RPC, applying the per-call timeout.
func (c *Client) CallContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.Timeout > 0 {
		return context.WithTimeout(ctx, c.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// shouldUseTLS determines if TLS should be used based on the gRPC address.
func shouldUseTLS(addr string) bool {
	// Check for explicit port 443 (standard HTTPS/gRPC-TLS port).
	if strings.HasSuffix(addr, ":443") {
		return true
	}

	if strings.HasPrefix(addr, "localhost:") ||
		strings.HasPrefix(addr, "127.0.0.1:") ||
		strings.HasPrefix(addr, "0.0.0.0:") ||
		strings.HasPrefix(addr, "passthrough:") ||
		strings.HasPrefix(addr, ":") { // Just port, implies localhost.
		return false
	}

	// Any other remote address prefers TLS.
	return !strings.Contains(addr, "localhost") &&
		!strings.Contains(addr, "127.0.0.1") &&
		!strings.Contains(addr, "0.0.0.0")
}
