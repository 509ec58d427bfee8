package base

import (
	"time"

	clientconfig "github.com/LumeraProtocol/txclient-go/client/config"
)

// Config captures shared Cosmos SDK node settings for gRPC tx workflows.
type Config struct {
	GRPCAddr string
	// Timeout bounds each individual RPC (0 => only the caller's context applies).
	Timeout        time.Duration
	MaxRecvMsgSize int
	MaxSendMsgSize int
	InsecureGRPC   bool
	WaitTx         clientconfig.WaitTxConfig
}

const defaultMaxMsgSize = 1024 * 1024 * 50

func (c *Config) applyDefaults() {
	if c.MaxRecvMsgSize <= 0 {
		c.MaxRecvMsgSize = defaultMaxMsgSize
	}
	if c.MaxSendMsgSize <= 0 {
		c.MaxSendMsgSize = defaultMaxMsgSize
	}
	clientconfig.ApplyWaitTxDefaults(&c.WaitTx)
}
