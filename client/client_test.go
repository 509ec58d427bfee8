package client

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	abcipb "cosmossdk.io/api/cosmos/base/abci/v1beta1"
	txtypes "cosmossdk.io/api/cosmos/tx/v1beta1"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/LumeraProtocol/txclient-go/blockchain"
	"github.com/LumeraProtocol/txclient-go/types"
)

type nodeStub struct {
	txtypes.UnimplementedServiceServer
	mu        sync.Mutex
	broadcast *abcipb.TxResponse
	getTx     []error
	calls     int
}

func (s *nodeStub) BroadcastTx(ctx context.Context, req *txtypes.BroadcastTxRequest) (*txtypes.BroadcastTxResponse, error) {
	return &txtypes.BroadcastTxResponse{TxResponse: s.broadcast}, nil
}

func (s *nodeStub) GetTx(ctx context.Context, req *txtypes.GetTxRequest) (*txtypes.GetTxResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	s.calls++
	if idx < len(s.getTx) {
		return nil, s.getTx[idx]
	}
	return &txtypes.GetTxResponse{TxResponse: &abcipb.TxResponse{Txhash: req.Hash, Height: 7}}, nil
}

type steppingClock struct{ now time.Time }

func (c *steppingClock) Now() time.Time { return c.now }

func (c *steppingClock) After(d time.Duration) <-chan time.Time {
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func newStubbedClient(t *testing.T, stub *nodeStub, cfg Config) *Client {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	txtypes.RegisterServiceServer(srv, stub)
	go func() {
		_ = srv.Serve(lis)
	}()
	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
		_ = lis.Close()
	})

	require.NoError(t, cfg.Validate())
	mode, err := blockchain.ParseBroadcastMode(cfg.BroadcastMode)
	require.NoError(t, err)
	bc, err := blockchain.NewWithConn(conn, blockchain.Config{WaitTx: cfg.WaitTx},
		blockchain.WithClock(&steppingClock{now: time.Unix(1_700_000_000, 0)}))
	require.NoError(t, err)
	return &Client{Blockchain: bc, config: &cfg, mode: mode, logger: zap.NewNop()}
}

func (s *nodeStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	_, err = New(context.Background(), DefaultConfig(), WithBroadcastMode("commit"))
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	cfg := DefaultConfig()
	cfg.LogLevel = "chatty"
	_, err = New(context.Background(), cfg)
	require.Error(t, err)
}

func TestNewAppliesOptions(t *testing.T) {
	logger := zap.NewNop()
	c, err := New(context.Background(), Config{},
		WithGRPCEndpoint("localhost:9090"),
		WithInsecureGRPC(),
		WithBlockchainTimeout(3*time.Second),
		WithMaxMessageSize(1024),
		WithBroadcastMode("async"),
		WithWaitTimeout(20*time.Second),
		WithLogger(logger),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	cfg := c.Config()
	require.Equal(t, "localhost:9090", cfg.GRPCEndpoint)
	require.True(t, cfg.InsecureGRPC)
	require.Equal(t, 3*time.Second, cfg.BlockchainTimeout)
	require.Equal(t, 1024, cfg.MaxRecvMsgSize)
	require.Equal(t, 1024, cfg.MaxSendMsgSize)
	require.Equal(t, "async", cfg.BroadcastMode)
	require.Equal(t, 20*time.Second, cfg.WaitTx.Timeout)
	require.Equal(t, blockchain.BroadcastModeAsync, c.mode)
}

func TestSendWaitsForConfirmation(t *testing.T) {
	stub := &nodeStub{
		broadcast: &abcipb.TxResponse{Txhash: "ABC"},
		getTx:     []error{status.Error(codes.NotFound, "tx not found")},
	}
	c := newStubbedClient(t, stub, DefaultConfig())

	res, err := c.Send(context.Background(), []byte("signed"))
	require.NoError(t, err)
	require.Equal(t, "ABC", res.Txhash)
	require.Equal(t, int64(7), res.Height)
	require.Equal(t, 2, stub.callCount())
}

func TestSendTransactionWithoutWait(t *testing.T) {
	stub := &nodeStub{broadcast: &abcipb.TxResponse{Txhash: "ABC"}}
	c := newStubbedClient(t, stub, DefaultConfig())

	res, err := c.SendTransaction(context.Background(), []byte("signed"), blockchain.BroadcastModeSync, 0)
	require.NoError(t, err)
	require.Equal(t, "ABC", res.Txhash)
	require.Equal(t, int64(0), res.Height)
	require.Equal(t, 0, stub.callCount())
}

func TestSendDoesNotWaitAfterRejection(t *testing.T) {
	stub := &nodeStub{broadcast: &abcipb.TxResponse{
		Txhash:    "ABC",
		Code:      13,
		Codespace: "sdk",
		RawLog:    "insufficient fees; got: 1ulume required: 10ulume: insufficient fee",
	}}
	c := newStubbedClient(t, stub, DefaultConfig())

	_, err := c.Send(context.Background(), []byte("signed"))
	require.ErrorIs(t, err, types.ErrInsufficientFee)
	require.Equal(t, 0, stub.callCount())
}
