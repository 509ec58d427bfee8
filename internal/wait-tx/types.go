package waittx

import (
	"context"
	"fmt"
	"time"

	abcipb "cosmossdk.io/api/cosmos/base/abci/v1beta1"
	txtypes "cosmossdk.io/api/cosmos/tx/v1beta1"
)

// Querier fetches transactions by hash.
type Querier interface {
	GetTx(ctx context.Context, req *txtypes.GetTxRequest) (*txtypes.GetTxResponse, error)
}

// QuerierFunc adapts a function (typically a gRPC tx service call) to Querier.
type QuerierFunc func(ctx context.Context, req *txtypes.GetTxRequest) (*txtypes.GetTxResponse, error)

func (f QuerierFunc) GetTx(ctx context.Context, req *txtypes.GetTxRequest) (*txtypes.GetTxResponse, error) {
	return f(ctx, req)
}

// Clock is the time source the poller measures its budget and sleeps against.
// github.com/andres-erbsen/clock satisfies it.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// FailedError reports that confirmation ended without a node-reported result.
// Response is always the provisional broadcast response the wait started from.
type FailedError struct {
	Response *abcipb.TxResponse
	Elapsed  time.Duration
	Attempts int
	// TimedOut is set when the wait budget (or retry cap) ran out.
	TimedOut bool
	// Cause is the query error that ended the wait, if any.
	Cause error
}

func (e *FailedError) Error() string {
	hash := ""
	if e.Response != nil {
		hash = e.Response.Txhash
	}
	if e.TimedOut {
		return fmt.Sprintf("tx %s not confirmed after %s (%d queries)", hash, e.Elapsed, e.Attempts)
	}
	return fmt.Sprintf("tx %s confirmation aborted after %s: %v", hash, e.Elapsed, e.Cause)
}

func (e *FailedError) Unwrap() error { return e.Cause }
