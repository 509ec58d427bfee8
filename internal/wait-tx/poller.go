package waittx

import (
	"context"
	"errors"
	"fmt"
	"time"

	abcipb "cosmossdk.io/api/cosmos/base/abci/v1beta1"
	txtypes "cosmossdk.io/api/cosmos/tx/v1beta1"
	"github.com/andres-erbsen/clock"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	clientconfig "github.com/LumeraProtocol/txclient-go/client/config"
)

// Poller waits for a broadcast tx by repeatedly querying it by hash.
// It holds no per-wait state, so one Poller may serve concurrent waits.
type Poller struct {
	querier    Querier
	clock      Clock
	newBackoff func() backoff.BackOff
	maxTries   int
	logger     *zap.Logger
}

// Option customizes a Poller.
type Option func(*Poller)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(p *Poller) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithLogger sets the logger used for per-attempt diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a poller based on the provided config and querier.
func New(q Querier, cfg clientconfig.WaitTxConfig, opts ...Option) (*Poller, error) {
	if q == nil {
		return nil, fmt.Errorf("querier is required")
	}
	normalized := cfg
	clientconfig.ApplyWaitTxDefaults(&normalized)

	p := &Poller{
		querier:    q,
		clock:      clock.New(),
		newBackoff: func() backoff.BackOff { return NewBackoff(normalized) },
		maxTries:   normalized.PollMaxRetries,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Wait polls GetTx for the hash carried by provisional until the node returns
// a tx response, the timeout elapses or a fatal query error occurs.
//
// NotFound, Unknown and InvalidArgument statuses mean "not yet visible": the
// tx query service reports all three for a tx that is simply absent from its
// index. Any other gRPC status ends the wait with a *FailedError carrying the
// provisional response. Non-status errors are returned unchanged. When the
// budget runs out the *FailedError has TimedOut set and Elapsed == timeout.
func (p *Poller) Wait(ctx context.Context, provisional *abcipb.TxResponse, timeout time.Duration) (*abcipb.TxResponse, error) {
	if provisional == nil || provisional.Txhash == "" {
		return nil, fmt.Errorf("provisional tx response carries no hash")
	}
	hash := provisional.Txhash
	interval := p.newBackoff()
	start := p.clock.Now()
	attempts := 0

	for p.clock.Now().Sub(start) < timeout {
		resp, err := p.querier.GetTx(ctx, &txtypes.GetTxRequest{Hash: hash})
		attempts++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("wait for tx %s: %w", hash, ctxErr)
			}
			st, ok := status.FromError(err)
			if !ok {
				return nil, err
			}
			if !isAbsent(st.Code()) {
				elapsed := p.clock.Now().Sub(start)
				p.logger.Warn("tx query failed",
					zap.String("tx_hash", hash),
					zap.Stringer("code", st.Code()),
					zap.Duration("elapsed", elapsed),
					zap.Error(err))
				return nil, &FailedError{Response: provisional, Elapsed: elapsed, Attempts: attempts, Cause: err}
			}
			p.logger.Debug("tx not yet visible", zap.String("tx_hash", hash), zap.Stringer("code", st.Code()), zap.Int("attempt", attempts))
		} else if resp != nil && resp.TxResponse != nil {
			p.logger.Debug("tx observed",
				zap.String("tx_hash", hash),
				zap.Int64("height", resp.TxResponse.Height),
				zap.Uint32("code", resp.TxResponse.Code),
				zap.Int("attempt", attempts))
			return resp.TxResponse, nil
		}

		if p.maxTries > 0 && attempts >= p.maxTries {
			return nil, &FailedError{Response: provisional, Elapsed: p.clock.Now().Sub(start), Attempts: attempts, TimedOut: true}
		}

		delay := interval.NextBackOff()
		if delay == backoff.Stop {
			delay = time.Second
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for tx %s: %w", hash, ctx.Err())
		case <-p.clock.After(delay):
		}
	}

	return nil, &FailedError{Response: provisional, Elapsed: timeout, Attempts: attempts, TimedOut: true}
}

func isAbsent(code codes.Code) bool {
	switch code {
	case codes.NotFound, codes.Unknown, codes.InvalidArgument:
		return true
	}
	return false
}

// IsTimeout reports whether err is a confirmation budget expiry.
func IsTimeout(err error) bool {
	var fe *FailedError
	return errors.As(err, &fe) && fe.TimedOut
}
