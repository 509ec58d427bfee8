package blockchain

import (
	"fmt"
	"time"

	abcipb "cosmossdk.io/api/cosmos/base/abci/v1beta1"

	"github.com/LumeraProtocol/txclient-go/types"
)

// TransportError wraps an RPC-layer failure. It is never retried.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == types.ErrTransport }

// MalformedResponseError reports a node reply missing a required payload field.
type MalformedResponseError struct {
	Op    string
	Field string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: node reply missing %s", e.Op, e.Field)
}

func (e *MalformedResponseError) Is(target error) bool { return target == types.ErrMalformedResponse }

// InsufficientFeeError is returned when the node refused a tx for its fee or gas.
// Callers should re-fee, re-sign and broadcast again.
type InsufficientFeeError struct {
	Fee      types.FeeInfo
	Response *abcipb.TxResponse
}

func (e *InsufficientFeeError) Error() string {
	return fmt.Sprintf("tx rejected for insufficient fee (%s): %s", e.Fee, e.Response.GetRawLog())
}

func (e *InsufficientFeeError) Is(target error) bool { return target == types.ErrInsufficientFee }

// TxFailedError carries the best known response of a tx that failed or was not
// confirmed in time, with the time spent waiting. A timed-out wait also matches
// types.ErrTimeout; otherwise both cases share this shape.
type TxFailedError struct {
	Response *abcipb.TxResponse
	Elapsed  time.Duration
	TimedOut bool
	Cause    error
}

func (e *TxFailedError) Error() string {
	hash := e.Response.GetTxhash()
	switch {
	case e.TimedOut:
		return fmt.Sprintf("tx %s not confirmed within %s", hash, e.Elapsed)
	case e.Cause != nil:
		return fmt.Sprintf("tx %s failed after %s: %v", hash, e.Elapsed, e.Cause)
	default:
		return fmt.Sprintf("tx %s failed with code %d (codespace %q) after %s: %s",
			hash, e.Response.GetCode(), e.Response.GetCodespace(), e.Elapsed, e.Response.GetRawLog())
	}
}

func (e *TxFailedError) Unwrap() error { return e.Cause }

func (e *TxFailedError) Is(target error) bool {
	return target == types.ErrTxFailed || (e.TimedOut && target == types.ErrTimeout)
}
