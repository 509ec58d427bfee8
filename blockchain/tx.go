package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	abcipb "cosmossdk.io/api/cosmos/base/abci/v1beta1"
	txtypes "cosmossdk.io/api/cosmos/tx/v1beta1"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/LumeraProtocol/txclient-go/internal/utils"
	waittx "github.com/LumeraProtocol/txclient-go/internal/wait-tx"
)

// BroadcastMode controls how long the broadcast call itself waits.
type BroadcastMode = txtypes.BroadcastMode

const (
	// BroadcastModeSync returns after the node's CheckTx; the default for sends.
	BroadcastModeSync = txtypes.BroadcastMode_BROADCAST_MODE_SYNC
	// BroadcastModeAsync returns immediately without any validity check.
	BroadcastModeAsync = txtypes.BroadcastMode_BROADCAST_MODE_ASYNC
	// BroadcastModeBlock waits for commit on nodes that still support it.
	BroadcastModeBlock = txtypes.BroadcastMode_BROADCAST_MODE_BLOCK
)

// ParseBroadcastMode maps "sync", "async" or "block" to a BroadcastMode.
// An empty string selects sync.
func ParseBroadcastMode(s string) (BroadcastMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sync":
		return BroadcastModeSync, nil
	case "async":
		return BroadcastModeAsync, nil
	case "block":
		return BroadcastModeBlock, nil
	default:
		return txtypes.BroadcastMode_BROADCAST_MODE_UNSPECIFIED, fmt.Errorf("unknown broadcast mode %q", s)
	}
}

// Envelope is a fully assembled tx for simulation. The fee in AuthInfo may be unset.
type Envelope struct {
	Body       *txtypes.TxBody
	AuthInfo   *txtypes.AuthInfo
	Signatures [][]byte
}

// Broadcast submits signed tx bytes exactly once with the chosen mode.
//
// On success the returned response is provisional: the node accepted the tx
// but inclusion is not known yet. A fee rejection returns *InsufficientFeeError
// and a synchronous failure returns *TxFailedError with zero elapsed time;
// neither should be followed by WaitForTransaction.
func (c *Client) Broadcast(ctx context.Context, txBytes []byte, mode BroadcastMode) (*abcipb.TxResponse, error) {
	localHash := utils.TxHash(txBytes)
	c.logger.Debug("broadcasting tx",
		zap.String("tx_hash", localHash),
		zap.Stringer("mode", mode),
		zap.Int("size", len(txBytes)))

	callCtx, cancel := c.CallContext(ctx)
	defer cancel()
	resp, err := c.tx.BroadcastTx(callCtx, &txtypes.BroadcastTxRequest{
		TxBytes: txBytes,
		Mode:    mode,
	})
	if err != nil {
		return nil, &TransportError{Op: "broadcast tx", Err: err}
	}
	if resp == nil || resp.TxResponse == nil {
		return nil, &MalformedResponseError{Op: "broadcast tx", Field: "tx_response"}
	}
	txResp := resp.TxResponse

	outcome := Classify(txResp)
	switch outcome.Kind {
	case OutcomeInsufficientFee:
		c.logger.Warn("tx rejected for fee",
			zap.String("tx_hash", txResp.Txhash),
			zap.Stringer("required", outcome.Fee),
			zap.String("raw_log", txResp.RawLog))
		return nil, &InsufficientFeeError{Fee: *outcome.Fee, Response: txResp}
	case OutcomeFailed:
		c.logger.Warn("tx rejected by node",
			zap.String("tx_hash", txResp.Txhash),
			zap.Uint32("code", txResp.Code),
			zap.String("codespace", txResp.Codespace),
			zap.String("raw_log", txResp.RawLog))
		return nil, &TxFailedError{Response: txResp, Elapsed: 0}
	}

	if txResp.Txhash == "" {
		txResp = proto.Clone(txResp).(*abcipb.TxResponse)
		txResp.Txhash = localHash
	}
	c.logger.Debug("tx accepted", zap.String("tx_hash", txResp.Txhash))
	return txResp, nil
}

// Simulate runs a dry-run of the provided tx bytes and returns the gas estimate.
// Errors about the payload come back from the node inside the returned error.
func (c *Client) Simulate(ctx context.Context, txBytes []byte) (*abcipb.GasInfo, error) {
	callCtx, cancel := c.CallContext(ctx)
	defer cancel()
	resp, err := c.tx.Simulate(callCtx, &txtypes.SimulateRequest{
		TxBytes: txBytes,
	})
	if err != nil {
		return nil, &TransportError{Op: "simulate tx", Err: err}
	}
	if resp == nil || resp.GasInfo == nil {
		return nil, &MalformedResponseError{Op: "simulate tx", Field: "gas_info"}
	}
	c.logger.Debug("tx simulated",
		zap.Uint64("gas_used", resp.GasInfo.GasUsed),
		zap.Uint64("gas_wanted", resp.GasInfo.GasWanted))
	return resp.GasInfo, nil
}

// SimulateEnvelope encodes env as a tx and simulates it.
func (c *Client) SimulateEnvelope(ctx context.Context, env Envelope) (*abcipb.GasInfo, error) {
	txBytes, err := proto.Marshal(&txtypes.Tx{
		Body:       env.Body,
		AuthInfo:   env.AuthInfo,
		Signatures: env.Signatures,
	})
	if err != nil {
		return nil, fmt.Errorf("encode tx envelope: %w", err)
	}
	return c.Simulate(ctx, txBytes)
}

// EstimateGas scales the simulated gas by adjustment (e.g. 1.3 for a 30% buffer).
func EstimateGas(info *abcipb.GasInfo, adjustment float64) uint64 {
	if info == nil || info.GasUsed == 0 {
		return 0
	}
	if adjustment < 1 {
		adjustment = 1
	}
	gas := math.Ceil(float64(info.GasUsed) * adjustment)
	if gas >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(gas)
}

// GetTx fetches a transaction by hash via the tx service.
func (c *Client) GetTx(ctx context.Context, hash string) (*txtypes.GetTxResponse, error) {
	return c.queryTx(ctx, &txtypes.GetTxRequest{Hash: utils.NormalizeTxHash(hash)})
}

func (c *Client) queryTx(ctx context.Context, req *txtypes.GetTxRequest) (*txtypes.GetTxResponse, error) {
	callCtx, cancel := c.CallContext(ctx)
	defer cancel()
	resp, err := c.tx.GetTx(callCtx, req)
	if err != nil {
		return nil, &TransportError{Op: "get tx", Err: err}
	}
	if resp == nil {
		return nil, &MalformedResponseError{Op: "get tx", Field: "response"}
	}
	return resp, nil
}

// WaitForTransaction polls the node until the provisional tx is executed, the
// timeout elapses or a fatal query error occurs. It returns the executed
// response on success; a non-zero execution result or an expired budget is
// reported as *TxFailedError.
func (c *Client) WaitForTransaction(ctx context.Context, provisional *abcipb.TxResponse, timeout time.Duration) (*abcipb.TxResponse, error) {
	started := c.clock.Now()
	res, err := c.poller.Wait(ctx, provisional, timeout)
	if err != nil {
		var fe *waittx.FailedError
		if errors.As(err, &fe) {
			c.logger.Warn("tx not confirmed",
				zap.String("tx_hash", provisional.GetTxhash()),
				zap.Bool("timed_out", fe.TimedOut),
				zap.Duration("elapsed", fe.Elapsed),
				zap.Error(fe.Cause))
			return nil, &TxFailedError{Response: fe.Response, Elapsed: fe.Elapsed, TimedOut: fe.TimedOut, Cause: fe.Cause}
		}
		return nil, err
	}

	switch outcome := Classify(res); outcome.Kind {
	case OutcomeSuccess:
		c.logger.Info("tx confirmed",
			zap.String("tx_hash", res.Txhash),
			zap.Int64("height", res.Height),
			zap.Int64("gas_used", res.GasUsed))
		return res, nil
	default:
		elapsed := c.clock.Now().Sub(started)
		c.logger.Warn("tx executed with failure",
			zap.String("tx_hash", res.Txhash),
			zap.Stringer("outcome", outcome.Kind),
			zap.Uint32("code", res.Code),
			zap.String("raw_log", res.RawLog))
		return nil, &TxFailedError{Response: res, Elapsed: elapsed}
	}
}

// ExtractEventAttribute returns the value of the first attrKey attribute in
// the first eventType event of a confirmed tx response.
func ExtractEventAttribute(tx *abcipb.TxResponse, eventType, attrKey string) (string, error) {
	if tx == nil {
		return "", fmt.Errorf("nil tx response")
	}
	events := tx.GetEvents()
	if len(events) == 0 {
		return "", fmt.Errorf("no events in tx response")
	}
	for _, ev := range events {
		if ev == nil {
			continue
		}
		// abci.Event uses GetType_() since 'type' is a reserved field name
		if ev.GetType_() != eventType {
			continue
		}
		for _, attr := range ev.GetAttributes() {
			if attr != nil && attr.GetKey() == attrKey {
				return attr.GetValue(), nil
			}
		}
	}
	return "", fmt.Errorf("attribute %q not found in event type %q", attrKey, eventType)
}
