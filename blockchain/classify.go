package blockchain

import (
	"regexp"
	"strings"

	abcipb "cosmossdk.io/api/cosmos/base/abci/v1beta1"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/LumeraProtocol/txclient-go/types"
)

// OutcomeKind is the classification of a node-reported tx response.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeFailed
	OutcomeInsufficientFee
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeInsufficientFee:
		return "insufficient_fee"
	default:
		return "unknown"
	}
}

// Outcome is the result of Classify. Fee is set only for OutcomeInsufficientFee.
type Outcome struct {
	Kind OutcomeKind
	Fee  *types.FeeInfo
}

// requiredFeesRe matches the fee requirement the ante handler and fee market
// modules print, e.g. "insufficient fees; got: 1stake required: 200stake: insufficient fee".
var requiredFeesRe = regexp.MustCompile(`required:\s*([0-9A-Za-z./,\-]+)`)

// Classify maps a node tx response to an outcome. Fee rejection is checked
// first: it is caller-actionable (re-fee and re-broadcast), while any other
// non-zero code is a permanent failure.
func Classify(resp *abcipb.TxResponse) Outcome {
	if resp == nil {
		return Outcome{Kind: OutcomeFailed}
	}
	if fee, ok := feeRequirement(resp); ok {
		return Outcome{Kind: OutcomeInsufficientFee, Fee: &fee}
	}
	if resp.Code == 0 {
		return Outcome{Kind: OutcomeSuccess}
	}
	return Outcome{Kind: OutcomeFailed}
}

func feeRequirement(resp *abcipb.TxResponse) (types.FeeInfo, bool) {
	rootSpace := resp.Codespace == "" || resp.Codespace == sdkerrors.RootCodespace

	switch {
	case rootSpace && resp.Code == sdkerrors.ErrInsufficientFee.ABCICode(),
		resp.Code != 0 && strings.Contains(strings.ToLower(resp.RawLog), "insufficient fee"):
		return types.FeeInfo{MinFees: parseRequiredFees(resp.RawLog)}, true
	case rootSpace && resp.Code == sdkerrors.ErrOutOfGas.ABCICode():
		var minGas uint64
		if resp.GasUsed > 0 {
			minGas = uint64(resp.GasUsed)
		}
		return types.FeeInfo{MinGas: minGas}, true
	}
	return types.FeeInfo{}, false
}

// parseRequiredFees extracts the "required: <coins>" fragment; unparseable
// logs yield no coins.
func parseRequiredFees(rawLog string) sdk.Coins {
	m := requiredFeesRe.FindStringSubmatch(rawLog)
	if len(m) < 2 {
		return nil
	}
	coins, err := sdk.ParseCoinsNormalized(strings.TrimRight(m[1], ".,"))
	if err != nil {
		return nil
	}
	return coins
}
