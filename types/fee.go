package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// FeeInfo carries the minimum fee and/or gas a node reported when rejecting a tx.
// Values are parsed best-effort from free-form node messages.
type FeeInfo struct {
	MinFees sdk.Coins
	MinGas  uint64
}

// String renders the fee requirement for logs and error messages.
func (f FeeInfo) String() string {
	switch {
	case !f.MinFees.Empty() && f.MinGas > 0:
		return fmt.Sprintf("min fees %s, min gas %d", f.MinFees, f.MinGas)
	case f.MinGas > 0:
		return fmt.Sprintf("min gas %d", f.MinGas)
	case !f.MinFees.Empty():
		return fmt.Sprintf("min fees %s", f.MinFees)
	default:
		return "fee requirement unknown"
	}
}
