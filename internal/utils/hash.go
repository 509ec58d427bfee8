package utils

import (
	"fmt"
	"strings"

	cmttypes "github.com/cometbft/cometbft/types"
)

// TxHash computes the CometBFT hash of raw tx bytes as upper-case hex,
// the same form nodes report in TxResponse.Txhash.
func TxHash(txBytes []byte) string {
	return fmt.Sprintf("%X", cmttypes.Tx(txBytes).Hash())
}

// NormalizeTxHash strips an optional 0x prefix and upper-cases the hash.
func NormalizeTxHash(h string) string {
	h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
	return strings.ToUpper(h)
}
