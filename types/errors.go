package types

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTransport is returned when the RPC channel to the node fails
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse is returned when a node reply is missing a required payload
	ErrMalformedResponse = errors.New("malformed node response")

	// ErrInsufficientFee is returned when the node rejects a tx for its fee or gas limit
	ErrInsufficientFee = errors.New("insufficient fee")

	// ErrTxFailed is returned when the ledger reports a non-zero execution result
	ErrTxFailed = errors.New("transaction failed")

	// ErrTimeout is returned when confirmation was not observed within the wait budget
	ErrTimeout = errors.New("operation timed out")
)
