package waittx

import (
	"github.com/cenkalti/backoff/v4"

	clientconfig "github.com/LumeraProtocol/txclient-go/client/config"
)

// NewBackoff constructs the poll cadence from the WaitTx configuration.
// The default is a constant interval; a multiplier > 1, jitter or a max
// interval switch to an exponential schedule.
func NewBackoff(cfg clientconfig.WaitTxConfig) backoff.BackOff {
	clientconfig.ApplyWaitTxDefaults(&cfg)
	if cfg.PollBackoffMultiplier <= 1 && cfg.PollBackoffJitter == 0 && cfg.PollBackoffMaxInterval == 0 {
		return backoff.NewConstantBackOff(cfg.PollInterval)
	}

	multiplier := cfg.PollBackoffMultiplier
	if multiplier < 1 {
		multiplier = 1
	}
	maxInterval := cfg.PollBackoffMaxInterval
	if maxInterval <= 0 {
		maxInterval = cfg.Timeout
	}
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(cfg.PollInterval),
		backoff.WithMultiplier(multiplier),
		backoff.WithMaxInterval(maxInterval),
		backoff.WithRandomizationFactor(cfg.PollBackoffJitter),
		backoff.WithMaxElapsedTime(0), // the poller's own deadline bounds the wait
	)
}
