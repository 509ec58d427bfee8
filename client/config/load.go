package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides, e.g. TXCLIENT_GRPC_ENDPOINT or TXCLIENT_WAIT_TX_TIMEOUT.
const EnvPrefix = "TXCLIENT"

// Load reads a config file (yaml, toml or json, by extension), applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	defaults := map[string]interface{}{
		"grpc_endpoint":                     def.GRPCEndpoint,
		"insecure_grpc":                     def.InsecureGRPC,
		"blockchain_timeout":                def.BlockchainTimeout,
		"max_recv_msg_size":                 def.MaxRecvMsgSize,
		"max_send_msg_size":                 def.MaxSendMsgSize,
		"broadcast_mode":                    def.BroadcastMode,
		"log_level":                         def.LogLevel,
		"wait_tx.timeout":                   def.WaitTx.Timeout,
		"wait_tx.poll_interval":             def.WaitTx.PollInterval,
		"wait_tx.poll_max_retries":          def.WaitTx.PollMaxRetries,
		"wait_tx.poll_backoff_multiplier":   def.WaitTx.PollBackoffMultiplier,
		"wait_tx.poll_backoff_max_interval": def.WaitTx.PollBackoffMaxInterval,
		"wait_tx.poll_backoff_jitter":       def.WaitTx.PollBackoffJitter,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
