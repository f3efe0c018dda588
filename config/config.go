// Package config carries the tunables of the bootstrap pipeline.
// Everything has a working default for a local test network; a YAML
// file can override any of it.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/restaking-labs/restaking-network-runner/utils/constants"
	"github.com/spf13/viper"
)

type Program struct {
	Address string `mapstructure:"address"`
	Path    string `mapstructure:"path"`
}

type Config struct {
	// RPC endpoint of the local validator.
	RPCURL string `mapstructure:"rpc_url"`

	// Directory layout.
	KeysDir   string `mapstructure:"keys_dir"`
	LogsDir   string `mapstructure:"logs_dir"`
	LedgerDir string `mapstructure:"ledger_dir"`

	// Validator binary and the on-chain programs it preloads.
	ValidatorBinary string    `mapstructure:"validator_binary"`
	Programs        []Program `mapstructure:"programs"`

	// Retry policy.
	MaxRetryAttempts int           `mapstructure:"max_retry_attempts"`
	BaseRetryDelay   time.Duration `mapstructure:"base_retry_delay"`

	// Delay between a handshake's initialize and warmup calls.
	SettleDelay time.Duration `mapstructure:"settle_delay"`

	// Funding thresholds, in whole SOL.
	MinBalanceSol uint64 `mapstructure:"min_balance_sol"`
	AirdropSol    uint64 `mapstructure:"airdrop_sol"`

	// Registry parameters.
	NumOperators   int    `mapstructure:"num_operators"`
	OperatorFeeBps uint16 `mapstructure:"operator_fee_bps"`

	// Vault parameters.
	DepositFeeBps         uint16 `mapstructure:"deposit_fee_bps"`
	WithdrawalFeeBps      uint16 `mapstructure:"withdrawal_fee_bps"`
	RewardFeeBps          uint16 `mapstructure:"reward_fee_bps"`
	Decimals              uint8  `mapstructure:"decimals"`
	InitializeTokenAmount uint64 `mapstructure:"initialize_token_amount"`

	// Token amounts, in base units.
	MintAmount          uint64 `mapstructure:"mint_amount"`
	DepositorMintAmount uint64 `mapstructure:"depositor_mint_amount"`
	VRTMintAmount       uint64 `mapstructure:"vrt_mint_amount"`
	DelegationAmount    uint64 `mapstructure:"delegation_amount"`
}

// Load reads configuration from [path] if non-empty, otherwise only
// defaults apply. Environment variables with the RNR_ prefix override
// file values.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RNR")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("couldn't read config file %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("couldn't unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc_url", "http://127.0.0.1:8899")
	v.SetDefault("keys_dir", "keys")
	v.SetDefault("logs_dir", "logs")
	v.SetDefault("ledger_dir", "test-ledger")
	v.SetDefault("validator_binary", constants.ValidatorProcessName)
	v.SetDefault("max_retry_attempts", constants.MaxRetryAttempts)
	v.SetDefault("base_retry_delay", constants.BaseRetryDelay)
	v.SetDefault("settle_delay", constants.SettleDelay)
	v.SetDefault("min_balance_sol", constants.MinBalanceSol)
	v.SetDefault("airdrop_sol", constants.AirdropSol)
	v.SetDefault("num_operators", 3)
	v.SetDefault("operator_fee_bps", 100)
	v.SetDefault("deposit_fee_bps", 100)
	v.SetDefault("withdrawal_fee_bps", 100)
	v.SetDefault("reward_fee_bps", 100)
	v.SetDefault("decimals", 9)
	v.SetDefault("initialize_token_amount", 1000000000)
	v.SetDefault("mint_amount", 100000)
	v.SetDefault("depositor_mint_amount", 10000)
	v.SetDefault("vrt_mint_amount", 1000)
	v.SetDefault("delegation_amount", 100)
}

// EnsureDirs creates the output directories the pipeline writes to.
// Creation is idempotent.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.KeysDir, c.LogsDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("couldn't create directory %q: %w", dir, err)
		}
	}
	return nil
}
