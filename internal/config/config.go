package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. CREDIT_RPC_URL.
const EnvPrefix = "CREDIT"

type Config struct {
	RPC        RPCConfig        `mapstructure:"rpc"`
	Program    ProgramConfig    `mapstructure:"program"`
	Pools      PoolsConfig      `mapstructure:"pools"`
	Wallet     WalletConfig     `mapstructure:"wallet"`
	Redis      RedisConfig      `mapstructure:"redis"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	API        APIConfig        `mapstructure:"api"`
	Risk       RiskConfig       `mapstructure:"risk"`
	Log        LogConfig        `mapstructure:"log"`
}

type RPCConfig struct {
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

type ProgramConfig struct {
	ID string `mapstructure:"id"`
}

type PoolsConfig struct {
	// Path to a JSON or YAML registry; empty uses the built-in pools.
	Path string `mapstructure:"path"`
}

type WalletConfig struct {
	PrivateKey string `mapstructure:"private_key"`
	Commitment string `mapstructure:"commitment"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	QuoteTTL time.Duration `mapstructure:"quote_ttl"`
}

type ClickHouseConfig struct {
	Addr     string `mapstructure:"addr"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type APIConfig struct {
	Addr           string        `mapstructure:"addr"`
	Key            string        `mapstructure:"key"`
	DevMode        bool          `mapstructure:"dev_mode"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`

	// Interval of the background quote refresh; zero disables it.
	QuoteRefresh time.Duration `mapstructure:"quote_refresh"`
}

// RiskConfig caps swaps sent by creditctl. Amounts are raw USDC units; zero
// disables a limit.
type RiskConfig struct {
	MaxUSDCAmount  uint64 `mapstructure:"max_usdc_amount"`
	DailyLimitUSDC uint64 `mapstructure:"daily_limit_usdc"`
	MaxSlippageBps uint16 `mapstructure:"max_slippage_bps"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
	File   string `mapstructure:"file"`
}

var defaults = map[string]any{
	"rpc.url":           "https://api.mainnet-beta.solana.com",
	"rpc.timeout":       30 * time.Second,
	"rpc.max_retries":   5,
	"rpc.retry_backoff": 2 * time.Second,

	"program.id": "82XBkYcPfaevmCNDJwV4EPcDrhWbvonN9iCUJaorfCRj",
	"pools.path": "",

	"wallet.private_key": "",
	"wallet.commitment":  "confirmed",

	"redis.addr":      "localhost:6379",
	"redis.password":  "",
	"redis.db":        0,
	"redis.quote_ttl": 15 * time.Second,

	"clickhouse.addr":     "localhost:9000",
	"clickhouse.database": "solana",
	"clickhouse.username": "default",
	"clickhouse.password": "",

	"api.addr":            ":8090",
	"api.key":             "",
	"api.dev_mode":        false,
	"api.request_timeout": 10 * time.Second,
	"api.rate_limit":      5.0,
	"api.rate_burst":      10,
	"api.quote_refresh":   30 * time.Second,

	"risk.max_usdc_amount":  0,
	"risk.daily_limit_usdc": 0,
	"risk.max_slippage_bps": 1000,

	"log.level":  "info",
	"log.format": "text",
	"log.file":   "",
}

// Unprefixed variable names accepted for compatibility with existing .env files.
var legacyEnv = map[string]string{
	"rpc.url":             "SOLANA_RPC_URL",
	"rpc.timeout":         "HTTP_TIMEOUT",
	"rpc.max_retries":     "MAX_RETRIES",
	"rpc.retry_backoff":   "RETRY_BACKOFF",
	"wallet.private_key":  "WALLET_PRIVATE_KEY",
	"wallet.commitment":   "WALLET_COMMITMENT",
	"redis.addr":          "REDIS_ADDR",
	"clickhouse.addr":     "CLICKHOUSE_ADDR",
	"clickhouse.database": "CLICKHOUSE_DATABASE",
	"clickhouse.username": "CLICKHOUSE_USERNAME",
	"clickhouse.password": "CLICKHOUSE_PASSWORD",
	"api.addr":            "API_ADDR",
	"api.key":             "API_KEY",
	"api.dev_mode":        "DEV_MODE",
	"log.level":           "LOG_LEVEL",
	"log.file":            "LOG_FILE",
	"pools.path":          "POOLS_CONFIG",
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing precedence. An empty configPath looks for
// credit.yaml in the working directory and $HOME.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("credit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the binaries cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.RPC.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("rpc.url: invalid URL %q", c.RPC.URL))
	}
	if c.RPC.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("rpc.timeout must be > 0"))
	}
	if c.RPC.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("rpc.max_retries must be >= 0"))
	}
	if _, err := solana.PublicKeyFromBase58(c.Program.ID); err != nil {
		errs = append(errs, fmt.Errorf("program.id: %w", err))
	}
	switch c.Wallet.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		errs = append(errs, fmt.Errorf("wallet.commitment: unknown level %q", c.Wallet.Commitment))
	}
	if c.API.RateLimit <= 0 || c.API.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("api.rate_limit and api.rate_burst must be > 0"))
	}
	if c.Risk.MaxSlippageBps > 10_000 {
		errs = append(errs, fmt.Errorf("risk.max_slippage_bps must be <= 10000"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format: expected text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// ProgramID returns the validated program address.
func (c *Config) ProgramID() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.Program.ID)
}
