package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPC.URL)
	assert.Equal(t, 30*time.Second, cfg.RPC.Timeout)
	assert.Equal(t, 5, cfg.RPC.MaxRetries)
	assert.Equal(t, "82XBkYcPfaevmCNDJwV4EPcDrhWbvonN9iCUJaorfCRj", cfg.ProgramID().String())
	assert.Equal(t, "confirmed", cfg.Wallet.Commitment)
	assert.Equal(t, 15*time.Second, cfg.Redis.QuoteTTL)
	assert.Equal(t, uint16(1000), cfg.Risk.MaxSlippageBps)
	assert.Zero(t, cfg.Risk.DailyLimitUSDC)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SOLANA_RPC_URL", "http://legacy:8899")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CREDIT_API_DEV_MODE", "true")
	t.Setenv("CREDIT_RPC_RETRY_BACKOFF", "250ms")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://legacy:8899", cfg.RPC.URL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.API.DevMode)
	assert.Equal(t, 250*time.Millisecond, cfg.RPC.RetryBackoff)

	t.Setenv("CREDIT_RPC_URL", "http://prefixed:8899")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://prefixed:8899", cfg.RPC.URL, "prefixed variable wins")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rpc:
  url: http://localhost:8899
  timeout: 5s
pools:
  path: ./pools.yaml
risk:
  max_usdc_amount: 25000000
log:
  level: debug
  format: json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8899", cfg.RPC.URL)
	assert.Equal(t, 5*time.Second, cfg.RPC.Timeout)
	assert.Equal(t, "./pools.yaml", cfg.Pools.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, uint64(25_000_000), cfg.Risk.MaxUSDCAmount)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"rpc url", func(c *Config) { c.RPC.URL = "not a url" }},
		{"timeout", func(c *Config) { c.RPC.Timeout = 0 }},
		{"retries", func(c *Config) { c.RPC.MaxRetries = -1 }},
		{"program id", func(c *Config) { c.Program.ID = "xyz" }},
		{"commitment", func(c *Config) { c.Wallet.Commitment = "recent" }},
		{"rate", func(c *Config) { c.API.RateBurst = 0 }},
		{"slippage", func(c *Config) { c.Risk.MaxSlippageBps = 10_001 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, base.Validate())
}

func TestLogConfig_NewLogger(t *testing.T) {
	logger, closer, err := LogConfig{Level: "debug", Format: "json"}.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
	assert.NoError(t, closer.Close())

	file := filepath.Join(t.TempDir(), "credit.log")
	logger, closer, err = LogConfig{Level: "info", Format: "text", File: file}.NewLogger()
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")

	_, _, err = LogConfig{Level: "nope"}.NewLogger()
	assert.Error(t, err)
}
