package constants

import "time"

// Redis keys
const (
	RedisKeyLatestQuotePrefix = "quote:latest:" // + pool name
	RedisKeyRecentQuotes      = "quotes:recent"
	RedisKeyRecentSwaps       = "swaps:recent"
	RedisKeyFlags             = "flags"       // hash: flag key -> JSON
	RedisKeyRiskUsagePrefix   = "risk:usage:" // + signer, sorted set scored by unix millis
)

// Redis Pub/Sub channels
const (
	PubSubChannelQuotes     = "quotes:live"
	PubSubChannelPoolPrefix = "quotes:pool:" // + pool name
	PubSubChannelSwaps      = "swaps:live"
)

// Limits
const (
	MaxRecentQuotes = 100
	MaxRecentSwaps  = 100
)

// DefaultQuoteTTL bounds how long a cached price is served.
const DefaultQuoteTTL = 15 * time.Second

// ClickHouse tables
const (
	TableQuotes = "credit_quotes"
	TableSwaps  = "credit_swaps"
)

// Flag keys. The escaped pool name is appended by flags.SwapFlagKey.
const FlagSwapEnabledPrefix = "swap.enabled."
