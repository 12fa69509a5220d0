package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aman-zulfiqar/credit-program/internal/constants"
	"github.com/aman-zulfiqar/credit-program/internal/models"
	"github.com/aman-zulfiqar/credit-program/internal/storage"
)

// PriceCache keeps the latest quote per pool and a bounded list of recent
// quotes and swaps in Redis.
type PriceCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ storage.QuoteCache = (*PriceCache)(nil)

// RedisOptions builds client options from an address, password and db.
func RedisOptions(addr, password string, db int) *redis.Options {
	return &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
}

// NewPriceCache wraps client. A zero ttl uses the default quote TTL.
func NewPriceCache(client redis.Cmdable, ttl time.Duration) (*PriceCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		ttl = constants.DefaultQuoteTTL
	}
	return &PriceCache{client: client, ttl: ttl}, nil
}

func latestKey(pool string) string {
	return constants.RedisKeyLatestQuotePrefix + pool
}

// SetLatestQuote stores q as the current quote of its pool and appends it to
// the recent list.
func (c *PriceCache) SetLatestQuote(ctx context.Context, q *models.PriceQuote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, latestKey(q.Pool), data, c.ttl)
	pipe.LPush(ctx, constants.RedisKeyRecentQuotes, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentQuotes, 0, constants.MaxRecentQuotes-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store quote: %w", err)
	}
	return nil
}

// GetLatestQuote returns the cached quote of pool, or nil on a miss.
func (c *PriceCache) GetLatestQuote(ctx context.Context, pool string) (*models.PriceQuote, error) {
	val, err := c.client.Get(ctx, latestKey(pool)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}

	var q models.PriceQuote
	if err := json.Unmarshal(val, &q); err != nil {
		return nil, fmt.Errorf("unmarshal quote: %w", err)
	}
	return &q, nil
}

// RecentQuotes returns up to limit quotes, newest first.
func (c *PriceCache) RecentQuotes(ctx context.Context, limit int) ([]*models.PriceQuote, error) {
	if limit <= 0 || limit > constants.MaxRecentQuotes {
		limit = constants.MaxRecentQuotes
	}
	vals, err := c.client.LRange(ctx, constants.RedisKeyRecentQuotes, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}

	out := make([]*models.PriceQuote, 0, len(vals))
	for _, v := range vals {
		var q models.PriceQuote
		if err := json.Unmarshal([]byte(v), &q); err != nil {
			continue
		}
		out = append(out, &q)
	}
	return out, nil
}

// AddRecentSwap appends a submission to the recent swap list.
func (c *PriceCache) AddRecentSwap(ctx context.Context, s *models.SwapSubmission) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentSwaps, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentSwaps, 0, constants.MaxRecentSwaps-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store swap: %w", err)
	}
	return nil
}

// RecentSwaps returns up to limit submissions, newest first.
func (c *PriceCache) RecentSwaps(ctx context.Context, limit int) ([]*models.SwapSubmission, error) {
	if limit <= 0 || limit > constants.MaxRecentSwaps {
		limit = constants.MaxRecentSwaps
	}
	vals, err := c.client.LRange(ctx, constants.RedisKeyRecentSwaps, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list swaps: %w", err)
	}

	out := make([]*models.SwapSubmission, 0, len(vals))
	for _, v := range vals {
		var s models.SwapSubmission
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			continue
		}
		out = append(out, &s)
	}
	return out, nil
}
