package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aman-zulfiqar/credit-program/internal/client"
	"github.com/aman-zulfiqar/credit-program/internal/constants"
)

// RiskUsage keeps the swaps of one signer in a Redis sorted set scored by
// time, so every process sending for that signer sees the same daily usage.
type RiskUsage struct {
	client redis.Cmdable
	key    string
	window time.Duration
	now    func() time.Time
}

var _ client.UsageStore = (*RiskUsage)(nil)

// NewRiskUsage tracks usage for signer over client.DailyWindow.
func NewRiskUsage(rc redis.Cmdable, signer string) (*RiskUsage, error) {
	if rc == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if signer == "" {
		return nil, fmt.Errorf("signer is required")
	}
	return &RiskUsage{
		client: rc,
		key:    constants.RedisKeyRiskUsagePrefix + signer,
		window: client.DailyWindow,
		now:    time.Now,
	}, nil
}

// Record adds amount at the current time. Members are "<amount>:<uuid>" so
// equal amounts in the same instant stay distinct.
func (r *RiskUsage) Record(ctx context.Context, amount uint64) error {
	now := r.now()
	member := strconv.FormatUint(amount, 10) + ":" + uuid.NewString()

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, r.key, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	pipe.ZRemRangeByScore(ctx, r.key, "-inf", r.cutoff(now))
	pipe.Expire(ctx, r.key, r.window+time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// Usage sums the amounts recorded inside the window.
func (r *RiskUsage) Usage(ctx context.Context) (uint64, error) {
	members, err := r.client.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{
		Min: "(" + r.cutoff(r.now()),
		Max: "+inf",
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("read usage: %w", err)
	}

	var total uint64
	for _, m := range members {
		amount, _, _ := strings.Cut(m, ":")
		n, err := strconv.ParseUint(amount, 10, 64)
		if err != nil {
			continue
		}
		total = client.SaturatingAdd(total, n)
	}
	return total, nil
}

func (r *RiskUsage) cutoff(now time.Time) string {
	return strconv.FormatInt(now.Add(-r.window).UnixMilli(), 10)
}
