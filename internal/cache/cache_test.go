package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/credit-program/internal/config"
	"github.com/aman-zulfiqar/credit-program/internal/constants"
	"github.com/aman-zulfiqar/credit-program/internal/models"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(RedisOptions("localhost:6379", "", 2))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	require.NoError(t, client.FlushDB(ctx).Err())

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}

func sampleQuote(pool string, n int) *models.PriceQuote {
	return &models.PriceQuote{
		ID:           fmt.Sprintf("q-%d", n),
		Pool:         pool,
		Address:      "DBJ5hywaJQKfjyt8Ekng4t6KB1gvqnYFdcJoTppCNikt",
		SqrtPriceX64: "922337203685477581",
		Price:        "2.500000",
		BonoAmount:   uint64(n),
		USDCValue:    "2.500000",
		Source:       models.SourceLocal,
		QuotedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestNewPriceCache_NilClient(t *testing.T) {
	_, err := NewPriceCache(nil, 0)
	assert.Error(t, err)
}

func TestPriceCache_LatestQuote(t *testing.T) {
	client := setupTestRedis(t)
	c, err := NewPriceCache(client, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	q, err := c.GetLatestQuote(ctx, "BONO/USDC")
	require.NoError(t, err)
	assert.Nil(t, q, "miss")

	want := sampleQuote("BONO/USDC", 1)
	require.NoError(t, c.SetLatestQuote(ctx, want))

	got, err := c.GetLatestQuote(ctx, "BONO/USDC")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ttl, err := client.TTL(ctx, latestKey("BONO/USDC")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestPriceCache_RecentQuotesBounded(t *testing.T) {
	client := setupTestRedis(t)
	c, err := NewPriceCache(client, 0)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < constants.MaxRecentQuotes+5; i++ {
		require.NoError(t, c.SetLatestQuote(ctx, sampleQuote("BONO/USDC", i)))
	}

	n, err := client.LLen(ctx, constants.RedisKeyRecentQuotes).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(constants.MaxRecentQuotes), n)

	recent, err := c.RecentQuotes(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, uint64(constants.MaxRecentQuotes+4), recent[0].BonoAmount, "newest first")
}

func TestPriceCache_RecentSwaps(t *testing.T) {
	client := setupTestRedis(t)
	c, err := NewPriceCache(client, 0)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.AddRecentSwap(ctx, &models.SwapSubmission{ExecutionID: "a", Success: true}))
	require.NoError(t, c.AddRecentSwap(ctx, &models.SwapSubmission{ExecutionID: "b", Error: "boom"}))

	swaps, err := c.RecentSwaps(ctx, 0)
	require.NoError(t, err)
	require.Len(t, swaps, 2)
	assert.Equal(t, "b", swaps[0].ExecutionID)
	assert.Equal(t, "boom", swaps[0].Error)
}

func TestPubSub_Quotes(t *testing.T) {
	client := setupTestRedis(t)
	logger, _ := test.NewNullLogger()
	ps := NewPubSubManager(client, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *models.PriceQuote, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- ps.SubscribeQuotes(ctx, constants.PubSubChannelPoolPrefix+"BONO/USDC", func(q *models.PriceQuote) {
			select {
			case received <- q:
			default:
			}
		})
	}()

	want := sampleQuote("BONO/USDC", 7)
	// Publish until the subscription is live.
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case got := <-received:
			assert.Equal(t, want.ID, got.ID)
			cancel()
			<-errc
			return
		case <-tick.C:
			require.NoError(t, ps.PublishQuote(ctx, want))
		case <-ctx.Done():
			t.Fatal("quote not received")
		}
	}
}

func TestChannelFeed(t *testing.T) {
	tests := []struct {
		channel string
		want    Feed
	}{
		{constants.PubSubChannelQuotes, FeedQuotes},
		{constants.PubSubChannelPoolPrefix + "BONO/USDC", FeedQuotes},
		{constants.PubSubChannelSwaps, FeedSwaps},
	}
	for _, tt := range tests {
		got, err := ChannelFeed(tt.channel)
		require.NoError(t, err, tt.channel)
		assert.Equal(t, tt.want, got, tt.channel)
	}

	for _, ch := range []string{"", "quotes", constants.PubSubChannelPoolPrefix, "swaps:recent", "other:live"} {
		_, err := ChannelFeed(ch)
		assert.ErrorIs(t, err, ErrUnknownChannel, "%q", ch)
	}
}

func TestPubSub_SubscribeRejectsUnknownChannel(t *testing.T) {
	ps := NewPubSubManager(nil, nil)
	err := ps.Subscribe(context.Background(), "other:live", func(*models.PriceQuote) {}, func(*models.SwapSubmission) {})
	assert.ErrorIs(t, err, ErrUnknownChannel)

	err = ps.Subscribe(context.Background(), constants.PubSubChannelSwaps, func(*models.PriceQuote) {}, nil)
	assert.ErrorContains(t, err, "no handler")
}

func TestPubSub_Swaps(t *testing.T) {
	client := setupTestRedis(t)
	logger, _ := test.NewNullLogger()
	ps := NewPubSubManager(client, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *models.SwapSubmission, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- ps.Subscribe(ctx, constants.PubSubChannelSwaps,
			func(q *models.PriceQuote) { t.Errorf("swap feed delivered a quote: %+v", q) },
			func(s *models.SwapSubmission) {
				select {
				case received <- s:
				default:
				}
			})
	}()

	want := &models.SwapSubmission{ExecutionID: "exec-1", Pool: "BONO/USDC", USDCAmount: 1_000_000, Success: true}
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case got := <-received:
			assert.Equal(t, want.ExecutionID, got.ExecutionID)
			assert.Equal(t, want.USDCAmount, got.USDCAmount)
			assert.True(t, got.Success)
			cancel()
			<-errc
			return
		case <-tick.C:
			require.NoError(t, ps.PublishSwap(ctx, want))
		case <-ctx.Done():
			t.Fatal("swap not received")
		}
	}
}

func TestSink(t *testing.T) {
	client := setupTestRedis(t)
	c, err := NewPriceCache(client, 0)
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	sink := NewSink(c, NewPubSubManager(client, logger), nil)
	ctx := context.Background()

	require.NoError(t, sink.RecordQuote(ctx, sampleQuote("BONO/USDC", 1)))
	require.NoError(t, sink.RecordSubmission(ctx, &models.SwapSubmission{ExecutionID: "x"}))

	q, err := c.GetLatestQuote(ctx, "BONO/USDC")
	require.NoError(t, err)
	require.NotNil(t, q)
	swaps, err := c.RecentSwaps(ctx, 1)
	require.NoError(t, err)
	require.Len(t, swaps, 1)
}

func TestSink_Empty(t *testing.T) {
	sink := NewSink(nil, nil, nil)
	assert.NoError(t, sink.RecordQuote(context.Background(), sampleQuote("p", 1)))
	assert.NoError(t, sink.RecordSubmission(context.Background(), &models.SwapSubmission{}))
}

func TestQuoteStore(t *testing.T) {
	addr := os.Getenv("CLICKHOUSE_ADDR")
	if addr == "" {
		t.Skip("CLICKHOUSE_ADDR not set")
	}
	logger, _ := test.NewNullLogger()
	store, err := NewQuoteStore(config.ClickHouseConfig{Addr: addr, Database: "default", Username: "default"}, logger)
	if err != nil {
		t.Skipf("ClickHouse not available: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.CreateTables(ctx))

	pool := fmt.Sprintf("test-%d", time.Now().UnixNano())
	q := sampleQuote(pool, 1)
	require.NoError(t, store.InsertQuote(ctx, q))
	require.NoError(t, store.InsertSubmission(ctx, &models.SwapSubmission{
		ExecutionID: "e1",
		Pool:        pool,
		SubmittedAt: time.Now(),
		Duration:    time.Second,
	}))

	history, err := store.QuoteHistory(ctx, pool, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, q.ID, history[0].ID)
	assert.Equal(t, "2.500000", history[0].Price)
}
