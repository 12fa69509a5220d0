package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/aman-zulfiqar/credit-program/internal/client"
	"github.com/aman-zulfiqar/credit-program/internal/metrics"
	"github.com/aman-zulfiqar/credit-program/internal/models"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
	"github.com/aman-zulfiqar/credit-program/internal/processor"
	"github.com/aman-zulfiqar/credit-program/internal/rpc"
)

type chain map[solana.PublicKey]*rpc.Account

func (c chain) GetMultipleAccounts(_ context.Context, keys []solana.PublicKey, _ string) ([]*rpc.Account, error) {
	out := make([]*rpc.Account, len(keys))
	for i, k := range keys {
		out[i] = c[k]
	}
	return out, nil
}

func newPoller(t *testing.T, interval time.Duration) (*QuotePoller, []orca.Pool) {
	t.Helper()

	cfgs := orca.DefaultPoolConfigs()
	broken := cfgs[0]
	broken.Name = "BROKEN/USDC"
	broken.Address = solana.NewWallet().PublicKey().String()
	reg, err := orca.NewPoolRegistryFromConfigs(append(cfgs, broken))
	require.NoError(t, err)
	pools := reg.GetAllPools()

	c := chain{}
	for _, p := range pools {
		data := []byte{0}
		if p.Name == orca.BonoUSDCPoolName {
			data = orca.EncodeWhirlpool(&orca.Whirlpool{
				SqrtPrice:  uint128.From64(922337203685477581),
				TokenMintA: p.TokenMintA,
				TokenMintB: p.TokenMintB,
			})
		}
		c[p.Address] = &rpc.Account{Pubkey: p.Address, Owner: p.ProgramID, Data: data}
	}

	builder, err := client.NewBuilder(processor.ProgramID)
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()

	return NewQuotePoller(QuotePollerConfig{
		Pools:        pools,
		Builder:      builder,
		Simulator:    client.NewSimulator(c, metrics.New(nil, nil), logger),
		PollInterval: interval,
		Logger:       logger,
	}), pools
}

func TestQuotePoller_Poll(t *testing.T) {
	p, _ := newPoller(t, time.Minute)

	var got []*models.PriceQuote
	p.Poll(context.Background(), func(q *models.PriceQuote) { got = append(got, q) })

	require.Len(t, got, 1, "broken pool is skipped")
	assert.Equal(t, orca.BonoUSDCPoolName, got[0].Pool)
	assert.Equal(t, "2.500000", got[0].Price)
	assert.Equal(t, "2.500000", got[0].USDCValue)
	assert.Equal(t, uint64(DefaultBonoAmount), got[0].BonoAmount)
	assert.Equal(t, models.SourceLocal, got[0].Source)
}

func TestQuotePoller_Start(t *testing.T) {
	p, _ := newPoller(t, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	var (
		mu    sync.Mutex
		count int
	)
	errc := make(chan error, 1)
	go func() {
		errc <- p.Start(ctx, func(*models.PriceQuote) {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 2
	}, 2*time.Second, 5*time.Millisecond)

	assert.ErrorContains(t, p.Start(ctx, func(*models.PriceQuote) {}), "already running")

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}
