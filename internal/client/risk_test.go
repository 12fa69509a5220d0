package client

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/credit-program/internal/orca"
)

func checkRisk(t *testing.T, rm *RiskManager, p SwapParams) *RiskCheckResult {
	t.Helper()
	res, err := rm.CheckSwap(context.Background(), p)
	require.NoError(t, err)
	return res
}

func TestRiskManager_CheckSwap(t *testing.T) {
	rm := NewRiskManager(RiskConfig{MaxUSDCAmount: 5_000_000, DailyLimitUSDC: 8_000_000, MaxSlippageBps: 300})

	res := checkRisk(t, rm, SwapParams{USDCAmount: 5_000_000, SlippageBps: 300})
	assert.True(t, res.Allowed)
	assert.Equal(t, uint64(8_000_000), res.DailyRemainingUSDC)

	res = checkRisk(t, rm, SwapParams{USDCAmount: 5_000_001})
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "per transaction")

	res = checkRisk(t, rm, SwapParams{USDCAmount: 1, SlippageBps: 301})
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "slippage")

	require.NoError(t, rm.RecordSwap(context.Background(), 5_000_000))
	res = checkRisk(t, rm, SwapParams{USDCAmount: 3_000_001})
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "daily limit")
	assert.Equal(t, uint64(5_000_000), res.DailyUsedUSDC)
	assert.Equal(t, uint64(3_000_000), res.DailyRemainingUSDC)

	assert.True(t, checkRisk(t, rm, SwapParams{USDCAmount: 3_000_000}).Allowed)
}

func TestRiskManager_NoLimits(t *testing.T) {
	rm := NewRiskManager(RiskConfig{})
	require.NoError(t, rm.RecordSwap(context.Background(), 1<<60))
	assert.True(t, checkRisk(t, rm, SwapParams{USDCAmount: 1 << 60, SlippageBps: 10_000}).Allowed)
}

func TestRiskManager_DailyLimitNoWrap(t *testing.T) {
	rm := NewRiskManager(RiskConfig{DailyLimitUSDC: 1_000_000})
	require.NoError(t, rm.RecordSwap(context.Background(), 500_000))

	// 500_000 + (MaxUint64 - 100_000) wraps to 399_999 in uint64
	res := checkRisk(t, rm, SwapParams{USDCAmount: math.MaxUint64 - 100_000})
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "daily limit")

	require.NoError(t, rm.RecordSwap(context.Background(), 600_000))
	res = checkRisk(t, rm, SwapParams{USDCAmount: 1})
	assert.False(t, res.Allowed, "usage already past the limit")
	assert.Zero(t, res.DailyRemainingUSDC)
}

func TestRiskManager_SharedStore(t *testing.T) {
	store := NewDailyLimitTracker(time.Now)
	cfg := RiskConfig{DailyLimitUSDC: 1_000_000}

	first := NewRiskManagerWithStore(cfg, store)
	assert.True(t, checkRisk(t, first, SwapParams{USDCAmount: 900_000}).Allowed)
	require.NoError(t, first.RecordSwap(context.Background(), 900_000))

	second := NewRiskManagerWithStore(cfg, store)
	res := checkRisk(t, second, SwapParams{USDCAmount: 900_000})
	assert.False(t, res.Allowed)
	assert.Equal(t, uint64(900_000), res.DailyUsedUSDC)
}

type failingUsage struct{}

func (failingUsage) Record(context.Context, uint64) error  { return errors.New("down") }
func (failingUsage) Usage(context.Context) (uint64, error) { return 0, errors.New("down") }

func TestRiskManager_UsageError(t *testing.T) {
	rm := NewRiskManagerWithStore(RiskConfig{}, failingUsage{})
	_, err := rm.CheckSwap(context.Background(), SwapParams{USDCAmount: 1})
	assert.ErrorContains(t, err, "read daily usage")
}

func TestSaturatingAdd(t *testing.T) {
	assert.Equal(t, uint64(3), SaturatingAdd(1, 2))
	assert.Equal(t, uint64(math.MaxUint64), SaturatingAdd(math.MaxUint64-1, 5))
}

func TestDailyLimitTracker_Window(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewDailyLimitTracker(func() time.Time { return now })

	usage := func() uint64 {
		n, err := tr.Usage(ctx)
		require.NoError(t, err)
		return n
	}

	require.NoError(t, tr.Record(ctx, 10))
	now = now.Add(23 * time.Hour)
	require.NoError(t, tr.Record(ctx, 5))
	assert.Equal(t, uint64(15), usage())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, uint64(5), usage())

	now = now.Add(24 * time.Hour)
	assert.Zero(t, usage())
}

func TestExecutor_RiskLimits(t *testing.T) {
	f := newFixture(t, 0)
	sender := &fakeSender{pub: f.signer}
	rm := NewRiskManager(RiskConfig{DailyLimitUSDC: 1_500_000})
	e := newExecutor(f, sender, nil, ExecutorConfig{}, WithRiskManager(rm))

	params := SwapParams{PoolName: orca.BonoUSDCPoolName, USDCAmount: 1_000_000}
	res, err := e.ExecuteSwap(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = e.ExecuteSwap(context.Background(), params)
	assert.ErrorIs(t, err, ErrRiskRejected)
	assert.False(t, res.Success)
	assert.Equal(t, 1, sender.sent)
}

func TestExecutor_RiskUsageUnavailable(t *testing.T) {
	f := newFixture(t, 0)
	sender := &fakeSender{pub: f.signer}
	e := newExecutor(f, sender, nil, ExecutorConfig{}, WithRiskManager(NewRiskManagerWithStore(RiskConfig{}, failingUsage{})))

	res, err := e.ExecuteSwap(context.Background(), SwapParams{PoolName: orca.BonoUSDCPoolName, USDCAmount: 1})
	assert.ErrorContains(t, err, "read daily usage")
	assert.False(t, res.Success)
	assert.Zero(t, sender.sent)
}
