package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/credit-program/internal/client"
)

func TestNewRiskUsage_Validation(t *testing.T) {
	_, err := NewRiskUsage(nil, "signer")
	assert.Error(t, err)
}

func TestRiskUsage_Window(t *testing.T) {
	rc := setupTestRedis(t)
	u, err := NewRiskUsage(rc, "signer-a")
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	u.now = func() time.Time { return now }

	require.NoError(t, u.Record(ctx, 10))
	require.NoError(t, u.Record(ctx, 10))
	now = now.Add(23 * time.Hour)
	require.NoError(t, u.Record(ctx, 5))

	used, err := u.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), used)

	now = now.Add(2 * time.Hour)
	used, err = u.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), used)

	other, err := NewRiskUsage(rc, "signer-b")
	require.NoError(t, err)
	used, err = other.Usage(ctx)
	require.NoError(t, err)
	assert.Zero(t, used, "usage is per signer")
}

// Each creditctl run builds its own RiskManager; the budget must carry over.
func TestRiskUsage_SharedAcrossManagers(t *testing.T) {
	rc := setupTestRedis(t)
	ctx := context.Background()
	cfg := client.RiskConfig{DailyLimitUSDC: 1_000_000}

	var allowed int
	for run := 0; run < 3; run++ {
		u, err := NewRiskUsage(rc, "signer-a")
		require.NoError(t, err)
		rm := client.NewRiskManagerWithStore(cfg, u)

		check, err := rm.CheckSwap(ctx, client.SwapParams{USDCAmount: 900_000})
		require.NoError(t, err)
		if check.Allowed {
			allowed++
			require.NoError(t, rm.RecordSwap(ctx, 900_000))
		} else {
			assert.Equal(t, uint64(900_000), check.DailyUsedUSDC)
		}
	}
	assert.Equal(t, 1, allowed)
}
