package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ErrRiskRejected is returned when a swap breaks a risk limit.
var ErrRiskRejected = errors.New("swap rejected by risk limits")

// DailyWindow is the span the daily USDC limit covers.
const DailyWindow = 24 * time.Hour

// RiskConfig defines risk management parameters. Zero disables a limit.
type RiskConfig struct {
	// Per-transaction limit in raw USDC units
	MaxUSDCAmount uint64

	// Rolling 24h limit in raw USDC units
	DailyLimitUSDC uint64

	MaxSlippageBps uint16
}

// DefaultRiskConfig only caps slippage.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{MaxSlippageBps: 1000}
}

// UsageStore keeps the USDC spent over the last DailyWindow. The in-memory
// DailyLimitTracker lives as long as the process; cache.RiskUsage keeps it in
// Redis so separate runs share one budget.
type UsageStore interface {
	Record(ctx context.Context, amount uint64) error
	Usage(ctx context.Context) (uint64, error)
}

// RiskCheckResult explains a CheckSwap decision.
type RiskCheckResult struct {
	Allowed            bool   `json:"allowed"`
	Reason             string `json:"reason,omitempty"`
	DailyUsedUSDC      uint64 `json:"daily_used_usdc"`
	DailyRemainingUSDC uint64 `json:"daily_remaining_usdc,omitempty"`
}

// RiskManager enforces risk limits
type RiskManager struct {
	config RiskConfig
	usage  UsageStore
}

// NewRiskManager creates a risk manager whose daily usage is kept in memory.
func NewRiskManager(config RiskConfig) *RiskManager {
	return NewRiskManagerWithStore(config, NewDailyLimitTracker(time.Now))
}

// NewRiskManagerWithStore creates a risk manager counting daily usage in store.
func NewRiskManagerWithStore(config RiskConfig, store UsageStore) *RiskManager {
	return &RiskManager{config: config, usage: store}
}

// CheckSwap validates a swap against all risk rules
func (rm *RiskManager) CheckSwap(ctx context.Context, params SwapParams) (*RiskCheckResult, error) {
	used, err := rm.usage.Usage(ctx)
	if err != nil {
		return nil, fmt.Errorf("read daily usage: %w", err)
	}
	limit := rm.config.DailyLimitUSDC
	res := &RiskCheckResult{DailyUsedUSDC: used}
	if limit > 0 && used < limit {
		res.DailyRemainingUSDC = limit - used
	}

	switch {
	case rm.config.MaxUSDCAmount > 0 && params.USDCAmount > rm.config.MaxUSDCAmount:
		res.Reason = fmt.Sprintf("usdc amount %d exceeds max %d per transaction", params.USDCAmount, rm.config.MaxUSDCAmount)
	case limit > 0 && (used >= limit || params.USDCAmount > limit-used):
		res.Reason = fmt.Sprintf("daily limit exceeded: used %d + %d > %d", used, params.USDCAmount, limit)
	case rm.config.MaxSlippageBps > 0 && params.SlippageBps > rm.config.MaxSlippageBps:
		res.Reason = fmt.Sprintf("slippage %d bps exceeds max %d bps", params.SlippageBps, rm.config.MaxSlippageBps)
	}
	res.Allowed = res.Reason == ""
	return res, nil
}

// RecordSwap counts a confirmed swap against the daily limit
func (rm *RiskManager) RecordSwap(ctx context.Context, usdcAmount uint64) error {
	return rm.usage.Record(ctx, usdcAmount)
}

// SaturatingAdd adds b to a, stopping at the largest uint64.
func SaturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// DailyLimitTracker tracks rolling 24-hour usage in memory
type DailyLimitTracker struct {
	mu    sync.Mutex
	now   func() time.Time
	swaps []swapRecord
}

var _ UsageStore = (*DailyLimitTracker)(nil)

type swapRecord struct {
	at     time.Time
	amount uint64
}

// NewDailyLimitTracker creates a tracker reading time from now.
func NewDailyLimitTracker(now func() time.Time) *DailyLimitTracker {
	return &DailyLimitTracker{now: now}
}

// Record adds a swap to the tracker
func (t *DailyLimitTracker) Record(_ context.Context, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.swaps = append(t.swaps, swapRecord{at: t.now(), amount: amount})
	t.cleanup()
	return nil
}

// Usage sums the amounts recorded in the last 24 hours
func (t *DailyLimitTracker) Usage(_ context.Context) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cleanup()

	var total uint64
	for _, s := range t.swaps {
		total = SaturatingAdd(total, s.amount)
	}
	return total, nil
}

// cleanup drops records older than the window. Callers hold mu.
func (t *DailyLimitTracker) cleanup() {
	cutoff := t.now().Add(-DailyWindow)
	kept := t.swaps[:0]
	for _, s := range t.swaps {
		if s.at.After(cutoff) {
			kept = append(kept, s)
		}
	}
	t.swaps = kept
}
