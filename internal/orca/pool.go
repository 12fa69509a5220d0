package orca

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// PoolState is a fetched snapshot of a registered pool.
type PoolState struct {
	Pool      *Pool
	Whirlpool *Whirlpool
}

// RefreshPoolState fetches the current whirlpool account of pool and checks
// that its mints match the registry.
func RefreshPoolState(ctx context.Context, client *Client, pool *Pool) (*PoolState, error) {
	w, err := client.FetchWhirlpool(ctx, pool.Address)
	if err != nil {
		return nil, err
	}
	if !w.TokenMintA.Equals(pool.TokenMintA) || !w.TokenMintB.Equals(pool.TokenMintB) {
		return nil, fmt.Errorf("pool %s: on-chain mints %s/%s do not match registry",
			pool.Name, w.TokenMintA, w.TokenMintB)
	}

	return &PoolState{Pool: pool, Whirlpool: w}, nil
}

// Price returns the price of one token A in token B.
func (ps *PoolState) Price() decimal.Decimal {
	return PriceFromSqrt(ps.Whirlpool.SqrtPrice, ps.Pool.DecimalsA, ps.Pool.DecimalsB)
}

// QuoteBToA returns the expected token A output for amountIn of token B and
// the minimum output after slippageBps.
func (ps *PoolState) QuoteBToA(amountIn uint64, slippageBps uint16) (expected, minOut uint64, err error) {
	expected, err = ExpectedOutput(ps.Whirlpool, amountIn, false)
	if err != nil {
		return 0, 0, err
	}
	return expected, ApplySlippage(expected, slippageBps), nil
}
