package orca

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/credit-program/internal/rpc"
)

// AccountFetcher reads raw accounts. *rpc.Client implements it.
type AccountFetcher interface {
	GetAccountInfo(ctx context.Context, address solana.PublicKey, commitment string) (*rpc.Account, error)
}

// Client fetches whirlpool state over RPC
type Client struct {
	rpc AccountFetcher
}

// NewClient creates an Orca client using the project's RPC client
func NewClient(fetcher AccountFetcher) *Client {
	return &Client{rpc: fetcher}
}

// FetchWhirlpool reads and decodes the pool at address.
func (c *Client) FetchWhirlpool(ctx context.Context, address solana.PublicKey) (*Whirlpool, error) {
	acc, err := c.rpc.GetAccountInfo(ctx, address, "confirmed")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch whirlpool %s: %w", address, err)
	}

	w, err := ParseWhirlpool(acc.Data)
	if err != nil {
		return nil, fmt.Errorf("whirlpool %s: %w", address, err)
	}
	return w, nil
}
