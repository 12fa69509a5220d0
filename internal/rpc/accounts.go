package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrAccountNotFound is returned when an address holds no account.
var ErrAccountNotFound = errors.New("account not found")

// maxMultipleAccounts is the server-side limit of getMultipleAccounts.
const maxMultipleAccounts = 100

func accountOpts(commitment string) map[string]interface{} {
	if commitment == "" {
		commitment = "confirmed"
	}
	return map[string]interface{}{
		"encoding":   "base64",
		"commitment": commitment,
	}
}

// GetAccountInfo fetches one account with base64 data.
func (c *Client) GetAccountInfo(ctx context.Context, address solana.PublicKey, commitment string) (*Account, error) {
	params := []interface{}{address.String(), accountOpts(commitment)}

	var resp AccountInfoResponse
	if err := c.Call(ctx, "getAccountInfo", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Result == nil || resp.Result.Value == nil {
		return nil, fmt.Errorf("%s: %w", address, ErrAccountNotFound)
	}

	acc := resp.Result.Value
	acc.Pubkey = address
	return acc, nil
}

// GetMultipleAccounts fetches accounts in request order. Missing accounts
// are nil entries. Batches larger than the server limit are split.
func (c *Client) GetMultipleAccounts(ctx context.Context, addresses []solana.PublicKey, commitment string) ([]*Account, error) {
	out := make([]*Account, 0, len(addresses))

	for start := 0; start < len(addresses); start += maxMultipleAccounts {
		end := min(start+maxMultipleAccounts, len(addresses))
		batch := addresses[start:end]

		keys := make([]string, len(batch))
		for i, a := range batch {
			keys[i] = a.String()
		}

		var resp MultipleAccountsResponse
		if err := c.Call(ctx, "getMultipleAccounts", []interface{}{keys, accountOpts(commitment)}, &resp); err != nil {
			return nil, err
		}
		if resp.Error != nil {
			return nil, resp.Error
		}
		if resp.Result == nil || len(resp.Result.Value) != len(batch) {
			return nil, fmt.Errorf("getMultipleAccounts: expected %d accounts", len(batch))
		}

		for i, acc := range resp.Result.Value {
			if acc != nil {
				acc.Pubkey = batch[i]
			}
			out = append(out, acc)
		}
	}

	return out, nil
}

// GetTransactionLogs fetches the program log lines of a confirmed transaction.
func (c *Client) GetTransactionLogs(ctx context.Context, signature string) ([]string, error) {
	params := []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "json",
			"commitment":                     "confirmed",
			"maxSupportedTransactionVersion": 0,
		},
	}

	var resp TransactionResponse
	if err := c.Call(ctx, "getTransaction", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Result == nil || resp.Result.Meta == nil {
		return nil, fmt.Errorf("transaction %s: not found", signature)
	}

	return resp.Result.Meta.LogMessages, nil
}
