package wallet

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	projectrpc "github.com/aman-zulfiqar/credit-program/internal/rpc"
)

// ErrTransactionFailed wraps the on-chain error of a landed transaction.
var ErrTransactionFailed = errors.New("transaction failed")

// SendOptions configures transaction sending behavior
type SendOptions struct {
	SkipPreflight       bool
	PreflightCommitment string
	MaxRetries          *int
}

// DefaultSendOptions returns recommended send settings
func DefaultSendOptions() SendOptions {
	maxRetries := 3
	return SendOptions{
		PreflightCommitment: "processed",
		MaxRetries:          &maxRetries,
	}
}

// SimulationResult contains simulateTransaction output
type SimulationResult struct {
	Success       bool
	Error         string
	Logs          []string
	UnitsConsumed uint64
}

// SignTx signs a transaction with the wallet's private key
func (w *Wallet) SignTx(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pub) {
			return &w.priv
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

func encodeTx(tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// SendTx submits a signed transaction and returns its signature.
func (w *Wallet) SendTx(ctx context.Context, tx *solana.Transaction, opts *SendOptions) (string, error) {
	if opts == nil {
		o := DefaultSendOptions()
		opts = &o
	}
	encoded, err := encodeTx(tx)
	if err != nil {
		return "", err
	}

	cfg := map[string]any{
		"encoding":            "base64",
		"skipPreflight":       opts.SkipPreflight,
		"preflightCommitment": opts.PreflightCommitment,
	}
	if opts.MaxRetries != nil {
		cfg["maxRetries"] = *opts.MaxRetries
	}

	var resp struct {
		Result string               `json:"result"`
		Error  *projectrpc.RPCError `json:"error"`
	}
	if err := w.rpc.Call(ctx, "sendTransaction", []any{encoded, cfg}, &resp); err != nil {
		return "", fmt.Errorf("sendTransaction RPC failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("sendTransaction: %w", resp.Error)
	}

	w.log().WithField("signature", resp.Result).Debug("transaction sent")
	return resp.Result, nil
}

// GetLatestBlockhash fetches the most recent blockhash at the wallet's
// preflight commitment.
func (w *Wallet) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var resp struct {
		Result struct {
			Value struct {
				Blockhash string `json:"blockhash"`
			} `json:"value"`
		} `json:"result"`
		Error *projectrpc.RPCError `json:"error"`
	}

	params := []any{map[string]any{"commitment": w.cfg.PreflightCommitment}}
	if err := w.rpc.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}
	if resp.Error != nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash: %w", resp.Error)
	}

	hash, err := solana.HashFromBase58(resp.Result.Value.Blockhash)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("invalid blockhash format: %w", err)
	}
	return hash, nil
}

// SimulateTransaction runs tx on the node without landing it. Signatures are
// not verified, so tx may be unsigned. A program failure returns the result
// with its logs alongside the error.
func (w *Wallet) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	encoded, err := encodeTx(tx)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result struct {
			Value struct {
				Err           json.RawMessage `json:"err"`
				Logs          []string        `json:"logs"`
				UnitsConsumed uint64          `json:"unitsConsumed"`
			} `json:"value"`
		} `json:"result"`
		Error *projectrpc.RPCError `json:"error"`
	}

	params := []any{encoded, map[string]any{
		"encoding":               "base64",
		"commitment":             w.cfg.PreflightCommitment,
		"sigVerify":              false,
		"replaceRecentBlockhash": true,
	}}
	if err := w.rpc.Call(ctx, "simulateTransaction", params, &resp); err != nil {
		return nil, fmt.Errorf("simulateTransaction failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("simulateTransaction: %w", resp.Error)
	}

	v := resp.Result.Value
	result := &SimulationResult{Logs: v.Logs, UnitsConsumed: v.UnitsConsumed, Success: true}
	if len(v.Err) > 0 && string(v.Err) != "null" {
		result.Success = false
		result.Error = string(v.Err)
		return result, fmt.Errorf("simulation failed: %s", v.Err)
	}
	return result, nil
}

// ConfirmTransaction polls getSignatureStatuses until the signature reaches
// commitment, the transaction fails, or timeout elapses.
func (w *Wallet) ConfirmTransaction(ctx context.Context, signature, commitment string, timeout time.Duration) error {
	if commitment == "" {
		commitment = w.cfg.DefaultCommitment
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := 500 * time.Millisecond
	const maxBackoff = 4 * time.Second
	for {
		confirmed, err := w.checkSignatureStatus(ctx, signature, commitment)
		if err != nil {
			return err
		}
		if confirmed {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("transaction %s not confirmed after %v", signature, timeout)
			}
			return ctx.Err()
		case <-time.After(backoff):
			backoff = min(backoff*2, maxBackoff)
		}
	}
}

// commitmentRank orders confirmation statuses.
var commitmentRank = map[string]int{
	"processed": 1,
	"confirmed": 2,
	"finalized": 3,
}

func (w *Wallet) checkSignatureStatus(ctx context.Context, signature, commitment string) (bool, error) {
	var resp struct {
		Result struct {
			Value []*struct {
				Slot               uint64          `json:"slot"`
				Err                json.RawMessage `json:"err"`
				ConfirmationStatus string          `json:"confirmationStatus"`
			} `json:"value"`
		} `json:"result"`
		Error *projectrpc.RPCError `json:"error"`
	}

	params := []any{
		[]string{signature},
		map[string]any{"searchTransactionHistory": true},
	}
	if err := w.rpc.Call(ctx, "getSignatureStatuses", params, &resp); err != nil {
		return false, fmt.Errorf("failed to check signature: %w", err)
	}
	if resp.Error != nil {
		return false, fmt.Errorf("getSignatureStatuses: %w", resp.Error)
	}

	if len(resp.Result.Value) == 0 || resp.Result.Value[0] == nil {
		return false, nil
	}
	status := resp.Result.Value[0]
	if len(status.Err) > 0 && string(status.Err) != "null" {
		return false, fmt.Errorf("%w: %s", ErrTransactionFailed, status.Err)
	}

	w.log().WithFields(logrus.Fields{
		"signature": signature,
		"status":    status.ConfirmationStatus,
		"slot":      status.Slot,
	}).Debug("signature status")

	return commitmentRank[status.ConfirmationStatus] >= max(commitmentRank[commitment], 1), nil
}

// BuildTransaction creates an unsigned transaction paid by the wallet.
func (w *Wallet) BuildTransaction(ctx context.Context, instructions []solana.Instruction) (*solana.Transaction, error) {
	recent, err := w.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, recent, solana.TransactionPayer(w.pub))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}
