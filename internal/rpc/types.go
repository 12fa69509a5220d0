package rpc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// ResponseContext is the context block of account queries.
type ResponseContext struct {
	Slot uint64 `json:"slot"`
}

// Account is an on-chain account as returned by getAccountInfo.
type Account struct {
	Pubkey     solana.PublicKey `json:"-"`
	Lamports   uint64           `json:"lamports"`
	Owner      solana.PublicKey `json:"owner"`
	Executable bool             `json:"executable"`
	RentEpoch  uint64           `json:"rentEpoch"`
	Data       AccountData      `json:"data"`
}

// AccountData decodes the ["<base64>", "base64"] form of account data.
type AccountData []byte

func (d *AccountData) UnmarshalJSON(b []byte) error {
	var parts []string
	if err := json.Unmarshal(b, &parts); err != nil {
		return fmt.Errorf("account data: %w", err)
	}
	if len(parts) != 2 || parts[1] != "base64" {
		return fmt.Errorf("account data: unsupported encoding %v", parts)
	}
	raw, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return fmt.Errorf("account data: %w", err)
	}
	*d = raw
	return nil
}

// AccountInfoResponse is the response from getAccountInfo
type AccountInfoResponse struct {
	Result *struct {
		Context ResponseContext `json:"context"`
		Value   *Account        `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

// MultipleAccountsResponse is the response from getMultipleAccounts
type MultipleAccountsResponse struct {
	Result *struct {
		Context ResponseContext `json:"context"`
		Value   []*Account      `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

// TransactionMeta contains metadata about a transaction
type TransactionMeta struct {
	Err         interface{} `json:"err"`
	Fee         uint64      `json:"fee"`
	LogMessages []string    `json:"logMessages"`
}

// TransactionResult contains the transaction data needed after submission
type TransactionResult struct {
	Slot      uint64           `json:"slot"`
	BlockTime *int64           `json:"blockTime"`
	Meta      *TransactionMeta `json:"meta"`
}

// TransactionResponse is the response from getTransaction
type TransactionResponse struct {
	Result *TransactionResult `json:"result"`
	Error  *RPCError          `json:"error"`
}
