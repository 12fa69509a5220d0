package server

import (
	"github.com/aman-zulfiqar/credit-program/internal/client"
	"github.com/aman-zulfiqar/credit-program/internal/models"
)

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"` // Service health status
}

// PoolResponse describes a registered pool
type PoolResponse struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Address     string   `json:"address"`
	ProgramID   string   `json:"program_id"`
	TokenMintA  string   `json:"token_mint_a"`
	TokenMintB  string   `json:"token_mint_b"`
	DecimalsA   uint8    `json:"decimals_a"`
	DecimalsB   uint8    `json:"decimals_b"`
	TickArrays  []string `json:"tick_arrays,omitempty"`
	SwapEnabled *bool    `json:"swap_enabled,omitempty"`
}

// AuthorityResponse is the program's signing PDA
type AuthorityResponse struct {
	ProgramID string `json:"program_id"`
	Authority string `json:"authority"`
	Bump      uint8  `json:"bump"`
}

// PriceResponse is a BONO price report for a pool
type PriceResponse struct {
	Quote  *models.PriceQuote `json:"quote"`
	Logs   []string           `json:"logs,omitempty"` // Program log lines of the local run
	Cached bool               `json:"cached"`
}

// SwapInstructionRequest asks for an unsigned Swap instruction
type SwapInstructionRequest struct {
	Pool                string   `json:"pool"`
	Signer              string   `json:"signer"`
	USDCAmount          uint64   `json:"usdc_amount"`
	BonoAmountThreshold *uint64  `json:"bono_amount_threshold,omitempty"` // Defaults to the quoted minimum
	SlippageBps         *uint16  `json:"slippage_bps,omitempty"`          // Defaults to 100
	SignerUSDC          string   `json:"signer_usdc,omitempty"`
	TickArrays          []string `json:"tick_arrays,omitempty"`
	Simulate            bool     `json:"simulate,omitempty"` // Dry-run the instruction against live accounts
}

// ReadPriceInstructionRequest asks for an unsigned ReadBonoPrice instruction
type ReadPriceInstructionRequest struct {
	Pool       string `json:"pool"`
	BonoAmount uint64 `json:"bono_amount"`
}

// AccountMetaResponse is one instruction account
type AccountMetaResponse struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

// InstructionResponse is an unsigned instruction ready to be put in a transaction
type InstructionResponse struct {
	ProgramID  string                `json:"program_id"`
	Accounts   []AccountMetaResponse `json:"accounts"`
	Data       string                `json:"data"` // base64
	Quote      *client.Quote         `json:"quote,omitempty"`
	Simulation *client.Simulation    `json:"simulation,omitempty"`
}

// FlagUpsertRequest represents a request to create or update a feature flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`   // Flag key (must match regex pattern)
	Value bool   `json:"value"` // Flag value (true/false)
}

// FlagUpdateRequest represents a request to update an existing feature flag
type FlagUpdateRequest struct {
	Value bool `json:"value"` // New flag value
}
