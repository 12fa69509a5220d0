package models

import "time"

// Quote sources.
const (
	SourceLocal = "local" // price report computed from a fetched pool account
	SourceChain = "chain" // log lines of a confirmed ReadBonoPrice transaction
)

// PriceQuote is one BONO price report for a pool.
type PriceQuote struct {
	ID           string    `json:"id"`
	Pool         string    `json:"pool"`
	Address      string    `json:"address"`
	SqrtPriceX64 string    `json:"sqrt_price_x64"`
	Price        string    `json:"price"`
	BonoAmount   uint64    `json:"bono_amount"`
	USDCValue    string    `json:"usdc_value"`
	Source       string    `json:"source"`
	Signature    string    `json:"signature,omitempty"`
	QuotedAt     time.Time `json:"quoted_at"`
}
