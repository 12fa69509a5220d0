package models

import "time"

// SwapSubmission records one Swap transaction sent to the credit program.
type SwapSubmission struct {
	ExecutionID         string        `json:"execution_id"`
	Signature           string        `json:"signature,omitempty"`
	Pool                string        `json:"pool"`
	Signer              string        `json:"signer"`
	USDCAmount          uint64        `json:"usdc_amount"`
	BonoAmountThreshold uint64        `json:"bono_amount_threshold"`
	ExpectedBono        uint64        `json:"expected_bono"`
	SlippageBps         uint16        `json:"slippage_bps"`
	Success             bool          `json:"success"`
	Error               string        `json:"error,omitempty"`
	Logs                []string      `json:"logs,omitempty"`
	SubmittedAt         time.Time     `json:"submitted_at"`
	Duration            time.Duration `json:"duration"`
}
