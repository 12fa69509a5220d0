// Package delegation checks a signer's spendable balance and builds the SPL
// Token approve that lets the signing authority move exactly the swap amount.
package delegation

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	splToken "github.com/gagliardetto/solana-go/programs/token"

	"github.com/aman-zulfiqar/credit-program/internal/programerr"
	"github.com/aman-zulfiqar/credit-program/internal/token"
)

// Request is a bounded delegation of Amount from Source to Delegate.
type Request struct {
	Source   solana.PublicKey
	Delegate solana.PublicKey
	Owner    solana.PublicKey
	Amount   uint64
}

// Prepare validates that snapshot holds at least amount and returns the
// delegation request. On InsufficientFunds nothing is built.
func Prepare(snapshot *token.Snapshot, amount uint64, source, delegate, owner solana.PublicKey) (*Request, error) {
	if snapshot == nil {
		return nil, programerr.New(programerr.CodeInvalidAccountData, "source token account snapshot is nil")
	}
	if snapshot.Amount < amount {
		return nil, programerr.Newf(programerr.CodeInsufficientFunds,
			"not enough tokens owned by signer: have %d, need %d", snapshot.Amount, amount)
	}
	return &Request{
		Source:   source,
		Delegate: delegate,
		Owner:    owner,
		Amount:   amount,
	}, nil
}

// Instruction encodes the approve for the token program at tokenProgram.
// Approve replaces any previous delegation, so the allowance is exactly Amount.
func (r *Request) Instruction(tokenProgram solana.PublicKey) (solana.Instruction, error) {
	built, err := splToken.NewApproveInstruction(
		r.Amount,
		r.Source,
		r.Delegate,
		r.Owner,
		[]solana.PublicKey{},
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("build approve: %w", err)
	}

	data, err := built.Data()
	if err != nil {
		return nil, fmt.Errorf("encode approve: %w", err)
	}
	return solana.NewInstruction(tokenProgram, built.Accounts(), data), nil
}
