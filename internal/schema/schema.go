// Package schema binds the positional account list of an invocation to named
// fields for each instruction.
package schema

import (
	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/credit-program/internal/host"
	"github.com/aman-zulfiqar/credit-program/internal/programerr"
)

const (
	SwapAccountCount      = 16
	ReadPriceAccountCount = 1
)

// SwapAccounts are the accounts of a Swap invocation, in wire order.
type SwapAccounts struct {
	SystemProgram    *host.AccountInfo
	TokenProgram     *host.AccountInfo
	ATAProgram       *host.AccountInfo
	WhirlpoolProgram *host.AccountInfo
	BonoMint         *host.AccountInfo
	Signer           *host.AccountInfo
	SignerUSDC       *host.AccountInfo
	Authority        *host.AccountInfo
	AuthorityBono    *host.AccountInfo
	Whirlpool        *host.AccountInfo
	VaultA           *host.AccountInfo
	VaultB           *host.AccountInfo
	TickArray0       *host.AccountInfo
	TickArray1       *host.AccountInfo
	TickArray2       *host.AccountInfo
	Oracle           *host.AccountInfo
}

// ReadPriceAccounts are the accounts of a ReadBonoPrice invocation.
type ReadPriceAccounts struct {
	Whirlpool *host.AccountInfo
}

func checkCount(accounts []*host.AccountInfo, want int) error {
	switch {
	case len(accounts) < want:
		return programerr.Newf(programerr.CodeNotEnoughAccountKeys,
			"expected %d accounts, got %d", want, len(accounts))
	case len(accounts) > want:
		return programerr.Newf(programerr.CodeInvalidArgument,
			"expected %d accounts, got %d", want, len(accounts))
	}
	for i, a := range accounts {
		if a == nil {
			return programerr.Newf(programerr.CodeNotEnoughAccountKeys, "account %d is missing", i)
		}
	}
	return nil
}

// ParseSwapAccounts binds exactly SwapAccountCount accounts and checks the
// program identities and the signer flag.
func ParseSwapAccounts(accounts []*host.AccountInfo) (*SwapAccounts, error) {
	if err := checkCount(accounts, SwapAccountCount); err != nil {
		return nil, err
	}

	s := &SwapAccounts{
		SystemProgram:    accounts[0],
		TokenProgram:     accounts[1],
		ATAProgram:       accounts[2],
		WhirlpoolProgram: accounts[3],
		BonoMint:         accounts[4],
		Signer:           accounts[5],
		SignerUSDC:       accounts[6],
		Authority:        accounts[7],
		AuthorityBono:    accounts[8],
		Whirlpool:        accounts[9],
		VaultA:           accounts[10],
		VaultB:           accounts[11],
		TickArray0:       accounts[12],
		TickArray1:       accounts[13],
		TickArray2:       accounts[14],
		Oracle:           accounts[15],
	}

	if !s.SystemProgram.Key.Equals(solana.SystemProgramID) {
		return nil, programerr.Newf(programerr.CodeIncorrectProgramID,
			"system program: got %s", s.SystemProgram.Key)
	}
	// Whirlpool's v1 swap only moves SPL Token accounts.
	if !s.TokenProgram.Key.Equals(solana.TokenProgramID) {
		return nil, programerr.Newf(programerr.CodeIncorrectProgramID,
			"token program: got %s", s.TokenProgram.Key)
	}
	if !s.ATAProgram.Key.Equals(solana.SPLAssociatedTokenAccountProgramID) {
		return nil, programerr.Newf(programerr.CodeIncorrectProgramID,
			"associated token program: got %s", s.ATAProgram.Key)
	}
	if !s.Signer.IsSigner {
		return nil, programerr.Newf(programerr.CodeMissingRequiredSignature,
			"signer %s did not sign", s.Signer.Key)
	}
	return s, nil
}

// ParseReadPriceAccounts binds exactly one account, the whirlpool.
func ParseReadPriceAccounts(accounts []*host.AccountInfo) (*ReadPriceAccounts, error) {
	if err := checkCount(accounts, ReadPriceAccountCount); err != nil {
		return nil, err
	}
	return &ReadPriceAccounts{Whirlpool: accounts[0]}, nil
}
