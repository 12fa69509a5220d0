package orca

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// SwapParams is the argument block of the whirlpool swap entrypoint.
type SwapParams struct {
	Amount                 uint64
	OtherAmountThreshold   uint64
	SqrtPriceLimit         uint128.Uint128
	AmountSpecifiedIsInput bool
	AToB                   bool
}

// ExactInputBToA swaps exactly amountIn of token B for at least minOut of
// token A, with no price limit.
func ExactInputBToA(amountIn, minOut uint64) SwapParams {
	return SwapParams{
		Amount:                 amountIn,
		OtherAmountThreshold:   minOut,
		SqrtPriceLimit:         MaxSqrtPriceX64,
		AmountSpecifiedIsInput: true,
		AToB:                   false,
	}
}

// Data encodes the swap instruction data.
func (p SwapParams) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)

	var limit [16]byte
	p.SqrtPriceLimit.PutBytes(limit[:])

	if err := enc.WriteBytes(SwapDiscriminator[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(p.Amount, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(p.OtherAmountThreshold, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(limit[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(p.AmountSpecifiedIsInput); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(p.AToB); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SwapAccounts are the accounts of a whirlpool swap, named after the pool's
// two sides.
type SwapAccounts struct {
	TokenProgram       solana.PublicKey
	TokenAuthority     solana.PublicKey
	Whirlpool          solana.PublicKey
	TokenOwnerAccountA solana.PublicKey
	VaultA             solana.PublicKey
	TokenOwnerAccountB solana.PublicKey
	VaultB             solana.PublicKey
	TickArrays         [3]solana.PublicKey
	Oracle             solana.PublicKey
}

// BuildSwapInstruction constructs the whirlpool swap instruction.
//
// Account order:
// 0. token_program
// 1. token_authority (signer)
// 2. whirlpool (writable)
// 3. token_owner_account_a (writable)
// 4. token_vault_a (writable)
// 5. token_owner_account_b (writable)
// 6. token_vault_b (writable)
// 7-9. tick_array_0..2 (writable)
// 10. oracle
func BuildSwapInstruction(programID solana.PublicKey, p SwapParams, a SwapAccounts) (solana.Instruction, error) {
	data, err := p.Data()
	if err != nil {
		return nil, fmt.Errorf("encode swap data: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(a.TokenProgram),
		solana.Meta(a.TokenAuthority).SIGNER(),
		solana.Meta(a.Whirlpool).WRITE(),
		solana.Meta(a.TokenOwnerAccountA).WRITE(),
		solana.Meta(a.VaultA).WRITE(),
		solana.Meta(a.TokenOwnerAccountB).WRITE(),
		solana.Meta(a.VaultB).WRITE(),
		solana.Meta(a.TickArrays[0]).WRITE(),
		solana.Meta(a.TickArrays[1]).WRITE(),
		solana.Meta(a.TickArrays[2]).WRITE(),
		solana.Meta(a.Oracle),
	}

	return solana.NewInstruction(programID, accounts, data), nil
}
