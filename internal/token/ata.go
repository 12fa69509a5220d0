package token

import (
	"github.com/gagliardetto/solana-go"
)

// CreateIdempotent instruction index of the associated token account program.
const ataCreateIdempotent = 1

// FindAssociatedTokenAddress derives the ATA of (owner, mint) under tokenProgram.
func FindAssociatedTokenAddress(owner, mint, tokenProgram solana.PublicKey) (ata solana.PublicKey, bump uint8, err error) {
	// Seeds: [owner, token_program, mint]
	return solana.FindProgramAddress(
		[][]byte{
			owner.Bytes(),
			tokenProgram.Bytes(),
			mint.Bytes(),
		},
		solana.SPLAssociatedTokenAccountProgramID,
	)
}

// NewCreateIdempotentIx builds a CreateIdempotent instruction for the ATA
// program at ataProgram. Account order:
// 0. funder (signer, writable)
// 1. ata (writable)
// 2. owner
// 3. mint
// 4. system_program
// 5. token_program
func NewCreateIdempotentIx(
	ataProgram solana.PublicKey,
	funder solana.PublicKey,
	ata solana.PublicKey,
	owner solana.PublicKey,
	mint solana.PublicKey,
	systemProgram solana.PublicKey,
	tokenProgram solana.PublicKey,
) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: funder, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: systemProgram, IsSigner: false, IsWritable: false},
		{PublicKey: tokenProgram, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(ataProgram, accounts, []byte{ataCreateIdempotent})
}
