// Package client builds, dry-runs and submits credit program transactions.
package client

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/credit-program/internal/authority"
	"github.com/aman-zulfiqar/credit-program/internal/instruction"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
	"github.com/aman-zulfiqar/credit-program/internal/schema"
	"github.com/aman-zulfiqar/credit-program/internal/token"
)

// ErrNoTickArrays is returned when neither the request nor the pool
// registry supplies tick arrays for a swap.
var ErrNoTickArrays = errors.New("tick arrays required")

// Builder derives the accounts of credit program instructions.
type Builder struct {
	programID solana.PublicKey
	authority authority.Authority
}

// NewBuilder returns a Builder for the program deployed at programID.
func NewBuilder(programID solana.PublicKey) (*Builder, error) {
	auth, err := authority.Derive(programID)
	if err != nil {
		return nil, err
	}
	return &Builder{programID: programID, authority: auth}, nil
}

func (b *Builder) ProgramID() solana.PublicKey    { return b.programID }
func (b *Builder) Authority() authority.Authority { return b.authority }

// SwapRequest describes a swap of the signer's USDC for BONO on a pool.
type SwapRequest struct {
	Signer              solana.PublicKey
	USDCAmount          uint64
	BonoAmountThreshold uint64

	// Optional. SignerUSDC defaults to the signer's associated account and
	// TickArrays to the pool's.
	SignerUSDC solana.PublicKey
	TickArrays *[3]solana.PublicKey
}

// SwapKeys derives every address a Swap needs. The vaults come from the
// fetched pool state.
func (b *Builder) SwapKeys(state *orca.PoolState, req SwapRequest) (schema.SwapKeys, error) {
	pool := state.Pool
	tokenProgram := solana.TokenProgramID

	ticks := req.TickArrays
	if ticks == nil {
		ticks = pool.TickArrays
	}
	if ticks == nil {
		return schema.SwapKeys{}, fmt.Errorf("pool %s: %w", pool.Name, ErrNoTickArrays)
	}

	signerUSDC := req.SignerUSDC
	if signerUSDC.IsZero() {
		ata, _, err := token.FindAssociatedTokenAddress(req.Signer, pool.TokenMintB, tokenProgram)
		if err != nil {
			return schema.SwapKeys{}, fmt.Errorf("signer token account: %w", err)
		}
		signerUSDC = ata
	}

	authorityBono, _, err := token.FindAssociatedTokenAddress(b.authority.Address, pool.TokenMintA, tokenProgram)
	if err != nil {
		return schema.SwapKeys{}, fmt.Errorf("authority token account: %w", err)
	}

	oracle, err := orca.OraclePDA(pool.ProgramID, pool.Address)
	if err != nil {
		return schema.SwapKeys{}, err
	}

	return schema.SwapKeys{
		TokenProgram:     tokenProgram,
		WhirlpoolProgram: pool.ProgramID,
		BonoMint:         pool.TokenMintA,
		Signer:           req.Signer,
		SignerUSDC:       signerUSDC,
		Authority:        b.authority.Address,
		AuthorityBono:    authorityBono,
		Whirlpool:        pool.Address,
		VaultA:           state.Whirlpool.TokenVaultA,
		VaultB:           state.Whirlpool.TokenVaultB,
		TickArrays:       *ticks,
		Oracle:           oracle,
	}, nil
}

// Swap builds the Swap instruction over keys.
func (b *Builder) Swap(keys schema.SwapKeys, usdcAmount, bonoAmountThreshold uint64) (solana.Instruction, error) {
	data, err := instruction.Swap{
		USDCAmount:          usdcAmount,
		BonoAmountThreshold: bonoAmountThreshold,
	}.Pack()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(b.programID, keys.Metas(), data), nil
}

// ReadBonoPrice builds the ReadBonoPrice instruction for the pool at whirlpool.
func (b *Builder) ReadBonoPrice(whirlpool solana.PublicKey, bonoAmount uint64) (solana.Instruction, error) {
	data, err := instruction.ReadBonoPrice{BonoAmount: bonoAmount}.Pack()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(b.programID, schema.ReadPriceMetas(whirlpool), data), nil
}
