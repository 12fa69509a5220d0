package processor

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/credit-program/internal/authority"
	"github.com/aman-zulfiqar/credit-program/internal/delegation"
	"github.com/aman-zulfiqar/credit-program/internal/host"
	"github.com/aman-zulfiqar/credit-program/internal/instruction"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
	"github.com/aman-zulfiqar/credit-program/internal/schema"
	"github.com/aman-zulfiqar/credit-program/internal/token"
)

// Invocation step names, used in logs and metrics.
const (
	StepCreateATA = "create_ata"
	StepApprove   = "approve"
	StepSwap      = "swap"
)

// swap exchanges the signer's USDC for BONO held by the derived authority.
// Steps run in order and the first failure is returned as is:
//  1. create the authority's BONO token account if absent
//  2. check the supplied authority against the derivation
//  3. check the USDC balance and approve the authority for exactly the amount
//  4. swap on the whirlpool, signed by the authority
func (p *Processor) swap(ctx context.Context, programID solana.PublicKey, accounts []*host.AccountInfo, args instruction.Swap) error {
	acc, err := schema.ParseSwapAccounts(accounts)
	if err != nil {
		return err
	}

	log := p.log.WithFields(logrus.Fields{
		"signer":      acc.Signer.Key.String(),
		"usdc_amount": args.USDCAmount,
		"threshold":   args.BonoAmountThreshold,
	})

	createATA := token.NewCreateIdempotentIx(
		acc.ATAProgram.Key,
		acc.Signer.Key,
		acc.AuthorityBono.Key,
		acc.Authority.Key,
		acc.BonoMint.Key,
		acc.SystemProgram.Key,
		acc.TokenProgram.Key,
	)
	if err := p.invoke(ctx, StepCreateATA, createATA, []*host.AccountInfo{
		acc.ATAProgram, acc.Signer, acc.AuthorityBono, acc.Authority,
		acc.BonoMint, acc.SystemProgram, acc.TokenProgram,
	}); err != nil {
		return err
	}

	auth, err := authority.Verify(programID, acc.Authority.Key)
	if err != nil {
		return err
	}

	snapshot, err := token.ParseSnapshot(acc.SignerUSDC.Data)
	if err != nil {
		return err
	}
	req, err := delegation.Prepare(snapshot, args.USDCAmount, acc.SignerUSDC.Key, auth.Address, acc.Signer.Key)
	if err != nil {
		host.Logf(p.logger, "Not enough USDCs owned by signer to perform the swap asked")
		return err
	}

	approve, err := req.Instruction(acc.TokenProgram.Key)
	if err != nil {
		return err
	}
	if err := p.invoke(ctx, StepApprove, approve, []*host.AccountInfo{
		acc.TokenProgram, acc.SignerUSDC, acc.Authority, acc.Signer,
	}); err != nil {
		return err
	}

	swapIx, err := orca.BuildSwapInstruction(
		acc.WhirlpoolProgram.Key,
		orca.ExactInputBToA(args.USDCAmount, args.BonoAmountThreshold),
		orca.SwapAccounts{
			TokenProgram:       acc.TokenProgram.Key,
			TokenAuthority:     auth.Address,
			Whirlpool:          acc.Whirlpool.Key,
			TokenOwnerAccountA: acc.AuthorityBono.Key,
			VaultA:             acc.VaultA.Key,
			TokenOwnerAccountB: acc.SignerUSDC.Key,
			VaultB:             acc.VaultB.Key,
			TickArrays:         [3]solana.PublicKey{acc.TickArray0.Key, acc.TickArray1.Key, acc.TickArray2.Key},
			Oracle:             acc.Oracle.Key,
		},
	)
	if err != nil {
		return err
	}
	err = p.invoker.InvokeSigned(ctx, swapIx, []*host.AccountInfo{
		acc.WhirlpoolProgram, acc.TokenProgram, acc.Authority, acc.Whirlpool,
		acc.AuthorityBono, acc.VaultA, acc.SignerUSDC, acc.VaultB,
		acc.TickArray0, acc.TickArray1, acc.TickArray2, acc.Oracle,
	}, auth.SignerSeeds())
	p.metrics.ObserveInvocation(StepSwap, err)
	if err != nil {
		return err
	}

	log.Info("swap submitted to whirlpool")
	return nil
}

func (p *Processor) invoke(ctx context.Context, step string, ix solana.Instruction, accounts []*host.AccountInfo) error {
	err := p.invoker.Invoke(ctx, ix, accounts)
	p.metrics.ObserveInvocation(step, err)
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"step":    step,
			"program": ix.ProgramID().String(),
		}).WithError(err).Debug("invocation failed")
	}
	return err
}
