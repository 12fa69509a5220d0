package schema

import (
	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/credit-program/internal/host"
)

// SwapKeys are the addresses a client supplies for a Swap.
type SwapKeys struct {
	TokenProgram     solana.PublicKey
	WhirlpoolProgram solana.PublicKey
	BonoMint         solana.PublicKey
	Signer           solana.PublicKey
	SignerUSDC       solana.PublicKey
	Authority        solana.PublicKey
	AuthorityBono    solana.PublicKey
	Whirlpool        solana.PublicKey
	VaultA           solana.PublicKey
	VaultB           solana.PublicKey
	TickArrays       [3]solana.PublicKey
	Oracle           solana.PublicKey
}

// Metas returns the account metas of a Swap transaction.
func (k SwapKeys) Metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.Meta(solana.SystemProgramID),
		solana.Meta(k.TokenProgram),
		solana.Meta(solana.SPLAssociatedTokenAccountProgramID),
		solana.Meta(k.WhirlpoolProgram),
		solana.Meta(k.BonoMint),
		solana.Meta(k.Signer).WRITE().SIGNER(),
		solana.Meta(k.SignerUSDC).WRITE(),
		solana.Meta(k.Authority),
		solana.Meta(k.AuthorityBono).WRITE(),
		solana.Meta(k.Whirlpool).WRITE(),
		solana.Meta(k.VaultA).WRITE(),
		solana.Meta(k.VaultB).WRITE(),
		solana.Meta(k.TickArrays[0]).WRITE(),
		solana.Meta(k.TickArrays[1]).WRITE(),
		solana.Meta(k.TickArrays[2]).WRITE(),
		solana.Meta(k.Oracle),
	}
}

// ReadPriceMetas returns the account metas of a ReadBonoPrice transaction.
func ReadPriceMetas(whirlpool solana.PublicKey) solana.AccountMetaSlice {
	return solana.AccountMetaSlice{solana.Meta(whirlpool)}
}

// Infos turns metas into invocation accounts. lookup supplies the stored
// state of each key and may return nil for accounts with no data.
func Infos(metas solana.AccountMetaSlice, lookup func(solana.PublicKey) *host.AccountInfo) []*host.AccountInfo {
	out := make([]*host.AccountInfo, len(metas))
	for i, m := range metas {
		info := &host.AccountInfo{Key: m.PublicKey}
		if lookup != nil {
			if found := lookup(m.PublicKey); found != nil {
				copied := *found
				info = &copied
				info.Key = m.PublicKey
			}
		}
		info.IsSigner = m.IsSigner
		info.IsWritable = m.IsWritable
		out[i] = info
	}
	return out
}
