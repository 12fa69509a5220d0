package orca

import (
	"crypto/sha256"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

var (
	// WhirlpoolProgramID is the Orca Whirlpool program on mainnet and devnet.
	WhirlpoolProgramID = solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")

	// SwapDiscriminator selects the whirlpool "swap" entrypoint.
	SwapDiscriminator = [8]byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}

	// WhirlpoolDiscriminator prefixes every Whirlpool account.
	WhirlpoolDiscriminator = accountDiscriminator("Whirlpool")

	// Sqrt price bounds of the pool, Q64.64.
	MinSqrtPriceX64 = mustUint128("4295048016")
	MaxSqrtPriceX64 = mustUint128("79226673515401279992447579055")
)

const (
	// WhirlpoolSize is the exact length of a Whirlpool account.
	WhirlpoolSize = 653

	NumRewards = 3

	// Fee rates are stored in hundredths of a basis point.
	feeRateDenominator = 1_000_000

	oracleSeed = "oracle"
)

// Whirlpool is a read-only snapshot of a concentrated-liquidity pool.
type Whirlpool struct {
	Discriminator              [8]byte
	WhirlpoolsConfig           solana.PublicKey
	WhirlpoolBump              [1]byte
	TickSpacing                uint16
	TickSpacingSeed            [2]byte
	FeeRate                    uint16
	ProtocolFeeRate            uint16
	Liquidity                  uint128.Uint128
	SqrtPrice                  uint128.Uint128
	TickCurrentIndex           int32
	ProtocolFeeOwedA           uint64
	ProtocolFeeOwedB           uint64
	TokenMintA                 solana.PublicKey
	TokenVaultA                solana.PublicKey
	FeeGrowthGlobalA           uint128.Uint128
	TokenMintB                 solana.PublicKey
	TokenVaultB                solana.PublicKey
	FeeGrowthGlobalB           uint128.Uint128
	RewardLastUpdatedTimestamp uint64
	RewardInfos                [NumRewards]RewardInfo
}

// RewardInfo is one liquidity-mining reward slot of a pool.
type RewardInfo struct {
	Mint                  solana.PublicKey
	Vault                 solana.PublicKey
	Authority             solana.PublicKey
	EmissionsPerSecondX64 uint128.Uint128
	GrowthGlobalX64       uint128.Uint128
}

// OraclePDA derives the oracle account of a whirlpool.
func OraclePDA(programID, whirlpool solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte(oracleSeed), whirlpool.Bytes()}, programID)
	return addr, err
}

// accountDiscriminator is the anchor account prefix: sha256("account:<name>")[:8].
func accountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

func mustUint128(s string) uint128.Uint128 {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("orca: bad uint128 literal " + s)
	}
	return uint128.FromBig(v)
}
