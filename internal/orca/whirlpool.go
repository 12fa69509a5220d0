package orca

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"github.com/aman-zulfiqar/credit-program/internal/programerr"
)

// ParseWhirlpool decodes a Whirlpool account. The buffer must be exactly
// WhirlpoolSize bytes and start with WhirlpoolDiscriminator; on failure no
// partial result is returned.
func ParseWhirlpool(data []byte) (*Whirlpool, error) {
	if len(data) != WhirlpoolSize {
		return nil, programerr.Newf(programerr.CodeInvalidAccountData,
			"whirlpool: expected %d bytes, got %d", WhirlpoolSize, len(data))
	}
	if !bytes.Equal(data[:8], WhirlpoolDiscriminator[:]) {
		return nil, programerr.Newf(programerr.CodeInvalidAccountData,
			"whirlpool: unexpected discriminator %x", data[:8])
	}

	w, err := decodeWhirlpool(bin.NewBinDecoder(data))
	if err != nil {
		return nil, programerr.Wrap(programerr.CodeInvalidAccountData, "whirlpool", err)
	}
	return w, nil
}

type reader struct {
	dec *bin.Decoder
	err error
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return make([]byte, n)
	}
	b, err := r.dec.ReadNBytes(n)
	if err != nil {
		r.err = err
		return make([]byte, n)
	}
	return b
}

func (r *reader) key() solana.PublicKey { return solana.PublicKeyFromBytes(r.bytes(32)) }
func (r *reader) u16() uint16           { return binary.LittleEndian.Uint16(r.bytes(2)) }
func (r *reader) u64() uint64           { return binary.LittleEndian.Uint64(r.bytes(8)) }
func (r *reader) i32() int32            { return int32(binary.LittleEndian.Uint32(r.bytes(4))) }
func (r *reader) u128() uint128.Uint128 { return uint128.FromBytes(r.bytes(16)) }

func decodeWhirlpool(dec *bin.Decoder) (*Whirlpool, error) {
	r := &reader{dec: dec}
	var w Whirlpool

	copy(w.Discriminator[:], r.bytes(8))
	w.WhirlpoolsConfig = r.key()
	copy(w.WhirlpoolBump[:], r.bytes(1))
	w.TickSpacing = r.u16()
	copy(w.TickSpacingSeed[:], r.bytes(2))
	w.FeeRate = r.u16()
	w.ProtocolFeeRate = r.u16()
	w.Liquidity = r.u128()
	w.SqrtPrice = r.u128()
	w.TickCurrentIndex = r.i32()
	w.ProtocolFeeOwedA = r.u64()
	w.ProtocolFeeOwedB = r.u64()
	w.TokenMintA = r.key()
	w.TokenVaultA = r.key()
	w.FeeGrowthGlobalA = r.u128()
	w.TokenMintB = r.key()
	w.TokenVaultB = r.key()
	w.FeeGrowthGlobalB = r.u128()
	w.RewardLastUpdatedTimestamp = r.u64()
	for i := range w.RewardInfos {
		ri := &w.RewardInfos[i]
		ri.Mint = r.key()
		ri.Vault = r.key()
		ri.Authority = r.key()
		ri.EmissionsPerSecondX64 = r.u128()
		ri.GrowthGlobalX64 = r.u128()
	}

	if r.err != nil {
		return nil, r.err
	}
	if rem := dec.Remaining(); rem != 0 {
		return nil, fmt.Errorf("%d trailing bytes", rem)
	}
	return &w, nil
}

// EncodeWhirlpool writes w in the account layout. A zero discriminator is
// replaced by WhirlpoolDiscriminator. Used by tests and local fixtures.
func EncodeWhirlpool(w *Whirlpool) []byte {
	out := make([]byte, 0, WhirlpoolSize)
	u128 := func(v uint128.Uint128) {
		var b [16]byte
		v.PutBytes(b[:])
		out = append(out, b[:]...)
	}

	disc := w.Discriminator
	if disc == ([8]byte{}) {
		disc = WhirlpoolDiscriminator
	}
	out = append(out, disc[:]...)
	out = append(out, w.WhirlpoolsConfig[:]...)
	out = append(out, w.WhirlpoolBump[:]...)
	out = binary.LittleEndian.AppendUint16(out, w.TickSpacing)
	out = append(out, w.TickSpacingSeed[:]...)
	out = binary.LittleEndian.AppendUint16(out, w.FeeRate)
	out = binary.LittleEndian.AppendUint16(out, w.ProtocolFeeRate)
	u128(w.Liquidity)
	u128(w.SqrtPrice)
	out = binary.LittleEndian.AppendUint32(out, uint32(w.TickCurrentIndex))
	out = binary.LittleEndian.AppendUint64(out, w.ProtocolFeeOwedA)
	out = binary.LittleEndian.AppendUint64(out, w.ProtocolFeeOwedB)
	out = append(out, w.TokenMintA[:]...)
	out = append(out, w.TokenVaultA[:]...)
	u128(w.FeeGrowthGlobalA)
	out = append(out, w.TokenMintB[:]...)
	out = append(out, w.TokenVaultB[:]...)
	u128(w.FeeGrowthGlobalB)
	out = binary.LittleEndian.AppendUint64(out, w.RewardLastUpdatedTimestamp)
	for _, ri := range w.RewardInfos {
		out = append(out, ri.Mint[:]...)
		out = append(out, ri.Vault[:]...)
		out = append(out, ri.Authority[:]...)
		u128(ri.EmissionsPerSecondX64)
		u128(ri.GrowthGlobalX64)
	}
	return out
}
