package orca

import (
	"math/big"

	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"

	"github.com/aman-zulfiqar/credit-program/internal/programerr"
)

// PriceScale is the number of fractional digits kept by PriceFromSqrt.
const PriceScale = 18

// q128 is 2^128, the square of the Q64.64 unit.
var q128 = new(big.Int).Lsh(big.NewInt(1), 128)

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// PriceFromSqrt converts a Q64.64 sqrt price into the price of one whole
// token A in token B:
//
//	(sqrtPriceX64 / 2^64)^2 * 10^(decimalsA - decimalsB)
//
// The arithmetic is integer-only: the square is taken before dividing and
// the quotient is floored at PriceScale fractional digits.
func PriceFromSqrt(sqrtPriceX64 uint128.Uint128, decimalsA, decimalsB uint8) decimal.Decimal {
	sqrt := sqrtPriceX64.Big()
	num := new(big.Int).Mul(sqrt, sqrt)
	num.Mul(num, pow10(PriceScale))

	den := new(big.Int).Set(q128)
	if decimalsA >= decimalsB {
		num.Mul(num, pow10(decimalsA-decimalsB))
	} else {
		den.Mul(den, pow10(decimalsB-decimalsA))
	}

	return decimal.NewFromBigInt(num.Quo(num, den), -PriceScale)
}

// ScaledAmount converts a raw token amount to whole units. It is exact.
func ScaledAmount(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
}

// ValueOf returns the token B value of a raw token A amount at price.
func ValueOf(price decimal.Decimal, rawAmountA uint64, decimalsA uint8) decimal.Decimal {
	return price.Mul(ScaledAmount(rawAmountA, decimalsA))
}

// Display truncates v to 6 fractional digits, the precision of program logs.
func Display(v decimal.Decimal) string {
	return v.Truncate(6).StringFixed(6)
}

// ExpectedOutput estimates the raw output of a swap of amountIn at the pool's
// spot price after the pool fee. Price impact is ignored, so the result is an
// upper bound for the real fill.
func ExpectedOutput(w *Whirlpool, amountIn uint64, aToB bool) (uint64, error) {
	if w == nil || w.SqrtPrice.IsZero() {
		return 0, programerr.New(programerr.CodeInvalidAccountData, "pool has no price")
	}

	in := new(big.Int).SetUint64(amountIn)
	in.Mul(in, big.NewInt(int64(feeRateDenominator-uint64(w.FeeRate))))
	in.Quo(in, big.NewInt(feeRateDenominator))

	sqrt := w.SqrtPrice.Big()
	sq := new(big.Int).Mul(sqrt, sqrt)

	out := new(big.Int)
	if aToB {
		out.Mul(in, sq)
		out.Quo(out, q128)
	} else {
		out.Mul(in, q128)
		out.Quo(out, sq)
	}

	if !out.IsUint64() {
		return 0, programerr.New(programerr.CodeArithmeticOverflow, "expected output overflows u64")
	}
	return out.Uint64(), nil
}

// ApplySlippage calculates minimum output with slippage tolerance.
// slippageBps: basis points (e.g., 100 = 1%, 50 = 0.5%)
func ApplySlippage(amountOut uint64, slippageBps uint16) uint64 {
	if slippageBps >= 10000 {
		return 0
	}

	result := new(big.Int).SetUint64(amountOut)
	result.Mul(result, big.NewInt(int64(10000-slippageBps)))
	result.Quo(result, big.NewInt(10000))

	return result.Uint64()
}
