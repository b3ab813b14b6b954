package market

import (
	"math/big"

	"github.com/tolelom/curvemarket/core"
)

// priceScale is the fixed scaling constant applied to the integer square
// root in the curve denominator. Changing it changes every settlement
// amount, so it is part of the observable contract.
const priceScale = 1000

// Price returns the unit price of a token at the given circulating supply.
// It is a pure function of supply and the market parameters.
//
// At supply 0 the price is exactly InitialPrice. Above that the increment
// approximates supply^1.5 * multiplier using integer-only arithmetic:
//
//	increment = supply² * multiplier / (isqrt(supply) * priceScale)
//
// The truncation order (square, multiply, integer sqrt, floor divide) is a
// conformance requirement: it determines settlement amounts, so it must not
// be "improved" for precision. A consequence is that the increment steps
// down wherever isqrt(supply) jumps (at perfect squares); the curve is only
// non-decreasing between those boundaries.
func Price(supply uint64, params *core.MarketParams) uint64 {
	if supply == 0 {
		return params.InitialPrice
	}

	den := isqrt(supply) * priceScale
	if den == 0 {
		// Unreachable while supply ≥ 1 and priceScale > 0; a zero
		// denominator means the curve constants are corrupt.
		panic("market: zero curve denominator")
	}

	// supply² * multiplier can exceed 64 bits long before supply does,
	// so the intermediate product is computed in big integers.
	num := new(big.Int).SetUint64(supply)
	num.Mul(num, num)
	num.Mul(num, new(big.Int).SetUint64(params.PriceIncrementMultiplier))
	num.Div(num, new(big.Int).SetUint64(den))

	return params.InitialPrice + num.Uint64()
}

// isqrt returns the integer (floor) square root of n using pure-integer
// Newton iteration. No floating point is involved anywhere on the pricing
// path.
func isqrt(n uint64) uint64 {
	if n < 2 {
		return n
	}
	// Seed above the true root; Newton then converges downward without
	// overflowing the x+1 step at the top of the uint64 range.
	x := n/2 + 1
	y := (x + n/x) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
