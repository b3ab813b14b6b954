package market

import "math/bits"

// Split divides a trade price three ways: the platform's cut, the creator's
// royalty, and the remainder paid to the counterparty. Both cuts use floor
// division, so the remainder absorbs all rounding and the three parts
// always sum to price exactly.
//
// Callers must ensure feePercent + royaltyPercent ≤ 100; genesis caps the
// platform fee at 100 − MaxRoyaltyPercent and mint caps the royalty, so the
// remainder cannot underflow.
func Split(price, feePercent, royaltyPercent uint64) (platform, creator, remainder uint64) {
	platform = percentOf(price, feePercent)
	creator = percentOf(price, royaltyPercent)
	remainder = price - platform - creator
	return platform, creator, remainder
}

// percentOf computes amount * percent / 100 with a 128-bit intermediate so
// large prices cannot overflow the product.
func percentOf(amount, percent uint64) uint64 {
	hi, lo := bits.Mul64(amount, percent)
	q, _ := bits.Div64(hi, lo, 100)
	return q
}
