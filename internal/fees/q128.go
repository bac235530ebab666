package fees

import "math/big"

// Q128 is 2^128, the scale of fee growth accumulators.
var Q128 = new(big.Int).Lsh(big.NewInt(1), 128)

// AmountFromGrowth converts a fee growth delta into token units: delta * liquidity / 2^128.
// The quotient truncates toward zero, so a negative delta yields a negative amount.
func AmountFromGrowth(delta, liquidity *big.Int) *big.Int {
	out := new(big.Int).Mul(delta, liquidity)
	return out.Quo(out, Q128)
}

// FeesSince returns the tokens earned by liquidity while inside growth moved from last to inside.
func FeesSince(inside, last, liquidity *big.Int) *big.Int {
	return AmountFromGrowth(new(big.Int).Sub(inside, last), liquidity)
}
