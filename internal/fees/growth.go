package fees

import (
	"math/big"

	"github.com/holiman/uint256"

	"feeScope/internal/model"
)

// FeeGrowthInside evaluates the fee growth inside [lower, upper) for one point in time.
//
// Below the lower tick the outside value counts as growth below when the current tick is at
// or above it, and as growth above the range otherwise; the upper tick mirrors that. The
// subtraction is plain signed arithmetic, so a stale boundary record can produce a negative
// result instead of wrapping.
func FeeGrowthInside(lower, upper model.Tick, currentTick int32, global0, global1 *big.Int) (*big.Int, *big.Int) {
	in0 := insideSigned(lower.FeeGrowthOutside0, upper.FeeGrowthOutside0, global0, currentTick >= lower.Index, currentTick < upper.Index)
	in1 := insideSigned(lower.FeeGrowthOutside1, upper.FeeGrowthOutside1, global1, currentTick >= lower.Index, currentTick < upper.Index)
	return in0, in1
}

func insideSigned(lowerOutside, upperOutside, global *big.Int, aboveLower, belowUpper bool) *big.Int {
	below := lowerOutside
	if !aboveLower {
		below = new(big.Int).Sub(global, lowerOutside)
	}
	above := upperOutside
	if !belowUpper {
		above = new(big.Int).Sub(global, upperOutside)
	}
	out := new(big.Int).Sub(global, below)
	return out.Sub(out, above)
}

// FeeGrowthInsideModular is FeeGrowthInside evaluated mod 2^256, as the pool contract does.
// Inputs must fit in 256 bits; the results are in [0, 2^256).
func FeeGrowthInsideModular(lower, upper model.Tick, currentTick int32, global0, global1 *big.Int) (*big.Int, *big.Int) {
	in0 := insideModular(lower.FeeGrowthOutside0, upper.FeeGrowthOutside0, global0, currentTick >= lower.Index, currentTick < upper.Index)
	in1 := insideModular(lower.FeeGrowthOutside1, upper.FeeGrowthOutside1, global1, currentTick >= lower.Index, currentTick < upper.Index)
	return in0.ToBig(), in1.ToBig()
}

func insideModular(lowerOutside, upperOutside, global *big.Int, aboveLower, belowUpper bool) *uint256.Int {
	g := toU256(global)
	below := toU256(lowerOutside)
	if !aboveLower {
		below = new(uint256.Int).Sub(g, below)
	}
	above := toU256(upperOutside)
	if !belowUpper {
		above = new(uint256.Int).Sub(g, above)
	}
	out := new(uint256.Int).Sub(g, below)
	return out.Sub(out, above)
}

var mask128 = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

// FeesSinceModular mirrors the contract's owed-token update: the inside growth delta wraps
// mod 2^256, the product with liquidity is divided by 2^128 on a 512-bit intermediate, and the
// result is truncated to 128 bits.
func FeesSinceModular(inside, last, liquidity *big.Int) *big.Int {
	delta := new(uint256.Int).Sub(toU256(inside), toU256(last))
	q128 := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	out, _ := new(uint256.Int).MulDivOverflow(delta, toU256(liquidity), q128)
	return out.And(out, mask128).ToBig()
}

// toU256 reduces v mod 2^256; negative values take their two's complement.
func toU256(v *big.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	if v.Sign() < 0 {
		abs, _ := uint256.FromBig(new(big.Int).Neg(v))
		return new(uint256.Int).Neg(abs)
	}
	out, _ := uint256.FromBig(v)
	return out
}
