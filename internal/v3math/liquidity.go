package v3math

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrInvalidPrice is returned when a token price needed for a conversion is not positive.
var ErrInvalidPrice = errors.New("token price must be positive")

func ordered(a, b *big.Int) (*big.Int, *big.Int) {
	if a.Cmp(b) > 0 {
		return b, a
	}
	return a, b
}

// LiquidityForAmount0 returns amount0 * (sqrtA * sqrtB / 2^96) / (sqrtB - sqrtA) at full precision.
func LiquidityForAmount0(sqrtA, sqrtB, amount0 *big.Int) *big.Int {
	sqrtA, sqrtB = ordered(sqrtA, sqrtB)
	if sqrtA.Cmp(sqrtB) == 0 {
		return new(big.Int)
	}
	num := new(big.Int).Mul(amount0, sqrtA)
	num.Mul(num, sqrtB)
	den := new(big.Int).Sub(sqrtB, sqrtA)
	den.Mul(den, Q96)
	return num.Quo(num, den)
}

// LiquidityForAmount1 returns amount1 * 2^96 / (sqrtB - sqrtA).
func LiquidityForAmount1(sqrtA, sqrtB, amount1 *big.Int) *big.Int {
	sqrtA, sqrtB = ordered(sqrtA, sqrtB)
	if sqrtA.Cmp(sqrtB) == 0 {
		return new(big.Int)
	}
	num := new(big.Int).Mul(amount1, Q96)
	return num.Quo(num, new(big.Int).Sub(sqrtB, sqrtA))
}

// MaxLiquidityForAmounts returns the most liquidity the two amounts can mint over
// [sqrtA, sqrtB] at the current sqrt price.
func MaxLiquidityForAmounts(sqrtCurrent, sqrtA, sqrtB, amount0, amount1 *big.Int) *big.Int {
	sqrtA, sqrtB = ordered(sqrtA, sqrtB)
	switch {
	case sqrtCurrent.Cmp(sqrtA) <= 0:
		return LiquidityForAmount0(sqrtA, sqrtB, amount0)
	case sqrtCurrent.Cmp(sqrtB) < 0:
		l0 := LiquidityForAmount0(sqrtCurrent, sqrtB, amount0)
		l1 := LiquidityForAmount1(sqrtA, sqrtCurrent, amount1)
		if l0.Cmp(l1) < 0 {
			return l0
		}
		return l1
	default:
		return LiquidityForAmount1(sqrtA, sqrtB, amount1)
	}
}

// TokenShares splits a notional between the two tokens by where the current tick sits in the
// range: all token0 at or below tickLower, all token1 at or above tickUpper, linear between.
func TokenShares(current, tickLower, tickUpper int32) (decimal.Decimal, decimal.Decimal) {
	switch {
	case current <= tickLower:
		return decimal.NewFromInt(1), decimal.Zero
	case current >= tickUpper:
		return decimal.Zero, decimal.NewFromInt(1)
	}
	width := decimal.NewFromInt(int64(tickUpper) - int64(tickLower))
	share0 := decimal.NewFromInt(int64(tickUpper) - int64(current)).Div(width)
	share1 := decimal.NewFromInt(int64(current) - int64(tickLower)).Div(width)
	return share0, share1
}

// NotionalRange describes a USD notional to be placed in a tick range.
type NotionalRange struct {
	USD          decimal.Decimal
	Price0       decimal.Decimal
	Price1       decimal.Decimal
	Decimals0    uint8
	Decimals1    uint8
	CurrentTick  int32
	SqrtPriceX96 *big.Int
	TickLower    int32
	TickUpper    int32
}

// TokenAmounts converts the notional into raw token amounts.
func (n NotionalRange) TokenAmounts() (*big.Int, *big.Int, error) {
	share0, share1 := TokenShares(n.CurrentTick, n.TickLower, n.TickUpper)
	amount0, err := rawAmount(n.USD, n.Price0, share0, n.Decimals0)
	if err != nil {
		return nil, nil, fmt.Errorf("token0: %w", err)
	}
	amount1, err := rawAmount(n.USD, n.Price1, share1, n.Decimals1)
	if err != nil {
		return nil, nil, fmt.Errorf("token1: %w", err)
	}
	return amount0, amount1, nil
}

func rawAmount(usd, price, share decimal.Decimal, decimals uint8) (*big.Int, error) {
	if share.IsZero() {
		return new(big.Int), nil
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, price)
	}
	amount := usd.Div(price).Mul(share).Shift(int32(decimals))
	return amount.Round(0).BigInt(), nil
}

// Liquidity returns the liquidity the notional buys in the range at the current price.
func (n NotionalRange) Liquidity() (*big.Int, error) {
	if n.TickLower >= n.TickUpper {
		return nil, fmt.Errorf("tick range [%d, %d] is empty", n.TickLower, n.TickUpper)
	}
	if n.SqrtPriceX96 == nil || n.SqrtPriceX96.Sign() <= 0 {
		return nil, fmt.Errorf("sqrt price is required")
	}
	amount0, amount1, err := n.TokenAmounts()
	if err != nil {
		return nil, err
	}
	sqrtA, err := SqrtRatioAtTick(n.TickLower)
	if err != nil {
		return nil, err
	}
	sqrtB, err := SqrtRatioAtTick(n.TickUpper)
	if err != nil {
		return nil, err
	}
	return MaxLiquidityForAmounts(n.SqrtPriceX96, sqrtA, sqrtB, amount0, amount1), nil
}
