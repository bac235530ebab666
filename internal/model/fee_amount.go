package model

import (
	"fmt"
	"math/big"
)

// TokenFeeAmount is a fee amount in raw token base units. Values may be negative.
type TokenFeeAmount struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

// ZeroFees returns a zero amount with both fields allocated.
func ZeroFees() TokenFeeAmount {
	return TokenFeeAmount{Amount0: new(big.Int), Amount1: new(big.Int)}
}

// Add returns f + other without modifying either operand.
func (f TokenFeeAmount) Add(other TokenFeeAmount) TokenFeeAmount {
	return TokenFeeAmount{
		Amount0: new(big.Int).Add(orZero(f.Amount0), orZero(other.Amount0)),
		Amount1: new(big.Int).Add(orZero(f.Amount1), orZero(other.Amount1)),
	}
}

// Sub returns f - other without modifying either operand.
func (f TokenFeeAmount) Sub(other TokenFeeAmount) TokenFeeAmount {
	return TokenFeeAmount{
		Amount0: new(big.Int).Sub(orZero(f.Amount0), orZero(other.Amount0)),
		Amount1: new(big.Int).Sub(orZero(f.Amount1), orZero(other.Amount1)),
	}
}

// Equal compares both amounts.
func (f TokenFeeAmount) Equal(other TokenFeeAmount) bool {
	return orZero(f.Amount0).Cmp(orZero(other.Amount0)) == 0 &&
		orZero(f.Amount1).Cmp(orZero(other.Amount1)) == 0
}

func (f TokenFeeAmount) String() string {
	return fmt.Sprintf("{amount0: %s, amount1: %s}", orZero(f.Amount0), orZero(f.Amount1))
}

var zero = new(big.Int)

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return zero
	}
	return v
}
