package model

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ErrInvalidRecord reports a raw record that failed validation.
var ErrInvalidRecord = errors.New("invalid record")

var (
	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

func invalid(field, value string) error {
	return fmt.Errorf("%w: %s %q", ErrInvalidRecord, field, value)
}

func parseUnsigned(field, value string, max *big.Int) (*big.Int, error) {
	value = strings.TrimSpace(value)
	out, ok := new(big.Int).SetString(value, 10)
	if !ok || out.Sign() < 0 || out.Cmp(max) > 0 {
		return nil, invalid(field, value)
	}
	return out, nil
}

// ParseQ128 parses a decimal uint256 fixed-point accumulator.
func ParseQ128(field, value string) (*big.Int, error) {
	return parseUnsigned(field, value, maxUint256)
}

// ParseLiquidity parses a decimal uint128 liquidity value.
func ParseLiquidity(field, value string) (*big.Int, error) {
	return parseUnsigned(field, value, maxUint128)
}

// ParseTickIndex parses a decimal int24 tick index.
func ParseTickIndex(field, value string) (int32, error) {
	value = strings.TrimSpace(value)
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil || n < MinTick || n > MaxTick {
		return 0, invalid(field, value)
	}
	return int32(n), nil
}

// ParseTimestamp parses a decimal unix timestamp in seconds.
func ParseTimestamp(field, value string) (uint64, error) {
	value = strings.TrimSpace(value)
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, invalid(field, value)
	}
	return n, nil
}
