package model

import (
	"math/big"
	"strconv"
)

// PoolState is a pool's live or historical state at one block.
type PoolState struct {
	ID               string
	Tick             int32
	SqrtPriceX96     *big.Int
	Liquidity        *big.Int
	FeeTier          uint32
	FeeGrowthGlobal0 *big.Int
	FeeGrowthGlobal1 *big.Int
	Token0           TokenMeta
	Token1           TokenMeta
}

// RawPoolState is a pool as returned by the indexed dataset.
type RawPoolState struct {
	ID                   string
	Tick                 string
	SqrtPrice            string
	Liquidity            string
	FeeTier              string
	FeeGrowthGlobal0X128 string
	FeeGrowthGlobal1X128 string
	Token0               TokenMeta
	Token1               TokenMeta
}

// NewPoolState validates a raw pool.
func NewPoolState(raw RawPoolState) (PoolState, error) {
	tick, err := ParseTickIndex("tick", raw.Tick)
	if err != nil {
		return PoolState{}, err
	}
	g0, err := ParseQ128("feeGrowthGlobal0X128", raw.FeeGrowthGlobal0X128)
	if err != nil {
		return PoolState{}, err
	}
	g1, err := ParseQ128("feeGrowthGlobal1X128", raw.FeeGrowthGlobal1X128)
	if err != nil {
		return PoolState{}, err
	}
	state := PoolState{
		ID:               raw.ID,
		Tick:             tick,
		FeeGrowthGlobal0: g0,
		FeeGrowthGlobal1: g1,
		Token0:           raw.Token0,
		Token1:           raw.Token1,
	}
	if raw.SqrtPrice != "" {
		if state.SqrtPriceX96, err = ParseQ128("sqrtPrice", raw.SqrtPrice); err != nil {
			return PoolState{}, err
		}
	}
	if raw.Liquidity != "" {
		if state.Liquidity, err = ParseLiquidity("liquidity", raw.Liquidity); err != nil {
			return PoolState{}, err
		}
	}
	if raw.FeeTier != "" {
		fee, err := strconv.ParseUint(raw.FeeTier, 10, 32)
		if err != nil {
			return PoolState{}, invalid("feeTier", raw.FeeTier)
		}
		state.FeeTier = uint32(fee)
	}
	return state, nil
}
