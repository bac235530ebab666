package model

import "math/big"

// PositionCheckpoint is a position snapshot written on deposit, withdraw or collect.
type PositionCheckpoint struct {
	PositionID           string
	Timestamp            uint64
	Liquidity            *big.Int
	FeeGrowthInside0Last *big.Int
	FeeGrowthInside1Last *big.Int
}

// RawPositionCheckpoint is a position snapshot as returned by the indexed dataset.
type RawPositionCheckpoint struct {
	PositionID               string
	Timestamp                string
	Liquidity                string
	FeeGrowthInside0LastX128 string
	FeeGrowthInside1LastX128 string
}

// NewPositionCheckpoint validates a raw position snapshot.
func NewPositionCheckpoint(raw RawPositionCheckpoint) (PositionCheckpoint, error) {
	ts, err := ParseTimestamp("timestamp", raw.Timestamp)
	if err != nil {
		return PositionCheckpoint{}, err
	}
	liq, err := ParseLiquidity("liquidity", raw.Liquidity)
	if err != nil {
		return PositionCheckpoint{}, err
	}
	in0, err := ParseQ128("feeGrowthInside0LastX128", raw.FeeGrowthInside0LastX128)
	if err != nil {
		return PositionCheckpoint{}, err
	}
	in1, err := ParseQ128("feeGrowthInside1LastX128", raw.FeeGrowthInside1LastX128)
	if err != nil {
		return PositionCheckpoint{}, err
	}
	return PositionCheckpoint{
		PositionID:           raw.PositionID,
		Timestamp:            ts,
		Liquidity:            liq,
		FeeGrowthInside0Last: in0,
		FeeGrowthInside1Last: in1,
	}, nil
}
