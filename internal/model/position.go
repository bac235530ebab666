package model

import (
	"fmt"
	"math/big"
)

// Position is a liquidity position over a fixed tick range.
// TickLower and TickUpper carry the boundary ticks' live state, which doubles as the
// fallback when no history predates a query date.
type Position struct {
	ID        string
	Pool      string
	Owner     string
	TickLower Tick
	TickUpper Tick

	// Current accounting state, set when the source exposes it.
	Liquidity            *big.Int
	FeeGrowthInside0Last *big.Int
	FeeGrowthInside1Last *big.Int
}

// RawPosition is a position as returned by the indexed dataset.
type RawPosition struct {
	ID                       string
	Pool                     string
	Owner                    string
	TickLower                RawTick
	TickUpper                RawTick
	Liquidity                string
	FeeGrowthInside0LastX128 string
	FeeGrowthInside1LastX128 string
}

// NewPosition validates a raw position. Accounting fields are optional.
func NewPosition(raw RawPosition) (Position, error) {
	if raw.ID == "" {
		return Position{}, invalid("id", raw.ID)
	}
	lower, err := NewTick(raw.TickLower)
	if err != nil {
		return Position{}, fmt.Errorf("tick lower: %w", err)
	}
	upper, err := NewTick(raw.TickUpper)
	if err != nil {
		return Position{}, fmt.Errorf("tick upper: %w", err)
	}
	pos := Position{
		ID:        raw.ID,
		Pool:      raw.Pool,
		Owner:     raw.Owner,
		TickLower: lower,
		TickUpper: upper,
	}
	if raw.Liquidity != "" {
		if pos.Liquidity, err = ParseLiquidity("liquidity", raw.Liquidity); err != nil {
			return Position{}, err
		}
	}
	if raw.FeeGrowthInside0LastX128 != "" {
		if pos.FeeGrowthInside0Last, err = ParseQ128("feeGrowthInside0LastX128", raw.FeeGrowthInside0LastX128); err != nil {
			return Position{}, err
		}
	}
	if raw.FeeGrowthInside1LastX128 != "" {
		if pos.FeeGrowthInside1Last, err = ParseQ128("feeGrowthInside1LastX128", raw.FeeGrowthInside1LastX128); err != nil {
			return Position{}, err
		}
	}
	return pos, nil
}

// HasAccounting reports whether the current liquidity and inside growth are known.
func (p Position) HasAccounting() bool {
	return p.Liquidity != nil && p.FeeGrowthInside0Last != nil && p.FeeGrowthInside1Last != nil
}
