package fees

import (
	"fmt"

	"feeScope/internal/model"
)

// Arithmetic selects how fee growth subtraction behaves.
type Arithmetic int

const (
	// ArithmeticSigned subtracts without bounds, matching the daily reconstruction.
	ArithmeticSigned Arithmetic = iota
	// ArithmeticModular wraps mod 2^256 and truncates owed amounts to 128 bits, as on chain.
	ArithmeticModular
)

func (a Arithmetic) String() string {
	if a == ArithmeticModular {
		return "modular"
	}
	return "signed"
}

// UncollectedFees returns what a position earned since its last recorded inside growth, from
// the pool's state and the position's boundary ticks at the same block.
func UncollectedFees(pos model.Position, pool model.PoolState, mode Arithmetic) (model.TokenFeeAmount, error) {
	if pos.TickLower.Index >= pos.TickUpper.Index {
		return model.TokenFeeAmount{}, fmt.Errorf("position %s: %w", pos.ID, ErrInvalidRange)
	}
	if !pos.HasAccounting() {
		return model.TokenFeeAmount{}, fmt.Errorf("position %s: %w", pos.ID, ErrMissingAccounting)
	}

	if mode == ArithmeticModular {
		in0, in1 := FeeGrowthInsideModular(pos.TickLower, pos.TickUpper, pool.Tick, pool.FeeGrowthGlobal0, pool.FeeGrowthGlobal1)
		return model.TokenFeeAmount{
			Amount0: FeesSinceModular(in0, pos.FeeGrowthInside0Last, pos.Liquidity),
			Amount1: FeesSinceModular(in1, pos.FeeGrowthInside1Last, pos.Liquidity),
		}, nil
	}

	in0, in1 := FeeGrowthInside(pos.TickLower, pos.TickUpper, pool.Tick, pool.FeeGrowthGlobal0, pool.FeeGrowthGlobal1)
	return model.TokenFeeAmount{
		Amount0: FeesSince(in0, pos.FeeGrowthInside0Last, pos.Liquidity),
		Amount1: FeesSince(in1, pos.FeeGrowthInside1Last, pos.Liquidity),
	}, nil
}

// TotalUncollectedFees evaluates UncollectedFees for positions sharing one pool state and
// returns the sum along with each position's amount keyed by id.
func TotalUncollectedFees(positions []model.Position, pool model.PoolState, mode Arithmetic) (model.TokenFeeAmount, map[string]model.TokenFeeAmount, error) {
	total := model.ZeroFees()
	per := make(map[string]model.TokenFeeAmount, len(positions))
	for _, pos := range positions {
		owed, err := UncollectedFees(pos, pool, mode)
		if err != nil {
			return model.TokenFeeAmount{}, nil, err
		}
		per[pos.ID] = owed
		total = total.Add(owed)
	}
	return total, per, nil
}
