package fees

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"feeScope/internal/model"
)

// RangeSnapshot is the state needed to evaluate inside growth for a range at one block.
type RangeSnapshot struct {
	Tick             int32
	FeeGrowthGlobal0 *big.Int
	FeeGrowthGlobal1 *big.Int
	Lower            model.Tick
	Upper            model.Tick
}

// SnapshotOf pairs a pool state with the boundary ticks resolved at the same block.
func SnapshotOf(pool model.PoolState, lower, upper model.Tick) RangeSnapshot {
	return RangeSnapshot{
		Tick:             pool.Tick,
		FeeGrowthGlobal0: pool.FeeGrowthGlobal0,
		FeeGrowthGlobal1: pool.FeeGrowthGlobal1,
		Lower:            lower,
		Upper:            upper,
	}
}

func (s RangeSnapshot) valid() bool {
	return s.Lower.Index < s.Upper.Index
}

func (s RangeSnapshot) inside() (*big.Int, *big.Int) {
	return FeeGrowthInside(s.Lower, s.Upper, s.Tick, s.FeeGrowthGlobal0, s.FeeGrowthGlobal1)
}

// Estimate is the fee accrual of a liquidity amount between two snapshots.
type Estimate struct {
	// Total is the amount earned over the whole period.
	Total         model.TokenFeeAmount
	Amount0PerDay decimal.Decimal
	Amount1PerDay decimal.Decimal
}

// EstimateDailyRate evaluates the inside growth at past and now, scales the difference by
// liquidity, and divides it over days. Both snapshots must carry a valid range; otherwise the
// estimate is reported unavailable.
func EstimateDailyRate(now, past RangeSnapshot, liquidity *big.Int, days decimal.Decimal) (Estimate, error) {
	if !days.IsPositive() {
		return Estimate{}, fmt.Errorf("%w: %s days", ErrNonPositiveDays, days)
	}
	if !now.valid() {
		return Estimate{}, fmt.Errorf("%w: current range [%d, %d]: %w", ErrEstimateUnavailable, now.Lower.Index, now.Upper.Index, ErrInvalidRange)
	}
	if !past.valid() {
		return Estimate{}, fmt.Errorf("%w: past range [%d, %d]: %w", ErrEstimateUnavailable, past.Lower.Index, past.Upper.Index, ErrInvalidRange)
	}

	now0, now1 := now.inside()
	past0, past1 := past.inside()
	total := model.TokenFeeAmount{
		Amount0: FeesSince(now0, past0, liquidity),
		Amount1: FeesSince(now1, past1, liquidity),
	}
	return Estimate{
		Total:         total,
		Amount0PerDay: decimal.NewFromBigInt(total.Amount0, 0).Div(days),
		Amount1PerDay: decimal.NewFromBigInt(total.Amount1, 0).Div(days),
	}, nil
}
