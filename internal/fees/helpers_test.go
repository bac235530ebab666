package fees

import (
	"math/big"

	"feeScope/internal/model"
)

// q returns n * 2^128 so fixture divisions are exact.
func q(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Q128)
}

func tick(index int32, out0, out1 *big.Int) model.Tick {
	return model.Tick{Index: index, FeeGrowthOutside0: out0, FeeGrowthOutside1: out1}
}

func zeroTick(index int32) model.Tick {
	return tick(index, new(big.Int), new(big.Int))
}

func poolDay(date uint64, currentTick int32, g0, g1 *big.Int) model.PoolDayRecord {
	return model.PoolDayRecord{Date: date, Tick: currentTick, FeeGrowthGlobal0: g0, FeeGrowthGlobal1: g1}
}

func checkpoint(ts uint64, liquidity int64, last0, last1 *big.Int) model.PositionCheckpoint {
	return model.PositionCheckpoint{
		Timestamp:            ts,
		Liquidity:            big.NewInt(liquidity),
		FeeGrowthInside0Last: last0,
		FeeGrowthInside1Last: last1,
	}
}

func position(lower, upper model.Tick) model.Position {
	return model.Position{ID: "1", Pool: "0xpool", TickLower: lower, TickUpper: upper}
}

func dayAmounts(s Series, date uint64) (string, string) {
	fee := s.Days[date]
	return fee.Amount0.String(), fee.Amount1.String()
}
