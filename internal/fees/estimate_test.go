package fees

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feeScope/internal/model"
)

func TestEstimateDailyRate(t *testing.T) {
	past := RangeSnapshot{
		Tick:             -100,
		FeeGrowthGlobal0: q(1000),
		FeeGrowthGlobal1: q(500),
		Lower:            tick(-200, q(100), q(50)),
		Upper:            tick(0, q(0), q(0)),
	}
	now := RangeSnapshot{
		Tick:             -100,
		FeeGrowthGlobal0: q(1700),
		FeeGrowthGlobal1: q(850),
		Lower:            tick(-200, q(100), q(50)),
		Upper:            tick(0, q(0), q(0)),
	}

	est, err := EstimateDailyRate(now, past, big.NewInt(10), decimal.NewFromInt(7))
	require.NoError(t, err)
	assert.Equal(t, "7000", est.Total.Amount0.String())
	assert.Equal(t, "3500", est.Total.Amount1.String())
	assert.True(t, est.Amount0PerDay.Equal(decimal.NewFromInt(1000)))
	assert.True(t, est.Amount1PerDay.Equal(decimal.NewFromInt(500)))
}

func TestEstimateDailyRateFractionalDays(t *testing.T) {
	snap := func(g int64) RangeSnapshot {
		return RangeSnapshot{Tick: 0, FeeGrowthGlobal0: q(g), FeeGrowthGlobal1: q(g), Lower: zeroTick(-60), Upper: zeroTick(60)}
	}
	est, err := EstimateDailyRate(snap(300), snap(0), big.NewInt(1), decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	assert.True(t, est.Amount0PerDay.Equal(decimal.NewFromInt(600)))
}

func TestEstimateDailyRateUnavailable(t *testing.T) {
	good := RangeSnapshot{Tick: 0, FeeGrowthGlobal0: q(1), FeeGrowthGlobal1: q(1), Lower: zeroTick(-60), Upper: zeroTick(60)}
	inverted := good
	inverted.Lower, inverted.Upper = zeroTick(60), zeroTick(-60)
	collapsed := good
	collapsed.Upper = zeroTick(-60)

	cases := map[string][2]RangeSnapshot{
		"current inverted": {inverted, good},
		"past inverted":    {good, inverted},
		"past collapsed":   {good, collapsed},
	}
	for name, pair := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := EstimateDailyRate(pair[0], pair[1], big.NewInt(1), decimal.NewFromInt(1))
			require.ErrorIs(t, err, ErrEstimateUnavailable)
			require.ErrorIs(t, err, ErrInvalidRange)
		})
	}

	_, err := EstimateDailyRate(good, good, big.NewInt(1), decimal.Zero)
	require.ErrorIs(t, err, ErrNonPositiveDays)
}

func TestSnapshotOf(t *testing.T) {
	pool := model.PoolState{Tick: 12, FeeGrowthGlobal0: q(1), FeeGrowthGlobal1: q(2)}
	s := SnapshotOf(pool, zeroTick(0), zeroTick(60))
	assert.Equal(t, int32(12), s.Tick)
	assert.Same(t, pool.FeeGrowthGlobal1, s.FeeGrowthGlobal1)
}
