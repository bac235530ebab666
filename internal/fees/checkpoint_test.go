package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feeScope/internal/model"
)

func TestAdvance(t *testing.T) {
	cps := []model.PositionCheckpoint{
		checkpoint(10, 1, q(0), q(0)),
		checkpoint(20, 2, q(0), q(0)),
		checkpoint(30, 3, q(0), q(0)),
		checkpoint(40, 4, q(0), q(0)),
	}

	idx, cp, moved := Advance(0, cps, 15)
	assert.Equal(t, 0, idx)
	assert.False(t, moved)
	assert.Equal(t, uint64(10), cp.Timestamp)

	idx, cp, moved = Advance(0, cps, 20)
	assert.Equal(t, 1, idx, "a checkpoint on the day applies")
	assert.True(t, moved)
	assert.Equal(t, "2", cp.Liquidity.String())

	idx, _, moved = Advance(1, cps, 35)
	assert.Equal(t, 2, idx)
	assert.True(t, moved)

	idx, cp, moved = Advance(0, cps, 1000)
	assert.Equal(t, 3, idx, "skips every checkpoint not exceeding the day")
	assert.True(t, moved)
	assert.Equal(t, uint64(40), cp.Timestamp)

	idx, _, moved = Advance(3, cps, 2000)
	assert.Equal(t, 3, idx)
	assert.False(t, moved)
}

func TestAdvanceEmpty(t *testing.T) {
	idx, cp, moved := Advance(0, nil, 100)
	assert.Equal(t, 0, idx)
	assert.False(t, moved)
	assert.Nil(t, cp.Liquidity)
}

func TestEffectiveFloor(t *testing.T) {
	cps := []model.PositionCheckpoint{checkpoint(500, 1, q(0), q(0)), checkpoint(300, 1, q(0), q(0))}
	assert.Equal(t, uint64(300), EffectiveFloor(100, cps))
	assert.Equal(t, uint64(900), EffectiveFloor(900, cps))
	assert.Equal(t, uint64(100), EffectiveFloor(100, nil))
}

func TestFilterFromCheckpoint(t *testing.T) {
	days := []model.PoolDayRecord{
		poolDay(100, 0, q(0), q(0)),
		poolDay(200, 0, q(0), q(0)),
		poolDay(300, 0, q(0), q(0)),
	}
	got := FilterFromCheckpoint(days, []model.PositionCheckpoint{checkpoint(200, 1, q(0), q(0))})
	require.Len(t, got, 2)
	assert.Equal(t, uint64(200), got[0].Date)
	assert.Nil(t, FilterFromCheckpoint(days, nil))
}
