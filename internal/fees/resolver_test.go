package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"feeScope/internal/model"
)

func TestResolveTick(t *testing.T) {
	history := []model.TickDayRecord{
		{Date: 300, Tick: tick(-200, q(3), q(3))},
		{Date: 100, Tick: tick(-200, q(1), q(1))},
		{Date: 200, Tick: tick(-200, q(2), q(2))},
		{Date: 250, Tick: tick(60, q(9), q(9))},
	}
	fallback := tick(-200, q(7), q(7))

	cases := []struct {
		name string
		asOf uint64
		want int64
	}{
		{"exact date", 200, 2},
		{"first smaller", 260, 2},
		{"latest", 1000, 3},
		{"before history", 50, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveTick(-200, tc.asOf, history, fallback)
			assert.Equal(t, int32(-200), got.Index)
			assert.Equal(t, q(tc.want).String(), got.FeeGrowthOutside0.String())
		})
	}
}

func TestResolveTickFallbackUnmodified(t *testing.T) {
	fallback := tick(-200, q(7), q(8))
	history := []model.TickDayRecord{{Date: 500, Tick: tick(-200, q(1), q(1))}}

	got := ResolveTick(-200, 499, history, fallback)
	assert.Equal(t, fallback.Index, got.Index)
	assert.Same(t, fallback.FeeGrowthOutside0, got.FeeGrowthOutside0)
	assert.Same(t, fallback.FeeGrowthOutside1, got.FeeGrowthOutside1)

	got = ResolveTick(-200, 10, nil, fallback)
	assert.Same(t, fallback.FeeGrowthOutside0, got.FeeGrowthOutside0)
}

func TestTickHistoryIgnoresOtherTicks(t *testing.T) {
	history := []model.TickDayRecord{
		{Date: 100, Tick: tick(10, q(1), q(1))},
		{Date: 100, Tick: tick(20, q(2), q(2))},
	}
	h := NewTickHistory(20, history)
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, q(2).String(), h.Resolve(100, zeroTick(20)).FeeGrowthOutside0.String())
	assert.Equal(t, int32(10), history[0].Index, "input must not be reordered")
}
