package v3math

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feeScope/internal/model"
)

func TestSqrtRatioAtTick(t *testing.T) {
	cases := []struct {
		tick int32
		want string
	}{
		{0, "79228162514264337593543950336"},
		{MinTick, MinSqrtRatio.String()},
		{MaxTick, MaxSqrtRatio.String()},
		{MinTick + 1, "4295343490"},
		{MaxTick - 1, "1461373636630004318706518188784493106690254656249"},
	}
	for _, tc := range cases {
		got, err := SqrtRatioAtTick(tc.tick)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.String(), "tick %d", tc.tick)
	}
}

func TestSqrtRatioAtTickMonotonic(t *testing.T) {
	prev, err := SqrtRatioAtTick(-1000)
	require.NoError(t, err)
	for tick := int32(-999); tick <= 1000; tick += 37 {
		cur, err := SqrtRatioAtTick(tick)
		require.NoError(t, err)
		assert.Equal(t, 1, cur.Cmp(prev), "tick %d", tick)
		prev = cur
	}
}

func TestSqrtRatioAtTickBounds(t *testing.T) {
	_, err := SqrtRatioAtTick(MinTick - 1)
	assert.ErrorIs(t, err, ErrTickOutOfBounds)
	_, err = SqrtRatioAtTick(MaxTick + 1)
	assert.ErrorIs(t, err, ErrTickOutOfBounds)
}

func TestSqrtRatioAtTickAcceptsParsedBounds(t *testing.T) {
	// every tick index the record parser accepts has a sqrt ratio
	got, err := SqrtRatioAtTick(model.MinTick)
	require.NoError(t, err)
	assert.Equal(t, MinSqrtRatio.String(), got.String())
	got, err = SqrtRatioAtTick(model.MaxTick)
	require.NoError(t, err)
	assert.Equal(t, MaxSqrtRatio.String(), got.String())
}

func TestSqrtRatioSymmetry(t *testing.T) {
	// sqrt(p(t)) * sqrt(p(-t)) is 2^192 up to rounding
	pos, err := SqrtRatioAtTick(50000)
	require.NoError(t, err)
	neg, err := SqrtRatioAtTick(-50000)
	require.NoError(t, err)
	product := new(big.Int).Mul(pos, neg)
	q192 := new(big.Int).Lsh(big.NewInt(1), 192)
	diff := new(big.Int).Sub(product, q192)
	diff.Abs(diff)
	tolerance := new(big.Int).Lsh(big.NewInt(1), 104)
	assert.Equal(t, -1, diff.Cmp(tolerance))
}
