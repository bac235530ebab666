package storage

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"feeScope/internal/model"
)

func readLines(t *testing.T, path string) []gjson.Result {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []gjson.Result
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		require.True(t, gjson.Valid(sc.Text()))
		out = append(out, gjson.Parse(sc.Text()))
	}
	require.NoError(t, sc.Err())
	return out
}

func TestJsonlStorageAppendsKinds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.jsonl")
	s := NewJsonlStorage(path, nil)
	ctx := context.Background()

	require.NoError(t, s.WriteDailyFees(ctx, []model.DailyFeeRecord{
		{PositionID: "1", Date: 86400, Day: "1970-01-02", Amount0: "10", Amount1: "-3"},
		{PositionID: "1", Date: 172800, Day: "1970-01-03", Amount0: "0", Amount1: "0", Carry0: "7"},
	}))
	require.NoError(t, s.WriteEstimates(ctx, []model.FeeEstimateRecord{{Pool: "0xpool", Available: false, UnavailableNote: "no range"}}))
	require.NoError(t, s.WriteVerifications(ctx, nil))

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t, KindDailyFee, lines[0].Get("kind").String())
	assert.Equal(t, "-3", lines[0].Get("record.amount1").String())
	assert.Equal(t, "7", lines[1].Get("record.carry0").String())
	assert.False(t, lines[0].Get("record.carry0").Exists())
	assert.Equal(t, KindEstimate, lines[2].Get("kind").String())
	assert.Equal(t, "no range", lines[2].Get("record.unavailable_note").String())
}

type failingSink struct{ JsonlStorage }

func (failingSink) WriteEstimates(context.Context, []model.FeeEstimateRecord) error {
	return errors.New("sink down")
}

func TestMultiWritesAllAndJoinsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	ok := NewJsonlStorage(path, nil)
	multi := Multi{&failingSink{}, ok}

	err := multi.WriteEstimates(context.Background(), []model.FeeEstimateRecord{{Pool: "p"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink down")
	assert.Len(t, readLines(t, path), 1)
}
