package subgraph

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"feeScope/internal/model"
)

func rawTick(r gjson.Result) model.RawTick {
	return model.RawTick{
		TickIdx:               r.Get("tickIdx").String(),
		FeeGrowthOutside0X128: r.Get("feeGrowthOutside0X128").String(),
		FeeGrowthOutside1X128: r.Get("feeGrowthOutside1X128").String(),
	}
}

func parsePosition(r gjson.Result) (model.Position, error) {
	pos, err := model.NewPosition(model.RawPosition{
		ID:                       r.Get("id").String(),
		Pool:                     r.Get("pool.id").String(),
		Owner:                    r.Get("owner").String(),
		TickLower:                rawTick(r.Get("tickLower")),
		TickUpper:                rawTick(r.Get("tickUpper")),
		Liquidity:                r.Get("liquidity").String(),
		FeeGrowthInside0LastX128: r.Get("feeGrowthInside0LastX128").String(),
		FeeGrowthInside1LastX128: r.Get("feeGrowthInside1LastX128").String(),
	})
	if err != nil {
		return model.Position{}, fmt.Errorf("position %s: %w", r.Get("id").String(), err)
	}
	return pos, nil
}

func parseCheckpoint(r gjson.Result) (model.PositionCheckpoint, error) {
	return model.NewPositionCheckpoint(model.RawPositionCheckpoint{
		PositionID:               r.Get("position.id").String(),
		Timestamp:                r.Get("timestamp").String(),
		Liquidity:                r.Get("liquidity").String(),
		FeeGrowthInside0LastX128: r.Get("feeGrowthInside0LastX128").String(),
		FeeGrowthInside1LastX128: r.Get("feeGrowthInside1LastX128").String(),
	})
}

func parsePoolDay(r gjson.Result) (model.PoolDayRecord, error) {
	return model.NewPoolDayRecord(model.RawPoolDayRecord{
		Date:                 r.Get("date").String(),
		Tick:                 r.Get("tick").String(),
		FeeGrowthGlobal0X128: r.Get("feeGrowthGlobal0X128").String(),
		FeeGrowthGlobal1X128: r.Get("feeGrowthGlobal1X128").String(),
	})
}

func parseTickDay(r gjson.Result) (model.TickDayRecord, error) {
	return model.NewTickDayRecord(model.RawTickDayRecord{
		Date: r.Get("date").String(),
		RawTick: model.RawTick{
			TickIdx:               r.Get("tick.tickIdx").String(),
			FeeGrowthOutside0X128: r.Get("feeGrowthOutside0X128").String(),
			FeeGrowthOutside1X128: r.Get("feeGrowthOutside1X128").String(),
		},
	})
}

func parseToken(r gjson.Result) (model.TokenMeta, error) {
	meta := model.TokenMeta{
		Address:    r.Get("id").String(),
		Symbol:     r.Get("symbol").String(),
		DerivedETH: r.Get("derivedETH").String(),
	}
	decimals, err := strconv.ParseUint(r.Get("decimals").String(), 10, 8)
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("%w: decimals %q", model.ErrInvalidRecord, r.Get("decimals").String())
	}
	meta.Decimals = uint8(decimals)
	return meta, nil
}

func parsePool(r gjson.Result) (model.PoolState, error) {
	token0, err := parseToken(r.Get("token0"))
	if err != nil {
		return model.PoolState{}, fmt.Errorf("token0: %w", err)
	}
	token1, err := parseToken(r.Get("token1"))
	if err != nil {
		return model.PoolState{}, fmt.Errorf("token1: %w", err)
	}
	pool, err := model.NewPoolState(model.RawPoolState{
		ID:                   r.Get("id").String(),
		Tick:                 r.Get("tick").String(),
		SqrtPrice:            r.Get("sqrtPrice").String(),
		Liquidity:            r.Get("liquidity").String(),
		FeeTier:              r.Get("feeTier").String(),
		FeeGrowthGlobal0X128: r.Get("feeGrowthGlobal0X128").String(),
		FeeGrowthGlobal1X128: r.Get("feeGrowthGlobal1X128").String(),
		Token0:               token0,
		Token1:               token1,
	})
	if err != nil {
		return model.PoolState{}, fmt.Errorf("pool %s: %w", r.Get("id").String(), err)
	}
	return pool, nil
}

// firstTick parses the single element of a first:1 tick query.
func firstTick(r gjson.Result, name string) (model.Tick, error) {
	items := r.Array()
	if len(items) == 0 {
		return model.Tick{}, fmt.Errorf("%w: no initialized %s tick", ErrNotFound, name)
	}
	tick, err := model.NewTick(rawTick(items[0]))
	if err != nil {
		return model.Tick{}, fmt.Errorf("%s tick: %w", name, err)
	}
	return tick, nil
}
