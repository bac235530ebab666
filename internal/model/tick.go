package model

import "math/big"

// Tick index bounds of the concentrated liquidity protocol.
const (
	MinTick = -887272
	MaxTick = 887272
)

// Tick is a boundary tick's outside fee growth at one point in time.
type Tick struct {
	Index             int32
	FeeGrowthOutside0 *big.Int
	FeeGrowthOutside1 *big.Int
}

// RawTick is a tick as returned by the indexed dataset.
type RawTick struct {
	TickIdx               string
	FeeGrowthOutside0X128 string
	FeeGrowthOutside1X128 string
}

// NewTick validates a raw tick.
func NewTick(raw RawTick) (Tick, error) {
	idx, err := ParseTickIndex("tickIdx", raw.TickIdx)
	if err != nil {
		return Tick{}, err
	}
	out0, err := ParseQ128("feeGrowthOutside0X128", raw.FeeGrowthOutside0X128)
	if err != nil {
		return Tick{}, err
	}
	out1, err := ParseQ128("feeGrowthOutside1X128", raw.FeeGrowthOutside1X128)
	if err != nil {
		return Tick{}, err
	}
	return Tick{Index: idx, FeeGrowthOutside0: out0, FeeGrowthOutside1: out1}, nil
}

// TickDayRecord is a tick snapshot written on a day its outside growth changed.
type TickDayRecord struct {
	Date uint64
	Tick
}

// RawTickDayRecord is a tick day record as returned by the indexed dataset.
type RawTickDayRecord struct {
	Date string
	RawTick
}

// NewTickDayRecord validates a raw tick day record.
func NewTickDayRecord(raw RawTickDayRecord) (TickDayRecord, error) {
	date, err := ParseTimestamp("date", raw.Date)
	if err != nil {
		return TickDayRecord{}, err
	}
	tick, err := NewTick(raw.RawTick)
	if err != nil {
		return TickDayRecord{}, err
	}
	return TickDayRecord{Date: date, Tick: tick}, nil
}

// TickSeries maps a tick index to its recorded day history.
type TickSeries map[int32][]TickDayRecord
