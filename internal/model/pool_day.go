package model

import "math/big"

// PoolDayRecord is the pool state recorded once per calendar day.
type PoolDayRecord struct {
	Date             uint64
	Tick             int32
	FeeGrowthGlobal0 *big.Int
	FeeGrowthGlobal1 *big.Int
}

// RawPoolDayRecord is a pool day record as returned by the indexed dataset.
type RawPoolDayRecord struct {
	Date                 string
	Tick                 string
	FeeGrowthGlobal0X128 string
	FeeGrowthGlobal1X128 string
}

// NewPoolDayRecord validates a raw pool day record.
func NewPoolDayRecord(raw RawPoolDayRecord) (PoolDayRecord, error) {
	date, err := ParseTimestamp("date", raw.Date)
	if err != nil {
		return PoolDayRecord{}, err
	}
	tick, err := ParseTickIndex("tick", raw.Tick)
	if err != nil {
		return PoolDayRecord{}, err
	}
	g0, err := ParseQ128("feeGrowthGlobal0X128", raw.FeeGrowthGlobal0X128)
	if err != nil {
		return PoolDayRecord{}, err
	}
	g1, err := ParseQ128("feeGrowthGlobal1X128", raw.FeeGrowthGlobal1X128)
	if err != nil {
		return PoolDayRecord{}, err
	}
	return PoolDayRecord{Date: date, Tick: tick, FeeGrowthGlobal0: g0, FeeGrowthGlobal1: g1}, nil
}
