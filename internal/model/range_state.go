package model

import "github.com/shopspring/decimal"

// RangeState is a pool and the boundary ticks of a range at one block.
type RangeState struct {
	Block uint64
	Pool  PoolState
	Lower Tick
	Upper Tick
}

// RangeHistory pairs a range's current state with its state at an earlier block.
type RangeHistory struct {
	Now         RangeState
	Past        RangeState
	EthPriceUSD decimal.Decimal
}
