// Package fees reconstructs concentrated liquidity fee accrual from sparse daily pool, tick and
// position snapshots.
//
// Every function here is pure over already fetched records. Fee growth values are Q128
// fixed-point accumulators; token amounts are raw base units.
package fees
