package fees

import (
	"fmt"
	"math/big"
	"sort"

	"feeScope/internal/model"
)

// CarryEvent records an amount withheld from a day's report or released into it.
type CarryEvent struct {
	Date     uint64
	Token    int
	Amount   *big.Int
	Released bool
}

// Series is a position's reconstructed daily fee accrual.
type Series struct {
	PositionID string
	// Dates lists the reconstructed days in ascending order.
	Dates []uint64
	Days  map[uint64]model.TokenFeeAmount
	// CheckpointIndex is the checkpoint active on each day.
	CheckpointIndex map[uint64]int
	Carries         []CarryEvent
	// Pending is carry still withheld after the last day.
	Pending model.TokenFeeAmount
}

// Sum totals every reported day.
func (s Series) Sum() model.TokenFeeAmount {
	total := model.ZeroFees()
	for _, date := range s.Dates {
		total = total.Add(s.Days[date])
	}
	return total
}

// SumFromCheckpoint totals the days reconstructed against checkpoint index or later.
func (s Series) SumFromCheckpoint(index int) model.TokenFeeAmount {
	total := model.ZeroFees()
	for _, date := range s.Dates {
		if s.CheckpointIndex[date] >= index {
			total = total.Add(s.Days[date])
		}
	}
	return total
}

// Reconstruct computes the fees a position earned on each pool day.
//
// days must be ascending and start no earlier than the first checkpoint (see
// FilterFromCheckpoint). ticks holds the day history of both boundary ticks keyed by tick
// index; the position's own boundary ticks are the fallback when no record predates a day.
// Each day reports the growth of the total earned since the active checkpoint, corrected by a
// per-token carry for boundary-crossing artifacts.
func Reconstruct(pos model.Position, days []model.PoolDayRecord, ticks model.TickSeries, checkpoints []model.PositionCheckpoint) (Series, error) {
	if pos.TickLower.Index >= pos.TickUpper.Index {
		return Series{}, fmt.Errorf("position %s [%d, %d]: %w", pos.ID, pos.TickLower.Index, pos.TickUpper.Index, ErrInvalidRange)
	}
	if len(checkpoints) == 0 {
		return Series{}, fmt.Errorf("position %s: %w", pos.ID, ErrNoCheckpoints)
	}
	for i := 1; i < len(days); i++ {
		if days[i].Date <= days[i-1].Date {
			return Series{}, fmt.Errorf("position %s: pool day %d after %d: %w", pos.ID, days[i].Date, days[i-1].Date, ErrUnordered)
		}
	}
	if !sort.SliceIsSorted(checkpoints, func(i, j int) bool { return checkpoints[i].Timestamp < checkpoints[j].Timestamp }) {
		return Series{}, fmt.Errorf("position %s: checkpoints not ascending: %w", pos.ID, ErrUnordered)
	}

	lower := NewTickHistory(pos.TickLower.Index, ticks[pos.TickLower.Index])
	upper := NewTickHistory(pos.TickUpper.Index, ticks[pos.TickUpper.Index])

	series := Series{
		PositionID:      pos.ID,
		Dates:           make([]uint64, 0, len(days)),
		Days:            make(map[uint64]model.TokenFeeAmount, len(days)),
		CheckpointIndex: make(map[uint64]int, len(days)),
	}

	index := 0
	cp := checkpoints[0]
	prev := [2]*big.Int{new(big.Int), new(big.Int)}
	carry := [2]*big.Int{new(big.Int), new(big.Int)}

	for _, day := range days {
		lt := lower.Resolve(day.Date, pos.TickLower)
		ut := upper.Resolve(day.Date, pos.TickUpper)
		if lt.Index >= ut.Index {
			return Series{}, fmt.Errorf("position %s day %d [%d, %d]: %w", pos.ID, day.Date, lt.Index, ut.Index, ErrInvalidRange)
		}

		var advanced bool
		index, cp, advanced = Advance(index, checkpoints, day.Date)
		if advanced {
			prev = [2]*big.Int{new(big.Int), new(big.Int)}
			carry = [2]*big.Int{new(big.Int), new(big.Int)}
		}

		in0, in1 := FeeGrowthInside(lt, ut, day.Tick, day.FeeGrowthGlobal0, day.FeeGrowthGlobal1)
		inside := [2]*big.Int{in0, in1}
		baseline := [2]*big.Int{cp.FeeGrowthInside0Last, cp.FeeGrowthInside1Last}

		var reported [2]*big.Int
		for i := range inside {
			current := FeesSince(inside[i], baseline[i], cp.Liquidity)
			raw := new(big.Int).Sub(current, prev[i])

			var ev *CarryEvent
			reported[i], ev = applyCarry(raw, inside[i], baseline[i], carry[i])
			if ev != nil {
				ev.Date = day.Date
				ev.Token = i
				series.Carries = append(series.Carries, *ev)
			}
			prev[i] = current
		}

		series.Dates = append(series.Dates, day.Date)
		series.Days[day.Date] = model.TokenFeeAmount{Amount0: reported[0], Amount1: reported[1]}
		series.CheckpointIndex[day.Date] = index
	}

	series.Pending = model.TokenFeeAmount{Amount0: carry[0], Amount1: carry[1]}
	return series, nil
}

// applyCarry corrects one token's raw daily amount. A negative amount absorbs the withheld
// carry. A non-negative amount seen while inside growth sits below the checkpoint baseline is
// withheld in full, unless a carry is already pending. carry is updated in place.
func applyCarry(raw, inside, baseline, carry *big.Int) (*big.Int, *CarryEvent) {
	switch {
	case raw.Sign() < 0:
		var ev *CarryEvent
		if carry.Sign() != 0 {
			ev = &CarryEvent{Amount: new(big.Int).Set(carry), Released: true}
		}
		reported := new(big.Int).Add(raw, carry)
		carry.SetInt64(0)
		return reported, ev
	case inside.Cmp(baseline) < 0 && carry.Sign() == 0:
		carry.Set(raw)
		var ev *CarryEvent
		if raw.Sign() != 0 {
			ev = &CarryEvent{Amount: new(big.Int).Set(raw)}
		}
		return new(big.Int), ev
	default:
		return raw, nil
	}
}
