package reconstruct

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"feeScope/internal/fees"
	"feeScope/internal/model"
	"feeScope/internal/subgraph"
)

const day = 86400

func q(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), fees.Q128)
}

func zeroTick(index int32) model.Tick {
	return model.Tick{Index: index, FeeGrowthOutside0: new(big.Int), FeeGrowthOutside1: new(big.Int)}
}

// fakeSource serves fixed history and records the floors it was asked for.
type fakeSource struct {
	positions   map[string]model.Position
	checkpoints map[string][]model.PositionCheckpoint
	days        []model.PoolDayRecord
	ticks       map[int32][]model.TickDayRecord
	pool        model.PoolState
	history     model.RangeHistory
	historyErr  error
	block       uint64
	latest      uint64

	mu          sync.Mutex
	poolDaysAt  []uint64
	tickFloors  map[string]uint64
	blockAtTS   uint64
	tickFetches atomic.Int32
}

func (f *fakeSource) Position(_ context.Context, id string) (model.Position, error) {
	pos, ok := f.positions[id]
	if !ok {
		return model.Position{}, fmt.Errorf("position %s: %w", id, subgraph.ErrNotFound)
	}
	return pos, nil
}

func (f *fakeSource) PositionCheckpoints(_ context.Context, id string) ([]model.PositionCheckpoint, error) {
	return f.checkpoints[id], nil
}

func (f *fakeSource) OwnerPositions(_ context.Context, owner, _ string) ([]model.Position, map[string][]model.PositionCheckpoint, error) {
	var out []model.Position
	cps := make(map[string][]model.PositionCheckpoint)
	for _, id := range sortedIDs(f.positions) {
		pos := f.positions[id]
		if pos.Owner != owner {
			continue
		}
		out = append(out, pos)
		if c, ok := f.checkpoints[id]; ok {
			cps[id] = c
		}
	}
	return out, cps, nil
}

func (f *fakeSource) PoolDays(_ context.Context, _ string, after uint64) ([]model.PoolDayRecord, error) {
	f.mu.Lock()
	f.poolDaysAt = append(f.poolDaysAt, after)
	f.mu.Unlock()
	var out []model.PoolDayRecord
	for _, d := range f.days {
		if d.Date > after {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeSource) TickHistory(_ context.Context, pool string, tickIdx int32, floor uint64) ([]model.TickDayRecord, error) {
	f.tickFetches.Add(1)
	f.mu.Lock()
	if f.tickFloors == nil {
		f.tickFloors = make(map[string]uint64)
	}
	f.tickFloors[subgraph.TickID(pool, tickIdx)] = floor
	f.mu.Unlock()
	return f.ticks[tickIdx], nil
}

func (f *fakeSource) PoolState(context.Context, string) (model.PoolState, error) {
	return f.pool, nil
}

func (f *fakeSource) RangeHistory(context.Context, string, int32, int32, uint64) (model.RangeHistory, error) {
	return f.history, f.historyErr
}

func (f *fakeSource) BlockAt(_ context.Context, ts uint64) (uint64, error) {
	f.blockAtTS = ts
	return f.block, nil
}

func (f *fakeSource) LatestIndexedBlock(context.Context) (uint64, error) {
	return f.latest, nil
}

func sortedIDs(m map[string]model.Position) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type fakeCollector struct {
	amount    model.TokenFeeAmount
	owed      model.TokenFeeAmount
	owner     common.Address
	block     *big.Int
	owedBlock *big.Int
}

func (f *fakeCollector) Collectable(_ context.Context, _ *big.Int, owner common.Address, block *big.Int) (model.TokenFeeAmount, error) {
	f.owner = owner
	f.block = block
	return f.amount, nil
}

func (f *fakeCollector) TokensOwed(_ context.Context, _ *big.Int, block *big.Int) (model.TokenFeeAmount, error) {
	f.owedBlock = block
	if f.owed.Amount0 == nil {
		return model.ZeroFees(), nil
	}
	return f.owed, nil
}

const ownerAddr = "0x95ae3008c4ed8c2804051dd00f7a27dad5724ed1"

// linearSource is one pool whose global growth rises by 10*2^128 a day with the price inside
// every range, so a position with liquidity L earns 10*L of each token per day.
func linearSource() *fakeSource {
	src := &fakeSource{
		positions:   map[string]model.Position{},
		checkpoints: map[string][]model.PositionCheckpoint{},
		ticks:       map[int32][]model.TickDayRecord{},
	}
	for i := int64(1); i <= 10; i++ {
		src.days = append(src.days, model.PoolDayRecord{
			Date:             uint64(i * day),
			Tick:             0,
			FeeGrowthGlobal0: q(10 * i),
			FeeGrowthGlobal1: q(10 * i),
		})
	}
	src.pool = model.PoolState{ID: "0xpool", Tick: 0, FeeGrowthGlobal0: q(100), FeeGrowthGlobal1: q(100)}
	return src
}

func (f *fakeSource) addPosition(id string, lower, upper int32, liquidity int64, checkpoints ...model.PositionCheckpoint) model.Position {
	pos := model.Position{
		ID:                   id,
		Pool:                 "0xpool",
		Owner:                ownerAddr,
		TickLower:            zeroTick(lower),
		TickUpper:            zeroTick(upper),
		Liquidity:            big.NewInt(liquidity),
		FeeGrowthInside0Last: new(big.Int),
		FeeGrowthInside1Last: new(big.Int),
	}
	if len(checkpoints) > 0 {
		last := checkpoints[len(checkpoints)-1]
		pos.FeeGrowthInside0Last = last.FeeGrowthInside0Last
		pos.FeeGrowthInside1Last = last.FeeGrowthInside1Last
	}
	f.positions[id] = pos
	if checkpoints != nil {
		for i := range checkpoints {
			checkpoints[i].PositionID = id
		}
		f.checkpoints[id] = checkpoints
	}
	return pos
}

func cp(ts uint64, liquidity int64, last *big.Int) model.PositionCheckpoint {
	return model.PositionCheckpoint{
		Timestamp:            ts,
		Liquidity:            big.NewInt(liquidity),
		FeeGrowthInside0Last: last,
		FeeGrowthInside1Last: last,
	}
}
