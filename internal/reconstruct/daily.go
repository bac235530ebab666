package reconstruct

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"feeScope/internal/fees"
	"feeScope/internal/model"
)

// PositionResult is one position's reconstructed series with the inputs it was built from.
type PositionResult struct {
	Position    model.Position
	Checkpoints []model.PositionCheckpoint
	// Floor is the effective lower bound of the reconstructed days.
	Floor  uint64
	Series fees.Series
	Err    error
}

// OwnerResult is the daily reconstruction of every position an owner holds in a pool.
type OwnerResult struct {
	Owner     string
	Pool      string
	Floor     uint64
	Positions []PositionResult
}

// Failed counts the positions whose reconstruction failed.
func (r OwnerResult) Failed() int {
	n := 0
	for _, p := range r.Positions {
		if p.Err != nil {
			n++
		}
	}
	return n
}

// DailyPositionFees reconstructs a position's daily fees for days after since. The floor is
// raised to the position's first checkpoint when that is later.
func (s *Service) DailyPositionFees(ctx context.Context, positionID string, since uint64) (PositionResult, error) {
	start := time.Now()
	pos, err := s.source.Position(ctx, positionID)
	if err != nil {
		return PositionResult{}, fmt.Errorf("fetch position: %w", err)
	}
	checkpoints, err := s.source.PositionCheckpoints(ctx, positionID)
	if err != nil {
		return PositionResult{}, fmt.Errorf("fetch checkpoints: %w", err)
	}
	if len(checkpoints) == 0 {
		return PositionResult{}, fmt.Errorf("position %s: %w", positionID, fees.ErrNoCheckpoints)
	}

	floor := fees.EffectiveFloor(since, checkpoints)
	days, err := s.source.PoolDays(ctx, pos.Pool, floor)
	if err != nil {
		return PositionResult{}, fmt.Errorf("fetch pool days: %w", err)
	}

	res := s.reconstruct(ctx, pos, checkpoints, days, floor)
	if res.Err != nil {
		return PositionResult{}, res.Err
	}
	s.logger.Info("position reconstructed",
		zap.String("position", pos.ID),
		zap.String("pool", pos.Pool),
		zap.Uint64("floor", floor),
		zap.Int("days", len(res.Series.Dates)),
		zap.Int("checkpoints", len(checkpoints)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// DailyOwnerPoolFees reconstructs every position the owner holds in the pool. Pool days and
// tick histories are fetched once from the oldest checkpoint, then each position runs
// concurrently over the days after its own floor. A failed position
// is reported in its result and does not stop the others.
func (s *Service) DailyOwnerPoolFees(ctx context.Context, owner, pool string, since uint64) (OwnerResult, error) {
	start := time.Now()
	positions, checkpoints, err := s.source.OwnerPositions(ctx, owner, pool)
	if err != nil {
		return OwnerResult{}, fmt.Errorf("fetch owner positions: %w", err)
	}

	var all []model.PositionCheckpoint
	for _, cps := range checkpoints {
		all = append(all, cps...)
	}
	result := OwnerResult{Owner: owner, Pool: pool, Floor: fees.EffectiveFloor(since, all)}
	if len(positions) == 0 {
		s.logger.Info("owner has no positions in pool", zap.String("owner", owner), zap.String("pool", pool))
		return result, nil
	}

	days, err := s.source.PoolDays(ctx, pool, result.Floor)
	if err != nil {
		return OwnerResult{}, fmt.Errorf("fetch pool days: %w", err)
	}

	result.Positions = make([]PositionResult, len(positions))
	workers := pond.NewPool(s.cfg.Workers, pond.WithQueueSize(len(positions)))
	defer workers.StopAndWait()
	group := workers.NewGroupContext(ctx)
	groupCtx := group.Context()

	for i, pos := range positions {
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				result.Positions[i] = PositionResult{Position: pos, Err: err}
				return
			}
			cps := checkpoints[pos.ID]
			if len(cps) == 0 {
				result.Positions[i] = PositionResult{Position: pos, Err: fmt.Errorf("position %s: %w", pos.ID, fees.ErrNoCheckpoints)}
				return
			}
			floor := fees.EffectiveFloor(since, cps)
			res := s.reconstruct(groupCtx, pos, cps, daysAfter(days, floor), result.Floor)
			res.Floor = floor
			result.Positions[i] = res
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		s.logger.Warn("owner reconstruction group error", zap.String("owner", owner), zap.Error(err))
	}
	if err := ctx.Err(); err != nil {
		return OwnerResult{}, err
	}

	for _, p := range result.Positions {
		if p.Err != nil {
			s.logger.Warn("position reconstruction failed",
				zap.String("position", p.Position.ID),
				zap.Error(p.Err),
			)
		}
	}
	s.logger.Info("owner positions reconstructed",
		zap.String("owner", owner),
		zap.String("pool", pool),
		zap.Uint64("floor", result.Floor),
		zap.Int("positions", len(positions)),
		zap.Int("failed", result.Failed()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// daysAfter returns the days dated strictly after floor.
func daysAfter(days []model.PoolDayRecord, floor uint64) []model.PoolDayRecord {
	i := sort.Search(len(days), func(i int) bool { return days[i].Date > floor })
	return days[i:]
}

// reconstruct runs the engine for one position. Tick histories come from the shared cache
// at tickFloor, which must not be later than the first day.
func (s *Service) reconstruct(ctx context.Context, pos model.Position, checkpoints []model.PositionCheckpoint, days []model.PoolDayRecord, tickFloor uint64) PositionResult {
	res := PositionResult{Position: pos, Checkpoints: checkpoints, Floor: tickFloor}

	ticks, err := s.ticks.series(ctx, pos, tickFloor)
	if err != nil {
		res.Err = fmt.Errorf("position %s: %w", pos.ID, err)
		s.metrics.PositionDone("error", 0)
		return res
	}

	series, err := fees.Reconstruct(pos, fees.FilterFromCheckpoint(days, checkpoints), ticks, checkpoints)
	if err != nil {
		res.Err = fmt.Errorf("reconstruct: %w", err)
		s.metrics.PositionDone("error", 0)
		return res
	}
	res.Series = series

	var withheld, released int
	for _, ev := range series.Carries {
		if ev.Released {
			released++
		} else {
			withheld++
		}
		s.logger.Debug("fee carry",
			zap.String("position", pos.ID),
			zap.Uint64("date", ev.Date),
			zap.Int("token", ev.Token),
			zap.String("amount", ev.Amount.String()),
			zap.Bool("released", ev.Released),
		)
	}
	s.metrics.Carry("withheld", withheld)
	s.metrics.Carry("released", released)
	s.metrics.PositionDone("ok", len(series.Dates))
	return res
}
