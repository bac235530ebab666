package reconstruct

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"feeScope/internal/fees"
	"feeScope/internal/model"
)

// TotalResult is the owner's current uncollected fees in one pool.
type TotalResult struct {
	Owner       string
	Pool        model.PoolState
	Mode        fees.Arithmetic
	Positions   []model.Position
	PerPosition map[string]model.TokenFeeAmount
	Total       model.TokenFeeAmount
}

// TotalOwnerPoolFees sums the fees every position of owner earned in pool since its last
// recorded inside growth, evaluated against the pool's live state.
func (s *Service) TotalOwnerPoolFees(ctx context.Context, owner, pool string, mode fees.Arithmetic) (TotalResult, error) {
	positions, _, err := s.source.OwnerPositions(ctx, owner, pool)
	if err != nil {
		return TotalResult{}, fmt.Errorf("fetch owner positions: %w", err)
	}
	state, err := s.source.PoolState(ctx, pool)
	if err != nil {
		return TotalResult{}, fmt.Errorf("fetch pool state: %w", err)
	}

	total, per, err := fees.TotalUncollectedFees(positions, state, mode)
	if err != nil {
		return TotalResult{}, err
	}
	result := TotalResult{
		Owner:       owner,
		Pool:        state,
		Mode:        mode,
		Positions:   positions,
		PerPosition: per,
		Total:       total,
	}

	s.logger.Info("owner uncollected fees",
		zap.String("owner", owner),
		zap.String("pool", pool),
		zap.Int("positions", len(positions)),
		zap.Stringer("mode", mode),
		zap.Stringer("total", result.Total),
	)
	return result, nil
}

// Records lists one record per position followed by the owner total.
func (r TotalResult) Records(now time.Time) []model.OwnerTotalRecord {
	at := now.UTC().Format(time.RFC3339)
	out := make([]model.OwnerTotalRecord, 0, len(r.Positions)+1)
	add := func(positionID string, amount model.TokenFeeAmount) {
		out = append(out, model.OwnerTotalRecord{
			Owner:      r.Owner,
			Pool:       r.Pool.ID,
			PositionID: positionID,
			Arithmetic: r.Mode.String(),
			Amount0:    amount.Amount0.String(),
			Amount1:    amount.Amount1.String(),
			ComputedAt: at,
		})
	}
	for _, pos := range r.Positions {
		add(pos.ID, r.PerPosition[pos.ID])
	}
	add("", r.Total)
	return out
}
