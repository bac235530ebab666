package reconstruct

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"feeScope/internal/fees"
	"feeScope/internal/model"
)

// VerifyResult compares reconstructed fees with the amounts collectable on chain.
type VerifyResult struct {
	Position model.Position
	Block    uint64
	// Collectable is what collect would pay out at Block.
	Collectable model.TokenFeeAmount
	// TokensOwed is the part of Collectable credited before the position's last update.
	TokensOwed model.TokenFeeAmount
	// Reference is Collectable less TokensOwed: the fees accrued since the last update.
	Reference model.TokenFeeAmount
	// DailySum totals the daily series since the last checkpoint, including pending carry.
	DailySum model.TokenFeeAmount
	// Snapshot is the single-shot uncollected amount from live state.
	Snapshot       model.TokenFeeAmount
	Tolerance      *big.Int
	DailyWithin    bool
	SnapshotWithin bool
}

// Passed reports whether both comparisons are within tolerance.
func (r VerifyResult) Passed() bool {
	return r.DailyWithin && r.SnapshotWithin
}

// Record builds the output record.
func (r VerifyResult) Record(now time.Time) model.VerificationRecord {
	return model.VerificationRecord{
		PositionID:     r.Position.ID,
		Owner:          r.Position.Owner,
		Block:          r.Block,
		Collectable0:   r.Collectable.Amount0.String(),
		Collectable1:   r.Collectable.Amount1.String(),
		TokensOwed0:    r.TokensOwed.Amount0.String(),
		TokensOwed1:    r.TokensOwed.Amount1.String(),
		Reference0:     r.Reference.Amount0.String(),
		Reference1:     r.Reference.Amount1.String(),
		DailySum0:      r.DailySum.Amount0.String(),
		DailySum1:      r.DailySum.Amount1.String(),
		Snapshot0:      r.Snapshot.Amount0.String(),
		Snapshot1:      r.Snapshot.Amount1.String(),
		Tolerance:      r.Tolerance.String(),
		DailyWithin:    r.DailyWithin,
		SnapshotWithin: r.SnapshotWithin,
		CheckedAt:      now.UTC().Format(time.RFC3339),
	}
}

// Verify checks a position's reconstruction against a static collect call at the block the
// dataset is synced to.
func (s *Service) Verify(ctx context.Context, collector Collector, positionID string, tolerance *big.Int, mode fees.Arithmetic) (VerifyResult, error) {
	if collector == nil {
		return VerifyResult{}, fmt.Errorf("collector is nil")
	}
	tokenID, ok := new(big.Int).SetString(positionID, 10)
	if !ok {
		return VerifyResult{}, fmt.Errorf("position id %q is not a token id", positionID)
	}
	if tolerance == nil {
		tolerance = new(big.Int)
	}

	block, err := s.source.LatestIndexedBlock(ctx)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("latest indexed block: %w", err)
	}

	daily, err := s.DailyPositionFees(ctx, positionID, 0)
	if err != nil {
		return VerifyResult{}, err
	}
	pos := daily.Position
	if !common.IsHexAddress(pos.Owner) {
		return VerifyResult{}, fmt.Errorf("position %s owner %q is not an address", pos.ID, pos.Owner)
	}

	state, err := s.source.PoolState(ctx, pos.Pool)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("fetch pool state: %w", err)
	}
	snapshot, err := fees.UncollectedFees(pos, state, mode)
	if err != nil {
		return VerifyResult{}, err
	}

	atBlock := new(big.Int).SetUint64(block)
	owed, err := collector.TokensOwed(ctx, tokenID, atBlock)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("tokens owed at %d: %w", block, err)
	}
	collectable, err := collector.Collectable(ctx, tokenID, common.HexToAddress(pos.Owner), atBlock)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("collectable at %d: %w", block, err)
	}
	reference := collectable.Sub(owed)

	last := len(daily.Checkpoints) - 1
	res := VerifyResult{
		Position:    pos,
		Block:       block,
		Collectable: collectable,
		TokensOwed:  owed,
		Reference:   reference,
		DailySum:    daily.Series.SumFromCheckpoint(last).Add(daily.Series.Pending),
		Snapshot:    snapshot,
		Tolerance:   tolerance,
	}
	res.DailyWithin = within(res.DailySum, reference, tolerance)
	res.SnapshotWithin = within(res.Snapshot, reference, tolerance)

	log := s.logger.Info
	if !res.Passed() {
		log = s.logger.Warn
	}
	log("position verified",
		zap.String("position", pos.ID),
		zap.Uint64("block", block),
		zap.Stringer("collectable", collectable),
		zap.Stringer("tokens_owed", owed),
		zap.Stringer("reference", reference),
		zap.Stringer("daily_sum", res.DailySum),
		zap.Stringer("snapshot", snapshot),
		zap.Bool("daily_within", res.DailyWithin),
		zap.Bool("snapshot_within", res.SnapshotWithin),
	)
	return res, nil
}

// within reports whether both token differences are at most tolerance.
func within(got, want model.TokenFeeAmount, tolerance *big.Int) bool {
	diff := got.Sub(want)
	return new(big.Int).Abs(diff.Amount0).Cmp(tolerance) <= 0 &&
		new(big.Int).Abs(diff.Amount1).Cmp(tolerance) <= 0
}
