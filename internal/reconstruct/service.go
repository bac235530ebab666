// Package reconstruct fetches position and pool history and runs the fee engine over it.
package reconstruct

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"feeScope/internal/model"
	"feeScope/internal/observability"
)

const secondsPerDay = 86400

// Source supplies the indexed history the engine consumes.
type Source interface {
	Position(ctx context.Context, id string) (model.Position, error)
	PositionCheckpoints(ctx context.Context, id string) ([]model.PositionCheckpoint, error)
	OwnerPositions(ctx context.Context, owner, pool string) ([]model.Position, map[string][]model.PositionCheckpoint, error)
	PoolDays(ctx context.Context, pool string, after uint64) ([]model.PoolDayRecord, error)
	TickHistory(ctx context.Context, pool string, tickIdx int32, floor uint64) ([]model.TickDayRecord, error)
	PoolState(ctx context.Context, pool string) (model.PoolState, error)
	RangeHistory(ctx context.Context, pool string, tickLower, tickUpper int32, block uint64) (model.RangeHistory, error)
	BlockAt(ctx context.Context, ts uint64) (uint64, error)
	LatestIndexedBlock(ctx context.Context) (uint64, error)
}

// Collector reads the fees a position's owner could collect on chain. Collectable includes
// TokensOwed, the amounts already credited to the position before its last update.
type Collector interface {
	Collectable(ctx context.Context, tokenID *big.Int, owner common.Address, block *big.Int) (model.TokenFeeAmount, error)
	TokensOwed(ctx context.Context, tokenID *big.Int, block *big.Int) (model.TokenFeeAmount, error)
}

// Config holds service settings.
type Config struct {
	// Workers bounds concurrent position reconstructions.
	Workers int
}

// Service runs reconstructions against a Source.
type Service struct {
	cfg     Config
	source  Source
	ticks   *tickCache
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewService builds a Service with its dependencies.
func NewService(cfg Config, source Source, logger *zap.Logger, metrics *observability.Metrics) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:     cfg,
		source:  source,
		ticks:   newTickCache(source, metrics),
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// FloorForDays returns the timestamp days before now.
func (s *Service) FloorForDays(days int) uint64 {
	floor := s.now().Unix() - int64(days)*secondsPerDay
	if floor < 0 {
		return 0
	}
	return uint64(floor)
}
