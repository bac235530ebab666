package reconstruct

import (
	"context"
	"fmt"

	"github.com/puzpuzpuz/xsync/v4"

	"feeScope/internal/model"
	"feeScope/internal/observability"
	"feeScope/internal/subgraph"
)

type tickKey struct {
	tick  string
	floor uint64
}

// tickCache shares boundary tick histories between positions of one pool.
type tickCache struct {
	source  Source
	metrics *observability.Metrics
	data    *xsync.Map[tickKey, []model.TickDayRecord]
}

func newTickCache(source Source, metrics *observability.Metrics) *tickCache {
	return &tickCache{
		source:  source,
		metrics: metrics,
		data:    xsync.NewMap[tickKey, []model.TickDayRecord](),
	}
}

func (c *tickCache) history(ctx context.Context, pool string, tickIdx int32, floor uint64) ([]model.TickDayRecord, error) {
	key := tickKey{tick: subgraph.TickID(pool, tickIdx), floor: floor}
	if records, ok := c.data.Load(key); ok {
		c.metrics.TickCache(true)
		return records, nil
	}
	c.metrics.TickCache(false)
	records, err := c.source.TickHistory(ctx, pool, tickIdx, floor)
	if err != nil {
		return nil, fmt.Errorf("tick %s history: %w", key.tick, err)
	}
	c.data.Store(key, records)
	return records, nil
}

// series returns both boundary histories keyed by tick index.
func (c *tickCache) series(ctx context.Context, pos model.Position, floor uint64) (model.TickSeries, error) {
	out := make(model.TickSeries, 2)
	for _, idx := range []int32{pos.TickLower.Index, pos.TickUpper.Index} {
		records, err := c.history(ctx, pos.Pool, idx, floor)
		if err != nil {
			return nil, err
		}
		out[idx] = records
	}
	return out, nil
}
