package subgraph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"feeScope/internal/model"
)

// TickID is the dataset identifier of a pool's tick.
func TickID(pool string, tickIdx int32) string {
	return fmt.Sprintf("%s#%d", strings.ToLower(pool), tickIdx)
}

// Position returns a position with its boundary ticks and current accounting state.
func (c *Client) Position(ctx context.Context, id string) (model.Position, error) {
	data, err := c.query(ctx, "position", positionQuery, map[string]any{"id": id})
	if err != nil {
		return model.Position{}, err
	}
	r := data.Get("position")
	if !r.Exists() || r.Type == gjson.Null {
		return model.Position{}, fmt.Errorf("position %s: %w", id, ErrNotFound)
	}
	return parsePosition(r)
}

// PositionCheckpoints returns every snapshot of a position in timestamp order.
func (c *Client) PositionCheckpoints(ctx context.Context, id string) ([]model.PositionCheckpoint, error) {
	var out []model.PositionCheckpoint
	err := c.pageBySkip(ctx, "positionSnapshots", positionSnapshotsQuery, map[string]any{"id": id}, func(r gjson.Result) error {
		cp, err := parseCheckpoint(r)
		if err != nil {
			return fmt.Errorf("position %s snapshot: %w", id, err)
		}
		out = append(out, cp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortCheckpoints(out)
	return out, nil
}

// OwnerPositions returns the owner's positions in a pool, each with its snapshots.
func (c *Client) OwnerPositions(ctx context.Context, owner, pool string) ([]model.Position, map[string][]model.PositionCheckpoint, error) {
	vars := map[string]any{"owner": strings.ToLower(owner), "pool": strings.ToLower(pool)}

	var positions []model.Position
	err := c.pageBySkip(ctx, "ownerPositions", ownerPositionsQuery, vars, func(r gjson.Result) error {
		pos, err := parsePosition(r)
		if err != nil {
			return err
		}
		positions = append(positions, pos)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	checkpoints := make(map[string][]model.PositionCheckpoint, len(positions))
	err = c.pageBySkip(ctx, "ownerSnapshots", ownerSnapshotsQuery, vars, func(r gjson.Result) error {
		cp, err := parseCheckpoint(r)
		if err != nil {
			return fmt.Errorf("position %s snapshot: %w", r.Get("position.id").String(), err)
		}
		checkpoints[cp.PositionID] = append(checkpoints[cp.PositionID], cp)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	for _, cps := range checkpoints {
		sortCheckpoints(cps)
	}
	return positions, checkpoints, nil
}

// PoolDays returns the pool's day records dated strictly after the given timestamp.
func (c *Client) PoolDays(ctx context.Context, pool string, after uint64) ([]model.PoolDayRecord, error) {
	var out []model.PoolDayRecord
	cursor := after
	for {
		data, err := c.query(ctx, "poolDays", poolDaysQuery, map[string]any{
			"pool":  strings.ToLower(pool),
			"after": cursor,
			"first": c.cfg.PageSize,
		})
		if err != nil {
			return nil, err
		}
		items := data.Get("poolDayDatas").Array()
		for _, item := range items {
			day, err := parsePoolDay(item)
			if err != nil {
				return nil, fmt.Errorf("pool %s day: %w", pool, err)
			}
			out = append(out, day)
			cursor = day.Date
		}
		if len(items) < c.cfg.PageSize {
			return out, nil
		}
	}
}

// TickHistory returns a tick's day records after floor, preceded by the latest record at
// or before floor when one exists.
func (c *Client) TickHistory(ctx context.Context, pool string, tickIdx int32, floor uint64) ([]model.TickDayRecord, error) {
	id := TickID(pool, tickIdx)

	data, err := c.query(ctx, "tickBefore", tickBeforeQuery, map[string]any{"tick": id, "floor": floor})
	if err != nil {
		return nil, err
	}
	var out []model.TickDayRecord
	for _, item := range data.Get("tickDayDatas").Array() {
		rec, err := parseTickDay(item)
		if err != nil {
			return nil, fmt.Errorf("tick %s day: %w", id, err)
		}
		out = append(out, rec)
	}

	cursor := floor
	for {
		data, err := c.query(ctx, "tickDays", tickDaysQuery, map[string]any{
			"tick":  id,
			"after": cursor,
			"first": c.cfg.PageSize,
		})
		if err != nil {
			return nil, err
		}
		items := data.Get("tickDayDatas").Array()
		for _, item := range items {
			rec, err := parseTickDay(item)
			if err != nil {
				return nil, fmt.Errorf("tick %s day: %w", id, err)
			}
			out = append(out, rec)
			cursor = rec.Date
		}
		if len(items) < c.cfg.PageSize {
			return out, nil
		}
	}
}

// PoolState returns the pool's live state with token metadata.
func (c *Client) PoolState(ctx context.Context, pool string) (model.PoolState, error) {
	data, err := c.query(ctx, "poolState", poolStateQuery, map[string]any{"pool": strings.ToLower(pool)})
	if err != nil {
		return model.PoolState{}, err
	}
	r := data.Get("pool")
	if !r.Exists() || r.Type == gjson.Null {
		return model.PoolState{}, fmt.Errorf("pool %s: %w", pool, ErrNotFound)
	}
	return parsePool(r)
}

// RangeHistory returns the pool and the range's nearest initialized boundary ticks at the
// latest indexed block and at an earlier block.
func (c *Client) RangeHistory(ctx context.Context, pool string, tickLower, tickUpper int32, block uint64) (model.RangeHistory, error) {
	data, err := c.query(ctx, "rangeHistory", rangeHistoryQuery, map[string]any{
		"pool":      strings.ToLower(pool),
		"tickLower": tickLower,
		"tickUpper": tickUpper,
		"block":     block,
	})
	if err != nil {
		return model.RangeHistory{}, err
	}

	var (
		hist model.RangeHistory
		errs []error
	)
	hist.EthPriceUSD, err = decimal.NewFromString(data.Get("bundle.ethPriceUSD").String())
	if err != nil {
		return model.RangeHistory{}, fmt.Errorf("%w: ethPriceUSD %q", model.ErrInvalidRecord, data.Get("bundle.ethPriceUSD").String())
	}

	hist.Now.Block = data.Get("_meta.block.number").Uint()
	hist.Past.Block = block
	for _, part := range []struct {
		state  *model.RangeState
		suffix string
	}{
		{&hist.Now, ""},
		{&hist.Past, "Past"},
	} {
		p := data.Get("pool" + part.suffix)
		if !p.Exists() || p.Type == gjson.Null {
			return model.RangeHistory{}, fmt.Errorf("pool %s at %q: %w", pool, "pool"+part.suffix, ErrNotFound)
		}
		if part.state.Pool, err = parsePool(p); err != nil {
			errs = append(errs, err)
			continue
		}
		if part.state.Lower, err = firstTick(data.Get("tickLower"+part.suffix), "lower"); err != nil {
			errs = append(errs, err)
		}
		if part.state.Upper, err = firstTick(data.Get("tickUpper"+part.suffix), "upper"); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return model.RangeHistory{}, fmt.Errorf("range %d..%d: %w", tickLower, tickUpper, errs[0])
	}
	return hist, nil
}

// LatestIndexedBlock returns the block the fee dataset is synced to.
func (c *Client) LatestIndexedBlock(ctx context.Context) (uint64, error) {
	data, err := c.query(ctx, "latestBlock", latestBlockQuery, nil)
	if err != nil {
		return 0, err
	}
	n := data.Get("_meta.block.number")
	if !n.Exists() {
		return 0, fmt.Errorf("latest block: %w", ErrNotFound)
	}
	return n.Uint(), nil
}

// BlockAt returns the first block with a timestamp at or after ts.
func (c *Client) BlockAt(ctx context.Context, ts uint64) (uint64, error) {
	data, err := c.post(ctx, c.cfg.BlocksURL, "blockAt", blockAtQuery, map[string]any{"timestamp": ts})
	if err != nil {
		return 0, err
	}
	items := data.Get("blocks").Array()
	if len(items) == 0 {
		return 0, fmt.Errorf("block at %d: %w", ts, ErrNotFound)
	}
	return items[0].Get("number").Uint(), nil
}

// pageBySkip walks a skip paginated collection. The collection is the single top level
// field of the response data.
func (c *Client) pageBySkip(ctx context.Context, operation, document string, vars map[string]any, visit func(gjson.Result) error) error {
	for skip := 0; ; skip += c.cfg.PageSize {
		pageVars := make(map[string]any, len(vars)+2)
		for k, v := range vars {
			pageVars[k] = v
		}
		pageVars["first"] = c.cfg.PageSize
		pageVars["skip"] = skip

		data, err := c.query(ctx, operation, document, pageVars)
		if err != nil {
			return err
		}
		var items []gjson.Result
		data.ForEach(func(_, value gjson.Result) bool {
			items = value.Array()
			return false
		})
		for _, item := range items {
			if err := visit(item); err != nil {
				return err
			}
		}
		if len(items) < c.cfg.PageSize {
			return nil
		}
	}
}

// sortCheckpoints orders snapshots by timestamp, keeping the dataset order for ties.
func sortCheckpoints(cps []model.PositionCheckpoint) {
	sort.SliceStable(cps, func(i, j int) bool { return cps[i].Timestamp < cps[j].Timestamp })
}
