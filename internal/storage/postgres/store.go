package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feeScope/internal/model"
	"feeScope/internal/observability"
	"feeScope/internal/storage"
)

var _ storage.Sink = (*Store)(nil)

//go:embed schema.sql
var schemaSQL string

// Store provides Postgres persistence for reconstruction output.
type Store struct {
	pool    *pgxpool.Pool
	metrics *observability.Metrics
}

func NewStore(ctx context.Context, dsn string, metrics *observability.Metrics) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, metrics: metrics}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables when missing. The schema is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// WriteDailyFees inserts or updates daily fee rows keyed by position and date.
func (s *Store) WriteDailyFees(ctx context.Context, records []model.DailyFeeRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO daily_position_fees (
				position_id, date, pool, owner, day, checkpoint_index,
				amount0, amount1, carry0, carry1, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5::date, $6, $7::numeric, $8::numeric, $9::numeric, $10::numeric, now(), now())
			ON CONFLICT (position_id, date)
			DO UPDATE SET
				pool = EXCLUDED.pool,
				owner = EXCLUDED.owner,
				checkpoint_index = EXCLUDED.checkpoint_index,
				amount0 = EXCLUDED.amount0,
				amount1 = EXCLUDED.amount1,
				carry0 = EXCLUDED.carry0,
				carry1 = EXCLUDED.carry1,
				updated_at = now()
		`,
			r.PositionID,
			int64(r.Date),
			r.Pool,
			r.Owner,
			r.Day,
			r.CheckpointIndex,
			r.Amount0,
			r.Amount1,
			nullable(r.Carry0),
			nullable(r.Carry1),
		)
	}
	if err := s.exec(ctx, batch); err != nil {
		return fmt.Errorf("upsert daily fees: %w", err)
	}
	s.metrics.Rows("postgres", "daily_position_fees", len(records))
	return nil
}

// WriteEstimates inserts or updates estimates keyed by range, period and start block.
func (s *Store) WriteEstimates(ctx context.Context, records []model.FeeEstimateRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO fee_estimates (
				pool, tick_lower, tick_upper, days, from_block, resolved_lower, resolved_upper,
				liquidity_usd, liquidity, amount0_per_day, amount1_per_day, usd_per_day, apr,
				available, unavailable_note, computed_at, updated_at
			) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8::numeric, $9::numeric, $10::numeric,
				$11::numeric, $12::numeric, $13::numeric, $14, $15, $16::timestamptz, now())
			ON CONFLICT (pool, tick_lower, tick_upper, days, from_block)
			DO UPDATE SET
				resolved_lower = EXCLUDED.resolved_lower,
				resolved_upper = EXCLUDED.resolved_upper,
				liquidity_usd = EXCLUDED.liquidity_usd,
				liquidity = EXCLUDED.liquidity,
				amount0_per_day = EXCLUDED.amount0_per_day,
				amount1_per_day = EXCLUDED.amount1_per_day,
				usd_per_day = EXCLUDED.usd_per_day,
				apr = EXCLUDED.apr,
				available = EXCLUDED.available,
				unavailable_note = EXCLUDED.unavailable_note,
				computed_at = EXCLUDED.computed_at,
				updated_at = now()
		`,
			r.Pool,
			r.TickLower,
			r.TickUpper,
			r.Days,
			int64(r.FromBlock),
			r.ResolvedLower,
			r.ResolvedUpper,
			r.LiquidityUSD,
			nullable(r.Liquidity),
			nullable(r.Amount0PerDay),
			nullable(r.Amount1PerDay),
			nullable(r.USDPerDay),
			nullable(r.APR),
			r.Available,
			r.UnavailableNote,
			r.ComputedAt,
		)
	}
	if err := s.exec(ctx, batch); err != nil {
		return fmt.Errorf("upsert estimates: %w", err)
	}
	s.metrics.Rows("postgres", "fee_estimates", len(records))
	return nil
}

// WriteVerifications inserts or updates verification runs keyed by position and block.
func (s *Store) WriteVerifications(ctx context.Context, records []model.VerificationRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO verification_runs (
				position_id, block, owner, collectable0, collectable1, tokens_owed0, tokens_owed1,
				reference0, reference1, daily_sum0, daily_sum1,
				snapshot0, snapshot1, tolerance, daily_within, snapshot_within, checked_at
			) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric,
				$8::numeric, $9::numeric, $10::numeric, $11::numeric,
				$12::numeric, $13::numeric, $14::numeric, $15, $16, $17::timestamptz)
			ON CONFLICT (position_id, block)
			DO UPDATE SET
				collectable0 = EXCLUDED.collectable0,
				collectable1 = EXCLUDED.collectable1,
				tokens_owed0 = EXCLUDED.tokens_owed0,
				tokens_owed1 = EXCLUDED.tokens_owed1,
				reference0 = EXCLUDED.reference0,
				reference1 = EXCLUDED.reference1,
				daily_sum0 = EXCLUDED.daily_sum0,
				daily_sum1 = EXCLUDED.daily_sum1,
				snapshot0 = EXCLUDED.snapshot0,
				snapshot1 = EXCLUDED.snapshot1,
				tolerance = EXCLUDED.tolerance,
				daily_within = EXCLUDED.daily_within,
				snapshot_within = EXCLUDED.snapshot_within,
				checked_at = EXCLUDED.checked_at
		`,
			r.PositionID,
			int64(r.Block),
			r.Owner,
			r.Collectable0,
			r.Collectable1,
			r.TokensOwed0,
			r.TokensOwed1,
			r.Reference0,
			r.Reference1,
			r.DailySum0,
			r.DailySum1,
			r.Snapshot0,
			r.Snapshot1,
			r.Tolerance,
			r.DailyWithin,
			r.SnapshotWithin,
			r.CheckedAt,
		)
	}
	if err := s.exec(ctx, batch); err != nil {
		return fmt.Errorf("upsert verifications: %w", err)
	}
	s.metrics.Rows("postgres", "verification_runs", len(records))
	return nil
}

// DailyFees returns the stored rows of a position in date order.
func (s *Store) DailyFees(ctx context.Context, positionID string) ([]model.DailyFeeRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT position_id, date, pool, owner, to_char(day, 'YYYY-MM-DD'), checkpoint_index,
			amount0::text, amount1::text, COALESCE(carry0::text, ''), COALESCE(carry1::text, '')
		FROM daily_position_fees
		WHERE position_id = $1
		ORDER BY date
	`, positionID)
	if err != nil {
		return nil, fmt.Errorf("query daily fees: %w", err)
	}
	defer rows.Close()

	var out []model.DailyFeeRecord
	for rows.Next() {
		var (
			r    model.DailyFeeRecord
			date int64
		)
		if err := rows.Scan(&r.PositionID, &date, &r.Pool, &r.Owner, &r.Day, &r.CheckpointIndex,
			&r.Amount0, &r.Amount1, &r.Carry0, &r.Carry1); err != nil {
			return nil, fmt.Errorf("scan daily fee: %w", err)
		}
		r.Date = uint64(date)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) exec(ctx context.Context, batch *pgx.Batch) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// nullable maps an empty column value to SQL NULL.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
