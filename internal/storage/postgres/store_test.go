package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"feeScope/internal/model"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("feescope"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := NewStore(ctx, dsn, nil)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.Migrate(ctx))
	// Migrate is idempotent.
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestStoreDailyFeesUpsert(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	huge := "115792089237316195423570985008687907853269984665640564039457584007913129639935"
	require.NoError(t, store.WriteDailyFees(ctx, []model.DailyFeeRecord{
		{PositionID: "1", Pool: "0xpool", Date: 172800, Day: "1970-01-03", Amount0: "5", Amount1: "-2"},
		{PositionID: "1", Pool: "0xpool", Date: 86400, Day: "1970-01-02", Amount0: huge, Amount1: "0", Carry1: "9"},
	}))

	got, err := store.DailyFees(ctx, "1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(86400), got[0].Date)
	assert.Equal(t, "1970-01-02", got[0].Day)
	assert.Equal(t, huge, got[0].Amount0)
	assert.Equal(t, "9", got[0].Carry1)
	assert.Equal(t, "", got[0].Carry0)
	assert.Equal(t, "-2", got[1].Amount1)

	require.NoError(t, store.WriteDailyFees(ctx, []model.DailyFeeRecord{
		{PositionID: "1", Pool: "0xpool", Date: 172800, Day: "1970-01-03", CheckpointIndex: 1, Amount0: "6", Amount1: "0"},
	}))
	got, err = store.DailyFees(ctx, "1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "6", got[1].Amount0)
	assert.Equal(t, 1, got[1].CheckpointIndex)
}

func TestStoreEstimatesAndVerifications(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	now := time.Unix(1700000000, 0).UTC().Format(time.RFC3339)
	require.NoError(t, store.WriteEstimates(ctx, []model.FeeEstimateRecord{
		{Pool: "0xpool", TickLower: -600, TickUpper: 600, Days: "7", FromBlock: 10, LiquidityUSD: "1000",
			Liquidity: "123", Amount0PerDay: "1.5", Amount1PerDay: "0", USDPerDay: "3.2", APR: "1.168",
			Available: true, ComputedAt: now},
		{Pool: "0xpool", TickLower: -60, TickUpper: 60, Days: "7", FromBlock: 10, LiquidityUSD: "1000",
			UnavailableNote: "estimate unavailable", ComputedAt: now},
	}))

	require.NoError(t, store.WriteVerifications(ctx, []model.VerificationRecord{
		{PositionID: "34054", Block: 99, Owner: "0xabc", Collectable0: "501", Collectable1: "2",
			TokensOwed0: "500", TokensOwed1: "0", Reference0: "1", Reference1: "2",
			DailySum0: "1", DailySum1: "2", Snapshot0: "1", Snapshot1: "2", Tolerance: "1000",
			DailyWithin: true, SnapshotWithin: true, CheckedAt: now},
	}))

	var n int
	require.NoError(t, store.pool.QueryRow(ctx, `SELECT count(*) FROM fee_estimates WHERE available`).Scan(&n))
	assert.Equal(t, 1, n)
	require.NoError(t, store.pool.QueryRow(ctx, `SELECT count(*) FROM verification_runs WHERE daily_within`).Scan(&n))
	assert.Equal(t, 1, n)
	var owed0 string
	require.NoError(t, store.pool.QueryRow(ctx, `SELECT tokens_owed0::text FROM verification_runs WHERE position_id = '34054'`).Scan(&owed0))
	assert.Equal(t, "500", owed0)
}
