package main

import (
	"context"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"feeScope/internal/config"
	"feeScope/internal/observability"
	"feeScope/internal/reconstruct"
	"feeScope/internal/storage"
	"feeScope/internal/storage/postgres"
	"feeScope/internal/subgraph"
)

func main() {
	root := &cobra.Command{
		Use:          "feescope",
		Short:        "Uniswap v3 position fee reconstruction",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	dailyCmd := &cobra.Command{
		Use:   "daily",
		Short: "Reconstruct a position's daily fees",
		RunE:  runDaily,
	}
	commonFlags(dailyCmd.Flags())
	windowFlags(dailyCmd.Flags())
	dailyCmd.Flags().String("position", "", "position (token) id")
	root.AddCommand(dailyCmd)

	ownerCmd := &cobra.Command{
		Use:   "owner",
		Short: "Reconstruct daily fees of every position an owner holds in a pool",
		RunE:  runOwner,
	}
	commonFlags(ownerCmd.Flags())
	windowFlags(ownerCmd.Flags())
	ownerPoolFlags(ownerCmd.Flags())
	root.AddCommand(ownerCmd)

	totalCmd := &cobra.Command{
		Use:   "total",
		Short: "Sum an owner's uncollected fees in a pool",
		RunE:  runTotal,
	}
	commonFlags(totalCmd.Flags())
	ownerPoolFlags(totalCmd.Flags())
	totalCmd.Flags().Bool("modular", false, "use mod 2^256 arithmetic as the pool contract does")
	root.AddCommand(totalCmd)

	estimateCmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the daily USD fees of a hypothetical position",
		RunE:  runEstimate,
	}
	commonFlags(estimateCmd.Flags())
	estimateCmd.Flags().String("pool", "", "pool address")
	estimateCmd.Flags().Int32("tick-lower", 0, "lower tick of the range")
	estimateCmd.Flags().Int32("tick-upper", 0, "upper tick of the range")
	estimateCmd.Flags().Int("days", config.DefaultDays, "look-back period in days")
	estimateCmd.Flags().String("liquidity-usd", "", "USD notional of the position")
	root.AddCommand(estimateCmd)

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a position's reconstruction against a static collect call",
		RunE:  runVerify,
	}
	commonFlags(verifyCmd.Flags())
	verifyCmd.Flags().String("rpc", "", "Ethereum RPC URL (archive node for past blocks)")
	verifyCmd.Flags().String("position", "", "position (token) id")
	verifyCmd.Flags().String("position-manager", "", "position manager address (default mainnet deployment)")
	verifyCmd.Flags().String("tolerance", config.DefaultTolerance, "allowed difference per token in base units")
	verifyCmd.Flags().Bool("modular", false, "use mod 2^256 arithmetic for the snapshot")
	root.AddCommand(verifyCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func commonFlags(fs *pflag.FlagSet) {
	fs.String("subgraph-url", subgraph.DefaultURL, "fee dataset GraphQL endpoint")
	fs.String("blocks-subgraph-url", subgraph.DefaultBlocksURL, "blocks dataset GraphQL endpoint")
	fs.Duration("http-timeout", config.DefaultHTTPTimeout, "per request timeout")
	fs.Int("max-retries", config.DefaultMaxRetries, "maximum retry attempts")
	fs.Duration("retry-backoff", config.DefaultRetryBackoff, "initial retry backoff")
	fs.Int("workers", config.DefaultWorkers, "concurrent position reconstructions")
	fs.String("out", "", "output JSONL path")
	fs.String("pg-dsn", "", "Postgres DSN")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
}

func windowFlags(fs *pflag.FlagSet) {
	fs.Int("days", config.DefaultDays, "reconstruct the last N days")
	fs.String("from", "", "reconstruct days after this timestamp (unix seconds or RFC3339), overrides days")
}

func ownerPoolFlags(fs *pflag.FlagSet) {
	fs.String("owner", "", "owner address")
	fs.String("pool", "", "pool address")
}

// app bundles what every command needs once its config is loaded.
type app struct {
	logger  *zap.Logger
	metrics *observability.Metrics
	source  *subgraph.Client
	service *reconstruct.Service
	jsonl   *storage.JsonlStorage
	sink    storage.Sink
	store   *postgres.Store
}

func newApp(ctx context.Context, cfg config.Common, logger *zap.Logger) (*app, error) {
	metrics := observability.NewMetrics()
	metrics.Serve(ctx, cfg.MetricsAddr, logger)

	source := subgraph.NewClient(subgraph.Config{
		URL:          cfg.SubgraphURL,
		BlocksURL:    cfg.BlocksSubgraphURL,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger, metrics)

	a := &app{
		logger:  logger,
		metrics: metrics,
		source:  source,
		service: reconstruct.NewService(reconstruct.Config{Workers: cfg.Workers}, source, logger, metrics),
	}

	var sinks storage.Multi
	if cfg.Out != "" {
		a.jsonl = storage.NewJsonlStorage(cfg.Out, metrics)
		sinks = append(sinks, a.jsonl)
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN, metrics)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		a.store = store
		sinks = append(sinks, store)
	}
	if len(sinks) > 0 {
		a.sink = sinks
	}
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

func startFields(cfg config.Common) []zap.Field {
	return []zap.Field{
		zap.String("subgraph_url", cfg.SubgraphURL),
		zap.Int("workers", cfg.Workers),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("metrics_addr", cfg.MetricsAddr),
	}
}

func finish(logger *zap.Logger, command string, start time.Time) {
	logger.Info(command+" done", zap.Duration("elapsed", time.Since(start)))
}

func windowFloor(svc *reconstruct.Service, w config.Window) uint64 {
	if w.From > 0 {
		return w.From
	}
	return svc.FloorForDays(w.Days)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
