package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"feeScope/internal/config"
	"feeScope/internal/fees"
	"feeScope/internal/report"
)

func runTotal(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadOwner(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg.Common, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	mode := fees.ArithmeticSigned
	if cfg.Modular {
		mode = fees.ArithmeticModular
	}
	logger.Info("total start", append(startFields(cfg.Common),
		zap.String("owner", cfg.Owner),
		zap.String("pool", cfg.Pool),
		zap.Stringer("arithmetic", mode),
	)...)
	start := time.Now()

	res, err := a.service.TotalOwnerPoolFees(ctx, cfg.Owner, cfg.Pool, mode)
	if err != nil {
		return err
	}
	logger.Info("owner total",
		zap.Int("positions", len(res.Positions)),
		zap.String("token0", res.Pool.Token0.Symbol),
		zap.String("amount0", report.FormatTokenAmount(res.Total.Amount0, res.Pool.Token0.Decimals)),
		zap.String("token1", res.Pool.Token1.Symbol),
		zap.String("amount1", report.FormatTokenAmount(res.Total.Amount1, res.Pool.Token1.Decimals)),
	)

	if a.jsonl != nil {
		if err := a.jsonl.WriteTotals(ctx, res.Records(time.Now())); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
	}
	finish(logger, "total", start)
	return nil
}
