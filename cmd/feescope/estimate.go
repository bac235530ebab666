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
	"feeScope/internal/model"
	"feeScope/internal/reconstruct"
	"feeScope/internal/report"
)

func runEstimate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadEstimate(cfgFile, cmd.Flags())
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

	logger.Info("estimate start", append(startFields(cfg.Common),
		zap.String("pool", cfg.Pool),
		zap.Int32("tick_lower", cfg.TickLower),
		zap.Int32("tick_upper", cfg.TickUpper),
		zap.Int("days", cfg.Days),
		zap.Stringer("liquidity_usd", cfg.LiquidityUSD),
	)...)
	start := time.Now()

	res, err := a.service.Estimate(ctx, reconstruct.EstimateRequest{
		Pool:         cfg.Pool,
		TickLower:    cfg.TickLower,
		TickUpper:    cfg.TickUpper,
		Days:         cfg.Days,
		LiquidityUSD: cfg.LiquidityUSD,
	})
	if err != nil {
		return err
	}
	rec := report.EstimateRecord(res.ReportInput(), time.Now())
	if rec.Available {
		logger.Info("fee estimate",
			zap.String("amount0_per_day", rec.Amount0PerDay),
			zap.String("amount1_per_day", rec.Amount1PerDay),
			zap.String("usd_per_day", rec.USDPerDay),
			zap.String("apr", rec.APR),
		)
	} else {
		logger.Warn("fee estimate unavailable", zap.String("reason", rec.UnavailableNote))
	}

	if a.sink != nil {
		if err := a.sink.WriteEstimates(ctx, []model.FeeEstimateRecord{rec}); err != nil {
			return fmt.Errorf("write estimate: %w", err)
		}
	}
	finish(logger, "estimate", start)
	return nil
}
