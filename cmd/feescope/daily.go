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
	"feeScope/internal/report"
)

func runDaily(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDaily(cfgFile, cmd.Flags())
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

	floor := windowFloor(a.service, cfg.Window)
	logger.Info("daily start", append(startFields(cfg.Common),
		zap.String("position", cfg.Position),
		zap.Uint64("floor", floor),
	)...)
	start := time.Now()

	res, err := a.service.DailyPositionFees(ctx, cfg.Position, floor)
	if err != nil {
		return err
	}
	token0, token1 := a.poolTokens(ctx, res.Position.Pool)
	records := report.DailyRecords(res.Position, res.Series, token0, token1)
	logDays(logger, records)

	if a.sink != nil {
		if err := a.sink.WriteDailyFees(ctx, records); err != nil {
			return fmt.Errorf("write daily fees: %w", err)
		}
	}
	finish(logger, "daily", start)
	return nil
}

func runOwner(cmd *cobra.Command, _ []string) error {
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

	floor := windowFloor(a.service, cfg.Window)
	logger.Info("owner start", append(startFields(cfg.Common),
		zap.String("owner", cfg.Owner),
		zap.String("pool", cfg.Pool),
		zap.Uint64("floor", floor),
	)...)
	start := time.Now()

	res, err := a.service.DailyOwnerPoolFees(ctx, cfg.Owner, cfg.Pool, floor)
	if err != nil {
		return err
	}
	token0, token1 := a.poolTokens(ctx, cfg.Pool)

	var records []model.DailyFeeRecord
	for _, p := range res.Positions {
		if p.Err != nil {
			continue
		}
		records = append(records, report.DailyRecords(p.Position, p.Series, token0, token1)...)
	}
	logDays(logger, records)

	if a.sink != nil {
		if err := a.sink.WriteDailyFees(ctx, records); err != nil {
			return fmt.Errorf("write daily fees: %w", err)
		}
	}
	finish(logger, "owner", start)

	if failed := res.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d positions failed", failed, len(res.Positions))
	}
	return nil
}

// poolTokens returns the pool's token metadata, or empty metadata when the pool cannot be read.
func (a *app) poolTokens(ctx context.Context, pool string) (model.TokenMeta, model.TokenMeta) {
	state, err := a.source.PoolState(ctx, pool)
	if err != nil {
		a.logger.Warn("pool tokens unavailable, amounts stay in base units", zap.String("pool", pool), zap.Error(err))
		return model.TokenMeta{}, model.TokenMeta{}
	}
	return state.Token0, state.Token1
}

func logDays(logger *zap.Logger, records []model.DailyFeeRecord) {
	for _, rec := range records {
		logger.Info("day fees",
			zap.String("position", rec.PositionID),
			zap.String("day", rec.Day),
			zap.String("amount0", rec.Amount0),
			zap.String("amount1", rec.Amount1),
			zap.String("amount0_decimal", rec.Amount0Decimal),
			zap.String("amount1_decimal", rec.Amount1Decimal),
		)
	}
}
