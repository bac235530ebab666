package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"feeScope/internal/chain"
	"feeScope/internal/config"
	"feeScope/internal/dex"
	"feeScope/internal/fees"
	"feeScope/internal/model"
	"feeScope/internal/reconstruct"
	"feeScope/internal/report"
)

func runVerify(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadVerify(cfgFile, cmd.Flags())
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

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, a.metrics)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	managerAddr := cfg.PositionManager
	if managerAddr == (common.Address{}) {
		managerAddr = dex.PositionManagerAddress
	}
	manager := dex.NewPositionManager(chainClient, managerAddr)

	mode := fees.ArithmeticSigned
	if cfg.Modular {
		mode = fees.ArithmeticModular
	}
	logger.Info("verify start", append(startFields(cfg.Common),
		zap.String("position", cfg.Position),
		zap.String("chain_id", chainID.String()),
		zap.String("position_manager", managerAddr.Hex()),
		zap.Stringer("tolerance", cfg.Tolerance),
		zap.Stringer("arithmetic", mode),
	)...)
	start := time.Now()

	res, err := a.service.Verify(ctx, manager, cfg.Position, cfg.Tolerance, mode)
	if err != nil {
		return err
	}
	checkChain(ctx, logger, chainClient, manager, res)
	logReference(ctx, logger, chainClient, manager, res)

	if a.sink != nil {
		if err := a.sink.WriteVerifications(ctx, []model.VerificationRecord{res.Record(time.Now())}); err != nil {
			return fmt.Errorf("write verification: %w", err)
		}
	}
	finish(logger, "verify", start)

	if !res.Passed() {
		return fmt.Errorf("position %s: reconstruction differs from collect by more than %s", cfg.Position, cfg.Tolerance)
	}
	return nil
}

// checkChain logs how far the dataset lags the chain head and warns when the dataset's owner
// is not the on-chain holder at the verified block.
func checkChain(ctx context.Context, logger *zap.Logger, chainClient *chain.Client, manager *dex.PositionManager, res reconstruct.VerifyResult) {
	head, err := chainClient.LatestBlockNumber(ctx)
	if err != nil {
		logger.Warn("read chain head", zap.Error(err))
	} else if ts, err := chainClient.BlockTimestamp(ctx, res.Block); err != nil {
		logger.Warn("read block timestamp", zap.Uint64("block", res.Block), zap.Error(err))
	} else {
		logger.Info("dataset sync",
			zap.Uint64("indexed_block", res.Block),
			zap.Uint64("head", head),
			zap.Uint64("lag_blocks", head-min(head, res.Block)),
			zap.Time("indexed_at", time.Unix(int64(ts), 0).UTC()),
		)
	}

	tokenID, ok := new(big.Int).SetString(res.Position.ID, 10)
	if !ok {
		return
	}
	holder, err := manager.OwnerOf(ctx, tokenID, new(big.Int).SetUint64(res.Block))
	if err != nil {
		logger.Warn("read position holder", zap.Error(err))
		return
	}
	if !strings.EqualFold(holder.Hex(), res.Position.Owner) {
		logger.Warn("dataset owner differs from holder",
			zap.String("owner", res.Position.Owner),
			zap.String("holder", holder.Hex()),
		)
	}
}

// logReference logs the reference amounts in token units, reading token metadata from chain.
func logReference(ctx context.Context, logger *zap.Logger, caller dex.Caller, manager *dex.PositionManager, res reconstruct.VerifyResult) {
	tokenID, ok := new(big.Int).SetString(res.Position.ID, 10)
	if !ok {
		return
	}
	info, err := manager.Position(ctx, tokenID, new(big.Int).SetUint64(res.Block))
	if err != nil {
		logger.Warn("read position from manager", zap.Error(err))
		return
	}
	cache := dex.NewTokenMetaCache()
	token0, err := cache.Resolve(ctx, caller, info.Token0, logger)
	if err != nil {
		logger.Warn("read token0 metadata", zap.Error(err))
		return
	}
	token1, err := cache.Resolve(ctx, caller, info.Token1, logger)
	if err != nil {
		logger.Warn("read token1 metadata", zap.Error(err))
		return
	}
	logger.Info("fees accrued since last update",
		zap.Uint64("block", res.Block),
		zap.String("token0", token0.Symbol),
		zap.String("amount0", report.FormatTokenAmount(res.Reference.Amount0, token0.Decimals)),
		zap.String("token1", token1.Symbol),
		zap.String("amount1", report.FormatTokenAmount(res.Reference.Amount1, token1.Decimals)),
		zap.Bool("passed", res.Passed()),
	)
}
