package reconstruct

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"feeScope/internal/fees"
	"feeScope/internal/model"
	"feeScope/internal/report"
	"feeScope/internal/subgraph"
	"feeScope/internal/v3math"
)

// EstimateRequest describes a hypothetical position.
type EstimateRequest struct {
	Pool         string
	TickLower    int32
	TickUpper    int32
	Days         int
	LiquidityUSD decimal.Decimal
}

// EstimateResult is the projected fee rate of an EstimateRequest. Err is set when the
// estimate is unavailable; the other fields hold whatever was computed before that.
type EstimateResult struct {
	Request   EstimateRequest
	FromBlock uint64
	History   model.RangeHistory
	Price0    decimal.Decimal
	Price1    decimal.Decimal
	Liquidity *big.Int
	Estimate  fees.Estimate
	USDPerDay decimal.Decimal
	Err       error
}

// ReportInput collects the fields of the output record.
func (r EstimateResult) ReportInput() report.EstimateInput {
	liquidity := ""
	if r.Liquidity != nil {
		liquidity = r.Liquidity.String()
	}
	return report.EstimateInput{
		Pool:          r.Request.Pool,
		TickLower:     r.Request.TickLower,
		TickUpper:     r.Request.TickUpper,
		ResolvedLower: r.History.Now.Lower.Index,
		ResolvedUpper: r.History.Now.Upper.Index,
		Days:          decimal.NewFromInt(int64(r.Request.Days)),
		FromBlock:     r.FromBlock,
		LiquidityUSD:  r.Request.LiquidityUSD,
		Liquidity:     liquidity,
		Estimate:      r.Estimate,
		USDPerDay:     r.USDPerDay,
		Err:           r.Err,
	}
}

// Estimate projects the daily fees a USD notional would have earned in the range over the
// last Days days. An invalid resolved range is reported in the result, not as an error.
func (s *Service) Estimate(ctx context.Context, req EstimateRequest) (EstimateResult, error) {
	if req.Days <= 0 {
		return EstimateResult{}, fmt.Errorf("%w: %d days", fees.ErrNonPositiveDays, req.Days)
	}
	if req.TickLower >= req.TickUpper {
		return EstimateResult{}, fmt.Errorf("requested range [%d, %d]: %w", req.TickLower, req.TickUpper, fees.ErrInvalidRange)
	}
	res := EstimateResult{Request: req}

	block, err := s.source.BlockAt(ctx, s.FloorForDays(req.Days))
	if err != nil {
		return EstimateResult{}, fmt.Errorf("resolve start block: %w", err)
	}
	res.FromBlock = block

	hist, err := s.source.RangeHistory(ctx, req.Pool, req.TickLower, req.TickUpper, block)
	if errors.Is(err, subgraph.ErrNotFound) {
		return s.unavailable(res, fmt.Errorf("%w: %w", fees.ErrEstimateUnavailable, err)), nil
	}
	if err != nil {
		return EstimateResult{}, fmt.Errorf("fetch range history: %w", err)
	}
	res.History = hist

	now := hist.Now.Pool
	res.Price0 = tokenPrice(hist.EthPriceUSD, now.Token0)
	res.Price1 = tokenPrice(hist.EthPriceUSD, now.Token1)

	liquidity, err := v3math.NotionalRange{
		USD:          req.LiquidityUSD,
		Price0:       res.Price0,
		Price1:       res.Price1,
		Decimals0:    now.Token0.Decimals,
		Decimals1:    now.Token1.Decimals,
		CurrentTick:  now.Tick,
		SqrtPriceX96: now.SqrtPriceX96,
		TickLower:    req.TickLower,
		TickUpper:    req.TickUpper,
	}.Liquidity()
	if err != nil {
		return EstimateResult{}, fmt.Errorf("liquidity for notional: %w", err)
	}
	res.Liquidity = liquidity

	est, err := fees.EstimateDailyRate(
		fees.SnapshotOf(now, hist.Now.Lower, hist.Now.Upper),
		fees.SnapshotOf(hist.Past.Pool, hist.Past.Lower, hist.Past.Upper),
		liquidity,
		decimal.NewFromInt(int64(req.Days)),
	)
	if errors.Is(err, fees.ErrEstimateUnavailable) {
		return s.unavailable(res, err), nil
	}
	if err != nil {
		return EstimateResult{}, err
	}
	res.Estimate = est
	res.USDPerDay = report.USDValue(est.Amount0PerDay, est.Amount1PerDay, now.Token0.Decimals, now.Token1.Decimals, res.Price0, res.Price1)

	s.logger.Info("fee estimate",
		zap.String("pool", req.Pool),
		zap.Int32("tick_lower", hist.Now.Lower.Index),
		zap.Int32("tick_upper", hist.Now.Upper.Index),
		zap.Uint64("from_block", block),
		zap.String("liquidity", liquidity.String()),
		zap.String("usd_per_day", res.USDPerDay.StringFixed(6)),
	)
	return res, nil
}

func (s *Service) unavailable(res EstimateResult, err error) EstimateResult {
	res.Err = err
	s.metrics.EstimateUnavailable()
	s.logger.Warn("fee estimate unavailable", zap.String("pool", res.Request.Pool), zap.Error(err))
	return res
}

// tokenPrice is the token's USD price as the ETH price times its ETH denominated price.
func tokenPrice(ethPriceUSD decimal.Decimal, token model.TokenMeta) decimal.Decimal {
	derived, err := decimal.NewFromString(token.DerivedETH)
	if err != nil {
		return decimal.Zero
	}
	return ethPriceUSD.Mul(derived)
}
