package report

import (
	"time"

	"github.com/shopspring/decimal"

	"feeScope/internal/fees"
	"feeScope/internal/model"
)

// DailyRecords flattens a reconstructed series into one record per day. Token metadata is
// used for the decimal columns when known.
func DailyRecords(pos model.Position, series fees.Series, token0, token1 model.TokenMeta) []model.DailyFeeRecord {
	carries := make(map[uint64][2]string)
	for _, ev := range series.Carries {
		if ev.Released {
			continue
		}
		c := carries[ev.Date]
		c[ev.Token] = ev.Amount.String()
		carries[ev.Date] = c
	}

	out := make([]model.DailyFeeRecord, 0, len(series.Dates))
	for _, date := range series.Dates {
		amount := series.Days[date]
		rec := model.DailyFeeRecord{
			PositionID:      pos.ID,
			Pool:            pos.Pool,
			Owner:           pos.Owner,
			Date:            date,
			Day:             DayLabel(date),
			CheckpointIndex: series.CheckpointIndex[date],
			Amount0:         amount.Amount0.String(),
			Amount1:         amount.Amount1.String(),
			Carry0:          carries[date][0],
			Carry1:          carries[date][1],
		}
		if token0.Symbol != "" || token0.Decimals > 0 {
			rec.Amount0Decimal = FormatTokenAmount(amount.Amount0, token0.Decimals)
		}
		if token1.Symbol != "" || token1.Decimals > 0 {
			rec.Amount1Decimal = FormatTokenAmount(amount.Amount1, token1.Decimals)
		}
		out = append(out, rec)
	}
	return out
}

// EstimateInput collects what an estimate record reports.
type EstimateInput struct {
	Pool          string
	TickLower     int32
	TickUpper     int32
	ResolvedLower int32
	ResolvedUpper int32
	Days          decimal.Decimal
	FromBlock     uint64
	LiquidityUSD  decimal.Decimal
	Liquidity     string
	Estimate      fees.Estimate
	USDPerDay     decimal.Decimal
	Err           error
}

// EstimateRecord builds the output record. A non-nil Err marks the estimate unavailable.
func EstimateRecord(in EstimateInput, now time.Time) model.FeeEstimateRecord {
	rec := model.FeeEstimateRecord{
		Pool:          in.Pool,
		TickLower:     in.TickLower,
		TickUpper:     in.TickUpper,
		ResolvedLower: in.ResolvedLower,
		ResolvedUpper: in.ResolvedUpper,
		Days:          in.Days.String(),
		FromBlock:     in.FromBlock,
		LiquidityUSD:  in.LiquidityUSD.String(),
		Liquidity:     in.Liquidity,
		ComputedAt:    now.UTC().Format(time.RFC3339),
	}
	if in.Err != nil {
		rec.UnavailableNote = in.Err.Error()
		return rec
	}
	rec.Available = true
	rec.Amount0PerDay = in.Estimate.Amount0PerDay.StringFixed(ratioScale)
	rec.Amount1PerDay = in.Estimate.Amount1PerDay.StringFixed(ratioScale)
	rec.USDPerDay = in.USDPerDay.StringFixed(6)
	if apr, ok := ComputeAPR(in.USDPerDay, in.LiquidityUSD); ok {
		rec.APR = apr.StringFixed(6)
	}
	return rec
}
