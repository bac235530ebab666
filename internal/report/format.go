// Package report turns reconstructed amounts into output records.
package report

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

const ratioScale = 18

var daysPerYear = decimal.NewFromInt(365)

// DayLabel renders a day timestamp as YYYY-MM-DD in UTC.
func DayLabel(ts uint64) string {
	return time.Unix(int64(ts), 0).UTC().Format(time.DateOnly)
}

// FormatTokenAmount renders a raw amount in whole token units with full precision.
func FormatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(abs, denom)
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

// TokenUnits converts a raw amount to whole token units.
func TokenUnits(value decimal.Decimal, decimals uint8) decimal.Decimal {
	return value.Shift(-int32(decimals))
}

// USDValue values raw per-token amounts at the given unit prices.
func USDValue(amount0, amount1 decimal.Decimal, decimals0, decimals1 uint8, price0, price1 decimal.Decimal) decimal.Decimal {
	return TokenUnits(amount0, decimals0).Mul(price0).Add(TokenUnits(amount1, decimals1).Mul(price1))
}

// ComputeAPR annualizes a USD per day rate against the notional. It returns false when the
// notional is not positive.
func ComputeAPR(usdPerDay, notional decimal.Decimal) (decimal.Decimal, bool) {
	if !notional.IsPositive() {
		return decimal.Zero, false
	}
	return usdPerDay.Mul(daysPerYear).DivRound(notional, ratioScale), true
}
