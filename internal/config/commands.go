package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// DailyConfig configures the daily position reconstruction.
type DailyConfig struct {
	Common
	Window
	Position string
}

// LoadDaily loads DailyConfig.
func LoadDaily(cfgFile string, flags *pflag.FlagSet) (DailyConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return DailyConfig{}, err
	}
	cfg := DailyConfig{Position: strings.TrimSpace(v.GetString("position"))}
	if cfg.Common, err = loadCommon(v); err != nil {
		return DailyConfig{}, err
	}
	if cfg.Window, err = loadWindow(v); err != nil {
		return DailyConfig{}, err
	}
	if cfg.Position == "" {
		return DailyConfig{}, fmt.Errorf("position is required")
	}
	return cfg, nil
}

// OwnerConfig configures the owner and pool commands.
type OwnerConfig struct {
	Common
	Window
	Owner   string
	Pool    string
	Modular bool
}

// LoadOwner loads OwnerConfig. The window is only used by the daily owner reconstruction.
func LoadOwner(cfgFile string, flags *pflag.FlagSet) (OwnerConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return OwnerConfig{}, err
	}
	cfg := OwnerConfig{Modular: v.GetBool("modular")}
	if cfg.Common, err = loadCommon(v); err != nil {
		return OwnerConfig{}, err
	}
	if cfg.Window, err = loadWindow(v); err != nil {
		return OwnerConfig{}, err
	}
	if cfg.Owner, err = address(v.GetString("owner"), "owner"); err != nil {
		return OwnerConfig{}, err
	}
	if cfg.Pool, err = address(v.GetString("pool"), "pool"); err != nil {
		return OwnerConfig{}, err
	}
	return cfg, nil
}

// EstimateConfig configures the USD fee estimate.
type EstimateConfig struct {
	Common
	Pool         string
	TickLower    int32
	TickUpper    int32
	Days         int
	LiquidityUSD decimal.Decimal
}

// LoadEstimate loads EstimateConfig.
func LoadEstimate(cfgFile string, flags *pflag.FlagSet) (EstimateConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return EstimateConfig{}, err
	}
	cfg := EstimateConfig{
		TickLower: v.GetInt32("tick-lower"),
		TickUpper: v.GetInt32("tick-upper"),
		Days:      v.GetInt("days"),
	}
	if cfg.Common, err = loadCommon(v); err != nil {
		return EstimateConfig{}, err
	}
	if cfg.Pool, err = address(v.GetString("pool"), "pool"); err != nil {
		return EstimateConfig{}, err
	}
	if cfg.TickLower >= cfg.TickUpper {
		return EstimateConfig{}, fmt.Errorf("tick-lower %d must be below tick-upper %d", cfg.TickLower, cfg.TickUpper)
	}
	if cfg.Days <= 0 {
		return EstimateConfig{}, fmt.Errorf("days must be positive")
	}
	cfg.LiquidityUSD, err = decimal.NewFromString(strings.TrimSpace(v.GetString("liquidity-usd")))
	if err != nil {
		return EstimateConfig{}, fmt.Errorf("parse liquidity-usd: %w", err)
	}
	if !cfg.LiquidityUSD.IsPositive() {
		return EstimateConfig{}, fmt.Errorf("liquidity-usd must be positive")
	}
	return cfg, nil
}

// VerifyConfig configures the ground-truth check.
type VerifyConfig struct {
	Common
	RPCURL          string
	Position        string
	PositionManager common.Address
	Tolerance       *big.Int
	Modular         bool
}

// LoadVerify loads VerifyConfig.
func LoadVerify(cfgFile string, flags *pflag.FlagSet) (VerifyConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return VerifyConfig{}, err
	}
	cfg := VerifyConfig{
		RPCURL:   v.GetString("rpc"),
		Position: strings.TrimSpace(v.GetString("position")),
		Modular:  v.GetBool("modular"),
	}
	if cfg.Common, err = loadCommon(v); err != nil {
		return VerifyConfig{}, err
	}
	if cfg.RPCURL == "" {
		return VerifyConfig{}, fmt.Errorf("rpc url is required")
	}
	if cfg.Position == "" {
		return VerifyConfig{}, fmt.Errorf("position is required")
	}
	if pm := v.GetString("position-manager"); pm != "" {
		addr, err := address(pm, "position-manager")
		if err != nil {
			return VerifyConfig{}, err
		}
		cfg.PositionManager = common.HexToAddress(addr)
	}
	tolerance, ok := new(big.Int).SetString(strings.TrimSpace(v.GetString("tolerance")), 10)
	if !ok || tolerance.Sign() < 0 {
		return VerifyConfig{}, fmt.Errorf("tolerance %q must be a non-negative integer", v.GetString("tolerance"))
	}
	cfg.Tolerance = tolerance
	return cfg, nil
}

// address validates a hex address and returns it lowercased, the form the dataset keys on.
func address(value, name string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	if !common.IsHexAddress(value) {
		return "", fmt.Errorf("%s %q is not an address", name, value)
	}
	return strings.ToLower(common.HexToAddress(value).Hex()), nil
}
