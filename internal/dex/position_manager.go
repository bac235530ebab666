package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"feeScope/internal/model"
)

// PositionManagerAddress is the NonfungiblePositionManager on mainnet.
var PositionManagerAddress = common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88")

// MaxUint128 is the collect cap that requests every owed token.
var MaxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// CollectParams mirrors the collect call's tuple argument.
type CollectParams struct {
	TokenId    *big.Int
	Recipient  common.Address
	Amount0Max *big.Int
	Amount1Max *big.Int
}

// PositionInfo is the position manager's stored view of a position.
type PositionInfo struct {
	Token0                   common.Address
	Token1                   common.Address
	Fee                      uint32
	TickLower                int32
	TickUpper                int32
	Liquidity                *big.Int
	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
	TokensOwed0              *big.Int
	TokensOwed1              *big.Int
}

// PositionManager reads positions from a NonfungiblePositionManager deployment.
type PositionManager struct {
	caller  Caller
	address common.Address
}

// NewPositionManager binds a caller to the manager at address.
func NewPositionManager(caller Caller, address common.Address) *PositionManager {
	return &PositionManager{caller: caller, address: address}
}

// Collectable simulates collect from owner at block and returns the amounts the owner would
// receive: fees owed plus fees accrued since the last poke.
func (m *PositionManager) Collectable(ctx context.Context, tokenID *big.Int, owner common.Address, block *big.Int) (model.TokenFeeAmount, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return model.TokenFeeAmount{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	params := CollectParams{
		TokenId:    tokenID,
		Recipient:  owner,
		Amount0Max: MaxUint128,
		Amount1Max: MaxUint128,
	}
	values, err := call(ctx, m.caller, parsed, m.address, owner, block, "collect", params)
	if err != nil {
		return model.TokenFeeAmount{}, fmt.Errorf("position %s: %w", tokenID, err)
	}
	if len(values) != 2 {
		return model.TokenFeeAmount{}, fmt.Errorf("collect returned %d values", len(values))
	}
	amount0, err := asBigInt(values[0])
	if err != nil {
		return model.TokenFeeAmount{}, fmt.Errorf("amount0: %w", err)
	}
	amount1, err := asBigInt(values[1])
	if err != nil {
		return model.TokenFeeAmount{}, fmt.Errorf("amount1: %w", err)
	}
	return model.TokenFeeAmount{Amount0: amount0, Amount1: amount1}, nil
}

// Position returns the stored state of tokenID at block.
func (m *PositionManager) Position(ctx context.Context, tokenID *big.Int, block *big.Int) (PositionInfo, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return PositionInfo{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := call(ctx, m.caller, parsed, m.address, common.Address{}, block, "positions", tokenID)
	if err != nil {
		return PositionInfo{}, fmt.Errorf("position %s: %w", tokenID, err)
	}
	if len(values) != 12 {
		return PositionInfo{}, fmt.Errorf("positions returned %d values", len(values))
	}

	var info PositionInfo
	if info.Token0, err = asAddress(values[2]); err != nil {
		return PositionInfo{}, fmt.Errorf("token0: %w", err)
	}
	if info.Token1, err = asAddress(values[3]); err != nil {
		return PositionInfo{}, fmt.Errorf("token1: %w", err)
	}
	fee, err := asBigInt(values[4])
	if err != nil {
		return PositionInfo{}, fmt.Errorf("fee: %w", err)
	}
	info.Fee = uint32(fee.Uint64())

	lower, err := asBigInt(values[5])
	if err != nil {
		return PositionInfo{}, fmt.Errorf("tick lower: %w", err)
	}
	if info.TickLower, err = int24FromBig(lower); err != nil {
		return PositionInfo{}, fmt.Errorf("tick lower: %w", err)
	}
	upper, err := asBigInt(values[6])
	if err != nil {
		return PositionInfo{}, fmt.Errorf("tick upper: %w", err)
	}
	if info.TickUpper, err = int24FromBig(upper); err != nil {
		return PositionInfo{}, fmt.Errorf("tick upper: %w", err)
	}

	fields := []struct {
		dst  **big.Int
		idx  int
		name string
	}{
		{&info.Liquidity, 7, "liquidity"},
		{&info.FeeGrowthInside0LastX128, 8, "feeGrowthInside0LastX128"},
		{&info.FeeGrowthInside1LastX128, 9, "feeGrowthInside1LastX128"},
		{&info.TokensOwed0, 10, "tokensOwed0"},
		{&info.TokensOwed1, 11, "tokensOwed1"},
	}
	for _, f := range fields {
		v, err := asBigInt(values[f.idx])
		if err != nil {
			return PositionInfo{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return info, nil
}

// TokensOwed returns the amounts credited to tokenID but not yet collected as of block. A
// liquidity decrease credits its principal here along with the fees accrued until then.
func (m *PositionManager) TokensOwed(ctx context.Context, tokenID *big.Int, block *big.Int) (model.TokenFeeAmount, error) {
	info, err := m.Position(ctx, tokenID, block)
	if err != nil {
		return model.TokenFeeAmount{}, err
	}
	return model.TokenFeeAmount{Amount0: info.TokensOwed0, Amount1: info.TokensOwed1}, nil
}

// OwnerOf returns the current holder of tokenID.
func (m *PositionManager) OwnerOf(ctx context.Context, tokenID *big.Int, block *big.Int) (common.Address, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := call(ctx, m.caller, parsed, m.address, common.Address{}, block, "ownerOf", tokenID)
	if err != nil {
		return common.Address{}, fmt.Errorf("position %s: %w", tokenID, err)
	}
	return asAddress(values[0])
}
