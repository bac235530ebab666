package dex

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// fakeCaller answers eth_call by method selector with pre-packed outputs.
type fakeCaller struct {
	t       *testing.T
	parsed  abi.ABI
	outputs map[string][]interface{}
	fail    map[string]bool
	calls   []ethereum.CallMsg
	blocks  []*big.Int
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	f.calls = append(f.calls, msg)
	f.blocks = append(f.blocks, block)
	method, err := f.parsed.MethodById(msg.Data[:4])
	if err != nil {
		f.t.Fatalf("unknown selector: %v", err)
	}
	if f.fail[method.Name] {
		return nil, errors.New("execution reverted")
	}
	out, err := method.Outputs.Pack(f.outputs[method.Name]...)
	if err != nil {
		f.t.Fatalf("pack %s outputs: %v", method.Name, err)
	}
	return out, nil
}

func TestCollectable(t *testing.T) {
	parsed, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	caller := &fakeCaller{t: t, parsed: parsed, outputs: map[string][]interface{}{
		"collect": {big.NewInt(1234), big.NewInt(5678)},
	}}
	owner := common.HexToAddress("0x2222222222222222222222222222222222222222")
	pm := NewPositionManager(caller, PositionManagerAddress)

	got, err := pm.Collectable(context.Background(), big.NewInt(42), owner, big.NewInt(100))
	if err != nil {
		t.Fatalf("collectable: %v", err)
	}
	if got.Amount0.String() != "1234" || got.Amount1.String() != "5678" {
		t.Fatalf("unexpected amounts: %s", got)
	}

	if len(caller.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(caller.calls))
	}
	msg := caller.calls[0]
	if msg.From != owner {
		t.Fatalf("collect must be sent from the owner, got %s", msg.From.Hex())
	}
	if *msg.To != PositionManagerAddress {
		t.Fatalf("unexpected target %s", msg.To.Hex())
	}
	if caller.blocks[0].Uint64() != 100 {
		t.Fatalf("unexpected block %s", caller.blocks[0])
	}

	args, err := parsed.Methods["collect"].Inputs.Unpack(msg.Data[4:])
	if err != nil {
		t.Fatalf("unpack input: %v", err)
	}
	params := *abi.ConvertType(args[0], new(CollectParams)).(*CollectParams)
	if params.TokenId.Int64() != 42 {
		t.Fatalf("unexpected token id %s", params.TokenId)
	}
	if params.Recipient != owner {
		t.Fatalf("unexpected recipient %s", params.Recipient.Hex())
	}
	if params.Amount0Max.Cmp(MaxUint128) != 0 || params.Amount1Max.Cmp(MaxUint128) != 0 {
		t.Fatalf("collect caps must be max uint128")
	}
}

func TestCollectableRevert(t *testing.T) {
	parsed, _ := PositionManagerABI()
	caller := &fakeCaller{t: t, parsed: parsed, fail: map[string]bool{"collect": true}}
	pm := NewPositionManager(caller, PositionManagerAddress)
	if _, err := pm.Collectable(context.Background(), big.NewInt(1), common.Address{}, nil); err == nil {
		t.Fatalf("expected error on revert")
	}
}

func TestPosition(t *testing.T) {
	parsed, _ := PositionManagerABI()
	token0 := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	token1 := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	caller := &fakeCaller{t: t, parsed: parsed, outputs: map[string][]interface{}{
		"positions": {
			big.NewInt(0), common.Address{}, token0, token1,
			big.NewInt(3000), big.NewInt(-887220), big.NewInt(887220),
			big.NewInt(1e12), big.NewInt(7), big.NewInt(8), big.NewInt(9), big.NewInt(10),
		},
	}}
	info, err := NewPositionManager(caller, PositionManagerAddress).Position(context.Background(), big.NewInt(5), nil)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if info.Token0 != token0 || info.Token1 != token1 {
		t.Fatalf("unexpected tokens %s %s", info.Token0.Hex(), info.Token1.Hex())
	}
	if info.Fee != 3000 || info.TickLower != -887220 || info.TickUpper != 887220 {
		t.Fatalf("unexpected range: fee=%d [%d, %d]", info.Fee, info.TickLower, info.TickUpper)
	}
	if info.Liquidity.Int64() != 1e12 || info.TokensOwed1.Int64() != 10 {
		t.Fatalf("unexpected accounting: %s %s", info.Liquidity, info.TokensOwed1)
	}
}

func TestTokensOwed(t *testing.T) {
	parsed, _ := PositionManagerABI()
	caller := &fakeCaller{t: t, parsed: parsed, outputs: map[string][]interface{}{
		"positions": {
			big.NewInt(0), common.Address{}, common.Address{}, common.Address{},
			big.NewInt(500), big.NewInt(-60), big.NewInt(60),
			big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(4000), big.NewInt(25),
		},
	}}
	owed, err := NewPositionManager(caller, PositionManagerAddress).TokensOwed(context.Background(), big.NewInt(5), big.NewInt(99))
	if err != nil {
		t.Fatalf("tokens owed: %v", err)
	}
	if owed.Amount0.Int64() != 4000 || owed.Amount1.Int64() != 25 {
		t.Fatalf("unexpected owed: %s", owed)
	}
}

func TestFetchTokenMetaBytes32Fallback(t *testing.T) {
	stringABI, _ := erc20StringABI.get()
	bytes32ABI, _ := erc20Bytes32ABI.get()

	var symbol [32]byte
	copy(symbol[:], "MKR")
	// Both ABIs share selectors; answer symbol and name with bytes32 and decimals with uint8.
	caller := callerFunc(func(msg ethereum.CallMsg) ([]byte, error) {
		method, err := stringABI.MethodById(msg.Data[:4])
		if err != nil {
			t.Fatalf("unknown selector: %v", err)
		}
		if method.Name == "decimals" {
			return method.Outputs.Pack(uint8(18))
		}
		return bytes32ABI.Methods[method.Name].Outputs.Pack(symbol)
	})

	cache := NewTokenMetaCache()
	token := common.HexToAddress("0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2")
	meta, err := cache.Resolve(context.Background(), caller, token, zap.NewNop())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if meta.Decimals != 18 || meta.Symbol != "MKR" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if _, ok := cache.Get(token); !ok {
		t.Fatalf("expected cached metadata")
	}
}

type callerFunc func(ethereum.CallMsg) ([]byte, error)

func (f callerFunc) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	return f(msg)
}
