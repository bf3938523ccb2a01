package pool

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// stubCaller answers contract calls from canned per-method outputs.
type stubCaller struct {
	latestBlock uint64
	outputs     map[string][]interface{}

	calls     map[string]int
	lastBlock *big.Int
}

func newStubCaller(t *testing.T, latestBlock uint64) *stubCaller {
	t.Helper()
	sqrtPrice, _ := new(big.Int).SetString("79228162514264337593543950336", 10)
	net, _ := new(big.Int).SetString("-500000000000000000", 10)
	word := new(big.Int).Lsh(big.NewInt(1), 10)
	return &stubCaller{
		latestBlock: latestBlock,
		calls:       make(map[string]int),
		outputs: map[string][]interface{}{
			"token0":      {common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")},
			"token1":      {common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")},
			"fee":         {big.NewInt(3000)},
			"tickSpacing": {big.NewInt(60)},
			"liquidity":   {big.NewInt(1e18)},
			"slot0": {
				sqrtPrice, big.NewInt(12), uint16(0), uint16(1), uint16(1), uint8(0), true,
			},
			"ticks": {
				big.NewInt(1e18), net, new(big.Int), new(big.Int), new(big.Int),
				new(big.Int), uint32(0), true,
			},
			"tickBitmap": {word},
		},
	}
}

func (c *stubCaller) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (c *stubCaller) LatestBlockNumber(context.Context) (uint64, error) {
	return c.latestBlock, nil
}

func (c *stubCaller) CallContract(_ context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, err
	}
	for name, method := range poolABI.Methods {
		if !bytes.Equal(msg.Data[:4], method.ID) {
			continue
		}
		c.calls[name]++
		c.lastBlock = new(big.Int).Set(blockNumber)
		out, ok := c.outputs[name]
		if !ok {
			return nil, fmt.Errorf("no canned output for %s", name)
		}
		return method.Outputs.Pack(out...)
	}
	return nil, fmt.Errorf("unknown method selector %x", msg.Data[:4])
}

var testPoolAddr = common.HexToAddress("0x8ad599c3a0ff1de082011efddc58f1908eb6e6d8")

func TestReaderDescriptor(t *testing.T) {
	ctx := context.Background()
	caller := newStubCaller(t, 19000000)

	r, err := NewReader(ctx, caller, testPoolAddr, ReaderConfig{}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.BlockNumber() != 19000000 {
		t.Fatalf("pinned block %d, want the latest", r.BlockNumber())
	}

	desc, err := r.Descriptor(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc.ChainID != 1 || desc.Fee != 3000 || desc.TickSpacing != 60 {
		t.Fatalf("descriptor = %+v", desc)
	}
	if desc.Address != testPoolAddr.Hex() {
		t.Fatalf("address = %s", desc.Address)
	}
	if desc.Token0 != common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48").Hex() {
		t.Fatalf("token0 = %s", desc.Token0)
	}
}

func TestReaderPinsConfiguredBlock(t *testing.T) {
	ctx := context.Background()
	caller := newStubCaller(t, 19000000)

	r, err := NewReader(ctx, caller, testPoolAddr, ReaderConfig{BlockNumber: 18500000}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.BlockNumber() != 18500000 {
		t.Fatalf("pinned block %d, want 18500000", r.BlockNumber())
	}
	if _, err := r.Liquidity(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.lastBlock.Uint64() != 18500000 {
		t.Fatalf("call used block %s, want the pinned one", caller.lastBlock)
	}
}

func TestReaderState(t *testing.T) {
	ctx := context.Background()
	caller := newStubCaller(t, 19000000)

	r, err := NewReader(ctx, caller, testPoolAddr, ReaderConfig{}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sqrtPrice, tick, err := r.Slot0(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick != 12 {
		t.Fatalf("tick = %d, want 12", tick)
	}
	if !sqrtPrice.Eq(uint256.MustFromDecimal("79228162514264337593543950336")) {
		t.Fatalf("sqrt price = %s", sqrtPrice.Dec())
	}

	liquidity, err := r.Liquidity(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !liquidity.Eq(uint256.NewInt(1e18)) {
		t.Fatalf("liquidity = %s", liquidity.Dec())
	}

	net, err := r.LiquidityNet(ctx, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if net.Cmp(big.NewInt(-5e17)) != 0 {
		t.Fatalf("liquidity net = %s", net)
	}

	word, err := r.TickWord(ctx, -2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !word.Eq(new(uint256.Int).Lsh(uint256.NewInt(1), 10)) {
		t.Fatalf("bitmap word = %s", word.Hex())
	}
}

func TestReaderDescriptorCache(t *testing.T) {
	ctx := context.Background()
	caller := newStubCaller(t, 19000000)
	cache := NewDescriptorCache()

	if _, err := NewReader(ctx, caller, testPoolAddr, ReaderConfig{}, cache, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstFetch := caller.calls["token0"]
	if firstFetch == 0 {
		t.Fatalf("descriptor was not fetched")
	}

	if _, err := NewReader(ctx, caller, testPoolAddr, ReaderConfig{}, cache, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.calls["token0"] != firstFetch {
		t.Fatalf("descriptor fetched again despite the cache")
	}
}
