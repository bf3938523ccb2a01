package snapshot

import (
	"context"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"quoterScope/internal/model"
)

// Reader serves quoting-engine state queries from an in-memory pool
// snapshot. Bitmap words are rebuilt from the snapshot's tick list, so the
// word-by-word navigation contract matches the on-chain layout.
type Reader struct {
	desc      model.PoolDescriptor
	sqrtPrice *uint256.Int
	tick      int32
	liquidity *uint256.Int

	nets  map[int32]*big.Int
	words map[int16]*uint256.Int
}

// NewReader validates a snapshot and indexes its ticks.
func NewReader(snap *model.PoolSnapshot) (*Reader, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	if snap.Pool.TickSpacing <= 0 {
		return nil, fmt.Errorf("invalid tick spacing %d", snap.Pool.TickSpacing)
	}

	sqrtPrice, err := uint256.FromDecimal(snap.SqrtPriceX96)
	if err != nil {
		return nil, fmt.Errorf("sqrt price %q: %w", snap.SqrtPriceX96, err)
	}
	liquidity, err := uint256.FromDecimal(snap.Liquidity)
	if err != nil {
		return nil, fmt.Errorf("liquidity %q: %w", snap.Liquidity, err)
	}

	r := &Reader{
		desc:      snap.Pool,
		sqrtPrice: sqrtPrice,
		tick:      snap.Tick,
		liquidity: liquidity,
		nets:      make(map[int32]*big.Int, len(snap.Ticks)),
		words:     make(map[int16]*uint256.Int),
	}

	for _, ts := range snap.Ticks {
		if ts.Tick%snap.Pool.TickSpacing != 0 {
			return nil, fmt.Errorf("tick %d not aligned to spacing %d", ts.Tick, snap.Pool.TickSpacing)
		}
		net, ok := new(big.Int).SetString(ts.LiquidityNet, 10)
		if !ok {
			return nil, fmt.Errorf("tick %d: invalid liquidity net %q", ts.Tick, ts.LiquidityNet)
		}
		if _, dup := r.nets[ts.Tick]; dup {
			return nil, fmt.Errorf("duplicate tick %d", ts.Tick)
		}
		r.nets[ts.Tick] = net
		r.setBit(ts.Tick / snap.Pool.TickSpacing)
	}

	return r, nil
}

func (r *Reader) setBit(compressed int32) {
	wordPos := int16(compressed >> 8)
	bitPos := uint(compressed & 255)
	word, ok := r.words[wordPos]
	if !ok {
		word = new(uint256.Int)
		r.words[wordPos] = word
	}
	word.Or(word, new(uint256.Int).Lsh(uint256.NewInt(1), bitPos))
}

func (r *Reader) Descriptor(_ context.Context) (model.PoolDescriptor, error) {
	return r.desc, nil
}

func (r *Reader) Slot0(_ context.Context) (*uint256.Int, int32, error) {
	return new(uint256.Int).Set(r.sqrtPrice), r.tick, nil
}

func (r *Reader) Liquidity(_ context.Context) (*uint256.Int, error) {
	return new(uint256.Int).Set(r.liquidity), nil
}

func (r *Reader) LiquidityNet(_ context.Context, tick int32) (*big.Int, error) {
	net, ok := r.nets[tick]
	if !ok {
		return nil, fmt.Errorf("tick %d not in snapshot", tick)
	}
	return new(big.Int).Set(net), nil
}

func (r *Reader) TickWord(_ context.Context, wordPos int16) (*uint256.Int, error) {
	word, ok := r.words[wordPos]
	if !ok {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Set(word), nil
}
