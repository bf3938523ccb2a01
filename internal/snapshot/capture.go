package snapshot

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"quoterScope/internal/model"
)

// StateSource is the block-pinned pool view Capture scans.
type StateSource interface {
	BlockNumber() uint64
	Descriptor(ctx context.Context) (model.PoolDescriptor, error)
	Slot0(ctx context.Context) (*uint256.Int, int32, error)
	Liquidity(ctx context.Context) (*uint256.Int, error)
	LiquidityNet(ctx context.Context, tick int32) (*big.Int, error)
	TickWord(ctx context.Context, wordPos int16) (*uint256.Int, error)
}

// Capture walks the tick bitmap around the current price and collects every
// initialized tick with its liquidity net, producing a snapshot that can be
// quoted against offline. wordRadius is the number of 256-tick bitmap words
// scanned on each side of the current word.
func Capture(ctx context.Context, reader StateSource, wordRadius int, logger *zap.Logger) (*model.PoolSnapshot, error) {
	if wordRadius < 0 {
		return nil, fmt.Errorf("word radius must be >= 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	desc, err := reader.Descriptor(ctx)
	if err != nil {
		return nil, err
	}
	sqrtPrice, tick, err := reader.Slot0(ctx)
	if err != nil {
		return nil, err
	}
	liquidity, err := reader.Liquidity(ctx)
	if err != nil {
		return nil, err
	}

	compressed := tick / desc.TickSpacing
	if tick < 0 && tick%desc.TickSpacing != 0 {
		compressed--
	}
	centerWord := int(int16(compressed >> 8))

	var ticks []model.TickSnapshot
	for wp := centerWord - wordRadius; wp <= centerWord+wordRadius; wp++ {
		if wp < -32768 || wp > 32767 {
			continue
		}
		word, err := reader.TickWord(ctx, int16(wp))
		if err != nil {
			return nil, fmt.Errorf("bitmap word %d: %w", wp, err)
		}
		if word.IsZero() {
			continue
		}
		for bit := 0; bit < 256; bit++ {
			if word[bit/64]>>(uint(bit)%64)&1 == 0 {
				continue
			}
			t := (int32(wp)*256 + int32(bit)) * desc.TickSpacing
			net, err := reader.LiquidityNet(ctx, t)
			if err != nil {
				return nil, fmt.Errorf("tick %d: %w", t, err)
			}
			ticks = append(ticks, model.TickSnapshot{Tick: t, LiquidityNet: net.String()})
		}
	}

	logger.Info("captured pool state",
		zap.String("pool", desc.Address),
		zap.Uint64("block", reader.BlockNumber()),
		zap.Int32("tick", tick),
		zap.Int("initialized_ticks", len(ticks)),
	)

	return &model.PoolSnapshot{
		Pool:         desc,
		BlockNumber:  reader.BlockNumber(),
		SqrtPriceX96: sqrtPrice.Dec(),
		Tick:         tick,
		Liquidity:    liquidity.Dec(),
		Ticks:        ticks,
		CapturedAt:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}
