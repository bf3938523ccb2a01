package quoter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"quoterScope/internal/model"
)

// StateReader is the pool state snapshot the quote walk consumes. All
// methods must answer from one consistent view of the pool; the walk
// itself never writes.
type StateReader interface {
	WordSource

	// Descriptor returns the pool's immutable parameters.
	Descriptor(ctx context.Context) (model.PoolDescriptor, error)
	// Slot0 returns the current Q64.96 sqrt price and tick.
	Slot0(ctx context.Context) (*uint256.Int, int32, error)
	// Liquidity returns the in-range liquidity magnitude.
	Liquidity(ctx context.Context) (*uint256.Int, error)
	// LiquidityNet returns the signed liquidity delta recorded at an
	// initialized tick.
	LiquidityNet(ctx context.Context, tick int32) (*big.Int, error)
}

// Request describes a hypothetical swap. A negative AmountSpecified fixes
// the input amount, a positive one fixes the output amount. PriceLimit is
// the Q64.96 sqrt price the walk must not cross; nil selects the range
// boundary for the direction.
type Request struct {
	ZeroForOne      bool
	AmountSpecified *big.Int
	PriceLimit      *uint256.Int
}

// Result is the outcome of a quote walk.
type Result struct {
	// AmountCalculated is the signed counter-amount: positive output for
	// exact input, negative required input for exact output.
	AmountCalculated *big.Int
	// AmountRemaining is the unconsumed part of the request, nonzero only
	// when the price limit stopped the walk early.
	AmountRemaining *big.Int

	SqrtPriceAfter *uint256.Int
	TickAfter      int32
	LiquidityAfter *uint256.Int

	CrossedTicks []int32
	Steps        int
}

// Engine computes swap quotes against pool state snapshots. Safe for
// concurrent use; each Quote call works on a private accumulator.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Quote walks the price curve tick by tick until the requested amount is
// consumed or the price limit is reached, and returns the counter-amount.
// Errors are non-recoverable for the call; no partial result is returned.
func (e *Engine) Quote(ctx context.Context, reader StateReader, req Request) (*Result, error) {
	desc, err := reader.Descriptor(ctx)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	if desc.TickSpacing <= 0 {
		return nil, fmt.Errorf("%w: tick spacing %d", ErrOutOfTickRange, desc.TickSpacing)
	}
	if desc.Fee > MaxFeePips {
		return nil, fmt.Errorf("%w: fee %d pips", ErrArithmeticOverflow, desc.Fee)
	}

	sqrtPrice, tick, err := reader.Slot0(ctx)
	if err != nil {
		return nil, fmt.Errorf("read slot0: %w", err)
	}
	if sqrtPrice.Lt(MinSqrtRatio) || !sqrtPrice.Lt(MaxSqrtRatio) {
		return nil, fmt.Errorf("%w: pool sqrt price %s", ErrOutOfTickRange, sqrtPrice.Dec())
	}
	liquidity, err := reader.Liquidity(ctx)
	if err != nil {
		return nil, fmt.Errorf("read liquidity: %w", err)
	}
	if liquidity.Gt(maxUint128) {
		return nil, fmt.Errorf("%w: liquidity exceeds 128 bits", ErrArithmeticOverflow)
	}

	limit := req.PriceLimit
	if limit == nil {
		if req.ZeroForOne {
			limit = new(uint256.Int).AddUint64(MinSqrtRatio, 1)
		} else {
			limit = new(uint256.Int).SubUint64(MaxSqrtRatio, 1)
		}
	}
	if err := validatePriceLimit(sqrtPrice, limit, req.ZeroForOne); err != nil {
		return nil, err
	}

	amountSpecified := req.AmountSpecified
	if amountSpecified == nil {
		amountSpecified = new(big.Int)
	}
	exactInput := amountSpecified.Sign() < 0

	state := swapState{
		amountRemaining:  new(big.Int).Set(amountSpecified),
		amountCalculated: new(big.Int),
		sqrtPrice:        new(uint256.Int).Set(sqrtPrice),
		tick:             tick,
		liquidity:        new(uint256.Int).Set(liquidity),
	}

	var crossed []int32
	steps := 0

	for state.amountRemaining.Sign() != 0 && !state.sqrtPrice.Eq(limit) {
		stepStartPrice := new(uint256.Int).Set(state.sqrtPrice)

		tickNext, initialized, err := NextInitializedTickWithinOneWord(ctx, reader, state.tick, desc.TickSpacing, req.ZeroForOne)
		if err != nil {
			return nil, fmt.Errorf("next tick from %d: %w", state.tick, err)
		}
		// The bitmap has no notion of global bounds.
		if tickNext < MinTick {
			tickNext = MinTick
		} else if tickNext > MaxTick {
			tickNext = MaxTick
		}

		sqrtPriceNextTick, err := SqrtRatioAtTick(tickNext)
		if err != nil {
			return nil, err
		}

		// Never walk past the caller's limit.
		target := sqrtPriceNextTick
		if req.ZeroForOne && sqrtPriceNextTick.Lt(limit) {
			target = limit
		} else if !req.ZeroForOne && sqrtPriceNextTick.Gt(limit) {
			target = limit
		}

		step, err := ComputeSwapStep(state.sqrtPrice, target, state.liquidity, state.amountRemaining, desc.Fee)
		if err != nil {
			return nil, fmt.Errorf("step at tick %d: %w", state.tick, err)
		}
		state.sqrtPrice = step.SqrtPriceNext

		if exactInput {
			consumed := new(big.Int).Add(step.AmountIn.ToBig(), step.FeeAmount.ToBig())
			state.amountRemaining.Add(state.amountRemaining, consumed)
			state.amountCalculated.Add(state.amountCalculated, step.AmountOut.ToBig())
		} else {
			state.amountRemaining.Sub(state.amountRemaining, step.AmountOut.ToBig())
			owed := new(big.Int).Add(step.AmountIn.ToBig(), step.FeeAmount.ToBig())
			state.amountCalculated.Sub(state.amountCalculated, owed)
		}

		switch {
		case state.sqrtPrice.Eq(sqrtPriceNextTick):
			// Reached the tick boundary.
			if initialized {
				net, err := reader.LiquidityNet(ctx, tickNext)
				if err != nil {
					return nil, fmt.Errorf("liquidity net at tick %d: %w", tickNext, err)
				}
				if req.ZeroForOne {
					net = new(big.Int).Neg(net)
				}
				state.liquidity, err = applyLiquidityDelta(state.liquidity, net, tickNext)
				if err != nil {
					return nil, err
				}
				crossed = append(crossed, tickNext)
				e.logger.Debug("crossed tick",
					zap.Int32("tick", tickNext),
					zap.String("liquidity", state.liquidity.Dec()),
				)
			}
			if req.ZeroForOne {
				state.tick = tickNext - 1
			} else {
				state.tick = tickNext
			}
		case !state.sqrtPrice.Eq(stepStartPrice):
			// Amount-limited mid-range stop; resynchronize the tick.
			state.tick, err = TickAtSqrtRatio(state.sqrtPrice)
			if err != nil {
				return nil, err
			}
		default:
			// No movement and the boundary was not reached. With a
			// validated limit this only happens when the walk is pinned
			// at the edge of the tick range.
			if state.amountRemaining.Sign() != 0 {
				return nil, fmt.Errorf("%w: stalled at tick %d, sqrt price %s", ErrOutOfTickRange, state.tick, state.sqrtPrice.Dec())
			}
		}

		steps++
	}

	return &Result{
		AmountCalculated: state.amountCalculated,
		AmountRemaining:  state.amountRemaining,
		SqrtPriceAfter:   state.sqrtPrice,
		TickAfter:        state.tick,
		LiquidityAfter:   state.liquidity,
		CrossedTicks:     crossed,
		Steps:            steps,
	}, nil
}

// swapState is the per-call accumulator; it lives only for the loop.
type swapState struct {
	amountRemaining  *big.Int
	amountCalculated *big.Int
	sqrtPrice        *uint256.Int
	tick             int32
	liquidity        *uint256.Int
}

// validatePriceLimit rejects limits on the wrong side of the current price
// or outside the representable range. A limit equal to the current price
// is allowed and yields an empty walk.
func validatePriceLimit(sqrtPrice, limit *uint256.Int, zeroForOne bool) error {
	if zeroForOne {
		if limit.Gt(sqrtPrice) {
			return fmt.Errorf("%w: limit %s above current price %s for a token0->token1 swap", ErrInvalidPriceLimit, limit.Dec(), sqrtPrice.Dec())
		}
		if !limit.Gt(MinSqrtRatio) {
			return fmt.Errorf("%w: limit %s at or below minimum sqrt price", ErrInvalidPriceLimit, limit.Dec())
		}
		return nil
	}
	if limit.Lt(sqrtPrice) {
		return fmt.Errorf("%w: limit %s below current price %s for a token1->token0 swap", ErrInvalidPriceLimit, limit.Dec(), sqrtPrice.Dec())
	}
	if !limit.Lt(MaxSqrtRatio) {
		return fmt.Errorf("%w: limit %s at or above maximum sqrt price", ErrInvalidPriceLimit, limit.Dec())
	}
	return nil
}

// applyLiquidityDelta adds a signed liquidity net to 128-bit liquidity.
func applyLiquidityDelta(liquidity *uint256.Int, net *big.Int, tick int32) (*uint256.Int, error) {
	delta, overflow := uint256.FromBig(new(big.Int).Abs(net))
	if overflow {
		return nil, fmt.Errorf("%w: liquidity net at tick %d exceeds 256 bits", ErrArithmeticOverflow, tick)
	}
	if net.Sign() < 0 {
		if liquidity.Lt(delta) {
			return nil, fmt.Errorf("%w: crossing tick %d drops liquidity below zero", ErrLiquidityUnderflow, tick)
		}
		return new(uint256.Int).Sub(liquidity, delta), nil
	}
	out := new(uint256.Int).Add(liquidity, delta)
	if out.Gt(maxUint128) {
		return nil, fmt.Errorf("%w: crossing tick %d overflows 128-bit liquidity", ErrArithmeticOverflow, tick)
	}
	return out, nil
}
