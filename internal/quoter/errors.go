package quoter

import "errors"

var (
	// ErrInvalidPriceLimit means the price limit is on the wrong side of the
	// current price for the requested direction, or outside the valid
	// sqrt price bounds.
	ErrInvalidPriceLimit = errors.New("invalid price limit")

	// ErrLiquidityUnderflow means applying a tick's liquidity net would
	// drive in-range liquidity negative. Tick data is corrupt.
	ErrLiquidityUnderflow = errors.New("liquidity underflow")

	// ErrArithmeticOverflow means a fixed-point intermediate exceeded its
	// bit width (160-bit price, 128-bit liquidity, 256-bit product).
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrOutOfTickRange means a tick or price is outside the supported
	// range, or the walk stalled at a range boundary with amount left.
	ErrOutOfTickRange = errors.New("out of tick range")
)
