package quoter

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// MaxFeePips is the fee denominator: fees are expressed in parts per
// million of the input amount.
const MaxFeePips uint32 = 1_000_000

// StepResult is the outcome of a single constant-liquidity price step.
type StepResult struct {
	SqrtPriceNext *uint256.Int
	AmountIn      *uint256.Int
	AmountOut     *uint256.Int
	FeeAmount     *uint256.Int
}

// ComputeSwapStep advances the price from sqrtPriceCurrent toward
// sqrtPriceTarget, limited by the remaining amount. A negative
// amountRemaining means that much input is left to spend (exact input); a
// non-negative one means that much output is left to produce. The fee is
// taken from the input leg. Pure function.
func ComputeSwapStep(sqrtPriceCurrent, sqrtPriceTarget, liquidity *uint256.Int, amountRemaining *big.Int, feePips uint32) (StepResult, error) {
	if feePips > MaxFeePips {
		return StepResult{}, fmt.Errorf("%w: fee %d pips exceeds %d", ErrArithmeticOverflow, feePips, MaxFeePips)
	}

	zeroForOne := !sqrtPriceCurrent.Lt(sqrtPriceTarget)
	exactIn := amountRemaining.Sign() < 0

	if exactIn {
		return computeStepExactIn(sqrtPriceCurrent, sqrtPriceTarget, liquidity, amountRemaining, feePips, zeroForOne)
	}
	return computeStepExactOut(sqrtPriceCurrent, sqrtPriceTarget, liquidity, amountRemaining, feePips, zeroForOne)
}

func computeStepExactIn(sqrtPriceCurrent, sqrtPriceTarget, liquidity *uint256.Int, amountRemaining *big.Int, feePips uint32, zeroForOne bool) (StepResult, error) {
	remaining, overflow := uint256.FromBig(new(big.Int).Neg(amountRemaining))
	if overflow {
		return StepResult{}, fmt.Errorf("%w: remaining amount exceeds 256 bits", ErrArithmeticOverflow)
	}
	remainingLessFee, err := MulDiv(remaining, uint256.NewInt(uint64(MaxFeePips-feePips)), uint256.NewInt(uint64(MaxFeePips)))
	if err != nil {
		return StepResult{}, err
	}

	var amountIn *uint256.Int
	if zeroForOne {
		amountIn, err = Amount0Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidity, true)
	} else {
		amountIn, err = Amount1Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidity, true)
	}
	if err != nil {
		return StepResult{}, err
	}

	var sqrtPriceNext, feeAmount *uint256.Int
	if !remainingLessFee.Lt(amountIn) {
		// Enough budget to reach the target exactly.
		sqrtPriceNext = new(uint256.Int).Set(sqrtPriceTarget)
		if feePips == MaxFeePips {
			feeAmount = new(uint256.Int).Set(amountIn)
		} else {
			feeAmount, err = MulDivRoundingUp(amountIn, uint256.NewInt(uint64(feePips)), uint256.NewInt(uint64(MaxFeePips-feePips)))
			if err != nil {
				return StepResult{}, err
			}
		}
	} else {
		amountIn = remainingLessFee
		sqrtPriceNext, err = NextSqrtPriceFromInput(sqrtPriceCurrent, liquidity, remainingLessFee, zeroForOne)
		if err != nil {
			return StepResult{}, err
		}
		// Whatever is not spent on the curve is the fee.
		feeAmount = new(uint256.Int).Sub(remaining, amountIn)
	}

	var amountOut *uint256.Int
	if zeroForOne {
		amountOut, err = Amount1Delta(sqrtPriceNext, sqrtPriceCurrent, liquidity, false)
	} else {
		amountOut, err = Amount0Delta(sqrtPriceCurrent, sqrtPriceNext, liquidity, false)
	}
	if err != nil {
		return StepResult{}, err
	}

	return StepResult{SqrtPriceNext: sqrtPriceNext, AmountIn: amountIn, AmountOut: amountOut, FeeAmount: feeAmount}, nil
}

func computeStepExactOut(sqrtPriceCurrent, sqrtPriceTarget, liquidity *uint256.Int, amountRemaining *big.Int, feePips uint32, zeroForOne bool) (StepResult, error) {
	remaining, overflow := uint256.FromBig(amountRemaining)
	if overflow {
		return StepResult{}, fmt.Errorf("%w: remaining amount exceeds 256 bits", ErrArithmeticOverflow)
	}

	var amountOut *uint256.Int
	var err error
	if zeroForOne {
		amountOut, err = Amount1Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidity, false)
	} else {
		amountOut, err = Amount0Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidity, false)
	}
	if err != nil {
		return StepResult{}, err
	}

	var sqrtPriceNext *uint256.Int
	if !remaining.Lt(amountOut) {
		sqrtPriceNext = new(uint256.Int).Set(sqrtPriceTarget)
	} else {
		amountOut = new(uint256.Int).Set(remaining)
		sqrtPriceNext, err = NextSqrtPriceFromOutput(sqrtPriceCurrent, liquidity, amountOut, zeroForOne)
		if err != nil {
			return StepResult{}, err
		}
	}

	var amountIn *uint256.Int
	if zeroForOne {
		amountIn, err = Amount0Delta(sqrtPriceNext, sqrtPriceCurrent, liquidity, true)
	} else {
		amountIn, err = Amount1Delta(sqrtPriceCurrent, sqrtPriceNext, liquidity, true)
	}
	if err != nil {
		return StepResult{}, err
	}

	feeAmount, err := MulDivRoundingUp(amountIn, uint256.NewInt(uint64(feePips)), uint256.NewInt(uint64(MaxFeePips-feePips)))
	if err != nil {
		return StepResult{}, err
	}

	return StepResult{SqrtPriceNext: sqrtPriceNext, AmountIn: amountIn, AmountOut: amountOut, FeeAmount: feeAmount}, nil
}
