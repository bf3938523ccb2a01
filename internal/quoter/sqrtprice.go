package quoter

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Amount0Delta returns the token0 amount between two sqrt prices at fixed
// liquidity: liquidity * (1/sqrtLow - 1/sqrtHigh). Rounds up when the
// amount is owed to the pool, down when paid out.
func Amount0Delta(sqrtRatioA, sqrtRatioB, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if sqrtRatioA.Gt(sqrtRatioB) {
		sqrtRatioA, sqrtRatioB = sqrtRatioB, sqrtRatioA
	}
	if sqrtRatioA.IsZero() {
		return nil, fmt.Errorf("%w: zero sqrt price", ErrArithmeticOverflow)
	}

	numerator1 := new(uint256.Int).Lsh(liquidity, 96)
	numerator2 := new(uint256.Int).Sub(sqrtRatioB, sqrtRatioA)

	if roundUp {
		interim, err := MulDivRoundingUp(numerator1, numerator2, sqrtRatioB)
		if err != nil {
			return nil, err
		}
		return DivRoundingUp(interim, sqrtRatioA)
	}
	interim, err := MulDiv(numerator1, numerator2, sqrtRatioB)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Div(interim, sqrtRatioA), nil
}

// Amount1Delta returns the token1 amount between two sqrt prices at fixed
// liquidity: liquidity * (sqrtHigh - sqrtLow).
func Amount1Delta(sqrtRatioA, sqrtRatioB, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if sqrtRatioA.Gt(sqrtRatioB) {
		sqrtRatioA, sqrtRatioB = sqrtRatioB, sqrtRatioA
	}
	diff := new(uint256.Int).Sub(sqrtRatioB, sqrtRatioA)
	if roundUp {
		return MulDivRoundingUp(liquidity, diff, q96)
	}
	return MulDiv(liquidity, diff, q96)
}

// NextSqrtPriceFromInput returns the sqrt price after spending amountIn of
// the input token at fixed liquidity. Rounds so the trade never gets a
// better price than the exact solution.
func NextSqrtPriceFromInput(sqrtPrice, liquidity, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPrice.IsZero() || liquidity.IsZero() {
		return nil, fmt.Errorf("%w: zero price or liquidity", ErrArithmeticOverflow)
	}
	if zeroForOne {
		return nextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liquidity, amountIn, true)
	}
	return nextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liquidity, amountIn, true)
}

// NextSqrtPriceFromOutput returns the sqrt price after paying out amountOut
// of the output token at fixed liquidity.
func NextSqrtPriceFromOutput(sqrtPrice, liquidity, amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPrice.IsZero() || liquidity.IsZero() {
		return nil, fmt.Errorf("%w: zero price or liquidity", ErrArithmeticOverflow)
	}
	if zeroForOne {
		return nextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liquidity, amountOut, false)
	}
	return nextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liquidity, amountOut, false)
}

func nextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liquidity, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if amount.IsZero() {
		return new(uint256.Int).Set(sqrtPrice), nil
	}
	numerator1 := new(uint256.Int).Lsh(liquidity, 96)
	product, mulOverflow := new(uint256.Int).MulOverflow(amount, sqrtPrice)

	if add {
		if !mulOverflow {
			denominator, carry := new(uint256.Int).AddOverflow(numerator1, product)
			if !carry {
				return MulDivRoundingUp(numerator1, sqrtPrice, denominator)
			}
		}
		// Precision-preserving fallback when liquidity<<96 + product
		// exceeds 256 bits.
		denominator := new(uint256.Int).Div(numerator1, sqrtPrice)
		denominator, carry := denominator.AddOverflow(denominator, amount)
		if carry {
			return nil, fmt.Errorf("%w: amount too large for price step", ErrArithmeticOverflow)
		}
		return DivRoundingUp(numerator1, denominator)
	}

	if mulOverflow || !numerator1.Gt(product) {
		return nil, fmt.Errorf("%w: output exceeds reserves at current liquidity", ErrArithmeticOverflow)
	}
	denominator := new(uint256.Int).Sub(numerator1, product)
	next, err := MulDivRoundingUp(numerator1, sqrtPrice, denominator)
	if err != nil {
		return nil, err
	}
	if next.Gt(maxUint160) {
		return nil, fmt.Errorf("%w: sqrt price exceeds 160 bits", ErrArithmeticOverflow)
	}
	return next, nil
}

func nextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liquidity, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if add {
		var quotient *uint256.Int
		var err error
		if !amount.Gt(maxUint160) {
			quotient = new(uint256.Int).Div(new(uint256.Int).Lsh(amount, 96), liquidity)
		} else {
			quotient, err = MulDiv(amount, q96, liquidity)
			if err != nil {
				return nil, err
			}
		}
		next, carry := new(uint256.Int).AddOverflow(sqrtPrice, quotient)
		if carry || next.Gt(maxUint160) {
			return nil, fmt.Errorf("%w: sqrt price exceeds 160 bits", ErrArithmeticOverflow)
		}
		return next, nil
	}

	var quotient *uint256.Int
	var err error
	if !amount.Gt(maxUint160) {
		quotient, err = DivRoundingUp(new(uint256.Int).Lsh(amount, 96), liquidity)
	} else {
		quotient, err = MulDivRoundingUp(amount, q96, liquidity)
	}
	if err != nil {
		return nil, err
	}
	if !sqrtPrice.Gt(quotient) {
		return nil, fmt.Errorf("%w: output exceeds reserves at current liquidity", ErrArithmeticOverflow)
	}
	return new(uint256.Int).Sub(sqrtPrice, quotient), nil
}
