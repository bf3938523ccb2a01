package quoter

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// MulDiv computes floor(a * b / denominator) with a full 512-bit
// intermediate product. The quotient must fit in 256 bits.
func MulDiv(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, fmt.Errorf("%w: division by zero", ErrArithmeticOverflow)
	}
	product := new(big.Int).Mul(a.ToBig(), b.ToBig())
	product.Div(product, denominator.ToBig())
	out, overflow := uint256.FromBig(product)
	if overflow {
		return nil, fmt.Errorf("%w: muldiv quotient exceeds 256 bits", ErrArithmeticOverflow)
	}
	return out, nil
}

// MulDivRoundingUp computes ceil(a * b / denominator).
func MulDivRoundingUp(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, fmt.Errorf("%w: division by zero", ErrArithmeticOverflow)
	}
	product := new(big.Int).Mul(a.ToBig(), b.ToBig())
	quotient, remainder := new(big.Int).DivMod(product, denominator.ToBig(), new(big.Int))
	if remainder.Sign() != 0 {
		quotient.Add(quotient, big.NewInt(1))
	}
	out, overflow := uint256.FromBig(quotient)
	if overflow {
		return nil, fmt.Errorf("%w: muldiv quotient exceeds 256 bits", ErrArithmeticOverflow)
	}
	return out, nil
}

// DivRoundingUp computes ceil(x / y).
func DivRoundingUp(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return nil, fmt.Errorf("%w: division by zero", ErrArithmeticOverflow)
	}
	out := new(uint256.Int).Div(x, y)
	if !new(uint256.Int).Mod(x, y).IsZero() {
		out.AddUint64(out, 1)
	}
	return out, nil
}
