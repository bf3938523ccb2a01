package quoter

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Tick bounds of the supported price range.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

var (
	// MinSqrtRatio is the sqrt price at MinTick, MaxSqrtRatio at MaxTick.
	// Valid pool prices lie in [MinSqrtRatio, MaxSqrtRatio).
	MinSqrtRatio = uint256.NewInt(4295128739)
	MaxSqrtRatio = uint256.MustFromDecimal("1461446703485210103287273052203988822378723970342")

	q96        = uint256.MustFromHex("0x1000000000000000000000000")
	maxUint160 = uint256.MustFromHex("0xffffffffffffffffffffffffffffffffffffffff")
	maxUint128 = uint256.MustFromHex("0xffffffffffffffffffffffffffffffff")
	maxUint256 = uint256.MustFromHex("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

	oneShiftLeft32 = uint256.MustFromHex("0x100000000")

	// Q128 multipliers for sqrt(1.0001)^(-2^i); index 0 is the odd-bit
	// seed, index 1 the even-bit seed, indices 2..20 cover bits 1..19.
	sqrtRatioMultipliers = [21]*uint256.Int{
		uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001"),
		uint256.MustFromHex("0x100000000000000000000000000000000"),
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
	}

	logSqrt10001Multiplier, _ = new(big.Int).SetString("255738958999603826347141", 10)
	tickLowOffset, _          = new(big.Int).SetString("3402992956809132418596140100660247210", 10)
	tickHighOffset, _         = new(big.Int).SetString("291339464771989622907027621153398088495", 10)
)

// SqrtRatioAtTick returns the Q64.96 sqrt price for a tick. The result is
// bit-exact with the on-chain tick math.
func SqrtRatioAtTick(tick int32) (*uint256.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, fmt.Errorf("%w: tick %d", ErrOutOfTickRange, tick)
	}

	var absTick uint64
	if tick < 0 {
		absTick = uint64(-int64(tick))
	} else {
		absTick = uint64(tick)
	}

	ratio := new(uint256.Int)
	if absTick&1 != 0 {
		ratio.Set(sqrtRatioMultipliers[0])
	} else {
		ratio.Set(sqrtRatioMultipliers[1])
	}
	for i := 0; i < 19; i++ {
		if absTick&(1<<uint(i+1)) != 0 {
			ratio.Mul(ratio, sqrtRatioMultipliers[i+2])
			ratio.Rsh(ratio, 128)
		}
	}
	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Q128.128 -> Q64.96, rounding up so the round trip through
	// TickAtSqrtRatio lands on the same tick.
	rem := new(uint256.Int).Mod(ratio, oneShiftLeft32)
	ratio.Rsh(ratio, 32)
	if !rem.IsZero() {
		ratio.AddUint64(ratio, 1)
	}
	return ratio, nil
}

// TickAtSqrtRatio returns the largest tick whose sqrt price is <= the given
// Q64.96 sqrt price. The input must lie in [MinSqrtRatio, MaxSqrtRatio).
func TickAtSqrtRatio(sqrtPriceX96 *uint256.Int) (int32, error) {
	if sqrtPriceX96.Lt(MinSqrtRatio) || !sqrtPriceX96.Lt(MaxSqrtRatio) {
		return 0, fmt.Errorf("%w: sqrt price %s", ErrOutOfTickRange, sqrtPriceX96.Dec())
	}

	ratio := new(big.Int).Lsh(sqrtPriceX96.ToBig(), 32)
	msb := ratio.BitLen() - 1

	// Normalize into [2^127, 2^128) and extract 14 fractional bits of
	// log2 in Q64.64.
	r := new(big.Int)
	if msb >= 128 {
		r.Rsh(ratio, uint(msb-127))
	} else {
		r.Lsh(ratio, uint(127-msb))
	}
	log2 := new(big.Int).Lsh(big.NewInt(int64(msb)-128), 64)
	for i := 0; i < 14; i++ {
		r.Rsh(r.Mul(r, r), 127)
		if r.BitLen() >= 129 {
			log2.Add(log2, new(big.Int).Lsh(big.NewInt(1), uint(63-i)))
			r.Rsh(r, 1)
		}
	}

	logSqrt10001 := new(big.Int).Mul(log2, logSqrt10001Multiplier)
	tickLow := int32(new(big.Int).Rsh(new(big.Int).Sub(logSqrt10001, tickLowOffset), 128).Int64())
	tickHigh := int32(new(big.Int).Rsh(new(big.Int).Add(logSqrt10001, tickHighOffset), 128).Int64())

	if tickLow == tickHigh {
		return tickLow, nil
	}
	ratioHigh, err := SqrtRatioAtTick(tickHigh)
	if err != nil {
		return 0, err
	}
	if !sqrtPriceX96.Lt(ratioHigh) {
		return tickHigh, nil
	}
	return tickLow, nil
}
