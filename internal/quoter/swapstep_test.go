package quoter

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func mustRatio(t *testing.T, tick int32) *uint256.Int {
	t.Helper()
	ratio, err := SqrtRatioAtTick(tick)
	if err != nil {
		t.Fatalf("sqrt ratio at tick %d: %v", tick, err)
	}
	return ratio
}

func TestComputeSwapStepExactInReachesTarget(t *testing.T) {
	current := mustRatio(t, 0)
	target := mustRatio(t, -60)
	liquidity := uint256.NewInt(1e18)

	// Plenty of budget: the step must land exactly on the target.
	step, err := ComputeSwapStep(current, target, liquidity, big.NewInt(-1e18), 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.SqrtPriceNext.Eq(target) {
		t.Fatalf("next price %s, want target %s", step.SqrtPriceNext.Dec(), target.Dec())
	}
	if step.AmountIn.IsZero() || step.AmountOut.IsZero() {
		t.Fatalf("expected nonzero amounts: %+v", step)
	}
	// fee = ceil(amountIn * fee / (1e6 - fee)).
	wantFee, err := MulDivRoundingUp(step.AmountIn, uint256.NewInt(3000), uint256.NewInt(997000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.FeeAmount.Eq(wantFee) {
		t.Fatalf("fee %s, want %s", step.FeeAmount.Dec(), wantFee.Dec())
	}
}

func TestComputeSwapStepExactInAmountLimited(t *testing.T) {
	current := mustRatio(t, 0)
	target := mustRatio(t, -600)
	liquidity := uint256.NewInt(1e18)

	remaining := big.NewInt(-1e15)
	step, err := ComputeSwapStep(current, target, liquidity, remaining, 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.SqrtPriceNext.Eq(target) {
		t.Fatalf("amount-limited step must stop before the target")
	}
	if !step.SqrtPriceNext.Lt(current) {
		t.Fatalf("price must decrease for a token0 sale")
	}
	// The whole budget is consumed: amountIn + fee == |remaining|.
	consumed := new(uint256.Int).Add(step.AmountIn, step.FeeAmount)
	if !consumed.Eq(uint256.NewInt(1e15)) {
		t.Fatalf("consumed %s, want 1e15", consumed.Dec())
	}
}

func TestComputeSwapStepExactOut(t *testing.T) {
	current := mustRatio(t, 0)
	target := mustRatio(t, -600)
	liquidity := uint256.NewInt(1e18)

	// Amount-limited: exactly the requested output is produced.
	step, err := ComputeSwapStep(current, target, liquidity, big.NewInt(1e15), 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.AmountOut.Eq(uint256.NewInt(1e15)) {
		t.Fatalf("amount out %s, want 1e15", step.AmountOut.Dec())
	}
	if step.SqrtPriceNext.Eq(target) {
		t.Fatalf("amount-limited step must stop before the target")
	}
	// Input plus fee exceeds the raw output value near price 1.0.
	consumed := new(uint256.Int).Add(step.AmountIn, step.FeeAmount)
	if !consumed.Gt(step.AmountOut) {
		t.Fatalf("input %s not above output %s", consumed.Dec(), step.AmountOut.Dec())
	}

	// Target-limited: output capped by the price range.
	step, err = ComputeSwapStep(current, target, liquidity, big.NewInt(1e18), 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.SqrtPriceNext.Eq(target) {
		t.Fatalf("next price %s, want target %s", step.SqrtPriceNext.Dec(), target.Dec())
	}
	if !step.AmountOut.Lt(uint256.NewInt(1e18)) {
		t.Fatalf("output %s must be capped by the range", step.AmountOut.Dec())
	}
}

func TestComputeSwapStepZeroLiquidity(t *testing.T) {
	current := mustRatio(t, 0)
	target := mustRatio(t, -60)

	// Zero liquidity ranges are skipped: the price jumps to the target
	// with no amounts exchanged.
	step, err := ComputeSwapStep(current, target, new(uint256.Int), big.NewInt(-1e15), 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.SqrtPriceNext.Eq(target) {
		t.Fatalf("next price %s, want target %s", step.SqrtPriceNext.Dec(), target.Dec())
	}
	if !step.AmountIn.IsZero() || !step.AmountOut.IsZero() || !step.FeeAmount.IsZero() {
		t.Fatalf("expected zero amounts: %+v", step)
	}
}

func TestComputeSwapStepFeeRoundingFavorsPool(t *testing.T) {
	current := mustRatio(t, 0)
	target := mustRatio(t, 60)
	liquidity := uint256.NewInt(1e18)

	// Selling token1: increasing price direction.
	step, err := ComputeSwapStep(current, target, liquidity, big.NewInt(-1e15), 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.SqrtPriceNext.Gt(current) {
		t.Fatalf("price must increase for a token1 sale")
	}
	// Output after fee must be below the nominal input.
	if !step.AmountOut.Lt(uint256.NewInt(1e15)) {
		t.Fatalf("output %s not reduced by fee", step.AmountOut.Dec())
	}
}
