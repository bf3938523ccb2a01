package quoter

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func TestMulDiv(t *testing.T) {
	got, err := MulDiv(uint256.NewInt(7), uint256.NewInt(3), uint256.NewInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Eq(uint256.NewInt(10)) {
		t.Fatalf("muldiv = %s, want 10", got.Dec())
	}

	// 512-bit intermediate: (2^200 * 2^100) / 2^150 = 2^150.
	a := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	b := new(uint256.Int).Lsh(uint256.NewInt(1), 100)
	d := new(uint256.Int).Lsh(uint256.NewInt(1), 150)
	got, err = MulDiv(a, b, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Eq(d) {
		t.Fatalf("muldiv = %s, want 2^150", got.Dec())
	}
}

func TestMulDivRoundingUp(t *testing.T) {
	down, err := MulDiv(uint256.NewInt(7), uint256.NewInt(3), uint256.NewInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	up, err := MulDivRoundingUp(uint256.NewInt(7), uint256.NewInt(3), uint256.NewInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !down.Eq(uint256.NewInt(10)) || !up.Eq(uint256.NewInt(11)) {
		t.Fatalf("rounding mismatch: down %s, up %s", down.Dec(), up.Dec())
	}

	// Exact division must not round.
	up, err = MulDivRoundingUp(uint256.NewInt(6), uint256.NewInt(3), uint256.NewInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !up.Eq(uint256.NewInt(9)) {
		t.Fatalf("exact division rounded: %s", up.Dec())
	}
}

func TestMulDivOverflow(t *testing.T) {
	big := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	if _, err := MulDiv(big, big, uint256.NewInt(1)); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected ErrArithmeticOverflow, got %v", err)
	}
	if _, err := MulDiv(big, big, uint256.NewInt(0)); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected ErrArithmeticOverflow for zero denominator, got %v", err)
	}
}

func TestDivRoundingUp(t *testing.T) {
	got, err := DivRoundingUp(uint256.NewInt(10), uint256.NewInt(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Eq(uint256.NewInt(4)) {
		t.Fatalf("div rounding up = %s, want 4", got.Dec())
	}
	got, err = DivRoundingUp(uint256.NewInt(9), uint256.NewInt(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Eq(uint256.NewInt(3)) {
		t.Fatalf("exact division rounded: %s", got.Dec())
	}
}
