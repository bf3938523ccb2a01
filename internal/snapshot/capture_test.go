package snapshot

import (
	"context"
	"reflect"
	"testing"
)

// pinnedReader adapts an in-memory Reader to the capture source contract.
type pinnedReader struct {
	*Reader
	block uint64
}

func (r *pinnedReader) BlockNumber() uint64 { return r.block }

func TestCaptureRebuildsTickList(t *testing.T) {
	snap := testSnapshot()
	r, err := NewReader(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A radius of 1 covers words -1..1, which holds every tick in the
	// source snapshot; the capture must reproduce it.
	got, err := Capture(context.Background(), &pinnedReader{Reader: r, block: snap.BlockNumber}, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.BlockNumber != snap.BlockNumber {
		t.Fatalf("block %d, want %d", got.BlockNumber, snap.BlockNumber)
	}
	if got.SqrtPriceX96 != snap.SqrtPriceX96 || got.Tick != snap.Tick || got.Liquidity != snap.Liquidity {
		t.Fatalf("pool state diverged: %+v", got)
	}
	if !reflect.DeepEqual(got.Ticks, snap.Ticks) {
		t.Fatalf("ticks %v, want %v", got.Ticks, snap.Ticks)
	}
	if got.CapturedAt == "" {
		t.Fatalf("capture timestamp missing")
	}
}

func TestCaptureRadiusLimitsScan(t *testing.T) {
	snap := testSnapshot()
	r, err := NewReader(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Radius 0 scans only word 0, dropping tick -600 from word -1.
	got, err := Capture(context.Background(), &pinnedReader{Reader: r, block: snap.BlockNumber}, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, ts := range got.Ticks {
		if ts.Tick < 0 {
			t.Fatalf("tick %d outside the scanned word", ts.Tick)
		}
	}
	if len(got.Ticks) != 2 {
		t.Fatalf("ticks %v, want the two in word 0", got.Ticks)
	}

	if _, err := Capture(context.Background(), &pinnedReader{Reader: r}, -1, nil); err == nil {
		t.Fatalf("expected an error for a negative radius")
	}
}
