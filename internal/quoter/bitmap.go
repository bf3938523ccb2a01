package quoter

import (
	"context"
	"math/bits"

	"github.com/holiman/uint256"
)

// WordSource provides one 256-bit word of the initialized-tick bitmap.
// Bit i of word w flags compressed tick position w*256+i, where a
// compressed position is floor(tick / tickSpacing).
type WordSource interface {
	TickWord(ctx context.Context, wordPos int16) (*uint256.Int, error)
}

// NextInitializedTickWithinOneWord finds the next initialized tick in the
// single bitmap word covering the search start. Searching lte (price
// decreasing) includes the current compressed position; otherwise the
// search starts strictly above it. If no bit is set in the word, the
// word's boundary tick nearest the search direction is returned with
// initialized=false and the caller continues from there on the next
// iteration. Returned ticks are not clamped to [MinTick, MaxTick].
func NextInitializedTickWithinOneWord(ctx context.Context, src WordSource, tick, tickSpacing int32, lte bool) (int32, bool, error) {
	compressed := tick / tickSpacing
	if tick < 0 && tick%tickSpacing != 0 {
		compressed-- // round toward negative infinity
	}

	if lte {
		wordPos, bitPos := bitmapPosition(compressed)
		word, err := src.TickWord(ctx, wordPos)
		if err != nil {
			return 0, false, err
		}
		// Bits at or below the current position.
		mask := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos)+1)
		mask.SubUint64(mask, 1)
		masked := new(uint256.Int).And(word, mask)

		if masked.IsZero() {
			return (compressed - int32(bitPos)) * tickSpacing, false, nil
		}
		msb := int32(masked.BitLen() - 1)
		return (compressed - (int32(bitPos) - msb)) * tickSpacing, true, nil
	}

	start := compressed + 1
	wordPos, bitPos := bitmapPosition(start)
	word, err := src.TickWord(ctx, wordPos)
	if err != nil {
		return 0, false, err
	}
	// Bits at or above the start position.
	mask := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos))
	mask.SubUint64(mask, 1)
	mask.Not(mask)
	masked := new(uint256.Int).And(word, mask)

	if masked.IsZero() {
		return (start + (255 - int32(bitPos))) * tickSpacing, false, nil
	}
	lsb := lowestSetBit(masked)
	return (start + (lsb - int32(bitPos))) * tickSpacing, true, nil
}

// bitmapPosition splits a compressed tick position into its word index and
// bit position.
func bitmapPosition(compressed int32) (int16, uint8) {
	return int16(compressed >> 8), uint8(compressed & 255)
}

func lowestSetBit(word *uint256.Int) int32 {
	for i := 0; i < 4; i++ {
		if word[i] != 0 {
			return int32(i*64 + bits.TrailingZeros64(word[i]))
		}
	}
	return 0
}
