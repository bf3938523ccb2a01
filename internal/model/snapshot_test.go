package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestPoolSnapshotJSONRoundTrip(t *testing.T) {
	original := PoolSnapshot{
		Pool: PoolDescriptor{
			ChainID:     1,
			Address:     "0x8ad599c3a0ff1de082011efddc58f1908eb6e6d8",
			Token0:      "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
			Token1:      "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
			Fee:         3000,
			TickSpacing: 60,
		},
		BlockNumber:  19000000,
		SqrtPriceX96: "79228162514264337593543950336",
		Tick:         0,
		Liquidity:    "1000000000000000000",
		Ticks: []TickSnapshot{
			{Tick: -600, LiquidityNet: "1000000000000000000"},
			{Tick: 600, LiquidityNet: "-1000000000000000000"},
		},
		CapturedAt: "2024-03-01T00:00:00Z",
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded PoolSnapshot
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestQuoteRecordJSONRoundTrip(t *testing.T) {
	original := QuoteRecord{
		Pool: PoolDescriptor{
			ChainID:     1,
			Address:     "0x8ad599c3a0ff1de082011efddc58f1908eb6e6d8",
			Fee:         3000,
			TickSpacing: 60,
		},
		BlockNumber:       19000000,
		ZeroForOne:        true,
		AmountSpecified:   "-1000000000000000",
		SqrtPriceLimitX96: "4295128740",
		AmountCalculated:  "996999006006000",
		AmountRemaining:   "0",
		SqrtPriceAfter:    "79228083524919337418976411013",
		TickAfter:         -1,
		LiquidityAfter:    "1000000000000000000000",
		CrossedTicks:      []int32{-60},
		Steps:             2,
		QuotedAt:          "2024-03-01T00:00:00Z",
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded QuoteRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}
