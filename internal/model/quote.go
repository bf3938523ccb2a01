package model

// QuoteRecord is the serialized result of one quote run.
type QuoteRecord struct {
	Pool              PoolDescriptor `json:"pool"`
	BlockNumber       uint64         `json:"block_number,omitempty"`
	ZeroForOne        bool           `json:"zero_for_one"`
	AmountSpecified   string         `json:"amount_specified"`
	SqrtPriceLimitX96 string         `json:"sqrt_price_limit_x96"`
	AmountCalculated  string         `json:"amount_calculated"`
	AmountRemaining   string         `json:"amount_remaining"`
	SqrtPriceAfter    string         `json:"sqrt_price_after"`
	TickAfter         int32          `json:"tick_after"`
	LiquidityAfter    string         `json:"liquidity_after"`
	CrossedTicks      []int32        `json:"crossed_ticks,omitempty"`
	Steps             int            `json:"steps"`
	QuotedAt          string         `json:"quoted_at"`
}
