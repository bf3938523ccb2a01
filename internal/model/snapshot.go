package model

// TickSnapshot records one initialized tick and its signed liquidity net.
// Numeric fields wider than 64 bits are carried as decimal strings.
type TickSnapshot struct {
	Tick         int32  `json:"tick"`
	LiquidityNet string `json:"liquidity_net"`
}

// PoolSnapshot is a consistent view of pool state at one block, sufficient
// to quote swaps offline.
type PoolSnapshot struct {
	Pool         PoolDescriptor `json:"pool"`
	BlockNumber  uint64         `json:"block_number"`
	SqrtPriceX96 string         `json:"sqrt_price_x96"`
	Tick         int32          `json:"tick"`
	Liquidity    string         `json:"liquidity"`
	Ticks        []TickSnapshot `json:"ticks"`
	CapturedAt   string         `json:"captured_at,omitempty"`
}
