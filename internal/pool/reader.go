package pool

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"quoterScope/internal/model"
)

// ContractCaller is the subset of the chain client the reader needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	ChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// ReaderConfig configures the on-chain state reader.
type ReaderConfig struct {
	// BlockNumber pins all calls to one block; 0 pins to the latest block
	// at construction time.
	BlockNumber  uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// Reader answers quoting-engine state queries from a pool contract, with
// every call pinned to a single block so the walk sees one consistent
// snapshot.
type Reader struct {
	caller  ContractCaller
	address common.Address
	block   *big.Int
	poolABI abi.ABI
	desc    model.PoolDescriptor

	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// NewReader pins a block and loads the pool descriptor.
func NewReader(ctx context.Context, caller ContractCaller, address common.Address, cfg ReaderConfig, cache *DescriptorCache, logger *zap.Logger) (*Reader, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}

	blockNumber := cfg.BlockNumber
	if blockNumber == 0 {
		blockNumber, err = caller.LatestBlockNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("latest block: %w", err)
		}
	}

	r := &Reader{
		caller:     caller,
		address:    address,
		block:      new(big.Int).SetUint64(blockNumber),
		poolABI:    poolABI,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		logger:     logger,
	}

	desc, ok := model.PoolDescriptor{}, false
	if cache != nil {
		desc, ok = cache.Get(address)
	}
	if !ok {
		desc, err = r.fetchDescriptor(ctx)
		if err != nil {
			return nil, err
		}
		if cache != nil {
			cache.Set(address, desc)
		}
	}
	r.desc = desc

	return r, nil
}

// BlockNumber returns the pinned block.
func (r *Reader) BlockNumber() uint64 {
	return r.block.Uint64()
}

// Descriptor returns the pool's immutable parameters.
func (r *Reader) Descriptor(_ context.Context) (model.PoolDescriptor, error) {
	return r.desc, nil
}

// Slot0 returns the current sqrt price and tick.
func (r *Reader) Slot0(ctx context.Context) (*uint256.Int, int32, error) {
	values, err := r.call(ctx, "slot0")
	if err != nil {
		return nil, 0, err
	}
	if len(values) < 2 {
		return nil, 0, fmt.Errorf("unexpected slot0 values: %d", len(values))
	}
	sqrtBig, err := asBigInt(values[0])
	if err != nil {
		return nil, 0, fmt.Errorf("sqrt price: %w", err)
	}
	sqrtPrice, overflow := uint256.FromBig(sqrtBig)
	if overflow {
		return nil, 0, fmt.Errorf("sqrt price exceeds 256 bits: %s", sqrtBig.String())
	}
	tickBig, err := asBigInt(values[1])
	if err != nil {
		return nil, 0, fmt.Errorf("tick: %w", err)
	}
	tick, err := int24FromBig(tickBig)
	if err != nil {
		return nil, 0, fmt.Errorf("tick: %w", err)
	}
	return sqrtPrice, tick, nil
}

// Liquidity returns the in-range liquidity.
func (r *Reader) Liquidity(ctx context.Context) (*uint256.Int, error) {
	values, err := r.call(ctx, "liquidity")
	if err != nil {
		return nil, err
	}
	liqBig, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}
	liquidity, overflow := uint256.FromBig(liqBig)
	if overflow {
		return nil, fmt.Errorf("liquidity exceeds 256 bits: %s", liqBig.String())
	}
	return liquidity, nil
}

// LiquidityNet returns the signed liquidity net recorded at a tick.
func (r *Reader) LiquidityNet(ctx context.Context, tick int32) (*big.Int, error) {
	values, err := r.call(ctx, "ticks", big.NewInt(int64(tick)))
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("unexpected ticks values: %d", len(values))
	}
	net, err := asBigInt(values[1])
	if err != nil {
		return nil, fmt.Errorf("liquidity net: %w", err)
	}
	return net, nil
}

// TickWord returns one 256-bit word of the initialized-tick bitmap.
func (r *Reader) TickWord(ctx context.Context, wordPos int16) (*uint256.Int, error) {
	values, err := r.call(ctx, "tickBitmap", wordPos)
	if err != nil {
		return nil, err
	}
	wordBig, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("bitmap word: %w", err)
	}
	word, overflow := uint256.FromBig(wordBig)
	if overflow {
		return nil, fmt.Errorf("bitmap word exceeds 256 bits")
	}
	return word, nil
}

func (r *Reader) fetchDescriptor(ctx context.Context) (model.PoolDescriptor, error) {
	chainID, err := r.caller.ChainID(ctx)
	if err != nil {
		return model.PoolDescriptor{}, fmt.Errorf("chain id: %w", err)
	}

	values, err := r.call(ctx, "token0")
	if err != nil {
		return model.PoolDescriptor{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return model.PoolDescriptor{}, fmt.Errorf("token0: %w", err)
	}

	values, err = r.call(ctx, "token1")
	if err != nil {
		return model.PoolDescriptor{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return model.PoolDescriptor{}, fmt.Errorf("token1: %w", err)
	}

	values, err = r.call(ctx, "fee")
	if err != nil {
		return model.PoolDescriptor{}, err
	}
	feeBig, err := asBigInt(values[0])
	if err != nil {
		return model.PoolDescriptor{}, fmt.Errorf("fee: %w", err)
	}

	values, err = r.call(ctx, "tickSpacing")
	if err != nil {
		return model.PoolDescriptor{}, err
	}
	spacingBig, err := asBigInt(values[0])
	if err != nil {
		return model.PoolDescriptor{}, fmt.Errorf("tick spacing: %w", err)
	}
	spacing, err := int24FromBig(spacingBig)
	if err != nil {
		return model.PoolDescriptor{}, fmt.Errorf("tick spacing: %w", err)
	}

	return model.PoolDescriptor{
		ChainID:     chainID.Uint64(),
		Address:     r.address.Hex(),
		Token0:      token0.Hex(),
		Token1:      token1.Hex(),
		Fee:         uint32(feeBig.Uint64()),
		TickSpacing: spacing,
	}, nil
}

func (r *Reader) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := r.poolABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &r.address, Data: data}

	var resp []byte
	err = withRetry(ctx, r.maxRetries, r.backoff, func(ctx context.Context) error {
		var callErr error
		resp, callErr = r.caller.CallContract(ctx, msg, r.block)
		if callErr != nil {
			r.logger.Debug("pool call failed",
				zap.String("method", method),
				zap.String("pool", r.address.Hex()),
				zap.Error(callErr),
			)
		}
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	values, err := r.poolABI.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
