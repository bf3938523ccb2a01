package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quoterScope/internal/chain"
	"quoterScope/internal/config"
	"quoterScope/internal/model"
	"quoterScope/internal/pool"
	"quoterScope/internal/quoter"
	"quoterScope/internal/snapshot"
	"quoterScope/internal/storage/postgres"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	magnitude, ok := new(big.Int).SetString(cfg.Amount, 10)
	if !ok || magnitude.Sign() < 0 {
		return fmt.Errorf("invalid amount: %s", cfg.Amount)
	}
	// Negative fixes the input, positive the output.
	amountSpecified := new(big.Int).Set(magnitude)
	if !cfg.ExactOut {
		amountSpecified.Neg(amountSpecified)
	}

	var priceLimit *uint256.Int
	if cfg.PriceLimit != "" {
		priceLimit, err = uint256.FromDecimal(cfg.PriceLimit)
		if err != nil {
			return fmt.Errorf("invalid price limit: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader, blockNumber, err := resolveReader(ctx, cmd, cfg, logger)
	if err != nil {
		return err
	}

	engine := quoter.NewEngine(logger)
	req := quoter.Request{
		ZeroForOne:      cfg.ZeroForOne,
		AmountSpecified: amountSpecified,
		PriceLimit:      priceLimit,
	}

	desc, err := reader.Descriptor(ctx)
	if err != nil {
		return err
	}

	logger.Info("quote start",
		zap.String("pool", desc.Address),
		zap.Uint64("block", blockNumber),
		zap.Bool("zero_for_one", cfg.ZeroForOne),
		zap.Bool("exact_out", cfg.ExactOut),
		zap.String("amount", magnitude.String()),
	)

	result, err := engine.Quote(ctx, reader, req)
	if err != nil {
		return err
	}

	limitStr := ""
	if priceLimit != nil {
		limitStr = priceLimit.Dec()
	}
	record := model.QuoteRecord{
		Pool:              desc,
		BlockNumber:       blockNumber,
		ZeroForOne:        cfg.ZeroForOne,
		AmountSpecified:   amountSpecified.String(),
		SqrtPriceLimitX96: limitStr,
		AmountCalculated:  result.AmountCalculated.String(),
		AmountRemaining:   result.AmountRemaining.String(),
		SqrtPriceAfter:    result.SqrtPriceAfter.Dec(),
		TickAfter:         result.TickAfter,
		LiquidityAfter:    result.LiquidityAfter.Dec(),
		CrossedTicks:      result.CrossedTicks,
		Steps:             result.Steps,
		QuotedAt:          time.Now().UTC().Format(time.RFC3339),
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// resolveReader picks the state source: snapshot file, Postgres snapshot,
// or live RPC, in that order of precedence.
func resolveReader(ctx context.Context, cmd *cobra.Command, cfg config.Config, logger *zap.Logger) (quoter.StateReader, uint64, error) {
	if cfg.Snapshot != "" {
		snap, err := snapshot.LoadFile(cfg.Snapshot)
		if err != nil {
			return nil, 0, err
		}
		reader, err := snapshot.NewReader(snap)
		if err != nil {
			return nil, 0, err
		}
		return reader, snap.BlockNumber, nil
	}

	if cfg.PgDSN != "" {
		chainID, _ := cmd.Flags().GetUint64("chain-id")
		if chainID == 0 {
			return nil, 0, fmt.Errorf("chain-id is required for Postgres snapshot lookup")
		}
		if cfg.Pool == "" {
			return nil, 0, fmt.Errorf("pool address is required")
		}
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return nil, 0, err
		}
		defer store.Close()

		snap, found, err := store.LoadSnapshot(ctx, chainID, common.HexToAddress(cfg.Pool).Hex())
		if err != nil {
			return nil, 0, err
		}
		if !found {
			return nil, 0, fmt.Errorf("no stored snapshot for pool %s on chain %d", cfg.Pool, chainID)
		}
		reader, err := snapshot.NewReader(snap)
		if err != nil {
			return nil, 0, err
		}
		return reader, snap.BlockNumber, nil
	}

	if cfg.RPCURL == "" {
		return nil, 0, fmt.Errorf("rpc url is required (or pass --snapshot / --pg-dsn)")
	}
	if cfg.Pool == "" || !common.IsHexAddress(cfg.Pool) {
		return nil, 0, fmt.Errorf("a valid pool address is required")
	}

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, 0, fmt.Errorf("connect rpc: %w", err)
	}

	reader, err := pool.NewReader(ctx, client, common.HexToAddress(cfg.Pool), pool.ReaderConfig{
		BlockNumber:  cfg.Block,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, pool.NewDescriptorCache(), logger)
	if err != nil {
		return nil, 0, err
	}
	return reader, reader.BlockNumber(), nil
}
