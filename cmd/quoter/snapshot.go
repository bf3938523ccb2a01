package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quoterScope/internal/chain"
	"quoterScope/internal/config"
	"quoterScope/internal/pool"
	"quoterScope/internal/snapshot"
	"quoterScope/internal/storage/postgres"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
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

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.Pool == "" || !common.IsHexAddress(cfg.Pool) {
		return fmt.Errorf("a valid pool address is required")
	}
	if cfg.Out == "" && cfg.PgDSN == "" {
		return fmt.Errorf("at least one of --out or --pg-dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	reader, err := pool.NewReader(ctx, client, common.HexToAddress(cfg.Pool), pool.ReaderConfig{
		BlockNumber:  cfg.Block,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, pool.NewDescriptorCache(), logger)
	if err != nil {
		return err
	}

	snap, err := snapshot.Capture(ctx, reader, cfg.WordRadius, logger)
	if err != nil {
		return err
	}

	if cfg.Out != "" {
		if err := snapshot.SaveFile(cfg.Out, snap); err != nil {
			return err
		}
		logger.Info("snapshot written", zap.String("path", cfg.Out))
	}

	if cfg.PgDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveSnapshot(ctx, snap); err != nil {
			return err
		}
		logger.Info("snapshot stored",
			zap.String("pool", snap.Pool.Address),
			zap.Uint64("chain_id", snap.Pool.ChainID),
		)
	}

	return nil
}
