package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "quoter",
		Short:        "Concentrated-liquidity swap quoter",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a hypothetical swap against pool state",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("rpc", "", "RPC URL")
	quoteCmd.Flags().String("pool", "", "pool contract address")
	quoteCmd.Flags().Uint64("block", 0, "block number to pin state reads (0 means latest)")
	quoteCmd.Flags().String("amount", "", "swap amount (input magnitude, or output with --exact-out)")
	quoteCmd.Flags().Bool("exact-out", false, "amount fixes the output instead of the input")
	quoteCmd.Flags().Bool("zero-for-one", true, "swap token0 for token1 (price decreasing)")
	quoteCmd.Flags().String("price-limit", "", "Q64.96 sqrt price limit (defaults to the range boundary)")
	quoteCmd.Flags().String("snapshot", "", "quote against a snapshot file instead of RPC")
	quoteCmd.Flags().String("pg-dsn", "", "quote against a snapshot stored in Postgres")
	quoteCmd.Flags().Uint64("chain-id", 0, "chain id for Postgres snapshot lookup")
	quoteCmd.Flags().Int("max-retries", 5, "maximum RPC retry attempts")
	quoteCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial RPC retry backoff")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture pool state for offline quoting",
		RunE:  runSnapshot,
	}

	snapshotCmd.Flags().String("rpc", "", "RPC URL")
	snapshotCmd.Flags().String("pool", "", "pool contract address")
	snapshotCmd.Flags().Uint64("block", 0, "block number to pin state reads (0 means latest)")
	snapshotCmd.Flags().Int("word-radius", 4, "bitmap words scanned on each side of the current word")
	snapshotCmd.Flags().String("out", "", "output snapshot JSON path")
	snapshotCmd.Flags().String("pg-dsn", "", "Postgres DSN to store the snapshot")
	snapshotCmd.Flags().Int("max-retries", 5, "maximum RPC retry attempts")
	snapshotCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial RPC retry backoff")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(snapshotCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
