package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quoterScope/internal/model"
)

// Store persists captured pool snapshots in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SaveSnapshot upserts the snapshot head row and replaces its tick set.
func (s *Store) SaveSnapshot(ctx context.Context, snap *model.PoolSnapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO pool_snapshots (
			chain_id, pool_address, token0, token1, fee, tick_spacing,
			block_number, sqrt_price_x96, tick, liquidity, captured_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (chain_id, pool_address)
		DO UPDATE SET
			token0 = EXCLUDED.token0,
			token1 = EXCLUDED.token1,
			fee = EXCLUDED.fee,
			tick_spacing = EXCLUDED.tick_spacing,
			block_number = EXCLUDED.block_number,
			sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
			tick = EXCLUDED.tick,
			liquidity = EXCLUDED.liquidity,
			captured_at = EXCLUDED.captured_at,
			updated_at = now()
	`,
		int64(snap.Pool.ChainID),
		snap.Pool.Address,
		snap.Pool.Token0,
		snap.Pool.Token1,
		snap.Pool.Fee,
		snap.Pool.TickSpacing,
		int64(snap.BlockNumber),
		snap.SqrtPriceX96,
		snap.Tick,
		snap.Liquidity,
		snap.CapturedAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM pool_snapshot_ticks WHERE chain_id = $1 AND pool_address = $2
	`, int64(snap.Pool.ChainID), snap.Pool.Address)
	if err != nil {
		return err
	}

	if len(snap.Ticks) > 0 {
		batch := &pgx.Batch{}
		for _, ts := range snap.Ticks {
			batch.Queue(`
				INSERT INTO pool_snapshot_ticks (chain_id, pool_address, tick, liquidity_net)
				VALUES ($1, $2, $3, $4)
			`, int64(snap.Pool.ChainID), snap.Pool.Address, ts.Tick, ts.LiquidityNet)
		}
		br := tx.SendBatch(ctx, batch)
		for range snap.Ticks {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return err
			}
		}
		if err := br.Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// LoadSnapshot returns the stored snapshot for a pool, or found=false.
func (s *Store) LoadSnapshot(ctx context.Context, chainID uint64, poolAddress string) (*model.PoolSnapshot, bool, error) {
	if poolAddress == "" {
		return nil, false, fmt.Errorf("pool address required")
	}

	snap := &model.PoolSnapshot{}
	row := s.pool.QueryRow(ctx, `
		SELECT token0, token1, fee, tick_spacing, block_number,
		       sqrt_price_x96, tick, liquidity, captured_at
		FROM pool_snapshots
		WHERE chain_id = $1 AND pool_address = $2
	`, int64(chainID), poolAddress)

	var blockNumber int64
	err := row.Scan(
		&snap.Pool.Token0,
		&snap.Pool.Token1,
		&snap.Pool.Fee,
		&snap.Pool.TickSpacing,
		&blockNumber,
		&snap.SqrtPriceX96,
		&snap.Tick,
		&snap.Liquidity,
		&snap.CapturedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	snap.Pool.ChainID = chainID
	snap.Pool.Address = poolAddress
	snap.BlockNumber = uint64(blockNumber)

	rows, err := s.pool.Query(ctx, `
		SELECT tick, liquidity_net
		FROM pool_snapshot_ticks
		WHERE chain_id = $1 AND pool_address = $2
		ORDER BY tick
	`, int64(chainID), poolAddress)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var ts model.TickSnapshot
		if err := rows.Scan(&ts.Tick, &ts.LiquidityNet); err != nil {
			return nil, false, err
		}
		snap.Ticks = append(snap.Ticks, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	return snap, true, nil
}
