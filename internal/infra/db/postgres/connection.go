package postgres

import (
	"context"
	"fmt"

	"class-access/internal/infra/metrics"

	"github.com/jackc/pgx/v4/pgxpool"
)

// NewPgxPool parses dsn, caps the pool at maxConns and verifies connectivity.
func NewPgxPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: empty dsn")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// PoolSnapshot reads the live pgxpool counters in the shape metrics expects.
func PoolSnapshot(pool *pgxpool.Pool) metrics.PoolSnapshot {
	st := pool.Stat()
	return metrics.PoolSnapshot{
		Total:             st.TotalConns(),
		Idle:              st.IdleConns(),
		Acquired:          st.AcquiredConns(),
		Max:               st.MaxConns(),
		EmptyAcquireCount: st.EmptyAcquireCount(),
	}
}
