// Package postgres stores encounter history in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicefight/internal/config"
)

// ErrSchemaMissing is returned by EnsureSchema when the history tables have
// not been migrated.
var ErrSchemaMissing = errors.New("encounter history schema missing; run cmd/migrate")

// historyTables lists the tables the repositories in this package write to.
var historyTables = []string{"encounters"}

// Pool is the connection pool behind encounter history.
type Pool struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPool connects to the history database described by cfg.
//
// Precondition: cfg must contain valid connection parameters; logger must be non-nil.
// Postcondition: Returns a pinged Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	start := time.Now()
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Debug("history database connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Pool{pool: pool, logger: logger}, nil
}

// EnsureSchema verifies that every history table exists, waiting at most
// timeout for the database.
//
// Postcondition: Returns nil, an error wrapping ErrSchemaMissing, or a query error.
func (p *Pool) EnsureSchema(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var missing []string
	for _, table := range historyTables {
		var present bool
		err := p.pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+table).Scan(&present)
		if err != nil {
			return fmt.Errorf("checking table %s: %w", table, err)
		}
		if !present {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		p.logger.Warn("history schema incomplete", zap.Strings("missing", missing))
		return fmt.Errorf("%w: %v", ErrSchemaMissing, missing)
	}
	return nil
}

// Encounters returns the encounter history repository over this pool.
func (p *Pool) Encounters() *EncounterRepository {
	return NewEncounterRepository(p.pool)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
