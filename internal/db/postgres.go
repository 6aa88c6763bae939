package db

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultSchema   = "egov"
	applicationName = "egov-portal"
)

// Connect opens a pool and pings it. The pool's search_path is the
// configured schema unless the URL names one itself.
func Connect(ctx context.Context, config *types.Config) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(config)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func poolConfig(config *types.Config) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	params := poolConfig.ConnConfig.RuntimeParams
	if _, ok := params["search_path"]; !ok {
		schema := config.DatabaseSchema
		if schema == "" {
			schema = defaultSchema
		}
		params["search_path"] = schema
	}
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = applicationName
	}

	poolConfig.MaxConnIdleTime = 15 * time.Minute
	poolConfig.MaxConnLifetime = 45 * time.Minute

	return poolConfig, nil
}
