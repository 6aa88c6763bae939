package main

import (
	"fmt"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/db"

	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply the embedded SQL migrations",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := newLogger(cfg)

		pool, err := db.Connect(c.Context, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		return db.Migrate(c.Context, pool, cfg.DatabaseSchema, logger)
	},
}
