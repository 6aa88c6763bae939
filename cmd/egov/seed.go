package main

import (
	"fmt"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/db"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/seed"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with the admin, demo users and the doctor registry",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "admin-username",
			Value:   "admin",
			EnvVars: []string{"SEED_ADMIN_USERNAME"},
		},
		&cli.StringFlag{
			Name:     "admin-password",
			EnvVars:  []string{"SEED_ADMIN_PASSWORD"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "user-password",
			Usage:   "Password shared by the demo users",
			EnvVars: []string{"SEED_USER_PASSWORD"},
			Value:   "demo-password",
		},
	},
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

		logger.Info("Connected to database")

		st := store.NewPostgresStore(pool)

		if err := seed.SeedAdmin(c.Context, st.Admins(), c.String("admin-username"), c.String("admin-password"), logger); err != nil {
			return err
		}
		if err := seed.SeedDemoUsers(c.Context, st.Users(), c.String("user-password"), logger); err != nil {
			return err
		}
		if err := seed.SeedDoctors(c.Context, st.Doctors(), logger); err != nil {
			return err
		}

		logger.Info("Seed complete")
		return nil
	},
}
