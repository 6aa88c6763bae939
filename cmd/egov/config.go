package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// loadConfig reads the optional env file, then the environment. Prefixed
// variables win over bare ones.
func loadConfig(c *cli.Context) (*types.Config, error) {
	if file := c.String("env-file"); file != "" {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", file, err)
		}
	}

	cfg := new(types.Config)
	if err := envconfig.Process(c.String("env-prefix"), cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if cfg.StorageDriver == "s3" && cfg.S3BucketName == "" {
		return nil, fmt.Errorf("set S3_BUCKET_NAME for the s3 storage driver")
	}

	return cfg, nil
}

func newLogger(cfg *types.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("invalid log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}
