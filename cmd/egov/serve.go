package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/cache"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/db"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/documents"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/files"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/health"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/lifecycle"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/metrics"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/property"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/reports"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/server"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/transport"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "Apply migrations before serving",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	logger := newLogger(config)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cCtx.Bool("migrate") {
		if err := db.Migrate(ctx, pool, config.DatabaseSchema, logger); err != nil {
			return err
		}
	}

	blobs, err := blobStore(ctx, config)
	if err != nil {
		return err
	}

	redisClient, err := cache.NewRedisClient(ctx, config.RedisURL)
	if err != nil {
		return err
	}
	var doctorCache cache.DoctorCache = cache.NoopDoctorCache{}
	if redisClient != nil {
		defer redisClient.Close()
		doctorCache = cache.NewRedisDoctorCache(redisClient, time.Duration(config.DoctorCacheTTLSec)*time.Second)
		logger.Info("doctor registry cache enabled")
	}

	var (
		m        *metrics.Metrics
		gatherer prometheus.Gatherer
	)
	if config.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(reg)
		gatherer = reg
	}

	st := store.NewPostgresStore(pool)
	engine := lifecycle.New(st, logger, m)
	fileService := files.NewService(st, blobs, logger)

	srv := server.New(config, logger, st, server.Services{
		Documents: documents.NewService(engine, fileService, logger),
		Property:  property.NewService(engine, fileService, logger),
		Transport: transport.NewService(engine, fileService, logger),
		Health:    health.NewService(engine, fileService, doctorCache, logger),
		Reports:   reports.NewService(st, logger, m),
	}, m, gatherer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Stop(shutdownCtx)
	})

	return g.Wait()
}

func blobStore(ctx context.Context, config *types.Config) (files.BlobStore, error) {
	switch config.StorageDriver {
	case "", "disk":
		disk, err := files.NewDiskStore(config.StorageRoot)
		if err != nil {
			return nil, err
		}
		return disk, nil
	case "s3":
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return files.NewS3Store(s3.NewFromConfig(awsConfig), config.S3BucketName), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", config.StorageDriver)
	}
}
