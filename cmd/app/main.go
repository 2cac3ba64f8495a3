// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"class-access/internal/config"
	"class-access/internal/domain/ports/repository"
	"class-access/internal/infra/api"
	"class-access/internal/infra/api/apiv1"
	pg "class-access/internal/infra/db/postgres"
	"class-access/internal/infra/events"
	"class-access/internal/infra/logging"
	"class-access/internal/infra/metrics"
	red "class-access/internal/infra/redis"
	"class-access/internal/infra/sched"
	"class-access/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Set through -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted codes)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister(nil)
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	tm := pg.NewTxManager(pool)

	// ---- Repositories ----
	codeRepo := pg.NewAccessCodeRepo(pool)
	enrollRepo := pg.NewEnrollmentRepo(pool)
	var classRepo repository.ClassRepository = pg.NewClassRepo(pool)

	// ---- Redis (optional class read-model cache) ----
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		classRepo = pg.NewClassRepoCacheDecorator(classRepo, redisClient, cfg.Redis.TTL, logger)
		logger.Info().Dur("ttl", cfg.Redis.TTL).Msg("class cache enabled")
	}

	// ---- Access events (Kafka, optional) ----
	publisher := events.NewDispatcher(events.New(cfg.Events), cfg.Events.QueueSize, cfg.Events.WriteTimeout, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("close event publisher")
		}
	}()
	if len(cfg.Events.Brokers) > 0 {
		logger.Info().Strs("brokers", cfg.Events.Brokers).Str("topic", cfg.Events.Topic).Msg("access events enabled")
	}

	// ---- Use cases ----
	redeemUC := usecase.NewRedemptionUseCase(codeRepo, enrollRepo, tm, publisher, logger, cfg.Runtime.Dev)
	enrollUC := usecase.NewEnrollmentUseCase(enrollRepo, publisher, logger)
	accessUC := usecase.NewAccessUseCase(classRepo, enrollRepo, logger)
	codeUC := usecase.NewCodeUseCase(codeRepo, classRepo, tm, cfg.Access.MaxIssueBatch, logger)
	statsUC := usecase.NewStatsUseCase(classRepo, codeRepo, enrollRepo, logger)

	// ---- HTTP ----
	auth := api.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	r := chi.NewRouter()
	r.Use(
		api.TraceID(),
		api.RequestLog(logger),
		api.Recover(logger),
		api.Timeout(cfg.HTTP.RequestTimeout),
	)
	r.Get("/health", api.Health(pool.Ping))
	r.Handle("/metrics", promhttp.Handler())
	apiv1.RegisterAPIV1(r, apiv1.NewServer(redeemUC, enrollUC, accessUC, codeUC, statsUC, auth, logger))

	server := api.NewServer(cfg.HTTP, r, logger)
	worker := sched.NewPoolStatsWorker(cfg.Access.PoolStatsInterval, func() metrics.PoolSnapshot {
		return pg.PoolSnapshot(pool)
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	// Events stop after the server so grants from draining requests are still flushed.
	eventsCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()

	g.Go(server.Start)
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := publisher.Run(eventsCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown requested")
		shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer stop()
		defer stopEvents()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("exited with error")
	}
}
