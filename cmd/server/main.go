package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raw-dani/pos-only/internal/config"
	"github.com/raw-dani/pos-only/internal/infra"
	"github.com/raw-dani/pos-only/internal/observability/tracing"
	"github.com/raw-dani/pos-only/internal/router"
	"github.com/raw-dani/pos-only/internal/service"
	"github.com/raw-dani/pos-only/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint, "pos-only", cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracing")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis backs the settings cache and the job queues; the API keeps
	// serving without it, only receipts and emails stop.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without cache and job queues")
			rdb = nil
		}
	}

	numbers, err := infra.NewInvoiceNumberer(cfg.SnowflakeNode)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid SNOWFLAKE_NODE")
	}

	mailBreaker := infra.NewCircuitBreaker(infra.DefaultBreakerConfig())
	mailer := infra.NewMailer(cfg, mailBreaker)

	var (
		broker     worker.Broker
		dispatcher *worker.Dispatcher
		receipts   service.ReceiptQueue
	)
	if rdb != nil {
		broker = worker.NewRedisBroker(rdb)
		dispatcher = worker.NewDispatcher(broker)
		receipts = dispatcher
	}

	svcs := router.NewServices(cfg, db, rdb, numbers, receipts)

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to the services and infrastructure.
	var pool *worker.Pool
	if broker != nil {
		pool = worker.NewPool(broker)
		pool.Register(worker.QueueReceipt, worker.JobReceipt,
			worker.NewReceiptWorker(svcs.Invoices, svcs.Settings, dispatcher, cfg.PDFStoragePath))
		pool.Register(worker.QueueEmail, worker.JobEmail, worker.NewEmailWorker(mailer))
		pool.Start(ctx, cfg.WorkerPoolSize)

		worker.StartRedrive(ctx, worker.RedriveConfig{Broker: broker, Breaker: mailBreaker, Queue: worker.QueueEmail})
		worker.StartRedrive(ctx, worker.RedriveConfig{Broker: broker, Queue: worker.QueueReceipt})
	}

	r := router.New(cfg, svcs, db, rdb, mailBreaker)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      otelhttp.NewHandler(r, "http.server"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("POS backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if pool != nil {
		pool.Wait()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracing shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
