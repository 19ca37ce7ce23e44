package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/email"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	internalworker "github.com/jwalitptl/hospital-api/internal/worker"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	zl, err := logger.NewZap(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build logger")
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("Worker failed", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	store := postgres.NewStore(db)

	client, err := redis.NewClient(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	brokerLog := logger.Init(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	}).Zerolog().With().Str("component", "broker").Logger()
	broker := redis.NewRedisBroker(client, brokerLog)
	defer broker.Close()

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry, "hms", "worker")

	var mailer email.Service = email.NewLogService()
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	processor, err := worker.NewOutboxProcessor(
		store.Outbox(),
		broker,
		mailer,
		worker.OutboxProcessorConfig{
			BatchSize:    cfg.Outbox.BatchSize,
			PollInterval: cfg.Outbox.PollInterval,
			MaxRetries:   cfg.Outbox.MaxRetries,
		},
		zl.With(zap.String("component", "outbox")),
		m,
	)
	if err != nil {
		return err
	}

	retention := internalworker.NewRetentionWorker(
		store.Audit(),
		store.Outbox(),
		cfg.Audit.RetentionDays,
		cfg.Outbox.Retention,
		cfg.Audit.CleanupInterval,
		zl.With(zap.String("component", "retention")),
		m,
	)

	srv := healthServer(cfg.Monitoring.MetricsAddr, store, registry)
	go func() {
		zl.Info("Health server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("Health server failed", zap.Error(err))
			cancel()
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		retention.Start(ctx)
	}()

	<-ctx.Done()
	zl.Info("Shutting down...")
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthServer(addr string, db pinger, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, fmt.Sprintf("database unavailable: %v", err), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
