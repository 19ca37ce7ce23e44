package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/email"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/router"
	accountService "github.com/jwalitptl/hospital-api/internal/service/account"
	appointmentService "github.com/jwalitptl/hospital-api/internal/service/appointment"
	auditService "github.com/jwalitptl/hospital-api/internal/service/audit"
	authService "github.com/jwalitptl/hospital-api/internal/service/auth"
	billingService "github.com/jwalitptl/hospital-api/internal/service/billing"
	dashboardService "github.com/jwalitptl/hospital-api/internal/service/dashboard"
	inventoryService "github.com/jwalitptl/hospital-api/internal/service/inventory"
	prescriptionService "github.com/jwalitptl/hospital-api/internal/service/prescription"
	"github.com/jwalitptl/hospital-api/internal/session"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/security"
	"github.com/jwalitptl/hospital-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	sessions, err := openSessions(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session store")
	}

	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	routerConfig := router.RouterConfig{
		Mode:     cfg.Server.Mode,
		CORS:     middleware.CORSFromConfig(cfg.Security),
		Security: middleware.DefaultSecurityConfig(),
		SizeLimit: middleware.SizeLimitConfig{
			MaxBodySize:   cfg.Server.MaxBodyBytes,
			MaxHeaderSize: cfg.Server.MaxHeaderBytes,
		},
		MetricsNamespace: "hms",
		ExposeMetrics:    cfg.Monitoring.MetricsEnabled,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = &middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}
	}

	r := router.NewRouter(router.Services{
		Auth:          authService.NewService(store, jwtSvc, sessions, hasher),
		Accounts:      accountService.NewService(store, hasher),
		Appointments:  appointmentService.NewService(store),
		Prescriptions: prescriptionService.NewService(store),
		Billing:       billingService.NewService(store),
		Inventory:     inventoryService.NewService(store),
		Dashboard:     dashboardService.NewService(store),
		Audit:         auditService.NewService(store.Audit()),
	}, store, routerConfig)

	// Without postgres there is no separate worker process to drain the outbox.
	if cfg.Storage.Driver == "memory" {
		if err := startInProcessOutbox(ctx, cfg, store, r); err != nil {
			log.Fatal().Err(err).Msg("failed to start outbox processor")
		}
	}

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewStore(db), func() { db.Close() }, nil
}

func openSessions(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.Session.Backend != "redis" {
		return session.NewMemoryStore(cfg.Session.TTL), nil
	}
	client, err := redis.NewClient(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	return session.NewRedisStore(client, cfg.Session.TTL), nil
}

func startInProcessOutbox(ctx context.Context, cfg *config.Config, store repository.Store, r *router.Router) error {
	zl, err := logger.NewZap(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return err
	}

	broker := messaging.NewInProcessBroker()
	processor, err := worker.NewOutboxProcessor(
		store.Outbox(),
		broker,
		newMailer(cfg.SMTP),
		worker.OutboxProcessorConfig{
			BatchSize:    cfg.Outbox.BatchSize,
			PollInterval: cfg.Outbox.PollInterval,
			MaxRetries:   cfg.Outbox.MaxRetries,
		},
		zl.With(zap.String("component", "outbox")),
		r.Metrics(),
	)
	if err != nil {
		return err
	}

	go func() {
		processor.Start(ctx)
		_ = broker.Close()
	}()
	return nil
}

func newMailer(cfg config.SMTPConfig) email.Service {
	if !cfg.Enabled {
		return email.NewLogService()
	}
	return email.NewSMTPService(email.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
}
