package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Freeeeeet/membership_core/internal/app"
	"github.com/Freeeeeet/membership_core/internal/audit"
	"github.com/Freeeeeet/membership_core/internal/config"
	"github.com/Freeeeeet/membership_core/internal/controller/httpapi"
	"github.com/Freeeeeet/membership_core/internal/identity"
	"github.com/Freeeeeet/membership_core/internal/metrics"
	"github.com/Freeeeeet/membership_core/internal/policy"
	"github.com/Freeeeeet/membership_core/internal/repository"
	"github.com/Freeeeeet/membership_core/internal/service"
	"github.com/Freeeeeet/membership_core/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.IsProduction(), cfg.LogLevel).With(zap.String("env", cfg.Environment))
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting membership service",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("promotion_require_eligibility", cfg.PromotionRequireEligibility),
	)

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	if cfg.MigrationsEnabled {
		migrator, err := app.NewMigrator(pool, migrations.FS, logger)
		if err != nil {
			return err
		}
		err = migrator.Run(ctx)
		_ = migrator.Close()
		if err != nil {
			return err
		}
	}

	store := repository.NewStore(pool)

	sinks := []audit.Sink{
		audit.NewLogSink(logger),
		audit.NewStoreSink(store.Audit()),
	}
	if cfg.TelegramAuditEnabled() {
		b, err := bot.New(cfg.TelegramToken, bot.WithSkipGetMe())
		if err != nil {
			return err
		}
		telegram := audit.NewAsyncSink(audit.NewTelegramSink(b, cfg.TelegramAuditChatID), 0, logger)
		defer func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telegram.Close(drainCtx); err != nil {
				logger.Warn("Audit notifications not drained", zap.Error(err))
			}
		}()
		sinks = append(sinks, telegram)
		logger.Info("Telegram audit notifications enabled", zap.Int64("chat_id", cfg.TelegramAuditChatID))
	}
	recorder := audit.NewRecorder(audit.Multi(sinks...), logger)

	m := metrics.New(prometheus.DefaultRegisterer, "membership")
	eligibility := service.NewEligibilityService(store, policy.DefaultThresholds, m, logger)
	validate := validator.New()

	server := httpapi.NewServer(httpapi.Deps{
		Identity:    service.NewIdentityService(store, identity.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer), logger),
		Accounts:    service.NewAccountService(store, recorder, m, logger),
		Eligibility: eligibility,
		Promotion:   service.NewPromotionService(store, eligibility, recorder, m, logger, cfg.PromotionRequireEligibility),
		Attendance:  service.NewAttendanceService(store, m, logger),
		Submissions: service.NewSubmissionService(store, m, logger),
		Enrollments: service.NewEnrollmentService(store, logger),
		Profiles:    service.NewProfileService(store, validate, logger),
		Gate:        policy.DefaultGuestGate(),
		Metrics:     m,
		Gatherer:    prometheus.DefaultGatherer,
		Validate:    validate,
		Logger:      logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
