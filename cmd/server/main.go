package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pawfectcare/notifier/internal/api"
	"github.com/pawfectcare/notifier/internal/config"
	"github.com/pawfectcare/notifier/internal/db"
	"github.com/pawfectcare/notifier/internal/metrics"
	"github.com/pawfectcare/notifier/internal/provider"
	"github.com/pawfectcare/notifier/internal/queue"
	"github.com/pawfectcare/notifier/internal/ratelimiter"
	"github.com/pawfectcare/notifier/internal/repository"
	"github.com/pawfectcare/notifier/internal/scheduler"
	"github.com/pawfectcare/notifier/internal/service"
	"github.com/pawfectcare/notifier/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- transports ----
	mailer := provider.NewSMTPSender(provider.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})

	push, err := provider.NewFCMSender(ctx, cfg.FCMCredentialsFile)
	if err != nil {
		logger.Fatal("failed to init push transport", zap.Error(err))
	}

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	q := queue.New(cfg.QueueCapacity)
	metrics.RegisterQueueDepth(reg, q.Depth)
	limiter := ratelimiter.New(cfg.RateLimit)

	emails := repository.NewPgEmailNotificationRepository(pool)
	dispatcher := service.NewDispatcher(
		repository.NewPgUserRepository(pool),
		repository.NewPgPetRepository(pool),
		repository.NewPgShelterRepository(pool),
		repository.NewPgAppointmentRepository(pool),
		emails,
		q, push, limiter, m, logger,
		cfg.RetentionDays,
	)

	// ---- background workers ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	onSent, onFailed := m.MailWorkerHooks()
	pool2 := worker.NewPool(cfg.MailWorkers, q, emails, mailer, limiter, logger, worker.MetricHooks{
		OnSent:   onSent,
		OnFailed: onFailed,
	})
	pool2.Start(workerCtx)

	recoveryW := worker.NewRecoveryWorker(emails, q, cfg.RecoveryInterval, cfg.PendingStaleAfter, logger)
	go recoveryW.Run(workerCtx)

	// ---- scheduled jobs ----
	sched, err := scheduler.New(dispatcher, cfg.CleanupSchedule, cfg.ReminderSchedule, logger)
	if err != nil {
		logger.Fatal("failed to init scheduler", zap.Error(err))
	}
	sched.Start()

	// ---- HTTP server ----
	router := api.NewRouter(dispatcher, q, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the scheduled jobs.
	if err := sched.Stop(); err != nil {
		logger.Error("scheduler shutdown error", zap.Error(err))
	}

	// 3. Signal all workers to stop processing new queue items.
	cancelWorkers()

	// 4. Wait for in-flight workers to finish their current message.
	pool2.Wait()

	logger.Info("server stopped cleanly")
}
