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

	"genba_backend/internal/adapters/storage"
	"genba_backend/internal/auth"
	"genba_backend/internal/billing"
	"genba_backend/internal/chat"
	"genba_backend/internal/email"
	"genba_backend/internal/estimates"
	estsvc "genba_backend/internal/estimates/service"
	"genba_backend/internal/events"
	"genba_backend/internal/exports"
	apphttp "genba_backend/internal/http"
	"genba_backend/internal/http/router"
	"genba_backend/internal/invoices"
	"genba_backend/internal/rates"
	"genba_backend/internal/receipts"
	rcptsvc "genba_backend/internal/receipts/service"
	"genba_backend/internal/reports"
	"genba_backend/internal/scheduler"
	"genba_backend/internal/telemetry"
	"genba_backend/platform/ai/gemini"
	"genba_backend/platform/config"
	"genba_backend/platform/db"
	"genba_backend/platform/logger"
	"genba_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, cfg.MigrationsDir)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Best-effort telemetry sink
	sink := telemetry.NewSink(telemetry.NewRepository(pool), cfg.GetTelemetryBufferSize(), log)
	defer sink.Close()

	// Object storage for receipt files (MinIO)
	var objStorage rcptsvc.ObjectStorage
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure receipts bucket", 5, 2*time.Second, func() error {
			return storageSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketReceipts())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketReceipts())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		objStorage = storageSvc
		log.Info("storage service initialized", "receiptsBucket", cfg.GetMinioBucketReceipts())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; receipt uploads disabled")
	}

	// Task queue client for background OCR. The interface stays nil when
	// Redis is unconfigured so the receipts service can see the degradation.
	schedClient := initScheduler(cfg, log)
	defer func() { _ = schedClient.Close() }()
	var ocrEnqueuer rcptsvc.OCREnqueuer
	if schedClient != nil {
		ocrEnqueuer = schedClient
	}

	// Invoice-issued notification email
	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
		)
		log.Info("email sender initialized", "host", cfg.GetSMTPHost())
	}
	email.NewInvoiceSubscriber(eventBus, sender, cfg.GetEmailNotifyAddress(), log)

	// Gemini-backed estimate suggestions; nil generator degrades to heuristics
	var generator estsvc.TextGenerator
	if cfg.IsAIEnabled() {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey: cfg.GetGeminiAPIKey(),
			Model:  cfg.GetGeminiModel(),
		})
		if err != nil {
			log.Error("failed to initialize gemini client", "error", err)
		} else {
			generator = client
			log.Info("gemini client initialized", "model", cfg.GetGeminiModel())
		}
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, val)
	billingModule := billing.NewModule(pool, val)
	ratesModule := rates.NewModule(pool, val)
	reportsModule := reports.NewModule(pool, ratesModule.Service(), eventBus, log, val)
	estimatesModule := estimates.NewModule(pool, billingModule.Service(), generator, eventBus, log, val)
	invoicesModule := invoices.NewModule(pool, billingModule.Service(), reportsModule.Repository(), eventBus, log, val)
	receiptsModule := receipts.NewModule(pool, objStorage, ocrEnqueuer, cfg.GetMinioBucketReceipts(), eventBus, log, val)
	exportsModule := exports.NewModule(pool)

	chatModule, err := chat.NewModule(cfg, billingModule.Service(), sink, eventBus, log, val)
	if err != nil {
		log.Error("failed to initialize chat module", "error", err)
		panic("failed to initialize chat module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			billingModule,
			ratesModule,
			reportsModule,
			estimatesModule,
			invoicesModule,
			receiptsModule,
			exportsModule,
			chatModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initScheduler(cfg config.SchedulerConfig, log *logger.Logger) *scheduler.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; background OCR disabled")
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil
	}
	return client
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
