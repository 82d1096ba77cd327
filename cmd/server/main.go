package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quizdesk/quizdesk-web/internal/backend"
	"github.com/quizdesk/quizdesk-web/internal/config"
	"github.com/quizdesk/quizdesk-web/internal/database"
	"github.com/quizdesk/quizdesk-web/internal/handler"
	"github.com/quizdesk/quizdesk-web/internal/logger"
	"github.com/quizdesk/quizdesk-web/internal/middleware"
	"github.com/quizdesk/quizdesk-web/internal/notify"
	"github.com/quizdesk/quizdesk-web/internal/repository"
	"github.com/quizdesk/quizdesk-web/internal/router"
	"github.com/quizdesk/quizdesk-web/internal/service"
	"github.com/quizdesk/quizdesk-web/internal/validator"
	"github.com/quizdesk/quizdesk-web/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("upstream", cfg.UpstreamURL).
		Msg("Starting QuizDesk web")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	documentCache := repository.NewDocumentCache(rdb, cfg.DocumentCacheTTL)
	uiStore := repository.NewUIStateStore(rdb)
	draftStore := repository.NewDraftStore(rdb, cfg.DraftTTL)
	attemptStore := repository.NewAttemptStore(rdb, cfg.AttemptCacheTTL)
	uploadQueue := repository.NewUploadQueue(rdb)
	uploadRepo := repository.NewUploadRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	upstream := backend.NewHTTPClient(cfg.UpstreamURL, cfg.UpstreamTimeout)
	notifier := notify.NewRedisNotifier(rdb, log)

	authService := service.NewAuthService(cfg.JWTSecret)
	documentService := service.NewDocumentService(upstream, documentCache, log)
	uiStateService := service.NewUIStateService(uiStore, notifier)
	uploadService := service.NewUploadService(upstream, documentService, uiStateService, notifier, uploadQueue, cfg.MaxUploadBytes, log)
	quizFormService := service.NewQuizFormService(upstream, documentService, draftStore, notifier, log)
	attemptService := service.NewAttemptService(upstream, attemptStore, notifier, log)
	answerService := service.NewAnswerService(upstream, attemptService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Document:     handler.NewDocumentHandler(documentService),
		Upload:       handler.NewUploadHandler(uploadService, uploadRepo),
		Quiz:         handler.NewQuizHandler(quizFormService),
		Attempt:      handler.NewAttemptHandler(attemptService, answerService),
		UI:           handler.NewUIHandler(uiStateService),
		Notification: handler.NewNotificationHandler(notifier, uiStateService, log, cfg.AllowedOrigins),
		System: handler.NewSystemHandler(map[string]handler.Check{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, uploadQueue.Depth, log),
	}

	limiters := &router.Limiters{
		Upload:   middleware.NewRateLimiter(10, time.Minute),
		Generate: middleware.NewRateLimiter(5, time.Minute),
	}
	defer limiters.Upload.Stop()
	defer limiters.Generate.Stop()

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	ledgerWorker := worker.NewUploadLedgerWorker(uploadRepo, rdb, log)
	go ledgerWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, limiters, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	// No WriteTimeout: uploads to the upstream can outlast any fixed cap.
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests. Running upload batches get the
	// upstream timeout to settle.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the ledger worker and wait for the queue to drain.
	workerCancel()
	select {
	case <-ledgerWorker.Done():
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Ledger worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
