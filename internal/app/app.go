package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"SeapMonitor/internal/config"
	"SeapMonitor/internal/infrastructure/email"
	"SeapMonitor/internal/infrastructure/scheduler"
	"SeapMonitor/internal/infrastructure/seap"
	"SeapMonitor/internal/infrastructure/storage"
	"SeapMonitor/internal/infrastructure/web"
	"SeapMonitor/internal/keyword"
	"SeapMonitor/internal/logging"
	"SeapMonitor/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	scheduler *usecase.Scheduler
	server    *web.Server
}

// New builds a runnable application instance. The database must be
// reachable at startup.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	classifier := keyword.NewDefault()
	if len(cfg.Keywords.Terms) > 0 {
		classifier = keyword.NewClassifier(cfg.Keywords.Terms, cfg.Keywords.WordBoundary)
	}

	source := seap.NewClient(cfg.Seap.BaseURL, nil, baseLogger.With("component", "seap"))
	repository := storage.NewPostgresRepository(db)
	notifier := email.NewNotifier(cfg.Email, baseLogger.With("component", "email"))

	orchestrator := usecase.NewOrchestrator(source, classifier, cfg.Seap.PageSize,
		baseLogger.With("component", "orchestrator"))
	orchestrator.SetDelayBounds(
		time.Duration(cfg.Seap.MinDelayMs)*time.Millisecond,
		time.Duration(cfg.Seap.MaxDelayMs)*time.Millisecond)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Orchestrator: orchestrator,
		Repository:   repository,
		Notifier:     notifier,
		Logger:       baseLogger.With("component", "pipeline"),
		LinkBaseURL:  cfg.Seap.BaseURL,
		Location:     cfg.Scheduler.Location(),
	})

	daily := scheduler.NewDailyScheduler(cfg.Scheduler.Hour, cfg.Scheduler.Location(),
		baseLogger.With("component", "scheduler"))

	handler := web.NewHandler(repository, pipeline, cfg.Scheduler.Location(),
		baseLogger.With("component", "api"))
	server := web.NewServer(cfg.Server, handler, baseLogger.With("component", "http"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		scheduler: usecase.NewScheduler(daily, pipeline),
		server:    server,
	}, nil
}

// Run starts the scheduler and serves HTTP until the context is
// cancelled, then shuts both down.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.Start()
	}()

	select {
	case err := <-serveErr:
		a.shutdown(context.Background())
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.shutdown(shutdownCtx)

	return <-serveErr
}

func (a *Application) shutdown(ctx context.Context) {
	if err := a.scheduler.Stop(ctx); err != nil {
		a.logger.Error("scheduler stop failed", "error", err)
	}
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("http shutdown failed", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("database close failed", "error", err)
	}
}
