package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"JournalCrawler/internal/config"
	"JournalCrawler/internal/domain"
	"JournalCrawler/internal/infrastructure/catalog"
	"JournalCrawler/internal/infrastructure/citation"
	"JournalCrawler/internal/infrastructure/scheduler"
	"JournalCrawler/internal/infrastructure/storage"
	"JournalCrawler/internal/infrastructure/telegram"
	"JournalCrawler/internal/logging"
	"JournalCrawler/internal/metrics"
	"JournalCrawler/internal/ports"
	"JournalCrawler/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *storage.PostgresRepository
	metrics *metrics.Recorder
	crawler *usecase.JournalCrawler
}

// New builds the crawler and its adapters. Every application instance gets
// its own run_id on the logger and a fresh metrics registry.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	logger := baseLogger.With("run_id", uuid.NewString(), "journal", cfg.Journal)
	rec := metrics.New()

	httpClient := &http.Client{Timeout: cfg.Catalog.Timeout()}

	listings := catalog.NewClient(catalog.Options{
		HTTPClient:     httpClient,
		UserAgent:      cfg.Catalog.UserAgent,
		MaxAttempts:    cfg.Crawler.MaxAttempts,
		RecentIssueURL: cfg.Catalog.RecentIssueURL,
		Logger:         logger.With("component", "catalog"),
		Metrics:        rec,
	})
	citations := citation.NewClient(
		cfg.Catalog.CitationURL,
		cfg.Catalog.UserAgent,
		cfg.Crawler.MaxAttempts,
		httpClient,
		logger.With("component", "citation"),
	)

	store, err := storage.NewPostgresRepository(ctx, cfg.Database.DSN, cfg.Database.Table, cfg.Database.MaxConns)
	if err != nil {
		return nil, err
	}
	if cfg.Database.EnsureSchema {
		if err := store.EnsureSchema(ctx); err != nil {
			if !errors.Is(err, ports.ErrStoreUnavailable) {
				store.Close()
				return nil, err
			}
			logger.Warn("cannot connect to database, schema not ensured", "error", err)
		}
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	crawler := usecase.NewJournalCrawler(usecase.CrawlerDeps{
		Journal: cfg.Journal,
		Endpoints: usecase.Endpoints{
			CurrentIssue: cfg.Catalog.CurrentIssueURL,
			TOCResult:    cfg.Catalog.TOCResultURL,
		},
		PageSize:   cfg.Crawler.PageSize,
		ReportDir:  cfg.Crawler.ReportDir,
		Listings:   listings,
		Dedup:      usecase.NewDedupFilter(store, logger.With("component", "dedup"), rec),
		Reconciler: usecase.NewReconciler(citations, store, logger.With("component", "reconciler"), rec),
		Notifier:   notifier,
		Metrics:    rec,
		Logger:     logger.With("component", "crawler"),
	})

	return &Application{cfg: cfg, logger: logger, store: store, metrics: rec, crawler: crawler}, nil
}

// RunOnce performs a single crawl in mode and pushes the run's metrics.
func (a *Application) RunOnce(ctx context.Context, mode usecase.Mode, toFile bool) (map[string]*domain.Article, error) {
	articles, err := a.crawler.Run(ctx, mode, toFile)
	a.pushMetrics(ctx)
	if err != nil {
		return nil, err
	}
	if toFile {
		a.logger.Info("report written", "path", a.crawler.ReportPath(mode))
	}
	return articles, nil
}

// Watch crawls for new articles now and then on every scheduler interval
// until ctx is cancelled.
func (a *Application) Watch(ctx context.Context, toFile bool) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Every())
	sched := usecase.NewScheduler(driver, a.crawler, usecase.ModeNewArticles, toFile, a.logger.With("component", "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching for new articles", "interval", a.cfg.Scheduler.Every().String())

	<-ctx.Done()
	a.logger.Info("watch stopping")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Catalog.Timeout())
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	a.pushMetrics(stopCtx)
	return nil
}

// Close releases the database pool.
func (a *Application) Close() {
	if a == nil {
		return
	}
	a.store.Close()
}

func (a *Application) pushMetrics(ctx context.Context) {
	if err := a.metrics.Push(ctx, a.cfg.Metrics.PushgatewayURL, a.cfg.Metrics.Job); err != nil {
		a.logger.Warn("metrics push failed", "error", err)
	}
}
