package usecase

import (
	"context"
	"log/slog"
	"time"

	"JournalCrawler/internal/ports"
)

// Scheduler runs one crawl mode every time the driver fires.
type Scheduler struct {
	driver  ports.Scheduler
	crawler *JournalCrawler
	mode    Mode
	toFile  bool
	logger  *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring crawls.
func NewScheduler(driver ports.Scheduler, crawler *JournalCrawler, mode Mode, toFile bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, crawler: crawler, mode: mode, toFile: toFile, logger: logger}
}

// Start registers the crawl with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.crawler == nil {
		return nil
	}

	job := func(trigger time.Time) {
		logInfo(s.logger, "scheduled crawl", "mode", string(s.mode), "trigger", trigger.Format(time.RFC3339))
		if _, err := s.crawler.Run(ctx, s.mode, s.toFile); err != nil && s.logger != nil {
			s.logger.Error("scheduled crawl failed", "mode", string(s.mode), "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
