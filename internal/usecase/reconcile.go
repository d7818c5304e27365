package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"JournalCrawler/internal/domain"
	"JournalCrawler/internal/metrics"
	"JournalCrawler/internal/ports"
	"JournalCrawler/internal/report"
)

// Reconciler fetches citations for a batch and upserts them into the store.
type Reconciler struct {
	citations ports.CitationSource
	store     ports.ArticleStore
	logger    *slog.Logger
	metrics   *metrics.Recorder
}

// NewReconciler wires the citation source and article store.
func NewReconciler(citations ports.CitationSource, store ports.ArticleStore, logger *slog.Logger, rec *metrics.Recorder) *Reconciler {
	return &Reconciler{citations: citations, store: store, logger: logger, metrics: rec}
}

// Reconcile merges the citation record of every number into the store and
// returns the in-memory articles keyed by entry number, saved or not.
// A non-empty reportPath is truncated first and then gets one block per record.
func (r *Reconciler) Reconcile(ctx context.Context, numbers []string, reportPath string) (map[string]*domain.Article, error) {
	var rep *report.Writer
	if reportPath != "" {
		rep = report.New(reportPath)
		if err := rep.Reset(); err != nil {
			return nil, err
		}
	}

	articles := make(map[string]*domain.Article)
	if len(numbers) == 0 {
		return articles, nil
	}

	records, err := r.citations.Citations(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("fetch citations: %w", err)
	}

	requested := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		requested[n] = struct{}{}
	}

	for _, rec := range records {
		number := rec.ID

		article, existed, err := r.load(ctx, number)
		if err != nil {
			return nil, err
		}

		article.Apply(rec)
		if _, ok := requested[number]; ok {
			article.ArticleNumber = number
		}

		outcome := "created"
		if existed {
			outcome = "updated"
		}
		if err := r.store.Save(ctx, article); err != nil {
			if !errors.Is(err, ports.ErrStoreUnavailable) {
				return nil, fmt.Errorf("save article %s: %w", number, err)
			}
			outcome = "unsaved"
			logWarn(r.logger, "cannot connect to database, article will not be saved", "entry_number", number)
		} else {
			logInfo(r.logger, "article saved", "entry_number", number)
		}
		r.metrics.Article(outcome)
		articles[number] = article

		if rep != nil {
			if err := rep.Append(article); err != nil {
				return nil, err
			}
		}
	}

	return articles, nil
}

// load returns the stored article for update, or a fresh one when the store
// has none or cannot be reached.
func (r *Reconciler) load(ctx context.Context, number string) (*domain.Article, bool, error) {
	lookup, err := r.store.FindByEntryNumber(ctx, number)
	if err != nil {
		return nil, false, fmt.Errorf("lookup entry %s: %w", number, err)
	}

	if lookup.Status == domain.LookupFound {
		logInfo(r.logger, "article already exists, it will be updated", "entry_number", number)
		article := lookup.Article
		return &article, true, nil
	}

	if lookup.Status == domain.LookupUnavailable {
		logWarn(r.logger, "store unavailable during lookup", "entry_number", number)
	}
	logInfo(r.logger, "new article", "entry_number", number)
	return &domain.Article{EntryNumber: number}, false, nil
}
