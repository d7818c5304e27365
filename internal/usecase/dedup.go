package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"JournalCrawler/internal/domain"
	"JournalCrawler/internal/metrics"
	"JournalCrawler/internal/ports"
)

// DedupFilter drops article numbers that already exist in the store.
type DedupFilter struct {
	store   ports.ArticleStore
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewDedupFilter wires the store used for existence checks.
func NewDedupFilter(store ports.ArticleStore, logger *slog.Logger, rec *metrics.Recorder) *DedupFilter {
	return &DedupFilter{store: store, logger: logger, metrics: rec}
}

// Filter keeps, in order, the numbers with no stored article. An unreachable
// store keeps the candidate so new items are never lost to an outage.
func (f *DedupFilter) Filter(ctx context.Context, numbers []string) ([]string, error) {
	if f == nil || f.store == nil {
		return numbers, nil
	}

	kept := make([]string, 0, len(numbers))
	for _, number := range numbers {
		lookup, err := f.store.FindByArticleNumber(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("lookup article %s: %w", number, err)
		}

		switch lookup.Status {
		case domain.LookupFound:
			f.metrics.ExistingSkipped()
			logInfo(f.logger, "article already exists, skipped", "article_number", number)
		case domain.LookupUnavailable:
			logWarn(f.logger, "store unavailable, keeping article", "article_number", number)
			kept = append(kept, number)
		default:
			kept = append(kept, number)
		}
	}
	return kept, nil
}
