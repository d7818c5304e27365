// Package metrics exposes Prometheus collectors for a single crawl run.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder owns a private registry so repeated runs in one process never
// collide on collector registration. A nil *Recorder is a valid no-op.
type Recorder struct {
	registry *prometheus.Registry

	fetchAttempts    prometheus.Counter
	pages            *prometheus.CounterVec
	articles         *prometheus.CounterVec
	duplicateSkipped prometheus.Counter
}

// New registers the crawler collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetchAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journalcrawler_fetch_attempts_total",
			Help: "HTTP attempts issued against catalog endpoints, retries included.",
		}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journalcrawler_listing_pages_total",
			Help: "Listing pages processed, labeled by outcome.",
		}, []string{"status"}),
		articles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journalcrawler_articles_total",
			Help: "Reconciled articles, labeled by outcome.",
		}, []string{"outcome"}),
		duplicateSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journalcrawler_existing_skipped_total",
			Help: "Article numbers dropped because they already exist in the store.",
		}),
	}
	r.registry.MustRegister(r.fetchAttempts, r.pages, r.articles, r.duplicateSkipped)
	return r
}

// Registry exposes the underlying registry (tests, custom exporters).
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// FetchAttempt counts one HTTP attempt.
func (r *Recorder) FetchAttempt() {
	if r == nil {
		return
	}
	r.fetchAttempts.Inc()
}

// Page counts a listing page as "fetched" or "skipped".
func (r *Recorder) Page(status string) {
	if r == nil {
		return
	}
	r.pages.WithLabelValues(status).Inc()
}

// Article counts a reconciled article as "created", "updated" or "unsaved".
func (r *Recorder) Article(outcome string) {
	if r == nil {
		return
	}
	r.articles.WithLabelValues(outcome).Inc()
}

// ExistingSkipped counts one deduplicated article number.
func (r *Recorder) ExistingSkipped() {
	if r == nil {
		return
	}
	r.duplicateSkipped.Inc()
}

// Push sends the current values to a Prometheus Pushgateway.
func (r *Recorder) Push(ctx context.Context, gatewayURL, job string) error {
	if r == nil || gatewayURL == "" {
		return nil
	}
	if err := push.New(gatewayURL, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
