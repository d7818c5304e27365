package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"JournalCrawler/internal/domain"
	"JournalCrawler/internal/metrics"
	"JournalCrawler/internal/ports"
)

const defaultPageSize = 25

// Mode selects which listing a crawl walks.
type Mode string

const (
	ModeCurrentIssue Mode = "current_issue"
	ModeEarlyAccess  Mode = "early_access"
	ModeNewArticles  Mode = "new_articles"
)

// Endpoints are the listing URLs the crawler walks.
type Endpoints struct {
	CurrentIssue string
	TOCResult    string
}

// CrawlerDeps wires all driven adapters into the journal crawler.
type CrawlerDeps struct {
	Journal    string
	Endpoints  Endpoints
	PageSize   int
	ReportDir  string
	Listings   ports.ListingSource
	Dedup      *DedupFilter
	Reconciler *Reconciler
	Notifier   ports.Notifier
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
}

// JournalCrawler discovers a journal's article numbers and reconciles them.
type JournalCrawler struct {
	journal    string
	endpoints  Endpoints
	pageSize   int
	reportDir  string
	listings   ports.ListingSource
	dedup      *DedupFilter
	reconciler *Reconciler
	notifier   ports.Notifier
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

// NewJournalCrawler constructs the crawler; PageSize defaults to 25.
func NewJournalCrawler(deps CrawlerDeps) *JournalCrawler {
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &JournalCrawler{
		journal:    deps.Journal,
		endpoints:  deps.Endpoints,
		pageSize:   pageSize,
		reportDir:  deps.ReportDir,
		listings:   deps.Listings,
		dedup:      deps.Dedup,
		reconciler: deps.Reconciler,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Run dispatches to the crawl for mode.
func (c *JournalCrawler) Run(ctx context.Context, mode Mode, toFile bool) (map[string]*domain.Article, error) {
	switch mode {
	case ModeCurrentIssue:
		return c.CurrentIssue(ctx, toFile)
	case ModeEarlyAccess:
		return c.EarlyAccess(ctx, toFile)
	case ModeNewArticles:
		return c.NewArticles(ctx, toFile)
	default:
		return nil, fmt.Errorf("unknown crawl mode %q", mode)
	}
}

// CurrentIssue reconciles every article of the most recent issue.
func (c *JournalCrawler) CurrentIssue(ctx context.Context, toFile bool) (map[string]*domain.Article, error) {
	numbers, err := c.ArticleNumbers(ctx, c.endpoints.CurrentIssue, "", false)
	if err != nil {
		return nil, err
	}
	return c.reconcile(ctx, ModeCurrentIssue, numbers, toFile)
}

// EarlyAccess reconciles every article of the early access issue.
func (c *JournalCrawler) EarlyAccess(ctx context.Context, toFile bool) (map[string]*domain.Article, error) {
	issue, err := c.listings.EarlyAccessIssue(ctx, c.journal)
	if err != nil {
		return nil, fmt.Errorf("resolve early access issue: %w", err)
	}
	logInfo(c.logger, "early access issue resolved", "issue", issue)

	numbers, err := c.ArticleNumbers(ctx, c.endpoints.TOCResult, issue, false)
	if err != nil {
		return nil, err
	}
	return c.reconcile(ctx, ModeEarlyAccess, numbers, toFile)
}

// NewArticles reconciles only the listed articles the store does not know yet.
func (c *JournalCrawler) NewArticles(ctx context.Context, toFile bool) (map[string]*domain.Article, error) {
	numbers, err := c.ArticleNumbers(ctx, c.endpoints.TOCResult, "", true)
	if err != nil {
		return nil, err
	}
	return c.reconcile(ctx, ModeNewArticles, numbers, toFile)
}

// ArticleNumbers walks every listing page of endpoint and returns the row
// article numbers in page order. A missing first page yields no numbers; a
// missing later page is skipped. Duplicates across pages are kept.
func (c *JournalCrawler) ArticleNumbers(ctx context.Context, endpoint, issue string, skipExisting bool) ([]string, error) {
	logInfo(c.logger, "obtaining article numbers", "journal", c.journal, "issue", issue, "skip_existing", skipExisting)

	params := url.Values{}
	params.Set("punumber", c.journal)
	if issue != "" {
		params.Set("isnumber", issue)
	}

	first, err := c.listings.Listing(ctx, endpoint, params)
	if errors.Is(err, ports.ErrNoDocument) {
		c.metrics.Page("skipped")
		logWarn(c.logger, "first page unavailable, nothing to crawl", "error", err)
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("page 1: %w", err)
	}
	c.metrics.Page("fetched")

	numbers, err := c.collect(ctx, nil, first.ArticleNumbers, skipExisting)
	if err != nil {
		return nil, err
	}

	pages := pageCount(first.Total, c.pageSize)
	for i := 1; i < pages; i++ {
		params.Set("pageNumber", strconv.Itoa(i+1))

		page, err := c.listings.Listing(ctx, endpoint, params)
		if errors.Is(err, ports.ErrNoDocument) {
			c.metrics.Page("skipped")
			logWarn(c.logger, "page skipped", "page", i+1, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		c.metrics.Page("fetched")

		numbers, err = c.collect(ctx, numbers, page.ArticleNumbers, skipExisting)
		if err != nil {
			return nil, err
		}
	}

	logInfo(c.logger, "article numbers obtained", "declared", first.Total, "pages", max(pages, 1), "collected", len(numbers))
	return numbers, nil
}

func (c *JournalCrawler) collect(ctx context.Context, acc, page []string, skipExisting bool) ([]string, error) {
	if !skipExisting {
		return append(acc, page...), nil
	}
	fresh, err := c.dedup.Filter(ctx, page)
	if err != nil {
		return nil, err
	}
	return append(acc, fresh...), nil
}

func (c *JournalCrawler) reconcile(ctx context.Context, mode Mode, numbers []string, toFile bool) (map[string]*domain.Article, error) {
	var reportPath string
	if toFile {
		reportPath = c.ReportPath(mode)
	}

	articles, err := c.reconciler.Reconcile(ctx, numbers, reportPath)
	if err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", mode, err)
	}
	logInfo(c.logger, "crawl finished", "mode", string(mode), "articles", len(articles))

	if c.notifier != nil && len(articles) > 0 {
		if err := c.notifier.PublishDigest(ctx, buildDigestMessage(c.journal, mode, articles)); err != nil {
			logWarn(c.logger, "publish digest failed", "error", err)
		}
	}
	return articles, nil
}

// ReportPath is <reportDir>/<journal>_<mode>.txt.
func (c *JournalCrawler) ReportPath(mode Mode) string {
	return filepath.Join(c.reportDir, fmt.Sprintf("%s_%s.txt", c.journal, mode))
}

// pageCount is ceil(total / size); zero when nothing is declared.
func pageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

func buildDigestMessage(journal string, mode Mode, articles map[string]*domain.Article) string {
	keys := make([]string, 0, len(articles))
	for k := range articles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "Journal %s, %s: %d articles\n\n", journal, strings.ReplaceAll(string(mode), "_", " "), len(articles))
	for _, k := range keys {
		a := articles[k]
		fmt.Fprintf(&b, "- %s\n%s\n", a.Title, strings.Join(a.Authors, ", "))
		if a.DOI != "" {
			fmt.Fprintf(&b, "https://doi.org/%s\n", a.DOI)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func logInfo(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

func logWarn(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}
