package ports

import (
	"context"
	"errors"
	"net/url"
	"time"

	"JournalCrawler/internal/domain"
)

var (
	// ErrStoreUnavailable marks failures caused by an unreachable article store.
	ErrStoreUnavailable = errors.New("article store unavailable")
	// ErrNoDocument signals a listing page that could not be retrieved.
	ErrNoDocument = errors.New("no document")
)

// ListingSource fetches and parses catalog listing pages.
type ListingSource interface {
	// Listing returns ErrNoDocument when the page could not be retrieved.
	Listing(ctx context.Context, endpoint string, params url.Values) (domain.ListingPage, error)
	EarlyAccessIssue(ctx context.Context, journal string) (string, error)
}

// CitationSource resolves article numbers into citation records.
type CitationSource interface {
	Citations(ctx context.Context, numbers []string) ([]domain.CitationRecord, error)
}

// ArticleStore persists reconciled articles.
// Lookups report an unreachable store as domain.LookupUnavailable instead of an error.
type ArticleStore interface {
	FindByArticleNumber(ctx context.Context, number string) (domain.Lookup, error)
	FindByEntryNumber(ctx context.Context, entry string) (domain.Lookup, error)
	Save(ctx context.Context, article *domain.Article) error
}

// Notifier streams crawl digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when crawls execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
