package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"JournalCrawler/internal/domain"
	"JournalCrawler/internal/metrics"
	"JournalCrawler/internal/ports"
	"JournalCrawler/internal/retry"
)

const defaultMaxAttempts = 10

// ErrNoDocument signals that a page could not be retrieved: every attempt
// timed out or the catalog answered with an error status.
var ErrNoDocument = ports.ErrNoDocument

// Client fetches catalog pages over HTTP and parses them with goquery.
type Client struct {
	client         *http.Client
	userAgent      string
	maxAttempts    int
	recentIssueURL string
	logger         *slog.Logger
	metrics        *metrics.Recorder
}

var _ ports.ListingSource = (*Client)(nil)

// Options configures a Client.
type Options struct {
	HTTPClient     *http.Client
	UserAgent      string
	MaxAttempts    int
	RecentIssueURL string
	Logger         *slog.Logger
	Metrics        *metrics.Recorder
}

// NewClient wires an HTTP client; MaxAttempts defaults to 10.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	return &Client{
		client:         client,
		userAgent:      opts.UserAgent,
		maxAttempts:    attempts,
		recentIssueURL: opts.RecentIssueURL,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
	}
}

// Listing fetches one listing page. The first page yields the declared total
// and its rows; later pages only their rows, with Total left at zero.
func (c *Client) Listing(ctx context.Context, endpoint string, params url.Values) (domain.ListingPage, error) {
	doc, err := c.FetchDocument(ctx, endpoint, params)
	if err != nil {
		return domain.ListingPage{}, err
	}
	if page := params.Get("pageNumber"); page != "" && page != "1" {
		numbers, err := RowArticleNumbers(doc)
		if err != nil {
			return domain.ListingPage{}, err
		}
		return domain.ListingPage{ArticleNumbers: numbers}, nil
	}
	return ParseListing(doc)
}

// EarlyAccessIssue resolves the issue number that holds the journal's early access articles.
func (c *Client) EarlyAccessIssue(ctx context.Context, journal string) (string, error) {
	params := url.Values{}
	params.Set("punumber", journal)

	doc, err := c.FetchDocument(ctx, c.recentIssueURL, params)
	if err != nil {
		return "", fmt.Errorf("recent issue page: %w", err)
	}
	return ParseIssueNumber(doc)
}

// FetchDocument issues a GET with the given query, retrying timeouts up to
// the attempt ceiling. Exhaustion and error statuses yield ErrNoDocument;
// any other transport error is returned as is.
func (c *Client) FetchDocument(ctx context.Context, endpoint string, params url.Values) (*goquery.Document, error) {
	pageURL, err := buildPageURL(endpoint, params)
	if err != nil {
		return nil, err
	}

	page := params.Get("pageNumber")
	if page == "" {
		page = "1"
	}

	doc, err := retry.Do(ctx, c.maxAttempts, retry.IsTimeout, func(attempt int) (*goquery.Document, error) {
		c.info("fetch page", "url", endpoint, "page", page, "attempt", attempt)
		c.metrics.FetchAttempt()
		return c.get(ctx, pageURL)
	})
	if errors.Is(err, retry.ErrExhausted) {
		c.info("timeout", "url", endpoint, "page", page, "attempts", c.maxAttempts)
		return nil, fmt.Errorf("%w: %w", ErrNoDocument, err)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: catalog returned %s", ErrNoDocument, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func buildPageURL(base string, params url.Values) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid catalog url %s: %w", base, err)
	}

	query := parsed.Query()
	for key, values := range params {
		query[key] = append([]string(nil), values...)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (c *Client) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}
