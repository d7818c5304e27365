// Package citation downloads BibTeX citations for catalog article numbers.
package citation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"JournalCrawler/internal/domain"
	"JournalCrawler/internal/ports"
	"JournalCrawler/internal/retry"
)

// Client posts article numbers to the citation download endpoint.
type Client struct {
	endpoint    string
	userAgent   string
	maxAttempts int
	http        *http.Client
	logger      *slog.Logger
}

var _ ports.CitationSource = (*Client)(nil)

// NewClient creates a citation client; a nil httpClient gets a 60s timeout.
func NewClient(endpoint, userAgent string, maxAttempts int, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		endpoint:    endpoint,
		userAgent:   userAgent,
		maxAttempts: maxAttempts,
		http:        httpClient,
		logger:      logger,
	}
}

// Citations requests citation-with-abstract BibTeX for the whole batch in
// one call. Entries come back in the order the endpoint returns them.
func (c *Client) Citations(ctx context.Context, numbers []string) ([]domain.CitationRecord, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	if c.endpoint == "" {
		return nil, fmt.Errorf("citation endpoint is not configured")
	}

	form := url.Values{}
	form.Set("recordIds", strings.Join(numbers, ","))
	form.Set("citations-format", "citation-abstract")
	form.Set("download-format", "download-bibtex")
	form.Set("fromPage", "")

	if c.logger != nil {
		c.logger.Info("request citations", "count", len(numbers))
	}

	body, err := retry.Do(ctx, c.maxAttempts, retry.IsTimeout, func(int) (string, error) {
		return c.post(ctx, form)
	})
	if err != nil {
		return nil, fmt.Errorf("download citations: %w", err)
	}

	entries, err := ParseBibTeX(normalize(body))
	if err != nil {
		return nil, fmt.Errorf("parse citations: %w", err)
	}

	records := make([]domain.CitationRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, entry.Record())
	}
	return records, nil
}

func (c *Client) post(ctx context.Context, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(payload), nil
}

// normalize turns the HTML line breaks of the download into newlines.
// Entities stay encoded until field values are cleaned.
func normalize(body string) string {
	return strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n").Replace(body)
}
