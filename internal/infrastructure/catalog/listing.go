// Package catalog talks to the IEEE Xplore listing pages.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"JournalCrawler/internal/domain"
)

const (
	resultCountSelector = "#results-blk .results-display b"
	resultRowSelector   = "#results-blk .results li"
	rowNumberAttr       = "aria-describedby"
	issueLinkSelector   = "#nav-article li"
)

// ErrPageContract reports a page whose structure no longer matches the
// expected layout. Retrying cannot fix it.
var ErrPageContract = errors.New("page layout mismatch")

// ParseListing extracts the declared total and the row article numbers.
func ParseListing(doc *goquery.Document) (domain.ListingPage, error) {
	total, err := TotalResults(doc)
	if err != nil {
		return domain.ListingPage{}, err
	}
	numbers, err := RowArticleNumbers(doc)
	if err != nil {
		return domain.ListingPage{}, err
	}
	return domain.ListingPage{Total: total, ArticleNumbers: numbers}, nil
}

// TotalResults reads the result count from the second bold element of the summary.
func TotalResults(doc *goquery.Document) (int, error) {
	sel := doc.Find(resultCountSelector).Eq(1)
	if sel.Length() == 0 {
		return 0, fmt.Errorf("%w: result count element missing", ErrPageContract)
	}

	raw := strings.ReplaceAll(strings.TrimSpace(sel.Text()), ",", "")
	total, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: result count %q: %w", ErrPageContract, raw, err)
	}
	return total, nil
}

// RowArticleNumbers returns the article number of every result row in page order.
func RowArticleNumbers(doc *goquery.Document) ([]string, error) {
	rows := doc.Find(resultRowSelector)
	numbers := make([]string, 0, rows.Length())

	var rowErr error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		attr, ok := row.Attr(rowNumberAttr)
		if !ok {
			rowErr = fmt.Errorf("%w: row %d has no %s", ErrPageContract, i, rowNumberAttr)
			return false
		}
		number, err := articleNumberFromAttr(attr)
		if err != nil {
			rowErr = fmt.Errorf("row %d: %w", i, err)
			return false
		}
		numbers = append(numbers, number)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return numbers, nil
}

// articleNumberFromAttr turns "art-abs-title-7812345 ..." into "7812345".
func articleNumberFromAttr(attr string) (string, error) {
	fields := strings.Fields(attr)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty %s", ErrPageContract, rowNumberAttr)
	}
	parts := strings.Split(fields[0], "-")
	if len(parts) < 4 || parts[3] == "" {
		return "", fmt.Errorf("%w: unexpected %s %q", ErrPageContract, rowNumberAttr, attr)
	}
	return parts[3], nil
}

// ParseIssueNumber reads the issue number from the third navigation link.
func ParseIssueNumber(doc *goquery.Document) (string, error) {
	href, ok := doc.Find(issueLinkSelector).Eq(2).Find("a").First().Attr("href")
	if !ok {
		return "", fmt.Errorf("%w: early access link missing", ErrPageContract)
	}

	segments := strings.Split(href, "=")
	if len(segments) < 2 {
		return "", fmt.Errorf("%w: early access link %q has no parameter", ErrPageContract, href)
	}
	issue, _, _ := strings.Cut(segments[1], "&")
	if issue == "" {
		return "", fmt.Errorf("%w: early access link %q has empty parameter", ErrPageContract, href)
	}
	return issue, nil
}
