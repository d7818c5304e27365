// Package report writes the plain-text crawl report.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"JournalCrawler/internal/domain"
)

// Writer appends one block per reconciled article. The file is reopened for
// every write so progress is on disk even if the crawl dies midway.
type Writer struct {
	path string
}

// New returns a writer for path; nothing is touched until Reset or Append.
func New(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the report location.
func (w *Writer) Path() string {
	return w.path
}

// Reset creates the file (and its directory) or truncates it to empty.
func (w *Writer) Reset() error {
	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(w.path, nil, 0o644); err != nil {
		return fmt.Errorf("truncate report: %w", err)
	}
	return nil
}

// Append writes the article block to the end of the report.
func (w *Writer) Append(article *domain.Article) error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}

	if _, err := f.WriteString(Block(article)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}

// Block renders the report entry for one article.
func Block(article *domain.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entry Number: %s\n", article.EntryNumber)
	fmt.Fprintf(&b, "Title: %s\n", article.Title)
	fmt.Fprintf(&b, "Author %s\n", strings.Join(article.Authors, " and "))
	fmt.Fprintf(&b, "Abstract: %s\n", article.Abstract)
	fmt.Fprintf(&b, "Keyword: %s\n", strings.Join(article.Keywords, "; "))
	b.WriteString("\n")
	return b.String()
}
