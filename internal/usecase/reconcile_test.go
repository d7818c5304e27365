package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JournalCrawler/internal/domain"
)

func TestReconcileCreatesNewArticles(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := NewReconciler(citationsFor("101", "102"), store, nil, nil)

	articles, err := r.Reconcile(context.Background(), []string{"101", "102"}, "")
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Len(t, store.articles, 2)

	got := store.articles["101"]
	assert.Equal(t, "101", got.EntryNumber)
	assert.Equal(t, "101", got.ArticleNumber)
	assert.Equal(t, "Title 101", got.Title)
	assert.Equal(t, []string{"A. Smith", "B. Jones"}, got.Authors)
	assert.Equal(t, "IEEE Access", got.Journal)
	assert.Equal(t, "2017", got.Year)
	assert.Equal(t, "5", got.Volume)
	assert.Equal(t, "1", got.Number)
	assert.Equal(t, "1-10", got.Pages)
	assert.Equal(t, "Abstract 101", got.Abstract)
	assert.Equal(t, []string{"crawling", "metadata"}, got.Keywords)
	assert.Equal(t, "10.1109/ACCESS.2017.101", got.DOI)
	assert.Equal(t, "2169-3536", got.ISSN)
}

func TestReconcileUpdatesExistingInPlace(t *testing.T) {
	t.Parallel()

	store := newFakeStore(domain.Article{ID: 5, EntryNumber: "101", ArticleNumber: "101", Title: "Stale", DOI: "old"})
	r := NewReconciler(citationsFor("101"), store, nil, nil)

	articles, err := r.Reconcile(context.Background(), []string{"101"}, "")
	require.NoError(t, err)

	require.Len(t, store.articles, 1)
	assert.Equal(t, int64(5), store.articles["101"].ID)
	assert.Equal(t, "Title 101", store.articles["101"].Title)
	assert.Equal(t, "10.1109/ACCESS.2017.101", store.articles["101"].DOI)
	assert.Equal(t, int64(5), articles["101"].ID)
}

func TestReconcileStoreUnavailableKeepsInMemoryResult(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.unavailable = true
	path := filepath.Join(t.TempDir(), "report.txt")
	r := NewReconciler(citationsFor("101", "102"), store, nil, nil)

	articles, err := r.Reconcile(context.Background(), []string{"101", "102"}, path)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "Title 102", articles["102"].Title)
	assert.Zero(t, store.saves)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Entry Number: 101")
	assert.Contains(t, string(data), "Entry Number: 102")
}

func TestReconcileOtherSaveErrorsPropagate(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.saveErr = errors.New("value too long for type")
	r := NewReconciler(citationsFor("101"), store, nil, nil)

	_, err := r.Reconcile(context.Background(), []string{"101"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save article 101")
}

func TestReconcileReportFollowsCitationOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "report.txt")
	r := NewReconciler(citationsFor("101", "102"), newFakeStore(), nil, nil)

	_, err := r.Reconcile(context.Background(), []string{"101", "102", "999"}, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "Entry Number: 102\nTitle: Title 102\nAuthor A. Smith and B. Jones\nAbstract: Abstract 102\nKeyword: crawling; metadata\n\n" +
		"Entry Number: 101\nTitle: Title 101\nAuthor A. Smith and B. Jones\nAbstract: Abstract 101\nKeyword: crawling; metadata\n\n"
	assert.Equal(t, want, string(data))
}

func TestReconcileKeepsArticleNumberForUnrequestedEntries(t *testing.T) {
	t.Parallel()

	citations := &fakeCitations{records: map[string]domain.CitationRecord{
		"101": {ID: "bib-101", Title: "Renamed"},
	}}
	store := newFakeStore()
	r := NewReconciler(citations, store, nil, nil)

	articles, err := r.Reconcile(context.Background(), []string{"101"}, "")
	require.NoError(t, err)
	require.Contains(t, articles, "bib-101")
	assert.Empty(t, articles["bib-101"].ArticleNumber)
}

func TestReconcileCitationFailure(t *testing.T) {
	t.Parallel()

	citations := &fakeCitations{err: errors.New("unexpected status 500")}
	r := NewReconciler(citations, newFakeStore(), nil, nil)

	_, err := r.Reconcile(context.Background(), []string{"101"}, "")
	require.Error(t, err)
}

func TestReconcileDuplicateNumbersAreIdempotent(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := NewReconciler(citationsFor("101"), store, nil, nil)

	articles, err := r.Reconcile(context.Background(), []string{"101", "101"}, "")
	require.NoError(t, err)
	assert.Len(t, articles, 1)
	assert.Len(t, store.articles, 1)
}
