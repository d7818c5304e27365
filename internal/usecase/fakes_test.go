package usecase

import (
	"context"
	"fmt"
	"net/url"

	"JournalCrawler/internal/domain"
	"JournalCrawler/internal/ports"
)

type fakeListings struct {
	pages    map[string]domain.ListingPage
	errs     map[string]error
	issue    string
	issueErr error

	calls    []string
	params   []url.Values
	journals []string
}

func (f *fakeListings) Listing(_ context.Context, _ string, params url.Values) (domain.ListingPage, error) {
	page := params.Get("pageNumber")
	if page == "" {
		page = "1"
	}
	f.calls = append(f.calls, page)

	snapshot := url.Values{}
	for k, v := range params {
		snapshot[k] = append([]string(nil), v...)
	}
	f.params = append(f.params, snapshot)

	if err, ok := f.errs[page]; ok {
		return domain.ListingPage{}, err
	}
	return f.pages[page], nil
}

func (f *fakeListings) EarlyAccessIssue(_ context.Context, journal string) (string, error) {
	f.journals = append(f.journals, journal)
	return f.issue, f.issueErr
}

type fakeStore struct {
	articles    map[string]domain.Article
	unavailable bool
	saveErr     error
	nextID      int64
	saves       int
}

func newFakeStore(existing ...domain.Article) *fakeStore {
	s := &fakeStore{articles: map[string]domain.Article{}, nextID: 100}
	for _, a := range existing {
		s.articles[a.EntryNumber] = a
	}
	return s
}

func (s *fakeStore) FindByArticleNumber(_ context.Context, number string) (domain.Lookup, error) {
	if s.unavailable {
		return domain.Lookup{Status: domain.LookupUnavailable}, nil
	}
	for _, a := range s.articles {
		if a.ArticleNumber == number {
			return domain.Lookup{Status: domain.LookupFound, Article: a}, nil
		}
	}
	return domain.Lookup{Status: domain.LookupNotFound}, nil
}

func (s *fakeStore) FindByEntryNumber(_ context.Context, entry string) (domain.Lookup, error) {
	if s.unavailable {
		return domain.Lookup{Status: domain.LookupUnavailable}, nil
	}
	if a, ok := s.articles[entry]; ok {
		return domain.Lookup{Status: domain.LookupFound, Article: a}, nil
	}
	return domain.Lookup{Status: domain.LookupNotFound}, nil
}

func (s *fakeStore) Save(_ context.Context, a *domain.Article) error {
	if s.unavailable {
		return fmt.Errorf("upsert article: %w", ports.ErrStoreUnavailable)
	}
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	if a.ID == 0 {
		s.nextID++
		a.ID = s.nextID
	}
	s.articles[a.EntryNumber] = *a
	return nil
}

// fakeCitations answers in reverse request order and drops unknown numbers.
type fakeCitations struct {
	records map[string]domain.CitationRecord
	err     error
	batches [][]string
}

func (f *fakeCitations) Citations(_ context.Context, numbers []string) ([]domain.CitationRecord, error) {
	f.batches = append(f.batches, append([]string(nil), numbers...))
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.CitationRecord
	for i := len(numbers) - 1; i >= 0; i-- {
		if rec, ok := f.records[numbers[i]]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func citationsFor(ids ...string) *fakeCitations {
	f := &fakeCitations{records: map[string]domain.CitationRecord{}}
	for _, id := range ids {
		f.records[id] = domain.CitationRecord{
			ID:       id,
			Title:    "Title " + id,
			Authors:  []string{"A. Smith", "B. Jones"},
			Journal:  "IEEE Access",
			Year:     "2017",
			Volume:   "5",
			Number:   "1",
			Pages:    "1-10",
			Abstract: "Abstract " + id,
			Keywords: []string{"crawling", "metadata"},
			DOI:      "10.1109/ACCESS.2017." + id,
			ISSN:     "2169-3536",
		}
	}
	return f
}

type fakeNotifier struct {
	digests []string
	err     error
}

func (n *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return n.err
}

func numbers(prefix string, from, count int) []string {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, fmt.Sprintf("%s%d", prefix, from+i))
	}
	return out
}
