package domain

import "time"

// ListingPage is one parsed page of catalog search results.
type ListingPage struct {
	Total          int
	ArticleNumbers []string
}

// CitationRecord holds the bibliographic fields returned for one article number.
type CitationRecord struct {
	ID       string
	Title    string
	Authors  []string
	Journal  string
	Year     string
	Volume   string
	Number   string
	Pages    string
	Abstract string
	Keywords []string
	DOI      string
	ISSN     string
}

// Article is the persisted representation keyed by EntryNumber.
// ArticleNumber is the discovery-time key used for deduplication.
type Article struct {
	ID            int64
	EntryNumber   string
	ArticleNumber string
	Title         string
	Authors       []string
	Journal       string
	Year          string
	Volume        string
	Number        string
	Pages         string
	Abstract      string
	Keywords      []string
	DOI           string
	ISSN          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Apply overwrites every bibliographic field from the citation record.
func (a *Article) Apply(rec CitationRecord) {
	a.Title = rec.Title
	a.Authors = append([]string(nil), rec.Authors...)
	a.Journal = rec.Journal
	a.Year = rec.Year
	a.Volume = rec.Volume
	a.Number = rec.Number
	a.Pages = rec.Pages
	a.Abstract = rec.Abstract
	a.Keywords = append([]string(nil), rec.Keywords...)
	a.DOI = rec.DOI
	a.ISSN = rec.ISSN
}

// LookupStatus distinguishes a missing record from an unreachable store.
type LookupStatus int

const (
	LookupNotFound LookupStatus = iota
	LookupFound
	LookupUnavailable
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupUnavailable:
		return "unavailable"
	default:
		return "not_found"
	}
}

// Lookup is the result of a point query against the article store.
type Lookup struct {
	Status  LookupStatus
	Article Article
}
