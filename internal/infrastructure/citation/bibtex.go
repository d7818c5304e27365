package citation

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nickng/bibtex"

	"JournalCrawler/internal/domain"
)

// Entry is one parsed BibTeX entry with lower-cased field names.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]string
}

var trailingFieldComma = regexp.MustCompile(`,(\s*\}\s*(?:@|$))`)

// ParseBibTeX parses every @type{key, field = {value}, ...} entry in src.
// Text before the first entry is ignored.
func ParseBibTeX(src string) ([]Entry, error) {
	at := strings.IndexByte(src, '@')
	if at < 0 {
		return nil, nil
	}
	src = trailingFieldComma.ReplaceAllString(src[at:], "$1")

	parsed, err := bibtex.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("bibtex: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Entries))
	for _, be := range parsed.Entries {
		entry := Entry{
			Type:   strings.ToLower(be.Type),
			Key:    strings.TrimSpace(be.CiteName),
			Fields: make(map[string]string, len(be.Fields)),
		}
		for name, value := range be.Fields {
			if value == nil {
				continue
			}
			entry.Fields[strings.ToLower(name)] = cleanValue(value.String())
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// cleanValue drops grouping braces, then decodes HTML entities so escaped
// braces in the text survive as literal characters.
func cleanValue(v string) string {
	v = strings.NewReplacer("{", "", "}", "").Replace(v)
	return html.UnescapeString(strings.Join(strings.Fields(v), " "))
}

// Record maps a parsed entry onto a citation record.
func (e Entry) Record() domain.CitationRecord {
	keywords := e.Fields["keywords"]
	if keywords == "" {
		keywords = e.Fields["keyword"]
	}
	return domain.CitationRecord{
		ID:       e.Key,
		Title:    e.Fields["title"],
		Authors:  splitList(e.Fields["author"], " and "),
		Journal:  e.Fields["journal"],
		Year:     e.Fields["year"],
		Volume:   e.Fields["volume"],
		Number:   e.Fields["number"],
		Pages:    e.Fields["pages"],
		Abstract: e.Fields["abstract"],
		Keywords: splitList(keywords, ";"),
		DOI:      e.Fields["doi"],
		ISSN:     e.Fields["issn"],
	}
}

func splitList(v, sep string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
