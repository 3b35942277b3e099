package upstream

import (
	"errors"
	"strings"
	"time"

	"github.com/example/metadata-bridge/catalog"
)

// ErrMissingTitle reports a scrape result without a usable title. The
// wire contract requires Title, so such a record is unusable.
var ErrMissingTitle = errors.New("upstream: record has no title")

// ToMetadata converts one scrape result into the wire metadata object.
// Zero-valued upstream fields are treated as unknown and omitted, so the
// client's no-overwrite mapping sees them as absent.
func ToMetadata(cat catalog.Catalog, id string, d *DetailResponse) (*catalog.Metadata, error) {
	title := strings.TrimSpace(d.Data.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}

	md := &catalog.Metadata{Title: title}

	if desc := strings.TrimSpace(d.Data.Description); desc != "" {
		md.Description = &desc
	}
	if d.Data.Year > 0 {
		year := d.Data.Year
		md.Year = &year
	}
	if d.Data.Rating > 0 {
		rating := d.Data.Rating
		md.Rating = &rating
	}
	if raw := strings.TrimSpace(d.Data.ReleaseDate); raw != "" {
		if rel, err := time.Parse("2006-01-02", raw); err == nil {
			md.ReleaseDate = &rel
		}
	}
	if cover := strings.TrimSpace(d.Data.CoverURL); cover != "" {
		md.PrimaryImageURL = &cover
	}

	md.Genres = trimAll(d.Data.Genres)
	md.Studios = trimAll(d.Data.Studios)
	md.Series = trimAll(d.Data.Series)
	for _, p := range d.Data.People {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		md.People = append(md.People, catalog.Person{Name: name, Role: strings.TrimSpace(p.Role)})
	}

	src := cat.SourceURL(id)
	md.SourceURL = &src
	return md, nil
}

// ToSearchResults converts a scrape search page into wire search results.
func ToSearchResults(resp *SearchResponse) []catalog.SearchResult {
	out := make([]catalog.SearchResult, 0, len(resp.Data.Results))
	for _, r := range resp.Data.Results {
		title := strings.TrimSpace(r.Title)
		if r.ID == "" || title == "" {
			continue
		}
		item := catalog.SearchResult{ID: r.ID, Title: title}
		if r.Year > 0 {
			year := r.Year
			item.Year = &year
		}
		if cover := strings.TrimSpace(r.CoverURL); cover != "" {
			item.PrimaryImageURL = &cover
		}
		out = append(out, item)
	}
	return out
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
