package catalog

import "time"

// Person is one credited person on a work.
type Person struct {
	Name string `json:"Name"`
	Role string `json:"Role,omitempty"`
}

// Metadata is the scrape result for a single work. Title is the only
// required field; every other field is a pointer or slice so that an
// absent key means "unknown" rather than "empty". The PascalCase JSON
// keys are the wire contract consumed by existing media-server plugins
// and must not change.
type Metadata struct {
	Title           string     `json:"Title"`
	Description     *string    `json:"Description,omitempty"`
	Year            *int       `json:"Year,omitempty"`
	Rating          *float64   `json:"Rating,omitempty"`
	ReleaseDate     *time.Time `json:"ReleaseDate,omitempty"`
	PrimaryImageURL *string    `json:"PrimaryImageUrl,omitempty"`
	Genres          []string   `json:"Genres,omitempty"`
	Studios         []string   `json:"Studios,omitempty"`
	Series          []string   `json:"Series,omitempty"`
	People          []Person   `json:"People,omitempty"`
	SourceURL       *string    `json:"SourceUrl,omitempty"`
}

// SearchResult is one entry returned by a catalog search.
type SearchResult struct {
	ID              string  `json:"Id"`
	Title           string  `json:"Title"`
	Year            *int    `json:"Year,omitempty"`
	PrimaryImageURL *string `json:"PrimaryImageUrl,omitempty"`
}

// SearchResponse wraps search results on the wire.
type SearchResponse struct {
	Results []SearchResult `json:"Results"`
}
