// Package catalog defines the supported external content catalogs and the
// wire types exchanged between the metadata client and the scraper service.
package catalog

import "strings"

// Catalog describes one external content source. All catalog-specific
// behaviour in the system is driven by these descriptors; there is no
// per-catalog code path.
type Catalog struct {
	// Key is the lowercase path segment used in API URLs, e.g. "hanime".
	Key string
	// DisplayName is the provider name shown to media-server users.
	DisplayName string
	// SourceURLTemplate reconstructs the canonical public page for an ID.
	// The single {0} placeholder is substituted with the catalog-native ID.
	SourceURLTemplate string
}

// SourceURL substitutes id into the catalog's URL template.
func (c Catalog) SourceURL(id string) string {
	return strings.ReplaceAll(c.SourceURLTemplate, "{0}", id)
}

var (
	Hanime = Catalog{
		Key:               "hanime",
		DisplayName:       "Hanime",
		SourceURLTemplate: "https://hanime1.me/watch?v={0}",
	}
	DLsite = Catalog{
		Key:               "dlsite",
		DisplayName:       "DLsite",
		SourceURLTemplate: "https://www.dlsite.com/maniax/work/=/product_id/{0}.html",
	}
)

var registry = []Catalog{Hanime, DLsite}

// All returns the supported catalogs in registration order.
func All() []Catalog {
	out := make([]Catalog, len(registry))
	copy(out, registry)
	return out
}

// ByKey looks up a catalog by its key, case-insensitively.
func ByKey(key string) (Catalog, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, c := range registry {
		if c.Key == key {
			return c, true
		}
	}
	return Catalog{}, false
}
