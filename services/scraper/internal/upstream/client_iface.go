package upstream

import "context"

// Scraper is the port the handlers depend on; tests swap in a fake.
type Scraper interface {
	Detail(ctx context.Context, catalogKey, id string) (*DetailResponse, error)
	Search(ctx context.Context, catalogKey, query string) (*SearchResponse, error)
}
