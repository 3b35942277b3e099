package metaclient

import (
	"context"

	"github.com/example/metadata-bridge/catalog"
)

// Provider is the capability set a media-server host asks of a remote
// metadata provider: fetch by external ID and search by title. Adapters
// for a concrete host plugin ABI should wrap this and nothing more.
type Provider interface {
	Name() string
	GetMetadata(ctx context.Context, id string) (MetadataResult, error)
	Search(ctx context.Context, query string) ([]catalog.SearchResult, error)
}

// MetadataResult is the outcome of one provider invocation. When
// HasMetadata is false the Entity carries no data and the host must leave
// the item unchanged.
type MetadataResult struct {
	HasMetadata bool
	Entity      MovieEntity
}

// CatalogProvider implements Provider for a single catalog descriptor.
// One parameterized type serves every catalog; adding a catalog is a new
// descriptor, not a new provider implementation.
type CatalogProvider struct {
	Catalog catalog.Catalog
	Client  *Client
}

func NewCatalogProvider(cat catalog.Catalog, client *Client) *CatalogProvider {
	return &CatalogProvider{Catalog: cat, Client: client}
}

func (p *CatalogProvider) Name() string { return p.Catalog.DisplayName }

func (p *CatalogProvider) GetMetadata(ctx context.Context, id string) (MetadataResult, error) {
	md, err := p.Client.FetchMetadata(ctx, p.Catalog.Key, id)
	if err != nil {
		return MetadataResult{}, err
	}
	if md == nil {
		return MetadataResult{}, nil
	}

	var entity MovieEntity
	MapToEntity(md, &entity)
	entity.ProviderIDs = map[string]string{p.Catalog.DisplayName: id}
	return MetadataResult{HasMetadata: true, Entity: entity}, nil
}

func (p *CatalogProvider) Search(ctx context.Context, query string) ([]catalog.SearchResult, error) {
	return p.Client.Search(ctx, p.Catalog.Key, query)
}
