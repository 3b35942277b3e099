// Package metaclient is the in-host SDK for the scraper service. Media-server
// plugins embed a Client per backend instance and a CatalogProvider per
// catalog; everything here is safe for concurrent use.
package metaclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/metadata-bridge/catalog"
)

// DefaultTokenHeader carries the shared secret when authentication is enabled.
const DefaultTokenHeader = "X-API-Token"

const maxResponseBytes = 1 << 20

// ErrUnavailable marks transport failures, timeouts and non-2xx statuses.
// Callers must not treat it as "this title has no metadata".
var ErrUnavailable = errors.New("metaclient: backend unavailable")

// ErrMalformed marks 2xx responses whose body is not a valid metadata
// object (bad JSON or missing Title).
var ErrMalformed = errors.New("metaclient: malformed response")

// Config holds configurable settings for the Client.
type Config struct {
	// Token, when non-empty, is attached to every request.
	Token string
	// TokenHeader defaults to DefaultTokenHeader.
	TokenHeader string
	// Timeout bounds each request. Defaults to 60s, matching the backend.
	Timeout time.Duration
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Config     Config
	Links      *LinkStore
	Log        *zap.Logger
}

// Option configures the Client.
type Option func(*Client)

func WithLinkStore(s *LinkStore) Option {
	return func(c *Client) { c.Links = s }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.Log = log }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTPClient = h }
}

func New(baseURL string, cfg Config, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8585"
	}
	if cfg.TokenHeader == "" {
		cfg.TokenHeader = DefaultTokenHeader
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Config:     cfg,
		Links:      NewLinkStore(),
		Log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchMetadata retrieves metadata for one work.
//
// A nil *catalog.Metadata with a nil error means "no metadata": the ID was
// blank (no request is issued) or the backend answered 404. Any transport
// failure, timeout, non-2xx status or unparseable body returns a non-nil
// error instead, so callers can tell failure from legitimate absence.
func (c *Client) FetchMetadata(ctx context.Context, catalogKey, id string) (*catalog.Metadata, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	cat, ok := catalog.ByKey(catalogKey)
	if !ok {
		return nil, fmt.Errorf("metaclient: unknown catalog %q", catalogKey)
	}

	endpoint := c.BaseURL + "/api/" + cat.Key + "/" + url.PathEscape(id)
	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: status %d body=%q", ErrUnavailable, status, truncate(body))
	}

	var md catalog.Metadata
	if err := json.Unmarshal(body, &md); err != nil {
		return nil, fmt.Errorf("%w: decode: %v body=%q", ErrMalformed, err, truncate(body))
	}
	if strings.TrimSpace(md.Title) == "" {
		return nil, fmt.Errorf("%w: missing Title", ErrMalformed)
	}

	c.recordLink(cat, id, &md)
	return &md, nil
}

// Search queries one catalog by title. A blank query returns an empty
// result without issuing a request.
func (c *Client) Search(ctx context.Context, catalogKey, query string) ([]catalog.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	cat, ok := catalog.ByKey(catalogKey)
	if !ok {
		return nil, fmt.Errorf("metaclient: unknown catalog %q", catalogKey)
	}

	endpoint := c.BaseURL + "/api/" + cat.Key + "/search?q=" + url.QueryEscape(query)
	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: status %d body=%q", ErrUnavailable, status, truncate(body))
	}

	var out catalog.SearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v body=%q", ErrMalformed, err, truncate(body))
	}
	return out.Results, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if c.Config.Token != "" {
		req.Header.Set(c.Config.TokenHeader, c.Config.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// Keep cancellation distinguishable from backend trouble.
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	return b, resp.StatusCode, nil
}

// recordLink remembers the canonical source URL for the fetched ID.
// The backend's SourceUrl wins when present; otherwise the catalog's
// template reconstructs it.
func (c *Client) recordLink(cat catalog.Catalog, id string, md *catalog.Metadata) {
	if c.Links == nil {
		return
	}
	link := cat.SourceURL(id)
	if md.SourceURL != nil && strings.TrimSpace(*md.SourceURL) != "" {
		link = *md.SourceURL
	}
	c.Links.Upsert(cat.Key, id, link)
}

func truncate(b []byte) string {
	const n = 200
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
