// Package upstream talks to the scrape API that does the actual site
// parsing. One parameterized client serves every catalog; the catalog key
// is just a path segment.
package upstream

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrNotFound reports that the upstream has no entry for the requested ID.
// It is never retried.
var ErrNotFound = errors.New("upstream: not found")

// ClientConfig holds configurable settings for the scrape API client.
type ClientConfig struct {
	UserAgent      string
	MaxRetries     int
	RetryBaseDelay time.Duration
	RequestTimeout time.Duration
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Config     ClientConfig
	CB         *gobreaker.CircuitBreaker
	Log        *zap.Logger
}

// Option configures the Client.
type Option func(*Client)

func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) { c.CB = cb }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.Log = log }
}

func New(baseURL string, cfg ClientConfig, opts ...Option) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:146.0) Gecko/20100101 Firefox/146.0"
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
		Config:     cfg,
		Log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// DetailData is the scrape API's per-work payload. Zero values mean the
// scraper could not find that field on the page.
type DetailData struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Year        int      `json:"year"`
	Rating      float64  `json:"rating"`
	ReleaseDate string   `json:"releaseDate"` // YYYY-MM-DD
	CoverURL    string   `json:"coverUrl"`
	Genres      []string `json:"genres"`
	Studios     []string `json:"studios"`
	Series      []string `json:"series"`
	People      []struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"people"`
}

type DetailResponse struct {
	Status int        `json:"status"`
	Data   DetailData `json:"data"`
}

type SearchResponse struct {
	Status int `json:"status"`
	Data   struct {
		Results []struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Year     int    `json:"year"`
			CoverURL string `json:"coverUrl"`
		} `json:"results"`
	} `json:"data"`
}

func (c *Client) Detail(ctx context.Context, catalogKey, id string) (*DetailResponse, error) {
	endpoint := c.BaseURL + "/v2/" + catalogKey + "/detail/" + url.PathEscape(id)
	return doWithBreaker[DetailResponse](ctx, c, endpoint)
}

func (c *Client) Search(ctx context.Context, catalogKey, query string) (*SearchResponse, error) {
	endpoint := c.BaseURL + "/v2/" + catalogKey + "/search?q=" + url.QueryEscape(query)
	return doWithBreaker[SearchResponse](ctx, c, endpoint)
}

func doWithBreaker[T any](ctx context.Context, c *Client, u string) (*T, error) {
	if c.CB == nil {
		return doJSONWithRetry[T](ctx, c, u)
	}
	result, err := c.CB.Execute(func() (interface{}, error) {
		return doJSONWithRetry[T](ctx, c, u)
	})
	if err != nil {
		return nil, err
	}
	return result.(*T), nil
}

func doJSONWithRetry[T any](ctx context.Context, c *Client, u string) (*T, error) {
	var lastErr error
	for attempt := 0; attempt <= c.Config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.Config.RetryBaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			c.Log.Debug("retrying request", zap.String("url", u), zap.Int("attempt", attempt), zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		result, err := doJSON[T](ctx, c, u)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		c.Log.Warn("request failed", zap.String("url", u), zap.Int("attempt", attempt), zap.Error(err))
	}
	return nil, lastErr
}

func doJSON[T any](ctx context.Context, c *Client, u string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")
	req.Header.Set("User-Agent", c.Config.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	reader := resp.Body
	if strings.Contains(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	b, err := io.ReadAll(io.LimitReader(reader, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream: status %d body=%q", resp.StatusCode, string(b[:min(len(b), 200)]))
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("upstream: decode error: %w body=%q", err, string(b[:min(len(b), 200)]))
	}
	return &out, nil
}
