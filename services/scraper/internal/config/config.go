package config

import (
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the scraper service. It is read once
// at startup and never reloaded.
type Config struct {
	Host                  string
	Port                  int
	LogLevel              string
	EnableDetailedLogging bool
	Env                   string

	// AuthToken enables the token gate when non-empty.
	AuthToken       string
	TokenHeaderName string
	// JWTSecret enables the /admin surface when non-empty.
	JWTSecret []byte

	MaxConcurrentRequests int
	RequestTimeout        time.Duration

	// Upstream scrape API.
	ScrapeAPIBaseURL string
	ScrapeUserAgent  string
	MaxRetries       int
	RetryBaseDelay   time.Duration

	// Circuit breaker settings.
	CBMaxRequests      uint32
	CBInterval         time.Duration
	CBTimeout          time.Duration
	CBFailureThreshold uint32

	// Cache backends: Redis preferred, Postgres fallback, memory in dev.
	RedisDSN    string
	DatabaseURL string
	CacheTTL    time.Duration

	// NATS wiring: usage analytics and cache invalidation fan-out.
	NATSURL             string
	InvalidationSubject string
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IsProd reports whether the service runs with production guarantees.
func (c Config) IsProd() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

func Load() (Config, error) {
	host := strings.TrimSpace(os.Getenv("HOST"))
	if host == "" {
		host = "0.0.0.0"
	}
	port := envInt("PORT", 8585)
	if port <= 0 || port > 65535 {
		return Config{}, errors.New("PORT must be a valid TCP port")
	}

	logLevel := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "info"
	}

	headerName := strings.TrimSpace(os.Getenv("TOKEN_HEADER_NAME"))
	if headerName == "" {
		headerName = "X-API-Token"
	}

	baseURL := strings.TrimSpace(os.Getenv("SCRAPE_API_BASE_URL"))
	if baseURL == "" {
		return Config{}, errors.New("SCRAPE_API_BASE_URL is required")
	}

	userAgent := strings.TrimSpace(os.Getenv("SCRAPE_USER_AGENT"))
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:146.0) Gecko/20100101 Firefox/146.0"
	}

	maxConcurrent := envInt("MAX_CONCURRENT_REQUESTS", 10)
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	timeoutSec := envInt("REQUEST_TIMEOUT_SECONDS", 60)
	if timeoutSec <= 0 {
		timeoutSec = 60
	}

	cacheTTL := 20 * time.Minute
	if v := strings.TrimSpace(os.Getenv("CACHE_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cacheTTL = d
		}
	}

	subject := strings.TrimSpace(os.Getenv("CACHE_INVALIDATION_SUBJECT"))
	if subject == "" {
		subject = "scraper.cache.invalidate"
	}

	return Config{
		Host:                  host,
		Port:                  port,
		LogLevel:              logLevel,
		EnableDetailedLogging: envBool("ENABLE_DETAILED_LOGGING", false),
		Env:                   strings.TrimSpace(os.Getenv("ENV")),
		AuthToken:             strings.TrimSpace(os.Getenv("AUTH_TOKEN")),
		TokenHeaderName:       headerName,
		JWTSecret:             []byte(strings.TrimSpace(os.Getenv("JWT_SECRET"))),
		MaxConcurrentRequests: maxConcurrent,
		RequestTimeout:        time.Duration(timeoutSec) * time.Second,
		ScrapeAPIBaseURL:      baseURL,
		ScrapeUserAgent:       userAgent,
		MaxRetries:            envInt("SCRAPE_MAX_RETRIES", 3),
		RetryBaseDelay:        envDuration("SCRAPE_RETRY_BASE_DELAY", 500*time.Millisecond),
		CBMaxRequests:         uint32(envInt("CB_MAX_REQUESTS", 5)),
		CBInterval:            envDuration("CB_INTERVAL", 60*time.Second),
		CBTimeout:             envDuration("CB_TIMEOUT", 30*time.Second),
		CBFailureThreshold:    uint32(envInt("CB_FAILURE_THRESHOLD", 5)),
		RedisDSN:              strings.TrimSpace(os.Getenv("REDIS_DSN")),
		DatabaseURL:           strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CacheTTL:              cacheTTL,
		NATSURL:               strings.TrimSpace(os.Getenv("NATS_URL")),
		InvalidationSubject:   subject,
	}, nil
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
