package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/example/metadata-bridge/internal/platform/analytics"
	"github.com/example/metadata-bridge/internal/platform/auth"
	"github.com/example/metadata-bridge/internal/platform/httpserver"
	"github.com/example/metadata-bridge/internal/platform/logging"
	"github.com/example/metadata-bridge/internal/platform/natsconn"
	"github.com/example/metadata-bridge/internal/platform/run"
	"github.com/example/metadata-bridge/services/scraper/internal/cache"
	"github.com/example/metadata-bridge/services/scraper/internal/config"
	"github.com/example/metadata-bridge/services/scraper/internal/handlers"
	"github.com/example/metadata-bridge/services/scraper/internal/middleware"
	"github.com/example/metadata-bridge/services/scraper/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.EnableDetailedLogging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	defer log.Sync()

	var nc *nats.Conn
	var pub *analytics.Publisher
	if cfg.NATSURL != "" {
		nc, err = natsconn.Connect(natsconn.Options{URL: cfg.NATSURL})
		if err != nil {
			log.Fatal("nats connect failed", zap.Error(err))
		}
		defer nc.Close()

		js, err := nc.JetStream()
		if err != nil {
			log.Fatal("jetstream init failed", zap.Error(err))
		}
		pub = analytics.New(js, log)
	} else {
		log.Warn("NATS_URL not set, analytics events disabled")
	}

	store, err := cache.NewStore(cfg.RedisDSN, cfg.DatabaseURL, cfg.CacheTTL, cfg.IsProd(), nc, cfg.InvalidationSubject)
	if err != nil {
		log.Fatal("cache init failed", zap.Error(err))
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "scrape-upstream",
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.CBFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	scraper := upstream.New(cfg.ScrapeAPIBaseURL, upstream.ClientConfig{
		UserAgent:      cfg.ScrapeUserAgent,
		MaxRetries:     cfg.MaxRetries,
		RetryBaseDelay: cfg.RetryBaseDelay,
		RequestTimeout: cfg.RequestTimeout,
	}, upstream.WithCircuitBreaker(cb), upstream.WithLogger(log))

	meta := handlers.NewMetadataHandler(scraper, store, pub, log)
	admin := handlers.NewAdminHandler(store, nc, cfg.InvalidationSubject, log)

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{Banner: "metadata-bridge scraper"})

	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenGate(cfg.AuthToken, cfg.TokenHeaderName, log))
		r.Use(middleware.Admission(cfg.MaxConcurrentRequests))
		r.Route("/api/{catalog}", func(r chi.Router) {
			r.Get("/search", meta.Search)
			r.Get("/{id}", meta.GetByID)
		})
	})

	if len(cfg.JWTSecret) > 0 {
		verifier := auth.JWTVerifier{Secret: cfg.JWTSecret}
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(verifier))
			r.Use(auth.RequireAdmin)
			r.Post("/admin/cache/purge", admin.PurgeCache)
		})
	} else {
		log.Warn("JWT_SECRET not set, admin surface disabled")
	}

	srv := httpserver.New(httpserver.Options{
		Addr:        cfg.Addr(),
		ServiceName: "scraper",
		Logger:      log,
		Router:      r,
	})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("shutdown error", zap.Error(err))
			}
		}()
		return srv.Start(log)
	})
	run.Exit(code)
}
