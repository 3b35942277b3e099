package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresStore struct {
	dsn string
	ttl time.Duration
	// pool is lazily initialised on first use.
	pool *pgxpool.Pool
}

func newPostgresStore(dsn string, ttl time.Duration) *postgresStore {
	return &postgresStore{dsn: dsn, ttl: ttl}
}

func (s *postgresStore) ensurePool(ctx context.Context) error {
	if s.pool != nil {
		return nil
	}
	pool, err := pgxpool.New(ctx, s.dsn)
	if err != nil {
		return err
	}
	s.pool = pool
	return nil
}

// Get reads one entry. Expired rows are treated as absent; the next Set
// overwrites them. Table `scrape_cache` must exist (see migrations).
func (s *postgresStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	if err := s.ensurePool(ctx); err != nil {
		return false, err
	}

	const q = `SELECT payload FROM scrape_cache
	           WHERE cache_key = $1 AND expires_at > now()`

	var payload []byte
	if err := s.pool.QueryRow(ctx, q, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *postgresStore) Set(ctx context.Context, key string, value any) error {
	if err := s.ensurePool(ctx); err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	const q = `INSERT INTO scrape_cache (cache_key, payload, expires_at)
	           VALUES ($1, $2, now() + $3)
	           ON CONFLICT (cache_key)
	           DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at`

	_, err = s.pool.Exec(ctx, q, key, payload, s.ttl)
	return err
}

func (s *postgresStore) Purge(ctx context.Context) error {
	if err := s.ensurePool(ctx); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM scrape_cache`)
	return err
}
