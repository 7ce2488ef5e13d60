// Package redis implements Redis-backed infrastructure: the connection
// helper and a read-through cache for cohort and course documents. The email
// fan-out path reads the same cohort document once per member, so a short TTL
// cache takes real load off the document store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/web3camp/cohort-hub/internal/domain/cohort"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONNECTION
// ══════════════════════════════════════════════════════════════════════════════

// Connect creates a Redis client from a URL and verifies it with a ping.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// READ-THROUGH DOCUMENT CACHE
// ══════════════════════════════════════════════════════════════════════════════

// CacheConfig configures the document cache.
type CacheConfig struct {
	// TTL is how long cached documents live. Stale reads within the TTL are
	// accepted; the trigger layer tolerates them everywhere else too.
	TTL time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultCacheConfig returns sensible defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 5 * time.Minute}
}

// CachedCohortRepository decorates cohort.Repository with a read-through
// cache. Cache failures degrade to the inner repository, never to an error.
type CachedCohortRepository struct {
	inner  cohort.Repository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedCohortRepository creates the decorator.
func NewCachedCohortRepository(inner cohort.Repository, client *redis.Client, cfg CacheConfig) *CachedCohortRepository {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheConfig().TTL
	}
	return &CachedCohortRepository{
		inner:  inner,
		client: client,
		ttl:    cfg.TTL,
		logger: cfg.Logger.With("component", "cohort_cache"),
	}
}

// Get implements cohort.Repository.
func (r *CachedCohortRepository) Get(ctx context.Context, id string) (cohort.Cohort, error) {
	key := "doc:cohorts:" + id

	if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var c cohort.Cohort
		if err := json.Unmarshal(data, &c); err == nil {
			return c, nil
		}
		// Corrupt entry: fall through to the source and overwrite.
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("cache read failed", "key", key, "error", err)
	}

	c, err := r.inner.Get(ctx, id)
	if err != nil {
		return cohort.Cohort{}, err
	}
	r.set(ctx, key, c)
	return c, nil
}

// ListAll implements cohort.Repository. List snapshots bypass the cache: the
// inactivity job needs fresh kickoff timestamps.
func (r *CachedCohortRepository) ListAll(ctx context.Context) ([]cohort.Cohort, error) {
	return r.inner.ListAll(ctx)
}

func (r *CachedCohortRepository) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// CachedCourseRepository decorates cohort.CourseRepository the same way.
type CachedCourseRepository struct {
	inner  cohort.CourseRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedCourseRepository creates the decorator.
func NewCachedCourseRepository(inner cohort.CourseRepository, client *redis.Client, cfg CacheConfig) *CachedCourseRepository {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheConfig().TTL
	}
	return &CachedCourseRepository{
		inner:  inner,
		client: client,
		ttl:    cfg.TTL,
		logger: cfg.Logger.With("component", "course_cache"),
	}
}

// Get implements cohort.CourseRepository.
func (r *CachedCourseRepository) Get(ctx context.Context, id string) (cohort.Course, error) {
	key := "doc:courses:" + id

	if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var c cohort.Course
		if err := json.Unmarshal(data, &c); err == nil {
			return c, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("cache read failed", "key", key, "error", err)
	}

	c, err := r.inner.Get(ctx, id)
	if err != nil {
		return cohort.Course{}, err
	}

	if data, err := json.Marshal(c); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return c, nil
}
