package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tesseract-hub/cloud-translate-service/internal/config"
	"github.com/tesseract-hub/cloud-translate-service/internal/models"
)

// Cache maps request fingerprints to translated text. Implementations never
// return errors: an unusable cache behaves as a permanent miss.
type Cache interface {
	Get(ctx context.Context, fp models.Fingerprint) (string, bool)
	Set(ctx context.Context, fp models.Fingerprint, translated string)
	Ping(ctx context.Context) error
	Close() error
}

// TranslationCache provides Redis-based caching for translations
type TranslationCache struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
	logger  *logrus.Entry
}

// New returns a Redis cache when a URL is configured and a NoopCache otherwise
func New(cfg config.CacheConfig, logger *logrus.Entry) (Cache, error) {
	if cfg.RedisURL == "" {
		logger.Info("Redis URL not configured, translation cache disabled")
		return NoopCache{}, nil
	}
	c, err := NewTranslationCache(cfg, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewTranslationCache creates a Redis cache. The server does not have to be
// reachable yet; an unreachable server only produces cache misses.
func NewTranslationCache(cfg config.CacheConfig, logger *logrus.Entry) (*TranslationCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	// Every stage of a cache call shares one bound: dial, pool wait, the
	// connection handshake and the command round trip.
	opts.DialTimeout = cfg.ConnectTimeout
	opts.PoolTimeout = cfg.ConnectTimeout
	opts.ReadTimeout = cfg.ConnectTimeout
	opts.WriteTimeout = cfg.ConnectTimeout
	opts.MaxRetries = -1
	opts.ContextTimeoutEnabled = true

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis cache unreachable at start-up, serving without cache until it recovers")
	} else {
		logger.Info("Connected to Redis cache")
	}

	return &TranslationCache{
		client:  client,
		ttl:     cfg.TTL,
		timeout: cfg.ConnectTimeout,
		logger:  logger,
	}, nil
}

// Get retrieves a cached translation
func (c *TranslationCache) Get(ctx context.Context, fp models.Fingerprint) (string, bool) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	val, err := c.client.Get(ctx, fp.Key()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", fp.Key()).Warn("Failed to get from cache")
		return "", false // Treat errors as cache miss
	}
	return val, true
}

// Set stores a translation in cache, best effort
func (c *TranslationCache) Set(ctx context.Context, fp models.Fingerprint, translated string) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.Set(ctx, fp.Key(), translated, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", fp.Key()).Warn("Failed to set cache")
	}
}

func (c *TranslationCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Ping checks if Redis is reachable
func (c *TranslationCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection pool
func (c *TranslationCache) Close() error {
	return c.client.Close()
}

// NoopCache is used when no cache is configured
type NoopCache struct{}

func (NoopCache) Get(context.Context, models.Fingerprint) (string, bool) { return "", false }
func (NoopCache) Set(context.Context, models.Fingerprint, string)        {}
func (NoopCache) Ping(context.Context) error                             { return nil }
func (NoopCache) Close() error                                           { return nil }
