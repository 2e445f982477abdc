// Package tracking resolves opaque whistleblowing tracking IDs to report
// status records. The directory behind it is a port: production wires the
// report repository, tests wire a deterministic stub. The cache in front of
// it is a port too, backed by Redis in production.
package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"compliancehub/internal/compliance"
)

// StatusRecord is the anonymity-safe view of a report returned to a
// reporter. It carries the tracking ID only, never the internal row id.
type StatusRecord struct {
	TrackingID    string    `json:"tracking_id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	DateSubmitted time.Time `json:"date_submitted"`
	LastUpdated   time.Time `json:"last_updated"`
	Message       string    `json:"message"`
}

// Directory looks up a status record by tracking ID. Implementations return
// *compliance.NotFoundError when nothing matches.
type Directory interface {
	FindByTrackingID(ctx context.Context, trackingID string) (*StatusRecord, error)
}

// ErrCacheMiss signals that a key is absent from the cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized status records. Get returns ErrCacheMiss for an
// absent key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisCache adapts a Redis client to the Cache port.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Service performs tracking lookups with a read-through cache in front of
// the directory. The cache is optional; nil disables it.
type Service struct {
	directory Directory
	cache     Cache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewService creates a lookup service.
func NewService(directory Directory, cache Cache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		directory: directory,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Lookup resolves a tracking ID. Input is trimmed; an empty ID is rejected
// with a ValidationError before any I/O. Matching is case-sensitive exact
// equality on the tracking ID. A miss is a NotFoundError, terminal for this
// invocation; callers re-initiate explicitly.
func (s *Service) Lookup(ctx context.Context, trackingID string) (*StatusRecord, error) {
	id := strings.TrimSpace(trackingID)
	if id == "" {
		return nil, &compliance.ValidationError{Field: "tracking_id", Message: "tracking ID required"}
	}

	if record := s.fromCache(ctx, id); record != nil {
		return record, nil
	}

	record, err := s.directory.FindByTrackingID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, id, record)
	return record, nil
}

// Invalidate drops the cached record for a tracking ID so the next lookup
// reflects the stored row immediately. Callers invoke it after any change
// to the underlying report.
func (s *Service) Invalidate(ctx context.Context, trackingID string) {
	if s.cache == nil {
		return
	}
	id := strings.TrimSpace(trackingID)
	if id == "" {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(id)); err != nil {
		s.logger.Warn("Tracking cache invalidation failed", zap.String("tracking_id", id), zap.Error(err))
	}
}

func (s *Service) fromCache(ctx context.Context, id string) *StatusRecord {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, cacheKey(id))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("Tracking cache read failed", zap.Error(err))
		}
		return nil
	}
	var record StatusRecord
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn("Tracking cache entry corrupt", zap.String("tracking_id", id), zap.Error(err))
		return nil
	}
	return &record
}

func (s *Service) toCache(ctx context.Context, id string, record *StatusRecord) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(id), data, s.cacheTTL); err != nil {
		s.logger.Warn("Tracking cache write failed", zap.String("tracking_id", id), zap.Error(err))
	}
}

func cacheKey(id string) string {
	return "tracking:" + id
}
