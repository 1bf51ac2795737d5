package database

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campushub/portal/backend/internal/domain/entities"
	"github.com/campushub/portal/backend/internal/domain/providers"
	"github.com/campushub/portal/backend/internal/domain/repositories"
	"github.com/campushub/portal/backend/internal/infrastructure/observability"
)

// CachedRecordStore serves repeated collection queries from the cache.
type CachedRecordStore struct {
	store   repositories.RecordStore
	cache   providers.CacheProvider
	ttl     int
	metrics *observability.Metrics
}

// NewCachedRecordStore wraps store. A ttl below one second is rounded up.
func NewCachedRecordStore(store repositories.RecordStore, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) repositories.RecordStore {
	seconds := int(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return &CachedRecordStore{
		store:   store,
		cache:   cache,
		ttl:     seconds,
		metrics: metrics,
	}
}

func recordsCacheKey(q repositories.CollectionQuery) (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(data)
	return fmt.Sprintf("records:%s:%s", q.Collection, hex.EncodeToString(sum[:])), nil
}

// QueryCollection returns cached records when present and fills the cache on a miss.
// Cache failures never fail the query.
func (s *CachedRecordStore) QueryCollection(ctx context.Context, q repositories.CollectionQuery) ([]entities.Record, error) {
	logger := observability.LoggerFromContext(ctx)

	key, err := recordsCacheKey(q)
	if err != nil {
		logger.Warn().Err(err).Str("collection", q.Collection).Msg("Uncacheable collection query")
		return s.store.QueryCollection(ctx, q)
	}

	cached, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var records []entities.Record
		if err := json.Unmarshal(cached, &records); err == nil {
			observability.RecordCacheHit(ctx, s.metrics, q.Collection)
			return records, nil
		}
		logger.Warn().Err(err).Str("key", key).Msg("Discarding unreadable cached records")
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to evict cached records")
		}
	case !errors.Is(err, providers.ErrCacheMiss):
		logger.Warn().Err(err).Str("key", key).Msg("Record cache unavailable")
	}
	observability.RecordCacheMiss(ctx, s.metrics, q.Collection)

	records, err := s.store.QueryCollection(ctx, q)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to cache records")
		}
	}

	return records, nil
}
