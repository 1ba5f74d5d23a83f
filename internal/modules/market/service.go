package market

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Cache is the subset of the redis client used for snapshots.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Service serves market snapshots, preferring a cached copy.
type Service struct {
	source Source
	cache  Cache
	ttl    time.Duration
	log    *zap.Logger
}

// NewService wires a snapshot source. cache may be nil.
func NewService(source Source, cache Cache, ttl time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{source: source, cache: cache, ttl: ttl, log: log}
}

// Indices always returns something displayable.
func (s *Service) Indices(ctx context.Context) []Index {
	if cached, ok := s.cached(ctx); ok {
		return cached
	}

	list, err := s.source.Fetch(ctx)
	if err != nil {
		s.log.Warn("fetch market indices failed", zap.Error(err))
		return UnavailableIndices()
	}
	if len(list) == 0 {
		return DemoIndices()
	}
	s.store(ctx, list)
	return list
}

func (s *Service) cached(ctx context.Context) ([]Index, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, CacheKey)
	if err != nil {
		s.log.Debug("market cache read failed", zap.Error(err))
		return nil, false
	}
	if raw == "" {
		return nil, false
	}
	var list []Index
	if err := json.Unmarshal([]byte(raw), &list); err != nil || len(list) == 0 {
		return nil, false
	}
	return list, true
}

func (s *Service) store(ctx context.Context, list []Index) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	b, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, CacheKey, string(b), s.ttl); err != nil {
		s.log.Debug("market cache write failed", zap.Error(err))
	}
}
