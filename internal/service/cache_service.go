package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-gpa-api/pkg/errors"
)

const gpaCachePattern = "gpa:*"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService fronts GPA computations with an optional cache. A nil or
// disabled service turns every lookup into a miss and every write into a no-op.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool

	// mu orders GPA invalidations against guarded writes.
	mu         sync.Mutex
	generation uint64
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordCacheOperation(true, duration)
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// Generation returns a token that changes on every InvalidateGPA call. Read it
// before loading the data a cached figure is computed from.
func (s *CacheService) Generation() uint64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// SetIfCurrent stores the value only when no GPA invalidation happened since
// generation was read. It reports whether the value was written.
func (s *CacheService) SetIfCurrent(ctx context.Context, generation uint64, key string, value interface{}, ttl time.Duration) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		s.logger.Debug("cache write skipped after invalidation", zap.String("key", key))
		return false, nil
	}
	if err := s.Set(ctx, key, value, ttl); err != nil {
		return false, err
	}
	return true, nil
}

// InvalidateGPA drops every cached GPA figure and bumps the generation.
// Failures are logged and otherwise ignored.
func (s *CacheService) InvalidateGPA(ctx context.Context) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	_ = s.Invalidate(ctx, gpaCachePattern)
}

func studentGPAKey(id int) string {
	return fmt.Sprintf("gpa:student:%d", id)
}

const schoolGPAKey = "gpa:school"
