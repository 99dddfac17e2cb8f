package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/analytics"
	"github.com/spec-kit/portal-service/internal/events"
	"github.com/spec-kit/portal-service/internal/observability"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

const (
	analyticsKeyPrefix = "analytics:"
	// analyticsGenerationKey sits outside the prefix so invalidation keeps it.
	analyticsGenerationKey = "analytics-generation"
)

// ContributionCache stores computed dashboards. *persistence.Redis satisfies it.
type ContributionCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// InvalidateContributions bumps the cache generation and drops every cached
// dashboard. Entries computed under an older generation are never served.
func InvalidateContributions(ctx context.Context, cache ContributionCache) error {
	if cache == nil {
		return nil
	}
	if _, err := cache.Incr(ctx, analyticsGenerationKey); err != nil {
		return err
	}
	return cache.DeletePattern(ctx, analyticsKeyPrefix+"*")
}

// AnalyticsService serves contribution dashboards from a full ticket scan,
// cached until the next ticket event.
type AnalyticsService struct {
	aggregator *analytics.Aggregator
	cache      ContributionCache
	ttl        time.Duration
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// AnalyticsDependencies bundles collaborators.
type AnalyticsDependencies struct {
	Tickets     analytics.TicketScanner
	Cache       ContributionCache
	CacheTTL    time.Duration
	RecentLimit int
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		aggregator: analytics.NewAggregator(deps.Tickets, deps.RecentLimit),
		cache:      deps.Cache,
		ttl:        deps.CacheTTL,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// EmployeeContributions returns the {primary, secondary} dashboard for employeeID.
func (s *AnalyticsService) EmployeeContributions(ctx context.Context, employeeID string) (analytics.Contributions, error) {
	key, cacheable := s.key(ctx, "contributions:"+employeeID)
	var result analytics.Contributions
	if cacheable && s.lookup(ctx, key, &result) {
		return result, nil
	}
	result, err := s.aggregator.GetEmployeeContributions(ctx, employeeID)
	if err != nil {
		return analytics.Contributions{}, apperrors.MapError(err)
	}
	if cacheable {
		s.store(ctx, key, result)
	}
	return result, nil
}

// Leaderboard ranks employees by primary then secondary credit.
func (s *AnalyticsService) Leaderboard(ctx context.Context, limit int) ([]analytics.LeaderboardEntry, error) {
	if limit < 0 {
		return nil, apperrors.NewValidationError("limit must not be negative", nil)
	}
	key, cacheable := s.key(ctx, fmt.Sprintf("leaderboard:%d", limit))
	var result []analytics.LeaderboardEntry
	if cacheable && s.lookup(ctx, key, &result) {
		return result, nil
	}
	result, err := s.aggregator.Leaderboard(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if cacheable {
		s.store(ctx, key, result)
	}
	return result, nil
}

// RegisterHandlers drops cached dashboards whenever a ticket changes.
func (s *AnalyticsService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil || s.cache == nil {
		return
	}
	for _, eventType := range events.TicketEventTypes {
		dispatcher.Subscribe(eventType, s.invalidate)
	}
}

func (s *AnalyticsService) invalidate(ctx context.Context, _ events.Event) error {
	return InvalidateContributions(ctx, s.cache)
}

// key names a cache entry under the generation current before the scan. A
// write that invalidates mid-scan moves readers to the next generation, so
// the stale result stored under this key is unreachable.
func (s *AnalyticsService) key(ctx context.Context, name string) (string, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return "", false
	}
	var generation int64
	if _, err := s.cache.GetJSON(ctx, analyticsGenerationKey, &generation); err != nil {
		s.logger.Warn("analytics cache generation read failed", zap.Error(err))
		return "", false
	}
	return fmt.Sprintf("%sg%d:%s", analyticsKeyPrefix, generation, name), true
}

func (s *AnalyticsService) lookup(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		s.logger.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	s.metrics.RecordCacheLookup(hit)
	return hit
}

func (s *AnalyticsService) store(ctx context.Context, key string, value any) {
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}
