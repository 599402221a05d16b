// Package service wraps the search engine with the concerns the tool surface
// needs: result caching, metrics, and request logging.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vuquimar/api-rei-do-pano/internal/cache"
	"github.com/vuquimar/api-rei-do-pano/internal/domain"
	"github.com/vuquimar/api-rei-do-pano/internal/search"
	apperrors "github.com/vuquimar/api-rei-do-pano/pkg/errors"
)

// ResultCache is the read-through cache the service consults before running
// a search. A miss is (nil, nil).
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.ResultPage, error)
	Set(ctx context.Context, key string, page domain.ResultPage) error
}

// SearchService executes product searches with caching and instrumentation.
type SearchService struct {
	engine *search.Engine
	cache  ResultCache
	logger *slog.Logger
}

// NewSearchService creates a search service. cache may be nil, in which case
// every request runs against the engine directly.
func NewSearchService(engine *search.Engine, cache ResultCache, logger *slog.Logger) *SearchService {
	return &SearchService{
		engine: engine,
		cache:  cache,
		logger: logger,
	}
}

// Search runs a product search. Cache failures never fail the request; the
// service falls back to the engine and logs the incident.
func (s *SearchService) Search(ctx context.Context, rawQuery string, page, pageSize int) (domain.ResultPage, error) {
	start := time.Now()

	q := search.NewQuery(rawQuery)
	key := cache.Key(q.Normalized, page, pageSize)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "result cache read failed",
				slog.String("error", err.Error()),
			)
		case cached != nil:
			searchCacheHits.Inc()
			searchesTotal.WithLabelValues(outcomeSuccess).Inc()
			return *cached, nil
		default:
			searchCacheMisses.Inc()
		}
	}

	result, err := s.engine.Search(ctx, rawQuery, page, pageSize)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			searchesTotal.WithLabelValues(outcomeInvalid).Inc()
		} else {
			searchesTotal.WithLabelValues(outcomeError).Inc()
		}
		return domain.ResultPage{}, err
	}

	searchesTotal.WithLabelValues(outcomeSuccess).Inc()
	searchDuration.Observe(time.Since(start).Seconds())
	searchResults.Observe(float64(result.TotalCount))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			s.logger.WarnContext(ctx, "result cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.DebugContext(ctx, "search executed",
		slog.String("query", rawQuery),
		slog.Int("total", result.TotalCount),
		slog.Int64("took_ms", time.Since(start).Milliseconds()),
	)

	return result, nil
}
