// Package service wraps the remote catalog with caching, request
// de-duplication and soft degradation for the UI.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/search"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	defaultPopularTTL  = 10 * time.Minute
	defaultDetailsTTL  = 30 * time.Minute
	defaultSearchTTL   = 5 * time.Minute
	defaultSearchSize  = 256
	cacheCleanInterval = 15 * time.Minute
)

// CatalogService serves catalog data to the UI. Every method degrades to an
// empty result when the catalog fails; the error is returned alongside for
// status display.
type CatalogService struct {
	catalog domain.Catalog
	logger  *slog.Logger

	cache       *cache.Cache // popular pages and details
	searchCache *SearchCache[[]domain.MovieSummary]
	group       singleflight.Group

	popularTTL time.Duration
	detailsTTL time.Duration

	// titles seen in popular results, for offline search
	seenMu sync.RWMutex
	seen   []domain.MovieSummary
	seenID map[domain.MovieID]bool
}

// Option configures a CatalogService.
type Option func(*CatalogService)

// WithTTLs overrides cache lifetimes. Zero keeps the default.
func WithTTLs(popular, details, search time.Duration) Option {
	return func(s *CatalogService) {
		if popular > 0 {
			s.popularTTL = popular
		}
		if details > 0 {
			s.detailsTTL = details
		}
		if search > 0 {
			s.searchCache = NewSearchCache[[]domain.MovieSummary](defaultSearchSize, search)
		}
	}
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalog domain.Catalog, logger *slog.Logger, opts ...Option) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &CatalogService{
		catalog:     catalog,
		logger:      logger,
		cache:       cache.New(defaultPopularTTL, cacheCleanInterval),
		searchCache: NewSearchCache[[]domain.MovieSummary](defaultSearchSize, defaultSearchTTL),
		popularTTL:  defaultPopularTTL,
		detailsTTL:  defaultDetailsTTL,
		seenID:      make(map[domain.MovieID]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Popular returns one page of popular movies
func (s *CatalogService) Popular(ctx context.Context, page int) ([]domain.MovieSummary, error) {
	if page < 1 {
		page = 1
	}
	key := popularKey(page)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]domain.MovieSummary), nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		movies, err := s.catalog.FetchPopular(ctx, page)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, movies, s.popularTTL)
		s.remember(movies)
		return movies, nil
	})
	if err != nil {
		s.logger.Error("failed to fetch popular movies", "page", page, "error", err)
		return []domain.MovieSummary{}, err
	}
	return v.([]domain.MovieSummary), nil
}

// PopularPages returns up to pages pages of popular movies, stopping at the
// first empty page. On failure the pages loaded so far are returned.
func (s *CatalogService) PopularPages(ctx context.Context, pages int, onProgress func(page, loaded int)) ([]domain.MovieSummary, error) {
	movies, err := fetchPages(ctx, s.Popular, pages, onProgress)
	if movies == nil {
		movies = []domain.MovieSummary{}
	}
	return dedupe(movies), err
}

// Details returns the full record for id
func (s *CatalogService) Details(ctx context.Context, id domain.MovieID) (*domain.MovieDetails, error) {
	key := detailsKey(id)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*domain.MovieDetails), nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		details, err := s.catalog.FetchDetails(ctx, id)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, details, s.detailsTTL)
		return details, nil
	})
	if err != nil {
		s.logger.Error("failed to fetch movie details", "movieID", id, "error", err)
		return nil, err
	}
	if shared {
		s.logger.Debug("details request shared", "movieID", id)
	}
	return v.(*domain.MovieDetails), nil
}

// Search queries the catalog and ranks results by title. When the catalog
// is unreachable it falls back to matching titles already seen in popular
// results, and returns the catalog error alongside.
func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.MovieSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.MovieSummary{}, nil
	}

	key := searchKey(query, 1)
	if cached, ok := s.searchCache.Get(key); ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		results, err := s.catalog.Search(ctx, query, 1)
		if err != nil {
			return nil, err
		}
		ranked := search.Rank(query, results)
		s.searchCache.Set(key, ranked)
		return ranked, nil
	})
	if err != nil {
		local := search.Local(query, s.seenMovies())
		s.logger.Warn("server search failed, falling back to local", "query", query, "local", len(local), "error", err)
		return local, fmt.Errorf("search %q: %w", query, err)
	}

	results := v.([]domain.MovieSummary)
	s.logger.Debug("search complete", "query", query, "results", len(results))
	return results, nil
}

// PosterURL returns the absolute poster URL for path
func (s *CatalogService) PosterURL(path string) string {
	return s.catalog.PosterURL(path)
}

// RecordFromDetails builds the record the detail screen persists
func (s *CatalogService) RecordFromDetails(d *domain.MovieDetails) domain.MovieRecord {
	return d.Record(s.PosterURL(d.PosterPath))
}

// RecordFromSummary builds the record list screens persist
func (s *CatalogService) RecordFromSummary(m domain.MovieSummary) domain.MovieRecord {
	rec := m.Record()
	rec.PosterURL = s.PosterURL(m.PosterPath)
	return rec
}

// Invalidate drops every cached response
func (s *CatalogService) Invalidate() {
	s.cache.Flush()
	s.searchCache.Clear()
	s.logger.Debug("catalog cache cleared")
}

func (s *CatalogService) remember(movies []domain.MovieSummary) {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	for _, m := range movies {
		if s.seenID[m.ID] {
			continue
		}
		s.seenID[m.ID] = true
		s.seen = append(s.seen, m)
	}
}

func (s *CatalogService) seenMovies() []domain.MovieSummary {
	s.seenMu.RLock()
	defer s.seenMu.RUnlock()
	out := make([]domain.MovieSummary, len(s.seen))
	copy(out, s.seen)
	return out
}

// dedupe drops repeated ids; TMDB pages can overlap when popularity shifts
// between requests.
func dedupe(movies []domain.MovieSummary) []domain.MovieSummary {
	seen := make(map[domain.MovieID]bool, len(movies))
	out := movies[:0:0]
	for _, m := range movies {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out
}
