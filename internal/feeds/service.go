// Package feeds assembles the ranked, blended media feeds for the home
// surface: popular, trending, top-rated, and genre-filtered discovery.
package feeds

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reelfeed/reelfeed/internal/media"
	"github.com/reelfeed/reelfeed/internal/media/scoring"
	"github.com/reelfeed/reelfeed/internal/provider/tmdb"
)

// HomeFeeds holds the independently fetched home page feeds. A feed that
// failed to populate is empty; failures never cross feed boundaries.
type HomeFeeds struct {
	Popular        []scoring.ScoredItem `json:"popular"`
	Trending       []scoring.ScoredItem `json:"trending"`
	TopRatedMovies []media.Item         `json:"topRatedMovies"`
	TopRatedTV     []media.Item         `json:"topRatedTv"`
}

// Service orchestrates the parallel feed fetches and ranking passes.
type Service struct {
	provider Provider
	scorer   *scoring.Scorer
	cache    *Cache
	logger   zerolog.Logger
}

// NewService creates a new feed service.
func NewService(provider Provider, scorer *scoring.Scorer, cache *Cache, logger zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		scorer:   scorer,
		cache:    cache,
		logger:   logger.With().Str("component", "feeds").Logger(),
	}
}

// HomeFeeds fetches the six home listings in parallel and assembles the
// four feeds. Each feed task writes only its own slot; a failed feed is
// logged and left empty while the others populate normally.
func (s *Service) HomeFeeds(ctx context.Context) *HomeFeeds {
	const cacheKey = "home"
	if cached, ok := s.cache.GetHomeFeeds(cacheKey); ok {
		s.logger.Debug().Msg("Home feeds cache hit")
		return cached
	}

	result := &HomeFeeds{
		Popular:        []scoring.ScoredItem{},
		Trending:       []scoring.ScoredItem{},
		TopRatedMovies: []media.Item{},
		TopRatedTV:     []media.Item{},
	}

	var wg sync.WaitGroup
	var failed atomic.Bool
	wg.Add(4)

	go func() {
		defer wg.Done()
		items, err := s.fetchBlended(ctx, s.provider.PopularMovies, s.provider.PopularTV)
		if err != nil {
			s.logger.Error().Err(err).Msg("Popular feed failed")
			failed.Store(true)
			return
		}
		result.Popular = s.scorer.Rank(items)
	}()

	go func() {
		defer wg.Done()
		items, err := s.fetchBlended(ctx,
			func(ctx context.Context) (*tmdb.MoviePage, error) {
				return s.provider.TrendingMovies(ctx, tmdb.TrendingWeek)
			},
			func(ctx context.Context) (*tmdb.TVPage, error) {
				return s.provider.TrendingTV(ctx, tmdb.TrendingWeek)
			})
		if err != nil {
			s.logger.Error().Err(err).Msg("Trending feed failed")
			failed.Store(true)
			return
		}
		result.Trending = s.scorer.Rank(items)
	}()

	go func() {
		defer wg.Done()
		page, err := s.provider.TopRatedMovies(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("Top rated movies feed failed")
			failed.Store(true)
			return
		}
		// Provider order is kept; this feed is never cross-scored.
		result.TopRatedMovies = media.NormalizeMovies(page.Results, s.logger)
	}()

	go func() {
		defer wg.Done()
		page, err := s.provider.TopRatedTV(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("Top rated TV feed failed")
			failed.Store(true)
			return
		}
		result.TopRatedTV = media.NormalizeTVList(page.Results, s.logger)
	}()

	wg.Wait()

	// A degraded assembly serves this response only. Caching it would pin
	// the empty feeds for the full TTL after a transient outage.
	if failed.Load() {
		s.logger.Warn().Msg("Home feeds degraded; assembly not cached")
	} else {
		s.cache.Set(cacheKey, result)
	}

	s.logger.Info().
		Int("popular", len(result.Popular)).
		Int("trending", len(result.Trending)).
		Int("topRatedMovies", len(result.TopRatedMovies)).
		Int("topRatedTv", len(result.TopRatedTV)).
		Msg("Home feeds assembled")

	return result
}

// fetchBlended joins a movie and a TV listing all-or-nothing, tags each
// side, and concatenates movies first.
func (s *Service) fetchBlended(
	ctx context.Context,
	fetchMovies func(context.Context) (*tmdb.MoviePage, error),
	fetchTV func(context.Context) (*tmdb.TVPage, error),
) ([]media.Item, error) {
	var moviePage *tmdb.MoviePage
	var tvPage *tmdb.TVPage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		moviePage, err = fetchMovies(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tvPage, err = fetchTV(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := media.NormalizeMovies(moviePage.Results, s.logger)
	items = append(items, media.NormalizeTVList(tvPage.Results, s.logger)...)
	return items, nil
}

// GenreFeed issues two parallel discover calls filtered by genre, blends
// and ranks the results. It supersedes the fallback feeds when non-empty.
func (s *Service) GenreFeed(ctx context.Context, genreID int) ([]scoring.ScoredItem, error) {
	cacheKey := fmt.Sprintf("genre:%d", genreID)
	if cached, ok := s.cache.GetScoredItems(cacheKey); ok {
		s.logger.Debug().Int("genreId", genreID).Msg("Genre feed cache hit")
		return cached, nil
	}

	filter := tmdb.DiscoverFilter{WithGenres: strconv.Itoa(genreID)}
	items, err := s.fetchBlended(ctx,
		func(ctx context.Context) (*tmdb.MoviePage, error) {
			return s.provider.DiscoverMovies(ctx, filter)
		},
		func(ctx context.Context) (*tmdb.TVPage, error) {
			return s.provider.DiscoverTV(ctx, filter)
		})
	if err != nil {
		s.logger.Error().Err(err).Int("genreId", genreID).Msg("Genre feed failed")
		return nil, fmt.Errorf("genre feed: %w", err)
	}

	ranked := s.scorer.Rank(items)
	s.cache.Set(cacheKey, ranked)

	s.logger.Info().Int("genreId", genreID).Int("results", len(ranked)).Msg("Genre feed assembled")
	return ranked, nil
}

// FeedSource names which feed the render decision settled on.
type FeedSource string

const (
	SourceSearch   FeedSource = "search"
	SourceGenre    FeedSource = "genre"
	SourceTrending FeedSource = "trending"
	SourceTopRated FeedSource = "top_rated"
	SourcePopular  FeedSource = "popular"
	SourceEmpty    FeedSource = "empty"
)

// Rendered is the outcome of the feed precedence decision.
type Rendered struct {
	Source FeedSource           `json:"source"`
	Items  []scoring.ScoredItem `json:"items"`
}

// SelectFeed applies the presentation precedence: explicit search results
// beat a genre feed, which beats trending, top-rated, then popular; when
// everything is empty the explicit empty state is returned. Top-rated
// items carry no score and keep provider order, movies first.
func SelectFeed(search, genre []scoring.ScoredItem, home *HomeFeeds) Rendered {
	if len(search) > 0 {
		return Rendered{Source: SourceSearch, Items: search}
	}
	if len(genre) > 0 {
		return Rendered{Source: SourceGenre, Items: genre}
	}
	if home != nil {
		if len(home.Trending) > 0 {
			return Rendered{Source: SourceTrending, Items: home.Trending}
		}
		if len(home.TopRatedMovies) > 0 || len(home.TopRatedTV) > 0 {
			items := make([]scoring.ScoredItem, 0, len(home.TopRatedMovies)+len(home.TopRatedTV))
			for _, item := range home.TopRatedMovies {
				items = append(items, scoring.ScoredItem{Item: item})
			}
			for _, item := range home.TopRatedTV {
				items = append(items, scoring.ScoredItem{Item: item})
			}
			return Rendered{Source: SourceTopRated, Items: items}
		}
		if len(home.Popular) > 0 {
			return Rendered{Source: SourcePopular, Items: home.Popular}
		}
	}
	return Rendered{Source: SourceEmpty, Items: []scoring.ScoredItem{}}
}
