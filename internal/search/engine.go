// Package search implements the text and filtered search engine plus the
// debounced suggestion sessions used by the lookup box.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reelfeed/reelfeed/internal/media"
	"github.com/reelfeed/reelfeed/internal/media/scoring"
	"github.com/reelfeed/reelfeed/internal/provider/tmdb"
)

// Scope restricts which media types a search covers.
type Scope string

const (
	ScopeMulti  Scope = "multi"
	ScopeMovie  Scope = "movie"
	ScopeTV     Scope = "tv"
	ScopePerson Scope = "person"
)

// Valid reports whether the scope is one of the known values.
func (s Scope) Valid() bool {
	switch s {
	case ScopeMulti, ScopeMovie, ScopeTV, ScopePerson:
		return true
	}
	return false
}

// Provider is the slice of the TMDB client the search engine consumes.
type Provider interface {
	SearchMovies(ctx context.Context, query string) (*tmdb.MoviePage, error)
	SearchTV(ctx context.Context, query string) (*tmdb.TVPage, error)
	SearchPeople(ctx context.Context, query string) (*tmdb.PersonPage, error)
	DiscoverMovies(ctx context.Context, filter tmdb.DiscoverFilter) (*tmdb.MoviePage, error)
	DiscoverTV(ctx context.Context, filter tmdb.DiscoverFilter) (*tmdb.TVPage, error)
}

// Suggestion is one row in the type-ahead dropdown. Suggestions are never
// scored; they keep provider order within each media type.
type Suggestion struct {
	media.Item
}

// Engine executes searches against the provider and ranks the results.
type Engine struct {
	provider        Provider
	scorer          *scoring.Scorer
	suggestionLimit int
	logger          zerolog.Logger
}

// NewEngine creates a search engine. suggestionLimit caps the dropdown row
// count; values below 1 fall back to 7.
func NewEngine(provider Provider, scorer *scoring.Scorer, suggestionLimit int, logger zerolog.Logger) *Engine {
	if suggestionLimit < 1 {
		suggestionLimit = 7
	}
	return &Engine{
		provider:        provider,
		scorer:          scorer,
		suggestionLimit: suggestionLimit,
		logger:          logger.With().Str("component", "search").Logger(),
	}
}

// Search runs a full search. With no filters the query is matched by text;
// any set filter routes the request through the discover endpoints, where
// the query text is not used. Movie and TV hits are ranked together; people
// follow unranked in provider order.
func (e *Engine) Search(ctx context.Context, query string, scope Scope, filters AdvancedFilters) ([]scoring.ScoredItem, error) {
	if !scope.Valid() {
		scope = ScopeMulti
	}
	if !filters.Empty() {
		return e.searchFiltered(ctx, scope, filters)
	}
	if query == "" {
		return []scoring.ScoredItem{}, nil
	}
	return e.searchText(ctx, query, scope)
}

func (e *Engine) searchText(ctx context.Context, query string, scope Scope) ([]scoring.ScoredItem, error) {
	var movies, tvShows, people []media.Item

	g, gctx := errgroup.WithContext(ctx)
	if scope == ScopeMulti || scope == ScopeMovie {
		g.Go(func() error {
			page, err := e.provider.SearchMovies(gctx, query)
			if err != nil {
				return fmt.Errorf("movie search: %w", err)
			}
			movies = media.NormalizeMovies(page.Results, e.logger)
			return nil
		})
	}
	if scope == ScopeMulti || scope == ScopeTV {
		g.Go(func() error {
			page, err := e.provider.SearchTV(gctx, query)
			if err != nil {
				return fmt.Errorf("tv search: %w", err)
			}
			tvShows = media.NormalizeTVList(page.Results, e.logger)
			return nil
		})
	}
	if scope == ScopeMulti || scope == ScopePerson {
		g.Go(func() error {
			page, err := e.provider.SearchPeople(gctx, query)
			if err != nil {
				return fmt.Errorf("person search: %w", err)
			}
			people = media.NormalizePeople(page.Results, e.logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := e.scorer.Rank(append(movies, tvShows...))
	for _, person := range people {
		ranked = append(ranked, scoring.ScoredItem{Item: person})
	}

	e.logger.Debug().
		Str("query", query).
		Str("scope", string(scope)).
		Int("results", len(ranked)).
		Msg("Text search completed")

	return ranked, nil
}

func (e *Engine) searchFiltered(ctx context.Context, scope Scope, filters AdvancedFilters) ([]scoring.ScoredItem, error) {
	filter := filters.discoverFilter()

	var movies, tvShows []media.Item

	g, gctx := errgroup.WithContext(ctx)
	if scope == ScopeMulti || scope == ScopeMovie {
		g.Go(func() error {
			page, err := e.provider.DiscoverMovies(gctx, filter)
			if err != nil {
				return fmt.Errorf("movie discover: %w", err)
			}
			movies = media.NormalizeMovies(page.Results, e.logger)
			return nil
		})
	}
	if scope == ScopeMulti || scope == ScopeTV {
		g.Go(func() error {
			page, err := e.provider.DiscoverTV(gctx, filter)
			if err != nil {
				return fmt.Errorf("tv discover: %w", err)
			}
			tvShows = media.NormalizeTVList(page.Results, e.logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := e.scorer.Rank(append(movies, tvShows...))

	e.logger.Debug().
		Str("scope", string(scope)).
		Int("results", len(ranked)).
		Msg("Filtered search completed")

	return ranked, nil
}

// Suggestions runs the three type searches in parallel and concatenates
// movies, then TV shows, then people, truncated to the configured limit.
// A failed branch contributes nothing; the others still populate.
func (e *Engine) Suggestions(ctx context.Context, query string) []Suggestion {
	if query == "" {
		return []Suggestion{}
	}

	var movies, tvShows, people []media.Item
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		page, err := e.provider.SearchMovies(ctx, query)
		if err != nil {
			e.logger.Warn().Err(err).Str("query", query).Msg("Movie suggestions failed")
			return
		}
		movies = media.NormalizeMovies(page.Results, e.logger)
	}()

	go func() {
		defer wg.Done()
		page, err := e.provider.SearchTV(ctx, query)
		if err != nil {
			e.logger.Warn().Err(err).Str("query", query).Msg("TV suggestions failed")
			return
		}
		tvShows = media.NormalizeTVList(page.Results, e.logger)
	}()

	go func() {
		defer wg.Done()
		page, err := e.provider.SearchPeople(ctx, query)
		if err != nil {
			e.logger.Warn().Err(err).Str("query", query).Msg("Person suggestions failed")
			return
		}
		people = media.NormalizePeople(page.Results, e.logger)
	}()

	wg.Wait()

	out := make([]Suggestion, 0, e.suggestionLimit)
	for _, group := range [][]media.Item{movies, tvShows, people} {
		for _, item := range group {
			if len(out) == e.suggestionLimit {
				return out
			}
			out = append(out, Suggestion{Item: item})
		}
	}
	return out
}
