package feeds

import (
	"context"

	"github.com/reelfeed/reelfeed/internal/provider/tmdb"
)

// Provider is the slice of the TMDB client the feed pipeline consumes.
type Provider interface {
	PopularMovies(ctx context.Context) (*tmdb.MoviePage, error)
	PopularTV(ctx context.Context) (*tmdb.TVPage, error)
	TrendingMovies(ctx context.Context, window tmdb.TrendingWindow) (*tmdb.MoviePage, error)
	TrendingTV(ctx context.Context, window tmdb.TrendingWindow) (*tmdb.TVPage, error)
	TopRatedMovies(ctx context.Context) (*tmdb.MoviePage, error)
	TopRatedTV(ctx context.Context) (*tmdb.TVPage, error)
	DiscoverMovies(ctx context.Context, filter tmdb.DiscoverFilter) (*tmdb.MoviePage, error)
	DiscoverTV(ctx context.Context, filter tmdb.DiscoverFilter) (*tmdb.TVPage, error)
	GetMovieGenres(ctx context.Context) ([]tmdb.Genre, error)
	GetTVGenres(ctx context.Context) ([]tmdb.Genre, error)
}
