package feeds

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reelfeed/reelfeed/internal/media"
	"github.com/reelfeed/reelfeed/internal/media/scoring"
	"github.com/reelfeed/reelfeed/internal/provider/tmdb"
)

// fakeProvider serves canned pages and records which endpoints were hit.
// Set a fn field to override one endpoint's behavior.
type fakeProvider struct {
	mu    sync.Mutex
	calls []string

	popularMoviesFn  func() (*tmdb.MoviePage, error)
	popularTVFn      func() (*tmdb.TVPage, error)
	trendingMoviesFn func() (*tmdb.MoviePage, error)
	trendingTVFn     func() (*tmdb.TVPage, error)
	topRatedMoviesFn func() (*tmdb.MoviePage, error)
	topRatedTVFn     func() (*tmdb.TVPage, error)
	discoverMoviesFn func(tmdb.DiscoverFilter) (*tmdb.MoviePage, error)
	discoverTVFn     func(tmdb.DiscoverFilter) (*tmdb.TVPage, error)
	movieGenresFn    func() ([]tmdb.Genre, error)
	tvGenresFn       func() ([]tmdb.Genre, error)
}

func (f *fakeProvider) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeProvider) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func moviePage(ids ...int) *tmdb.MoviePage {
	page := &tmdb.MoviePage{Page: 1}
	for _, id := range ids {
		page.Results = append(page.Results, tmdb.MovieRecord{
			ID: id, Title: "Movie", ReleaseDate: "2024-01-01", VoteAverage: 7,
		})
	}
	page.TotalResults = len(page.Results)
	return page
}

func tvPage(ids ...int) *tmdb.TVPage {
	page := &tmdb.TVPage{Page: 1}
	for _, id := range ids {
		page.Results = append(page.Results, tmdb.TVRecord{
			ID: id, Name: "Show", FirstAirDate: "2024-01-01", VoteAverage: 7,
		})
	}
	page.TotalResults = len(page.Results)
	return page
}

func (f *fakeProvider) PopularMovies(ctx context.Context) (*tmdb.MoviePage, error) {
	f.record("popular/movie")
	if f.popularMoviesFn != nil {
		return f.popularMoviesFn()
	}
	return moviePage(1, 2), nil
}

func (f *fakeProvider) PopularTV(ctx context.Context) (*tmdb.TVPage, error) {
	f.record("popular/tv")
	if f.popularTVFn != nil {
		return f.popularTVFn()
	}
	return tvPage(11, 12), nil
}

func (f *fakeProvider) TrendingMovies(ctx context.Context, window tmdb.TrendingWindow) (*tmdb.MoviePage, error) {
	f.record("trending/movie/" + string(window))
	if f.trendingMoviesFn != nil {
		return f.trendingMoviesFn()
	}
	return moviePage(3, 4), nil
}

func (f *fakeProvider) TrendingTV(ctx context.Context, window tmdb.TrendingWindow) (*tmdb.TVPage, error) {
	f.record("trending/tv/" + string(window))
	if f.trendingTVFn != nil {
		return f.trendingTVFn()
	}
	return tvPage(13, 14), nil
}

func (f *fakeProvider) TopRatedMovies(ctx context.Context) (*tmdb.MoviePage, error) {
	f.record("top_rated/movie")
	if f.topRatedMoviesFn != nil {
		return f.topRatedMoviesFn()
	}
	return moviePage(5, 6), nil
}

func (f *fakeProvider) TopRatedTV(ctx context.Context) (*tmdb.TVPage, error) {
	f.record("top_rated/tv")
	if f.topRatedTVFn != nil {
		return f.topRatedTVFn()
	}
	return tvPage(15, 16), nil
}

func (f *fakeProvider) DiscoverMovies(ctx context.Context, filter tmdb.DiscoverFilter) (*tmdb.MoviePage, error) {
	f.record("discover/movie")
	if f.discoverMoviesFn != nil {
		return f.discoverMoviesFn(filter)
	}
	return moviePage(7, 8), nil
}

func (f *fakeProvider) DiscoverTV(ctx context.Context, filter tmdb.DiscoverFilter) (*tmdb.TVPage, error) {
	f.record("discover/tv")
	if f.discoverTVFn != nil {
		return f.discoverTVFn(filter)
	}
	return tvPage(17, 18), nil
}

func (f *fakeProvider) GetMovieGenres(ctx context.Context) ([]tmdb.Genre, error) {
	f.record("genre/movie")
	if f.movieGenresFn != nil {
		return f.movieGenresFn()
	}
	return []tmdb.Genre{{ID: 28, Name: "Action"}}, nil
}

func (f *fakeProvider) GetTVGenres(ctx context.Context) ([]tmdb.Genre, error) {
	f.record("genre/tv")
	if f.tvGenresFn != nil {
		return f.tvGenresFn()
	}
	return []tmdb.Genre{{ID: 10759, Name: "Action & Adventure"}}, nil
}

func newTestService(provider *fakeProvider) *Service {
	return NewService(provider, scoring.NewDefault(), NewCache(DefaultCacheConfig()), zerolog.Nop())
}

func TestHomeFeeds_AllFeedsPopulate(t *testing.T) {
	provider := &fakeProvider{}
	service := newTestService(provider)

	feeds := service.HomeFeeds(context.Background())

	if len(feeds.Popular) != 4 {
		t.Errorf("Popular = %d items, want 4", len(feeds.Popular))
	}
	if len(feeds.Trending) != 4 {
		t.Errorf("Trending = %d items, want 4", len(feeds.Trending))
	}
	if len(feeds.TopRatedMovies) != 2 || len(feeds.TopRatedTV) != 2 {
		t.Errorf("TopRated = %d/%d items, want 2/2",
			len(feeds.TopRatedMovies), len(feeds.TopRatedTV))
	}

	// Trending uses the weekly window.
	if provider.callCount("trending/movie/week") != 1 {
		t.Error("trending movies not fetched with the weekly window")
	}
}

func TestHomeFeeds_TopRatedKeepsProviderOrderUnscored(t *testing.T) {
	provider := &fakeProvider{
		topRatedMoviesFn: func() (*tmdb.MoviePage, error) {
			// Deliberately out of any score order.
			return moviePage(9, 3, 7), nil
		},
	}
	service := newTestService(provider)

	feeds := service.HomeFeeds(context.Background())

	want := []int{9, 3, 7}
	for i, id := range want {
		if feeds.TopRatedMovies[i].ID != id {
			t.Errorf("TopRatedMovies[%d].ID = %d, want %d", i, feeds.TopRatedMovies[i].ID, id)
		}
	}
}

func TestHomeFeeds_FeedFailureIsIsolated(t *testing.T) {
	provider := &fakeProvider{
		popularMoviesFn: func() (*tmdb.MoviePage, error) {
			return nil, errors.New("boom")
		},
	}
	service := newTestService(provider)

	feeds := service.HomeFeeds(context.Background())

	// The popular feed joins movie and TV all-or-nothing, so it is empty.
	if len(feeds.Popular) != 0 {
		t.Errorf("Popular = %d items, want 0 after partial failure", len(feeds.Popular))
	}
	// Every other feed still populates.
	if len(feeds.Trending) == 0 || len(feeds.TopRatedMovies) == 0 || len(feeds.TopRatedTV) == 0 {
		t.Error("unrelated feeds were emptied by the popular failure")
	}
}

func TestHomeFeeds_Cached(t *testing.T) {
	provider := &fakeProvider{}
	service := newTestService(provider)

	service.HomeFeeds(context.Background())
	service.HomeFeeds(context.Background())

	if got := provider.callCount("popular/movie"); got != 1 {
		t.Errorf("popular/movie fetched %d times, want 1", got)
	}
}

func TestHomeFeeds_FailedAssemblyIsNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	provider := &fakeProvider{
		popularMoviesFn: func() (*tmdb.MoviePage, error) {
			if fail.Load() {
				return nil, errors.New("boom")
			}
			return moviePage(1, 2), nil
		},
	}
	service := newTestService(provider)

	first := service.HomeFeeds(context.Background())
	if len(first.Popular) != 0 {
		t.Fatalf("Popular = %d items, want 0 during the outage", len(first.Popular))
	}

	// The provider recovers; the next call must refetch, not serve the
	// degraded assembly from cache.
	fail.Store(false)
	second := service.HomeFeeds(context.Background())
	if len(second.Popular) == 0 {
		t.Error("recovered provider still served the degraded assembly")
	}
	if got := provider.callCount("popular/movie"); got != 2 {
		t.Errorf("popular/movie fetched %d times, want 2", got)
	}
}

func TestGenreFeed(t *testing.T) {
	var movieFilter, tvFilter tmdb.DiscoverFilter
	provider := &fakeProvider{
		discoverMoviesFn: func(f tmdb.DiscoverFilter) (*tmdb.MoviePage, error) {
			movieFilter = f
			return moviePage(7), nil
		},
		discoverTVFn: func(f tmdb.DiscoverFilter) (*tmdb.TVPage, error) {
			tvFilter = f
			return tvPage(17), nil
		},
	}
	service := newTestService(provider)

	items, err := service.GenreFeed(context.Background(), 28)
	if err != nil {
		t.Fatalf("GenreFeed() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if movieFilter.WithGenres != "28" || tvFilter.WithGenres != "28" {
		t.Errorf("genre filter not applied: %q / %q", movieFilter.WithGenres, tvFilter.WithGenres)
	}
	// Movies outrank TV at equal rating due to the movie boost.
	if items[0].Type != media.TypeMovie {
		t.Errorf("items[0].Type = %q, want movie first", items[0].Type)
	}
}

func TestGenreFeed_ErrorPropagates(t *testing.T) {
	provider := &fakeProvider{
		discoverTVFn: func(tmdb.DiscoverFilter) (*tmdb.TVPage, error) {
			return nil, errors.New("boom")
		},
	}
	service := newTestService(provider)

	if _, err := service.GenreFeed(context.Background(), 28); err == nil {
		t.Fatal("expected error")
	}
}

func TestSelectFeed_Precedence(t *testing.T) {
	search := []scoring.ScoredItem{{Item: media.Item{ID: 1}}}
	genre := []scoring.ScoredItem{{Item: media.Item{ID: 2}}}
	home := &HomeFeeds{
		Popular:        []scoring.ScoredItem{{Item: media.Item{ID: 3}}},
		Trending:       []scoring.ScoredItem{{Item: media.Item{ID: 4}}},
		TopRatedMovies: []media.Item{{ID: 5}},
		TopRatedTV:     []media.Item{{ID: 6}},
	}

	tests := []struct {
		name   string
		search []scoring.ScoredItem
		genre  []scoring.ScoredItem
		home   *HomeFeeds
		want   FeedSource
	}{
		{"search wins", search, genre, home, SourceSearch},
		{"genre beats home", nil, genre, home, SourceGenre},
		{"trending beats top rated", nil, nil, home, SourceTrending},
		{
			"top rated beats popular",
			nil, nil,
			&HomeFeeds{
				Popular:        home.Popular,
				TopRatedMovies: home.TopRatedMovies,
				TopRatedTV:     home.TopRatedTV,
			},
			SourceTopRated,
		},
		{"popular is the last feed", nil, nil, &HomeFeeds{Popular: home.Popular}, SourcePopular},
		{"nothing renders the empty state", nil, nil, &HomeFeeds{}, SourceEmpty},
		{"nil home renders the empty state", nil, nil, nil, SourceEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered := SelectFeed(tt.search, tt.genre, tt.home)
			if rendered.Source != tt.want {
				t.Errorf("Source = %q, want %q", rendered.Source, tt.want)
			}
		})
	}
}

func TestSelectFeed_TopRatedConcatsMoviesFirst(t *testing.T) {
	home := &HomeFeeds{
		TopRatedMovies: []media.Item{{ID: 5, Type: media.TypeMovie}},
		TopRatedTV:     []media.Item{{ID: 6, Type: media.TypeTV}},
	}

	rendered := SelectFeed(nil, nil, home)

	if len(rendered.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(rendered.Items))
	}
	if rendered.Items[0].ID != 5 || rendered.Items[1].ID != 6 {
		t.Errorf("order = %d, %d, want movies first", rendered.Items[0].ID, rendered.Items[1].ID)
	}
	// Top-rated items are never scored.
	if rendered.Items[0].Score != 0 || rendered.Items[1].Score != 0 {
		t.Error("top-rated items must carry no score")
	}
}
