// Package tmdb is a typed client for The Movie Database HTTP API.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/reelfeed/reelfeed/internal/config"
)

// TrendingWindow selects the trending aggregation window.
type TrendingWindow string

const (
	TrendingDay  TrendingWindow = "day"
	TrendingWeek TrendingWindow = "week"
)

// DiscoverFilter is the structured parameter bag for discover endpoints.
// Zero values mean "not set".
type DiscoverFilter struct {
	WithGenres          string
	WithCast            string
	PrimaryReleaseYear  int
	ReleaseDateGTE      string // movies: primary_release_date.gte (YYYY-MM-DD)
	ReleaseDateLTE      string // movies: primary_release_date.lte
	FirstAirDateGTE     string // tv: first_air_date.gte
	FirstAirDateLTE     string // tv: first_air_date.lte
	VoteAverageGTE      float64
	VoteAverageLTE      float64
	hasVoteAverageGTE   bool
	hasVoteAverageLTE   bool
}

// SetVoteAverageGTE sets the lower rating bound. Needed because 0 is a valid bound.
func (f *DiscoverFilter) SetVoteAverageGTE(v float64) {
	f.VoteAverageGTE = v
	f.hasVoteAverageGTE = true
}

// SetVoteAverageLTE sets the upper rating bound.
func (f *DiscoverFilter) SetVoteAverageLTE(v float64) {
	f.VoteAverageLTE = v
	f.hasVoteAverageLTE = true
}

// movieValues translates the filter into discover/movie query parameters.
func (f *DiscoverFilter) movieValues() url.Values {
	params := url.Values{}
	if f.WithGenres != "" {
		params.Set("with_genres", f.WithGenres)
	}
	if f.WithCast != "" {
		params.Set("with_cast", f.WithCast)
	}
	if f.PrimaryReleaseYear > 0 {
		params.Set("primary_release_year", fmt.Sprintf("%d", f.PrimaryReleaseYear))
	}
	if f.ReleaseDateGTE != "" {
		params.Set("primary_release_date.gte", f.ReleaseDateGTE)
	}
	if f.ReleaseDateLTE != "" {
		params.Set("primary_release_date.lte", f.ReleaseDateLTE)
	}
	f.voteValues(params)
	return params
}

// tvValues translates the filter into discover/tv query parameters.
func (f *DiscoverFilter) tvValues() url.Values {
	params := url.Values{}
	if f.WithGenres != "" {
		params.Set("with_genres", f.WithGenres)
	}
	if f.FirstAirDateGTE != "" {
		params.Set("first_air_date.gte", f.FirstAirDateGTE)
	}
	if f.FirstAirDateLTE != "" {
		params.Set("first_air_date.lte", f.FirstAirDateLTE)
	}
	f.voteValues(params)
	return params
}

func (f *DiscoverFilter) voteValues(params url.Values) {
	if f.hasVoteAverageGTE {
		params.Set("vote_average.gte", formatFloat(f.VoteAverageGTE))
	}
	if f.hasVoteAverageLTE {
		params.Set("vote_average.lte", formatFloat(f.VoteAverageLTE))
	}
}

func formatFloat(v float64) string {
	if v == float64(int(v)) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%g", v)
}

// Client is a TMDB API client. It performs no retries; callers own retry
// policy. A shared limiter keeps parallel fan-outs inside TMDB's rate caps.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 40
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 10
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger.With().Str("component", "tmdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tmdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Test verifies connectivity to the TMDB API by making a configuration request.
func (c *Client) Test(ctx context.Context) error {
	var result struct {
		Images struct {
			BaseURL string `json:"base_url"`
		} `json:"images"`
	}
	return c.get(ctx, "/configuration", nil, &result)
}

// SearchMovies searches for movies by title.
func (c *Client) SearchMovies(ctx context.Context, query string) (*MoviePage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")

	var page MoviePage
	if err := c.get(ctx, "/search/movie", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchTV searches for TV series by name.
func (c *Client) SearchTV(ctx context.Context, query string) (*TVPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")

	var page TVPage
	if err := c.get(ctx, "/search/tv", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchPeople searches for people by name.
func (c *Client) SearchPeople(ctx context.Context, query string) (*PersonPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")

	var page PersonPage
	if err := c.get(ctx, "/search/person", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchKeywords searches for keywords by text.
func (c *Client) SearchKeywords(ctx context.Context, query string) (*KeywordPage, error) {
	params := url.Values{}
	params.Set("query", query)

	var page KeywordPage
	if err := c.get(ctx, "/search/keyword", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// DiscoverMovies queries discover/movie with the given filter bag.
func (c *Client) DiscoverMovies(ctx context.Context, filter DiscoverFilter) (*MoviePage, error) {
	var page MoviePage
	if err := c.get(ctx, "/discover/movie", filter.movieValues(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// DiscoverTV queries discover/tv with the given filter bag.
func (c *Client) DiscoverTV(ctx context.Context, filter DiscoverFilter) (*TVPage, error) {
	var page TVPage
	if err := c.get(ctx, "/discover/tv", filter.tvValues(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PopularMovies fetches movie/popular.
func (c *Client) PopularMovies(ctx context.Context) (*MoviePage, error) {
	var page MoviePage
	if err := c.get(ctx, "/movie/popular", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PopularTV fetches tv/popular.
func (c *Client) PopularTV(ctx context.Context) (*TVPage, error) {
	var page TVPage
	if err := c.get(ctx, "/tv/popular", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// TopRatedMovies fetches movie/top_rated.
func (c *Client) TopRatedMovies(ctx context.Context) (*MoviePage, error) {
	var page MoviePage
	if err := c.get(ctx, "/movie/top_rated", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// TopRatedTV fetches tv/top_rated.
func (c *Client) TopRatedTV(ctx context.Context) (*TVPage, error) {
	var page TVPage
	if err := c.get(ctx, "/tv/top_rated", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// TrendingMovies fetches trending/movie/{window}.
func (c *Client) TrendingMovies(ctx context.Context, window TrendingWindow) (*MoviePage, error) {
	var page MoviePage
	if err := c.get(ctx, fmt.Sprintf("/trending/movie/%s", window), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// TrendingTV fetches trending/tv/{window}.
func (c *Client) TrendingTV(ctx context.Context, window TrendingWindow) (*TVPage, error) {
	var page TVPage
	if err := c.get(ctx, fmt.Sprintf("/trending/tv/%s", window), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetMovie fetches movie details by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, id int) (*MovieDetails, error) {
	var details MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// GetTV fetches TV details by TMDB ID, including the collection reference.
func (c *Client) GetTV(ctx context.Context, id int) (*TVDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "belongs_to_collection")

	var details TVDetails
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", id), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// GetPerson fetches person details by TMDB ID.
func (c *Client) GetPerson(ctx context.Context, id int) (*PersonDetails, error) {
	var details PersonDetails
	if err := c.get(ctx, fmt.Sprintf("/person/%d", id), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// GetPersonMovieCredits fetches a person's movie cast credits.
func (c *Client) GetPersonMovieCredits(ctx context.Context, id int) (*PersonMovieCredits, error) {
	var credits PersonMovieCredits
	if err := c.get(ctx, fmt.Sprintf("/person/%d/movie_credits", id), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// GetPersonTVCredits fetches a person's TV cast credits.
func (c *Client) GetPersonTVCredits(ctx context.Context, id int) (*PersonTVCredits, error) {
	var credits PersonTVCredits
	if err := c.get(ctx, fmt.Sprintf("/person/%d/tv_credits", id), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// GetCredits fetches {type}/{id}/credits. mediaType is "movie" or "tv".
func (c *Client) GetCredits(ctx context.Context, mediaType string, id int) (*Credits, error) {
	var credits Credits
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/credits", mediaType, id), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// GetSimilarMovies fetches movie/{id}/similar.
func (c *Client) GetSimilarMovies(ctx context.Context, id int) (*MoviePage, error) {
	var page MoviePage
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/similar", id), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetSimilarTV fetches tv/{id}/similar.
func (c *Client) GetSimilarTV(ctx context.Context, id int) (*TVPage, error) {
	var page TVPage
	if err := c.get(ctx, fmt.Sprintf("/tv/%d/similar", id), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetRecommendations fetches movie/{id}/recommendations.
func (c *Client) GetRecommendations(ctx context.Context, id int) (*MoviePage, error) {
	var page MoviePage
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/recommendations", id), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetVideos fetches {type}/{id}/videos. mediaType is "movie" or "tv".
func (c *Client) GetVideos(ctx context.Context, mediaType string, id int) (*VideoList, error) {
	var videos VideoList
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/videos", mediaType, id), nil, &videos); err != nil {
		return nil, err
	}
	return &videos, nil
}

// GetReviews fetches {type}/{id}/reviews.
func (c *Client) GetReviews(ctx context.Context, mediaType string, id int) (*ReviewPage, error) {
	var reviews ReviewPage
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/reviews", mediaType, id), nil, &reviews); err != nil {
		return nil, err
	}
	return &reviews, nil
}

// GetKeywords fetches {type}/{id}/keywords.
func (c *Client) GetKeywords(ctx context.Context, mediaType string, id int) (*KeywordList, error) {
	var keywords KeywordList
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/keywords", mediaType, id), nil, &keywords); err != nil {
		return nil, err
	}
	return &keywords, nil
}

// GetWatchProviders fetches {type}/{id}/watch/providers.
func (c *Client) GetWatchProviders(ctx context.Context, mediaType string, id int) (*WatchProviderResponse, error) {
	var providers WatchProviderResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/watch/providers", mediaType, id), nil, &providers); err != nil {
		return nil, err
	}
	return &providers, nil
}

// GetMovieReleaseDates fetches movie/{id}/release_dates.
func (c *Client) GetMovieReleaseDates(ctx context.Context, id int) (*ReleaseDatesResponse, error) {
	var dates ReleaseDatesResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/release_dates", id), nil, &dates); err != nil {
		return nil, err
	}
	return &dates, nil
}

// GetTVContentRatings fetches tv/{id}/content_ratings.
func (c *Client) GetTVContentRatings(ctx context.Context, id int) (*ContentRatingsResponse, error) {
	var ratings ContentRatingsResponse
	if err := c.get(ctx, fmt.Sprintf("/tv/%d/content_ratings", id), nil, &ratings); err != nil {
		return nil, err
	}
	return &ratings, nil
}

// GetSeason fetches tv/{id}/season/{n}.
func (c *Client) GetSeason(ctx context.Context, tvID, seasonNumber int) (*SeasonDetails, error) {
	var season SeasonDetails
	if err := c.get(ctx, fmt.Sprintf("/tv/%d/season/%d", tvID, seasonNumber), nil, &season); err != nil {
		return nil, err
	}
	return &season, nil
}

// GetMovieGenres fetches genre/movie/list.
func (c *Client) GetMovieGenres(ctx context.Context) ([]Genre, error) {
	var list GenreList
	if err := c.get(ctx, "/genre/movie/list", nil, &list); err != nil {
		return nil, err
	}
	return list.Genres, nil
}

// GetTVGenres fetches genre/tv/list.
func (c *Client) GetTVGenres(ctx context.Context) ([]Genre, error) {
	var list GenreList
	if err := c.get(ctx, "/genre/tv/list", nil, &list); err != nil {
		return nil, err
	}
	return list.Genres, nil
}

// GetCollection fetches collection/{id}.
func (c *Client) GetCollection(ctx context.Context, id int) (*CollectionDetails, error) {
	var details CollectionDetails
	if err := c.get(ctx, fmt.Sprintf("/collection/%d", id), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// get performs a rate-limited HTTP GET and decodes the JSON response.
// The API key and language ride on every request as query parameters.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.config.APIKey)
	if c.config.Language != "" {
		params.Set("language", c.config.Language)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, path, params.Encode())

	if err := c.limiter.Wait(ctx); err != nil {
		return networkError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("HTTP request failed")
		return networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("message", errResp.StatusMessage).
			Msg("TMDB API error")

		switch resp.StatusCode {
		case http.StatusNotFound:
			return notFoundError(errResp.StatusMessage)
		case http.StatusTooManyRequests:
			return rateLimitedError(errResp.StatusMessage)
		default:
			return statusError(resp.StatusCode, errResp.StatusMessage)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
