// Package details orchestrates the per-title detail pages: the core
// record joined with credits, similar titles, trailers, and whatever
// ancillary data the provider has for it.
package details

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reelfeed/reelfeed/internal/media"
	"github.com/reelfeed/reelfeed/internal/media/scoring"
	"github.com/reelfeed/reelfeed/internal/provider/tmdb"
)

const castLimit = 12

// Provider is the slice of the TMDB client the detail pages consume.
type Provider interface {
	GetMovie(ctx context.Context, id int) (*tmdb.MovieDetails, error)
	GetTV(ctx context.Context, id int) (*tmdb.TVDetails, error)
	GetPerson(ctx context.Context, id int) (*tmdb.PersonDetails, error)
	GetPersonMovieCredits(ctx context.Context, id int) (*tmdb.PersonMovieCredits, error)
	GetPersonTVCredits(ctx context.Context, id int) (*tmdb.PersonTVCredits, error)
	GetCredits(ctx context.Context, mediaType string, id int) (*tmdb.Credits, error)
	GetSimilarMovies(ctx context.Context, id int) (*tmdb.MoviePage, error)
	GetSimilarTV(ctx context.Context, id int) (*tmdb.TVPage, error)
	GetVideos(ctx context.Context, mediaType string, id int) (*tmdb.VideoList, error)
	GetReviews(ctx context.Context, mediaType string, id int) (*tmdb.ReviewPage, error)
	GetKeywords(ctx context.Context, mediaType string, id int) (*tmdb.KeywordList, error)
	GetWatchProviders(ctx context.Context, mediaType string, id int) (*tmdb.WatchProviderResponse, error)
	GetMovieReleaseDates(ctx context.Context, id int) (*tmdb.ReleaseDatesResponse, error)
	GetTVContentRatings(ctx context.Context, id int) (*tmdb.ContentRatingsResponse, error)
	GetSeason(ctx context.Context, tvID, seasonNumber int) (*tmdb.SeasonDetails, error)
	GetCollection(ctx context.Context, id int) (*tmdb.CollectionDetails, error)
}

// CastCredit is a cast row on a detail page.
type CastCredit struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profilePath"`
}

// Trailer is a playable video reference.
type Trailer struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// ReviewSummary is a trimmed review row.
type ReviewSummary struct {
	Author    string   `json:"author"`
	Rating    *float64 `json:"rating,omitempty"`
	Content   string   `json:"content"`
	CreatedAt string   `json:"createdAt"`
	URL       string   `json:"url"`
}

// MovieDetail is the assembled movie page payload.
type MovieDetail struct {
	media.Item
	Tagline       string                       `json:"tagline,omitempty"`
	Runtime       int                          `json:"runtime,omitempty"`
	Status        string                       `json:"status,omitempty"`
	ImdbID        string                       `json:"imdbId,omitempty"`
	Genres        []media.Genre                `json:"genres"`
	Cast          []CastCredit                 `json:"cast"`
	Directors     []string                     `json:"directors"`
	Similar       []media.Item                 `json:"similar"`
	Trailers      []Trailer                    `json:"trailers"`
	Keywords      []string                     `json:"keywords,omitempty"`
	Certification string                       `json:"certification,omitempty"`
	Reviews       []ReviewSummary              `json:"reviews,omitempty"`
	WatchOffers   map[string]tmdb.RegionOffers `json:"watchOffers,omitempty"`
	Collection    *CollectionAggregate         `json:"collection,omitempty"`
}

// TVDetail is the assembled TV page payload.
type TVDetail struct {
	media.Item
	Tagline       string                       `json:"tagline,omitempty"`
	Status        string                       `json:"status,omitempty"`
	ContentRating string                       `json:"contentRating,omitempty"`
	Genres        []media.Genre                `json:"genres"`
	Networks      []string                     `json:"networks"`
	SeasonCount   int                          `json:"seasonCount"`
	EpisodeCount  int                          `json:"episodeCount"`
	Seasons       []tmdb.Season                `json:"seasons"`
	Cast          []CastCredit                 `json:"cast"`
	Similar       []media.Item                 `json:"similar"`
	Trailers      []Trailer                    `json:"trailers"`
	Keywords      []string                     `json:"keywords,omitempty"`
	Reviews       []ReviewSummary              `json:"reviews,omitempty"`
	WatchOffers   map[string]tmdb.RegionOffers `json:"watchOffers,omitempty"`
}

// PersonDetail is the assembled person page payload.
type PersonDetail struct {
	ID           int                  `json:"id"`
	Name         string               `json:"name"`
	Biography    string               `json:"biography,omitempty"`
	Birthday     string               `json:"birthday,omitempty"`
	Deathday     string               `json:"deathday,omitempty"`
	PlaceOfBirth string               `json:"placeOfBirth,omitempty"`
	ProfilePath  string               `json:"profilePath"`
	Department   string               `json:"department,omitempty"`
	Credits      []scoring.ScoredItem `json:"credits"`
}

// Service builds the detail page payloads.
type Service struct {
	provider Provider
	scorer   *scoring.Scorer
	logger   zerolog.Logger
}

// NewService creates a new detail service.
func NewService(provider Provider, scorer *scoring.Scorer, logger zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		scorer:   scorer,
		logger:   logger.With().Str("component", "details").Logger(),
	}
}

// Movie assembles a movie detail page. The core record, credits, similar
// titles, and videos are fetched together and fail together. Ancillary
// data (reviews, keywords, watch offers, certification, the collection
// the movie belongs to) is fetched best-effort afterwards.
func (s *Service) Movie(ctx context.Context, id int) (*MovieDetail, error) {
	var (
		record  *tmdb.MovieDetails
		credits *tmdb.Credits
		similar *tmdb.MoviePage
		videos  *tmdb.VideoList
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		record, err = s.provider.GetMovie(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		credits, err = s.provider.GetCredits(gctx, "movie", id)
		return err
	})
	g.Go(func() error {
		var err error
		similar, err = s.provider.GetSimilarMovies(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		videos, err = s.provider.GetVideos(gctx, "movie", id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("movie detail %d: %w", id, err)
	}

	detail := &MovieDetail{
		Item:      media.NormalizeMovieDetails(record),
		Tagline:   record.Tagline,
		Runtime:   record.Runtime,
		Status:    record.Status,
		ImdbID:    record.ImdbID,
		Genres:    toGenres(record.Genres),
		Cast:      topCast(credits.Cast),
		Directors: directors(credits.Crew),
		Similar:   media.NormalizeMovies(similar.Results, s.logger),
		Trailers:  trailers(videos.Results),
	}

	s.attachMovieExtras(ctx, detail, record)
	return detail, nil
}

func (s *Service) attachMovieExtras(ctx context.Context, detail *MovieDetail, record *tmdb.MovieDetails) {
	id := detail.Item.ID

	if keywords, err := s.provider.GetKeywords(ctx, "movie", id); err == nil {
		detail.Keywords = keywordNames(keywords.Items())
	} else {
		s.logger.Debug().Err(err).Int("id", id).Msg("Movie keywords unavailable")
	}

	if reviews, err := s.provider.GetReviews(ctx, "movie", id); err == nil {
		detail.Reviews = reviewSummaries(reviews.Results)
	} else {
		s.logger.Debug().Err(err).Int("id", id).Msg("Movie reviews unavailable")
	}

	if offers, err := s.provider.GetWatchProviders(ctx, "movie", id); err == nil {
		detail.WatchOffers = offers.Results
	} else {
		s.logger.Debug().Err(err).Int("id", id).Msg("Watch offers unavailable")
	}

	if releases, err := s.provider.GetMovieReleaseDates(ctx, id); err == nil {
		detail.Certification = usCertification(releases.Results)
	} else {
		s.logger.Debug().Err(err).Int("id", id).Msg("Release dates unavailable")
	}

	if record.BelongsToCollection != nil {
		collection, err := s.Collection(ctx, record.BelongsToCollection.ID)
		if err != nil {
			s.logger.Warn().Err(err).
				Int("collectionId", record.BelongsToCollection.ID).
				Msg("Collection lookup failed")
		} else {
			detail.Collection = collection
		}
	}
}

// TV assembles a TV detail page. A NotFound from the provider is not an
// error here: the page is simply absent and (nil, nil) is returned.
func (s *Service) TV(ctx context.Context, id int) (*TVDetail, error) {
	var (
		record  *tmdb.TVDetails
		credits *tmdb.Credits
		similar *tmdb.TVPage
		videos  *tmdb.VideoList
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		record, err = s.provider.GetTV(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		credits, err = s.provider.GetCredits(gctx, "tv", id)
		return err
	})
	g.Go(func() error {
		var err error
		similar, err = s.provider.GetSimilarTV(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		videos, err = s.provider.GetVideos(gctx, "tv", id)
		return err
	})
	if err := g.Wait(); err != nil {
		if tmdb.IsNotFound(err) {
			s.logger.Debug().Int("id", id).Msg("TV title not found")
			return nil, nil
		}
		return nil, fmt.Errorf("tv detail %d: %w", id, err)
	}

	detail := &TVDetail{
		Item:         media.NormalizeTVDetails(record),
		Tagline:      record.Tagline,
		Status:       record.Status,
		Genres:       toGenres(record.Genres),
		Networks:     networkNames(record.Networks),
		SeasonCount:  record.NumberOfSeasons,
		EpisodeCount: record.NumberOfEpisodes,
		Seasons:      record.Seasons,
		Cast:         topCast(credits.Cast),
		Similar:      media.NormalizeTVList(similar.Results, s.logger),
		Trailers:     trailers(videos.Results),
	}

	s.attachTVExtras(ctx, detail)
	return detail, nil
}

func (s *Service) attachTVExtras(ctx context.Context, detail *TVDetail) {
	id := detail.Item.ID

	if keywords, err := s.provider.GetKeywords(ctx, "tv", id); err == nil {
		detail.Keywords = keywordNames(keywords.Items())
	} else {
		s.logger.Debug().Err(err).Int("id", id).Msg("TV keywords unavailable")
	}

	if reviews, err := s.provider.GetReviews(ctx, "tv", id); err == nil {
		detail.Reviews = reviewSummaries(reviews.Results)
	} else {
		s.logger.Debug().Err(err).Int("id", id).Msg("TV reviews unavailable")
	}

	if offers, err := s.provider.GetWatchProviders(ctx, "tv", id); err == nil {
		detail.WatchOffers = offers.Results
	} else {
		s.logger.Debug().Err(err).Int("id", id).Msg("Watch offers unavailable")
	}

	if ratings, err := s.provider.GetTVContentRatings(ctx, id); err == nil {
		detail.ContentRating = usContentRating(ratings.Results)
	} else {
		s.logger.Debug().Err(err).Int("id", id).Msg("Content ratings unavailable")
	}
}

// Season returns one season's episode list.
func (s *Service) Season(ctx context.Context, tvID, seasonNumber int) (*tmdb.SeasonDetails, error) {
	season, err := s.provider.GetSeason(ctx, tvID, seasonNumber)
	if err != nil {
		return nil, fmt.Errorf("season %d of tv %d: %w", seasonNumber, tvID, err)
	}
	return season, nil
}

// Person assembles a person page: the biography record joined with the
// person's movie and TV credits, tagged by type, merged, and ranked.
func (s *Service) Person(ctx context.Context, id int) (*PersonDetail, error) {
	var (
		record       *tmdb.PersonDetails
		movieCredits *tmdb.PersonMovieCredits
		tvCredits    *tmdb.PersonTVCredits
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		record, err = s.provider.GetPerson(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		movieCredits, err = s.provider.GetPersonMovieCredits(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		tvCredits, err = s.provider.GetPersonTVCredits(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("person detail %d: %w", id, err)
	}

	credits := media.NormalizeMovies(movieCredits.Cast, s.logger)
	credits = append(credits, media.NormalizeTVList(tvCredits.Cast, s.logger)...)

	profilePath := ""
	if record.ProfilePath != nil {
		profilePath = *record.ProfilePath
	}

	return &PersonDetail{
		ID:           record.ID,
		Name:         record.Name,
		Biography:    record.Biography,
		Birthday:     record.Birthday,
		Deathday:     record.Deathday,
		PlaceOfBirth: record.PlaceOfBirth,
		ProfilePath:  profilePath,
		Department:   record.KnownForDepartment,
		Credits:      s.scorer.Rank(credits),
	}, nil
}

func toGenres(raw []tmdb.Genre) []media.Genre {
	out := make([]media.Genre, 0, len(raw))
	for _, g := range raw {
		out = append(out, media.Genre{ID: g.ID, Name: g.Name})
	}
	return out
}

func topCast(cast []tmdb.CastMember) []CastCredit {
	if len(cast) > castLimit {
		cast = cast[:castLimit]
	}
	out := make([]CastCredit, 0, len(cast))
	for _, member := range cast {
		profile := ""
		if member.ProfilePath != nil {
			profile = *member.ProfilePath
		}
		out = append(out, CastCredit{
			ID:          member.ID,
			Name:        member.Name,
			Character:   member.Character,
			ProfilePath: profile,
		})
	}
	return out
}

func directors(crew []tmdb.CrewMember) []string {
	var out []string
	for _, member := range crew {
		if member.Job == "Director" {
			out = append(out, member.Name)
		}
	}
	return out
}

// trailers keeps YouTube videos, trailers before the rest. Provider
// order is preserved within each group.
func trailers(videos []tmdb.Video) []Trailer {
	var lead, rest []Trailer
	for _, v := range videos {
		if v.Site != "YouTube" {
			continue
		}
		t := Trailer{Key: v.Key, Name: v.Name, Site: v.Site, Type: v.Type, Official: v.Official}
		if v.Type == "Trailer" {
			lead = append(lead, t)
		} else {
			rest = append(rest, t)
		}
	}
	return append(lead, rest...)
}

func keywordNames(keywords []tmdb.Keyword) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, k.Name)
	}
	return out
}

func reviewSummaries(reviews []tmdb.Review) []ReviewSummary {
	out := make([]ReviewSummary, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ReviewSummary{
			Author:    r.Author,
			Rating:    r.AuthorDetails.Rating,
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
			URL:       r.URL,
		})
	}
	return out
}

// usCertification picks the US theatrical certification, falling back to
// any non-empty US certification.
func usCertification(regions []tmdb.ReleaseDatesByRegion) string {
	for _, region := range regions {
		if region.ISO3166_1 != "US" {
			continue
		}
		fallback := ""
		for _, release := range region.ReleaseDates {
			if release.Certification == "" {
				continue
			}
			if release.Type == tmdb.ReleaseDateTypeTheatrical {
				return release.Certification
			}
			if fallback == "" {
				fallback = release.Certification
			}
		}
		return fallback
	}
	return ""
}

func usContentRating(ratings []tmdb.ContentRating) string {
	for _, rating := range ratings {
		if rating.ISO3166_1 == "US" {
			return rating.Rating
		}
	}
	return ""
}

func networkNames(networks []tmdb.Network) []string {
	out := make([]string, 0, len(networks))
	for _, n := range networks {
		out = append(out, n.Name)
	}
	return out
}
