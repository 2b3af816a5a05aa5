package tmdb

// MoviePage is a page of movie results from search, discover, or listing endpoints.
type MoviePage struct {
	Page         int           `json:"page"`
	Results      []MovieRecord `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// MovieRecord is a movie from TMDB list results.
type MovieRecord struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	Adult            bool    `json:"adult"`
	GenreIDs         []int   `json:"genre_ids"`
	OriginalLanguage string  `json:"original_language"`
}

// MovieDetails is the detailed movie info from TMDB.
type MovieDetails struct {
	ID                  int                 `json:"id"`
	Title               string              `json:"title"`
	OriginalTitle       string              `json:"original_title"`
	Overview            string              `json:"overview"`
	Tagline             string              `json:"tagline"`
	ReleaseDate         string              `json:"release_date"`
	PosterPath          *string             `json:"poster_path"`
	BackdropPath        *string             `json:"backdrop_path"`
	VoteAverage         float64             `json:"vote_average"`
	VoteCount           int                 `json:"vote_count"`
	Popularity          float64             `json:"popularity"`
	Runtime             int                 `json:"runtime"`
	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
	Status              string              `json:"status"`
	ImdbID              string              `json:"imdb_id"`
	OriginalLanguage    string              `json:"original_language"`
	Genres              []Genre             `json:"genres"`
	ProductionCompanies []ProductionCompany `json:"production_companies,omitempty"`
	ProductionCountries []ProductionCountry `json:"production_countries,omitempty"`
	BelongsToCollection *CollectionStub     `json:"belongs_to_collection,omitempty"`
}

// TVPage is a page of TV results from search, discover, or listing endpoints.
type TVPage struct {
	Page         int        `json:"page"`
	Results      []TVRecord `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// TVRecord is a TV series from TMDB list results.
type TVRecord struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	OriginalName     string   `json:"original_name"`
	Overview         string   `json:"overview"`
	FirstAirDate     string   `json:"first_air_date"`
	PosterPath       *string  `json:"poster_path"`
	BackdropPath     *string  `json:"backdrop_path"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	Popularity       float64  `json:"popularity"`
	GenreIDs         []int    `json:"genre_ids"`
	OriginCountry    []string `json:"origin_country"`
	OriginalLanguage string   `json:"original_language"`
}

// TVDetails is the detailed TV series info from TMDB.
type TVDetails struct {
	ID                  int                 `json:"id"`
	Name                string              `json:"name"`
	OriginalName        string              `json:"original_name"`
	Overview            string              `json:"overview"`
	Tagline             string              `json:"tagline"`
	FirstAirDate        string              `json:"first_air_date"`
	LastAirDate         string              `json:"last_air_date"`
	PosterPath          *string             `json:"poster_path"`
	BackdropPath        *string             `json:"backdrop_path"`
	VoteAverage         float64             `json:"vote_average"`
	VoteCount           int                 `json:"vote_count"`
	Popularity          float64             `json:"popularity"`
	Status              string              `json:"status"`
	Type                string              `json:"type"`
	OriginCountry       []string            `json:"origin_country"`
	OriginalLanguage    string              `json:"original_language"`
	Genres              []Genre             `json:"genres"`
	Networks            []Network           `json:"networks"`
	NumberOfSeasons     int                 `json:"number_of_seasons"`
	NumberOfEpisodes    int                 `json:"number_of_episodes"`
	EpisodeRunTime      []int               `json:"episode_run_time"`
	Seasons             []Season            `json:"seasons"`
	ProductionCompanies []ProductionCompany `json:"production_companies,omitempty"`
	BelongsToCollection *CollectionStub     `json:"belongs_to_collection,omitempty"`
}

// PersonPage is a page of person results from search.
type PersonPage struct {
	Page         int            `json:"page"`
	Results      []PersonRecord `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// PersonRecord is a person from TMDB search results.
type PersonRecord struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	ProfilePath        *string `json:"profile_path"`
	KnownForDepartment string  `json:"known_for_department"`
	Popularity         float64 `json:"popularity"`
	Adult              bool    `json:"adult"`
}

// PersonDetails is the detailed person info from TMDB.
type PersonDetails struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	Biography          string  `json:"biography"`
	Birthday           string  `json:"birthday"`
	Deathday           string  `json:"deathday"`
	PlaceOfBirth       string  `json:"place_of_birth"`
	ProfilePath        *string `json:"profile_path"`
	KnownForDepartment string  `json:"known_for_department"`
	Popularity         float64 `json:"popularity"`
	ImdbID             string  `json:"imdb_id"`
}

// PersonMovieCredits is the cast list from person/{id}/movie_credits.
type PersonMovieCredits struct {
	ID   int           `json:"id"`
	Cast []MovieRecord `json:"cast"`
}

// PersonTVCredits is the cast list from person/{id}/tv_credits.
type PersonTVCredits struct {
	ID   int        `json:"id"`
	Cast []TVRecord `json:"cast"`
}

// KeywordPage is a page of keyword results from search.
type KeywordPage struct {
	Page         int       `json:"page"`
	Results      []Keyword `json:"results"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
}

// Keyword is a TMDB keyword.
type Keyword struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// KeywordList is the response from {type}/{id}/keywords.
type KeywordList struct {
	ID       int       `json:"id"`
	Keywords []Keyword `json:"keywords"`
	Results  []Keyword `json:"results"` // TV uses "results" instead of "keywords"
}

// Items returns the keywords regardless of which field the endpoint used.
func (l *KeywordList) Items() []Keyword {
	if len(l.Keywords) > 0 {
		return l.Keywords
	}
	return l.Results
}

// Genre represents a genre from TMDB.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreList is the response from genre/{movie|tv}/list.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// Network represents a TV network from TMDB.
type Network struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LogoPath      string `json:"logo_path"`
	OriginCountry string `json:"origin_country"`
}

// ProductionCompany represents a production company from TMDB.
type ProductionCompany struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	LogoPath      *string `json:"logo_path"`
	OriginCountry string  `json:"origin_country"`
}

// ProductionCountry represents a production country from TMDB.
type ProductionCountry struct {
	ISO3166_1 string `json:"iso_3166_1"`
	Name      string `json:"name"`
}

// Season represents a TV season summary from TV details.
type Season struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	AirDate      string  `json:"air_date"`
	EpisodeCount int     `json:"episode_count"`
	PosterPath   *string `json:"poster_path"`
	SeasonNumber int     `json:"season_number"`
}

// SeasonDetails is the detailed season info from tv/{id}/season/{n}.
type SeasonDetails struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview"`
	AirDate      string    `json:"air_date"`
	PosterPath   *string   `json:"poster_path"`
	SeasonNumber int       `json:"season_number"`
	Episodes     []Episode `json:"episodes"`
}

// Episode represents a TV episode from season details.
type Episode struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	EpisodeNumber int     `json:"episode_number"`
	SeasonNumber  int     `json:"season_number"`
	Runtime       int     `json:"runtime"`
	StillPath     *string `json:"still_path"`
	VoteAverage   float64 `json:"vote_average"`
}

// Credits is the response from {type}/{id}/credits.
type Credits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CastMember is a cast entry from credits.
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

// CrewMember is a crew entry from credits.
type CrewMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	Department  string  `json:"department"`
	ProfilePath *string `json:"profile_path"`
}

// VideoList is the response from {type}/{id}/videos.
type VideoList struct {
	ID      int     `json:"id"`
	Results []Video `json:"results"`
}

// Video is a trailer/teaser/clip entry.
type Video struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// ReviewPage is the response from {type}/{id}/reviews.
type ReviewPage struct {
	ID           int      `json:"id"`
	Page         int      `json:"page"`
	Results      []Review `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Review is a user review entry.
type Review struct {
	ID            string        `json:"id"`
	Author        string        `json:"author"`
	AuthorDetails AuthorDetails `json:"author_details"`
	Content       string        `json:"content"`
	CreatedAt     string        `json:"created_at"`
	URL           string        `json:"url"`
}

// AuthorDetails carries the reviewer's rating and avatar.
type AuthorDetails struct {
	Username   string   `json:"username"`
	AvatarPath *string  `json:"avatar_path"`
	Rating     *float64 `json:"rating"`
}

// WatchProviderResponse is the response from {type}/{id}/watch/providers.
type WatchProviderResponse struct {
	ID      int                     `json:"id"`
	Results map[string]RegionOffers `json:"results"`
}

// RegionOffers groups streaming offers for one country.
type RegionOffers struct {
	Link     string          `json:"link"`
	Flatrate []WatchProvider `json:"flatrate,omitempty"`
	Rent     []WatchProvider `json:"rent,omitempty"`
	Buy      []WatchProvider `json:"buy,omitempty"`
}

// WatchProvider is a single streaming provider entry.
type WatchProvider struct {
	ProviderID   int     `json:"provider_id"`
	ProviderName string  `json:"provider_name"`
	LogoPath     *string `json:"logo_path"`
}

// ReleaseDatesResponse is the response from movie/{id}/release_dates.
type ReleaseDatesResponse struct {
	ID      int                    `json:"id"`
	Results []ReleaseDatesByRegion `json:"results"`
}

// ReleaseDatesByRegion groups release dates for one country.
type ReleaseDatesByRegion struct {
	ISO3166_1    string        `json:"iso_3166_1"`
	ReleaseDates []ReleaseDate `json:"release_dates"`
}

// ReleaseDate is a single release event with certification.
type ReleaseDate struct {
	Certification string `json:"certification"`
	ReleaseDate   string `json:"release_date"`
	Type          int    `json:"type"`
}

// Release date types from TMDB.
const (
	ReleaseDateTypeTheatrical = 3
	ReleaseDateTypeDigital    = 4
	ReleaseDateTypePhysical   = 5
)

// ContentRatingsResponse is the response from tv/{id}/content_ratings.
type ContentRatingsResponse struct {
	ID      int             `json:"id"`
	Results []ContentRating `json:"results"`
}

// ContentRating is a TV certification for one country.
type ContentRating struct {
	ISO3166_1 string `json:"iso_3166_1"`
	Rating    string `json:"rating"`
}

// CollectionStub is the belongs_to_collection reference on movie/TV details.
type CollectionStub struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
}

// CollectionDetails is the response from collection/{id}.
type CollectionDetails struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	Overview     string           `json:"overview"`
	PosterPath   *string          `json:"poster_path"`
	BackdropPath *string          `json:"backdrop_path"`
	Parts        []CollectionPart `json:"parts"`
}

// CollectionPart is one member of a collection. Movies carry "title",
// TV entries carry "name"; media_type is present on newer API payloads.
type CollectionPart struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	MediaType    string  `json:"media_type"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	GenreIDs     []int   `json:"genre_ids"`
}

// ErrorResponse is an error payload from the TMDB API.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
