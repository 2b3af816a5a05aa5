package media

import (
	"github.com/rs/zerolog"

	"github.com/reelfeed/reelfeed/internal/provider/tmdb"
)

// NormalizeMovie maps a raw movie list record into the media union.
func NormalizeMovie(rec tmdb.MovieRecord) Item {
	return Item{
		ID:           rec.ID,
		Type:         TypeMovie,
		Title:        rec.Title,
		Overview:     rec.Overview,
		ReleaseDate:  rec.ReleaseDate,
		Rating:       rec.VoteAverage,
		VoteCount:    rec.VoteCount,
		Popularity:   rec.Popularity,
		PosterPath:   derefPath(rec.PosterPath),
		BackdropPath: derefPath(rec.BackdropPath),
		GenreIDs:     rec.GenreIDs,
	}
}

// NormalizeTV maps a raw TV list record into the media union.
func NormalizeTV(rec tmdb.TVRecord) Item {
	return Item{
		ID:              rec.ID,
		Type:            TypeTV,
		Title:           rec.Name,
		Overview:        rec.Overview,
		ReleaseDate:     rec.FirstAirDate,
		Rating:          rec.VoteAverage,
		VoteCount:       rec.VoteCount,
		Popularity:      rec.Popularity,
		PosterPath:      derefPath(rec.PosterPath),
		BackdropPath:    derefPath(rec.BackdropPath),
		GenreIDs:        rec.GenreIDs,
		OriginCountries: rec.OriginCountry,
	}
}

// NormalizePerson maps a raw person record into the media union. People
// carry no rating or release date.
func NormalizePerson(rec tmdb.PersonRecord) Item {
	return Item{
		ID:         rec.ID,
		Type:       TypePerson,
		Title:      rec.Name,
		Popularity: rec.Popularity,
		PosterPath: derefPath(rec.ProfilePath),
	}
}

// NormalizeMovieDetails maps full movie details into the media union.
// Production countries come from both production_countries and the
// production companies' origin countries, so the US-origin scoring
// check works on either shape.
func NormalizeMovieDetails(d *tmdb.MovieDetails) Item {
	genreIDs := make([]int, 0, len(d.Genres))
	for _, g := range d.Genres {
		genreIDs = append(genreIDs, g.ID)
	}

	var countries []string
	for _, pc := range d.ProductionCountries {
		countries = appendUnique(countries, pc.ISO3166_1)
	}
	for _, co := range d.ProductionCompanies {
		countries = appendUnique(countries, co.OriginCountry)
	}

	return Item{
		ID:                  d.ID,
		Type:                TypeMovie,
		Title:               d.Title,
		Overview:            d.Overview,
		ReleaseDate:         d.ReleaseDate,
		Rating:              d.VoteAverage,
		VoteCount:           d.VoteCount,
		Popularity:          d.Popularity,
		PosterPath:          derefPath(d.PosterPath),
		BackdropPath:        derefPath(d.BackdropPath),
		GenreIDs:            genreIDs,
		ProductionCountries: countries,
	}
}

// NormalizeTVDetails maps full TV details into the media union.
func NormalizeTVDetails(d *tmdb.TVDetails) Item {
	genreIDs := make([]int, 0, len(d.Genres))
	for _, g := range d.Genres {
		genreIDs = append(genreIDs, g.ID)
	}

	return Item{
		ID:              d.ID,
		Type:            TypeTV,
		Title:           d.Name,
		Overview:        d.Overview,
		ReleaseDate:     d.FirstAirDate,
		Rating:          d.VoteAverage,
		VoteCount:       d.VoteCount,
		Popularity:      d.Popularity,
		PosterPath:      derefPath(d.PosterPath),
		BackdropPath:    derefPath(d.BackdropPath),
		GenreIDs:        genreIDs,
		OriginCountries: d.OriginCountry,
	}
}

// NormalizeCollectionPart maps one collection member. Older payloads omit
// media_type; a record carrying a title is a movie, one carrying a name
// is a TV entry. ok is false when the record fails the minimal contract
// (no id, or no way to determine a type).
func NormalizeCollectionPart(p tmdb.CollectionPart) (Item, bool) {
	if p.ID == 0 {
		return Item{}, false
	}

	var typ Type
	var title, date string
	switch {
	case p.MediaType != "" && Type(p.MediaType).Valid():
		typ = Type(p.MediaType)
		title, date = p.Title, p.ReleaseDate
		if typ == TypeTV {
			title, date = p.Name, p.FirstAirDate
		}
	case p.Title != "":
		typ = TypeMovie
		title, date = p.Title, p.ReleaseDate
	case p.Name != "":
		typ = TypeTV
		title, date = p.Name, p.FirstAirDate
	default:
		return Item{}, false
	}

	return Item{
		ID:           p.ID,
		Type:         typ,
		Title:        title,
		Overview:     p.Overview,
		ReleaseDate:  date,
		Rating:       p.VoteAverage,
		VoteCount:    p.VoteCount,
		PosterPath:   derefPath(p.PosterPath),
		BackdropPath: derefPath(p.BackdropPath),
		GenreIDs:     p.GenreIDs,
	}, true
}

// NormalizeMovies maps a movie page, dropping records that fail the
// minimal contract with a logged warning rather than an error.
func NormalizeMovies(recs []tmdb.MovieRecord, logger zerolog.Logger) []Item {
	items := make([]Item, 0, len(recs))
	for _, rec := range recs {
		if rec.ID == 0 {
			logger.Warn().Str("title", rec.Title).Msg("Dropping movie record without id")
			continue
		}
		items = append(items, NormalizeMovie(rec))
	}
	return items
}

// NormalizeTVList maps a TV page, dropping records that fail the minimal
// contract with a logged warning.
func NormalizeTVList(recs []tmdb.TVRecord, logger zerolog.Logger) []Item {
	items := make([]Item, 0, len(recs))
	for _, rec := range recs {
		if rec.ID == 0 {
			logger.Warn().Str("name", rec.Name).Msg("Dropping TV record without id")
			continue
		}
		items = append(items, NormalizeTV(rec))
	}
	return items
}

// NormalizePeople maps a person page, dropping records without an id.
func NormalizePeople(recs []tmdb.PersonRecord, logger zerolog.Logger) []Item {
	items := make([]Item, 0, len(recs))
	for _, rec := range recs {
		if rec.ID == 0 {
			logger.Warn().Str("name", rec.Name).Msg("Dropping person record without id")
			continue
		}
		items = append(items, NormalizePerson(rec))
	}
	return items
}

func derefPath(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
