package search

import (
	"fmt"

	"github.com/reelfeed/reelfeed/internal/provider/tmdb"
)

// AdvancedFilters narrows a search by release year range and rating range.
// A nil field means the bound is not set. Any set field routes the request
// through the discover endpoints instead of text search.
type AdvancedFilters struct {
	Genre      *int     `json:"genre,omitempty"`
	YearFrom   *int     `json:"yearFrom,omitempty"`
	YearTo     *int     `json:"yearTo,omitempty"`
	RatingFrom *float64 `json:"ratingFrom,omitempty"`
	RatingTo   *float64 `json:"ratingTo,omitempty"`
}

// Empty reports whether no filter field is set.
func (f AdvancedFilters) Empty() bool {
	return f.Genre == nil && f.YearFrom == nil && f.YearTo == nil &&
		f.RatingFrom == nil && f.RatingTo == nil
}

// discoverFilter translates the year and rating bounds into provider
// parameters. Year bounds become full-year date bounds: YearFrom maps to
// January 1st, YearTo to December 31st, on both the movie and TV axes.
func (f AdvancedFilters) discoverFilter() tmdb.DiscoverFilter {
	var out tmdb.DiscoverFilter
	if f.Genre != nil {
		out.WithGenres = fmt.Sprintf("%d", *f.Genre)
	}
	if f.YearFrom != nil {
		date := fmt.Sprintf("%04d-01-01", *f.YearFrom)
		out.ReleaseDateGTE = date
		out.FirstAirDateGTE = date
	}
	if f.YearTo != nil {
		date := fmt.Sprintf("%04d-12-31", *f.YearTo)
		out.ReleaseDateLTE = date
		out.FirstAirDateLTE = date
	}
	if f.RatingFrom != nil {
		out.SetVoteAverageGTE(*f.RatingFrom)
	}
	if f.RatingTo != nil {
		out.SetVoteAverageLTE(*f.RatingTo)
	}
	return out
}
