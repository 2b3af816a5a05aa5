// Package media defines the normalized media item union shared by the
// feed, search, and detail pipelines.
package media

import "time"

// Type tags a MediaItem with its source kind. Discover and listing
// endpoints do not self-report a type, so the calling context stamps it.
type Type string

const (
	TypeMovie      Type = "movie"
	TypeTV         Type = "tv"
	TypePerson     Type = "person"
	TypeCollection Type = "collection"
)

// Valid reports whether t is one of the known media types.
func (t Type) Valid() bool {
	switch t {
	case TypeMovie, TypeTV, TypePerson, TypeCollection:
		return true
	}
	return false
}

// Item is the normalized shape every raw provider record maps into.
// Type is always set and drives which optional fields are meaningful:
// a person carries no rating or release date, a collection aggregates
// children. Empty image paths mean "no image" and are resolved to a
// placeholder URL at the presentation edge, never left to render broken.
type Item struct {
	ID                  int      `json:"id"`
	Type                Type     `json:"mediaType"`
	Title               string   `json:"title"`
	Overview            string   `json:"overview,omitempty"`
	ReleaseDate         string   `json:"releaseDate,omitempty"` // YYYY-MM-DD, empty when absent
	Rating              float64  `json:"rating,omitempty"`      // 0..10, 0 when absent
	VoteCount           int      `json:"voteCount,omitempty"`
	Popularity          float64  `json:"popularity,omitempty"`
	PosterPath          string   `json:"posterPath,omitempty"`
	BackdropPath        string   `json:"backdropPath,omitempty"`
	GenreIDs            []int    `json:"genreIds,omitempty"`
	OriginCountries     []string `json:"originCountries,omitempty"`
	ProductionCountries []string `json:"productionCountries,omitempty"`
}

// ReleaseTime parses the release date. ok is false when the date is
// absent or malformed.
func (i *Item) ReleaseTime() (t time.Time, ok bool) {
	if i.ReleaseDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", i.ReleaseDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Genre is a deduplicated genre entry from the merged movie+TV catalogs.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
