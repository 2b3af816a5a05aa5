// Package scoring ranks normalized media items for blended feeds.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/reelfeed/reelfeed/internal/media"
)

// Weights holds the blend weights for the relevance score. The values
// are fixed at runtime; every caller shares one Scorer instead of
// re-deriving the formula inline.
type Weights struct {
	Recency          float64 // weight on the exponential recency factor
	Rating           float64 // weight on the 0..100-scaled vote average
	OriginBoost      float64 // flat boost for US-origin titles
	MovieBoost       float64 // flat boost applied to movies over TV
	RecencyScaleDays float64 // decay constant in days for the recency factor
}

// DefaultWeights returns the production blend weights.
func DefaultWeights() Weights {
	return Weights{
		Recency:          0.4,
		Rating:           0.3,
		OriginBoost:      0.6,
		MovieBoost:       0.9,
		RecencyScaleDays: 365,
	}
}

// defaultReleaseDate stands in for items with no release date: maximal
// age, so the recency term contributes essentially nothing.
var defaultReleaseDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// originCountryUS is the origin checked by the flat origin boost.
const originCountryUS = "US"

// ScoredItem pairs a media item with its derived relevance score. Scores
// are recomputed on every ranking pass and never persisted.
type ScoredItem struct {
	media.Item
	Score float64 `json:"score"`
}

// Scorer computes relevance scores from an item's normalized fields and
// the wall clock.
type Scorer struct {
	weights Weights
	now     func() time.Time
}

// New creates a scorer with the given weights.
func New(weights Weights) *Scorer {
	return &Scorer{weights: weights, now: time.Now}
}

// NewDefault creates a scorer with the production weights.
func NewDefault() *Scorer {
	return New(DefaultWeights())
}

// WithClock overrides the wall clock, for tests.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Score computes the composite relevance score for one item. The recency
// term decays exponentially over the configured scale; this is a plain
// exp(-age/scale) decay, kept exactly as shipped rather than a true
// half-life formula. A missing rating contributes zero; a missing date
// makes the item over a century old.
func (s *Scorer) Score(item media.Item) float64 {
	released := defaultReleaseDate
	if t, ok := item.ReleaseTime(); ok {
		released = t
	}

	ageDays := s.now().Sub(released).Hours() / 24
	recencyFactor := math.Exp(-ageDays / s.weights.RecencyScaleDays)

	score := s.weights.Recency*recencyFactor + s.weights.Rating*(item.Rating*10)

	if originIsUS(item) {
		score += s.weights.OriginBoost
	}
	if item.Type == media.TypeMovie {
		score += s.weights.MovieBoost
	}

	return score
}

// Rank scores every item and sorts descending by score. The sort is
// stable: equal scores keep their input order.
func (s *Scorer) Rank(items []media.Item) []ScoredItem {
	scored := make([]ScoredItem, len(items))
	for i, item := range items {
		scored[i] = ScoredItem{Item: item, Score: s.Score(item)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// originIsUS checks the US-origin boost condition: TV titles by origin
// country, movies by production country.
func originIsUS(item media.Item) bool {
	switch item.Type {
	case media.TypeTV:
		return contains(item.OriginCountries, originCountryUS)
	case media.TypeMovie:
		return contains(item.ProductionCountries, originCountryUS)
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
