package scoring

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/reelfeed/reelfeed/internal/media"
)

// fixedNow keeps the recency term deterministic.
var fixedNow = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func newTestScorer() *Scorer {
	return NewDefault().WithClock(func() time.Time { return fixedNow })
}

func TestScore_RecentUSMovieBeatsOldForeignTV(t *testing.T) {
	scorer := newTestScorer()

	movie := media.Item{
		Type:                media.TypeMovie,
		ReleaseDate:         "2025-05-01",
		Rating:              8.0,
		ProductionCountries: []string{"US"},
	}
	tv := media.Item{
		Type:            media.TypeTV,
		ReleaseDate:     "1995-05-01",
		Rating:          8.0,
		OriginCountries: []string{"KR"},
	}

	if scorer.Score(movie) <= scorer.Score(tv) {
		t.Errorf("movie score %v not above tv score %v", scorer.Score(movie), scorer.Score(tv))
	}
}

func TestScore_MissingRatingContributesZero(t *testing.T) {
	scorer := newTestScorer()

	item := media.Item{Type: media.TypeTV, ReleaseDate: "2025-05-01"}
	score := scorer.Score(item)

	if math.IsNaN(score) || math.IsInf(score, 0) {
		t.Fatalf("score is not finite: %v", score)
	}

	// Only the recency term remains: weight * exp(-31/365).
	want := 0.4 * math.Exp(-31.0/365.0)
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", score, want)
	}
}

func TestScore_MissingDateMeansAncient(t *testing.T) {
	scorer := newTestScorer()

	withDate := media.Item{Type: media.TypeTV, ReleaseDate: "2025-05-01", Rating: 5}
	without := media.Item{Type: media.TypeTV, Rating: 5}

	// The default date is 1900-01-01, well over a century of decay. The
	// recency term must be effectively zero.
	diff := scorer.Score(without) - 0.3*(5*10)
	if diff > 1e-9 {
		t.Errorf("dateless item still earns recency: %v", diff)
	}
	if scorer.Score(without) >= scorer.Score(withDate) {
		t.Error("dateless item outranks a recent one")
	}
}

func TestScore_Boosts(t *testing.T) {
	scorer := newTestScorer()
	base := media.Item{ReleaseDate: "2025-05-01", Rating: 7}

	tests := []struct {
		name  string
		shape func(media.Item) media.Item
		boost float64
	}{
		{
			"movie boost",
			func(i media.Item) media.Item { i.Type = media.TypeMovie; return i },
			0.9,
		},
		{
			"tv us origin boost",
			func(i media.Item) media.Item {
				i.Type = media.TypeTV
				i.OriginCountries = []string{"GB", "US"}
				return i
			},
			0.6,
		},
		{
			"movie us production boost stacks",
			func(i media.Item) media.Item {
				i.Type = media.TypeMovie
				i.ProductionCountries = []string{"US"}
				return i
			},
			0.9 + 0.6,
		},
	}

	neutral := base
	neutral.Type = media.TypeTV
	baseScore := scorer.Score(neutral)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.shape(base))
			if math.Abs(got-baseScore-tt.boost) > 1e-9 {
				t.Errorf("boost = %v, want %v", got-baseScore, tt.boost)
			}
		})
	}
}

func TestScore_USOriginOnTVIgnoresProductionCountries(t *testing.T) {
	scorer := newTestScorer()

	tv := media.Item{
		Type:                media.TypeTV,
		ReleaseDate:         "2025-05-01",
		ProductionCountries: []string{"US"},
	}
	if scorer.Score(tv) != scorer.Score(media.Item{Type: media.TypeTV, ReleaseDate: "2025-05-01"}) {
		t.Error("TV origin check must read origin countries, not production countries")
	}
}

func TestRank_DescendingAndStable(t *testing.T) {
	scorer := newTestScorer()

	// Two identical TV items, distinguishable only by ID, plus one movie
	// that must land first.
	items := []media.Item{
		{ID: 1, Type: media.TypeTV, ReleaseDate: "2020-01-01", Rating: 6},
		{ID: 2, Type: media.TypeMovie, ReleaseDate: "2020-01-01", Rating: 6},
		{ID: 3, Type: media.TypeTV, ReleaseDate: "2020-01-01", Rating: 6},
	}

	ranked := scorer.Rank(items)

	if ranked[0].ID != 2 {
		t.Errorf("ranked[0].ID = %d, want the movie", ranked[0].ID)
	}
	// Equal scores keep input order.
	if ranked[1].ID != 1 || ranked[2].ID != 3 {
		t.Errorf("tie order broken: %d, %d", ranked[1].ID, ranked[2].ID)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
}

func TestRank_FullPage(t *testing.T) {
	scorer := newTestScorer()

	// A blended page: twenty movies and twenty TV shows with spread-out
	// dates and ratings. Every input must come back out, scored.
	var items []media.Item
	for i := 0; i < 20; i++ {
		items = append(items, media.Item{
			ID:          i + 1,
			Type:        media.TypeMovie,
			Title:       fmt.Sprintf("Movie %d", i+1),
			ReleaseDate: fmt.Sprintf("%d-06-15", 2005+i),
			Rating:      float64(i%10) + 0.5,
		})
	}
	for i := 0; i < 20; i++ {
		items = append(items, media.Item{
			ID:              100 + i,
			Type:            media.TypeTV,
			Title:           fmt.Sprintf("Show %d", i+1),
			ReleaseDate:     fmt.Sprintf("%d-01-10", 2005+i),
			Rating:          float64((i*3)%10) + 0.25,
			OriginCountries: []string{"US"},
		})
	}

	ranked := scorer.Rank(items)

	if len(ranked) != 40 {
		t.Fatalf("got %d ranked items, want 40", len(ranked))
	}
	seen := make(map[int]bool)
	for i, item := range ranked {
		if seen[item.ID] {
			t.Errorf("duplicate id %d", item.ID)
		}
		seen[item.ID] = true
		if i > 0 && item.Score > ranked[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
}
