package feeds

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reelfeed/reelfeed/internal/provider/tmdb"
)

func TestCatalog_Refresh(t *testing.T) {
	provider := &fakeProvider{
		tvGenresFn: func() ([]tmdb.Genre, error) {
			return []tmdb.Genre{
				{ID: 10759, Name: "Action & Adventure"},
				{ID: 35, Name: "Comedy"},
			}, nil
		},
		movieGenresFn: func() ([]tmdb.Genre, error) {
			return []tmdb.Genre{
				{ID: 28, Name: "Action"},
				{ID: 35, Name: "Comedy (Film)"},
			}, nil
		},
	}

	catalog, err := NewCatalog(provider, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	defer catalog.Stop()

	if err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	genres := catalog.Genres()
	if len(genres) != 3 {
		t.Fatalf("got %d genres, want 3", len(genres))
	}
	// TV list leads; the movie list's name wins the id collision.
	if genres[0].ID != 10759 {
		t.Errorf("genres[0].ID = %d", genres[0].ID)
	}
	for _, g := range genres {
		if g.ID == 35 && g.Name != "Comedy (Film)" {
			t.Errorf("collision name = %q, want the movie list's", g.Name)
		}
	}
}

func TestCatalog_RefreshFailureKeepsCurrentList(t *testing.T) {
	fail := false
	provider := &fakeProvider{
		movieGenresFn: func() ([]tmdb.Genre, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return []tmdb.Genre{{ID: 28, Name: "Action"}}, nil
		},
	}

	catalog, err := NewCatalog(provider, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	defer catalog.Stop()

	if err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	before := catalog.Genres()

	fail = true
	if err := catalog.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	after := catalog.Genres()
	if len(after) != len(before) {
		t.Errorf("failed refresh changed the list: %d -> %d", len(before), len(after))
	}
}

func TestCatalog_GenresReturnsCopy(t *testing.T) {
	provider := &fakeProvider{}
	catalog, err := NewCatalog(provider, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	defer catalog.Stop()

	if err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	genres := catalog.Genres()
	if len(genres) == 0 {
		t.Fatal("expected genres")
	}
	genres[0].Name = "mutated"

	if catalog.Genres()[0].Name == "mutated" {
		t.Error("Genres() must return a copy")
	}
}
