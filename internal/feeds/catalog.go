package feeds

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reelfeed/reelfeed/internal/media"
	"github.com/reelfeed/reelfeed/internal/provider/tmdb"
)

// Catalog holds the merged movie and TV genre list and refreshes it on a
// fixed interval in the background.
type Catalog struct {
	provider Provider
	logger   zerolog.Logger

	mu     sync.RWMutex
	genres []media.Genre

	scheduler gocron.Scheduler
}

// NewCatalog creates a genre catalog. Call Start to populate it and begin
// the periodic refresh.
func NewCatalog(provider Provider, logger zerolog.Logger) (*Catalog, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Catalog{
		provider:  provider,
		logger:    logger.With().Str("component", "genre-catalog").Logger(),
		scheduler: gs,
	}, nil
}

// Start performs an initial refresh and schedules periodic ones. The
// initial failure is logged but not fatal; the next tick retries.
func (c *Catalog) Start(ctx context.Context, interval time.Duration) error {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Error().Err(err).Msg("Initial genre refresh failed")
	}

	_, err := c.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			refreshCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := c.Refresh(refreshCtx); err != nil {
				c.logger.Error().Err(err).Msg("Genre refresh failed")
			}
		}),
		gocron.WithName("genre-refresh"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule genre refresh: %w", err)
	}

	c.scheduler.Start()
	c.logger.Info().Dur("interval", interval).Msg("Genre catalog started")
	return nil
}

// Stop shuts the refresh scheduler down.
func (c *Catalog) Stop() error {
	return c.scheduler.Shutdown()
}

// Refresh fetches the movie and TV genre lists in parallel and installs
// the merged result. Both fetches must succeed or the current list stays.
func (c *Catalog) Refresh(ctx context.Context) error {
	var movieGenres, tvGenres []tmdb.Genre

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movieGenres, err = c.provider.GetMovieGenres(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tvGenres, err = c.provider.GetTVGenres(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("genre refresh: %w", err)
	}

	merged := media.MergeGenres(toGenres(tvGenres), toGenres(movieGenres))

	c.mu.Lock()
	c.genres = merged
	c.mu.Unlock()

	c.logger.Info().Int("genres", len(merged)).Msg("Genre catalog refreshed")
	return nil
}

// Genres returns the current merged genre list.
func (c *Catalog) Genres() []media.Genre {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]media.Genre, len(c.genres))
	copy(out, c.genres)
	return out
}

func toGenres(raw []tmdb.Genre) []media.Genre {
	out := make([]media.Genre, 0, len(raw))
	for _, g := range raw {
		out = append(out, media.Genre{ID: g.ID, Name: g.Name})
	}
	return out
}
