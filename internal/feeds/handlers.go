package feeds

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/reelfeed/reelfeed/internal/provider/tmdb"
)

// Handlers provides HTTP handlers for the feed endpoints.
type Handlers struct {
	service *Service
	catalog *Catalog
}

// NewHandlers creates new feed handlers.
func NewHandlers(service *Service, catalog *Catalog) *Handlers {
	return &Handlers{
		service: service,
		catalog: catalog,
	}
}

// RegisterRoutes registers the feed routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/home", h.GetHome)
	g.GET("/genres", h.GetGenres)
	g.GET("/genres/:id/feed", h.GetGenreFeed)
}

// GetHome returns the assembled home feeds.
// GET /api/v1/home
func (h *Handlers) GetHome(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.HomeFeeds(c.Request().Context()))
}

// GetGenres returns the merged genre catalog.
// GET /api/v1/genres
func (h *Handlers) GetGenres(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"genres": h.catalog.Genres(),
	})
}

// GetGenreFeed returns the blended, ranked feed for one genre.
// GET /api/v1/genres/:id/feed
func (h *Handlers) GetGenreFeed(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid genre id")
	}

	items, err := h.service.GenreFeed(c.Request().Context(), id)
	if err != nil {
		if tmdb.IsRateLimited(err) {
			return echo.NewHTTPError(http.StatusTooManyRequests, "provider rate limited")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items": items,
	})
}
