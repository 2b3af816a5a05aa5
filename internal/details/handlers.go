package details

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/reelfeed/reelfeed/internal/provider/tmdb"
)

// Handlers provides HTTP handlers for detail page operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates new detail handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the detail routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/movie/:id", h.GetMovie)
	g.GET("/tv/:id", h.GetTV)
	g.GET("/tv/:id/season/:number", h.GetSeason)
	g.GET("/person/:id", h.GetPerson)
	g.GET("/collection/:id", h.GetCollection)
}

// GetMovie returns the assembled movie detail page.
// GET /api/v1/movie/:id
func (h *Handlers) GetMovie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.service.Movie(c.Request().Context(), id)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

// GetTV returns the assembled TV detail page.
// GET /api/v1/tv/:id
func (h *Handlers) GetTV(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.service.TV(c.Request().Context(), id)
	if err != nil {
		return providerError(err)
	}
	if detail == nil {
		return echo.NewHTTPError(http.StatusNotFound, "tv title not found")
	}
	return c.JSON(http.StatusOK, detail)
}

// GetSeason returns one season's episodes.
// GET /api/v1/tv/:id/season/:number
func (h *Handlers) GetSeason(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid season number")
	}

	season, err := h.service.Season(c.Request().Context(), id, number)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, season)
}

// GetPerson returns the assembled person page.
// GET /api/v1/person/:id
func (h *Handlers) GetPerson(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.service.Person(c.Request().Context(), id)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

// GetCollection returns the aggregated collection page.
// GET /api/v1/collection/:id
func (h *Handlers) GetCollection(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	aggregate, err := h.service.Collection(c.Request().Context(), id)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, aggregate)
}

func parseID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func providerError(err error) error {
	switch {
	case tmdb.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case tmdb.IsRateLimited(err):
		return echo.NewHTTPError(http.StatusTooManyRequests, "provider rate limited")
	default:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}
