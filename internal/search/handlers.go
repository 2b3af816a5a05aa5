package search

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for search operations.
type Handlers struct {
	engine   *Engine
	sessions *Manager
}

// NewHandlers creates new search handlers.
func NewHandlers(engine *Engine, sessions *Manager) *Handlers {
	return &Handlers{
		engine:   engine,
		sessions: sessions,
	}
}

// RegisterRoutes registers the search routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
	g.GET("/search/suggestions", h.Suggestions)

	g.POST("/search/sessions", h.CreateSession)
	g.GET("/search/sessions/:id", h.GetSession)
	g.POST("/search/sessions/:id/input", h.SessionInput)
	g.POST("/search/sessions/:id/submit", h.SessionSubmit)
	g.DELETE("/search/sessions/:id", h.DeleteSession)
}

// Search runs a one-shot search.
// GET /api/v1/search?query=...&scope=...&yearFrom=...&yearTo=...&ratingFrom=...&ratingTo=...&genre=...
func (h *Handlers) Search(c echo.Context) error {
	query := c.QueryParam("query")
	filters := parseFilters(c)
	if query == "" && filters.Empty() {
		return echo.NewHTTPError(http.StatusBadRequest, "query or filter parameter is required")
	}

	results, err := h.engine.Search(c.Request().Context(), query, parseScope(c), filters)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"results": results,
	})
}

// Suggestions returns type-ahead rows for a query.
// GET /api/v1/search/suggestions?query=...
func (h *Handlers) Suggestions(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter is required")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"suggestions": h.engine.Suggestions(c.Request().Context(), query),
	})
}

// CreateSession opens a debounced search session.
// POST /api/v1/search/sessions
func (h *Handlers) CreateSession(c echo.Context) error {
	session := h.sessions.Create()
	return c.JSON(http.StatusCreated, session.Snapshot())
}

// GetSession returns the session's current snapshot.
// GET /api/v1/search/sessions/:id
func (h *Handlers) GetSession(c echo.Context) error {
	session := h.sessions.Get(c.Param("id"))
	if session == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, session.Snapshot())
}

type sessionInputRequest struct {
	Query   string          `json:"query"`
	Scope   Scope           `json:"scope"`
	Filters AdvancedFilters `json:"filters"`
}

// SessionInput records a keystroke into a session.
// POST /api/v1/search/sessions/:id/input
func (h *Handlers) SessionInput(c echo.Context) error {
	session := h.sessions.Get(c.Param("id"))
	if session == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	var req sessionInputRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session.Input(req.Query, req.Scope, req.Filters)
	return c.JSON(http.StatusAccepted, session.Snapshot())
}

// SessionSubmit bypasses the debounce window and fires immediately.
// POST /api/v1/search/sessions/:id/submit
func (h *Handlers) SessionSubmit(c echo.Context) error {
	session := h.sessions.Get(c.Param("id"))
	if session == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	var req sessionInputRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Query != "" {
		session.Input(req.Query, req.Scope, req.Filters)
	}
	session.Flush(req.Scope, req.Filters)
	return c.JSON(http.StatusAccepted, session.Snapshot())
}

// DeleteSession closes a session.
// DELETE /api/v1/search/sessions/:id
func (h *Handlers) DeleteSession(c echo.Context) error {
	h.sessions.Delete(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func parseScope(c echo.Context) Scope {
	scope := Scope(c.QueryParam("scope"))
	if !scope.Valid() {
		return ScopeMulti
	}
	return scope
}

func parseFilters(c echo.Context) AdvancedFilters {
	var filters AdvancedFilters
	if v, err := strconv.Atoi(c.QueryParam("genre")); err == nil {
		filters.Genre = &v
	}
	if v, err := strconv.Atoi(c.QueryParam("yearFrom")); err == nil {
		filters.YearFrom = &v
	}
	if v, err := strconv.Atoi(c.QueryParam("yearTo")); err == nil {
		filters.YearTo = &v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("ratingFrom"), 64); err == nil {
		filters.RatingFrom = &v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("ratingTo"), 64); err == nil {
		filters.RatingTo = &v
	}
	return filters
}
