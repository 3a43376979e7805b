package handlers

import (
	"github.com/anonto42/recipehub/backend/internal/middleware"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const (
	defaultPageLimit    = 10
	defaultExploreLimit = 20
)

// FeedHandler handles recipe listings
type FeedHandler struct {
	feed *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers listing routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, guards Guards) {
	g.GET("", h.GetRecipes)
	g.GET("/search", h.SearchRecipes)
	g.GET("/explore", h.GetExplore)
	g.GET("/feed", h.GetFeed, guards.Protect)
}

// GetRecipes lists every published recipe, newest first
func (h *FeedHandler) GetRecipes(c echo.Context) error {
	page, limit := pageParams(c, defaultPageLimit)
	result, err := h.feed.List(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return paginated(c, result)
}

// GetFeed lists recipes by the current user and the users they follow
func (h *FeedHandler) GetFeed(c echo.Context) error {
	page, limit := pageParams(c, defaultPageLimit)
	result, err := h.feed.Feed(c.Request().Context(), middleware.CurrentUser(c), page, limit)
	if err != nil {
		return err
	}
	return paginated(c, result)
}

// GetExplore lists trending recipes of the last week
func (h *FeedHandler) GetExplore(c echo.Context) error {
	page, limit := pageParams(c, defaultExploreLimit)
	result, err := h.feed.Explore(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return paginated(c, result)
}

// SearchRecipes filters published recipes
func (h *FeedHandler) SearchRecipes(c echo.Context) error {
	page, limit := pageParams(c, defaultPageLimit)
	result, err := h.feed.Search(c.Request().Context(), services.SearchParams{
		Query:       c.QueryParam("q"),
		Cuisine:     c.QueryParam("cuisine"),
		DietaryType: c.QueryParam("dietary"),
		Difficulty:  c.QueryParam("difficulty"),
		Ingredient:  c.QueryParam("ingredient"),
		Category:    c.QueryParam("category"),
		Sort:        c.QueryParam("sort"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		return err
	}
	return paginated(c, result)
}
