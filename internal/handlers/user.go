package handlers

import (
	"github.com/anonto42/recipehub/backend/internal/middleware"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles public profile, discovery and own-content requests
type UserHandler struct {
	graph *services.SocialGraph
	feed  *services.FeedService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(graph *services.SocialGraph, feed *services.FeedService) *UserHandler {
	return &UserHandler{graph: graph, feed: feed}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, guards Guards) {
	g.GET("/search", h.SearchUsers)
	g.GET("/suggestions", h.GetSuggestions, guards.Protect)
	g.GET("/my-recipes", h.GetMyRecipes, guards.Protect)
	g.GET("/:username", h.GetUserProfile, guards.Optional)
}

// GetUserProfile returns the public profile of a user with their published recipes
func (h *UserHandler) GetUserProfile(c echo.Context) error {
	profile, err := h.graph.Profile(c.Request().Context(), c.Param("username"), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return ok(c, profile)
}

// SearchUsers matches users by username or name
func (h *UserHandler) SearchUsers(c echo.Context) error {
	users, err := h.graph.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return ok(c, users)
}

// GetSuggestions returns users the current user might want to follow
func (h *UserHandler) GetSuggestions(c echo.Context) error {
	users, err := h.graph.Suggestions(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return ok(c, users)
}

// GetMyRecipes returns every recipe of the current user, drafts included
func (h *UserHandler) GetMyRecipes(c echo.Context) error {
	recipes, err := h.feed.MyRecipes(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return ok(c, recipes)
}
