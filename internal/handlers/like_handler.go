package handlers

import (
	"github.com/anonto42/recipehub/backend/internal/middleware"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	engagement *services.EngagementService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(engagement *services.EngagementService) *LikeHandler {
	return &LikeHandler{engagement: engagement}
}

// RegisterLikeRoutes registers like routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, guards Guards) {
	g.POST("/:id/like", h.ToggleLike, guards.Protect, guards.Throttle)
}

// ToggleLike likes a recipe, or unlikes it when already liked
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	recipeID, err := pathID(c, "id", "Recipe")
	if err != nil {
		return err
	}
	result, err := h.engagement.ToggleLike(c.Request().Context(), middleware.CurrentUser(c), recipeID)
	if err != nil {
		return err
	}
	return ok(c, result)
}
