package handlers

import (
	"github.com/anonto42/recipehub/backend/internal/middleware"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles HTTP requests related to the follower graph
type FollowHandler struct {
	graph *services.SocialGraph
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *services.SocialGraph) *FollowHandler {
	return &FollowHandler{graph: graph}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, guards Guards) {
	g.POST("/:id/follow", h.ToggleFollow, guards.Protect, guards.Throttle)
	g.GET("/:id/followers", h.GetFollowers)
	g.GET("/:id/following", h.GetFollowing)
}

// ToggleFollow follows the user, or unfollows when already following
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	targetID, err := pathID(c, "id", "User")
	if err != nil {
		return err
	}
	result, err := h.graph.ToggleFollow(c.Request().Context(), middleware.CurrentUser(c), targetID)
	if err != nil {
		return err
	}
	message := "Unfollowed successfully"
	if result.IsFollowing {
		message = "Followed successfully"
	}
	return okMessage(c, message, result)
}

// GetFollowers lists the followers of a user
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	id, err := pathID(c, "id", "User")
	if err != nil {
		return err
	}
	users, err := h.graph.Followers(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, users)
}

// GetFollowing lists the users a user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	id, err := pathID(c, "id", "User")
	if err != nil {
		return err
	}
	users, err := h.graph.Following(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, users)
}
