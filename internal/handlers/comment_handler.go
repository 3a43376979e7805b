package handlers

import (
	"github.com/anonto42/recipehub/backend/internal/middleware"
	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to recipe comments
type CommentHandler struct {
	engagement *services.EngagementService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(engagement *services.EngagementService) *CommentHandler {
	return &CommentHandler{engagement: engagement}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, guards Guards) {
	g.POST("/:id/comment", h.AddComment, guards.Protect, guards.Throttle)
	g.DELETE("/:id/comment/:commentId", h.DeleteComment, guards.Protect)
}

// AddComment appends a comment and returns the recipe's comments
func (h *CommentHandler) AddComment(c echo.Context) error {
	recipeID, err := pathID(c, "id", "Recipe")
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return services.Validation("Invalid request payload")
	}
	comments, err := h.engagement.AddComment(c.Request().Context(), middleware.CurrentUser(c), recipeID, req.Text)
	if err != nil {
		return err
	}
	return created(c, "Comment added", comments)
}

// DeleteComment removes a comment; allowed for its author or an admin
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	recipeID, err := pathID(c, "id", "Recipe")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "commentId", "Comment")
	if err != nil {
		return err
	}
	if err := h.engagement.DeleteComment(c.Request().Context(), middleware.CurrentUser(c), recipeID, commentID); err != nil {
		return err
	}
	return okMessage(c, "Comment deleted", nil)
}
