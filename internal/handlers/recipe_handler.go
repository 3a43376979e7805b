package handlers

import (
	"github.com/anonto42/recipehub/backend/internal/middleware"
	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// RecipeHandler handles HTTP requests on single recipes
type RecipeHandler struct {
	recipes    *services.RecipeService
	engagement *services.EngagementService
	feed       *services.FeedService
}

// NewRecipeHandler creates a new RecipeHandler
func NewRecipeHandler(recipes *services.RecipeService, engagement *services.EngagementService, feed *services.FeedService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, engagement: engagement, feed: feed}
}

// RegisterRecipeRoutes registers recipe routes
func (h *RecipeHandler) RegisterRecipeRoutes(g *echo.Group, guards Guards) {
	g.POST("", h.CreateRecipe, guards.Protect)
	g.GET("/:id", h.GetRecipe, guards.Optional)
	g.PUT("/:id", h.UpdateRecipe, guards.Protect)
	g.DELETE("/:id", h.DeleteRecipe, guards.Protect)
	g.GET("/:id/recommendations", h.GetRecommendations)
}

// CreateRecipe stores a recipe authored by the current user
func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
	var req models.CreateRecipeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	recipe, err := h.recipes.Create(c.Request().Context(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return created(c, "Recipe created successfully", recipe)
}

// GetRecipe returns a single recipe and counts the view
func (h *RecipeHandler) GetRecipe(c echo.Context) error {
	id, err := pathID(c, "id", "Recipe")
	if err != nil {
		return err
	}
	recipe, err := h.recipes.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, recipe)
}

// UpdateRecipe edits a recipe; allowed for its author or an admin
func (h *RecipeHandler) UpdateRecipe(c echo.Context) error {
	id, err := pathID(c, "id", "Recipe")
	if err != nil {
		return err
	}
	var req models.RecipeUpdate
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	recipe, err := h.recipes.Update(c.Request().Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return err
	}
	return okMessage(c, "Recipe updated successfully", recipe)
}

// DeleteRecipe removes a recipe; allowed for its author or an admin
func (h *RecipeHandler) DeleteRecipe(c echo.Context) error {
	id, err := pathID(c, "id", "Recipe")
	if err != nil {
		return err
	}
	if err := h.engagement.DeleteRecipe(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return okMessage(c, "Recipe deleted successfully", nil)
}

// GetRecommendations returns recipes similar to the given one
func (h *RecipeHandler) GetRecommendations(c echo.Context) error {
	id, err := pathID(c, "id", "Recipe")
	if err != nil {
		return err
	}
	recipes, err := h.feed.Recommendations(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, recipes)
}
