package handlers

import (
	"github.com/anonto42/recipehub/backend/internal/middleware"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedRecipeHandler handles HTTP requests related to saved recipes
type SavedRecipeHandler struct {
	engagement *services.EngagementService
}

// NewSavedRecipeHandler creates a new SavedRecipeHandler
func NewSavedRecipeHandler(engagement *services.EngagementService) *SavedRecipeHandler {
	return &SavedRecipeHandler{engagement: engagement}
}

// RegisterSavedRecipeRoutes registers saved recipe routes
func (h *SavedRecipeHandler) RegisterSavedRecipeRoutes(g *echo.Group, guards Guards) {
	g.POST("/save/:recipeId", h.ToggleSaveRecipe, guards.Protect)
	g.GET("/saved", h.GetSavedRecipes, guards.Protect)
}

// ToggleSaveRecipe saves a recipe, or unsaves it when already saved
func (h *SavedRecipeHandler) ToggleSaveRecipe(c echo.Context) error {
	recipeID, err := pathID(c, "recipeId", "Recipe")
	if err != nil {
		return err
	}
	result, err := h.engagement.ToggleSave(c.Request().Context(), middleware.CurrentUser(c), recipeID)
	if err != nil {
		return err
	}
	message := "Recipe unsaved"
	if result.IsSaved {
		message = "Recipe saved"
	}
	return okMessage(c, message, result)
}

// GetSavedRecipes lists the current user's saved recipes
func (h *SavedRecipeHandler) GetSavedRecipes(c echo.Context) error {
	recipes, err := h.engagement.SavedRecipes(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return ok(c, recipes)
}
