package handlers

import (
	"github.com/anonto42/recipehub/backend/internal/middleware"
	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const defaultAdminLimit = 20

// AdminHandler handles moderation requests. Every route requires the admin role.
type AdminHandler struct {
	admin *services.AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// RegisterAdminRoutes registers admin routes on a group already guarded by Protect and AdminOnly
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/stats", h.GetDashboardStats)
	g.GET("/users", h.GetAllUsers)
	g.PUT("/users/:id/role", h.UpdateUserRole)
	g.PUT("/users/:id/verify", h.VerifyUser)
	g.DELETE("/users/:id", h.DeleteUser)
	g.GET("/recipes", h.GetAllRecipes)
	g.PUT("/recipes/:id/feature", h.ToggleFeatured)
	g.DELETE("/recipes/:id", h.DeleteRecipe)
}

// GetDashboardStats returns the dashboard totals
func (h *AdminHandler) GetDashboardStats(c echo.Context) error {
	stats, err := h.admin.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, stats)
}

// GetAllUsers pages through every account
func (h *AdminHandler) GetAllUsers(c echo.Context) error {
	page, limit := pageParams(c, defaultAdminLimit)
	result, err := h.admin.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return paginated(c, result)
}

// GetAllRecipes pages through every recipe
func (h *AdminHandler) GetAllRecipes(c echo.Context) error {
	page, limit := pageParams(c, defaultAdminLimit)
	result, err := h.admin.ListRecipes(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return paginated(c, result)
}

// UpdateUserRole changes a user's role
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	id, err := pathID(c, "id", "User")
	if err != nil {
		return err
	}
	var req models.UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return services.Validation("Invalid request payload")
	}
	user, err := h.admin.UpdateRole(c.Request().Context(), id, req.Role)
	if err != nil {
		return err
	}
	return okMessage(c, "User role updated", user)
}

// VerifyUser toggles a user's verified badge
func (h *AdminHandler) VerifyUser(c echo.Context) error {
	id, err := pathID(c, "id", "User")
	if err != nil {
		return err
	}
	user, err := h.admin.ToggleVerified(c.Request().Context(), id)
	if err != nil {
		return err
	}
	message := "User unverified"
	if user.IsVerified {
		message = "User verified"
	}
	return okMessage(c, message, user)
}

// DeleteUser removes a user and everything they own
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id", "User")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return okMessage(c, "User deleted successfully", nil)
}

// ToggleFeatured flips a recipe's featured flag
func (h *AdminHandler) ToggleFeatured(c echo.Context) error {
	id, err := pathID(c, "id", "Recipe")
	if err != nil {
		return err
	}
	recipe, err := h.admin.ToggleFeatured(c.Request().Context(), id)
	if err != nil {
		return err
	}
	message := "Recipe unfeatured"
	if recipe.IsFeatured {
		message = "Recipe featured"
	}
	return okMessage(c, message, recipe)
}

// DeleteRecipe removes any recipe
func (h *AdminHandler) DeleteRecipe(c echo.Context) error {
	id, err := pathID(c, "id", "Recipe")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteRecipe(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return okMessage(c, "Recipe deleted by admin", nil)
}
