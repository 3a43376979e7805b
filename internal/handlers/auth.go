package handlers

import (
	"github.com/anonto42/recipehub/backend/internal/middleware"
	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	accounts *services.AccountService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, protect echo.MiddlewareFunc) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/firebase", h.FirebaseLogin)
	g.GET("/profile", h.GetProfile, protect)
	g.PUT("/profile", h.UpdateProfile, protect)
	g.PUT("/password", h.ChangePassword, protect)
}

// Register handles local registration with username, email and password
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	result, err := h.accounts.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return created(c, "User registered successfully", result)
}

// Login handles email and password authentication
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	result, err := h.accounts.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return okMessage(c, "Login successful", result)
}

// FirebaseLogin exchanges a Firebase ID token for a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	result, err := h.accounts.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	return okMessage(c, "Login successful", result)
}

// GetProfile returns the authenticated user's own account
func (h *AuthHandler) GetProfile(c echo.Context) error {
	profile, err := h.accounts.Profile(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return ok(c, profile)
}

// UpdateProfile edits the authenticated user's profile
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req models.ProfileUpdate
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	profile, err := h.accounts.UpdateProfile(c.Request().Context(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return okMessage(c, "Profile updated successfully", profile)
}

// ChangePassword replaces the authenticated user's password
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.accounts.ChangePassword(c.Request().Context(), middleware.CurrentUser(c), req); err != nil {
		return err
	}
	return okMessage(c, "Password updated successfully", nil)
}
