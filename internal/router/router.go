package router

import (
	"github.com/anonto42/recipehub/backend/internal/handlers"
	"github.com/anonto42/recipehub/backend/internal/middleware"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Dependencies are the services and guards the routes are built from
type Dependencies struct {
	Accounts   *services.AccountService
	Graph      *services.SocialGraph
	Engagement *services.EngagementService
	Feed       *services.FeedService
	Recipes    *services.RecipeService
	Inbox      *services.Inbox
	Aggregator *services.Aggregator
	Admin      *services.AdminService

	Auth     *middleware.Authenticator
	Throttle echo.MiddlewareFunc
	Store    handlers.Pinger
	Logger   logrus.FieldLogger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	guards := handlers.Guards{
		Protect:  deps.Auth.Protect(),
		Optional: deps.Auth.OptionalAuth(),
		Throttle: deps.Throttle,
	}
	if guards.Throttle == nil {
		guards.Throttle = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck(deps.Store))

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	handlers.NewAuthHandler(deps.Accounts).RegisterAuthRoutes(authGroup, guards.Protect)
	deps.Logger.Debug("Auth routes configured.")

	users := api.Group("/users")
	handlers.NewUserHandler(deps.Graph, deps.Feed).RegisterUserRoutes(users, guards)
	handlers.NewFollowHandler(deps.Graph).RegisterFollowRoutes(users, guards)
	handlers.NewSavedRecipeHandler(deps.Engagement).RegisterSavedRecipeRoutes(users, guards)
	handlers.NewNotificationHandler(deps.Inbox).RegisterNotificationRoutes(users, guards)
	deps.Logger.Debug("User routes configured.")

	recipes := api.Group("/recipes")
	handlers.NewFeedHandler(deps.Feed).RegisterFeedRoutes(recipes, guards)
	handlers.NewAnalyticsHandler(deps.Aggregator).RegisterAnalyticsRoutes(recipes)
	handlers.NewRecipeHandler(deps.Recipes, deps.Engagement, deps.Feed).RegisterRecipeRoutes(recipes, guards)
	handlers.NewLikeHandler(deps.Engagement).RegisterLikeRoutes(recipes, guards)
	handlers.NewCommentHandler(deps.Engagement).RegisterCommentRoutes(recipes, guards)
	deps.Logger.Debug("Recipe routes configured.")

	admin := api.Group("/admin", guards.Protect, middleware.AdminOnly())
	handlers.NewAdminHandler(deps.Admin).RegisterAdminRoutes(admin)
	deps.Logger.Debug("Admin routes configured.")

	deps.Logger.Info("All routes configured.")
}
